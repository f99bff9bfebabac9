package english

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/cdecl/internal/ast"
	"github.com/oxhq/cdecl/internal/typekind"
)

func TestPrintSimpleInt(t *testing.T) {
	g := ast.NewGraph()
	n := g.New(ast.KindBuiltin)
	g.Node(n).Type = typekind.Int
	assert.Equal(t, "int", Print(g, n))
}

func TestPrintPointerToInt(t *testing.T) {
	g := ast.NewGraph()
	inner := g.New(ast.KindBuiltin)
	g.Node(inner).Type = typekind.Int
	ptr := g.New(ast.KindPointer)
	g.SetOf(ptr, inner)
	assert.Equal(t, "pointer to int", Print(g, ptr))
}

func TestPrintArrayOfPointerToChar(t *testing.T) {
	g := ast.NewGraph()
	char := g.New(ast.KindBuiltin)
	g.Node(char).Type = typekind.Char
	ptr := g.New(ast.KindPointer)
	g.SetOf(ptr, char)
	arr := g.New(ast.KindArray)
	g.Node(arr).ArraySize = ast.ArraySize{Value: 3}
	g.SetOf(arr, ptr)
	assert.Equal(t, "array 3 of pointer to char", Print(g, arr))
}

func TestPrintUnspecifiedArray(t *testing.T) {
	g := ast.NewGraph()
	inner := g.New(ast.KindBuiltin)
	g.Node(inner).Type = typekind.Int
	arr := g.New(ast.KindArray)
	g.Node(arr).ArraySize = ast.ArraySize{Unspecified: true}
	g.SetOf(arr, inner)
	assert.Equal(t, "array of int", Print(g, arr))
}

func TestPrintFunctionReturningPointer(t *testing.T) {
	g := ast.NewGraph()
	void := g.New(ast.KindBuiltin)
	g.Node(void).Type = typekind.Void
	ptr := g.New(ast.KindPointer)
	g.SetOf(ptr, void)

	fn := g.New(ast.KindFunction)
	g.SetReturn(fn, ptr)
	param := g.New(ast.KindBuiltin)
	g.Node(param).Type = typekind.Int
	g.AppendParam(fn, param)

	assert.Equal(t, "function (int) returning pointer to void", Print(g, fn))
}

func TestPrintMemberFunction(t *testing.T) {
	g := ast.NewGraph()
	void := g.New(ast.KindBuiltin)
	g.Node(void).Type = typekind.Void
	fn := g.New(ast.KindFunction)
	g.Node(fn).Member = true
	g.Node(fn).Type = typekind.Const
	g.SetReturn(fn, void)
	assert.Equal(t, "const member function () returning void", Print(g, fn))
}

func TestPrintNamedParameter(t *testing.T) {
	g := ast.NewGraph()
	intParam := g.New(ast.KindBuiltin)
	g.Node(intParam).Type = typekind.Int
	g.Node(intParam).Name = ast.Simple("count")

	void := g.New(ast.KindBuiltin)
	g.Node(void).Type = typekind.Void
	fn := g.New(ast.KindFunction)
	g.SetReturn(fn, void)
	g.AppendParam(fn, intParam)

	assert.Equal(t, "function (count as int) returning void", Print(g, fn))
}

func TestPrintVariadicParameter(t *testing.T) {
	g := ast.NewGraph()
	intParam := g.New(ast.KindBuiltin)
	g.Node(intParam).Type = typekind.Int
	void := g.New(ast.KindBuiltin)
	g.Node(void).Type = typekind.Void
	fn := g.New(ast.KindFunction)
	g.SetReturn(fn, void)
	g.AppendParam(fn, intParam)
	g.AppendParam(fn, g.New(ast.KindVariadic))

	assert.Equal(t, "function (int, ...) returning void", Print(g, fn))
}

func TestPrintDeclarationWithName(t *testing.T) {
	g := ast.NewGraph()
	n := g.New(ast.KindBuiltin)
	g.Node(n).Type = typekind.Int
	g.Node(n).Name = ast.Simple("x")
	assert.Equal(t, "x as int", Print(g, n))
}

func TestPrintECSU(t *testing.T) {
	g := ast.NewGraph()
	n := g.New(ast.KindECSU)
	g.Node(n).Type = typekind.Struct
	g.Node(n).TypeName = ast.Simple("Point")
	assert.Equal(t, "struct Point", Print(g, n))
}

func TestPrintTypedefRef(t *testing.T) {
	g := ast.NewGraph()
	n := g.New(ast.KindTypedefRef)
	g.Node(n).TypeName = ast.Simple("MyInt")
	assert.Equal(t, "MyInt", Print(g, n))
}
