package gibberish

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/cdecl/internal/ast"
	"github.com/oxhq/cdecl/internal/dialect"
	"github.com/oxhq/cdecl/internal/typekind"
)

func TestPrintSimpleInt(t *testing.T) {
	g := ast.NewGraph()
	n := g.New(ast.KindBuiltin)
	g.Node(n).Type = typekind.Int
	assert.Equal(t, "int x", Print(g, n, "x", Options{}))
}

func TestPrintPointerToInt(t *testing.T) {
	g := ast.NewGraph()
	inner := g.New(ast.KindBuiltin)
	g.Node(inner).Type = typekind.Int
	ptr := g.New(ast.KindPointer)
	g.SetOf(ptr, inner)
	assert.Equal(t, "int *x", Print(g, ptr, "x", Options{}))
}

func TestPrintDoubleStarCollapses(t *testing.T) {
	g := ast.NewGraph()
	inner := g.New(ast.KindBuiltin)
	g.Node(inner).Type = typekind.Int
	p1 := g.New(ast.KindPointer)
	g.SetOf(p1, inner)
	p2 := g.New(ast.KindPointer)
	g.SetOf(p2, p1)
	assert.Equal(t, "int **x", Print(g, p2, "x", Options{}))
}

func TestPrintPointerToFunctionNeedsParens(t *testing.T) {
	g := ast.NewGraph()
	void := g.New(ast.KindBuiltin)
	g.Node(void).Type = typekind.Void
	fn := g.New(ast.KindFunction)
	g.SetReturn(fn, void)
	param := g.New(ast.KindBuiltin)
	g.Node(param).Type = typekind.Int
	g.AppendParam(fn, param)

	ptr := g.New(ast.KindPointer)
	g.SetOf(ptr, fn)

	assert.Equal(t, "void (*x)(int)", Print(g, ptr, "x", Options{}))
}

func TestPrintArrayOfInt(t *testing.T) {
	g := ast.NewGraph()
	inner := g.New(ast.KindBuiltin)
	g.Node(inner).Type = typekind.Int
	arr := g.New(ast.KindArray)
	g.Node(arr).ArraySize = ast.ArraySize{Value: 10}
	g.SetOf(arr, inner)
	assert.Equal(t, "int x[10]", Print(g, arr, "x", Options{}))
}

func TestPrintAbstractDeclaratorNoName(t *testing.T) {
	g := ast.NewGraph()
	inner := g.New(ast.KindBuiltin)
	g.Node(inner).Type = typekind.Int
	ptr := g.New(ast.KindPointer)
	g.SetOf(ptr, inner)
	assert.Equal(t, "int *", Print(g, ptr, "", Options{}))
}

func TestPrintEastConstOrdersQualifierAfterBase(t *testing.T) {
	g := ast.NewGraph()
	n := g.New(ast.KindBuiltin)
	g.Node(n).Type = typekind.Int | typekind.Const
	assert.Equal(t, "int const x", Print(g, n, "x", Options{EastConst: true}))
	assert.Equal(t, "const int x", Print(g, n, "x", Options{EastConst: false}))
}

func TestPrintDigraphs(t *testing.T) {
	g := ast.NewGraph()
	inner := g.New(ast.KindBuiltin)
	g.Node(inner).Type = typekind.Int
	arr := g.New(ast.KindArray)
	g.Node(arr).ArraySize = ast.ArraySize{Value: 3}
	g.SetOf(arr, inner)
	got := Print(g, arr, "x", Options{Graphs: GraphDigraphs})
	assert.Equal(t, "int x<:3:>", got)
}

func TestPrintTrigraphsWithdrawnAfterCPP14(t *testing.T) {
	g := ast.NewGraph()
	inner := g.New(ast.KindBuiltin)
	g.Node(inner).Type = typekind.Int
	arr := g.New(ast.KindArray)
	g.Node(arr).ArraySize = ast.ArraySize{Value: 3}
	g.SetOf(arr, inner)

	got17 := Print(g, arr, "x", Options{Graphs: GraphTrigraphs, Dialect: dialect.CPP17})
	assert.Equal(t, "int x[3]", got17)

	got14 := Print(g, arr, "x", Options{Graphs: GraphTrigraphs, Dialect: dialect.CPP14})
	assert.Equal(t, "int x??(3??)", got14)
}

func TestPrintTypedefFlavor(t *testing.T) {
	g := ast.NewGraph()
	n := g.New(ast.KindBuiltin)
	g.Node(n).Type = typekind.Int
	got := PrintTypedef(g, ast.Simple("MyInt"), n, Options{Dialect: dialect.C17})
	assert.Equal(t, "typedef int MyInt;", got)
}

func TestPrintTypedefUsingFlavor(t *testing.T) {
	g := ast.NewGraph()
	n := g.New(ast.KindBuiltin)
	g.Node(n).Type = typekind.Int
	got := PrintTypedef(g, ast.Simple("MyInt"), n, Options{Dialect: dialect.CPP11, UsingFlavor: true})
	assert.Equal(t, "using MyInt = int;", got)
}

func TestPrintTypedefUsingFlavorIgnoredPreCPP11(t *testing.T) {
	g := ast.NewGraph()
	n := g.New(ast.KindBuiltin)
	g.Node(n).Type = typekind.Int
	got := PrintTypedef(g, ast.Simple("MyInt"), n, Options{Dialect: dialect.CPP03, UsingFlavor: true})
	assert.Equal(t, "typedef int MyInt;", got)
}

func TestPrintTypedefScopedNamespace(t *testing.T) {
	g := ast.NewGraph()
	n := g.New(ast.KindBuiltin)
	g.Node(n).Type = typekind.Int
	name := ast.ScopedName{
		{Kind: ast.ScopeNamespaceSeg, Name: "outer"},
		{Kind: ast.ScopeNone, Name: "MyInt"},
	}
	got := PrintTypedef(g, name, n, Options{Dialect: dialect.CPP17})
	assert.Contains(t, got, "namespace outer {")
	assert.Contains(t, got, "typedef int MyInt;")
}

func TestPrintECSU(t *testing.T) {
	g := ast.NewGraph()
	n := g.New(ast.KindECSU)
	g.Node(n).Type = typekind.Struct
	g.Node(n).TypeName = ast.Simple("Point")
	assert.Equal(t, "struct Point x", Print(g, n, "x", Options{}))
}

func TestPrintTypedefRef(t *testing.T) {
	g := ast.NewGraph()
	n := g.New(ast.KindTypedefRef)
	g.Node(n).TypeName = ast.Simple("MyInt")
	assert.Equal(t, "MyInt x", Print(g, n, "x", Options{}))
}

func TestPrintTailQualifiersOrder(t *testing.T) {
	g := ast.NewGraph()
	void := g.New(ast.KindBuiltin)
	g.Node(void).Type = typekind.Void
	fn := g.New(ast.KindFunction)
	g.Node(fn).Type = typekind.Const | typekind.Override
	g.SetReturn(fn, void)
	assert.Equal(t, "void x() const override", Print(g, fn, "x", Options{}))
}
