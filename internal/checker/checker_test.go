package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cdecl/internal/ast"
	"github.com/oxhq/cdecl/internal/dialect"
	"github.com/oxhq/cdecl/internal/diag"
	"github.com/oxhq/cdecl/internal/typedef"
	"github.com/oxhq/cdecl/internal/typekind"
)

func builtin(g *ast.Graph, t typekind.TypeID) ast.NodeRef {
	ref := g.New(ast.KindBuiltin)
	g.Node(ref).Type = t
	return ref
}

func codesOf(ds []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, len(ds))
	for i, d := range ds {
		out[i] = d.Code
	}
	return out
}

func TestCheckLanguageGatingRejectsRestrictBeforeC99(t *testing.T) {
	g := ast.NewGraph()
	root := builtin(g, typekind.Restrict|typekind.Int)
	c := New()
	diags := c.Check(g, root, dialect.C89)
	require.NotEmpty(t, diags)
	assert.Contains(t, codesOf(diags), diag.CodeLanguageVersion)
}

func TestCheckLanguageGatingAllowsRestrictInC99(t *testing.T) {
	g := ast.NewGraph()
	root := builtin(g, typekind.Restrict|typekind.Int)
	c := New()
	diags := c.Check(g, root, dialect.C99)
	assert.Empty(t, diags)
}

func TestCheckBaseTypeCombinationCharShort(t *testing.T) {
	g := ast.NewGraph()
	root := builtin(g, typekind.Char|typekind.Short)
	c := New()
	diags := c.Check(g, root, dialect.C17)
	require.NotEmpty(t, diags)
	assert.Contains(t, codesOf(diags), diag.CodeTypeCombination)
}

func TestCheckBaseTypeCombinationSignedOnFloat(t *testing.T) {
	g := ast.NewGraph()
	root := builtin(g, typekind.Signed|typekind.Float)
	c := New()
	diags := c.Check(g, root, dialect.C17)
	require.NotEmpty(t, diags)
	assert.Contains(t, codesOf(diags), diag.CodeTypeCombination)
}

func TestCheckMemberOnlyConstRejectedOnFreeFunction(t *testing.T) {
	g := ast.NewGraph()
	fn := g.New(ast.KindFunction)
	g.Node(fn).Type = typekind.Const
	g.SetReturn(fn, builtin(g, typekind.Void))
	c := New()
	diags := c.Check(g, fn, dialect.CPP17)
	require.NotEmpty(t, diags)
	assert.Contains(t, codesOf(diags), diag.CodePositional)
}

func TestCheckMemberOnlyConstAllowedOnMemberFunction(t *testing.T) {
	g := ast.NewGraph()
	fn := g.New(ast.KindFunction)
	g.Node(fn).Type = typekind.Const
	g.Node(fn).Member = true
	g.SetReturn(fn, builtin(g, typekind.Void))
	c := New()
	diags := c.Check(g, fn, dialect.CPP17)
	assert.Empty(t, diags)
}

func TestCheckStructuralShapePointerToReference(t *testing.T) {
	g := ast.NewGraph()
	ref := g.New(ast.KindReference)
	g.SetOf(ref, builtin(g, typekind.Int))
	ptr := g.New(ast.KindPointer)
	g.SetOf(ptr, ref)

	c := New()
	diags := c.Check(g, ptr, dialect.CPP17)
	require.NotEmpty(t, diags)
	assert.Contains(t, codesOf(diags), diag.CodeSemantic)
}

func TestCheckStructuralShapeFunctionReturningFunction(t *testing.T) {
	g := ast.NewGraph()
	inner := g.New(ast.KindFunction)
	g.SetReturn(inner, builtin(g, typekind.Void))
	outer := g.New(ast.KindFunction)
	g.SetReturn(outer, inner)

	c := New()
	diags := c.Check(g, outer, dialect.C17)
	require.NotEmpty(t, diags)
	assert.Contains(t, codesOf(diags), diag.CodeSemantic)
}

func TestCheckVariadicMustBeLast(t *testing.T) {
	g := ast.NewGraph()
	fn := g.New(ast.KindFunction)
	g.SetReturn(fn, builtin(g, typekind.Void))
	g.AppendParam(fn, g.New(ast.KindVariadic))
	g.AppendParam(fn, builtin(g, typekind.Int))

	c := New()
	diags := c.Check(g, fn, dialect.C17)
	require.NotEmpty(t, diags)
	assert.Contains(t, codesOf(diags), diag.CodeSemantic)
}

func TestCheckVariadicAloneIsIllegal(t *testing.T) {
	g := ast.NewGraph()
	fn := g.New(ast.KindFunction)
	g.SetReturn(fn, builtin(g, typekind.Void))
	g.AppendParam(fn, g.New(ast.KindVariadic))

	c := New()
	diags := c.Check(g, fn, dialect.C17)
	require.NotEmpty(t, diags)
}

func TestCheckBitFieldOnNonIntegerIsIllegal(t *testing.T) {
	g := ast.NewGraph()
	fn := g.New(ast.KindFunction)
	g.Node(fn).BitWidth = 3
	g.SetReturn(fn, builtin(g, typekind.Void))

	c := New()
	diags := c.Check(g, fn, dialect.C17)
	require.NotEmpty(t, diags)
	assert.Contains(t, codesOf(diags), diag.CodeSemantic)
}

func TestCheckImplicitIntWarnsInC89(t *testing.T) {
	g := ast.NewGraph()
	name := g.New(ast.KindBuiltin) // no base type bits set
	c := New()
	diags := c.Check(g, name, dialect.C89)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.SeverityWarning, diags[0].Severity)
}

func TestCheckImplicitIntForbiddenInC2x(t *testing.T) {
	g := ast.NewGraph()
	name := g.New(ast.KindBuiltin)
	c := New()
	diags := c.Check(g, name, dialect.C2x)
	require.NotEmpty(t, diags)
	assert.Equal(t, diag.SeverityError, diags[0].Severity)
}

func TestCheckUnknownIdentifierSuggestsClosest(t *testing.T) {
	g := ast.NewGraph()
	reg := typedef.New(g)
	known := builtin(g, typekind.Int)
	require.NoError(t, reg.Define(ast.Simple("size_t"), known, dialect.All, true, nil))

	ref := g.New(ast.KindTypedefRef)
	g.Node(ref).TypeName = ast.Simple("size_tt")

	c := NewWithRegistry(reg)
	diags := c.Check(g, ref, dialect.C17)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.CodeUnknownIdent, diags[0].Code)
	assert.Contains(t, diags[0].Detail, "size_t")
}

func TestCheckAccumulatesMultipleDiagnostics(t *testing.T) {
	g := ast.NewGraph()
	root := builtin(g, typekind.Char|typekind.Short|typekind.Restrict)
	c := New()
	diags := c.Check(g, root, dialect.C89)
	assert.GreaterOrEqual(t, len(diags), 2)
}
