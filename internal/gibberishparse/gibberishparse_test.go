package gibberishparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cdecl/internal/ast"
	"github.com/oxhq/cdecl/internal/astbuilder"
	"github.com/oxhq/cdecl/internal/printer/english"
)

func parseAndExplain(t *testing.T, input string) string {
	t.Helper()
	g := ast.NewGraph()
	root, err := Parse(g, input, nil)
	require.NoError(t, err)
	return english.Print(g, root)
}

func TestParsePointerToArray(t *testing.T) {
	assert.Equal(t, "x as pointer to array 10 of int", parseAndExplain(t, "int (*x)[10]"))
}

func TestParseArrayOfPointerToFunction(t *testing.T) {
	assert.Equal(t, "a as array 3 of pointer to function (char) returning int",
		parseAndExplain(t, "int (*a[3])(char)"))
}

func TestParsePlainPointer(t *testing.T) {
	assert.Equal(t, "p as pointer to char", parseAndExplain(t, "char *p"))
}

func TestParseConstQualifier(t *testing.T) {
	assert.Equal(t, "x as const int", parseAndExplain(t, "const int x"))
}

func TestParseFunctionWithParams(t *testing.T) {
	out := parseAndExplain(t, "char *f(int x, int y)")
	assert.Equal(t, "f as function (x as int, y as int) returning pointer to char", out)
}

func TestParseUnspecifiedArray(t *testing.T) {
	assert.Equal(t, "x as array of int", parseAndExplain(t, "int x[]"))
}

func TestParseUnknownBarewordIsSyntaxError(t *testing.T) {
	g := ast.NewGraph()
	_, err := Parse(g, "frobnicate x", nil)
	assert.Error(t, err)
}

func TestParseKnownTypedefAsBaseType(t *testing.T) {
	g := ast.NewGraph()
	known := func(name string) bool { return name == "my_int" }
	root, err := Parse(g, "my_int x", known)
	require.NoError(t, err)
	name, _ := astbuilder.DeclaredName(g, root)
	assert.Equal(t, "x", name.Leaf())
	assert.Equal(t, "x as my_int", english.Print(g, root))
}

func TestParseECSUTagPreservedThroughPrinter(t *testing.T) {
	assert.Equal(t, "p as struct Point", parseAndExplain(t, "struct Point p"))
}
