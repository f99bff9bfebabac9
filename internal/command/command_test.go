package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cdecl/internal/config"
	"github.com/oxhq/cdecl/internal/diag"
	"github.com/oxhq/cdecl/internal/dialect"
)

// newSession builds a Session with opts layered on config.Default(), for
// scenario tests that only care about a couple of flags.
func newSession(t *testing.T, mutate func(*config.Options)) *Session {
	t.Helper()
	opts := config.Default()
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

// The following TestScenarioN cases are the 8 literal end-to-end scenarios
// of spec.md §8.

func TestScenario1DeclarePointerToArrayOfConstInt(t *testing.T) {
	s := newSession(t, func(o *config.Options) { o.EastConst = true })
	out, diags, err := s.Execute("declare x as pointer to array 10 of const int")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "int const (*x)[10];\n", out)
}

func TestScenario2ExplainPointerToArray(t *testing.T) {
	s := newSession(t, nil)
	out, diags, err := s.Execute("explain int (*x)[10]")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "declare x as pointer to array 10 of int\n", out)
}

func TestScenario3DeclareFunctionReturningPointerToChar(t *testing.T) {
	s := newSession(t, nil)
	out, diags, err := s.Execute("declare f as function (x as int, y as int) returning pointer to char")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "char *f(int x, int y);\n", out)
}

func TestScenario4ExplainArrayOfPointerToFunction(t *testing.T) {
	s := newSession(t, nil)
	out, diags, err := s.Execute("explain int (*a[3])(char)")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "declare a as array 3 of pointer to function (char) returning int\n", out)
}

func TestScenario5DeclarePointerToMemberFunction(t *testing.T) {
	s := newSession(t, func(o *config.Options) { o.Dialect = dialect.CPP17 })
	out, diags, err := s.Execute("declare p as pointer to member of class C of function (int) returning void")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "void (C::*p)(int);\n", out)
}

func TestScenario6ExplainSignedShortLongConflictInC89(t *testing.T) {
	s := newSession(t, func(o *config.Options) { o.Dialect = dialect.C89 })
	out, diags, err := s.Execute("explain int signed short long x")
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NotEmpty(t, diags)
	assert.True(t, diag.HasErrors(diags))
	found := false
	for _, d := range diags {
		if d.Code == diag.CodeTypeCombination {
			found = true
		}
	}
	assert.True(t, found, "expected a type-combination diagnostic, got %+v", diags)
}

func TestScenario7DeclareArrayOfReferenceIsIllegal(t *testing.T) {
	s := newSession(t, func(o *config.Options) { o.Dialect = dialect.CPP17 })
	out, diags, err := s.Execute("declare x as array of reference to int")
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "array of reference")
}

func TestScenario8RegisterIllegalInCPP17(t *testing.T) {
	s := newSession(t, func(o *config.Options) { o.Dialect = dialect.CPP17 })
	out, diags, err := s.Execute("declare r as register int")
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NotEmpty(t, diags)
	assert.Equal(t, diag.CodeLanguageVersion, diags[0].Code)
	assert.Contains(t, diags[0].Message, "C++17")
}

// Beyond the 8 literal scenarios: the rest of the command surface.

func TestDefineInsertsTypedefAndShowListsIt(t *testing.T) {
	s := newSession(t, func(o *config.Options) { o.Predefined = false })
	_, diags, err := s.Execute("define length as unsigned long")
	require.NoError(t, err)
	assert.Empty(t, diags)

	out, diags, err := s.Execute("show length")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "typedef unsigned long length;\n", out)
}

func TestTypedefCommandGibberishForm(t *testing.T) {
	s := newSession(t, func(o *config.Options) { o.Predefined = false })
	_, diags, err := s.Execute("typedef int *IntPtr")
	require.NoError(t, err)
	assert.Empty(t, diags)

	out, _, err := s.Execute("show all")
	require.NoError(t, err)
	assert.Contains(t, out, "typedef int *IntPtr;")
}

func TestUsingCommandRequiresCPP11(t *testing.T) {
	s := newSession(t, func(o *config.Options) { o.Dialect = dialect.C17 })
	_, diags, err := s.Execute("using IntPtr = int *")
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.Equal(t, diag.CodeLanguageVersion, diags[0].Code)
}

func TestUsingCommandAcceptedInCPP11(t *testing.T) {
	s := newSession(t, func(o *config.Options) {
		o.Dialect = dialect.CPP11
		o.UsingFlavor = true
		o.Predefined = false
	})
	out, diags, err := s.Execute("using IntPtr = int *")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "using IntPtr = int *;\n", out)
}

func TestCastNoneKind(t *testing.T) {
	s := newSession(t, nil)
	out, diags, err := s.Execute("cast p into pointer to int")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "(int *)p;\n", out)
}

func TestCastStaticRequiresCPP(t *testing.T) {
	s := newSession(t, func(o *config.Options) { o.Dialect = dialect.C17 })
	_, diags, err := s.Execute("cast static p into pointer to int")
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.Equal(t, diag.CodeLanguageVersion, diags[0].Code)
}

func TestCastStaticInCPP(t *testing.T) {
	s := newSession(t, func(o *config.Options) { o.Dialect = dialect.CPP17 })
	out, diags, err := s.Execute("cast static p into pointer to int")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "static_cast<int *>(p);\n", out)
}

func TestSetLanguageChangesDialect(t *testing.T) {
	s := newSession(t, nil)
	out, diags, err := s.Execute("set language=c++17")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Contains(t, out, "C++17")
	assert.Equal(t, dialect.CPP17, s.Options().Dialect)
}

func TestSetUnknownOptionSuggestsClosest(t *testing.T) {
	s := newSession(t, nil)
	_, diags, err := s.Execute("set east-konst")
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Detail, "east-const")
}

func TestUnknownCommandSuggestsClosest(t *testing.T) {
	s := newSession(t, nil)
	_, diags, err := s.Execute("declar x as int")
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Detail, "declare")
}

func TestExitReturnsErrExit(t *testing.T) {
	s := newSession(t, nil)
	_, _, err := s.Execute("exit")
	assert.ErrorIs(t, err, ErrExit)
}

func TestHelpReturnsText(t *testing.T) {
	s := newSession(t, nil)
	out, diags, err := s.Execute("help")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Contains(t, out, "declare <name> as <english>")
}

func TestEmptyLineIsNoop(t *testing.T) {
	s := newSession(t, nil)
	out, diags, err := s.Execute("   ")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Empty(t, out)
}

func TestShowUnknownIdentifierSuggestsClosest(t *testing.T) {
	s := newSession(t, nil)
	_, diags, err := s.Execute("show size_tt")
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.Equal(t, diag.CodeUnknownIdent, diags[0].Code)
	assert.Contains(t, diags[0].Detail, "size_t")
}
