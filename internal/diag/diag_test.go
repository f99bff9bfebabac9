package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsErrorSeverity(t *testing.T) {
	d := New(CodeSyntax, Location{Line: 1, Column: 2}, "bad token %q", "foo")
	assert.Equal(t, SeverityError, d.Severity)
	assert.Equal(t, `bad token "foo"`, d.Message)
}

func TestWarnIsWarningSeverity(t *testing.T) {
	d := Warn(CodeImplicitInt, Location{}, "implicit int")
	assert.Equal(t, SeverityWarning, d.Severity)
}

func TestWithDetailAppendsToError(t *testing.T) {
	d := New(CodeSyntax, Location{}, "oops").WithDetail("did you mean bar?")
	assert.Equal(t, "oops: did you mean bar?", d.Error())
}

func TestErrorWithoutDetail(t *testing.T) {
	d := New(CodeSyntax, Location{}, "oops")
	assert.Equal(t, "oops", d.Error())
}

func TestHasErrorsMixedSeverities(t *testing.T) {
	ds := []Diagnostic{Warn(CodeImplicitInt, Location{}, "w")}
	assert.False(t, HasErrors(ds))
	ds = append(ds, New(CodeSyntax, Location{}, "e"))
	assert.True(t, HasErrors(ds))
}

func TestConflictErrorUnwraps(t *testing.T) {
	inner := New(CodeTypedefConflict, Location{}, "conflict")
	ce := ConflictError{Diagnostic: inner}
	assert.Equal(t, inner, ce.Unwrap())
	var asErr error = ce
	assert.Equal(t, "conflict", asErr.Error())
}
