// Package diag defines the uniform diagnostic payload shared by the checker,
// the type algebra, the typedef registry, and both front ends.
package diag

import "fmt"

// Severity classifies a Diagnostic as described in spec.md §7.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code enumerates the error taxonomy from spec.md §7.
type Code string

const (
	CodeSyntax           Code = "SYNTAX"
	CodeTypeCombination  Code = "TYPE_COMBINATION"
	CodePositional       Code = "POSITIONAL"
	CodeLanguageVersion  Code = "LANGUAGE_VERSION"
	CodeSemantic         Code = "SEMANTIC"
	CodeUnknownIdent     Code = "UNKNOWN_IDENTIFIER"
	CodeImplicitInt      Code = "IMPLICIT_INT"
	CodeDeprecated       Code = "DEPRECATED"
	CodeInternal         Code = "INTERNAL"
	CodeTypedefConflict  Code = "TYPEDEF_CONFLICT"
)

// Location pins a diagnostic to a place in the original input. It is
// intentionally simpler than ast.Location: front ends hand these out before
// any AST exists yet (e.g. a bad token), and the checker attaches the
// ast.Location of the offending node when one is available.
type Location struct {
	Line   int
	Column int
}

// Diagnostic is the uniform payload returned by every fallible core
// operation. With %s it renders Message (optionally with Detail appended);
// the caller owns caret rendering against the original source line.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Detail   string
	Location Location
}

func (d Diagnostic) Error() string {
	if d.Detail != "" {
		return d.Message + ": " + d.Detail
	}
	return d.Message
}

func (d Diagnostic) String() string { return d.Error() }

// New builds an error-severity Diagnostic.
func New(code Code, loc Location, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// Warn builds a warning-severity Diagnostic.
func Warn(code Code, loc Location, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// WithDetail returns a copy of d carrying additional detail text (e.g. a
// unified diff, or a "did you mean" hint from internal/lookup).
func (d Diagnostic) WithDetail(detail string) Diagnostic {
	d.Detail = detail
	return d
}

// HasErrors reports whether any Diagnostic in the list is error-severity.
// Per spec.md §7, warnings alone never suppress printing.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ConflictError is returned by internal/typedef's redefinition path
// (typekind.Add returns typekind's own ConflictError), matching the
// teacher's CLIError two-part (summary + detail) rendering in
// internal/core/errorfmt.go.
type ConflictError struct {
	Diagnostic
}

func (e ConflictError) Unwrap() error { return e.Diagnostic }
