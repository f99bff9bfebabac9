// Package command implements the minimal command surface of spec.md §6:
// declare, cast, define/typedef/using, explain, show, set, help/?, exit/quit.
// Session.Execute is the single entry point, the same shape as the teacher's
// top-level pipeline entry point (one call in, one result plus diagnostics
// out) — the CLI (cmd/cdecl) or an rc-fragment loader just feeds it lines.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/oxhq/cdecl/internal/ast"
	"github.com/oxhq/cdecl/internal/astbuilder"
	"github.com/oxhq/cdecl/internal/checker"
	"github.com/oxhq/cdecl/internal/config"
	"github.com/oxhq/cdecl/internal/dialect"
	"github.com/oxhq/cdecl/internal/diag"
	"github.com/oxhq/cdecl/internal/englishparse"
	"github.com/oxhq/cdecl/internal/gibberishparse"
	"github.com/oxhq/cdecl/internal/lookup"
	"github.com/oxhq/cdecl/internal/printer/english"
	"github.com/oxhq/cdecl/internal/printer/gibberish"
	"github.com/oxhq/cdecl/internal/sessionlog"
	"github.com/oxhq/cdecl/internal/typedef"
	"github.com/oxhq/cdecl/internal/typekind"
)

// ErrExit is returned by Execute when the line was `exit` or `quit`: the
// caller's read loop should stop, not treat it as a failure.
var ErrExit = errors.New("command: exit requested")

var commandNames = []string{
	"declare", "cast", "define", "typedef", "using",
	"explain", "show", "set", "help", "?", "exit", "quit",
}

var castKinds = map[string]bool{
	"none": true, "const": true, "dynamic": true, "reinterpret": true, "static": true,
}

var optionNames = []string{
	"language", "alternative-tokens", "east-const", "explicit-int",
	"explicit-ecsu", "semicolon", "using", "graphs", "predefined",
}

// Session is the explicit, per-invocation context spec.md §5 requires: one
// shared *ast.Graph, one typedef registry, and the active option set. A
// Session is not safe for concurrent use from multiple goroutines — the
// teacher's own core.Pipeline is likewise single-threaded per run.
type Session struct {
	graph    *ast.Graph
	registry *typedef.Registry
	checker  *checker.Checker
	opts     config.Options
	log      *sessionlog.Log
}

// New creates a Session with a fresh graph and registry, seeding the
// predefined typedef set when opts.Predefined is set.
func New(opts config.Options) *Session {
	g := ast.NewGraph()
	reg := typedef.New(g)
	if opts.Predefined {
		seedPredefined(g, reg)
	}
	return &Session{
		graph:    g,
		registry: reg,
		checker:  checker.NewWithRegistry(reg),
		opts:     opts,
	}
}

// AttachLog wires an audit log into the session; every subsequent Execute
// call appends one entry. Nil-safe: an unattached Session just skips logging.
func (s *Session) AttachLog(log *sessionlog.Log) { s.log = log }

// Options returns the session's current option set (a copy; mutate only via
// the `set` command so the audit log stays accurate).
func (s *Session) Options() config.Options { return s.opts }

// Execute runs one command-surface line and returns its rendered output (if
// any), the diagnostics produced, and an error only for ErrExit; every other
// failure, including a line with no recognizable command, is reported as a
// diagnostic.
func (s *Session) Execute(line string) (string, []diag.Diagnostic, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", nil, nil
	}

	cmd, rest := splitFirst(trimmed)
	lower := strings.ToLower(cmd)

	var (
		output string
		diags  []diag.Diagnostic
		err    error
	)

	switch lower {
	case "declare":
		output, diags, err = s.declare(rest)
	case "cast":
		output, diags, err = s.cast(rest)
	case "define":
		output, diags, err = s.define(rest)
	case "typedef":
		output, diags, err = s.typedefCmd(rest)
	case "using":
		output, diags, err = s.usingCmd(rest)
	case "explain":
		output, diags, err = s.explain(rest)
	case "show":
		output, diags, err = s.show(rest)
	case "set":
		output, diags, err = s.set(rest)
	case "help", "?":
		return helpText, nil, nil
	case "exit", "quit":
		return "", nil, ErrExit
	default:
		d := diag.New(diag.CodeSyntax, diag.Location{}, "unknown command %q", cmd)
		if best := lookup.Best(lower, commandNames); best != "" {
			d = d.WithDetail("did you mean " + best + "?")
		}
		diags = []diag.Diagnostic{d}
	}

	s.logEntry(trimmed, output, diags, err == nil && !diag.HasErrors(diags))
	return output, diags, err
}

func splitFirst(s string) (string, string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

func (s *Session) gibberishOpts() gibberish.Options { return s.opts.GibberishOptions() }

func (s *Session) isTypedef(name string) bool {
	_, ok := s.registry.Lookup(ast.Simple(name))
	return ok
}

// declare implements `declare <name> as <english>` → emits gibberish.
func (s *Session) declare(rest string) (string, []diag.Diagnostic, error) {
	root, name, err := englishparse.Parse(s.graph, rest)
	if err != nil {
		return "", asDiagnostics(err), nil
	}
	diags := s.checker.Check(s.graph, root, s.opts.Dialect)
	if diag.HasErrors(diags) {
		return "", diags, nil
	}
	return s.render(root, name.Leaf()), diags, nil
}

// cast implements `cast [<kind>] <name> into <english>` → emits a gibberish
// cast expression.
func (s *Session) cast(rest string) (string, []diag.Diagnostic, error) {
	idx := strings.Index(rest, " into ")
	if idx < 0 {
		return "", []diag.Diagnostic{diag.New(diag.CodeSyntax, diag.Location{}, "expected %q in cast command", "into")}, nil
	}
	left := strings.Fields(rest[:idx])
	right := strings.TrimSpace(rest[idx+len(" into "):])

	var kind, name string
	switch len(left) {
	case 1:
		kind, name = "none", left[0]
	case 2:
		kind, name = strings.ToLower(left[0]), left[1]
	default:
		return "", []diag.Diagnostic{diag.New(diag.CodeSyntax, diag.Location{}, "malformed cast target %q", rest[:idx])}, nil
	}
	if !castKinds[kind] {
		d := diag.New(diag.CodeSyntax, diag.Location{}, "unknown cast kind %q", kind)
		if best := lookup.Best(kind, []string{"none", "const", "dynamic", "reinterpret", "static"}); best != "" {
			d = d.WithDetail("did you mean " + best + "?")
		}
		return "", []diag.Diagnostic{d}, nil
	}
	if kind != "none" && !s.opts.Dialect.IsCPP() {
		return "", []diag.Diagnostic{diag.New(diag.CodeLanguageVersion, diag.Location{},
			"%q requires a C++ dialect", kind+"_cast")}, nil
	}

	root, _, err := englishparse.Parse(s.graph, right)
	if err != nil {
		return "", asDiagnostics(err), nil
	}
	diags := s.checker.Check(s.graph, root, s.opts.Dialect)
	if diag.HasErrors(diags) {
		return "", diags, nil
	}

	typeText := gibberish.Print(s.graph, root, "", s.gibberishOpts())
	var out string
	if kind == "none" {
		out = fmt.Sprintf("(%s)%s", typeText, name)
	} else {
		out = fmt.Sprintf("%s_cast<%s>(%s)", kind, typeText, name)
	}
	if s.opts.Semicolon {
		out += ";"
	}
	return out + "\n", diags, nil
}

// define implements `define <name> as <english>` → inserts a typedef.
func (s *Session) define(rest string) (string, []diag.Diagnostic, error) {
	root, name, err := englishparse.Parse(s.graph, rest)
	if err != nil {
		return "", asDiagnostics(err), nil
	}
	if name.IsEmpty() {
		return "", []diag.Diagnostic{diag.New(diag.CodeSyntax, diag.Location{}, "define requires \"<name> as <english>\"")}, nil
	}
	diags := s.checker.Check(s.graph, root, s.opts.Dialect)
	if diag.HasErrors(diags) {
		return "", diags, nil
	}
	return s.insertTypedef(name, root, diags)
}

// typedefCmd implements `typedef <gibberish>` (the command word supplies the
// `typedef` keyword; rest is an ordinary declarator with its identifier).
func (s *Session) typedefCmd(rest string) (string, []diag.Diagnostic, error) {
	rest = strings.TrimSuffix(strings.TrimSpace(rest), ";")
	root, err := gibberishparse.Parse(s.graph, rest, s.isTypedef)
	if err != nil {
		return "", asDiagnostics(err), nil
	}
	name, ok := astbuilder.FindName(s.graph, root)
	if !ok {
		return "", []diag.Diagnostic{diag.New(diag.CodeSyntax, diag.Location{}, "typedef requires a declared name")}, nil
	}
	diags := s.checker.Check(s.graph, root, s.opts.Dialect)
	if diag.HasErrors(diags) {
		return "", diags, nil
	}
	return s.insertTypedef(name, root, diags)
}

// usingCmd implements `using <name> = <gibberish>`.
func (s *Session) usingCmd(rest string) (string, []diag.Diagnostic, error) {
	if !dialect.CPP11Plus.Allows(s.opts.Dialect) {
		return "", []diag.Diagnostic{diag.New(diag.CodeLanguageVersion, diag.Location{}, "%q requires C++11 or later", "using")}, nil
	}
	idx := strings.Index(rest, "=")
	if idx < 0 {
		return "", []diag.Diagnostic{diag.New(diag.CodeSyntax, diag.Location{}, "using requires \"<name> = <gibberish>\"")}, nil
	}
	name := strings.TrimSpace(rest[:idx])
	rhs := strings.TrimSuffix(strings.TrimSpace(rest[idx+1:]), ";")
	if !isSimpleIdent(name) {
		return "", []diag.Diagnostic{diag.New(diag.CodeSyntax, diag.Location{}, "invalid using-declaration name %q", name)}, nil
	}

	root, err := gibberishparse.Parse(s.graph, rhs, s.isTypedef)
	if err != nil {
		return "", asDiagnostics(err), nil
	}
	diags := s.checker.Check(s.graph, root, s.opts.Dialect)
	if diag.HasErrors(diags) {
		return "", diags, nil
	}
	return s.insertTypedef(ast.Simple(name), root, diags)
}

func (s *Session) insertTypedef(name ast.ScopedName, root ast.NodeRef, diags []diag.Diagnostic) (string, []diag.Diagnostic, error) {
	render := func(r ast.NodeRef) string { return gibberish.Print(s.graph, r, name.Leaf(), s.gibberishOpts()) }
	if err := s.registry.Define(name, root, dialect.Single(s.opts.Dialect), false, render); err != nil {
		return "", append(diags, asDiagnostics(err)...), nil
	}
	out := gibberish.PrintTypedef(s.graph, name, root, s.gibberishOpts())
	return out + "\n", diags, nil
}

// explain implements `explain <gibberish>` → emits English, prefixed with
// the literal "declare " whenever the declarator names an identifier (the
// inverse of what `declare` accepts as input).
func (s *Session) explain(rest string) (string, []diag.Diagnostic, error) {
	rest = strings.TrimSuffix(strings.TrimSpace(rest), ";")
	root, err := gibberishparse.Parse(s.graph, rest, s.isTypedef)
	if err != nil {
		return "", asDiagnostics(err), nil
	}
	diags := s.checker.Check(s.graph, root, s.opts.Dialect)
	if diag.HasErrors(diags) {
		return "", diags, nil
	}
	text := english.Print(s.graph, root)
	if _, ok := astbuilder.DeclaredName(s.graph, root); ok {
		text = "declare " + text
	}
	return text + "\n", diags, nil
}

// show implements `show <name>|all|predefined|user [typedef|using]`.
func (s *Session) show(rest string) (string, []diag.Diagnostic, error) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", []diag.Diagnostic{diag.New(diag.CodeSyntax, diag.Location{}, "show requires a target")}, nil
	}
	target := strings.ToLower(fields[0])

	opts := s.opts
	if len(fields) > 1 {
		switch strings.ToLower(fields[1]) {
		case "typedef":
			opts.UsingFlavor = false
		case "using":
			opts.UsingFlavor = true
		}
	}
	gopts := opts.GibberishOptions()

	switch target {
	case "all", "predefined", "user":
		filter := typedef.FilterAll
		if target == "predefined" {
			filter = typedef.FilterPredefined
		} else if target == "user" {
			filter = typedef.FilterUser
		}
		var lines []string
		s.registry.Iterate(filter, func(e *typedef.Entry) {
			lines = append(lines, gibberish.PrintTypedef(s.graph, e.Name, e.Root, gopts))
		})
		return strings.Join(lines, "\n") + "\n", nil, nil
	default:
		entry, ok := s.registry.Lookup(ast.Simple(fields[0]))
		if !ok {
			d := diag.New(diag.CodeUnknownIdent, diag.Location{}, "unknown identifier %q", fields[0])
			if best := lookup.Best(fields[0], s.registry.Names()); best != "" {
				d = d.WithDetail("did you mean " + best + "?")
			}
			return "", []diag.Diagnostic{d}, nil
		}
		return gibberish.PrintTypedef(s.graph, entry.Name, entry.Root, gopts) + "\n", nil, nil
	}
}

// set implements `set <option>=<value>|<option>`.
func (s *Session) set(rest string) (string, []diag.Diagnostic, error) {
	name, value, hasValue := strings.Cut(rest, "=")
	name = strings.ToLower(strings.TrimSpace(name))
	value = strings.TrimSpace(value)

	toggle := func(cur bool) bool {
		if hasValue {
			return truthy(value)
		}
		return !cur
	}

	switch name {
	case "language":
		if !hasValue {
			return "", []diag.Diagnostic{diag.New(diag.CodeSyntax, diag.Location{}, "set language requires a value")}, nil
		}
		d, ok := dialect.Lookup(value)
		if !ok {
			diagE := diag.New(diag.CodeSyntax, diag.Location{}, "unrecognized dialect %q", value)
			if best := lookup.Best(value, dialect.Names()); best != "" {
				diagE = diagE.WithDetail("did you mean " + best + "?")
			}
			return "", []diag.Diagnostic{diagE}, nil
		}
		s.opts.Dialect = d
		return fmt.Sprintf("language set to %s\n", d), nil, nil
	case "alternative-tokens":
		s.opts.AlternativeTokens = toggle(s.opts.AlternativeTokens)
		return fmt.Sprintf("alternative-tokens set to %t\n", s.opts.AlternativeTokens), nil, nil
	case "east-const":
		s.opts.EastConst = toggle(s.opts.EastConst)
		return fmt.Sprintf("east-const set to %t\n", s.opts.EastConst), nil, nil
	case "explicit-int":
		s.opts.ExplicitInt = toggle(s.opts.ExplicitInt)
		return fmt.Sprintf("explicit-int set to %t\n", s.opts.ExplicitInt), nil, nil
	case "explicit-ecsu":
		s.opts.ExplicitECSU = toggle(s.opts.ExplicitECSU)
		return fmt.Sprintf("explicit-ecsu set to %t\n", s.opts.ExplicitECSU), nil, nil
	case "semicolon":
		s.opts.Semicolon = toggle(s.opts.Semicolon)
		return fmt.Sprintf("semicolon set to %t\n", s.opts.Semicolon), nil, nil
	case "using":
		s.opts.UsingFlavor = toggle(s.opts.UsingFlavor)
		return fmt.Sprintf("using set to %t\n", s.opts.UsingFlavor), nil, nil
	case "predefined":
		s.opts.Predefined = toggle(s.opts.Predefined)
		return fmt.Sprintf("predefined set to %t\n", s.opts.Predefined), nil, nil
	case "graphs":
		switch strings.ToLower(value) {
		case "off", "":
			s.opts.Graphs = gibberish.GraphNone
		case "digraphs":
			s.opts.Graphs = gibberish.GraphDigraphs
		case "trigraphs":
			s.opts.Graphs = gibberish.GraphTrigraphs
		default:
			return "", []diag.Diagnostic{diag.New(diag.CodeSyntax, diag.Location{}, "unrecognized graphs value %q", value)}, nil
		}
		return fmt.Sprintf("graphs set to %s\n", value), nil, nil
	default:
		d := diag.New(diag.CodeSyntax, diag.Location{}, "unknown option %q", name)
		if best := lookup.Best(name, optionNames); best != "" {
			d = d.WithDetail("did you mean " + best + "?")
		}
		return "", []diag.Diagnostic{d}, nil
	}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "true", "on", "1", "yes":
		return true
	default:
		return false
	}
}

func isSimpleIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

// render prints root as a full declaration (gibberish, name included,
// trailing semicolon and newline per the active options).
func (s *Session) render(root ast.NodeRef, name string) string {
	out := gibberish.Print(s.graph, root, name, s.gibberishOpts())
	if s.opts.Semicolon {
		out += ";"
	}
	return out + "\n"
}

// asDiagnostics normalizes the handful of error shapes the front ends and
// type algebra can return into the uniform diag.Diagnostic list the command
// surface always reports (spec.md §7's accumulate-then-report contract).
func asDiagnostics(err error) []diag.Diagnostic {
	if err == nil {
		return nil
	}
	if d, ok := err.(diag.Diagnostic); ok {
		return []diag.Diagnostic{d}
	}
	if ce, ok := err.(diag.ConflictError); ok {
		return []diag.Diagnostic{ce.Diagnostic}
	}
	if ce, ok := err.(typekind.ConflictError); ok {
		loc := diag.Location{Line: ce.Location.Line, Column: ce.Location.Column}
		return []diag.Diagnostic{diag.New(diag.CodeTypeCombination, loc, "%s", ce.Reason)}
	}
	return []diag.Diagnostic{diag.New(diag.CodeInternal, diag.Location{}, "%s", err.Error())}
}

func (s *Session) logEntry(command, output string, diags []diag.Diagnostic, succeeded bool) {
	if s.log == nil {
		return
	}
	payload, err := json.Marshal(diags)
	if err != nil {
		payload = []byte("[]")
	}
	_ = s.log.Append(command, s.opts.Dialect.String(), output, payload, succeeded)
}

const helpText = `commands:
  declare <name> as <english>              emit a gibberish declaration
  cast [<kind>] <name> into <english>      emit a gibberish cast expression
  define <name> as <english>               insert a typedef
  typedef <gibberish>                      insert a typedef
  using <name> = <gibberish>               insert a using-declaration (C++11+)
  explain <gibberish>                      emit an English description
  show <name>|all|predefined|user [typedef|using]
                                            list stored definitions
  set <option>=<value>|<option>            toggle an option
  help, ?                                  show this text
  exit, quit                               end the session
`
