// Package gibberish implements the C/C++ declarator printer of spec.md
// §4.7: two passes (prefix, postfix) interleaved in a single recursive
// traversal, with parenthesization, star-collapsing, Apple blocks, MS
// calling conventions, east-const, di/trigraphs, the `using` flavor, and
// scoped-typedef nesting.
package gibberish

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oxhq/cdecl/internal/ast"
	"github.com/oxhq/cdecl/internal/dialect"
	"github.com/oxhq/cdecl/internal/typekind"
)

// GraphMode selects di/trigraph substitution on emit (spec.md §4.7).
type GraphMode uint8

const (
	GraphNone GraphMode = iota
	GraphDigraphs
	GraphTrigraphs
)

// Options configures the printer's flavor flags (spec.md §6.3).
type Options struct {
	EastConst         bool
	AlternativeTokens bool // accepted but has no effect on output (see applyAltTokens)
	Graphs            GraphMode
	UsingFlavor       bool // typedef printed as `using T = ...;` in C++11+
	Dialect           dialect.Dialect
}

// Print renders the declarator rooted at root with identifier name, e.g.
// "int *a" or "void (*p)(int)". name is printed as-is; pass "" for an
// abstract declarator (spec.md's `cast` command).
func Print(g *ast.Graph, root ast.NodeRef, name string, opts Options) string {
	p := &printer{g: g, opts: opts}
	text := p.declarator(root, name)
	return applyGraphs(applyAltTokens(text, opts), opts)
}

// PrintTypedef renders a full typedef/using definition for name aliasing
// root, honoring the `using` flavor and scoped (namespace/class) nesting of
// spec.md §4.7's last two paragraphs.
func PrintTypedef(g *ast.Graph, name ast.ScopedName, root ast.NodeRef, opts Options) string {
	leaf := name.Leaf()
	p := &printer{g: g, opts: opts}

	var body string
	if opts.UsingFlavor && opts.Dialect.IsCPP() && opts.Dialect >= dialect.CPP11 {
		body = fmt.Sprintf("using %s = %s;", leaf, p.declarator(root, ""))
	} else {
		body = fmt.Sprintf("typedef %s;", p.declarator(root, leaf))
	}

	scoped := wrapScopes(name, body, opts.Dialect)
	return applyGraphs(applyAltTokens(scoped, opts), opts)
}

// wrapScopes nests body inside the namespace/class/struct scope segments a
// ScopedName carries, other than its final (leaf) segment. C++17+ uses
// nested-namespace syntax (`namespace a::b {`); earlier dialects fall back
// to separately nested braces.
func wrapScopes(name ast.ScopedName, body string, d dialect.Dialect) string {
	if len(name) <= 1 {
		return body
	}
	segs := name[:len(name)-1]

	if d >= dialect.CPP17 {
		allNamespace := true
		for _, s := range segs {
			if s.Kind != ast.ScopeNamespaceSeg {
				allNamespace = false
				break
			}
		}
		if allNamespace {
			names := make([]string, len(segs))
			for i, s := range segs {
				names[i] = s.Name
			}
			return fmt.Sprintf("namespace %s {\n%s\n}", strings.Join(names, "::"), indent(body))
		}
	}

	out := body
	for i := len(segs) - 1; i >= 0; i-- {
		kw := scopeKeyword(segs[i].Kind)
		out = fmt.Sprintf("%s %s {\n%s\n}", kw, segs[i].Name, indent(out))
	}
	return out
}

func scopeKeyword(k ast.ScopeSegmentKind) string {
	switch k {
	case ast.ScopeClassSeg:
		return "class"
	case ast.ScopeStructSeg:
		return "struct"
	case ast.ScopeUnionSeg:
		return "union"
	default:
		return "namespace"
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}

type printer struct {
	g    *ast.Graph
	opts Options
}

// declarator is the single recursive traversal spec.md §4.7 describes as
// two interleaved passes: at each node, the prefix operator for this node
// is wedged onto inner (already built from everything nearer the
// identifier), parenthesized when this node's operator binds looser than
// its child's, and the walk continues toward the type-specifier leaf, which
// prints itself followed by the accumulated inner text.
func (p *printer) declarator(ref ast.NodeRef, inner string) string {
	n := p.g.Node(ref)

	switch n.Kind {
	case ast.KindPointer:
		sigil := "*" + qualifierGap(n.Type)
		if n.Of != ast.NoRef {
			sigil = ccPrefix(p.g.Node(n.Of).CallingConvention) + sigil
		}
		combined := collapseOrWrap(sigil, inner, p.childKind(n.Of), needsParensFor(ast.KindPointer))
		return p.declarator(n.Of, combined)

	case ast.KindReference:
		combined := wrapIfNeeded("&"+inner, p.childKind(n.Of), needsParensFor(ast.KindReference))
		return p.declarator(n.Of, combined)

	case ast.KindRvalueReference:
		combined := wrapIfNeeded("&&"+inner, p.childKind(n.Of), needsParensFor(ast.KindRvalueReference))
		return p.declarator(n.Of, combined)

	case ast.KindPointerToMember:
		sigil := n.MemberOfClass.String() + "::*" + qualifierGap(n.Type)
		combined := wrapIfNeeded(sigil+inner, p.childKind(n.Of), needsParensFor(ast.KindPointerToMember))
		return p.declarator(n.Of, combined)

	case ast.KindAppleBlock:
		cc := ccPrefix(n.CallingConvention)
		block := "(^" + cc + inner + ")" + p.paramList(n) + p.tailQualifiers(n)
		if n.Return == ast.NoRef {
			return block
		}
		return p.declarator(n.Return, block)

	case ast.KindArray:
		combined := inner + "[" + arraySizeText(n) + "]"
		return p.declarator(n.Of, combined)

	case ast.KindFunction, ast.KindOperator, ast.KindLambda,
		ast.KindUserDefinedConversion, ast.KindUserDefinedLiteral:
		combined := inner + p.paramList(n) + p.tailQualifiers(n)
		if n.Return == ast.NoRef {
			return combined
		}
		return p.declarator(n.Return, combined)

	case ast.KindConstructor, ast.KindDestructor:
		return inner + p.paramList(n)

	case ast.KindBuiltin:
		return p.leaf(typeTokens(n.Type, p.opts.EastConst), inner, n.BitWidth)

	case ast.KindECSU:
		return p.leaf(ecsuTokens(n.Type, n.TypeName, p.opts.EastConst), inner, n.BitWidth)

	case ast.KindTypedefRef:
		return p.leaf(n.TypeName.String(), inner, n.BitWidth)

	case ast.KindVariadic:
		return "..."

	case ast.KindName:
		if inner != "" {
			return n.Name.String() + " " + inner
		}
		return n.Name.String()

	case ast.KindPlaceholder:
		return inner

	default:
		return inner
	}
}

func (p *printer) leaf(typeText, inner string, bitWidth int) string {
	out := typeText
	if inner != "" {
		out += " " + inner
	}
	if bitWidth > 0 {
		out += " : " + strconv.Itoa(bitWidth)
	}
	return out
}

func (p *printer) childKind(ref ast.NodeRef) ast.Kind {
	if ref == ast.NoRef {
		return ast.KindPlaceholder
	}
	return p.g.Node(ref).Kind
}

// needsParensFor reports, for a given parent declarator-operator kind,
// which child kinds bind tighter and so force parenthesization (spec.md
// §4.7's parenthesization rule): array and every function-like kind.
func needsParensFor(parent ast.Kind) func(child ast.Kind) bool {
	return func(child ast.Kind) bool {
		if parent == ast.KindPointer && child == ast.KindPointer {
			return false // consecutive stars collapse, spec.md §4.7
		}
		return child == ast.KindArray || child.In(ast.FunctionLike)
	}
}

func wrapIfNeeded(text string, child ast.Kind, needs func(ast.Kind) bool) string {
	if needs(child) {
		return "(" + text + ")"
	}
	return text
}

// collapseOrWrap is wrapIfNeeded specialized for pointers, where the
// star-collapsing exemption in needsParensFor already does the right thing;
// kept as a separate name to mirror spec.md §4.7's explicit callout of star
// collapsing as a distinct rule from parenthesization in general.
func collapseOrWrap(sigil, inner string, child ast.Kind, needs func(ast.Kind) bool) string {
	return wrapIfNeeded(sigil+inner, child, needs)
}

func (p *printer) paramList(n *ast.Node) string {
	parts := make([]string, 0, len(n.Params))
	for _, ref := range n.Params {
		parts = append(parts, p.param(ref))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (p *printer) param(ref ast.NodeRef) string {
	n := p.g.Node(ref)
	if n.Kind == ast.KindVariadic {
		return "..."
	}
	if n.Kind == ast.KindName {
		return n.Name.String()
	}
	return p.declarator(ref, n.Name.Leaf())
}

// tailQualifiers prints function-tail operators in spec.md §4.7's fixed
// order: cv-qualifiers, ref-qualifier, noexcept/throw(), override/final,
// pure-virtual/defaulted/deleted.
func (p *printer) tailQualifiers(n *ast.Node) string {
	var b strings.Builder
	t := n.Type
	if t.Has(typekind.Const) {
		b.WriteString(" const")
	}
	if t.Has(typekind.Volatile) {
		b.WriteString(" volatile")
	}
	if t.Has(typekind.LValueRef) {
		b.WriteString(" &")
	}
	if t.Has(typekind.RValueRef) {
		b.WriteString(" &&")
	}
	if t.Has(typekind.Noexcept) {
		b.WriteString(" noexcept")
	}
	if t.Has(typekind.ThrowSpec) {
		b.WriteString(" throw()")
	}
	if t.Has(typekind.Override) {
		b.WriteString(" override")
	}
	if t.Has(typekind.Final) {
		b.WriteString(" final")
	}
	if t.Has(typekind.PureVirtual) {
		b.WriteString(" = 0")
	}
	if t.Has(typekind.Defaulted) {
		b.WriteString(" = default")
	}
	if t.Has(typekind.Deleted) {
		b.WriteString(" = delete")
	}
	return b.String()
}

func ccPrefix(cc string) string {
	if cc == "" {
		return ""
	}
	return cc + " "
}

func arraySizeText(n *ast.Node) string {
	switch {
	case n.ArraySize.Variable:
		return "*"
	case n.ArraySize.Unspecified:
		return ""
	default:
		return strconv.Itoa(n.ArraySize.Value)
	}
}

// qualifierGap renders qualifierSuffix's output followed by a separating
// space, so a qualified sigil ("* const ") doesn't run straight into the
// declarator text that follows it. An unqualified pointer stays glued to
// its declarator ("*x"), matching the unqualified case exactly.
func qualifierGap(t typekind.TypeID) string {
	q := qualifierSuffix(t)
	if q == "" {
		return ""
	}
	return q + " "
}

// qualifierSuffix renders the qualifiers attached directly to a
// pointer/pointer-to-member node (`* const`, `* volatile`).
func qualifierSuffix(t typekind.TypeID) string {
	var b strings.Builder
	if t.Has(typekind.Const) {
		b.WriteString(" const")
	}
	if t.Has(typekind.Volatile) {
		b.WriteString(" volatile")
	}
	if t.Has(typekind.Restrict) {
		b.WriteString(" restrict")
	}
	if t.Has(typekind.Atomic) {
		b.WriteString(" _Atomic")
	}
	return b.String()
}

// typeTokens renders a Builtin node's base-type and storage tokens, in
// east-const order when requested (qualifiers moved after the type token).
func typeTokens(t typekind.TypeID, eastConst bool) string {
	storage := typekind.Name(t.Sector(typekind.MaskStorage) | t.Sector(typekind.MaskStorageLike) | t.Sector(typekind.MaskAttribute))
	base := typekind.Name(t.Sector(typekind.MaskBase))
	qual := typekind.Name(t.Sector(typekind.MaskQualifier))

	var parts []string
	if storage != "" {
		parts = append(parts, storage)
	}
	if !eastConst && qual != "" {
		parts = append(parts, qual)
	}
	if base != "" {
		parts = append(parts, base)
	}
	if eastConst && qual != "" {
		parts = append(parts, qual)
	}
	return strings.Join(parts, " ")
}

func ecsuTokens(t typekind.TypeID, name ast.ScopedName, eastConst bool) string {
	kw := "enum"
	switch {
	case t.Has(typekind.Struct):
		kw = "struct"
	case t.Has(typekind.Union):
		kw = "union"
	case t.Has(typekind.Class):
		kw = "class"
	}
	qual := typekind.Name(t.Sector(typekind.MaskQualifier))
	tag := kw + " " + name.String()
	if qual == "" {
		return tag
	}
	if eastConst {
		return tag + " " + qual
	}
	return qual + " " + tag
}

// applyAltTokens returns s unchanged whether or not
// Options.AlternativeTokens is set: no alternative token ("and", "bitand",
// ...) is substituted for `&&` or `&` in this printer's output.
func applyAltTokens(s string, opts Options) string {
	if !opts.AlternativeTokens {
		return s
	}
	return s
}

// applyGraphs substitutes bracket/brace/hash tokens character-by-character
// per spec.md §4.7's "graph substitution", when the active dialect allows
// the selected mode (trigraphs are withdrawn after C++14, spec.md §8).
func applyGraphs(s string, opts Options) string {
	if opts.Graphs == GraphNone {
		return s
	}
	if opts.Graphs == GraphTrigraphs && !dialect.UpToCPP14.Allows(opts.Dialect) {
		return s
	}
	var repl *strings.Replacer
	switch opts.Graphs {
	case GraphDigraphs:
		repl = strings.NewReplacer("[", "<:", "]", ":>", "{", "<%", "}", "%>", "#", "%:")
	case GraphTrigraphs:
		repl = strings.NewReplacer("[", "??(", "]", "??)", "{", "??<", "}", "??>", "#", "??=")
	default:
		return s
	}
	return repl.Replace(s)
}
