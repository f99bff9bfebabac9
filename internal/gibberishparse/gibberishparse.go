// Package gibberishparse implements a bounded recursive-descent parser for
// C/C++ declarator syntax (spec.md §6.2): storage classes, qualifiers, the
// built-in base-type keywords, pointers/references/rvalue-references,
// arrays (including `[static N]`/`[*]`), function parameter lists
// (including K&R untyped and variadic), pointer-to-member (`C::*`), ECSU
// tags, and trailing-return-type (`-> T`) syntax. It deliberately does not
// implement templates or a full constant-expression grammar for array
// sizes/bit-field widths — spec.md §1 excludes evaluating constant
// expressions, and this front end sticks to integer literals there.
package gibberishparse

import (
	"strconv"
	"strings"

	"github.com/oxhq/cdecl/internal/ast"
	"github.com/oxhq/cdecl/internal/astbuilder"
	"github.com/oxhq/cdecl/internal/diag"
	"github.com/oxhq/cdecl/internal/typekind"
)

// KnownTypedef reports whether name is a registered typedef, letting the
// parser distinguish a typedef-name type-specifier from an unknown
// identifier without importing internal/typedef directly.
type KnownTypedef func(name string) bool

// Parse reads a full declaration (e.g. "int *const a[3]") and returns its
// AST root. isTypedef may be nil, in which case no bareword is ever treated
// as a typedef name (every bareword type-specifier must be a recognized
// keyword or an ECSU tag).
func Parse(g *ast.Graph, input string, isTypedef KnownTypedef) (ast.NodeRef, error) {
	toks, err := lex(input)
	if err != nil {
		return ast.NoRef, err
	}
	p := &parser{g: g, toks: toks, isTypedef: isTypedef}

	spec, err := p.declSpecifiers()
	if err != nil {
		return ast.NoRef, err
	}

	declAST := astbuilder.NewPartial(p.g)
	declAST, err = p.declarator(declAST)
	if err != nil {
		return ast.NoRef, err
	}

	if p.peek() == "->" {
		p.next()
		trailing, err := p.declSpecifiers()
		if err != nil {
			return ast.NoRef, err
		}
		trailingDecl := astbuilder.NewPartial(p.g)
		trailingDecl, err = p.declarator(trailingDecl)
		if err != nil {
			return ast.NoRef, err
		}
		typeAST, err := trailing.build(p.g)
		if err != nil {
			return ast.NoRef, err
		}
		trailingRoot, err := astbuilder.Patch(p.g, typeAST, trailingDecl)
		if err != nil {
			return ast.NoRef, err
		}
		root, err := astbuilder.Patch(p.g, trailingRoot, declAST)
		if err != nil {
			return ast.NoRef, err
		}
		if !p.atEnd() {
			return ast.NoRef, p.errorf("unexpected trailing input %q", p.peek())
		}
		return root, nil
	}

	typeAST, err := spec.build(p.g)
	if err != nil {
		return ast.NoRef, err
	}
	root, err := astbuilder.Patch(p.g, typeAST, declAST)
	if err != nil {
		return ast.NoRef, err
	}
	if !p.atEnd() {
		return ast.NoRef, p.errorf("unexpected trailing input %q", p.peek())
	}
	return root, nil
}

type parser struct {
	g         *ast.Graph
	toks      []string
	pos       int
	isTypedef KnownTypedef
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }
func (p *parser) peek() string {
	if p.atEnd() {
		return ""
	}
	return p.toks[p.pos]
}
func (p *parser) lookahead(n int) string {
	if p.pos+n >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos+n]
}
func (p *parser) next() string { t := p.peek(); p.pos++; return t }

func (p *parser) errorf(format string, args ...any) error {
	return diag.New(diag.CodeSyntax, diag.Location{}, format, args...)
}

func (p *parser) expect(tok string) error {
	if p.peek() != tok {
		return p.errorf("expected %q, found %q", tok, p.peek())
	}
	p.next()
	return nil
}

var storageWords = map[string]typekind.TypeID{
	"static": typekind.Static, "extern": typekind.Extern, "register": typekind.Register,
	"mutable": typekind.Mutable, "thread_local": typekind.ThreadLocal, "typedef": typekind.Typedef,
	"auto": typekind.StorageAuto, "__block": typekind.AppleBlock,
}

var qualifierWords = map[string]typekind.TypeID{
	"const": typekind.Const, "volatile": typekind.Volatile, "restrict": typekind.Restrict,
	"_Atomic": typekind.Atomic,
}

var storageLikeWords = map[string]typekind.TypeID{
	"inline": typekind.Inline, "virtual": typekind.Virtual, "explicit": typekind.Explicit,
	"friend": typekind.Friend, "constexpr": typekind.Constexpr, "consteval": typekind.Consteval,
	"override": typekind.Override, "final": typekind.Final, "noexcept": typekind.Noexcept,
}

var builtinWords = map[string]typekind.TypeID{
	"void": typekind.Void, "bool": typekind.Bool, "_Bool": typekind.Bool, "char": typekind.Char,
	"char8_t": typekind.Char8T, "char16_t": typekind.Char16T, "char32_t": typekind.Char32T,
	"wchar_t": typekind.WCharT, "short": typekind.Short, "int": typekind.Int,
	"long": typekind.Long, "signed": typekind.Signed, "unsigned": typekind.Unsigned,
	"float": typekind.Float, "double": typekind.Double, "_Complex": typekind.Complex,
	"_Imaginary": typekind.Imaginary,
}

// typeSpec carries the declaration-specifiers parsed so far, deferred until
// the caller decides (trailing-return or not) which one actually builds the
// type-specifier AST node.
type typeSpec struct {
	mods    typekind.TypeID
	ecsuBit typekind.TypeID // 0 unless an ECSU tag was seen
	tagName string
	typedef string // set when a known typedef name was consumed as the base type
}

func (s typeSpec) build(g *ast.Graph) (ast.NodeRef, error) {
	switch {
	case s.typedef != "":
		ref := g.New(ast.KindTypedefRef)
		n := g.Node(ref)
		n.TypeName = ast.Simple(s.typedef)
		n.Type = s.mods
		return ref, nil
	case s.ecsuBit != 0:
		ref := g.New(ast.KindECSU)
		n := g.Node(ref)
		n.Type = s.mods | s.ecsuBit
		n.TypeName = ast.Simple(s.tagName)
		return ref, nil
	default:
		ref := g.New(ast.KindBuiltin)
		g.Node(ref).Type = s.mods
		return ref, nil
	}
}

// declSpecifiers consumes storage classes, qualifiers, storage-class-like
// keywords, base-type keywords, an ECSU tag, or a known typedef name.
func (p *parser) declSpecifiers() (typeSpec, error) {
	var spec typeSpec
	for {
		tok := p.peek()
		if bit, ok := storageWords[tok]; ok {
			merged, err := typekind.Add(spec.mods, bit, tok, typekind.Location{})
			if err != nil {
				return spec, err
			}
			spec.mods = merged
			p.next()
			continue
		}
		if bit, ok := qualifierWords[tok]; ok {
			spec.mods |= bit
			p.next()
			continue
		}
		if bit, ok := storageLikeWords[tok]; ok {
			spec.mods |= bit
			p.next()
			continue
		}
		break
	}

	switch p.peek() {
	case "enum", "struct", "union", "class":
		kw := p.next()
		switch kw {
		case "enum":
			spec.ecsuBit = typekind.Enum
		case "struct":
			spec.ecsuBit = typekind.Struct
		case "union":
			spec.ecsuBit = typekind.Union
		case "class":
			spec.ecsuBit = typekind.Class
		}
		if !isIdent(p.peek()) {
			return spec, p.errorf("expected a tag name, found %q", p.peek())
		}
		spec.tagName = p.next()
		return spec, nil
	}

	for {
		tok := p.peek()
		if bit, ok := builtinWords[tok]; ok {
			merged, err := typekind.Add(spec.mods, bit, tok, typekind.Location{})
			if err != nil {
				return spec, err
			}
			spec.mods = merged
			p.next()
			continue
		}
		break
	}

	if spec.mods.Sector(typekind.MaskBase) == 0 && isIdent(p.peek()) && p.isTypedef != nil && p.isTypedef(p.peek()) {
		spec.typedef = p.next()
	}

	return spec, nil
}

// declarator parses pointer/reference prefixes and direct-declarator
// suffixes, threading root through astbuilder's combinators exactly as
// spec.md §4.3 describes. Suffixes bind tighter than prefixes: the direct
// declarator is built on its own placeholder and the prefix chain is then
// patched into that placeholder, so "*a[3]" is an array of pointers.
func (p *parser) declarator(root ast.NodeRef) (ast.NodeRef, error) {
	prefixes, err := p.pointerPrefix(root)
	if err != nil {
		return root, err
	}
	if prefixes == root {
		return p.directDeclarator(root)
	}
	direct, err := p.directDeclarator(astbuilder.NewPartial(p.g))
	if err != nil {
		return root, err
	}
	return astbuilder.Patch(p.g, prefixes, direct)
}

// pointerPrefix consumes one prefix operator and wraps it around root (the
// declarator built so far, closer to the base type), then recurses so that
// each subsequently-encountered operator (closer to the identifier) becomes
// the new outermost node — e.g. for "*&r", '*' wraps the placeholder first,
// then '&' wraps THAT, yielding reference-to-pointer, matching spec.md
// §4.3's inside-out construction exactly.
func (p *parser) pointerPrefix(root ast.NodeRef) (ast.NodeRef, error) {
	switch {
	case p.peek() == "*":
		p.next()
		ref := p.g.New(ast.KindPointer)
		p.g.SetOf(ref, root)
		ref = p.withQualifiers(ref)
		return p.pointerPrefix(ref)
	case p.peek() == "&&":
		p.next()
		ref := p.g.New(ast.KindRvalueReference)
		p.g.SetOf(ref, root)
		return p.pointerPrefix(ref)
	case p.peek() == "&":
		p.next()
		ref := p.g.New(ast.KindReference)
		p.g.SetOf(ref, root)
		return p.pointerPrefix(ref)
	case isIdent(p.peek()) && p.lookahead(1) == "::" && p.lookahead(2) == "*":
		class := p.next()
		p.next() // ::
		p.next() // *
		ref := p.g.New(ast.KindPointerToMember)
		n := p.g.Node(ref)
		n.MemberOfClass = ast.Simple(class)
		p.g.SetOf(ref, root)
		ref = p.withQualifiers(ref)
		return p.pointerPrefix(ref)
	default:
		return root, nil
	}
}

// withQualifiers attaches any cv-qualifiers immediately following a pointer
// sigil (`* const`) onto ref's own Type.
func (p *parser) withQualifiers(ref ast.NodeRef) ast.NodeRef {
	for {
		bit, ok := qualifierWords[p.peek()]
		if !ok {
			break
		}
		p.g.Node(ref).Type |= bit
		p.next()
	}
	return ref
}


// directDeclarator parses "( declarator )" or a bare identifier, then any
// number of array/function suffixes.
func (p *parser) directDeclarator(root ast.NodeRef) (ast.NodeRef, error) {
	switch {
	case p.peek() == "(":
		// A "(" reached before any identifier has been consumed is always
		// a grouping paren (e.g. "(*p)[3]"); a function-call suffix only
		// ever appears after direct-declarator has already produced a
		// base, handled by the loop below instead.
		p.next()
		inner, err := p.declarator(root)
		if err != nil {
			return root, err
		}
		if err := p.expect(")"); err != nil {
			return root, err
		}
		root = inner
	case isIdent(p.peek()):
		name := p.next()
		if err := astbuilder.SetIdentifier(p.g, root, name); err != nil {
			return root, err
		}
	}

	for {
		switch p.peek() {
		case "[":
			var err error
			root, err = p.arraySuffix(root)
			if err != nil {
				return root, err
			}
		case "(":
			var err error
			root, err = p.functionSuffix(root)
			if err != nil {
				return root, err
			}
		default:
			return root, nil
		}
	}
}

func (p *parser) arraySuffix(root ast.NodeRef) (ast.NodeRef, error) {
	if err := p.expect("["); err != nil {
		return root, err
	}
	size := ast.ArraySize{Unspecified: true}
	var quals typekind.TypeID
	for {
		if bit, ok := qualifierWords[p.peek()]; ok {
			quals |= bit
			p.next()
			continue
		}
		break
	}
	if p.peek() == "static" {
		p.next()
	}
	switch {
	case p.peek() == "*":
		p.next()
		size = ast.ArraySize{Variable: true}
	case isNumber(p.peek()):
		n, _ := strconv.Atoi(p.next())
		size = ast.ArraySize{Value: n}
	}
	if err := p.expect("]"); err != nil {
		return root, err
	}
	arr := p.g.New(ast.KindArray)
	n := p.g.Node(arr)
	n.ArraySize = size
	n.ArrayQualifiers = quals
	return astbuilder.AddArray(p.g, root, arr)
}

func (p *parser) functionSuffix(root ast.NodeRef) (ast.NodeRef, error) {
	if err := p.expect("("); err != nil {
		return root, err
	}
	fn := p.g.New(ast.KindFunction)
	if p.peek() != ")" {
		for {
			param, err := p.parameter()
			if err != nil {
				return root, err
			}
			p.g.AppendParam(fn, param)
			if p.peek() == "," {
				p.next()
				continue
			}
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return root, err
	}

	for {
		if bit, ok := qualifierWords[p.peek()]; ok {
			p.g.Node(fn).Type |= bit
			p.next()
			continue
		}
		if bit, ok := storageLikeWords[p.peek()]; ok {
			p.g.Node(fn).Type |= bit
			p.next()
			continue
		}
		switch p.peek() {
		case "&":
			p.g.Node(fn).Type |= typekind.LValueRef
			p.next()
			continue
		case "&&":
			p.g.Node(fn).Type |= typekind.RValueRef
			p.next()
			continue
		case "throw":
			p.next()
			if err := p.expect("("); err != nil {
				return root, err
			}
			if err := p.expect(")"); err != nil {
				return root, err
			}
			p.g.Node(fn).Type |= typekind.ThrowSpec
			continue
		}
		break
	}
	if p.peek() == "=" {
		p.next()
		switch p.next() {
		case "0":
			p.g.Node(fn).Type |= typekind.PureVirtual
		case "default":
			p.g.Node(fn).Type |= typekind.Defaulted
		case "delete":
			p.g.Node(fn).Type |= typekind.Deleted
		}
	}

	return astbuilder.AddFunction(p.g, root, ast.NoRef, fn)
}

func (p *parser) parameter() (ast.NodeRef, error) {
	if p.peek() == "..." {
		p.next()
		return p.g.New(ast.KindVariadic), nil
	}
	// K&R untyped parameter: a bare identifier followed by "," or ")".
	_, isKeyword := builtinWords[p.peek()]
	isTypedefName := p.isTypedef != nil && p.isTypedef(p.peek())
	if isIdent(p.peek()) && !isKeyword && !isTypedefName && (p.lookahead(1) == "," || p.lookahead(1) == ")") {
		name := p.next()
		ref := p.g.New(ast.KindName)
		p.g.Node(ref).Name = ast.Simple(name)
		return ref, nil
	}
	spec, err := p.declSpecifiers()
	if err != nil {
		return ast.NoRef, err
	}
	declAST := astbuilder.NewPartial(p.g)
	declAST, err = p.declarator(declAST)
	if err != nil {
		return ast.NoRef, err
	}
	typeAST, err := spec.build(p.g)
	if err != nil {
		return ast.NoRef, err
	}
	return astbuilder.Patch(p.g, typeAST, declAST)
}

func isIdent(s string) bool {
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

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

var multiCharTokens = []string{"&&", "::", "->"}

// lex splits input into tokens: identifiers/numbers (whitespace-delimited,
// alphanumeric+underscore runs), and punctuation, preferring the longest
// multi-character punctuation token at each position.
func lex(input string) ([]string, error) {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == ' ' || r == '\t' || r == '\n' {
			flush()
			continue
		}
		matched := false
		for _, m := range multiCharTokens {
			mr := []rune(m)
			if i+len(mr) <= len(runes) && string(runes[i:i+len(mr)]) == m {
				flush()
				toks = append(toks, m)
				i += len(mr) - 1
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		switch r {
		case '*', '&', '(', ')', '[', ']', ',', ':', ';', '=':
			flush()
			toks = append(toks, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	if len(toks) == 0 {
		return nil, diag.New(diag.CodeSyntax, diag.Location{}, "empty declaration")
	}
	return toks, nil
}
