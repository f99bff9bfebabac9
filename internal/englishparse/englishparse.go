// Package englishparse implements a hand-written recursive-descent parser
// for the controlled English grammar of spec.md §4.6. The grammar is LL(1)
// by construction — each <kind-phrase> alternative starts on a distinct
// keyword — so no parser-generator is used or needed (documented as an
// intentional stdlib-only component in DESIGN.md).
package englishparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oxhq/cdecl/internal/ast"
	"github.com/oxhq/cdecl/internal/diag"
	"github.com/oxhq/cdecl/internal/typekind"
)

// Parse reads "<name> as <english>" or a bare "<english>" (for `cast`, which
// has no name) and returns the constructed AST's root plus the declared name,
// if any. The name is returned separately and is not written onto the root
// node's Name field; an ECSU or typedef-reference kind-phrase keeps its own
// tag/referent in TypeName.
func Parse(g *ast.Graph, input string) (ast.NodeRef, ast.ScopedName, error) {
	toks, err := lex(input)
	if err != nil {
		return ast.NoRef, nil, err
	}
	p := &parser{g: g, toks: toks}

	var name ast.ScopedName
	if len(toks) >= 2 && toks[1] == "as" && isIdent(toks[0]) {
		name = ast.Simple(toks[0])
		p.pos = 2
	}

	root, err := p.english()
	if err != nil {
		return ast.NoRef, nil, err
	}
	if !p.atEnd() {
		return ast.NoRef, nil, p.errorf("unexpected token %q", p.peek())
	}
	return root, name, nil
}

type parser struct {
	g    *ast.Graph
	toks []string
	pos  int
}

func (p *parser) atEnd() bool      { return p.pos >= len(p.toks) }
func (p *parser) peek() string {
	if p.atEnd() {
		return ""
	}
	return p.toks[p.pos]
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

var storageQualifierWords = map[string]typekind.TypeID{
	"const": typekind.Const, "volatile": typekind.Volatile, "restrict": typekind.Restrict,
	"atomic": typekind.Atomic,
	"static": typekind.Static, "extern": typekind.Extern, "register": typekind.Register,
	"mutable": typekind.Mutable, "thread_local": typekind.ThreadLocal, "typedef": typekind.Typedef,
	"auto": typekind.StorageAuto,
	"inline": typekind.Inline, "virtual": typekind.Virtual, "explicit": typekind.Explicit,
	"friend": typekind.Friend, "constexpr": typekind.Constexpr, "consteval": typekind.Consteval,
	"override": typekind.Override, "final": typekind.Final, "noexcept": typekind.Noexcept,
	"deprecated": typekind.Deprecated, "nodiscard": typekind.Nodiscard,
	"non-returning": typekind.Noreturn, "maybe-unused": typekind.MaybeUnused,
	"carries-dependency": typekind.CarriesDependency,
}

var builtinWords = map[string]typekind.TypeID{
	"void": typekind.Void, "bool": typekind.Bool, "char": typekind.Char,
	"char8_t": typekind.Char8T, "char16_t": typekind.Char16T, "char32_t": typekind.Char32T,
	"wchar_t": typekind.WCharT, "short": typekind.Short, "int": typekind.Int,
	"long": typekind.Long, "signed": typekind.Signed, "unsigned": typekind.Unsigned,
	"float": typekind.Float, "double": typekind.Double,
}

// english parses <storage>* <qualifier>* <kind-phrase>, then an optional
// "of"/"to"/"returning" continuation, per spec.md §4.6.
func (p *parser) english() (ast.NodeRef, error) {
	var mods typekind.TypeID
	for {
		if bit, ok := storageQualifierWords[p.peek()]; ok {
			merged, err := typekind.Add(mods, bit, p.peek(), typekind.Location{})
			if err != nil {
				return ast.NoRef, err
			}
			mods = merged
			p.next()
			continue
		}
		break
	}

	root, err := p.kindPhrase(mods)
	if err != nil {
		return ast.NoRef, err
	}
	return root, nil
}

func (p *parser) kindPhrase(mods typekind.TypeID) (ast.NodeRef, error) {
	switch p.peek() {
	case "array":
		p.next()
		return p.array(mods)
	case "variable":
		p.next()
		if err := p.expect("length"); err != nil {
			return ast.NoRef, err
		}
		if err := p.expect("array"); err != nil {
			return ast.NoRef, err
		}
		return p.arrayWithSize(mods, ast.ArraySize{Variable: true})
	case "pointer":
		p.next()
		if p.peek() == "to" && p.lookahead(1) == "member" {
			return p.pointerToMember(mods)
		}
		return p.unary(ast.KindPointer, mods, "to")
	case "reference":
		p.next()
		return p.unary(ast.KindReference, mods, "to")
	case "rvalue":
		p.next()
		if err := p.expect("reference"); err != nil {
			return ast.NoRef, err
		}
		return p.unary(ast.KindRvalueReference, mods, "to")
	case "member":
		p.next()
		return p.functionLike(mods, true)
	case "non-member":
		p.next()
		return p.functionLike(mods, false)
	case "function", "block", "operator", "conversion", "literal":
		return p.functionLike(mods, false)
	case "constructor":
		p.next()
		return p.ctorDtor(ast.KindConstructor, mods)
	case "destructor":
		p.next()
		return p.ctorDtor(ast.KindDestructor, mods)
	case "enum", "struct", "union", "class":
		return p.ecsu(mods)
	case "...":
		p.next()
		return p.g.New(ast.KindVariadic), nil
	default:
		if bit, ok := builtinWords[p.peek()]; ok {
			return p.builtin(mods, bit)
		}
		if isIdent(p.peek()) {
			name := p.next()
			ref := p.g.New(ast.KindTypedefRef)
			p.g.Node(ref).TypeName = ast.Simple(name)
			p.g.Node(ref).Type = mods
			return ref, nil
		}
		return ast.NoRef, p.errorf("expected a type description, found %q", p.peek())
	}
}

func (p *parser) lookahead(n int) string {
	if p.pos+n >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos+n]
}

func (p *parser) array(mods typekind.TypeID) (ast.NodeRef, error) {
	size := ast.ArraySize{Unspecified: true}
	if n, err := strconv.Atoi(p.peek()); err == nil {
		p.next()
		size = ast.ArraySize{Value: n}
	}
	return p.arrayWithSize(mods, size)
}

func (p *parser) arrayWithSize(mods typekind.TypeID, size ast.ArraySize) (ast.NodeRef, error) {
	if err := p.expect("of"); err != nil {
		return ast.NoRef, err
	}
	child, err := p.english()
	if err != nil {
		return ast.NoRef, err
	}
	ref := p.g.New(ast.KindArray)
	n := p.g.Node(ref)
	n.ArrayQualifiers = mods
	n.ArraySize = size
	p.g.SetOf(ref, child)
	return ref, nil
}

func (p *parser) unary(kind ast.Kind, mods typekind.TypeID, connective string) (ast.NodeRef, error) {
	if err := p.expect(connective); err != nil {
		return ast.NoRef, err
	}
	child, err := p.english()
	if err != nil {
		return ast.NoRef, err
	}
	ref := p.g.New(kind)
	p.g.Node(ref).Type = mods
	p.g.SetOf(ref, child)
	return ref, nil
}

func (p *parser) pointerToMember(mods typekind.TypeID) (ast.NodeRef, error) {
	if err := p.expect("to"); err != nil {
		return ast.NoRef, err
	}
	if err := p.expect("member"); err != nil {
		return ast.NoRef, err
	}
	if err := p.expect("of"); err != nil {
		return ast.NoRef, err
	}
	if err := p.expect("class"); err != nil {
		return ast.NoRef, err
	}
	if !isIdent(p.peek()) {
		return ast.NoRef, p.errorf("expected class name, found %q", p.peek())
	}
	class := p.next()
	if err := p.expect("of"); err != nil {
		return ast.NoRef, err
	}
	child, err := p.english()
	if err != nil {
		return ast.NoRef, err
	}
	ref := p.g.New(ast.KindPointerToMember)
	n := p.g.Node(ref)
	n.Type = mods
	n.MemberOfClass = ast.Simple(class)
	p.g.SetOf(ref, child)
	return ref, nil
}

func (p *parser) functionLike(mods typekind.TypeID, isMember bool) (ast.NodeRef, error) {
	var kind ast.Kind
	switch p.next() {
	case "function":
		kind = ast.KindFunction
	case "block":
		kind = ast.KindAppleBlock
	case "operator":
		kind = ast.KindOperator
	case "conversion":
		if err := p.expect("operator"); err != nil {
			return ast.NoRef, err
		}
		kind = ast.KindUserDefinedConversion
	case "literal":
		if err := p.expect("operator"); err != nil {
			return ast.NoRef, err
		}
		kind = ast.KindUserDefinedLiteral
	default:
		return ast.NoRef, p.errorf("expected function/block/operator")
	}

	ref := p.g.New(kind)
	n := p.g.Node(ref)
	n.Type = mods
	n.Member = isMember

	params, err := p.paramList()
	if err != nil {
		return ast.NoRef, err
	}
	for _, pr := range params {
		p.g.AppendParam(ref, pr)
	}

	if err := p.expect("returning"); err != nil {
		return ast.NoRef, err
	}
	ret, err := p.english()
	if err != nil {
		return ast.NoRef, err
	}
	p.g.SetReturn(ref, ret)
	return ref, nil
}

func (p *parser) ctorDtor(kind ast.Kind, mods typekind.TypeID) (ast.NodeRef, error) {
	ref := p.g.New(kind)
	p.g.Node(ref).Type = mods
	params, err := p.paramList()
	if err != nil {
		return ast.NoRef, err
	}
	for _, pr := range params {
		p.g.AppendParam(ref, pr)
	}
	return ref, nil
}

func (p *parser) paramList() ([]ast.NodeRef, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var out []ast.NodeRef
	if p.peek() == ")" {
		p.next()
		return out, nil
	}
	for {
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		out = append(out, param)
		if p.peek() == "," {
			p.next()
			continue
		}
		break
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return out, nil
}

// param parses "<name> as <english>", "<english>", a bare "<name>" (K&R
// untyped), or "...".
func (p *parser) param() (ast.NodeRef, error) {
	if p.peek() == "..." {
		p.next()
		return p.g.New(ast.KindVariadic), nil
	}
	if isIdent(p.peek()) && p.lookahead(1) == "as" {
		name := p.next()
		p.next() // "as"
		root, err := p.english()
		if err != nil {
			return ast.NoRef, err
		}
		p.g.Node(root).Name = ast.Simple(name)
		return root, nil
	}
	if _, isKeyword := builtinWords[p.peek()]; isIdent(p.peek()) && !isKeyword && (p.lookahead(1) == "," || p.lookahead(1) == ")") {
		name := p.next()
		ref := p.g.New(ast.KindName)
		p.g.Node(ref).Name = ast.Simple(name)
		return ref, nil
	}
	return p.english()
}

func (p *parser) ecsu(mods typekind.TypeID) (ast.NodeRef, error) {
	var bit typekind.TypeID
	switch p.next() {
	case "enum":
		bit = typekind.Enum
	case "struct":
		bit = typekind.Struct
	case "union":
		bit = typekind.Union
	case "class":
		bit = typekind.Class
	}
	if !isIdent(p.peek()) {
		return ast.NoRef, p.errorf("expected a tag name, found %q", p.peek())
	}
	name := p.next()
	ref := p.g.New(ast.KindECSU)
	n := p.g.Node(ref)
	n.Type = mods | bit
	n.TypeName = ast.Simple(name)
	return ref, nil
}

func (p *parser) builtin(mods, bit typekind.TypeID) (ast.NodeRef, error) {
	t, err := typekind.Add(mods, bit, p.peek(), typekind.Location{})
	if err != nil {
		return ast.NoRef, err
	}
	p.next()
	for {
		next, ok := builtinWords[p.peek()]
		if !ok {
			break
		}
		merged, err := typekind.Add(t, next, p.peek(), typekind.Location{})
		if err != nil {
			return ast.NoRef, err
		}
		t = merged
		p.next()
	}
	var bitWidth int
	if p.peek() == ":" {
		p.next()
		n, err := strconv.Atoi(p.next())
		if err != nil {
			return ast.NoRef, p.errorf("expected integer bit-field width")
		}
		bitWidth = n
	}
	ref := p.g.New(ast.KindBuiltin)
	node := p.g.Node(ref)
	node.Type = t
	node.BitWidth = bitWidth
	return ref, nil
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

// lex splits input into whitespace-delimited tokens, keeping "(", ")", ",",
// ":", and "..." as standalone tokens even when not space-separated.
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
		switch {
		case r == ' ' || r == '\t':
			flush()
		case r == '(' || r == ')' || r == ',' || r == ':':
			flush()
			toks = append(toks, string(r))
		case r == '.' && i+2 < len(runes) && runes[i+1] == '.' && runes[i+2] == '.':
			flush()
			toks = append(toks, "...")
			i += 2
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	if len(toks) == 0 {
		return nil, fmt.Errorf("englishparse: empty input")
	}
	return toks, nil
}
