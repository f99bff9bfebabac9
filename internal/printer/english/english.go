// Package english implements the English-sentence printer of spec.md §4.6:
// a single top-down traversal of the AST emitting the controlled grammar
// ("pointer to function (int) returning array 3 of char", etc).
package english

import (
	"fmt"
	"strings"

	"github.com/oxhq/cdecl/internal/ast"
	"github.com/oxhq/cdecl/internal/astbuilder"
	"github.com/oxhq/cdecl/internal/typekind"
)

// Print renders the declaration rooted at root as an English sentence,
// spec.md §4.6's grammar, with no trailing punctuation or newline.
func Print(g *ast.Graph, root ast.NodeRef) string {
	var b strings.Builder
	p := printer{g: g}
	p.declaration(&b, root)
	return b.String()
}

type printer struct{ g *ast.Graph }

// declaration prints "<name> as <english>" when root's declarator chain
// carries a declared name (the name may sit on an inner node of that chain
// rather than on root itself), and
// just "<english>" otherwise. The `explain` command prepends the literal
// "declare " to this when echoing a named declaration back (spec.md §4.6).
func (p *printer) declaration(b *strings.Builder, root ast.NodeRef) {
	if name, ok := astbuilder.DeclaredName(p.g, root); ok {
		fmt.Fprintf(b, "%s as ", name.String())
	}
	p.english(b, root)
}

func (p *printer) english(b *strings.Builder, ref ast.NodeRef) {
	n := p.g.Node(ref)

	writeStorageAndQualifiers(b, n.Type)

	switch n.Kind {
	case ast.KindArray:
		b.WriteString("array ")
		writeSector(b, n.ArrayQualifiers)
		writeArraySize(b, n.ArraySize)
		b.WriteString("of ")
		p.english(b, n.Of)

	case ast.KindPointer:
		b.WriteString("pointer to ")
		p.english(b, n.Of)

	case ast.KindReference:
		b.WriteString("reference to ")
		p.english(b, n.Of)

	case ast.KindRvalueReference:
		b.WriteString("rvalue reference to ")
		p.english(b, n.Of)

	case ast.KindPointerToMember:
		fmt.Fprintf(b, "pointer to member of class %s of ", n.MemberOfClass.String())
		p.english(b, n.Of)

	case ast.KindAppleBlock:
		p.functionLike(b, n, "block")

	case ast.KindFunction:
		p.functionLike(b, n, "function")

	case ast.KindOperator:
		p.functionLike(b, n, "operator")

	case ast.KindLambda:
		p.functionLike(b, n, "lambda")

	case ast.KindUserDefinedConversion:
		p.functionLike(b, n, "conversion operator")

	case ast.KindUserDefinedLiteral:
		p.functionLike(b, n, "literal operator")

	case ast.KindConstructor:
		b.WriteString("constructor")
		p.paramList(b, n)

	case ast.KindDestructor:
		b.WriteString("destructor")
		p.paramList(b, n)

	case ast.KindBuiltin:
		b.WriteString(typekind.NameForError(n.Type.Sector(typekind.MaskBase)))
		if n.BitWidth > 0 {
			fmt.Fprintf(b, " : %d", n.BitWidth)
		}

	case ast.KindECSU:
		b.WriteString(ecsuKeyword(n.Type))
		b.WriteByte(' ')
		b.WriteString(n.TypeName.String())

	case ast.KindTypedefRef:
		b.WriteString(n.TypeName.String())

	case ast.KindVariadic:
		b.WriteString("...")

	case ast.KindName:
		b.WriteString(n.Name.String())

	case ast.KindPlaceholder:
		b.WriteString("<incomplete>")
	}
}

func (p *printer) functionLike(b *strings.Builder, n *ast.Node, keyword string) {
	if n.Member {
		b.WriteString("member ")
	}
	b.WriteString(keyword)
	b.WriteByte(' ')
	p.paramList(b, n)
	b.WriteString(" returning ")
	if n.Return != ast.NoRef {
		p.english(b, n.Return)
	}
}

func (p *printer) paramList(b *strings.Builder, n *ast.Node) {
	b.WriteByte('(')
	for i, ref := range n.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		p.param(b, ref)
	}
	b.WriteByte(')')
}

// param prints one parameter per spec.md §4.6: "<name> as <english>" for a
// typed, named parameter; "<english>" for an unnamed one; "<name>" for a
// K&R untyped (Name-kind) parameter; "..." for variadic.
func (p *printer) param(b *strings.Builder, ref ast.NodeRef) {
	n := p.g.Node(ref)
	if n.Kind == ast.KindVariadic {
		b.WriteString("...")
		return
	}
	if n.Kind == ast.KindName {
		b.WriteString(n.Name.String())
		return
	}
	if n.Name.IsEmpty() {
		p.english(b, ref)
		return
	}
	fmt.Fprintf(b, "%s as ", n.Name.String())
	p.english(b, ref)
}

func writeArraySize(b *strings.Builder, sz ast.ArraySize) {
	switch {
	case sz.Variable:
		b.WriteString("variable length array ")
	case sz.Unspecified:
		// unspecified size: nothing printed before "of"
	default:
		fmt.Fprintf(b, "%d ", sz.Value)
	}
}

func ecsuKeyword(t typekind.TypeID) string {
	switch {
	case t.Has(typekind.Struct):
		return "struct"
	case t.Has(typekind.Union):
		return "union"
	case t.Has(typekind.Class):
		return "class"
	default:
		return "enum"
	}
}

// writeStorageAndQualifiers prints storage class, storage-class-like, and
// qualifier sectors ahead of the kind-phrase, per spec.md §4.6's
// `<storage>* <qualifier>*` prefix.
func writeStorageAndQualifiers(b *strings.Builder, t typekind.TypeID) {
	writeSector(b, t.Sector(typekind.MaskStorage))
	writeSector(b, t.Sector(typekind.MaskStorageLike))
	writeSector(b, t.Sector(typekind.MaskQualifier))
	writeSector(b, t.Sector(typekind.MaskAttribute))
}

func writeSector(b *strings.Builder, t typekind.TypeID) {
	if t == 0 {
		return
	}
	name := typekind.NameForError(t)
	if name == "" {
		return
	}
	b.WriteString(name)
	b.WriteByte(' ')
}
