// Package astbuilder implements the AST construction combinators of
// spec.md §4.3 — the hardest algorithm in the system, because C declarator
// syntax is inside-out: the declarator nests the type *around* a
// placeholder that is only resolved once the type-specifier is known.
//
// Only ever one Placeholder is "open" at a time while a single declarator
// is being assembled (each combinator consumes the current placeholder and
// leaves behind at most one fresh one), so "locate the innermost
// Placeholder" below always means "follow the declarator-chain
// continuation slot down from root until a Placeholder is found".
package astbuilder

import (
	"fmt"

	"github.com/oxhq/cdecl/internal/ast"
)

// NewPartial starts a fresh partial declarator: a single Placeholder, ready
// to receive an identifier name and then be wrapped by Add* combinators.
func NewPartial(g *ast.Graph) ast.NodeRef {
	return g.New(ast.KindPlaceholder)
}

// SetIdentifier attaches name to the current innermost Placeholder of root,
// as the parser does the moment it consumes the declarator's identifier
// token (or, for K&R untyped parameters, the whole of the declarator).
func SetIdentifier(g *ast.Graph, root ast.NodeRef, name string) error {
	ph := innermostPlaceholder(g, root)
	if ph == ast.NoRef {
		return fmt.Errorf("astbuilder: no placeholder open to receive identifier %q", name)
	}
	g.Node(ph).Name = ast.Simple(name)
	return nil
}

// continuation returns the declarator-chain slot that Add* combinators
// should descend through for ref's kind: Of for pointer/reference/array/
// pointer-to-member, Return for function-like-with-return kinds, and
// ast.NoRef for anything else (including Placeholder itself, which IS the
// slot being sought).
func continuation(g *ast.Graph, ref ast.NodeRef) ast.NodeRef {
	n := g.Node(ref)
	switch n.Kind {
	case ast.KindPointer, ast.KindReference, ast.KindRvalueReference, ast.KindPointerToMember, ast.KindArray:
		return n.Of
	case ast.KindFunction, ast.KindAppleBlock, ast.KindOperator, ast.KindLambda,
		ast.KindUserDefinedConversion, ast.KindUserDefinedLiteral:
		return n.Return
	default:
		return ast.NoRef
	}
}

// innermostPlaceholder follows the continuation chain from root until it
// finds a Placeholder, per the package doc's single-open-placeholder
// invariant. Returns ast.NoRef if root's chain runs out without one
// (a malformed partial AST).
func innermostPlaceholder(g *ast.Graph, root ast.NodeRef) ast.NodeRef {
	cur := root
	for {
		if g.Node(cur).Kind == ast.KindPlaceholder {
			return cur
		}
		next := continuation(g, cur)
		if next == ast.NoRef {
			return ast.NoRef
		}
		cur = next
	}
}

// TakeName transfers ownership of ref's declared name to the caller,
// clearing it at ref (spec.md §4.3 "find/name take").
func TakeName(g *ast.Graph, ref ast.NodeRef) ast.ScopedName {
	n := g.Node(ref)
	name := n.Name
	n.Name = nil
	return name
}

// spliceChild replaces whichever slot of parent currently holds oldChild
// with newChild, re-parenting newChild. It is the mechanical heart of every
// Add* combinator and of Patch.
func spliceChild(g *ast.Graph, parent, oldChild, newChild ast.NodeRef) {
	if parent == ast.NoRef {
		return
	}
	n := g.Node(parent)
	switch {
	case n.Of == oldChild:
		n.Of = newChild
	case n.ECSUOf == oldChild:
		n.ECSUOf = newChild
	case n.Return == oldChild:
		n.Return = newChild
	default:
		for i, p := range n.Params {
			if p == oldChild {
				n.Params[i] = newChild
				break
			}
		}
	}
	g.Node(newChild).Parent = parent
}

// splice is the shared body of AddArray/AddFunction: locate the innermost
// placeholder of root, replace it with node (moving its declared name
// along), and report the new root (node itself, if the placeholder was
// root; root, otherwise).
func splice(g *ast.Graph, root, node ast.NodeRef) (newRoot ast.NodeRef, err error) {
	ph := innermostPlaceholder(g, root)
	if ph == ast.NoRef {
		return root, fmt.Errorf("astbuilder: no open placeholder in partial declarator")
	}
	name := TakeName(g, ph)
	if len(name) > 0 {
		g.Node(node).Name = name
	}
	parent := g.Node(ph).Parent
	if parent == ast.NoRef {
		g.Node(node).Parent = ast.NoRef
		return node, nil
	}
	spliceChild(g, parent, ph, node)
	return root, nil
}

// AddArray grafts arrayNode into the innermost placeholder slot of ast,
// preserving the remainder of the declarator chain, per spec.md §4.3.
// arrayNode.Of must be empty (ast.NoRef) on entry; on return it holds a
// fresh Placeholder awaiting the type-specifier.
func AddArray(g *ast.Graph, declAST, arrayNode ast.NodeRef) (ast.NodeRef, error) {
	if g.Node(arrayNode).Of != ast.NoRef {
		return declAST, fmt.Errorf("astbuilder: AddArray requires an empty array_node.Of")
	}
	newRoot, err := splice(g, declAST, arrayNode)
	if err != nil {
		return declAST, err
	}
	g.SetOf(arrayNode, g.New(ast.KindPlaceholder))
	return newRoot, nil
}

// AddFunction grafts functionNode into the innermost placeholder slot of
// ast, exactly as AddArray does, and sets its return-type slot. If
// returnAST is ast.NoRef, a fresh Placeholder is left instead, to be filled
// later by the ordinary type-specifier Patch; a non-NoRef returnAST is used
// as-is, for trailing-return-type syntax (`-> T`), which supplies the
// return type before the type-specifier is ever consulted.
func AddFunction(g *ast.Graph, declAST ast.NodeRef, returnAST ast.NodeRef, functionNode ast.NodeRef) (ast.NodeRef, error) {
	if g.Node(functionNode).Return != ast.NoRef {
		return declAST, fmt.Errorf("astbuilder: AddFunction requires an empty function_node.Return")
	}
	newRoot, err := splice(g, declAST, functionNode)
	if err != nil {
		return declAST, err
	}
	if returnAST != ast.NoRef {
		g.SetReturn(functionNode, returnAST)
	} else {
		g.SetReturn(functionNode, g.New(ast.KindPlaceholder))
	}
	return newRoot, nil
}

// Patch replaces every Placeholder in declAST with (a copy of, or the sole)
// typeAST, per spec.md §4.3. Preconditions: typeAST has no parent;
// depth(typeAST) <= depth(declAST) (both are usually roots, depth 0);
// declAST still contains a Placeholder.
func Patch(g *ast.Graph, typeAST, declAST ast.NodeRef) (ast.NodeRef, error) {
	if g.Node(typeAST).Parent != ast.NoRef {
		return declAST, fmt.Errorf("astbuilder: Patch requires typeAST to have no parent")
	}
	if g.Depth(typeAST) > g.Depth(declAST) {
		return declAST, fmt.Errorf("astbuilder: Patch requires depth(typeAST) <= depth(declAST)")
	}
	var placeholders []ast.NodeRef
	g.Visit(declAST, ast.Down, func(ref ast.NodeRef) {
		if g.Node(ref).Kind == ast.KindPlaceholder {
			placeholders = append(placeholders, ref)
		}
	})
	if len(placeholders) == 0 {
		return declAST, fmt.Errorf("astbuilder: Patch requires declAST to contain a Placeholder")
	}

	newRoot := declAST
	for i, ph := range placeholders {
		src := typeAST
		if i > 0 || !g.Node(typeAST).Name.IsEmpty() {
			src = deepCopy(g, typeAST)
			g.Node(src).Name = nil
		}
		name := TakeName(g, ph)
		if len(name) > 0 && g.Node(src).Name.IsEmpty() {
			g.Node(src).Name = name
		}
		parent := g.Node(ph).Parent
		if parent == ast.NoRef {
			g.Node(src).Parent = ast.NoRef
			newRoot = src
		} else {
			spliceChild(g, parent, ph, src)
		}
	}
	return newRoot, nil
}

// deepCopy clones the subtree rooted at ref into the same graph. Patch uses
// it for every placeholder after the first, and for a type-specifier that an
// earlier Patch already gave a declared name, so declarators sharing one
// type-specifier (`int a, b;`) each get their own copy. A type-specifier
// that an earlier Patch spliced under a parent (`int *a, b;`) is rejected by
// Patch's no-parent precondition instead.
func deepCopy(g *ast.Graph, ref ast.NodeRef) ast.NodeRef {
	if ref == ast.NoRef {
		return ast.NoRef
	}
	src := *g.Node(ref)
	dst := g.New(src.Kind)
	n := g.Node(dst)
	n.Type = src.Type
	n.Name = append(ast.ScopedName(nil), src.Name...)
	n.TypeName = append(ast.ScopedName(nil), src.TypeName...)
	n.Loc = src.Loc
	n.Align = src.Align
	n.BitWidth = src.BitWidth
	n.ArraySize = src.ArraySize
	n.ArrayQualifiers = src.ArrayQualifiers
	n.MemberOfClass = append(ast.ScopedName(nil), src.MemberOfClass...)
	n.Member = src.Member
	n.CallingConvention = src.CallingConvention

	if src.Of != ast.NoRef {
		g.SetOf(dst, deepCopy(g, src.Of))
	}
	if src.ECSUOf != ast.NoRef {
		c := deepCopy(g, src.ECSUOf)
		g.Node(dst).ECSUOf = c
		g.Node(c).Parent = dst
	}
	if src.Return != ast.NoRef {
		g.SetReturn(dst, deepCopy(g, src.Return))
	}
	for _, p := range src.Params {
		g.AppendParam(dst, deepCopy(g, p))
	}
	return dst
}

// FindFirst walks the subtree rooted at root in the given direction and
// returns the first node whose kind lies in mask (spec.md §4.3's
// "find... helpers that walk the AST... to find the first node whose kind
// lies in a bitmask").
func FindFirst(g *ast.Graph, root ast.NodeRef, dir ast.Direction, mask func(ast.Kind) bool) (ast.NodeRef, bool) {
	var found ast.NodeRef = ast.NoRef
	g.Visit(root, dir, func(ref ast.NodeRef) {
		if found == ast.NoRef && mask(g.Node(ref).Kind) {
			found = ref
		}
	})
	return found, found != ast.NoRef
}

// DeclaredName returns the name attached to the declarator chain rooted at
// root — the same Of/Return continuation chain innermostPlaceholder follows
// — without ever descending into a parameter list or ECSU member subtree.
// Exactly one node along this chain can carry the overall declaration's
// name (the package doc's single-open-placeholder invariant), so this is
// the correct way for a printer to recover "what identifier is this
// declaration naming", as opposed to FindName's subtree-wide search, which
// would also match a named parameter nested inside a function type.
func DeclaredName(g *ast.Graph, root ast.NodeRef) (ast.ScopedName, bool) {
	cur := root
	for {
		if n := g.Node(cur).Name; !n.IsEmpty() {
			return n, true
		}
		next := continuation(g, cur)
		if next == ast.NoRef {
			return nil, false
		}
		cur = next
	}
}

// FindName returns the first node in root's subtree that carries a
// non-empty declared name — the usual way to recover "what identifier is
// this declaration naming" once building is complete.
func FindName(g *ast.Graph, root ast.NodeRef) (ast.ScopedName, bool) {
	var name ast.ScopedName
	g.Visit(root, ast.Down, func(ref ast.NodeRef) {
		if name == nil {
			if n := g.Node(ref).Name; !n.IsEmpty() {
				name = n
			}
		}
	})
	return name, name != nil
}

// Unpointer strips one Pointer level from ref, following through any
// Typedef references first (spec.md §4.3).
func Unpointer(g *ast.Graph, ref ast.NodeRef) (ast.NodeRef, bool) {
	cur := Untypedef(g, ref)
	if g.Node(cur).Kind == ast.KindPointer {
		return g.Node(cur).Of, true
	}
	return ast.NoRef, false
}

// Unreference strips one Reference level from ref (not Rvalue-Reference),
// following through Typedef references first.
func Unreference(g *ast.Graph, ref ast.NodeRef) (ast.NodeRef, bool) {
	cur := Untypedef(g, ref)
	if g.Node(cur).Kind == ast.KindReference {
		return g.Node(cur).Of, true
	}
	return ast.NoRef, false
}

// Untypedef follows Typedef reference chains to the concrete underlying
// kind, returning ref itself if it isn't a Typedef reference.
func Untypedef(g *ast.Graph, ref ast.NodeRef) ast.NodeRef {
	cur := ref
	for g.Node(cur).Kind == ast.KindTypedefRef && g.Node(cur).Of != ast.NoRef {
		cur = g.Node(cur).Of
	}
	return cur
}
