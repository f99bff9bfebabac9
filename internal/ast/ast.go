// Package ast implements the type-declaration AST (spec.md §3.2, §3.3): node
// kinds, the node graph, scoped names, and traversal. Per spec.md §9's
// design notes, the tree is an arena-and-index scheme: nodes live in a
// single Graph-owned slice, references are int32 indices, and parent is an
// index (NoRef sentinel for the root). This makes structural equality
// (spec.md §8 invariant 1/2/7/8) a matter of comparing the reachable
// sub-slices rather than chasing pointers.
package ast

import "github.com/oxhq/cdecl/internal/typekind"

// NodeRef indexes into a Graph's node slice. NoRef marks "no such node"
// (empty child slot, or a root's parent).
type NodeRef int32

const NoRef NodeRef = -1

// Kind enumerates the node kinds of spec.md §3.3.
type Kind uint8

const (
	KindPlaceholder Kind = iota
	KindName
	KindBuiltin
	KindECSU
	KindTypedefRef
	KindVariadic
	KindArray
	KindPointer
	KindReference
	KindRvalueReference
	KindPointerToMember
	KindAppleBlock
	KindFunction
	KindOperator
	KindLambda
	KindUserDefinedConversion
	KindUserDefinedLiteral
	KindConstructor
	KindDestructor
)

// Logical groupings, expressed as bitmasks over Kind values per spec.md §3.3.
var (
	ObjectLike = kindSet(KindBuiltin, KindECSU, KindTypedefRef, KindName, KindVariadic)

	PointerLike = kindSet(KindPointer, KindPointerToMember)

	ReferenceLike = kindSet(KindReference, KindRvalueReference)

	FunctionLike = kindSet(
		KindAppleBlock, KindFunction, KindOperator, KindLambda,
		KindUserDefinedConversion, KindUserDefinedLiteral, KindConstructor, KindDestructor,
	)

	// FunctionLikeWithReturn excludes Constructor/Destructor, which have no
	// return-type slot (spec.md §3.3).
	FunctionLikeWithReturn = kindSet(
		KindAppleBlock, KindFunction, KindOperator, KindLambda,
		KindUserDefinedConversion, KindUserDefinedLiteral,
	)

	// CanHaveTrailingReturn is the subset that may use `-> T` syntax.
	CanHaveTrailingReturn = kindSet(KindFunction, KindLambda)

	CanBeBitField = kindSet(KindBuiltin, KindECSU, KindTypedefRef)

	Parent = PointerLike | ReferenceLike | FunctionLike | kindSet(KindArray)

	Referrer = Parent | kindSet(KindTypedefRef)
)

type kindMask uint32

func kindSet(ks ...Kind) kindMask {
	var m kindMask
	for _, k := range ks {
		m |= 1 << uint(k)
	}
	return m
}

// In reports whether k belongs to mask m.
func (k Kind) In(m kindMask) bool { return m&(1<<uint(k)) != 0 }

// ScopeSegmentKind distinguishes the kind of scope a ScopedName segment
// traverses (spec.md glossary: "scoped name").
type ScopeSegmentKind uint8

const (
	ScopeNone ScopeSegmentKind = iota
	ScopeNamespaceSeg
	ScopeClassSeg
	ScopeStructSeg
	ScopeUnionSeg
	ScopeGlobal
)

// ScopeSegment is one (scope-kind, identifier) pair in a ScopedName.
type ScopeSegment struct {
	Kind ScopeSegmentKind
	Name string
}

// ScopedName is an ordered sequence of scope segments, e.g.
// std::chrono::duration (spec.md §3.2, glossary).
type ScopedName []ScopeSegment

// Simple builds a one-segment unscoped name.
func Simple(name string) ScopedName {
	if name == "" {
		return nil
	}
	return ScopedName{{Kind: ScopeNone, Name: name}}
}

// IsEmpty reports whether the name carries no segments at all.
func (s ScopedName) IsEmpty() bool { return len(s) == 0 }

// Leaf returns the final identifier, e.g. "duration" for std::chrono::duration.
func (s ScopedName) Leaf() string {
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1].Name
}

// Equal reports structural equality between two scoped names.
func (s ScopedName) Equal(o ScopedName) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders the scoped name with `::` separators, the gibberish form.
func (s ScopedName) String() string {
	out := ""
	for i, seg := range s {
		if i > 0 {
			out += "::"
		}
		out += seg.Name
	}
	return out
}

// ArraySize is Array's size payload (spec.md §3.3): a non-negative integer,
// the "unspecified" sentinel (`[]`), or the "variable-length" sentinel (`[*]`).
type ArraySize struct {
	Unspecified bool
	Variable    bool // VLA "*"
	Value       int  // meaningful only when both flags above are false
}

// AlignmentForm distinguishes the two alignment spellings of spec.md §3.4.
type AlignmentForm uint8

const (
	AlignNone AlignmentForm = iota
	AlignExpr
	AlignType
)

// Alignment is a node's optional `alignas` directive (spec.md §3.4).
type Alignment struct {
	Form  AlignmentForm
	Expr  int     // meaningful when Form == AlignExpr
	Type  NodeRef // meaningful when Form == AlignType
}

// Location is the node's source position, used by diagnostics.
type Location struct {
	Line   int
	Column int
}

// Node is a single AST node (spec.md §3.2). Only the fields relevant to
// Kind are meaningful; the rest are the zero value. This flat-struct shape
// (one type, many optional fields gated by a kind tag) mirrors the
// teacher's core.Result/core.NodeMapping style of pure data carriers.
type Node struct {
	ID       NodeRef
	Kind     Kind
	Type     typekind.TypeID

	// Name is the declared identifier that the continuation chain
	// (astbuilder's Of/Return splicing) attaches a declarator's name to.
	// ECSU and TypedefRef never populate this — they carry their own
	// designator in TypeName instead, so a bare declarator like
	// `struct Point p` or `MyInt x` still has somewhere to put `p`/`x`
	// once patched onto the type-specifier node.
	Name ScopedName

	// TypeName is the type-specifier's own designator: the tag name for
	// ECSU (`struct Point` → "Point"), the aliased name for TypedefRef
	// (`MyInt` → "MyInt"). Kept separate from Name so the two never
	// collide on the same node.
	TypeName ScopedName

	Parent NodeRef
	Loc    Location
	Align  *Alignment

	// Of is the single child for Array ("of" type), Pointer/Reference/
	// Rvalue-reference ("to" type), and Typedef reference (the aliased AST).
	Of NodeRef

	// BitWidth is Builtin's payload: 0 means "not a bit-field".
	BitWidth int

	// ECSUOf is the optional underlying fixed-integer-type AST for a scoped
	// enum (`enum class E : int`).
	ECSUOf NodeRef

	// ArraySize/ArrayQualifiers are Array's payload.
	ArraySize       ArraySize
	ArrayQualifiers typekind.TypeID

	// MemberOfClass is Pointer-to-member's class scoped name.
	MemberOfClass ScopedName

	// Member marks a function-like node as a class member (spec.md §4.5's
	// member-only/non-member-only rules), independent of MemberOfClass,
	// which is reserved for the named class of a pointer-to-member.
	Member bool

	// CallingConvention is an optional MS calling-convention attribute
	// (__stdcall, __cdecl, __fastcall, ...) on a Pointer or Function node.
	CallingConvention string

	// Params/Return are function-like's payload. Constructor/Destructor use
	// Params only (no Return slot, per FunctionLikeWithReturn above).
	Params []NodeRef
	Return NodeRef
}

// Graph owns every node created during one parse session (spec.md §3.2:
// "a parse session owns all nodes and frees them together" — here, that's
// simply letting the Graph value be garbage collected).
type Graph struct {
	nodes []Node
}

// NewGraph returns an empty arena.
func NewGraph() *Graph { return &Graph{} }

// New allocates a fresh node of kind k, returning its reference.
func (g *Graph) New(k Kind) NodeRef {
	ref := NodeRef(len(g.nodes))
	g.nodes = append(g.nodes, Node{ID: ref, Kind: k, Parent: NoRef, Of: NoRef, Return: NoRef, ECSUOf: NoRef})
	return ref
}

// Node dereferences ref. Panics on NoRef, matching the teacher's
// fail-fast-on-invariant-violation style for internal bookkeeping errors.
func (g *Graph) Node(ref NodeRef) *Node {
	if ref == NoRef {
		panic("ast: dereference of NoRef")
	}
	return &g.nodes[ref]
}

// Valid reports whether ref names a live node in g.
func (g *Graph) Valid(ref NodeRef) bool { return ref != NoRef && int(ref) < len(g.nodes) }

// SetOf attaches child as ref's single child, establishing the parent
// back-pointer (spec.md §4.2 attach-child).
func (g *Graph) SetOf(ref, child NodeRef) {
	g.Node(ref).Of = child
	if child != NoRef {
		g.Node(child).Parent = ref
	}
}

// SetReturn attaches ret as ref's return-type child.
func (g *Graph) SetReturn(ref, ret NodeRef) {
	g.Node(ref).Return = ret
	if ret != NoRef {
		g.Node(ret).Parent = ref
	}
}

// AppendParam attaches param as the next parameter of ref's parameter list.
func (g *Graph) AppendParam(ref, param NodeRef) {
	n := g.Node(ref)
	n.Params = append(n.Params, param)
	g.Node(param).Parent = ref
}

// Children returns every node ref reachable directly below ref, in payload
// order (Of/ECSUOf, then Params, then Return) — the order spec.md §4.2
// requires pre-order traversal to honor.
func (g *Graph) Children(ref NodeRef) []NodeRef {
	n := g.Node(ref)
	var out []NodeRef
	if n.Of != NoRef {
		out = append(out, n.Of)
	}
	if n.ECSUOf != NoRef {
		out = append(out, n.ECSUOf)
	}
	out = append(out, n.Params...)
	if n.Return != NoRef {
		out = append(out, n.Return)
	}
	return out
}

// Depth returns the number of ancestors of ref (0 for a root), used by
// internal/astbuilder's Patch precondition (spec.md §4.3).
func (g *Graph) Depth(ref NodeRef) int {
	d := 0
	for cur := g.Node(ref).Parent; cur != NoRef; cur = g.Node(cur).Parent {
		d++
	}
	return d
}

// Direction selects traversal order for Visit (spec.md §4.2).
type Direction uint8

const (
	Down Direction = iota // pre-order: visit before descending into children
	Up                    // post-order: visit after returning from children
)

// Visitor is called once per visited node.
type Visitor func(ref NodeRef)

// Visit walks the subtree rooted at root in the given Direction.
func (g *Graph) Visit(root NodeRef, dir Direction, visit Visitor) {
	if dir == Down {
		visit(root)
	}
	for _, c := range g.Children(root) {
		g.Visit(c, dir, visit)
	}
	if dir == Up {
		visit(root)
	}
}

// HasPlaceholder reports whether any node in the subtree rooted at root is
// a Placeholder — spec.md §8 invariant 3 ("placeholder eradication") is
// exactly "HasPlaceholder(root) == false after any top-level builder call".
func (g *Graph) HasPlaceholder(root NodeRef) bool {
	found := false
	g.Visit(root, Down, func(ref NodeRef) {
		if g.Node(ref).Kind == KindPlaceholder {
			found = true
		}
	})
	return found
}

// Equal reports structural equality of the subtrees rooted at a (in ga) and
// b (in gb) — spec.md §8's round-trip invariants are stated in terms of it.
func Equal(ga *Graph, a NodeRef, gb *Graph, b NodeRef) bool {
	if a == NoRef || b == NoRef {
		return a == b
	}
	na, nb := ga.Node(a), gb.Node(b)
	if na.Kind != nb.Kind || na.Type != nb.Type || !na.Name.Equal(nb.Name) || !na.TypeName.Equal(nb.TypeName) {
		return false
	}
	if na.BitWidth != nb.BitWidth || na.ArraySize != nb.ArraySize || na.ArrayQualifiers != nb.ArrayQualifiers {
		return false
	}
	if !na.MemberOfClass.Equal(nb.MemberOfClass) || na.CallingConvention != nb.CallingConvention || na.Member != nb.Member {
		return false
	}
	if !Equal(ga, na.Of, gb, nb.Of) || !Equal(ga, na.ECSUOf, gb, nb.ECSUOf) || !Equal(ga, na.Return, gb, nb.Return) {
		return false
	}
	if len(na.Params) != len(nb.Params) {
		return false
	}
	for i := range na.Params {
		if !Equal(ga, na.Params[i], gb, nb.Params[i]) {
			return false
		}
	}
	return true
}
