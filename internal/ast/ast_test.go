package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/cdecl/internal/typekind"
)

func TestScopedNameLeafAndString(t *testing.T) {
	name := ScopedName{
		{Kind: ScopeNamespaceSeg, Name: "std"},
		{Kind: ScopeNamespaceSeg, Name: "chrono"},
		{Kind: ScopeNone, Name: "duration"},
	}
	assert.Equal(t, "duration", name.Leaf())
	assert.Equal(t, "std::chrono::duration", name.String())
	assert.False(t, name.IsEmpty())
}

func TestSimpleAndEmpty(t *testing.T) {
	assert.True(t, Simple("").IsEmpty())
	n := Simple("int")
	assert.Equal(t, "int", n.Leaf())
	assert.True(t, n.Equal(Simple("int")))
	assert.False(t, n.Equal(Simple("char")))
}

func TestChildrenOrder(t *testing.T) {
	g := NewGraph()
	ret := g.New(KindBuiltin)
	p1 := g.New(KindBuiltin)
	p2 := g.New(KindBuiltin)
	of := g.New(KindBuiltin)
	ecsu := g.New(KindECSU)

	fn := g.New(KindFunction)
	g.SetOf(fn, of)
	g.Node(fn).ECSUOf = ecsu
	g.AppendParam(fn, p1)
	g.AppendParam(fn, p2)
	g.SetReturn(fn, ret)

	got := g.Children(fn)
	assert.Equal(t, []NodeRef{of, ecsu, p1, p2, ret}, got)
}

func TestParentBackPointers(t *testing.T) {
	g := NewGraph()
	child := g.New(KindBuiltin)
	parent := g.New(KindPointer)
	g.SetOf(parent, child)
	assert.Equal(t, parent, g.Node(child).Parent)
	assert.Equal(t, 1, g.Depth(child))
	assert.Equal(t, 0, g.Depth(parent))
}

func TestVisitPreOrder(t *testing.T) {
	g := NewGraph()
	leaf := g.New(KindBuiltin)
	ptr := g.New(KindPointer)
	g.SetOf(ptr, leaf)

	var order []NodeRef
	g.Visit(ptr, Down, func(ref NodeRef) { order = append(order, ref) })
	assert.Equal(t, []NodeRef{ptr, leaf}, order)
}

func TestHasPlaceholder(t *testing.T) {
	g := NewGraph()
	ph := g.New(KindPlaceholder)
	ptr := g.New(KindPointer)
	g.SetOf(ptr, ph)
	assert.True(t, g.HasPlaceholder(ptr))

	leaf := g.New(KindBuiltin)
	g.SetOf(ptr, leaf)
	assert.False(t, g.HasPlaceholder(ptr))
}

func TestEqualStructural(t *testing.T) {
	g1 := NewGraph()
	a := g1.New(KindBuiltin)
	g1.Node(a).Type = typekind.Int

	g2 := NewGraph()
	b := g2.New(KindBuiltin)
	g2.Node(b).Type = typekind.Int

	assert.True(t, Equal(g1, a, g2, b))

	g2.Node(b).Type = typekind.Char
	assert.False(t, Equal(g1, a, g2, b))
}

func TestEqualDistinguishesECSUTag(t *testing.T) {
	g1 := NewGraph()
	a := g1.New(KindECSU)
	g1.Node(a).Type = typekind.Struct
	g1.Node(a).TypeName = Simple("Foo")

	g2 := NewGraph()
	b := g2.New(KindECSU)
	g2.Node(b).Type = typekind.Struct
	g2.Node(b).TypeName = Simple("Foo")

	assert.True(t, Equal(g1, a, g2, b))

	g2.Node(b).TypeName = Simple("Bar")
	assert.False(t, Equal(g1, a, g2, b))
}

func TestEqualNoRef(t *testing.T) {
	g := NewGraph()
	assert.True(t, Equal(g, NoRef, g, NoRef))
	n := g.New(KindBuiltin)
	assert.False(t, Equal(g, n, g, NoRef))
}

func TestKindIn(t *testing.T) {
	assert.True(t, KindPointer.In(PointerLike))
	assert.False(t, KindArray.In(PointerLike))
	assert.True(t, KindArray.In(Parent))
}
