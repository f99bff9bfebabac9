// Package checker implements the declaration checker of spec.md §4.5: one
// pass over a completed AST that accumulates diagnostics rather than failing
// on the first one, modeled on the teacher's core.Pipeline.Apply (one
// Engine.Apply call producing a PipelineResult carrying every Stat/Diagnostic
// together).
package checker

import (
	"github.com/oxhq/cdecl/internal/ast"
	"github.com/oxhq/cdecl/internal/dialect"
	"github.com/oxhq/cdecl/internal/diag"
	"github.com/oxhq/cdecl/internal/lookup"
	"github.com/oxhq/cdecl/internal/typedef"
	"github.com/oxhq/cdecl/internal/typekind"
)

// Checker holds the optional collaborators a full check needs beyond the
// AST itself: the typedef registry (for unknown-identifier detection and
// its "did you mean" hints) and the set of known keyword spellings (also
// for "did you mean"). Both are nil-safe: a Checker with neither still runs
// every structural and dialect rule.
type Checker struct {
	Typedefs *typedef.Registry
	Keywords []string
}

// New returns a Checker with no collaborators; set fields directly, or use
// NewWithRegistry.
func New() *Checker { return &Checker{} }

// NewWithRegistry returns a Checker wired to reg for unknown-identifier
// resolution (spec.md §7's "unknown-identifier" category, enriched via
// internal/lookup).
func NewWithRegistry(reg *typedef.Registry) *Checker {
	return &Checker{Typedefs: reg}
}

// Check walks the subtree rooted at root and returns every diagnostic found,
// in traversal order. Never stops at the first failure (spec.md §7).
func (c *Checker) Check(g *ast.Graph, root ast.NodeRef, d dialect.Dialect) []diag.Diagnostic {
	var out []diag.Diagnostic
	report := func(ds ...diag.Diagnostic) { out = append(out, ds...) }

	g.Visit(root, ast.Down, func(ref ast.NodeRef) {
		n := g.Node(ref)

		report(c.checkLanguageGating(n, d)...)
		report(c.checkBaseTypeCombination(n)...)
		report(c.checkMemberOnly(g, ref, n)...)
		report(c.checkCtorDtorRestriction(n)...)
		report(c.checkStructuralShape(g, ref, n)...)
		report(c.checkVariadicKinds(g, n)...)
		report(c.checkBitField(n)...)
		report(c.checkImplicitInt(n, d)...)
		report(c.checkUnknownIdentifier(n)...)
	})

	return out
}

func loc(n *ast.Node) diag.Location { return diag.Location{Line: n.Loc.Line, Column: n.Loc.Column} }

// checkLanguageGating applies typekind.Check's per-bit feature mask against
// the active dialect (spec.md §4.5 "language gating").
func (c *Checker) checkLanguageGating(n *ast.Node, d dialect.Dialect) []diag.Diagnostic {
	if n.Type == 0 {
		return nil
	}
	allowed := typekind.Check(n.Type)
	if allowed.Allows(d) {
		return nil
	}
	if allowed.IsEmpty() {
		return []diag.Diagnostic{diag.New(diag.CodeLanguageVersion, loc(n),
			"%q is not supported in any recognized dialect", typekind.NameForError(n.Type))}
	}
	return []diag.Diagnostic{diag.New(diag.CodeLanguageVersion, loc(n),
		"%q is not supported in %s", typekind.NameForError(n.Type), d)}
}

// illegalExtraPairs catches base-type combinations spec.md §4.5 calls out
// that internal/typekind.Add's illegalBasePairs table does not (Add only
// rejects combinations that can never legally coexist regardless of
// surrounding modifiers; short/long-on-char is a pure-base-type clash).
var illegalExtraPairs = [][2]typekind.TypeID{
	{typekind.Char, typekind.Short},
	{typekind.Char, typekind.Long},
	{typekind.Char, typekind.LongLong},
}

// signedUnsignedBases are the only base types signed/unsigned may modify.
const signedUnsignedBases = typekind.Char | typekind.Short | typekind.Int | typekind.Long | typekind.LongLong

func (c *Checker) checkBaseTypeCombination(n *ast.Node) []diag.Diagnostic {
	var out []diag.Diagnostic
	t := n.Type
	for _, pair := range illegalExtraPairs {
		if t.Has(pair[0]) && t.Has(pair[1]) {
			out = append(out, diag.New(diag.CodeTypeCombination, loc(n),
				"%q and %q cannot combine", typekind.NameForError(pair[0]), typekind.NameForError(pair[1])))
		}
	}
	if offending := t.Sector(typekind.MaskBase) &^ signedUnsignedBases &^ (typekind.Signed | typekind.Unsigned); t.Any(typekind.Signed|typekind.Unsigned) && offending != 0 {
		out = append(out, diag.New(diag.CodeTypeCombination, loc(n),
			"%q is only legal on an integer base type, not %q", typekind.NameForError(t.Sector(typekind.Signed|typekind.Unsigned)), typekind.NameForError(offending)))
	}
	return out
}

// memberOnlyBits are legal only on a function node whose Member flag is set
// (spec.md §4.5 "Member-only").
const memberOnlyBits = typekind.Const | typekind.Volatile | typekind.Override | typekind.Final |
	typekind.Virtual | typekind.PureVirtual | typekind.LValueRef | typekind.RValueRef

func (c *Checker) checkMemberOnly(g *ast.Graph, ref ast.NodeRef, n *ast.Node) []diag.Diagnostic {
	var out []diag.Diagnostic
	if !n.Kind.In(ast.FunctionLike) {
		return nil
	}
	isMember := n.Member
	if !isMember && n.Type.Any(memberOnlyBits) {
		out = append(out, diag.New(diag.CodePositional, loc(n),
			"%q is only legal on a member function", typekind.NameForError(n.Type.Sector(memberOnlyBits))))
	}
	if !isMember && n.Type.Has(typekind.Friend) {
		out = append(out, diag.New(diag.CodePositional, loc(n), "%q is only legal inside a class", "friend"))
	}
	return out
}

// ctorDtorAllowed is the restricted storage-class-like subset legal on
// constructors, destructors, and user-defined conversions (spec.md §4.5).
const ctorDtorAllowed = typekind.Explicit | typekind.Constexpr | typekind.Consteval |
	typekind.Defaulted | typekind.Deleted | typekind.Noexcept | typekind.ThrowSpec

func (c *Checker) checkCtorDtorRestriction(n *ast.Node) []diag.Diagnostic {
	if n.Kind != ast.KindConstructor && n.Kind != ast.KindDestructor && n.Kind != ast.KindUserDefinedConversion {
		return nil
	}
	forbidden := n.Type.Sector(typekind.MaskStorageLike) &^ ctorDtorAllowed
	if forbidden == 0 {
		return nil
	}
	return []diag.Diagnostic{diag.New(diag.CodeSemantic, loc(n),
		"%q is not legal on this member", typekind.NameForError(forbidden))}
}

// checkStructuralShape rejects the forbidden node-shape combinations named
// in spec.md §4.5: pointer-to-reference, reference-to-reference,
// array-of-reference, array-of-function, function-returning-array, and
// function-returning-function.
func (c *Checker) checkStructuralShape(g *ast.Graph, ref ast.NodeRef, n *ast.Node) []diag.Diagnostic {
	var out []diag.Diagnostic
	child := func(r ast.NodeRef) (ast.Kind, bool) {
		if r == ast.NoRef {
			return 0, false
		}
		return g.Node(r).Kind, true
	}

	switch n.Kind {
	case ast.KindPointer, ast.KindPointerToMember:
		if k, ok := child(n.Of); ok && k.In(ast.ReferenceLike) {
			out = append(out, diag.New(diag.CodeSemantic, loc(n), "pointer to reference is illegal"))
		}
	case ast.KindReference, ast.KindRvalueReference:
		if k, ok := child(n.Of); ok && k.In(ast.ReferenceLike) {
			out = append(out, diag.New(diag.CodeSemantic, loc(n), "reference to reference is illegal"))
		}
	case ast.KindArray:
		if k, ok := child(n.Of); ok {
			if k.In(ast.ReferenceLike) {
				out = append(out, diag.New(diag.CodeSemantic, loc(n), "array of references is illegal"))
			}
			if k.In(ast.FunctionLike) {
				out = append(out, diag.New(diag.CodeSemantic, loc(n), "array of functions is illegal"))
			}
		}
	}

	if n.Kind.In(ast.FunctionLikeWithReturn) {
		if k, ok := child(n.Return); ok {
			if k == ast.KindArray {
				out = append(out, diag.New(diag.CodeSemantic, loc(n), "function returning array is illegal"))
			}
			if k.In(ast.FunctionLike) {
				out = append(out, diag.New(diag.CodeSemantic, loc(n), "function returning function is illegal"))
			}
		}
	}
	return out
}

// checkVariadicKinds enforces spec.md §4.5's variadic placement rule: the
// "..." parameter must be last, and cannot be the only parameter.
func (c *Checker) checkVariadicKinds(g *ast.Graph, n *ast.Node) []diag.Diagnostic {
	if !n.Kind.In(ast.FunctionLike) {
		return nil
	}
	for i, p := range n.Params {
		if g.Node(p).Kind == ast.KindVariadic {
			if len(n.Params) == 1 {
				return []diag.Diagnostic{diag.New(diag.CodeSemantic, loc(n), "variadic parameter cannot be the only parameter")}
			}
			if i != len(n.Params)-1 {
				return []diag.Diagnostic{diag.New(diag.CodeSemantic, loc(n), "variadic parameter must be last")}
			}
		}
	}
	return nil
}

func (c *Checker) checkBitField(n *ast.Node) []diag.Diagnostic {
	if n.BitWidth == 0 {
		return nil
	}
	var out []diag.Diagnostic
	if n.BitWidth < 0 {
		out = append(out, diag.New(diag.CodeSemantic, loc(n), "bit-field width must be positive"))
	}
	if !n.Kind.In(ast.CanBeBitField) {
		out = append(out, diag.New(diag.CodeSemantic, loc(n), "bit-field width is only legal on an integer, enum, or typedef-to-integer member"))
	}
	if n.Type.Has(typekind.Static) {
		out = append(out, diag.New(diag.CodeSemantic, loc(n), "a static member cannot be a bit-field"))
	}
	return out
}

// checkImplicitInt implements spec.md §4.5's last paragraph: implicit int is
// legal pre-C2x (warn outside a K&R-permitted position) and forbidden in C2x+.
// Only Builtin nodes with no base type and K&R name-only (Name-kind)
// parameters are implicit int; a Name parameter is silent before C2x.
func (c *Checker) checkImplicitInt(n *ast.Node, d dialect.Dialect) []diag.Diagnostic {
	if (n.Kind != ast.KindBuiltin && n.Kind != ast.KindName) || n.Type.Sector(typekind.MaskBase) != 0 {
		return nil
	}
	if d == dialect.C2x {
		return []diag.Diagnostic{diag.New(diag.CodeImplicitInt, loc(n), "implicit int is not allowed in C2x")}
	}
	if d == dialect.KNR || n.Kind == ast.KindName {
		return nil
	}
	return []diag.Diagnostic{diag.Warn(diag.CodeImplicitInt, loc(n), "implicit int is deprecated outside K&R parameter lists")}
}

// checkUnknownIdentifier flags a Typedef-reference node whose name is not in
// the registry, suggesting the closest known name (spec.md §7, §4.8).
func (c *Checker) checkUnknownIdentifier(n *ast.Node) []diag.Diagnostic {
	if n.Kind != ast.KindTypedefRef || c.Typedefs == nil {
		return nil
	}
	if _, ok := c.Typedefs.Lookup(n.TypeName); ok {
		return nil
	}
	d := diag.New(diag.CodeUnknownIdent, loc(n), "unknown identifier %q", n.TypeName.String())
	candidates := append(append([]string(nil), c.Typedefs.Names()...), c.Keywords...)
	if best := lookup.Best(n.TypeName.Leaf(), candidates); best != "" {
		d = d.WithDetail("did you mean " + best + "?")
	}
	return []diag.Diagnostic{d}
}
