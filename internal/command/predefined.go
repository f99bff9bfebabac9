package command

import (
	"github.com/oxhq/cdecl/internal/ast"
	"github.com/oxhq/cdecl/internal/dialect"
	"github.com/oxhq/cdecl/internal/typedef"
	"github.com/oxhq/cdecl/internal/typekind"
)

// predefinedEntry is one seed typedef: a name, the base TypeID it aliases
// (built as a Builtin node unless ecsu is set), and the dialect mask it is
// legal in — gated by language-id set exactly like a user typedef, per
// spec.md §3.5 and the supplement in SPEC_FULL.md §10.
type predefinedEntry struct {
	name  string
	bits  typekind.TypeID
	ecsu  typekind.TypeID // set for a struct/union/enum/class tag instead of a builtin
	langs dialect.Mask
}

var fixedWidthDialects = dialect.C99Plus | dialect.CPP11Plus

var predefinedEntries = []predefinedEntry{
	{name: "size_t", bits: typekind.Unsigned | typekind.Long, langs: dialect.All},
	{name: "ptrdiff_t", bits: typekind.Long, langs: dialect.All},
	{name: "FILE", ecsu: typekind.Struct, langs: dialect.All},

	// wchar_t predates the keyword of the same name: K&R/C89/C95 have no
	// wchar_t keyword, so cdecl historically carried it as a typedef there.
	// Later dialects get no entry; the wchar_t keyword itself (typekind's
	// WCharT) has no feature-mask entry and is accepted in every dialect.
	{name: "wchar_t", bits: typekind.Int, langs: dialect.Of(dialect.KNR, dialect.C89, dialect.C95)},

	{name: "int8_t", bits: typekind.Signed | typekind.Char, langs: fixedWidthDialects},
	{name: "uint8_t", bits: typekind.Unsigned | typekind.Char, langs: fixedWidthDialects},
	{name: "int16_t", bits: typekind.Signed | typekind.Short, langs: fixedWidthDialects},
	{name: "uint16_t", bits: typekind.Unsigned | typekind.Short, langs: fixedWidthDialects},
	{name: "int32_t", bits: typekind.Signed | typekind.Int, langs: fixedWidthDialects},
	{name: "uint32_t", bits: typekind.Unsigned | typekind.Int, langs: fixedWidthDialects},
	{name: "int64_t", bits: typekind.Signed | typekind.LongLong, langs: fixedWidthDialects},
	{name: "uint64_t", bits: typekind.Unsigned | typekind.LongLong, langs: fixedWidthDialects},
}

// seedPredefined populates reg with the built-in typedef set, each built as
// a tiny standalone AST node directly (not round-tripped through a parser,
// since the list itself is fixed Go data, not user input).
func seedPredefined(g *ast.Graph, reg *typedef.Registry) {
	for _, e := range predefinedEntries {
		var ref ast.NodeRef
		if e.ecsu != 0 {
			ref = g.New(ast.KindECSU)
			n := g.Node(ref)
			n.Type = e.ecsu
			n.TypeName = ast.Simple("__" + e.name + "_tag")
		} else {
			ref = g.New(ast.KindBuiltin)
			g.Node(ref).Type = e.bits
		}
		// Predefined seeding can never conflict (fixed, disjoint names), and
		// carries no renderer since nothing can redefine it incompatibly yet.
		_ = reg.Define(ast.Simple(e.name), ref, e.langs, true, nil)
	}
}
