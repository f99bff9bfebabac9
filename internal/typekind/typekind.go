// Package typekind implements the type algebra (spec.md §3.1, §4.1): a
// 64-bit bitset partitioned into disjoint sectors, and the merge/check/name
// operations over it.
package typekind

import (
	"fmt"

	"github.com/oxhq/cdecl/internal/dialect"
)

// TypeID is the 64-bit bitset type identifier described in spec.md §3.1.
type TypeID uint64

// Sector masks. Sectors are disjoint so that a sector mask extracts exactly
// one kind of information (invariant (i)).
const (
	MaskBase        TypeID = 0x0FFFFFFF                 // bits 0-27
	MaskStorage     TypeID = 0xFF << 28                 // bits 28-35
	MaskStorageLike TypeID = 0x1FFF << 36               // bits 36-48
	MaskAttribute   TypeID = 0x1F << 49                 // bits 49-53
	MaskQualifier   TypeID = 0xF << 56                  // bits 56-59
	MaskRef         TypeID = 0xF << 60                  // bits 60-63
)

// Base-type bits (0-27).
const (
	Void TypeID = 1 << iota
	AutoPlaceholder
	Bool
	Char
	Char8T
	Char16T
	Char32T
	WCharT
	Short
	Int
	Long
	LongLong
	Signed
	Unsigned
	Float
	Double
	Complex
	Imaginary
	Enum
	Struct
	Union
	Class
	Namespace
	Scope
	TypedefType
)

// Storage-class bits (28-35).
const (
	StorageAuto TypeID = 1 << (28 + iota)
	AppleBlock
	Extern
	Mutable
	Register
	Static
	ThreadLocal
	Typedef
)

// Storage-class-like bits (36-48).
const (
	Consteval TypeID = 1 << (36 + iota)
	Constexpr
	Defaulted
	Deleted
	Explicit
	Final
	Friend
	Inline
	Noexcept
	Override
	PureVirtual
	ThrowSpec
	Virtual
)

// Attribute bits (49-53).
const (
	CarriesDependency TypeID = 1 << (49 + iota)
	Deprecated
	MaybeUnused
	Nodiscard
	Noreturn
)

// Qualifier bits (56-59).
const (
	Atomic TypeID = 1 << (56 + iota)
	Const
	Restrict
	Volatile
)

// Ref-qualifier bits (60-61).
const (
	LValueRef TypeID = 1 << (60 + iota)
	RValueRef
)

// Has reports whether t carries every bit in mask.
func (t TypeID) Has(mask TypeID) bool { return t&mask == mask }

// Any reports whether t carries any bit in mask.
func (t TypeID) Any(mask TypeID) bool { return t&mask != 0 }

// Sector extracts the bits of t within mask.
func (t TypeID) Sector(mask TypeID) TypeID { return t & mask }

// illegalBasePairs lists base-type combinations that can never coexist,
// independent of dialect (spec.md §3.1 invariant (ii), §4.5).
var illegalBasePairs = [][2]TypeID{
	{Signed, Unsigned},
	{Short, Long}, {Short, LongLong},
	{Float, Int}, {Float, Short}, {Float, Long}, {Float, Char}, {Float, Bool},
	{Double, Int}, {Double, Short}, {Double, Char}, {Double, Bool},
	{Bool, Char}, {Bool, Int}, {Bool, Short}, {Bool, Long},
	{Void, Int}, {Void, Char}, {Void, Short}, {Void, Long}, {Void, Bool}, {Void, Float}, {Void, Double},
}

// Add merges new into dest following spec.md §4.1's rule: sectors combine by
// bitwise OR, except that `long|long` legally promotes to `long long`,
// `long long|long` is illegal, and the illegalBasePairs above never coexist.
// tok/loc identify the token being merged, for the returned diagnostic.
func Add(dest, next TypeID, tok string, loc Location) (TypeID, error) {
	if next.Has(Long) && dest.Has(Long) && !dest.Has(LongLong) {
		// second `long`: promote to `long long` instead of OR-ing a duplicate bit in.
		return (dest &^ Long) | LongLong, nil
	}
	if next.Has(Long) && dest.Has(LongLong) {
		return dest, conflict(tok, loc, "long long long is illegal")
	}
	if next.Has(LongLong) && dest.Has(Long) {
		dest = dest &^ Long
	}

	merged := dest | next
	for _, pair := range illegalBasePairs {
		if merged.Has(pair[0]) && merged.Has(pair[1]) {
			return dest, conflict(tok, loc, "%q and %q cannot combine", nameOf(pair[0]), nameOf(pair[1]))
		}
	}

	if storageConflict(dest, next) {
		return dest, conflict(tok, loc, "conflicting storage classes")
	}
	if next.Has(Typedef) && dest.Sector(MaskStorage) != 0 && dest != dest|next {
		return dest, conflict(tok, loc, "typedef cannot combine with another storage class")
	}

	return merged, nil
}

// storageConflict reports whether next introduces a second, distinct
// storage class into dest (spec.md §4.1: "combining two different storage
// classes fails").
func storageConflict(dest, next TypeID) bool {
	nextStorage := next.Sector(MaskStorage)
	destStorage := dest.Sector(MaskStorage)
	return nextStorage != 0 && destStorage != 0 && nextStorage != destStorage && destStorage&nextStorage == 0
}

func conflict(tok string, loc Location, format string, args ...any) error {
	return ConflictError{Token: tok, Location: loc, Reason: fmt.Sprintf(format, args...)}
}

// ConflictError reports an illegal merge attempt, naming the offending
// token and its source location per spec.md §4.1.
type ConflictError struct {
	Token    string
	Location Location
	Reason   string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s (%s)", "<input>", e.Location.Line, e.Location.Column, e.Reason, e.Token)
}

// Location is a minimal source position with the same fields as
// internal/diag's Location, defined here so typekind does not import diag.
type Location struct {
	Line   int
	Column int
}

var baseNames = map[TypeID]string{
	Void: "void", AutoPlaceholder: "auto", Bool: "bool", Char: "char",
	Char8T: "char8_t", Char16T: "char16_t", Char32T: "char32_t", WCharT: "wchar_t",
	Short: "short", Int: "int", Long: "long", LongLong: "long long",
	Signed: "signed", Unsigned: "unsigned", Float: "float", Double: "double",
	Complex: "_Complex", Imaginary: "_Imaginary", Enum: "enum", Struct: "struct",
	Union: "union", Class: "class", Namespace: "namespace", Scope: "::", TypedefType: "<typedef>",
}

var storageNames = map[TypeID]string{
	StorageAuto: "auto", AppleBlock: "^", Extern: "extern", Mutable: "mutable",
	Register: "register", Static: "static", ThreadLocal: "thread_local", Typedef: "typedef",
}

var storageLikeNames = map[TypeID]string{
	Consteval: "consteval", Constexpr: "constexpr", Defaulted: "= default", Deleted: "= delete",
	Explicit: "explicit", Final: "final", Friend: "friend", Inline: "inline",
	Noexcept: "noexcept", Override: "override", PureVirtual: "= 0", ThrowSpec: "throw()", Virtual: "virtual",
}

// attributeNames are the gibberish spellings; attributeEnglishNames
// substitutes the English alias per spec.md §4.1 ("non-returning" for noreturn).
var attributeNames = map[TypeID]string{
	CarriesDependency: "carries_dependency", Deprecated: "deprecated",
	MaybeUnused: "maybe_unused", Nodiscard: "nodiscard", Noreturn: "noreturn",
}

var attributeEnglishNames = map[TypeID]string{
	CarriesDependency: "carries-dependency", Deprecated: "deprecated",
	MaybeUnused: "maybe-unused", Nodiscard: "discardable-not", Noreturn: "non-returning",
}

var qualifierNames = map[TypeID]string{
	Atomic: "_Atomic", Const: "const", Restrict: "restrict", Volatile: "volatile",
}

var refNames = map[TypeID]string{
	LValueRef: "&", RValueRef: "&&",
}

func nameOf(bit TypeID) string {
	for _, table := range []map[TypeID]string{baseNames, storageNames, storageLikeNames, attributeNames, qualifierNames, refNames} {
		if n, ok := table[bit]; ok {
			return n
		}
	}
	return "?"
}

// bitsOf walks every set bit of t within mask, in ascending bit order.
func bitsOf(t, mask TypeID) []TypeID {
	var out []TypeID
	for i := 0; i < 64; i++ {
		bit := TypeID(1) << uint(i)
		if bit&mask != 0 && t&bit != 0 {
			out = append(out, bit)
		}
	}
	return out
}

// Name renders t's gibberish spelling, in canonical sector order: storage,
// storage-class-like, qualifiers, base type, attributes, ref-qualifiers.
// Within the base type, signed/unsigned come first, then short/long/long
// long, then the remaining words ("unsigned long int").
func Name(t TypeID) string { return render(t, nameOf) }

// NameForError renders t the way a diagnostic crossing the English/gibberish
// boundary should, substituting English aliases for attributes (spec.md §4.1).
func NameForError(t TypeID) string {
	return render(t, func(bit TypeID) string {
		if n, ok := attributeEnglishNames[bit]; ok {
			return n
		}
		return nameOf(bit)
	})
}

func render(t TypeID, name func(TypeID) string) string {
	var parts []string
	for _, mask := range []TypeID{MaskStorage, MaskStorageLike, MaskQualifier, MaskBase, MaskAttribute, MaskRef} {
		bits := bitsOf(t, mask)
		if mask == MaskBase {
			const sign, size = Signed | Unsigned, Short | Long | LongLong
			bits = append(append(bitsOf(t, sign), bitsOf(t, size)...), bitsOf(t, MaskBase&^sign&^size)...)
		}
		for _, bit := range bits {
			parts = append(parts, name(bit))
		}
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

// featureMasks gives the per-bit language requirement named in spec.md
// §4.1's examples. A bit absent from this table is legal in every dialect
// (e.g. plain `int`, `const`).
var featureMasks = map[TypeID]dialect.Mask{
	Bool:        dialect.Of(dialect.C99, dialect.C11, dialect.C17, dialect.C2x) | dialect.AllCPP,
	Char8T:      dialect.Of(dialect.C2x) | dialect.CPP20Plus,
	Char16T:     dialect.Of(dialect.C11, dialect.C17, dialect.C2x) | dialect.CPP11Plus,
	Char32T:     dialect.Of(dialect.C11, dialect.C17, dialect.C2x) | dialect.CPP11Plus,
	AutoPlaceholder: dialect.CPP11Plus,
	Class:       dialect.AllCPP,
	Namespace:   dialect.AllCPP,
	Scope:       dialect.AllCPP,

	ThreadLocal: dialect.Of(dialect.C11, dialect.C17, dialect.C2x) | dialect.CPP11Plus,
	Register:    dialect.AllC | dialect.Of(dialect.CPP98, dialect.CPP03, dialect.CPP11, dialect.CPP14),
	StorageAuto: dialect.AllC | dialect.Of(dialect.CPP98, dialect.CPP03),
	Mutable:     dialect.AllCPP,

	Consteval:   dialect.Of(dialect.CPP20, dialect.CPP23),
	Constexpr:   dialect.CPP11Plus,
	Defaulted:   dialect.CPP11Plus,
	Deleted:     dialect.CPP11Plus,
	Explicit:    dialect.AllCPP,
	Final:       dialect.CPP11Plus,
	Friend:      dialect.AllCPP,
	Noexcept:    dialect.CPP11Plus,
	Override:    dialect.CPP11Plus,
	ThrowSpec:   dialect.AllCPP,
	Virtual:     dialect.AllCPP,

	CarriesDependency: dialect.CPP11Plus,
	Deprecated:        dialect.Of(dialect.C2x) | dialect.CPP14Plus,
	MaybeUnused:       dialect.Of(dialect.C2x) | dialect.CPP17Plus,
	Nodiscard:         dialect.Of(dialect.C2x) | dialect.CPP17Plus,
	Noreturn:          dialect.Of(dialect.C11, dialect.C17, dialect.C2x) | dialect.CPP11Plus,

	Atomic:   dialect.Of(dialect.C11, dialect.C17, dialect.C2x),
	Restrict: dialect.Of(dialect.C99, dialect.C11, dialect.C17, dialect.C2x),

	RValueRef: dialect.CPP11Plus,
}

// Check returns the set of dialects in which every bit set in t is legal
// (spec.md §4.1). Bits with no entry in featureMasks impose no restriction.
func Check(t TypeID) dialect.Mask {
	result := dialect.All
	for i := 0; i < 64; i++ {
		b := TypeID(1) << uint(i)
		if t&b == 0 {
			continue
		}
		if m, ok := featureMasks[b]; ok {
			result &= m
		}
	}
	return result
}
