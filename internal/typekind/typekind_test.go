package typekind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cdecl/internal/dialect"
)

func TestAddLongPromotesToLongLong(t *testing.T) {
	dest, err := Add(0, Long, "long", Location{})
	require.NoError(t, err)
	dest, err = Add(dest, Long, "long", Location{})
	require.NoError(t, err)
	assert.True(t, dest.Has(LongLong))
	assert.False(t, dest.Has(Long))
}

func TestAddTripleLongIsIllegal(t *testing.T) {
	dest, err := Add(0, Long, "long", Location{})
	require.NoError(t, err)
	dest, err = Add(dest, Long, "long", Location{})
	require.NoError(t, err)
	_, err = Add(dest, Long, "long", Location{})
	require.Error(t, err)
	var ce ConflictError
	require.ErrorAs(t, err, &ce)
}

func TestAddIllegalBasePair(t *testing.T) {
	dest, err := Add(0, Signed, "signed", Location{})
	require.NoError(t, err)
	_, err = Add(dest, Unsigned, "unsigned", Location{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot combine")
}

func TestAddStorageClassConflict(t *testing.T) {
	dest, err := Add(0, Static, "static", Location{})
	require.NoError(t, err)
	_, err = Add(dest, Extern, "extern", Location{})
	require.Error(t, err)
}

func TestAddCompatibleBits(t *testing.T) {
	dest, err := Add(0, Unsigned, "unsigned", Location{})
	require.NoError(t, err)
	dest, err = Add(dest, Long, "long", Location{})
	require.NoError(t, err)
	assert.True(t, dest.Has(Unsigned))
	assert.True(t, dest.Has(Long))
}

func TestHasAnySector(t *testing.T) {
	v := Unsigned | Long | Const
	assert.True(t, v.Has(Unsigned|Long))
	assert.False(t, v.Has(Unsigned|Short))
	assert.True(t, v.Any(Short|Long))
	assert.Equal(t, Const, v.Sector(MaskQualifier))
}

func TestName(t *testing.T) {
	assert.Equal(t, "unsigned long", Name(Unsigned|Long))
	assert.Equal(t, "const int", Name(Const|Int))
}

func TestNameForErrorSubstitutesEnglish(t *testing.T) {
	assert.Equal(t, "non-returning", NameForError(Noreturn))
}

func TestCheckRestrictsToC99Plus(t *testing.T) {
	mask := Check(Restrict)
	assert.True(t, mask.Allows(dialect.C99))
	assert.False(t, mask.Allows(dialect.KNR))
	assert.False(t, mask.Allows(dialect.CPP17))
}

func TestCheckUnrestrictedBitAllowsAll(t *testing.T) {
	mask := Check(Int)
	assert.Equal(t, dialect.All, mask)
}

func TestCheckCombinesSectors(t *testing.T) {
	mask := Check(Bool | Restrict)
	assert.False(t, mask.Allows(dialect.KNR))
	assert.False(t, mask.Allows(dialect.CPP98))
}

func TestConflictErrorMessage(t *testing.T) {
	err := ConflictError{Token: "unsigned", Location: Location{Line: 1, Column: 5}, Reason: "boom"}
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "unsigned")
}
