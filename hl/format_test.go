package hl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormatRoundTrip(t *testing.T) {
	names := []string{
		"char", "schar", "uchar", "short", "ushort", "int", "uint",
		"long", "ulong", "llong", "ullong", "float", "double", "ldouble",
		"hsize", "hssize", "herr", "hbool", "string", "compound", "array",
	}
	for _, name := range names {
		tag := ParseFormat(name)
		assert.NotEqual(t, FormatUndefined, tag, name)
		assert.Equal(t, tag, ParseFormat(tag.String()), name)
	}
}

func TestParseFormatUnknown(t *testing.T) {
	assert.Equal(t, FormatUndefined, ParseFormat("quaternion"))
	assert.Equal(t, FormatUndefined, ParseFormat(""))
	assert.Equal(t, "undefined", FormatUndefined.String())
}

func TestFormatSize(t *testing.T) {
	sizes := map[FormatSpecifier]int{
		FormatChar:    1,
		FormatSChar:   1,
		FormatUChar:   1,
		FormatShort:   2,
		FormatUShort:  2,
		FormatInt:     4,
		FormatUInt:    4,
		FormatLong:    8,
		FormatULong:   8,
		FormatLLong:   8,
		FormatULLong:  8,
		FormatFloat:   4,
		FormatDouble:  8,
		FormatLDouble: 16,
		FormatHSize:   8,
		FormatHSSize:  8,
		FormatHerr:    4,
		FormatHbool:   1,
	}
	for tag, want := range sizes {
		got, err := tag.Size()
		require.NoError(t, err, tag.String())
		assert.Equal(t, want, got, tag.String())
	}

	for _, tag := range []FormatSpecifier{FormatString, FormatCompound, FormatArray, FormatUndefined} {
		_, err := tag.Size()
		assert.ErrorIs(t, err, ErrSizeUndetermined, tag.String())
	}
}

func TestIsFormatSupported(t *testing.T) {
	assert.True(t, IsFormatSupported("int"))
	assert.True(t, IsFormatSupported("double"))
	assert.False(t, IsFormatSupported("string"))
	assert.False(t, IsFormatSupported("compound"))
	assert.False(t, IsFormatSupported("array"))
	assert.False(t, IsFormatSupported("nonsense"))
}

func TestStoreDatatypeCanonicalReadBack(t *testing.T) {
	// Widths shared by several tags collapse onto one canonical tag.
	cases := map[FormatSpecifier]FormatSpecifier{
		FormatChar:   FormatSChar,
		FormatSChar:  FormatSChar,
		FormatUChar:  FormatUChar,
		FormatShort:  FormatShort,
		FormatInt:    FormatInt,
		FormatUInt:   FormatUInt,
		FormatLong:   FormatLLong,
		FormatULong:  FormatULLong,
		FormatLLong:  FormatLLong,
		FormatHSize:  FormatULLong,
		FormatFloat:  FormatFloat,
		FormatDouble: FormatDouble,
	}
	for in, want := range cases {
		dt, err := storeDatatype(in, 0)
		require.NoError(t, err, in.String())
		assert.Equal(t, want, formatOf(dt), in.String())
	}

	dt, err := storeDatatype(FormatString, 12)
	require.NoError(t, err)
	assert.Equal(t, FormatString, formatOf(dt))
	assert.Equal(t, 12, dt.Size())
}
