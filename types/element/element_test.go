package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeProperties(t *testing.T) {
	assert.Equal(t, 32, F32.Bits())
	assert.Equal(t, 16, BF16.Bits())
	assert.Equal(t, 4, NF4.Bits())
	assert.Equal(t, 0, Undefined.Bits())

	assert.True(t, F16.IsFloat())
	assert.False(t, I8.IsFloat())

	assert.True(t, U4.IsQuantized())
	assert.True(t, U8.IsQuantized())
	assert.False(t, F32.IsQuantized())

	assert.Equal(t, "bf16", BF16.String())
	assert.Equal(t, "invalid", Type(99).String())

	assert.Equal(t, F32, DefaultFloat())
}

func TestMaskMembership(t *testing.T) {
	assert.True(t, MaskF32.Matches(F32))
	assert.False(t, MaskF32.Matches(F16))

	assert.True(t, MaskHalfFloat.Matches(F16))
	assert.True(t, MaskHalfFloat.Matches(BF16))
	assert.False(t, MaskHalfFloat.Matches(F32))

	for _, typ := range []Type{U8, NF4, U4, I4} {
		assert.True(t, MaskCompressed.Matches(typ), typ.String())
	}
	assert.False(t, MaskCompressed.Matches(I8))

	assert.True(t, MaskAny.Matches(Undefined))
	assert.True(t, MaskAny.Matches(NF4))
}

func TestMaskNot(t *testing.T) {
	not := MaskF32.Not()
	assert.False(t, not.Matches(F32))
	assert.True(t, not.Matches(F16))
	assert.True(t, not.Matches(Undefined))
}

func TestMatchesAll(t *testing.T) {
	patterns := []Mask{MaskU8 | MaskI8, MaskI8, MaskAny}

	assert.True(t, MatchesAll(patterns, []Type{U8, I8, F32}))
	assert.True(t, MatchesAll(patterns, []Type{I8, I8, Undefined}))
	assert.False(t, MatchesAll(patterns, []Type{F32, I8, F32}))

	// Configs with fewer ports than the rule declares still match.
	assert.True(t, MatchesAll(patterns, []Type{U8, I8}))

	// More ports than the rule declares never match.
	assert.False(t, MatchesAll(patterns, []Type{U8, I8, F32, F32}))
}
