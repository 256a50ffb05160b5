package element

// Mask is a set of element types, used by precision translation rules to
// declare which concrete types a port accepts.
//
// The zero Mask matches nothing. MaskAny matches every type, including
// Undefined.
type Mask uint32

const (
	MaskUndefined Mask = 1 << Undefined
	MaskF64       Mask = 1 << F64
	MaskF32       Mask = 1 << F32
	MaskF16       Mask = 1 << F16
	MaskBF16      Mask = 1 << BF16
	MaskI32       Mask = 1 << I32
	MaskI8        Mask = 1 << I8
	MaskU8        Mask = 1 << U8
	MaskI4        Mask = 1 << I4
	MaskU4        Mask = 1 << U4
	MaskNF4       Mask = 1 << NF4

	// MaskHalfFloat matches both 16-bit float flavors.
	MaskHalfFloat = MaskF16 | MaskBF16

	// MaskFloat matches every floating-point type.
	MaskFloat = MaskF64 | MaskF32 | MaskHalfFloat

	// MaskCompressed matches the compressed integer weight types.
	MaskCompressed = MaskU8 | MaskNF4 | MaskU4 | MaskI4

	// MaskAny matches every type, Undefined included.
	MaskAny = MaskUndefined | MaskFloat | MaskI32 | MaskI8 | MaskU8 | MaskI4 | MaskU4 | MaskNF4
)

// MaskFor returns the mask with only the given type set.
func MaskFor(t Type) Mask {
	return 1 << uint(t)
}

// Not returns the complement of the mask within MaskAny.
func (m Mask) Not() Mask {
	return MaskAny &^ m
}

// Matches reports whether the type is a member of the mask.
func (m Mask) Matches(t Type) bool {
	return m&MaskFor(t) != 0
}

// MatchesAll reports whether every value matches the corresponding pattern.
// Trailing unmatched patterns are allowed, mirroring configs whose arity is
// smaller than the rule's port count (e.g. a bias-less operation checked
// against a three-input rule).
func MatchesAll(patterns []Mask, values []Type) bool {
	if len(values) > len(patterns) {
		return false
	}
	for i, v := range values {
		if !patterns[i].Matches(v) {
			return false
		}
	}
	return true
}
