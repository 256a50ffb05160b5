// Package element defines the numeric element types handled by the executor
// framework, and type masks used by the precision translation tables.
//
// A Type describes the unit element of a memory buffer (see types/memory).
// A Mask is a set of types: precision translation rules declare, per port,
// the set of element types they accept. Masks are built by OR-ing the
// Mask*-prefixed constants, e.g. `MaskU8 | MaskI8`.
package element

// Type enumerates the element types known to the executor framework.
//
// Undefined is a valid member: it marks a port whose precision is not bound
// yet (e.g. an absent bias), and it matches any requested precision during
// the compliance check.
type Type int32

const (
	Undefined Type = iota
	F64
	F32
	F16
	BF16
	I32
	I8
	U8
	I4
	U4
	NF4
)

// typeNames is kept in sync with the Type constants above.
var typeNames = [...]string{
	Undefined: "undefined",
	F64:       "f64",
	F32:       "f32",
	F16:       "f16",
	BF16:      "bf16",
	I32:       "i32",
	I8:        "i8",
	U8:        "u8",
	I4:        "i4",
	U4:        "u4",
	NF4:       "nf4",
}

// String implements fmt.Stringer.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "invalid"
	}
	return typeNames[t]
}

// Bits returns the number of bits used to store one element of the type.
// Undefined takes no storage.
func (t Type) Bits() int {
	switch t {
	case F64:
		return 64
	case F32, I32:
		return 32
	case F16, BF16:
		return 16
	case I8, U8:
		return 8
	case I4, U4, NF4:
		return 4
	default:
		return 0
	}
}

// IsFloat reports whether the type is a floating-point type.
func (t Type) IsFloat() bool {
	switch t {
	case F64, F32, F16, BF16:
		return true
	}
	return false
}

// IsQuantized reports whether the type is one of the compressed integer
// types used for weight storage.
func (t Type) IsQuantized() bool {
	switch t {
	case I8, U8, I4, U4, NF4:
		return true
	}
	return false
}

// DefaultFloat is the floating type every port is forced to when no
// precision translation rule matches. The fallback is always valid: any
// reference kernel must accept it.
func DefaultFloat() Type {
	return F32
}
