package memory

import (
	"fmt"

	"github.com/wutthichai46/openvino/internal/hashutil"
	"github.com/wutthichai46/openvino/types/element"
)

// Desc describes a buffer: shape, element type and physical layout.
//
// A Desc is immutable once created. The executor core never copies the
// descriptors it is handed; it either references them or derives new ones
// (see CloneWith), so pointer identity is meaningful for cache keys.
type Desc struct {
	shape  Shape
	typ    element.Type
	layout Layout
}

// NewDesc returns a descriptor for the given type, layout and shape.
func NewDesc(typ element.Type, layout Layout, shape Shape) *Desc {
	return &Desc{shape: shape.Clone(), typ: typ, layout: layout}
}

// EmptyDesc returns the descriptor of an absent port: zero shape, undefined
// precision. It reports zero memory size, which is how optional ports (the
// bias) signal absence.
func EmptyDesc() *Desc {
	return &Desc{shape: Make(0), typ: element.Undefined, layout: LayoutPlain}
}

// Shape returns the descriptor's shape.
func (d *Desc) Shape() Shape { return d.shape }

// Type returns the element type.
func (d *Desc) Type() element.Type { return d.typ }

// Layout returns the physical layout tag.
func (d *Desc) Layout() Layout { return d.layout }

// Rank is shorthand for d.Shape().Rank().
func (d *Desc) Rank() int { return d.shape.Rank() }

// MemSize is the byte size of a buffer with this descriptor, or 0 when the
// shape is dynamic or empty.
func (d *Desc) MemSize() int {
	if d.shape.IsDynamic() {
		return 0
	}
	return d.shape.Size() * d.typ.Bits() / 8
}

// IsEmpty reports whether the descriptor describes an absent port.
func (d *Desc) IsEmpty() bool {
	return d.shape.IsStatic() && d.shape.Size() == 0
}

// Equal compares descriptors structurally: type, layout and shape.
func (d *Desc) Equal(o *Desc) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil {
		return false
	}
	return d.typ == o.typ && d.layout == o.layout && d.shape.Equal(o.shape)
}

// CloneWith derives a descriptor with the same shape but a different
// element type and layout. This is the only descriptor mutation the
// executor core performs: coercion never touches shape, rank or arity.
func (d *Desc) CloneWith(typ element.Type, layout Layout) *Desc {
	return &Desc{shape: d.shape.Clone(), typ: typ, layout: layout}
}

// CloneWithDims derives a static descriptor with the given dimensions,
// keeping type and layout. Used to materialize dummy shapes when
// pre-building kernels for dynamic configs.
func (d *Desc) CloneWithDims(dims []int) *Desc {
	return &Desc{shape: Make(dims...), typ: d.typ, layout: d.layout}
}

// Hash folds the descriptor's structural identity into seed.
func (d *Desc) Hash(seed uint64) uint64 {
	if d == nil {
		return hashutil.Combine(seed, 0)
	}
	seed = hashutil.Combine(seed, uint64(d.typ))
	seed = hashutil.Combine(seed, uint64(d.layout))
	seed = hashutil.CombineInts(seed, d.shape.Dimensions)
	seed = hashutil.CombineInts(seed, d.shape.MinDims)
	seed = hashutil.CombineInts(seed, d.shape.MaxDims)
	return seed
}

// String implements fmt.Stringer, e.g. "f32:plain[2 64]".
func (d *Desc) String() string {
	if d == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s:%s%s", d.typ, d.layout, d.shape)
}
