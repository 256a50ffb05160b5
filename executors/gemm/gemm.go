// Package gemm implements the pure-Go matrix-multiply kernel library the
// fully-connected implementations dispatch into.
//
// The package exposes backend capability objects in the shape the executor
// framework consumes: compiled Primitives (shape-and-precision-bound,
// memoized in the execution context's kernel cache) and Executor shells
// that rebind primitives as shapes change. Three kernel flavors exist: a
// plain reference loop, a cache-blocked variant, and a shape-agnostic
// variant with pre-packed weights whose M dimension binds at execution
// time.
//
// Compute is carried out in float32; inputs and outputs in other supported
// precisions are converted at the boundary.
package gemm

import (
	"slices"

	"github.com/wutthichai46/openvino/executors"
	"github.com/wutthichai46/openvino/executors/cache"
	"github.com/wutthichai46/openvino/internal/hashutil"
	"github.com/wutthichai46/openvino/types/memory"
)

// Flavor picks the compute kernel a Primitive compiles to.
type Flavor int32

const (
	FlavorRef Flavor = iota
	FlavorBlocked
	FlavorPacked
)

var flavorNames = [...]string{
	FlavorRef:     "ref",
	FlavorBlocked: "blocked",
	FlavorPacked:  "packed",
}

// String implements fmt.Stringer.
func (f Flavor) String() string {
	if f < 0 || int(f) >= len(flavorNames) {
		return "invalid"
	}
	return flavorNames[f]
}

// ImplType maps the flavor to the framework's kernel identity.
func (f Flavor) ImplType() executors.ImplType {
	switch f {
	case FlavorBlocked:
		return executors.ImplGemmBlocked
	case FlavorPacked:
		return executors.ImplGemmPacked
	default:
		return executors.ImplRef
	}
}

// Attrs carries the operation attributes a GEMM primitive compiles
// against. It is a projection of the caller's attribute type onto what the
// kernels understand.
type Attrs struct {
	WithBias bool

	// WeightsNonTransposed marks weights stored [K,N] instead of the
	// kernels' native [N,K].
	WeightsNonTransposed bool

	SparseWeights        bool
	DequantizationScales []float32

	PostOps executors.PostOps
}

func (a Attrs) hash(seed uint64) uint64 {
	seed = hashutil.CombineBool(seed, a.WithBias)
	seed = hashutil.CombineBool(seed, a.WeightsNonTransposed)
	seed = hashutil.CombineBool(seed, a.SparseWeights)
	seed = hashutil.CombineFloat32s(seed, a.DequantizationScales)
	return a.PostOps.Hash(seed)
}

func (a Attrs) equal(o Attrs) bool {
	return a.WithBias == o.WithBias &&
		a.WeightsNonTransposed == o.WeightsNonTransposed &&
		a.SparseWeights == o.SparseWeights &&
		slices.Equal(a.DequantizationScales, o.DequantizationScales) &&
		a.PostOps.Equal(o.PostOps)
}

// Key identifies a compiled primitive in the kernel cache: the structural
// identity of the participating descriptors plus the attribute content.
// Descriptors compare by pointer identity first, structural equality
// second, so two operator instances sharing descriptor objects hit the
// same entry without a deep comparison.
type Key struct {
	Src, Wei, Bias, Dst *memory.Desc

	Flavor Flavor
	Attrs  Attrs

	// WeiToken distinguishes entries that memoize weight data rather than
	// compiled code: a content hash of the weight bytes, so same-shaped
	// tensors with different values never share a packed copy. Zero for
	// primitive entries, whose kernels read the weights on every call.
	WeiToken uint64
}

// Hash implements cache.Key.
func (k Key) Hash() uint64 {
	seed := uint64(0x9E3779B97F4A7C15)
	for _, d := range []*memory.Desc{k.Src, k.Wei, k.Bias, k.Dst} {
		seed = d.Hash(seed)
	}
	seed = hashutil.Combine(seed, uint64(k.Flavor))
	seed = hashutil.Combine(seed, k.WeiToken)
	return k.Attrs.hash(seed)
}

// Equal implements cache.Key.
func (k Key) Equal(other cache.Key) bool {
	o, ok := other.(Key)
	if !ok {
		return false
	}
	return descMatches(k.Src, o.Src) &&
		descMatches(k.Wei, o.Wei) &&
		descMatches(k.Bias, o.Bias) &&
		descMatches(k.Dst, o.Dst) &&
		k.Flavor == o.Flavor &&
		k.WeiToken == o.WeiToken &&
		k.Attrs.equal(o.Attrs)
}

func descMatches(a, b *memory.Desc) bool {
	return a == b || a.Equal(b)
}
