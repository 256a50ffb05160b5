// Package fullyconnected registers the executor implementations for the
// fully-connected operation: a shape-agnostic packed-weights path, a
// cache-blocked path gated by problem-size heuristics, and a reference
// path accepting any configuration.
package fullyconnected

import (
	"github.com/wutthichai46/openvino/executors"
	"github.com/wutthichai46/openvino/internal/hashutil"
	"github.com/wutthichai46/openvino/types/element"
	"github.com/wutthichai46/openvino/types/memory"
)

// Attrs are the operation attributes of a fully-connected instance.
type Attrs struct {
	WithBias bool

	// WeightsNonTransposed marks weights stored [K,N]; the kernels'
	// native order is [N,K].
	WeightsNonTransposed bool

	SparseWeights bool

	// DequantizationScales rescale the int8 accumulator, one value or
	// one per output channel.
	DequantizationScales []float32

	// DecompressionSubtract and DecompressionMultiply describe the
	// zero-point and scale tensors of compressed weights. Nil when the
	// weights are not compressed.
	DecompressionSubtract *memory.Desc
	DecompressionMultiply *memory.Desc
}

var _ executors.Attrs[Attrs] = Attrs{}

// Hash implements executors.Attrs.
func (a Attrs) Hash(seed uint64) uint64 {
	seed = hashutil.CombineBool(seed, a.WithBias)
	seed = hashutil.CombineBool(seed, a.WeightsNonTransposed)
	seed = hashutil.CombineBool(seed, a.SparseWeights)
	seed = hashutil.Combine(seed, uint64(len(a.DequantizationScales)))
	seed = hashDesc(seed, a.DecompressionSubtract)
	return hashDesc(seed, a.DecompressionMultiply)
}

func hashDesc(seed uint64, d *memory.Desc) uint64 {
	if d == nil {
		return hashutil.CombineBool(seed, false)
	}
	return d.Hash(hashutil.CombineBool(seed, true))
}

// Equal implements executors.Attrs. Decompression descriptors compare
// structurally, with two absent descriptors considered equal.
func (a Attrs) Equal(o Attrs) bool {
	return a.WithBias == o.WithBias &&
		a.WeightsNonTransposed == o.WeightsNonTransposed &&
		a.SparseWeights == o.SparseWeights &&
		len(a.DequantizationScales) == len(o.DequantizationScales) &&
		descEqual(a.DecompressionSubtract, o.DecompressionSubtract) &&
		descEqual(a.DecompressionMultiply, o.DecompressionMultiply)
}

func descEqual(a, b *memory.Desc) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}

// UseWeightsDecompression reports whether the config's weights are stored
// in a compressed integer type and need decompression before compute.
func UseWeightsDecompression(cfg *executors.Config[Attrs]) bool {
	return element.MaskCompressed.Matches(executors.WeiType(cfg))
}
