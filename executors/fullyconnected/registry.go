package fullyconnected

import (
	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"

	"github.com/wutthichai46/openvino/executors"
	"github.com/wutthichai46/openvino/executors/gemm"
	"github.com/wutthichai46/openvino/types/element"
	"github.com/wutthichai46/openvino/types/memory"
)

// Problem-size bounds for the cache-blocked convolution-style path. Inside
// them the blocked kernel was measured faster than the reference loop;
// outside, packing overhead or working-set size eats the gain.
const (
	conv1x1MinM = 2
	conv1x1MaxM = 3136
	conv1x1MinK = 96
	conv1x1MaxK = 4096
	conv1x1MinN = 96

	// The output channel count may exceed the reduction dimension by at
	// most this factor before packing stops paying off.
	conv1x1MaxNPerK = 4

	conv1x1MaxWeiBytes = 16 << 20
)

// convertibleMask covers the element types the kernels can convert at the
// compute boundary.
const convertibleMask = element.MaskF32 | element.MaskHalfFloat | element.MaskI8 | element.MaskU8

var implementations = []*executors.Implementation[Attrs]{
	packedImplementation(),
	conv1x1Implementation(),
	refImplementation(),
}

// Implementations returns the fully-connected implementation registry in
// priority order. The returned slice is shared and must not be mutated.
func Implementations() []*executors.Implementation[Attrs] {
	return implementations
}

// NewFactory builds an executor factory over the fully-connected registry.
func NewFactory(ctx *executors.Context) *executors.Factory[Attrs] {
	return executors.NewFactory(ctx, Implementations())
}

// packedImplementation is the highest-priority path: float32 compute over
// weights packed once at creation. It is shape-agnostic, so accepting it
// during filtering shadows every other candidate.
func packedImplementation() *executors.Implementation[Attrs] {
	return executors.NewImplementation(
		"fullyconnected_gemm_packed",
		executors.ImplGemmPacked,
		executors.BackendGemm,
		executors.OpFullyConnected,
		executors.ShapeAgnostic,
		func(cfg *executors.Config[Attrs]) bool {
			if cfg.Attrs.SparseWeights || UseWeightsDecompression(cfg) {
				return false
			}
			if executors.SrcType(cfg, 0) != element.F32 ||
				executors.WeiType(cfg) != element.F32 ||
				executors.DstType(cfg) != element.F32 {
				return false
			}
			return staticRank2Weights(cfg)
		},
		func(cfg *executors.Config[Attrs]) (bool, *executors.Config[Attrs]) {
			return executors.FullyCompliantCommon(cfg, typeMapping, plainLayouts)
		},
		func(*executors.Config[Attrs]) bool { return true },
		func(cfg *executors.Config[Attrs], mem memory.Args, ctx *executors.Context) (executors.Executor, error) {
			return gemm.NewPackedExecutor(cfg.Descs, toGemmAttrs(cfg), mem, ctx)
		},
	)
}

// conv1x1Implementation runs the cache-blocked kernel when the problem
// size sits inside the measured sweet spot.
func conv1x1Implementation() *executors.Implementation[Attrs] {
	return executors.NewImplementation(
		"fullyconnected_conv1x1_blocked",
		executors.ImplConv1x1,
		executors.BackendBlocked,
		executors.OpConvolution,
		executors.ShapeDependent,
		func(cfg *executors.Config[Attrs]) bool {
			if cfg.Attrs.SparseWeights || UseWeightsDecompression(cfg) {
				return false
			}
			if !convertibleMask.Matches(executors.SrcType(cfg, 0)) ||
				!convertibleMask.Matches(executors.WeiType(cfg)) ||
				!convertibleMask.Matches(executors.DstType(cfg)) {
				return false
			}
			if r := executors.SrcRank(cfg, 0); r != 2 && r != 3 {
				return false
			}
			return staticRank2Weights(cfg)
		},
		func(cfg *executors.Config[Attrs]) (bool, *executors.Config[Attrs]) {
			return executors.FullyCompliantCommon(cfg, typeMapping, plainLayouts)
		},
		conv1x1ShapeSuitable,
		func(cfg *executors.Config[Attrs], mem memory.Args, ctx *executors.Context) (executors.Executor, error) {
			return gemm.NewExecutor(cfg.Descs, toGemmAttrs(cfg), ctx, gemm.FlavorBlocked, executors.ImplConv1x1)
		},
	)
}

func conv1x1ShapeSuitable(cfg *executors.Config[Attrs]) bool {
	src := cfg.Descs.Src[0].Shape()
	if src.IsDynamic() {
		return false
	}
	weiDims := executors.WeiDims(cfg)
	n, k := weiDims[0], weiDims[1]
	if cfg.Attrs.WeightsNonTransposed {
		k, n = n, k
	}
	m := src.Size() / k
	if m < conv1x1MinM || m > conv1x1MaxM ||
		k < conv1x1MinK || k > conv1x1MaxK ||
		n < conv1x1MinN || n > k*conv1x1MaxNPerK {
		return false
	}
	if size := executors.WeiMemSize(cfg); size > conv1x1MaxWeiBytes {
		klog.V(2).Infof("fullyconnected: blocked path rejected, weights %s exceed %s",
			humanize.IBytes(uint64(size)), humanize.IBytes(conv1x1MaxWeiBytes))
		return false
	}
	return true
}

// refImplementation is the terminal catch-all. It accepts every config,
// which keeps the filtering stage's non-empty guarantee.
func refImplementation() *executors.Implementation[Attrs] {
	return executors.NewImplementation(
		"fullyconnected_gemm_ref",
		executors.ImplRef,
		executors.BackendGemm,
		executors.OpFullyConnected,
		executors.ShapeDependent,
		func(*executors.Config[Attrs]) bool { return true },
		func(cfg *executors.Config[Attrs]) (bool, *executors.Config[Attrs]) {
			return executors.FullyCompliantCommon(cfg, typeMapping, plainLayouts)
		},
		func(*executors.Config[Attrs]) bool { return true },
		func(cfg *executors.Config[Attrs], mem memory.Args, ctx *executors.Context) (executors.Executor, error) {
			return gemm.NewExecutor(cfg.Descs, toGemmAttrs(cfg), ctx, gemm.FlavorRef, executors.ImplRef)
		},
	)
}

func staticRank2Weights(cfg *executors.Config[Attrs]) bool {
	wei := cfg.Descs.Src[1]
	return wei.Rank() == 2 && wei.Shape().IsStatic()
}

func toGemmAttrs(cfg *executors.Config[Attrs]) gemm.Attrs {
	return gemm.Attrs{
		WithBias:             cfg.Attrs.WithBias,
		WeightsNonTransposed: cfg.Attrs.WeightsNonTransposed,
		SparseWeights:        cfg.Attrs.SparseWeights,
		DequantizationScales: cfg.Attrs.DequantizationScales,
		PostOps:              cfg.PostOps,
	}
}
