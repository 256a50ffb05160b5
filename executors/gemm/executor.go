package gemm

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/wutthichai46/openvino/executors"
	"github.com/wutthichai46/openvino/internal/hashutil"
	"github.com/wutthichai46/openvino/types/memory"
)

// dummyDim stands in for unbounded dynamic dimensions when a kernel has to
// be compiled before real shapes arrive.
const dummyDim = 64

// Executor is a shape-dependent executor shell. Each Update compiles (or
// fetches from the kernel cache) a primitive for the current shapes; at
// construction it warms the cache with dummy shapes so the first real
// inference does not pay compilation latency.
type Executor struct {
	flavor   Flavor
	reported executors.ImplType
	attrs    Attrs
	ctx      *executors.Context

	prim *Primitive
}

var _ executors.Executor = (*Executor)(nil)

// NewExecutor builds the shell and warms the kernel cache for the given
// descriptors, substituting dummy dimensions when the source shape is
// dynamic. reported overrides the advertised kernel identity; pass
// ImplUndefined to report the flavor's own.
func NewExecutor(descs executors.MemoryDescArgs, attrs Attrs, ctx *executors.Context,
	flavor Flavor, reported executors.ImplType) (*Executor, error) {
	if reported == executors.ImplUndefined {
		reported = flavor.ImplType()
	}
	e := &Executor{
		flavor:   flavor,
		reported: reported,
		attrs:    attrs,
		ctx:      ctx,
	}
	key, err := e.makeKey(descs, true)
	if err != nil {
		return nil, err
	}
	if _, err := NewPrimitive(key, ctx); err != nil {
		return nil, errors.Wrap(err, "gemm: warmup compilation")
	}
	return e, nil
}

// Update rebinds the executor to the given shapes, compiling a primitive
// if none exists for them yet.
func (e *Executor) Update(descs executors.MemoryDescArgs, mem memory.Args) error {
	key, err := e.makeKey(descs, false)
	if err != nil {
		return err
	}
	prim, err := NewPrimitive(key, e.ctx)
	if err != nil {
		return err
	}
	e.prim = prim
	return nil
}

// Execute runs the currently bound primitive.
func (e *Executor) Execute(mem memory.Args) error {
	if e.prim == nil {
		return errors.New("gemm: Execute before Update")
	}
	return e.prim.Execute(mem)
}

// ImplType implements executors.Executor.
func (e *Executor) ImplType() executors.ImplType { return e.reported }

func (e *Executor) makeKey(descs executors.MemoryDescArgs, allowDummy bool) (Key, error) {
	if len(descs.Src) < 2 || len(descs.Dst) < 1 {
		return Key{}, errors.Errorf("gemm: need at least source, weights and destination ports, got %d/%d",
			len(descs.Src), len(descs.Dst))
	}
	src, wei, dst := descs.Src[0], descs.Src[1], descs.Dst[0]
	bias := memory.EmptyDesc()
	if e.attrs.WithBias {
		if len(descs.Src) < 3 {
			return Key{}, errors.New("gemm: bias attribute set but no bias port")
		}
		bias = descs.Src[2]
	}
	if wei.Shape().IsDynamic() {
		return Key{}, errors.Errorf("gemm: weights must be static, got %s", wei)
	}
	if src.Shape().IsDynamic() || dst.Shape().IsDynamic() {
		if !allowDummy {
			return Key{}, errors.Errorf("gemm: dynamic shapes at update time: src=%s dst=%s", src, dst)
		}
		srcDims := dummyInputDims(src, wei, e.attrs.WeightsNonTransposed)
		src = src.CloneWithDims(srcDims)
		dst = dst.CloneWithDims(dummyOutputDims(srcDims, outputChannels(wei, e.attrs.WeightsNonTransposed)))
		klog.V(2).Infof("gemm: dummy shapes for warmup: src=%s dst=%s", src, dst)
	}
	return Key{
		Src:    src,
		Wei:    wei,
		Bias:   bias,
		Dst:    dst,
		Flavor: e.flavor,
		Attrs:  e.attrs,
	}, nil
}

func outputChannels(wei *memory.Desc, weightsKN bool) int {
	dims := wei.Shape().Dimensions
	if weightsKN {
		return dims[1]
	}
	return dims[0]
}

func reductionDim(wei *memory.Desc, weightsKN bool) int {
	dims := wei.Shape().Dimensions
	if weightsKN {
		return dims[0]
	}
	return dims[1]
}

// dummyInputDims produces static placeholder dimensions for a dynamic
// source shape. The reduction dimension is pinned to the weights, every
// other dynamic dimension gets a nominal value clamped into its bounds.
func dummyInputDims(src, wei *memory.Desc, weightsKN bool) []int {
	shape := src.Shape()
	dims := make([]int, shape.Rank())
	for i := range dims {
		dims[i] = shape.Dimensions[i]
		if dims[i] != memory.DynamicDim {
			continue
		}
		d := dummyDim
		if lo := shape.MinDims[i]; lo > d {
			d = lo
		}
		if hi := shape.MaxDims[i]; hi != memory.DynamicDim && hi < d {
			d = hi
		}
		dims[i] = d
	}
	dims[len(dims)-1] = reductionDim(wei, weightsKN)
	return dims
}

// dummyOutputDims mirrors the source placeholder dims with the channel
// dimension replaced by the weight output channels.
func dummyOutputDims(srcDims []int, n int) []int {
	dims := make([]int, len(srcDims))
	copy(dims, srcDims)
	dims[len(dims)-1] = n
	return dims
}

// PackedExecutor is the shape-agnostic shell: weights are converted and
// packed once at construction, the M dimension binds at Update. It never
// needs recompilation when batch or sequence length change, which is what
// lets the selection stage stop at it before shapes are known.
type PackedExecutor struct {
	attrs executors.PostOps
	bias  []float32

	n, k   int
	packed []float32

	dequant []float32

	m int
}

var _ executors.Executor = (*PackedExecutor)(nil)

// NewPackedExecutor packs the weights from mem into the kernel-native
// [N,K] float32 layout. The packing is memoized in the context's kernel
// cache keyed by the weight descriptor plus a content hash of the weight
// bytes, so operators with identical weight tensors share one packed copy
// while same-shaped tensors with different values pack separately.
func NewPackedExecutor(descs executors.MemoryDescArgs, attrs Attrs, mem memory.Args,
	ctx *executors.Context) (*PackedExecutor, error) {
	if len(descs.Src) < 2 {
		return nil, errors.Errorf("gemm: need source and weights ports, got %d", len(descs.Src))
	}
	wei := descs.Src[1]
	if wei.Shape().IsDynamic() {
		return nil, errors.Errorf("gemm: cannot pack dynamic weights %s", wei)
	}
	weiMem := mem[memory.ArgWei]
	if weiMem == nil {
		return nil, errors.New("gemm: weights memory not provided at pack time")
	}
	n := outputChannels(wei, attrs.WeightsNonTransposed)
	k := reductionDim(wei, attrs.WeightsNonTransposed)
	if err := validatePostOps(attrs.PostOps, n); err != nil {
		return nil, err
	}

	key := Key{
		Src:      memory.EmptyDesc(),
		Wei:      wei,
		Bias:     memory.EmptyDesc(),
		Dst:      memory.EmptyDesc(),
		Flavor:   FlavorPacked,
		Attrs:    Attrs{WeightsNonTransposed: attrs.WeightsNonTransposed},
		WeiToken: hashutil.Sum64(weiMem.Bytes()),
	}
	value, _, err := ctx.RuntimeCache().GetOrCreate(key, func() (any, error) {
		return packWeights(weiMem, n, k, attrs.WeightsNonTransposed)
	})
	if err != nil {
		return nil, errors.Wrap(err, "gemm: weight packing")
	}

	e := &PackedExecutor{
		attrs:   attrs.PostOps,
		n:       n,
		k:       k,
		packed:  value.([]float32),
		dequant: attrs.DequantizationScales,
	}
	if attrs.WithBias {
		bias, err := asFloat32(mem[memory.ArgBias])
		if err != nil {
			return nil, errors.Wrap(err, "gemm: bias")
		}
		e.bias = bias
	}
	return e, nil
}

// packWeights converts weights to float32 and lays them out [N,K]
// row-major.
func packWeights(wei memory.Memory, n, k int, weightsKN bool) ([]float32, error) {
	if wei == nil {
		return nil, errors.New("gemm: weights memory not provided at pack time")
	}
	values, err := asFloat32(wei)
	if err != nil {
		return nil, err
	}
	if !weightsKN {
		packed := make([]float32, len(values))
		copy(packed, values)
		return packed, nil
	}
	packed := make([]float32, n*k)
	for p := 0; p < k; p++ {
		for j := 0; j < n; j++ {
			packed[j*k+p] = values[p*n+j]
		}
	}
	return packed, nil
}

// Update binds the M dimension from the current source shape.
func (e *PackedExecutor) Update(descs executors.MemoryDescArgs, mem memory.Args) error {
	if len(descs.Src) < 1 {
		return errors.New("gemm: missing source port")
	}
	shape := descs.Src[0].Shape()
	if shape.IsDynamic() {
		return errors.Errorf("gemm: dynamic source shape at update time: %s", shape)
	}
	dims := shape.Dimensions
	if dims[len(dims)-1] != e.k {
		return errors.Errorf("gemm: source reduction dim %d, packed weights expect %d",
			dims[len(dims)-1], e.k)
	}
	e.m = shape.Size() / e.k
	return nil
}

// Execute runs the packed kernel.
func (e *PackedExecutor) Execute(mem memory.Args) error {
	if e.m == 0 {
		return errors.New("gemm: Execute before Update")
	}
	src, err := asFloat32(mem[memory.ArgSrc])
	if err != nil {
		return errors.Wrap(err, "gemm: source")
	}
	out := make([]float32, e.m*e.n)
	workers.forRows(e.m, func(lo, hi int) {
		matmul(out[lo*e.n:hi*e.n], src[lo*e.k:hi*e.k], e.packed, hi-lo, e.n, e.k, false)
	})
	applyEpilogue(out, e.m, e.n, e.bias, e.dequant, e.attrs)
	return writeFloat32(mem[memory.ArgDst], out)
}

// ImplType implements executors.Executor.
func (e *PackedExecutor) ImplType() executors.ImplType { return executors.ImplGemmPacked }
