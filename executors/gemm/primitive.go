package gemm

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"

	"github.com/wutthichai46/openvino/executors"
	"github.com/wutthichai46/openvino/types/element"
	"github.com/wutthichai46/openvino/types/memory"
)

// Primitive is a compiled GEMM kernel, bound to concrete shapes and
// precisions. Primitives are immutable after compilation and safe for
// concurrent Execute calls on disjoint memory.
type Primitive struct {
	flavor Flavor
	attrs  Attrs

	m, n, k int

	srcDesc, weiDesc, biasDesc, dstDesc *memory.Desc
}

// NewPrimitive compiles a kernel for the given key, or returns the cached
// one when an equal key was compiled before. Concurrent callers with equal
// keys share a single compilation.
func NewPrimitive(key Key, ctx *executors.Context) (*Primitive, error) {
	value, created, err := ctx.RuntimeCache().GetOrCreate(key, func() (any, error) {
		return compile(key)
	})
	if err != nil {
		return nil, err
	}
	if created {
		klog.V(2).Infof("gemm: compiled %s primitive for src=%s wei=%s", key.Flavor, key.Src, key.Wei)
	}
	return value.(*Primitive), nil
}

func compile(key Key) (*Primitive, error) {
	if key.Src.Shape().IsDynamic() || key.Wei.Shape().IsDynamic() || key.Dst.Shape().IsDynamic() {
		return nil, errors.Errorf("gemm: cannot compile for dynamic shapes: src=%s wei=%s dst=%s",
			key.Src, key.Wei, key.Dst)
	}
	srcDims := key.Src.Shape().Dimensions
	weiDims := key.Wei.Shape().Dimensions
	if len(srcDims) < 2 || len(weiDims) != 2 {
		return nil, errors.Errorf("gemm: unsupported ranks: src rank %d, wei rank %d",
			len(srcDims), len(weiDims))
	}

	// Leading source dimensions collapse into M, the innermost is K.
	k := srcDims[len(srcDims)-1]
	m := 1
	for _, d := range srcDims[:len(srcDims)-1] {
		m *= d
	}

	var n, weiK int
	if key.Attrs.WeightsNonTransposed {
		weiK, n = weiDims[0], weiDims[1]
	} else {
		n, weiK = weiDims[0], weiDims[1]
	}
	if weiK != k {
		return nil, errors.Errorf("gemm: reduction dim mismatch: src K=%d, wei K=%d", k, weiK)
	}
	if key.Attrs.WithBias {
		biasDims := key.Bias.Shape().Dimensions
		if key.Bias.Shape().Size() != n {
			return nil, errors.Errorf("gemm: bias shape %v does not cover %d output channels", biasDims, n)
		}
	}
	dstDims := key.Dst.Shape().Dimensions
	if dstDims[len(dstDims)-1] != n || key.Dst.Shape().Size() != m*n {
		return nil, errors.Errorf("gemm: dst shape %v incompatible with %dx%d output", dstDims, m, n)
	}
	if err := validatePostOps(key.Attrs.PostOps, n); err != nil {
		return nil, err
	}
	if s := key.Attrs.DequantizationScales; len(s) > 1 && len(s) != n {
		return nil, errors.Errorf("gemm: %d dequantization scales for %d output channels", len(s), n)
	}

	return &Primitive{
		flavor:   key.Flavor,
		attrs:    key.Attrs,
		m:        m,
		n:        n,
		k:        k,
		srcDesc:  key.Src,
		weiDesc:  key.Wei,
		biasDesc: key.Bias,
		dstDesc:  key.Dst,
	}, nil
}

// Dims reports the compiled problem size.
func (p *Primitive) Dims() (m, n, k int) { return p.m, p.n, p.k }

// ImplType reports the kernel identity the primitive was compiled as.
func (p *Primitive) ImplType() executors.ImplType { return p.flavor.ImplType() }

// Execute runs the kernel over the bound memory arguments.
func (p *Primitive) Execute(mem memory.Args) error {
	src, err := asFloat32(mem[memory.ArgSrc])
	if err != nil {
		return errors.Wrap(err, "gemm: source")
	}
	wei, err := asFloat32(mem[memory.ArgWei])
	if err != nil {
		return errors.Wrap(err, "gemm: weights")
	}
	var bias []float32
	if p.attrs.WithBias {
		bias, err = asFloat32(mem[memory.ArgBias])
		if err != nil {
			return errors.Wrap(err, "gemm: bias")
		}
	}

	out := make([]float32, p.m*p.n)
	kernel := matmul[float32]
	if p.flavor == FlavorBlocked {
		kernel = matmulBlocked[float32]
	}
	workers.forRows(p.m, func(lo, hi int) {
		kernel(out[lo*p.n:hi*p.n], src[lo*p.k:hi*p.k], wei, hi-lo, p.n, p.k, p.attrs.WeightsNonTransposed)
	})
	applyEpilogue(out, p.m, p.n, bias, p.attrs.DequantizationScales, p.attrs.PostOps)

	return writeFloat32(mem[memory.ArgDst], out)
}

// asFloat32 exposes a memory argument as a float32 slice, converting when
// the stored precision differs.
func asFloat32(mem memory.Memory) ([]float32, error) {
	if mem == nil {
		return nil, errors.New("missing memory argument")
	}
	if mem.Desc().Type() == element.F32 {
		return memory.AsFloat32(mem), nil
	}
	scratch := memory.NewBuffer(mem.Desc().CloneWith(element.F32, mem.Desc().Layout()))
	if err := memory.Convert(scratch, mem); err != nil {
		return nil, err
	}
	return memory.AsFloat32(scratch), nil
}

// writeFloat32 stores computed values into the destination argument,
// converting when its precision is not float32.
func writeFloat32(mem memory.Memory, values []float32) error {
	if mem == nil {
		return errors.New("missing destination argument")
	}
	if mem.Desc().Type() == element.F32 {
		copy(memory.AsFloat32(mem), values)
		return nil
	}
	scratch := memory.NewBuffer(mem.Desc().CloneWith(element.F32, mem.Desc().Layout()))
	copy(memory.AsFloat32(scratch), values)
	return memory.Convert(mem, scratch)
}

// matmul is the reference kernel: dst[m,n] = src[m,k] x wei, with weights
// stored [N,K] natively or [K,N] when non-transposed.
func matmul[T constraints.Float](dst, src, wei []T, m, n, k int, weiKN bool) {
	for i := 0; i < m; i++ {
		srcRow := src[i*k : (i+1)*k]
		dstRow := dst[i*n : (i+1)*n]
		for j := 0; j < n; j++ {
			var acc T
			if weiKN {
				for p := 0; p < k; p++ {
					acc += srcRow[p] * wei[p*n+j]
				}
			} else {
				weiRow := wei[j*k : (j+1)*k]
				for p := 0; p < k; p++ {
					acc += srcRow[p] * weiRow[p]
				}
			}
			dstRow[j] = acc
		}
	}
}

const blockSize = 64

// matmulBlocked tiles the reduction and output dimensions to keep the
// working set cache resident. Results match matmul exactly: accumulation
// order per output element is identical.
func matmulBlocked[T constraints.Float](dst, src, wei []T, m, n, k int, weiKN bool) {
	for jb := 0; jb < n; jb += blockSize {
		jEnd := min(jb+blockSize, n)
		for i := 0; i < m; i++ {
			srcRow := src[i*k : (i+1)*k]
			dstRow := dst[i*n : (i+1)*n]
			for j := jb; j < jEnd; j++ {
				var acc T
				if weiKN {
					for p := 0; p < k; p++ {
						acc += srcRow[p] * wei[p*n+j]
					}
				} else {
					weiRow := wei[j*k : (j+1)*k]
					for p := 0; p < k; p++ {
						acc += srcRow[p] * weiRow[p]
					}
				}
				dstRow[j] = acc
			}
		}
	}
}
