package gemm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wutthichai46/openvino/executors"
	"github.com/wutthichai46/openvino/types/element"
	"github.com/wutthichai46/openvino/types/memory"
)

func plainDesc(t element.Type, dims ...int) *memory.Desc {
	return memory.NewDesc(t, memory.LayoutPlain, memory.Make(dims...))
}

func f32Buffer(desc *memory.Desc, values []float32) *memory.Buffer {
	buf := memory.NewBuffer(desc)
	copy(memory.AsFloat32(buf), values)
	return buf
}

// problem: src [2,3] x wei [2 out,3 in] + bias [2] -> dst [2,2]
func testProblem(attrs Attrs) (Key, memory.Args) {
	src := plainDesc(element.F32, 2, 3)
	wei := plainDesc(element.F32, 2, 3)
	bias := plainDesc(element.F32, 2)
	dst := plainDesc(element.F32, 2, 2)

	mem := memory.Args{
		memory.ArgSrc:  f32Buffer(src, []float32{1, 2, 3, 4, 5, 6}),
		memory.ArgWei:  f32Buffer(wei, []float32{1, 0, 1, 0, 1, 0}),
		memory.ArgBias: f32Buffer(bias, []float32{10, 20}),
		memory.ArgDst:  memory.NewBuffer(dst),
	}
	key := Key{Src: src, Wei: wei, Bias: bias, Dst: dst, Flavor: FlavorRef, Attrs: attrs}
	if !attrs.WithBias {
		key.Bias = memory.EmptyDesc()
	}
	return key, mem
}

func TestPrimitiveExecute(t *testing.T) {
	key, mem := testProblem(Attrs{WithBias: true})
	prim, err := NewPrimitive(key, executors.NewContext())
	require.NoError(t, err)

	m, n, k := prim.Dims()
	assert.Equal(t, [3]int{2, 2, 3}, [3]int{m, n, k})

	require.NoError(t, prim.Execute(mem))
	// row0: {1,2,3}.{1,0,1}=4, {1,2,3}.{0,1,0}=2; row1: {4,5,6}->10, 5.
	assert.Equal(t, []float32{14, 22, 20, 25}, memory.AsFloat32(mem[memory.ArgDst]))
}

func TestPrimitiveBlockedMatchesRef(t *testing.T) {
	key, mem := testProblem(Attrs{WithBias: true})
	ctx := executors.NewContext()

	ref, err := NewPrimitive(key, ctx)
	require.NoError(t, err)
	require.NoError(t, ref.Execute(mem))
	want := append([]float32(nil), memory.AsFloat32(mem[memory.ArgDst])...)

	key.Flavor = FlavorBlocked
	blocked, err := NewPrimitive(key, ctx)
	require.NoError(t, err)
	require.NoError(t, blocked.Execute(mem))
	assert.Equal(t, want, memory.AsFloat32(mem[memory.ArgDst]))
}

func TestPrimitiveWeightsNonTransposed(t *testing.T) {
	src := plainDesc(element.F32, 1, 3)
	wei := plainDesc(element.F32, 3, 2) // [K,N]
	dst := plainDesc(element.F32, 1, 2)
	mem := memory.Args{
		memory.ArgSrc: f32Buffer(src, []float32{1, 2, 3}),
		memory.ArgWei: f32Buffer(wei, []float32{1, 0, 0, 1, 1, 0}),
		memory.ArgDst: memory.NewBuffer(dst),
	}
	key := Key{Src: src, Wei: wei, Bias: memory.EmptyDesc(), Dst: dst,
		Flavor: FlavorRef, Attrs: Attrs{WeightsNonTransposed: true}}

	prim, err := NewPrimitive(key, executors.NewContext())
	require.NoError(t, err)
	require.NoError(t, prim.Execute(mem))
	assert.Equal(t, []float32{4, 2}, memory.AsFloat32(mem[memory.ArgDst]))
}

func TestPrimitiveCacheSharing(t *testing.T) {
	ctx := executors.NewContext()
	key, _ := testProblem(Attrs{WithBias: true})

	a, err := NewPrimitive(key, ctx)
	require.NoError(t, err)

	// A structurally equal key with distinct descriptor objects hits the
	// same entry.
	same := key
	same.Src = plainDesc(element.F32, 2, 3)
	b, err := NewPrimitive(same, ctx)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, ctx.RuntimeCache().Len())

	// A different flavor compiles separately.
	other := key
	other.Flavor = FlavorBlocked
	c, err := NewPrimitive(other, ctx)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, ctx.RuntimeCache().Len())
}

func TestCompileRejectsBadShapes(t *testing.T) {
	key, _ := testProblem(Attrs{WithBias: true})

	bad := key
	bad.Wei = plainDesc(element.F32, 2, 5)
	_, err := compile(bad)
	assert.Error(t, err)

	bad = key
	bad.Dst = plainDesc(element.F32, 2, 7)
	_, err = compile(bad)
	assert.Error(t, err)

	bad = key
	bad.Src = memory.NewDesc(element.F32, memory.LayoutPlain,
		memory.MakeDynamic([]int{1, 3}, []int{8, 3}))
	_, err = compile(bad)
	assert.Error(t, err)
}

func TestPrimitiveEpilogue(t *testing.T) {
	src := plainDesc(element.F32, 1, 2)
	wei := plainDesc(element.F32, 2, 2)
	dst := plainDesc(element.F32, 1, 2)
	mem := memory.Args{
		memory.ArgSrc: f32Buffer(src, []float32{1, -1}),
		memory.ArgWei: f32Buffer(wei, []float32{1, 0, 0, 1}),
		memory.ArgDst: memory.NewBuffer(dst),
	}
	key := Key{Src: src, Wei: wei, Bias: memory.EmptyDesc(), Dst: dst,
		Flavor: FlavorRef,
		Attrs: Attrs{
			DequantizationScales: []float32{2},
			PostOps:              executors.PostOps{executors.Activation{Kind: executors.ActivationReLU}},
		}}

	prim, err := NewPrimitive(key, executors.NewContext())
	require.NoError(t, err)
	require.NoError(t, prim.Execute(mem))
	// {1,-1} scaled by 2 -> {2,-2}, relu -> {2,0}.
	assert.Equal(t, []float32{2, 0}, memory.AsFloat32(mem[memory.ArgDst]))
}

func TestPrimitiveScaleShiftWithoutShifts(t *testing.T) {
	src := plainDesc(element.F32, 1, 2)
	wei := plainDesc(element.F32, 2, 2)
	dst := plainDesc(element.F32, 1, 2)
	mem := memory.Args{
		memory.ArgSrc: f32Buffer(src, []float32{1, 2}),
		memory.ArgWei: f32Buffer(wei, []float32{1, 0, 0, 1}),
		memory.ArgDst: memory.NewBuffer(dst),
	}
	key := Key{Src: src, Wei: wei, Bias: memory.EmptyDesc(), Dst: dst,
		Flavor: FlavorRef,
		Attrs: Attrs{
			PostOps: executors.PostOps{executors.ScaleShift{Scales: []float32{3}}},
		}}

	prim, err := NewPrimitive(key, executors.NewContext())
	require.NoError(t, err)
	require.NoError(t, prim.Execute(mem))
	assert.Equal(t, []float32{3, 6}, memory.AsFloat32(mem[memory.ArgDst]))
}

func TestCompileRejectsMismatchedPostOpChannels(t *testing.T) {
	key, _ := testProblem(Attrs{})

	// n is 2; a 3-element per-channel parameter cannot cover it.
	key.Attrs.PostOps = executors.PostOps{executors.ScaleShift{Scales: []float32{1, 2, 3}}}
	_, err := compile(key)
	assert.Error(t, err)

	key.Attrs.PostOps = executors.PostOps{executors.FakeQuantize{
		Levels:     256,
		InputLow:   []float32{0},
		InputHigh:  []float32{1, 2, 3},
		OutputLow:  []float32{0},
		OutputHigh: []float32{1},
	}}
	_, err = compile(key)
	assert.Error(t, err)
}

func TestKeyEqualAndHash(t *testing.T) {
	key, _ := testProblem(Attrs{WithBias: true})
	same := key
	same.Src = plainDesc(element.F32, 2, 3)

	assert.True(t, key.Equal(same))
	assert.Equal(t, key.Hash(), same.Hash())

	other := key
	other.Attrs.WithBias = false
	assert.False(t, key.Equal(other))

	shape := key
	shape.Src = plainDesc(element.F32, 4, 3)
	assert.False(t, key.Equal(shape))

	// Scale values participate in key identity, not just their count.
	scaled := key
	scaled.Attrs.DequantizationScales = []float32{3}
	rescaled := key
	rescaled.Attrs.DequantizationScales = []float32{5}
	assert.False(t, scaled.Equal(rescaled))
	assert.NotEqual(t, scaled.Hash(), rescaled.Hash())

	tokened := key
	tokened.WeiToken = 7
	assert.False(t, key.Equal(tokened))
	assert.NotEqual(t, key.Hash(), tokened.Hash())
}
