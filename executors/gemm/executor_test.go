package gemm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wutthichai46/openvino/executors"
	"github.com/wutthichai46/openvino/types/element"
	"github.com/wutthichai46/openvino/types/memory"
)

func TestExecutorUpdateExecute(t *testing.T) {
	ctx := executors.NewContext()
	descs := executors.MemoryDescArgs{
		Src: []*memory.Desc{plainDesc(element.F32, 2, 3), plainDesc(element.F32, 2, 3)},
		Dst: []*memory.Desc{plainDesc(element.F32, 2, 2)},
	}

	e, err := NewExecutor(descs, Attrs{}, ctx, FlavorRef, executors.ImplUndefined)
	require.NoError(t, err)
	assert.Equal(t, executors.ImplRef, e.ImplType())

	mem := memory.Args{
		memory.ArgSrc: f32Buffer(descs.Src[0], []float32{1, 2, 3, 4, 5, 6}),
		memory.ArgWei: f32Buffer(descs.Src[1], []float32{1, 0, 1, 0, 1, 0}),
		memory.ArgDst: memory.NewBuffer(descs.Dst[0]),
	}
	assert.Error(t, e.Execute(mem)) // Update not called yet

	require.NoError(t, e.Update(descs, mem))
	require.NoError(t, e.Execute(mem))
	assert.Equal(t, []float32{4, 2, 10, 5}, memory.AsFloat32(mem[memory.ArgDst]))

	// The warmup already compiled for these static shapes; Update reused
	// the cache entry.
	assert.Equal(t, 1, ctx.RuntimeCache().Len())
}

func TestExecutorReportsOverriddenImplType(t *testing.T) {
	ctx := executors.NewContext()
	descs := executors.MemoryDescArgs{
		Src: []*memory.Desc{plainDesc(element.F32, 2, 3), plainDesc(element.F32, 2, 3)},
		Dst: []*memory.Desc{plainDesc(element.F32, 2, 2)},
	}

	e, err := NewExecutor(descs, Attrs{}, ctx, FlavorBlocked, executors.ImplConv1x1)
	require.NoError(t, err)
	assert.Equal(t, executors.ImplConv1x1, e.ImplType())
}

func TestExecutorWarmsCacheWithDummyShapes(t *testing.T) {
	ctx := executors.NewContext()
	dynSrc := memory.NewDesc(element.F32, memory.LayoutPlain,
		memory.MakeDynamic([]int{1, 3}, []int{memory.DynamicDim, 3}))
	dynDst := memory.NewDesc(element.F32, memory.LayoutPlain,
		memory.MakeDynamic([]int{1, 2}, []int{memory.DynamicDim, 2}))
	descs := executors.MemoryDescArgs{
		Src: []*memory.Desc{dynSrc, plainDesc(element.F32, 2, 3)},
		Dst: []*memory.Desc{dynDst},
	}

	e, err := NewExecutor(descs, Attrs{}, ctx, FlavorRef, executors.ImplUndefined)
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.RuntimeCache().Len())

	// Binding real shapes compiles a second primitive.
	bound := executors.MemoryDescArgs{
		Src: []*memory.Desc{plainDesc(element.F32, 2, 3), descs.Src[1]},
		Dst: []*memory.Desc{plainDesc(element.F32, 2, 2)},
	}
	require.NoError(t, e.Update(bound, nil))
	assert.Equal(t, 2, ctx.RuntimeCache().Len())

	// Updating to dynamic shapes is a programming error.
	assert.Error(t, e.Update(descs, nil))
}

func TestDummyDims(t *testing.T) {
	wei := plainDesc(element.F32, 8, 16)
	src := memory.NewDesc(element.F32, memory.LayoutPlain,
		memory.MakeDynamic([]int{1, 16}, []int{memory.DynamicDim, 16}))

	dims := dummyInputDims(src, wei, false)
	assert.Equal(t, []int{dummyDim, 16}, dims)
	assert.Equal(t, []int{dummyDim, 8}, dummyOutputDims(dims, 8))

	// Bounds clamp the nominal dummy value.
	narrow := memory.NewDesc(element.F32, memory.LayoutPlain,
		memory.MakeDynamic([]int{1, 16}, []int{4, 16}))
	assert.Equal(t, []int{4, 16}, dummyInputDims(narrow, wei, false))

	wide := memory.NewDesc(element.F32, memory.LayoutPlain,
		memory.MakeDynamic([]int{100, 16}, []int{memory.DynamicDim, 16}))
	assert.Equal(t, []int{100, 16}, dummyInputDims(wide, wei, false))
}

func TestPackedExecutor(t *testing.T) {
	ctx := executors.NewContext()
	descs := executors.MemoryDescArgs{
		Src: []*memory.Desc{plainDesc(element.F32, 2, 3), plainDesc(element.F32, 2, 3), plainDesc(element.F32, 2)},
		Dst: []*memory.Desc{plainDesc(element.F32, 2, 2)},
	}
	mem := memory.Args{
		memory.ArgSrc:  f32Buffer(descs.Src[0], []float32{1, 2, 3, 4, 5, 6}),
		memory.ArgWei:  f32Buffer(descs.Src[1], []float32{1, 0, 1, 0, 1, 0}),
		memory.ArgBias: f32Buffer(descs.Src[2], []float32{10, 20}),
		memory.ArgDst:  memory.NewBuffer(descs.Dst[0]),
	}

	e, err := NewPackedExecutor(descs, Attrs{WithBias: true}, mem, ctx)
	require.NoError(t, err)
	assert.Equal(t, executors.ImplGemmPacked, e.ImplType())

	require.NoError(t, e.Update(descs, mem))
	require.NoError(t, e.Execute(mem))
	assert.Equal(t, []float32{14, 22, 20, 25}, memory.AsFloat32(mem[memory.ArgDst]))

	// A second executor over the same weights shares the packed copy.
	_, err = NewPackedExecutor(descs, Attrs{WithBias: true}, mem, ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.RuntimeCache().Len())
}

func TestPackedExecutorTransposesWeights(t *testing.T) {
	ctx := executors.NewContext()
	descs := executors.MemoryDescArgs{
		Src: []*memory.Desc{plainDesc(element.F32, 1, 3), plainDesc(element.F32, 3, 2)},
		Dst: []*memory.Desc{plainDesc(element.F32, 1, 2)},
	}
	mem := memory.Args{
		memory.ArgSrc: f32Buffer(descs.Src[0], []float32{1, 2, 3}),
		memory.ArgWei: f32Buffer(descs.Src[1], []float32{1, 0, 0, 1, 1, 0}),
		memory.ArgDst: memory.NewBuffer(descs.Dst[0]),
	}

	e, err := NewPackedExecutor(descs, Attrs{WeightsNonTransposed: true}, mem, ctx)
	require.NoError(t, err)
	require.NoError(t, e.Update(descs, mem))
	require.NoError(t, e.Execute(mem))
	assert.Equal(t, []float32{4, 2}, memory.AsFloat32(mem[memory.ArgDst]))
}

func TestPackedExecutorKeepsWeightDataPerOperator(t *testing.T) {
	ctx := executors.NewContext()
	descs := executors.MemoryDescArgs{
		Src: []*memory.Desc{plainDesc(element.F32, 1, 2), plainDesc(element.F32, 2, 2)},
		Dst: []*memory.Desc{plainDesc(element.F32, 1, 2)},
	}
	run := func(weights []float32) []float32 {
		mem := memory.Args{
			memory.ArgSrc: f32Buffer(descs.Src[0], []float32{1, 1}),
			memory.ArgWei: f32Buffer(descs.Src[1], weights),
			memory.ArgDst: memory.NewBuffer(descs.Dst[0]),
		}
		e, err := NewPackedExecutor(descs, Attrs{}, mem, ctx)
		require.NoError(t, err)
		require.NoError(t, e.Update(descs, mem))
		require.NoError(t, e.Execute(mem))
		return memory.AsFloat32(mem[memory.ArgDst])
	}

	// Two operators with identical descriptors but different weight
	// values each compute with their own tensor.
	assert.Equal(t, []float32{1, 1}, run([]float32{1, 0, 0, 1}))
	assert.Equal(t, []float32{2, 2}, run([]float32{2, 0, 0, 2}))
	assert.Equal(t, 2, ctx.RuntimeCache().Len())
}

func TestExecutorScaleValuesBindPerKernel(t *testing.T) {
	ctx := executors.NewContext()
	descs := executors.MemoryDescArgs{
		Src: []*memory.Desc{plainDesc(element.F32, 1, 1), plainDesc(element.F32, 1, 1)},
		Dst: []*memory.Desc{plainDesc(element.F32, 1, 1)},
	}
	run := func(scale float32) []float32 {
		mem := memory.Args{
			memory.ArgSrc: f32Buffer(descs.Src[0], []float32{1}),
			memory.ArgWei: f32Buffer(descs.Src[1], []float32{1}),
			memory.ArgDst: memory.NewBuffer(descs.Dst[0]),
		}
		e, err := NewExecutor(descs, Attrs{DequantizationScales: []float32{scale}}, ctx,
			FlavorRef, executors.ImplUndefined)
		require.NoError(t, err)
		require.NoError(t, e.Update(descs, mem))
		require.NoError(t, e.Execute(mem))
		return memory.AsFloat32(mem[memory.ArgDst])
	}

	// Keys differing only in scale values compile separate primitives.
	assert.Equal(t, []float32{3}, run(3))
	assert.Equal(t, []float32{5}, run(5))
	assert.Equal(t, 2, ctx.RuntimeCache().Len())
}

func TestPackedExecutorRejectsMismatchedSource(t *testing.T) {
	ctx := executors.NewContext()
	descs := executors.MemoryDescArgs{
		Src: []*memory.Desc{plainDesc(element.F32, 2, 3), plainDesc(element.F32, 2, 3)},
		Dst: []*memory.Desc{plainDesc(element.F32, 2, 2)},
	}
	mem := memory.Args{
		memory.ArgWei: f32Buffer(descs.Src[1], []float32{1, 0, 1, 0, 1, 0}),
	}

	e, err := NewPackedExecutor(descs, Attrs{}, mem, ctx)
	require.NoError(t, err)

	bad := executors.MemoryDescArgs{
		Src: []*memory.Desc{plainDesc(element.F32, 2, 5)},
		Dst: descs.Dst,
	}
	assert.Error(t, e.Update(bad, nil))
}
