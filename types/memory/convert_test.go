package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wutthichai46/openvino/types/element"
)

func f32Buffer(values []float32, dims ...int) *Buffer {
	buf := NewBuffer(NewDesc(element.F32, LayoutPlain, Make(dims...)))
	copy(AsFloat32(buf), values)
	return buf
}

func TestConvertSameType(t *testing.T) {
	src := f32Buffer([]float32{1, 2, 3, 4}, 2, 2)
	dst := NewBuffer(NewDesc(element.F32, LayoutPlain, Make(4)))

	require.NoError(t, Convert(dst, src))
	assert.Equal(t, []float32{1, 2, 3, 4}, AsFloat32(dst))
}

func TestConvertF16RoundTrip(t *testing.T) {
	values := []float32{0, 1, -1, 0.5, 2048}
	src := f32Buffer(values, 5)
	half := NewBuffer(NewDesc(element.F16, LayoutPlain, Make(5)))
	back := NewBuffer(NewDesc(element.F32, LayoutPlain, Make(5)))

	require.NoError(t, Convert(half, src))
	require.NoError(t, Convert(back, half))
	// All chosen values are exactly representable in f16.
	assert.Equal(t, values, AsFloat32(back))
}

func TestConvertBF16RoundTrip(t *testing.T) {
	values := []float32{0, 1, -2, 0.25, 128}
	src := f32Buffer(values, 5)
	bf := NewBuffer(NewDesc(element.BF16, LayoutPlain, Make(5)))
	back := NewBuffer(NewDesc(element.F32, LayoutPlain, Make(5)))

	require.NoError(t, Convert(bf, src))
	require.NoError(t, Convert(back, bf))
	assert.Equal(t, values, AsFloat32(back))
}

func TestConvertI8Clamps(t *testing.T) {
	src := f32Buffer([]float32{-300, -1, 0, 5, 300}, 5)
	dst := NewBuffer(NewDesc(element.I8, LayoutPlain, Make(5)))

	require.NoError(t, Convert(dst, src))
	assert.Equal(t, []int8{-128, -1, 0, 5, 127}, AsInt8(dst))
}

func TestConvertU8Clamps(t *testing.T) {
	src := f32Buffer([]float32{-5, 0, 17, 300}, 4)
	dst := NewBuffer(NewDesc(element.U8, LayoutPlain, Make(4)))

	require.NoError(t, Convert(dst, src))
	assert.Equal(t, []byte{0, 0, 17, 255}, dst.Bytes())
}

func TestConvertRejectsLayoutMismatch(t *testing.T) {
	src := f32Buffer([]float32{1, 2}, 2)
	dst := NewBuffer(NewDesc(element.F32, LayoutChannelsLast, Make(2)))

	assert.Error(t, Convert(dst, src))
}

func TestConvertRejectsSizeMismatch(t *testing.T) {
	src := f32Buffer([]float32{1, 2}, 2)
	dst := NewBuffer(NewDesc(element.F32, LayoutPlain, Make(3)))

	assert.Error(t, Convert(dst, src))
}
