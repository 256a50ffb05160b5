package memory

import (
	"math"

	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/wutthichai46/openvino/types/element"
)

// Convert copies src into dst converting element precision. It is the data
// plumbing behind the fallback decomposition: layouts must agree (only
// re-precision is supported here), shapes must hold the same element count.
func Convert(dst, src Memory) error {
	srcDesc, dstDesc := src.Desc(), dst.Desc()
	if srcDesc.Layout() != dstDesc.Layout() {
		return errors.Errorf("convert: layout mismatch %s vs %s", srcDesc, dstDesc)
	}
	if srcDesc.Shape().Size() != dstDesc.Shape().Size() {
		return errors.Errorf("convert: element count mismatch %s vs %s", srcDesc, dstDesc)
	}
	if srcDesc.Type() == dstDesc.Type() {
		copy(dst.Bytes(), src.Bytes())
		return nil
	}

	values, err := toFloat32(src)
	if err != nil {
		return err
	}
	return fromFloat32(dst, values)
}

func toFloat32(m Memory) ([]float32, error) {
	switch m.Desc().Type() {
	case element.F32:
		return AsFloat32(m), nil
	case element.F16:
		raw := AsUint16(m)
		out := make([]float32, len(raw))
		for i, bits := range raw {
			out[i] = float16.Frombits(bits).Float32()
		}
		return out, nil
	case element.BF16:
		raw := AsUint16(m)
		out := make([]float32, len(raw))
		for i, bits := range raw {
			out[i] = math.Float32frombits(uint32(bits) << 16)
		}
		return out, nil
	case element.I8:
		raw := AsInt8(m)
		out := make([]float32, len(raw))
		for i, v := range raw {
			out[i] = float32(v)
		}
		return out, nil
	case element.U8:
		raw := m.Bytes()
		out := make([]float32, len(raw))
		for i, v := range raw {
			out[i] = float32(v)
		}
		return out, nil
	}
	return nil, errors.Errorf("convert: unsupported source type %s", m.Desc().Type())
}

func fromFloat32(m Memory, values []float32) error {
	switch m.Desc().Type() {
	case element.F32:
		copy(AsFloat32(m), values)
	case element.F16:
		raw := AsUint16(m)
		for i, v := range values {
			raw[i] = float16.Fromfloat32(v).Bits()
		}
	case element.BF16:
		raw := AsUint16(m)
		for i, v := range values {
			raw[i] = bf16FromFloat32(v)
		}
	case element.I8:
		raw := AsInt8(m)
		for i, v := range values {
			raw[i] = int8(clamp(v, math.MinInt8, math.MaxInt8))
		}
	case element.U8:
		raw := m.Bytes()
		for i, v := range values {
			raw[i] = byte(clamp(v, 0, math.MaxUint8))
		}
	default:
		return errors.Errorf("convert: unsupported destination type %s", m.Desc().Type())
	}
	return nil
}

// bf16FromFloat32 rounds to nearest-even, matching hardware truncation
// behavior for bfloat16.
func bf16FromFloat32(v float32) uint16 {
	bits := math.Float32bits(v)
	rounding := uint32(0x7FFF) + (bits>>16)&1
	return uint16((bits + rounding) >> 16)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
