package executors

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/wutthichai46/openvino/internal/hashutil"
)

// PostOp is one fused elementwise operation appended to the main compute.
// Post-ops are ordered; fusing [relu, scale] is not the same operation as
// [scale, relu].
type PostOp interface {
	Hash(seed uint64) uint64
	Equal(other PostOp) bool
	String() string
}

// PostOps is the ordered list of fused post-operations of a Config.
type PostOps []PostOp

// Equal compares post-op lists element-wise, order included.
func (p PostOps) Equal(o PostOps) bool {
	if len(p) != len(o) {
		return false
	}
	for i, op := range p {
		if !op.Equal(o[i]) {
			return false
		}
	}
	return true
}

// Hash folds the list into seed, order included.
func (p PostOps) Hash(seed uint64) uint64 {
	seed = hashutil.Combine(seed, uint64(len(p)))
	for _, op := range p {
		seed = op.Hash(seed)
	}
	return seed
}

// String implements fmt.Stringer.
func (p PostOps) String() string {
	if len(p) == 0 {
		return "[]"
	}
	parts := make([]string, len(p))
	for i, op := range p {
		parts[i] = op.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ActivationKind enumerates the fused activation flavors.
type ActivationKind int32

const (
	ActivationReLU ActivationKind = iota
	ActivationGELU
	ActivationSigmoid
	ActivationTanh
	ActivationClip
)

var activationNames = [...]string{
	ActivationReLU:    "relu",
	ActivationGELU:    "gelu",
	ActivationSigmoid: "sigmoid",
	ActivationTanh:    "tanh",
	ActivationClip:    "clip",
}

// String implements fmt.Stringer.
func (k ActivationKind) String() string {
	if k < 0 || int(k) >= len(activationNames) {
		return "invalid"
	}
	return activationNames[k]
}

// Activation is a fused elementwise activation. Alpha and Beta parametrize
// kinds that need them (e.g. clip bounds); they are zero otherwise.
type Activation struct {
	Kind  ActivationKind
	Alpha float32
	Beta  float32
}

// Hash implements PostOp.
func (a Activation) Hash(seed uint64) uint64 {
	seed = hashutil.Combine(seed, uint64(a.Kind))
	seed = hashutil.Combine(seed, uint64(math.Float32bits(a.Alpha)))
	return hashutil.Combine(seed, uint64(math.Float32bits(a.Beta)))
}

// Equal implements PostOp.
func (a Activation) Equal(other PostOp) bool {
	o, ok := other.(Activation)
	return ok && a == o
}

// String implements PostOp.
func (a Activation) String() string {
	return fmt.Sprintf("activation(%s)", a.Kind)
}

// ScaleShift is a fused per-channel (or broadcast, when the slices hold a
// single element) multiply-add.
type ScaleShift struct {
	Scales []float32
	Shifts []float32
}

// Hash implements PostOp.
func (s ScaleShift) Hash(seed uint64) uint64 {
	seed = hashutil.Combine(seed, uint64(len(s.Scales)))
	for _, v := range s.Scales {
		seed = hashutil.Combine(seed, uint64(math.Float32bits(v)))
	}
	seed = hashutil.Combine(seed, uint64(len(s.Shifts)))
	for _, v := range s.Shifts {
		seed = hashutil.Combine(seed, uint64(math.Float32bits(v)))
	}
	return seed
}

// Equal implements PostOp.
func (s ScaleShift) Equal(other PostOp) bool {
	o, ok := other.(ScaleShift)
	return ok && slices.Equal(s.Scales, o.Scales) && slices.Equal(s.Shifts, o.Shifts)
}

// String implements PostOp.
func (s ScaleShift) String() string {
	return fmt.Sprintf("scaleshift(%d)", len(s.Scales))
}

// FakeQuantize is a fused quantization with the given number of levels and
// per-channel input/output ranges.
type FakeQuantize struct {
	Levels     int
	InputLow   []float32
	InputHigh  []float32
	OutputLow  []float32
	OutputHigh []float32
}

// Hash implements PostOp.
func (f FakeQuantize) Hash(seed uint64) uint64 {
	seed = hashutil.Combine(seed, uint64(f.Levels))
	for _, vs := range [][]float32{f.InputLow, f.InputHigh, f.OutputLow, f.OutputHigh} {
		seed = hashutil.Combine(seed, uint64(len(vs)))
		for _, v := range vs {
			seed = hashutil.Combine(seed, uint64(math.Float32bits(v)))
		}
	}
	return seed
}

// Equal implements PostOp.
func (f FakeQuantize) Equal(other PostOp) bool {
	o, ok := other.(FakeQuantize)
	return ok && f.Levels == o.Levels &&
		slices.Equal(f.InputLow, o.InputLow) &&
		slices.Equal(f.InputHigh, o.InputHigh) &&
		slices.Equal(f.OutputLow, o.OutputLow) &&
		slices.Equal(f.OutputHigh, o.OutputHigh)
}

// String implements PostOp.
func (f FakeQuantize) String() string {
	return fmt.Sprintf("fakequantize(%d)", f.Levels)
}
