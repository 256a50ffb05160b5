package gemm

import (
	"math"

	"github.com/pkg/errors"

	"github.com/wutthichai46/openvino/executors"
)

// validatePostOps rejects per-channel parameter slices that do not cover
// the n output channels. A slice of length 1 broadcasts; ScaleShift shifts
// may also be empty, meaning no shift.
func validatePostOps(ops executors.PostOps, n int) error {
	channelLen := func(s []float32) bool {
		return len(s) == 1 || len(s) == n
	}
	for _, op := range ops {
		switch op := op.(type) {
		case executors.ScaleShift:
			if !channelLen(op.Scales) {
				return errors.Errorf("gemm: scale-shift with %d scales for %d output channels", len(op.Scales), n)
			}
			if len(op.Shifts) != 0 && !channelLen(op.Shifts) {
				return errors.Errorf("gemm: scale-shift with %d shifts for %d output channels", len(op.Shifts), n)
			}
		case executors.FakeQuantize:
			if op.Levels < 2 {
				return errors.Errorf("gemm: fake-quantize with %d levels", op.Levels)
			}
			for _, s := range [][]float32{op.InputLow, op.InputHigh, op.OutputLow, op.OutputHigh} {
				if !channelLen(s) {
					return errors.Errorf("gemm: fake-quantize bound with %d values for %d output channels", len(s), n)
				}
			}
		}
	}
	return nil
}

// applyEpilogue applies bias, dequantization scales and the post-op chain
// to the raw accumulator, in that order, matching how fused kernels
// compose their epilogues.
func applyEpilogue(out []float32, m, n int, bias, scales []float32, postOps executors.PostOps) {
	if bias != nil {
		for i := 0; i < m; i++ {
			row := out[i*n : (i+1)*n]
			for j := range row {
				row[j] += bias[j]
			}
		}
	}
	if len(scales) > 0 {
		perChannel := len(scales) == n
		for i := 0; i < m; i++ {
			row := out[i*n : (i+1)*n]
			for j := range row {
				if perChannel {
					row[j] *= scales[j]
				} else {
					row[j] *= scales[0]
				}
			}
		}
	}
	for _, op := range postOps {
		applyPostOp(out, n, op)
	}
}

func applyPostOp(out []float32, n int, op executors.PostOp) {
	switch op := op.(type) {
	case executors.Activation:
		for i, v := range out {
			out[i] = activate(op, v)
		}
	case executors.ScaleShift:
		for i, v := range out {
			j := i % n
			out[i] = v*channelParam(op.Scales, j, 1) + channelParam(op.Shifts, j, 0)
		}
	case executors.FakeQuantize:
		for i, v := range out {
			out[i] = fakeQuantize(op, v, i%n)
		}
	}
}

func activate(op executors.Activation, v float32) float32 {
	switch op.Kind {
	case executors.ActivationReLU:
		if v < 0 {
			return v * op.Alpha
		}
		return v
	case executors.ActivationGELU:
		x := float64(v)
		return float32(0.5 * x * (1 + math.Erf(x/math.Sqrt2)))
	case executors.ActivationSigmoid:
		return float32(1 / (1 + math.Exp(-float64(v))))
	case executors.ActivationTanh:
		return float32(math.Tanh(float64(v)))
	case executors.ActivationClip:
		if v < op.Alpha {
			return op.Alpha
		}
		if v > op.Beta {
			return op.Beta
		}
		return v
	}
	return v
}

// channelParam broadcasts a post-op parameter slice: absent falls back to
// the neutral value, a single element broadcasts, anything longer selects
// per channel.
func channelParam(s []float32, channel int, neutral float32) float32 {
	switch len(s) {
	case 0:
		return neutral
	case 1:
		return s[0]
	default:
		return s[channel]
	}
}

func fakeQuantize(op executors.FakeQuantize, v float32, channel int) float32 {
	inLow, inHigh := channelParam(op.InputLow, channel, 0), channelParam(op.InputHigh, channel, 0)
	outLow, outHigh := channelParam(op.OutputLow, channel, 0), channelParam(op.OutputHigh, channel, 0)
	if v <= inLow {
		return outLow
	}
	if v > inHigh {
		return outHigh
	}
	levels := float32(op.Levels - 1)
	q := float32(math.Round(float64((v - inLow) / (inHigh - inLow) * levels)))
	return q/levels*(outHigh-outLow) + outLow
}
