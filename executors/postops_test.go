package executors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostOpsOrderSensitiveEquality(t *testing.T) {
	relu := Activation{Kind: ActivationReLU}
	scale := ScaleShift{Scales: []float32{2}, Shifts: []float32{0}}

	a := PostOps{relu, scale}
	b := PostOps{relu, scale}
	c := PostOps{scale, relu}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(PostOps{relu}))
	assert.Equal(t, a.Hash(0), b.Hash(0))
	assert.NotEqual(t, a.Hash(0), c.Hash(0))
}

func TestActivationEquality(t *testing.T) {
	a := Activation{Kind: ActivationClip, Alpha: 0, Beta: 6}
	b := Activation{Kind: ActivationClip, Alpha: 0, Beta: 6}
	c := Activation{Kind: ActivationClip, Alpha: 0, Beta: 1}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(ScaleShift{}))
}

func TestFakeQuantizeEquality(t *testing.T) {
	a := FakeQuantize{Levels: 256, InputLow: []float32{0}, InputHigh: []float32{1},
		OutputLow: []float32{0}, OutputHigh: []float32{255}}
	b := FakeQuantize{Levels: 256, InputLow: []float32{0}, InputHigh: []float32{1},
		OutputLow: []float32{0}, OutputHigh: []float32{255}}
	c := FakeQuantize{Levels: 16, InputLow: []float32{0}, InputHigh: []float32{1},
		OutputLow: []float32{0}, OutputHigh: []float32{255}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Hash(1), c.Hash(1))
}
