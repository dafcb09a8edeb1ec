package optimizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSGD_Step(t *testing.T) {
	opt := NewSGD(0.1)

	weights := []float32{1, -2}
	grad := []float32{10, -10}
	opt.Step(weights, grad)

	assert.InDelta(t, 0, weights[0], 1e-6)
	assert.InDelta(t, -1, weights[1], 1e-6)
}

func TestSGD_WeightDecay(t *testing.T) {
	opt := NewSGD(0.1)
	opt.WeightDecay = 0.5

	weights := []float32{2}
	opt.Step(weights, []float32{0})

	// w -= lr * weightDecay * w = 2 - 0.1*0.5*2
	assert.InDelta(t, 1.9, weights[0], 1e-6)
}

func TestAdam_FirstStepIsSignedLR(t *testing.T) {
	opt := NewAdam(0.01)

	weights := []float32{0, 0}
	grad := []float32{3, -7}
	opt.Step(weights, grad)

	// After bias correction the first Adam step is ~lr in the direction
	// opposite the gradient, regardless of gradient magnitude.
	assert.InDelta(t, -0.01, weights[0], 1e-4)
	assert.InDelta(t, 0.01, weights[1], 1e-4)
}

func TestAdam_ConvergesOnQuadratic(t *testing.T) {
	// Minimize f(w) = (w-3)^2 with grad 2(w-3).
	opt := NewAdam(0.1)
	weights := []float32{0}

	for i := 0; i < 500; i++ {
		grad := []float32{2 * (weights[0] - 3)}
		opt.Step(weights, grad)
	}

	assert.InDelta(t, 3, weights[0], 0.1)
}

func TestAdam_Reset(t *testing.T) {
	opt := NewAdam(0.1)

	weights := []float32{1}
	opt.Step(weights, []float32{1})
	opt.Reset()

	assert.Zero(t, opt.t)
	assert.Nil(t, opt.m)
	assert.Nil(t, opt.v)
}

func TestAdam_ZeroGradientKeepsWeights(t *testing.T) {
	opt := NewAdam(0.1)

	weights := []float32{1.5}
	opt.Step(weights, []float32{0})

	if math.Abs(float64(weights[0])-1.5) > 1e-6 {
		t.Errorf("weights moved on zero gradient: %f", weights[0])
	}
}
