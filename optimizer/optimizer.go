// Package optimizer provides apply-gradient update rules for codebook
// training.
//
// The quantizer in the vqgo package is a pure transform: backward passes
// accumulate gradients into the codebook's buffer, and an Optimizer consumes
// that buffer to move the weights. Keeping the update rule outside the
// quantizer mirrors how a training loop composes the pieces:
//
//	res, _ := vq.Quantize(batch)
//	encGrad, _ := res.Backward(decoderGrad)
//	opt.Step(vq.Codebook().Weights(), vq.Codebook().Grad())
//	vq.Codebook().ZeroGrad()
package optimizer

import (
	"math"
)

// Optimizer applies one gradient-descent update to a flat parameter slice.
type Optimizer interface {
	// Step updates weights in place using grad. Both slices must have the
	// same length, stable across calls for stateful optimizers.
	Step(weights, grad []float32)
}

// SGD implements plain stochastic gradient descent with optional L2 weight
// decay: w -= lr * (g + weightDecay*w).
type SGD struct {
	// LR is the learning rate.
	LR float32

	// WeightDecay adds weightDecay*w to the gradient (L2 regularization).
	// Zero disables it.
	WeightDecay float32
}

// NewSGD creates an SGD optimizer with the given learning rate and no
// weight decay.
func NewSGD(lr float32) *SGD {
	return &SGD{LR: lr}
}

// Step implements Optimizer.
func (o *SGD) Step(weights, grad []float32) {
	for i := range weights {
		g := grad[i] + o.WeightDecay*weights[i]
		weights[i] -= o.LR * g
	}
}

// Adam implements the Adam update rule: moving averages of the gradient and
// its square, bias-corrected, with a per-element adaptive step size.
//
// Moment buffers are allocated lazily on the first Step and sized to the
// parameter slice; an Adam value must not be shared across parameters of
// different lengths.
type Adam struct {
	// LR is the learning rate.
	LR float32

	// Beta1 and Beta2 are the exponential decay rates for the first and
	// second moment estimates.
	Beta1 float32
	Beta2 float32

	// Epsilon avoids division by zero in the adaptive denominator.
	Epsilon float32

	m []float32
	v []float32
	t int
}

// NewAdam creates an Adam optimizer with the conventional defaults
// (beta1=0.9, beta2=0.999, epsilon=1e-8).
func NewAdam(lr float32) *Adam {
	return &Adam{
		LR:      lr,
		Beta1:   0.9,
		Beta2:   0.999,
		Epsilon: 1e-8,
	}
}

// Step implements Optimizer.
func (o *Adam) Step(weights, grad []float32) {
	if o.m == nil {
		o.m = make([]float32, len(weights))
		o.v = make([]float32, len(weights))
	}

	o.t++
	bias1 := 1 - float32(math.Pow(float64(o.Beta1), float64(o.t)))
	bias2 := 1 - float32(math.Pow(float64(o.Beta2), float64(o.t)))

	for i := range weights {
		g := grad[i]

		o.m[i] = o.Beta1*o.m[i] + (1-o.Beta1)*g
		o.v[i] = o.Beta2*o.v[i] + (1-o.Beta2)*g*g

		mHat := o.m[i] / bias1
		vHat := o.v[i] / bias2

		weights[i] -= o.LR * mHat / (float32(math.Sqrt(float64(vHat))) + o.Epsilon)
	}
}

// Reset clears the moment buffers and the step counter.
func (o *Adam) Reset() {
	o.m = nil
	o.v = nil
	o.t = 0
}
