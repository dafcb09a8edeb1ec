package vqgo

import (
	"time"

	"github.com/hupe1980/vqgo/internal/math32"
)

// Result holds the output of a single Quantize call: the quantized batch,
// the per-vector code assignments, and the two auxiliary loss terms.
//
// Result keeps a reference to the forward input and to the quantizer whose
// codebook produced it, so Backward can route gradients without the caller
// re-supplying either.
type Result struct {
	vq             *VectorQuantizer
	input          []float32
	quantized      []float32
	assignments    []int
	codebookLoss   float64
	commitmentLoss float64
}

// Assignments returns the code index chosen for each input vector.
func (r *Result) Assignments() []int {
	return r.assignments
}

// Quantized returns the flat quantized batch: every vector replaced by its
// assigned codebook entry. Same length and layout as the forward input.
func (r *Result) Quantized() []float32 {
	return r.quantized
}

// Output returns the straight-through tensor to feed downstream.
//
// Its value is exactly the quantized batch, but under the backward rule the
// operation behaves as the identity on the input: the gradient a downstream
// consumer produces against Output is copied verbatim onto the input by
// Backward. This stands in for the framework form input + stopgrad(quantized
// - input).
func (r *Result) Output() []float32 {
	return r.quantized
}

// CodebookLoss returns the mean squared error between the quantized output
// and the input with the input treated as constant. Its gradient pulls
// codebook entries toward the encoder outputs that selected them.
func (r *Result) CodebookLoss() float64 {
	return r.codebookLoss
}

// CommitmentLoss returns the mean squared error between the quantized output
// (treated as constant) and the input. Scaled by beta, its gradient keeps
// the encoder from drifting between codes.
func (r *Result) CommitmentLoss() float64 {
	return r.commitmentLoss
}

// Loss returns the total auxiliary loss: CodebookLoss + beta*CommitmentLoss.
// Add it to the main reconstruction loss during training.
func (r *Result) Loss() float64 {
	return r.codebookLoss + float64(r.vq.beta)*r.commitmentLoss
}

// Backward computes the gradient of the total auxiliary loss plus the
// downstream loss with respect to the forward input, and accumulates the
// codebook-loss gradient into the codebook's gradient buffer.
//
// upstream is the downstream gradient with respect to Output, with the same
// length as the forward input; it passes through to the returned input
// gradient unmodified (straight-through rule, the discrete selection itself
// contributes zero gradient). Pass nil to backpropagate the auxiliary losses
// alone.
//
// Repeated calls accumulate into the codebook gradient buffer; clear it with
// Codebook.ZeroGrad between optimizer steps.
func (r *Result) Backward(upstream []float32) ([]float32, error) {
	start := time.Now()

	gradIn, err := r.backward(upstream)

	r.vq.metrics.RecordBackward(len(r.assignments), time.Since(start), err)

	return gradIn, err
}

func (r *Result) backward(upstream []float32) ([]float32, error) {
	if upstream != nil && len(upstream) != len(r.input) {
		return nil, &ErrDimensionMismatch{Expected: len(r.input), Actual: len(upstream)}
	}

	gradIn := make([]float32, len(r.input))

	n := len(r.assignments)
	if n == 0 {
		return gradIn, nil
	}

	dim := r.vq.dim
	grad := r.vq.codebook.Grad()

	// d(mse)/d(element) = 2/(n*dim) * residual.
	scale := 2 / float32(n*dim)

	// Residuals first; the buffer then becomes the encoder gradient.
	copy(gradIn, r.input)
	math32.AxpyInPlace(gradIn, -1, r.quantized)

	// Codebook side: the scatter form of onehot^T * residual, entry k
	// collecting the residuals of every vector assigned to it.
	for i, k := range r.assignments {
		math32.AxpyInPlace(grad[k*dim:(k+1)*dim], -scale, gradIn[i*dim:(i+1)*dim])
	}

	// Encoder side: commitment pull plus the straight-through pass of the
	// downstream gradient.
	math32.ScaleInPlace(gradIn, r.vq.beta*scale)
	if upstream != nil {
		math32.AxpyInPlace(gradIn, 1, upstream)
	}

	return gradIn, nil
}
