package vqgo

import (
	"context"
	"math/rand"
	"time"

	"github.com/hupe1980/vqgo/internal/math32"
	"golang.org/x/sync/errgroup"
)

// Below this many rows, parallel assignment costs more than it saves.
const minParallelRows = 1024

// VectorQuantizer maps continuous embedding vectors to the nearest entry in
// a learned finite codebook.
//
// Assign and Quantize are pure functions of the input and the current
// codebook state. The codebook is mutated only by an external optimizer
// consuming the gradients produced by Result.Backward, never by the
// quantizer itself.
type VectorQuantizer struct {
	dim         int
	numCodes    int
	beta        float32
	codebook    *Codebook
	parallelism int
	logger      *Logger
	metrics     MetricsCollector
}

// New creates a VectorQuantizer with numCodes codebook entries of the given
// embedding dimension. The codebook is initialized from the configured
// random source with a uniform draw (see WithInitRange, WithRandSource).
func New(dim, numCodes int, optFns ...Option) (*VectorQuantizer, error) {
	opts := options{
		beta:             defaultBeta,
		initMin:          defaultInitMin,
		initMax:          defaultInitMax,
		source:           rand.NewSource(defaultSeed),
		parallelism:      1,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.beta < 0 {
		return nil, ErrInvalidBeta
	}

	cb, err := NewCodebook(dim, numCodes)
	if err != nil {
		return nil, err
	}
	cb.InitUniform(rand.New(opts.source), opts.initMin, opts.initMax)

	return &VectorQuantizer{
		dim:         dim,
		numCodes:    numCodes,
		beta:        opts.beta,
		codebook:    cb,
		parallelism: opts.parallelism,
		logger:      opts.logger.WithDimension(dim).WithNumCodes(numCodes),
		metrics:     opts.metricsCollector,
	}, nil
}

// Dim returns the embedding dimension D.
func (q *VectorQuantizer) Dim() int {
	return q.dim
}

// NumCodes returns the codebook size K.
func (q *VectorQuantizer) NumCodes() int {
	return q.numCodes
}

// Beta returns the commitment loss coefficient.
func (q *VectorQuantizer) Beta() float32 {
	return q.beta
}

// Codebook returns the quantizer's codebook. The optimizer reads Grad and
// mutates Weights between quantization calls.
func (q *VectorQuantizer) Codebook() *Codebook {
	return q.codebook
}

// Assign maps each vector of the flat batch x (trailing dimension Dim) to
// the index of its nearest codebook entry under squared L2 distance.
//
// Ties are broken deterministically toward the lowest index. An empty batch
// yields an empty assignment slice. The input length must be a multiple of
// the embedding dimension.
func (q *VectorQuantizer) Assign(x []float32) ([]int, error) {
	start := time.Now()

	assignments, err := q.assign(x)

	q.metrics.RecordAssign(len(assignments), time.Since(start), err)
	q.logger.LogAssign(context.Background(), len(assignments), err)

	return assignments, err
}

func (q *VectorQuantizer) assign(x []float32) ([]int, error) {
	if len(x)%q.dim != 0 {
		return nil, &ErrBatchShape{Length: len(x), Dimension: q.dim}
	}

	n := len(x) / q.dim
	out := make([]int, n)
	if n == 0 {
		return out, nil
	}

	cNorms := q.codebook.RowNorms()

	if q.parallelism <= 1 || n < minParallelRows {
		q.assignRange(x, 0, n, cNorms, out)
		return out, nil
	}

	var g errgroup.Group
	g.SetLimit(q.parallelism)

	chunk := (n + q.parallelism - 1) / q.parallelism
	for s := 0; s < n; s += chunk {
		s, e := s, min(s+chunk, n)
		g.Go(func() error {
			// Disjoint row ranges, so results are identical to the
			// single-goroutine path.
			q.assignRange(x, s, e, cNorms, out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// assignRange assigns rows [start, end) using the expanded distance form
// ||v||^2 + ||c||^2 - 2*v.c: per-row norms plus one cross-product pass
// instead of recomputing every vector/entry pair from scratch.
func (q *VectorQuantizer) assignRange(x []float32, start, end int, cNorms []float32, out []int) {
	k := q.numCodes
	rows := end - start

	cross := make([]float32, rows*k)
	math32.MatMulNT(x[start*q.dim:end*q.dim], rows, q.codebook.Weights(), k, q.dim, cross)

	for i := start; i < end; i++ {
		vNorm := math32.SquaredNorm(x[i*q.dim : (i+1)*q.dim])
		row := cross[(i-start)*k : (i-start+1)*k]

		best := 0
		bestDist := vNorm + cNorms[0] - 2*row[0]
		for j := 1; j < k; j++ {
			// Strict < keeps the first (lowest-index) minimum on ties.
			if d := vNorm + cNorms[j] - 2*row[j]; d < bestDist {
				bestDist = d
				best = j
			}
		}

		out[i] = best
	}
}

// Distances returns the full n x NumCodes matrix of squared L2 distances
// between every input vector and every codebook entry, row-major.
//
// The expansion can dip a hair below zero through floating-point
// cancellation when a vector nearly coincides with an entry, so results are
// clamped at zero before being returned.
func (q *VectorQuantizer) Distances(x []float32) ([]float32, error) {
	if len(x)%q.dim != 0 {
		return nil, &ErrBatchShape{Length: len(x), Dimension: q.dim}
	}

	n := len(x) / q.dim
	k := q.numCodes

	dists := make([]float32, n*k)
	if n == 0 {
		return dists, nil
	}

	cNorms := q.codebook.RowNorms()
	math32.MatMulNT(x, n, q.codebook.Weights(), k, q.dim, dists)

	for i := 0; i < n; i++ {
		vNorm := math32.SquaredNorm(x[i*q.dim : (i+1)*q.dim])
		row := dists[i*k : (i+1)*k]
		for j := range row {
			row[j] = vNorm + cNorms[j] - 2*row[j]
		}
	}
	math32.ClampNonNegative(dists)

	return dists, nil
}

// Quantize assigns the flat batch x to codebook entries and reconstructs
// every vector as its assigned entry. The returned Result carries the
// quantized batch, the assignments, and the two auxiliary loss terms; its
// Backward method implements the straight-through gradient rule.
//
// An empty batch yields an empty result with both losses defined as 0.
func (q *VectorQuantizer) Quantize(x []float32) (*Result, error) {
	start := time.Now()

	res, err := q.quantize(x)

	if err != nil {
		q.metrics.RecordQuantize(0, 0, 0, time.Since(start), err)
		q.logger.LogQuantize(context.Background(), 0, 0, 0, err)
		return nil, err
	}

	q.metrics.RecordQuantize(len(res.assignments), res.codebookLoss, res.commitmentLoss, time.Since(start), nil)
	q.logger.LogQuantize(context.Background(), len(res.assignments), res.codebookLoss, res.commitmentLoss, nil)

	return res, nil
}

func (q *VectorQuantizer) quantize(x []float32) (*Result, error) {
	assignments, err := q.assign(x)
	if err != nil {
		return nil, err
	}

	quantized := make([]float32, len(x))
	for i, k := range assignments {
		copy(quantized[i*q.dim:(i+1)*q.dim], q.codebook.Entry(k))
	}

	// Both loss terms are the mean squared error between the quantized
	// output and the input; they share a forward value and differ only in
	// which side the gradient treats as constant.
	var sse float64
	for i := range x {
		d := float64(x[i] - quantized[i])
		sse += d * d
	}

	var mse float64
	if len(x) > 0 {
		mse = sse / float64(len(x))
	}

	return &Result{
		vq:             q,
		input:          x,
		quantized:      quantized,
		assignments:    assignments,
		codebookLoss:   mse,
		commitmentLoss: mse,
	}, nil
}

// OneHot expands assignments into a flat row-major n x numCodes matrix where
// each row is zero except for a 1 at the assigned index.
//
// Multiplying the one-hot matrix by the codebook weights reproduces exactly
// the quantized batch; Quantize performs the same computation as a direct
// gather without materializing the intermediate matrix.
func OneHot(assignments []int, numCodes int) []float32 {
	oh := make([]float32, len(assignments)*numCodes)
	for i, k := range assignments {
		oh[i*numCodes+k] = 1
	}

	return oh
}
