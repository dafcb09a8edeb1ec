package vqgo

import (
	"math/rand"
)

const (
	defaultBeta    = 0.25
	defaultInitMin = -0.05
	defaultInitMax = 0.05
	defaultSeed    = 1
)

type options struct {
	beta             float32
	initMin          float32
	initMax          float32
	source           rand.Source
	parallelism      int
	logger           *Logger
	metricsCollector MetricsCollector
}

// Option configures VectorQuantizer constructor behavior.
type Option func(*options)

// WithBeta configures the commitment loss coefficient.
//
// Beta scales the commitment term in the total auxiliary loss
// (codebook + beta*commitment). Values in [0.25, 2] work well in practice;
// the default is 0.25.
func WithBeta(beta float32) Option {
	return func(o *options) {
		o.beta = beta
	}
}

// WithInitRange configures the uniform codebook initialization range.
// Entries are drawn independently and uniformly from [min, max).
// The default range is [-0.05, 0.05).
func WithInitRange(min, max float32) Option {
	return func(o *options) {
		o.initMin = min
		o.initMax = max
	}
}

// WithRandSource configures the random source used for codebook
// initialization. Pass a seeded source for reproducible codebooks.
//
// If nil is passed, a fixed-seed source is used, so two quantizers built
// with identical parameters start from identical codebooks.
func WithRandSource(src rand.Source) Option {
	return func(o *options) {
		if src == nil {
			src = rand.NewSource(defaultSeed)
		}
		o.source = src
	}
}

// WithParallelism configures the number of worker goroutines used for
// code assignment over large batches.
//
// Assignment results are bit-identical regardless of the worker count:
// workers operate on disjoint row ranges and perform the same per-row
// computation. If n <= 1, assignment runs on the calling goroutine
// (default).
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithLogger configures the logger used for operation logging.
// If nil is passed, logging is disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector configures the metrics collector notified after each
// operation. If nil is passed, metrics collection is disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}
