package vqgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordAssign is called after each code-assignment operation.
	// n is the number of vectors assigned, duration is the time taken,
	// err is nil if successful.
	RecordAssign(n int, duration time.Duration, err error)

	// RecordQuantize is called after each quantize operation.
	// Both auxiliary loss terms are reported so training dashboards can
	// track them individually.
	RecordQuantize(n int, codebookLoss, commitmentLoss float64, duration time.Duration, err error)

	// RecordBackward is called after each backward pass.
	RecordBackward(n int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAssign(int, time.Duration, error)                     {}
func (NoopMetricsCollector) RecordQuantize(int, float64, float64, time.Duration, error) {}
func (NoopMetricsCollector) RecordBackward(int, time.Duration, error)                   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AssignCount        atomic.Int64
	AssignErrors       atomic.Int64
	AssignVectors      atomic.Int64
	AssignTotalNanos   atomic.Int64
	QuantizeCount      atomic.Int64
	QuantizeErrors     atomic.Int64
	QuantizeVectors    atomic.Int64
	QuantizeTotalNanos atomic.Int64
	BackwardCount      atomic.Int64
	BackwardErrors     atomic.Int64
	BackwardTotalNanos atomic.Int64
}

// RecordAssign implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAssign(n int, duration time.Duration, err error) {
	b.AssignCount.Add(1)
	b.AssignVectors.Add(int64(n))
	b.AssignTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AssignErrors.Add(1)
	}
}

// RecordQuantize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuantize(n int, _, _ float64, duration time.Duration, err error) {
	b.QuantizeCount.Add(1)
	b.QuantizeVectors.Add(int64(n))
	b.QuantizeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QuantizeErrors.Add(1)
	}
}

// RecordBackward implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBackward(_ int, duration time.Duration, err error) {
	b.BackwardCount.Add(1)
	b.BackwardTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BackwardErrors.Add(1)
	}
}
