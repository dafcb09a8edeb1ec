package vqgo

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// UsageTracker accumulates per-code assignment statistics across batches.
//
// VQ training commonly collapses onto a subset of the codebook; tracking
// which entries actually receive assignments (and the perplexity of the
// assignment distribution) is the standard way to catch dead codes early.
//
// The tracker is not safe for concurrent use; it follows the same
// single-writer, call-and-return pattern as the quantizer itself.
type UsageTracker struct {
	numCodes int
	seen     *roaring.Bitmap
	counts   []uint64
	total    uint64
}

// NewUsageTracker creates a tracker for a codebook with numCodes entries.
func NewUsageTracker(numCodes int) *UsageTracker {
	return &UsageTracker{
		numCodes: numCodes,
		seen:     roaring.New(),
		counts:   make([]uint64, numCodes),
	}
}

// Observe records a batch of code assignments, typically the Assignments
// slice of a quantize Result.
func (u *UsageTracker) Observe(assignments []int) {
	for _, k := range assignments {
		u.seen.Add(uint32(k))
		u.counts[k]++
	}
	u.total += uint64(len(assignments))
}

// ActiveCodes returns the number of distinct codes observed so far.
func (u *UsageTracker) ActiveCodes() int {
	return int(u.seen.GetCardinality())
}

// Contains reports whether code k has been observed.
func (u *UsageTracker) Contains(k int) bool {
	return u.seen.Contains(uint32(k))
}

// DeadCodes returns the indices of codebook entries that have never been
// assigned. These are candidates for re-seeding during training.
func (u *UsageTracker) DeadCodes() []int {
	dead := make([]int, 0, u.numCodes-u.ActiveCodes())
	for k := 0; k < u.numCodes; k++ {
		if !u.seen.Contains(uint32(k)) {
			dead = append(dead, k)
		}
	}

	return dead
}

// Count returns the number of times code k has been assigned.
func (u *UsageTracker) Count(k int) uint64 {
	return u.counts[k]
}

// Total returns the total number of assignments observed.
func (u *UsageTracker) Total() uint64 {
	return u.total
}

// Perplexity returns the exponential of the entropy of the observed
// assignment distribution. It ranges from 1 (all assignments on one code)
// to the codebook size (perfectly uniform usage); 0 is returned before any
// observation.
func (u *UsageTracker) Perplexity() float64 {
	if u.total == 0 {
		return 0
	}

	var entropy float64
	for _, c := range u.counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(u.total)
		entropy -= p * math.Log(p)
	}

	return math.Exp(entropy)
}

// Reset clears all observations, e.g. at an epoch boundary.
func (u *UsageTracker) Reset() {
	u.seen.Clear()
	for i := range u.counts {
		u.counts[i] = 0
	}
	u.total = 0
}
