package vqgo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageTracker(t *testing.T) {
	u := NewUsageTracker(4)

	u.Observe([]int{0, 0, 2})
	u.Observe([]int{2, 0})

	assert.Equal(t, 2, u.ActiveCodes())
	assert.Equal(t, []int{1, 3}, u.DeadCodes())
	assert.Equal(t, uint64(3), u.Count(0))
	assert.Equal(t, uint64(2), u.Count(2))
	assert.Equal(t, uint64(5), u.Total())
	assert.True(t, u.Contains(0))
	assert.False(t, u.Contains(1))
}

func TestUsageTracker_PerplexityUniform(t *testing.T) {
	u := NewUsageTracker(4)
	u.Observe([]int{0, 1, 2, 3})

	// Perfectly uniform usage: perplexity equals the codebook size.
	assert.InDelta(t, 4, u.Perplexity(), 1e-9)
}

func TestUsageTracker_PerplexityCollapsed(t *testing.T) {
	u := NewUsageTracker(8)
	u.Observe([]int{3, 3, 3, 3})

	assert.InDelta(t, 1, u.Perplexity(), 1e-9)
}

func TestUsageTracker_PerplexityEmpty(t *testing.T) {
	u := NewUsageTracker(8)
	assert.Zero(t, u.Perplexity())
}

func TestUsageTracker_Reset(t *testing.T) {
	u := NewUsageTracker(2)
	u.Observe([]int{0, 1})
	u.Reset()

	assert.Zero(t, u.Total())
	assert.Zero(t, u.ActiveCodes())
	assert.Equal(t, []int{0, 1}, u.DeadCodes())
}

func TestUsageTracker_EntropyMatchesDefinition(t *testing.T) {
	u := NewUsageTracker(4)
	u.Observe([]int{0, 0, 0, 1}) // p = [0.75, 0.25]

	want := math.Exp(-(0.75*math.Log(0.75) + 0.25*math.Log(0.25)))
	assert.InDelta(t, want, u.Perplexity(), 1e-9)
}
