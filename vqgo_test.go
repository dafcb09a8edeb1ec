package vqgo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestQuantizer builds a quantizer and overwrites its codebook entries
// with explicit values (row-major, numCodes x dim).
func newTestQuantizer(t *testing.T, dim int, weights []float32, optFns ...Option) *VectorQuantizer {
	t.Helper()

	vq, err := New(dim, len(weights)/dim, optFns...)
	require.NoError(t, err)
	copy(vq.Codebook().Weights(), weights)

	return vq
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		dim      int
		numCodes int
		optFns   []Option
	}{
		{"ZeroDim", 0, 4, nil},
		{"NegativeDim", -3, 4, nil},
		{"ZeroCodes", 4, 0, nil},
		{"NegativeBeta", 4, 4, []Option{WithBeta(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.dim, tt.numCodes, tt.optFns...)
			assert.Error(t, err)
		})
	}
}

func TestNew_NilRandSource(t *testing.T) {
	// A nil source falls back to the fixed-seed default, so the codebook
	// matches one built without the option.
	vq, err := New(2, 4, WithRandSource(nil))
	require.NoError(t, err)

	def, err := New(2, 4)
	require.NoError(t, err)

	assert.Equal(t, def.Codebook().Weights(), vq.Codebook().Weights())
}

func TestAssign_EndToEnd(t *testing.T) {
	// Codebook: two 1-dim entries at 0 and 10. Input 5 is equidistant and
	// must break toward the lower index.
	vq := newTestQuantizer(t, 1, []float32{0, 10})

	got, err := vq.Assign([]float32{1, 9, 5})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0}, got)
}

func TestAssign_IndicesInRange(t *testing.T) {
	const (
		dim      = 8
		numCodes = 16
		n        = 200
	)

	vq, err := New(dim, numCodes, WithRandSource(rand.NewSource(5)))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(11))
	x := make([]float32, n*dim)
	for i := range x {
		x[i] = rng.Float32()*2 - 1
	}

	assignments, err := vq.Assign(x)
	require.NoError(t, err)
	require.Len(t, assignments, n)

	for i, k := range assignments {
		if k < 0 || k >= numCodes {
			t.Errorf("assignment %d = %d outside [0, %d)", i, k, numCodes)
		}
	}
}

func TestAssign_Idempotent(t *testing.T) {
	vq, err := New(4, 8, WithRandSource(rand.NewSource(2)))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	x := make([]float32, 50*4)
	for i := range x {
		x[i] = rng.Float32()
	}

	first, err := vq.Assign(x)
	require.NoError(t, err)
	second, err := vq.Assign(x)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssign_EmptyBatch(t *testing.T) {
	vq, err := New(4, 8)
	require.NoError(t, err)

	assignments, err := vq.Assign(nil)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestAssign_BatchShapeError(t *testing.T) {
	vq, err := New(4, 8)
	require.NoError(t, err)

	_, err = vq.Assign(make([]float32, 7))
	var shapeErr *ErrBatchShape
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 7, shapeErr.Length)
	assert.Equal(t, 4, shapeErr.Dimension)
}

func TestAssign_ParallelMatchesSerial(t *testing.T) {
	const (
		dim      = 4
		numCodes = 32
		n        = 5000 // above the parallel threshold
	)

	rng := rand.New(rand.NewSource(13))
	x := make([]float32, n*dim)
	for i := range x {
		x[i] = rng.Float32()*4 - 2
	}

	weights := make([]float32, numCodes*dim)
	for i := range weights {
		weights[i] = rng.Float32()*4 - 2
	}

	serial := newTestQuantizer(t, dim, weights)
	parallel := newTestQuantizer(t, dim, weights, WithParallelism(4))

	want, err := serial.Assign(x)
	require.NoError(t, err)
	got, err := parallel.Assign(x)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestDistances(t *testing.T) {
	vq := newTestQuantizer(t, 2, []float32{
		0, 0,
		3, 4,
	})

	dists, err := vq.Distances([]float32{0, 0, 3, 4})
	require.NoError(t, err)
	require.Len(t, dists, 4)

	assert.InDelta(t, 0, dists[0], 1e-5)
	assert.InDelta(t, 25, dists[1], 1e-4)
	assert.InDelta(t, 25, dists[2], 1e-4)
	assert.InDelta(t, 0, dists[3], 1e-5)

	for i, d := range dists {
		if d < 0 {
			t.Errorf("distance %d = %f is negative", i, d)
		}
	}
}

func TestQuantize_OutputIsCodebookRow(t *testing.T) {
	vq, err := New(4, 8, WithRandSource(rand.NewSource(21)))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(22))
	x := make([]float32, 30*4)
	for i := range x {
		x[i] = rng.Float32()
	}

	res, err := vq.Quantize(x)
	require.NoError(t, err)

	for i, k := range res.Assignments() {
		row := res.Quantized()[i*4 : (i+1)*4]
		assert.Equal(t, vq.Codebook().Entry(k), row, "vector %d", i)
	}
}

func TestQuantize_EndToEnd(t *testing.T) {
	vq := newTestQuantizer(t, 1, []float32{0, 10})

	res, err := vq.Quantize([]float32{1, 9, 5})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 0}, res.Assignments())
	assert.Equal(t, []float32{0, 10, 0}, res.Quantized())
	assert.Equal(t, res.Quantized(), res.Output())

	// mse over [1, -1, 5] residuals = (1 + 1 + 25) / 3
	assert.InDelta(t, 9.0, res.CodebookLoss(), 1e-6)
	assert.InDelta(t, 9.0, res.CommitmentLoss(), 1e-6)
	assert.InDelta(t, 9.0+0.25*9.0, res.Loss(), 1e-6)
}

func TestQuantize_LossesNonNegative(t *testing.T) {
	vq, err := New(2, 4, WithRandSource(rand.NewSource(31)))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(32))
	x := make([]float32, 40)
	for i := range x {
		x[i] = rng.Float32()*10 - 5
	}

	res, err := vq.Quantize(x)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.CodebookLoss(), 0.0)
	assert.GreaterOrEqual(t, res.CommitmentLoss(), 0.0)
}

func TestQuantize_EmptyBatch(t *testing.T) {
	vq, err := New(4, 8)
	require.NoError(t, err)

	res, err := vq.Quantize([]float32{})
	require.NoError(t, err)

	assert.Empty(t, res.Assignments())
	assert.Empty(t, res.Quantized())
	assert.Zero(t, res.CodebookLoss())
	assert.Zero(t, res.CommitmentLoss())
	assert.Zero(t, res.Loss())
}

func TestOneHot_MatchesGather(t *testing.T) {
	const (
		dim      = 3
		numCodes = 5
	)

	vq, err := New(dim, numCodes, WithRandSource(rand.NewSource(41)))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	x := make([]float32, 20*dim)
	for i := range x {
		x[i] = rng.Float32()
	}

	res, err := vq.Quantize(x)
	require.NoError(t, err)

	// onehot (n x k) times codebook (k x dim) must reproduce the gather.
	oh := OneHot(res.Assignments(), numCodes)
	weights := vq.Codebook().Weights()

	n := len(res.Assignments())
	for i := 0; i < n; i++ {
		for d := 0; d < dim; d++ {
			var v float32
			for k := 0; k < numCodes; k++ {
				v += oh[i*numCodes+k] * weights[k*dim+d]
			}
			assert.Equal(t, res.Quantized()[i*dim+d], v)
		}
	}
}

func TestQuantize_Metrics(t *testing.T) {
	mc := &BasicMetricsCollector{}

	vq, err := New(1, 2, WithMetricsCollector(mc))
	require.NoError(t, err)

	_, err = vq.Quantize([]float32{1, 2, 3})
	require.NoError(t, err)
	_, err = vq.Quantize(make([]float32, 2))
	require.NoError(t, err)

	assert.Equal(t, int64(2), mc.QuantizeCount.Load())
	assert.Equal(t, int64(5), mc.QuantizeVectors.Load())
	assert.Equal(t, int64(0), mc.QuantizeErrors.Load())
}
