package vqgo

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand"

	"github.com/hupe1980/vqgo/internal/kmeans"
	"github.com/hupe1980/vqgo/internal/math32"
)

// ErrCodebookCorrupt is returned when UnmarshalBinary is given bytes that do
// not describe a codebook.
var ErrCodebookCorrupt = errors.New("corrupt codebook encoding")

// Codebook is an ordered collection of learned embedding vectors used as
// discrete quantization targets.
//
// Entries are stored row-major: entry k occupies weights[k*dim:(k+1)*dim].
// A same-shape gradient buffer accumulates the codebook-loss gradient during
// backward passes; an external optimizer consumes it between calls. The
// Codebook itself never updates its own weights.
type Codebook struct {
	dim      int
	numCodes int
	weights  []float32
	grad     []float32
}

// NewCodebook creates a zero-initialized codebook with numCodes entries of
// the given dimension. Use InitUniform or InitKMeans to seed the entries.
func NewCodebook(dim, numCodes int) (*Codebook, error) {
	if dim <= 0 {
		return nil, &ErrInvalidDimension{Dimension: dim}
	}
	if numCodes <= 0 {
		return nil, ErrInvalidNumCodes
	}

	return &Codebook{
		dim:      dim,
		numCodes: numCodes,
		weights:  make([]float32, numCodes*dim),
		grad:     make([]float32, numCodes*dim),
	}, nil
}

// InitUniform draws every weight independently and uniformly from [min, max).
func (cb *Codebook) InitUniform(rng *rand.Rand, min, max float32) {
	span := max - min
	for i := range cb.weights {
		cb.weights[i] = min + rng.Float32()*span
	}
}

// InitKMeans seeds the codebook by clustering a sample of vectors.
//
// samples is a flattened row-major matrix with trailing dimension equal to
// the codebook's dimension; it must contain at least numCodes vectors.
// This typically converges faster than a uniform draw because every entry
// starts inside the data distribution.
func (cb *Codebook) InitKMeans(samples []float32, maxIter int, rng *rand.Rand) error {
	if len(samples)%cb.dim != 0 {
		return &ErrBatchShape{Length: len(samples), Dimension: cb.dim}
	}

	centroids, err := kmeans.Train(samples, cb.dim, cb.numCodes, maxIter, rng)
	if err != nil {
		return err
	}
	copy(cb.weights, centroids)

	return nil
}

// Dim returns the embedding dimension D.
func (cb *Codebook) Dim() int {
	return cb.dim
}

// Len returns the number of codebook entries K.
func (cb *Codebook) Len() int {
	return cb.numCodes
}

// Entry returns a view of entry k. The slice aliases the codebook's backing
// storage; callers must not hold it across an optimizer step they do not
// intend to observe.
func (cb *Codebook) Entry(k int) []float32 {
	return cb.weights[k*cb.dim : (k+1)*cb.dim]
}

// Weights returns the flattened weight matrix (numCodes * dim, row-major).
// The optimizer mutates this slice in place via Step.
func (cb *Codebook) Weights() []float32 {
	return cb.weights
}

// Grad returns the flattened gradient buffer, same layout as Weights.
// Backward passes accumulate into it; ZeroGrad clears it.
func (cb *Codebook) Grad() []float32 {
	return cb.grad
}

// ZeroGrad clears the gradient buffer. Call it after each optimizer step.
func (cb *Codebook) ZeroGrad() {
	for i := range cb.grad {
		cb.grad[i] = 0
	}
}

// RowNorms returns the squared L2 norm of every entry.
func (cb *Codebook) RowNorms() []float32 {
	return math32.RowNorms(cb.weights, cb.dim)
}

const (
	codebookMagic   = 0x56514342 // "VQCB"
	codebookVersion = 1
)

// MarshalBinary implements encoding.BinaryMarshaler.
// Format (little-endian): [magic:u32][version:u8][dim:u32][numCodes:u32][weights:f32...]
//
// The gradient buffer is not persisted; it is transient training state.
func (cb *Codebook) MarshalBinary() ([]byte, error) {
	b := make([]byte, 13+len(cb.weights)*4)
	binary.LittleEndian.PutUint32(b[0:], codebookMagic)
	b[4] = codebookVersion
	binary.LittleEndian.PutUint32(b[5:], uint32(cb.dim))
	binary.LittleEndian.PutUint32(b[9:], uint32(cb.numCodes))

	off := 13
	for _, w := range cb.weights {
		binary.LittleEndian.PutUint32(b[off:], math.Float32bits(w))
		off += 4
	}

	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The decoded dimension and size replace the receiver's; the gradient buffer
// is reset to zero.
func (cb *Codebook) UnmarshalBinary(b []byte) error {
	if len(b) < 13 {
		return ErrCodebookCorrupt
	}
	if binary.LittleEndian.Uint32(b[0:]) != codebookMagic {
		return ErrCodebookCorrupt
	}
	if b[4] != codebookVersion {
		return ErrCodebookCorrupt
	}

	dim := int(binary.LittleEndian.Uint32(b[5:]))
	numCodes := int(binary.LittleEndian.Uint32(b[9:]))
	if dim <= 0 || numCodes <= 0 {
		return ErrCodebookCorrupt
	}
	if len(b) != 13+numCodes*dim*4 {
		return ErrCodebookCorrupt
	}

	weights := make([]float32, numCodes*dim)
	off := 13
	for i := range weights {
		weights[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
		off += 4
	}

	cb.dim = dim
	cb.numCodes = numCodes
	cb.weights = weights
	cb.grad = make([]float32, numCodes*dim)

	return nil
}
