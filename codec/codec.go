// Package codec encodes discrete code grids for storage and transport.
//
// A quantizer turns a spatial batch of embedding vectors into a grid of
// small integer code indices; that grid is what a downstream autoregressive
// prior consumes and what pipelines persist. The encoding packs indices at
// the narrowest width the codebook size allows (uint8 up to 256 codes,
// uint16 up to 65536) and optionally compresses the payload with LZ4 or
// ZSTD block compression.
//
// Codec selection is a breaking-change boundary: bytes written with one
// format version may not decode under another.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrCorrupt is returned when Decode is given bytes that do not
	// describe a code grid.
	ErrCorrupt = errors.New("corrupt code grid encoding")

	// ErrTooManyCodes is returned when the codebook size exceeds the
	// uint16 index range.
	ErrTooManyCodes = errors.New("codebook size exceeds uint16 range")

	// ErrShapeMismatch is returned when the grid shape disagrees with the
	// number of codes provided.
	ErrShapeMismatch = errors.New("grid shape does not match code count")
)

// ErrCodeOutOfRange indicates a code index outside [0, NumCodes).
type ErrCodeOutOfRange struct {
	Code     int
	NumCodes int
}

func (e *ErrCodeOutOfRange) Error() string {
	return fmt.Sprintf("code %d out of range [0, %d)", e.Code, e.NumCodes)
}

// CodeGrid is a rows x cols grid of code assignments produced by a codebook
// with NumCodes entries. Codes are stored row-major.
type CodeGrid struct {
	Rows     int
	Cols     int
	NumCodes int
	Codes    []int
}

// NewCodeGrid validates and wraps a flat assignment slice as a grid.
func NewCodeGrid(rows, cols, numCodes int, codes []int) (*CodeGrid, error) {
	if rows < 0 || cols < 0 || rows*cols != len(codes) {
		return nil, ErrShapeMismatch
	}
	for _, c := range codes {
		if c < 0 || c >= numCodes {
			return nil, &ErrCodeOutOfRange{Code: c, NumCodes: numCodes}
		}
	}

	return &CodeGrid{
		Rows:     rows,
		Cols:     cols,
		NumCodes: numCodes,
		Codes:    codes,
	}, nil
}

// At returns the code at row r, column c.
func (g *CodeGrid) At(r, c int) int {
	return g.Codes[r*g.Cols+c]
}

const (
	gridMagic   = 0x56514347 // "VQCG"
	gridVersion = 1

	// magic u32 + version u8 + compression u8 + width u8 + numCodes u32 +
	// rows u32 + cols u32
	gridHeaderSize = 19
)

// Encode serializes the grid.
// Format (little-endian):
//
//	[magic:u32][version:u8][compression:u8][width:u8]
//	[numCodes:u32][rows:u32][cols:u32][block...]
//
// where block is the packed index payload framed by the block-compression
// header (see Compression).
func Encode(g *CodeGrid, compression Compression) ([]byte, error) {
	if g.NumCodes > 1<<16 {
		return nil, ErrTooManyCodes
	}
	if g.Rows*g.Cols != len(g.Codes) {
		return nil, ErrShapeMismatch
	}

	width := 1
	if g.NumCodes > 1<<8 {
		width = 2
	}

	payload := make([]byte, len(g.Codes)*width)
	for i, c := range g.Codes {
		if c < 0 || c >= g.NumCodes {
			return nil, &ErrCodeOutOfRange{Code: c, NumCodes: g.NumCodes}
		}
		if width == 1 {
			payload[i] = byte(c)
		} else {
			binary.LittleEndian.PutUint16(payload[i*2:], uint16(c))
		}
	}

	block, err := compressBlock(payload, compression)
	if err != nil {
		return nil, err
	}

	out := make([]byte, gridHeaderSize+len(block))
	binary.LittleEndian.PutUint32(out[0:], gridMagic)
	out[4] = gridVersion
	out[5] = byte(compression)
	out[6] = byte(width)
	binary.LittleEndian.PutUint32(out[7:], uint32(g.NumCodes))
	binary.LittleEndian.PutUint32(out[11:], uint32(g.Rows))
	binary.LittleEndian.PutUint32(out[15:], uint32(g.Cols))
	copy(out[gridHeaderSize:], block)

	return out, nil
}

// Decode deserializes a grid produced by Encode.
func Decode(b []byte) (*CodeGrid, error) {
	if len(b) < gridHeaderSize {
		return nil, ErrCorrupt
	}
	if binary.LittleEndian.Uint32(b[0:]) != gridMagic {
		return nil, ErrCorrupt
	}
	if b[4] != gridVersion {
		return nil, ErrCorrupt
	}

	compression := Compression(b[5])
	width := int(b[6])
	if width != 1 && width != 2 {
		return nil, ErrCorrupt
	}

	numCodes := int(binary.LittleEndian.Uint32(b[7:]))
	rows := int(binary.LittleEndian.Uint32(b[11:]))
	cols := int(binary.LittleEndian.Uint32(b[15:]))

	payload, err := decompressBlock(b[gridHeaderSize:], compression)
	if err != nil {
		return nil, err
	}
	if len(payload) != rows*cols*width {
		return nil, ErrCorrupt
	}

	codes := make([]int, rows*cols)
	for i := range codes {
		var c int
		if width == 1 {
			c = int(payload[i])
		} else {
			c = int(binary.LittleEndian.Uint16(payload[i*2:]))
		}
		if c >= numCodes {
			return nil, ErrCorrupt
		}
		codes[i] = c
	}

	return &CodeGrid{
		Rows:     rows,
		Cols:     cols,
		NumCodes: numCodes,
		Codes:    codes,
	}, nil
}
