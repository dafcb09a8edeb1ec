package vqgo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNumCodes is returned when the codebook size is not positive.
	ErrInvalidNumCodes = errors.New("number of codes must be positive")

	// ErrInvalidBeta is returned when the commitment coefficient is negative.
	ErrInvalidBeta = errors.New("beta must be non-negative")
)

// ErrInvalidDimension indicates an invalid configured embedding dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// ErrBatchShape indicates a flat input batch whose length is not a multiple
// of the codebook's embedding dimension.
type ErrBatchShape struct {
	Length    int
	Dimension int
}

func (e *ErrBatchShape) Error() string {
	return fmt.Sprintf("input length %d is not a multiple of embedding dimension %d", e.Length, e.Dimension)
}

// ErrDimensionMismatch indicates a length mismatch between two tensors that
// must have identical shape (e.g. an upstream gradient and the forward input).
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
