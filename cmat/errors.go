package cmat

import "errors"

var (
	// ErrBadShape is returned when a requested logical shape is invalid,
	// that is rows <= 0 or cols <= 0.
	ErrBadShape = errors.New("cmat: invalid shape")

	// ErrDimensionMismatch is returned when two operands have incompatible
	// logical shapes, such as Mul where a.Cols() != b.Rows(), or Add with
	// differing shapes. The destination is left untouched.
	ErrDimensionMismatch = errors.New("cmat: dimension mismatch")

	// ErrCapacityExceeded is returned when a requested logical dimension
	// exceeds MaxDim, or when a bounded table is full.
	ErrCapacityExceeded = errors.New("cmat: capacity exceeded")
)
