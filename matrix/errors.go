package matrix

import (
	"errors"
	"fmt"
)

// Sentinel errors for the matrix package. Algorithms return these directly;
// callers match with errors.Is. Panics are reserved for programmer errors
// (out-of-range access on a private helper), never for caller-triggered
// conditions.
var (
	// ErrBadShape is returned when requested dimensions are invalid (r<=0 or c<=0).
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates a row or column index outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrNilMatrix indicates a nil Matrix argument.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrNonSPD indicates Cholesky factorization failed (not symmetric positive-definite).
	ErrNonSPD = errors.New("matrix: not symmetric positive-definite")

	// ErrSingular is returned when a zero pivot is encountered during a solve.
	ErrSingular = errors.New("matrix: singular matrix")
)

// matrixErrorf wraps an underlying error with an operation tag.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
