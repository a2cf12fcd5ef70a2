package accum

import "errors"

// Sentinel errors for the accum package. Callers match with errors.Is.
var (
	// ErrShapeMismatch indicates an Add or Mul between incompatible Jacobian shapes.
	ErrShapeMismatch = errors.New("accum: shape mismatch")

	// ErrUnderspecifiedInit indicates a Truncated accumulator was constructed
	// with a non-positive depth budget.
	ErrUnderspecifiedInit = errors.New("accum: underspecified initialization")

	// ErrTypeMismatch indicates an attempt to combine an Unbounded
	// accumulator with a Truncated one, or vice versa.
	ErrTypeMismatch = errors.New("accum: cannot combine accumulators of different kinds")
)
