package accum

import "github.com/katalvlaran/modprop/matrix"

// Unbounded accumulates a single running Jacobian with no depth limit. A
// nil mat represents the additive identity (no contribution yet).
type Unbounded struct {
	mat matrix.Matrix
}

var _ Accumulator = (*Unbounded)(nil)

// NewUnbounded wraps m as the initial contents of an Unbounded
// accumulator. Passing nil starts an empty accumulator.
func NewUnbounded(m matrix.Matrix) *Unbounded {
	return &Unbounded{mat: m}
}

// Clone returns a deep copy of u.
func (u *Unbounded) Clone() Accumulator {
	if u.mat == nil {
		return NewUnbounded(nil)
	}
	return NewUnbounded(u.mat.Clone())
}

// TickDescent is a no-op: Unbounded never expires.
func (u *Unbounded) TickDescent() {}

// Add returns the elementwise sum of u and other, which must also be
// *Unbounded.
func (u *Unbounded) Add(other Accumulator) (Accumulator, error) {
	o, ok := other.(*Unbounded)
	if !ok {
		return nil, ErrTypeMismatch
	}
	if u.mat == nil {
		return NewUnbounded(o.mat), nil
	}
	if o.mat == nil {
		return NewUnbounded(u.mat), nil
	}
	sum, err := matrix.Add(u.mat, o.mat)
	if err != nil {
		return nil, matrixWrap(err)
	}
	return NewUnbounded(sum), nil
}

// MulRight returns u's contents right-multiplied by a.
func (u *Unbounded) MulRight(a matrix.Matrix) (Accumulator, error) {
	if u.mat == nil {
		return NewUnbounded(nil), nil
	}
	res, err := matrix.Mul(u.mat, a)
	if err != nil {
		return nil, matrixWrap(err)
	}
	return NewUnbounded(res), nil
}

// MulLeft returns u's contents left-multiplied by a.
func (u *Unbounded) MulLeft(a matrix.Matrix) (Accumulator, error) {
	if u.mat == nil {
		return NewUnbounded(nil), nil
	}
	res, err := matrix.Mul(a, u.mat)
	if err != nil {
		return nil, matrixWrap(err)
	}
	return NewUnbounded(res), nil
}

// Retrieve returns u's contents, or ok=false if nothing accumulated.
func (u *Unbounded) Retrieve() (matrix.Matrix, bool) {
	if u.mat == nil {
		return nil, false
	}
	return u.mat, true
}

// IsEmpty reports whether u has no accumulated contents.
func (u *Unbounded) IsEmpty() bool {
	return u.mat == nil
}
