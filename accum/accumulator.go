package accum

import "github.com/katalvlaran/modprop/matrix"

// Accumulator collects a Jacobian (or sum of Jacobians) flowing backward
// through the dataflow graph during a single backprop pass. An
// OutputPort holds exactly one Accumulator while a backward pass is in
// flight; the port merges arriving contributions via Add and right- or
// left-multiplies by a local Jacobian via MulRight/MulLeft as the gradient
// is chained across a module boundary.
type Accumulator interface {
	// Clone returns a deep copy, independent of the receiver.
	Clone() Accumulator

	// TickDescent signals that the accumulator has moved one level deeper
	// into the chain. Unbounded is a no-op; Truncated ages every tracked
	// entry and drops those whose depth budget has been exhausted.
	TickDescent()

	// Add returns a new Accumulator holding the combined contents of the
	// receiver and other. Both must be the same concrete kind.
	Add(other Accumulator) (Accumulator, error)

	// MulRight returns a new Accumulator with contents right-multiplied by
	// a, i.e. result = contents * a. Used to chain do_dx = do_dy * dy_dx.
	MulRight(a matrix.Matrix) (Accumulator, error)

	// MulLeft returns a new Accumulator with contents left-multiplied by
	// a, i.e. result = a * contents.
	MulLeft(a matrix.Matrix) (Accumulator, error)

	// Retrieve collapses the accumulator to a single Jacobian matrix,
	// returning ok=false if nothing has been accumulated yet.
	Retrieve() (m matrix.Matrix, ok bool)

	// IsEmpty reports whether the accumulator currently holds nothing.
	IsEmpty() bool
}

// SumAccumulators adds a slice of accumulators together, skipping nil and
// empty entries. Returns nil if none of the inputs carried anything.
// Grounded on the Kalman update module's need to combine gradient
// contributions converging on a single input from several outputs.
func SumAccumulators(accs []Accumulator) (Accumulator, error) {
	var ret Accumulator
	for _, a := range accs {
		if a == nil || a.IsEmpty() {
			continue
		}
		if ret == nil {
			ret = a
			continue
		}
		var err error
		ret, err = ret.Add(a)
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}
