package psdparam

import (
	"github.com/katalvlaran/modprop/engine"
	"github.com/katalvlaran/modprop/matrix"
	"github.com/katalvlaran/modprop/modules"
)

// Source is a constant-PSD matrix produced from a flat, unconstrained
// parameter vector theta = (diag-params, lower-params). diag-params pass
// through an Exponential to stay strictly positive (the Cholesky
// diagonal); lower-params feed the strict lower triangle unconstrained.
// The composed output is always symmetric positive-definite by
// construction, so a chain wired through a Source never needs to reject
// an optimizer step for leaving the PSD cone.
type Source struct {
	n      int
	nLower int

	diagRaw  *modules.Constant
	diagExp  *modules.Exponential
	lowerRaw *modules.Constant
	reshape  *modules.CholeskyReshape
}

// New builds a Source for an n×n covariance, seeded with diagInit (length
// n, the raw pre-exponential diagonal) and lowerInit (length n(n-1)/2, the
// strict lower triangle in the column-major order matrix.LowerTriIndices
// produces). Returns ErrThetaDimensionMismatch if either slice is the
// wrong length.
func New(n int, diagInit, lowerInit []float64) (*Source, error) {
	nLower := n * (n - 1) / 2
	if len(diagInit) != n || len(lowerInit) != nLower {
		return nil, ErrThetaDimensionMismatch
	}

	s := &Source{n: n, nLower: nLower}
	s.diagRaw = modules.NewConstant(columnOf(diagInit), engine.KindVector)
	s.diagExp = modules.NewExponential(engine.KindVector)
	s.lowerRaw = modules.NewConstant(lowerColumn(lowerInit), engine.KindVector)
	s.reshape = modules.NewCholeskyReshape()

	if err := engine.Link(s.diagExp.InPort(), s.diagRaw.OutPort()); err != nil {
		return nil, err
	}
	if err := engine.Link(s.reshape.DIn(), s.diagExp.OutPort()); err != nil {
		return nil, err
	}
	if err := engine.Link(s.reshape.LIn(), s.lowerRaw.OutPort()); err != nil {
		return nil, err
	}
	return s, nil
}

// OutPort returns the port carrying the assembled PSD matrix.
func (s *Source) OutPort() *engine.OutputPort { return s.reshape.SOut() }

// Foreprop drives the two leaf constants and their downstream transforms.
func (s *Source) Foreprop() error {
	if err := engine.Foreprop(s.diagRaw); err != nil {
		return err
	}
	return engine.Foreprop(s.lowerRaw)
}

// Invalidate clears this source's cached values so the next Foreprop
// recomputes from the current theta.
func (s *Source) Invalidate() error {
	if err := engine.Invalidate(s.diagRaw); err != nil {
		return err
	}
	return engine.Invalidate(s.lowerRaw)
}

// Theta returns the current flat parameter vector (diag-params then
// lower-params). An n=1 source has no strict lower triangle, so its
// lower half is omitted rather than exposing the unread placeholder
// backing lowerRaw.
func (s *Source) Theta() []float64 {
	d := columnSlice(s.diagRaw.Value())
	out := make([]float64, 0, len(d)+s.nLower)
	out = append(out, d...)
	if s.nLower > 0 {
		out = append(out, columnSlice(s.lowerRaw.Value())...)
	}
	return out
}

// SetTheta replaces the parameter vector and invalidates the source so a
// subsequent Foreprop reflects the new values. Returns
// ErrThetaDimensionMismatch if theta's length doesn't match this Source's
// n + n(n-1)/2.
func (s *Source) SetTheta(theta []float64) error {
	if len(theta) != s.n+s.nLower {
		return ErrThetaDimensionMismatch
	}
	if err := s.diagRaw.SetValue(columnOf(theta[:s.n])); err != nil {
		return err
	}
	if s.nLower == 0 {
		return nil
	}
	return s.lowerRaw.SetValue(columnOf(theta[s.n:]))
}

// BackpropValue collapses the gradient of the terminal scalar with respect
// to this source's raw theta vector, in the same (diag, lower) order as
// Theta. ok is false if no backward pass has reached this source yet;
// missing halves are reported as zero.
func (s *Source) BackpropValue() (matrix.Matrix, bool) {
	dGrad, dOk := s.diagRaw.BackpropValue()
	if s.nLower == 0 {
		if !dOk {
			return nil, false
		}
		out := matrix.MustDense(1, s.n)
		for j := 0; j < s.n; j++ {
			v, _ := dGrad.At(0, j)
			_ = out.Set(0, j, v)
		}
		return out, true
	}

	lGrad, lOk := s.lowerRaw.BackpropValue()
	if !dOk && !lOk {
		return nil, false
	}

	out := matrix.MustDense(1, s.n+s.nLower)
	if dOk {
		for j := 0; j < s.n; j++ {
			v, _ := dGrad.At(0, j)
			_ = out.Set(0, j, v)
		}
	}
	if lOk {
		for j := 0; j < s.nLower; j++ {
			v, _ := lGrad.At(0, j)
			_ = out.Set(0, s.n+j, v)
		}
	}
	return out, true
}

func columnOf(v []float64) *matrix.Dense {
	return matrix.FlattenVectorAsColumn(v)
}

// lowerColumn builds the strict-lower-triangle input column. An n=1
// covariance has no strict lower triangle (LowerTriIndices(1) is empty,
// so CholeskyReshape never reads this port's value), but every input
// port still needs a value to become foreprop-ready; a single zero
// placeholder satisfies that without a real free parameter behind it.
func lowerColumn(v []float64) *matrix.Dense {
	if len(v) == 0 {
		return matrix.MustDense(1, 1)
	}
	return columnOf(v)
}

func columnSlice(m matrix.Matrix) []float64 {
	n := m.Rows()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, _ := m.At(i, 0)
		out[i] = v
	}
	return out
}
