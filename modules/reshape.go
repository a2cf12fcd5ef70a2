package modules

import (
	"github.com/katalvlaran/modprop/engine"
	"github.com/katalvlaran/modprop/matrix"
)

// DiagonalReshape remaps a length-N vector input into an N×N diagonal
// output matrix.
type DiagonalReshape struct {
	engine.ModuleBase
	vecIn   *engine.InputPort
	diagOut *engine.OutputPort
}

// NewDiagonalReshape creates a DiagonalReshape module.
func NewDiagonalReshape() *DiagonalReshape {
	d := &DiagonalReshape{}
	d.Init(d)
	d.vecIn = engine.NewInputPort(d, engine.KindVector)
	d.diagOut = engine.NewOutputPort(d, engine.KindMatrix)
	d.RegisterInputs(d.vecIn)
	d.RegisterOutputs(d.diagOut)
	return d
}

func (d *DiagonalReshape) VecIn() *engine.InputPort    { return d.vecIn }
func (d *DiagonalReshape) DiagOut() *engine.OutputPort { return d.diagOut }

func (d *DiagonalReshape) Foreprop() ([]engine.Module, error) {
	if !d.ForepropReady() {
		return nil, nil
	}
	return d.diagOut.Foreprop(matrix.Diag(toSlice(d.vecIn.Value()))), nil
}

func (d *DiagonalReshape) Backprop() ([]engine.Module, error) {
	if !d.BackpropReady() {
		return nil, nil
	}
	n := d.vecIn.Value().Rows()
	jac, err := matrix.NewDense(n*n, n)
	if err != nil {
		return nil, err
	}
	for i, flatIdx := range matrix.DiagIndices(n) {
		_ = jac.Set(flatIdx, i, 1.0)
	}

	doDd, ok, err := d.diagOut.ChainBackprop(jac)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return d.vecIn.Backprop(doDd)
}

// CholeskyReshape combines a length-N diagonal vector and a length
// N(N-1)/2 strict-lower-triangular vector (packed column-major) into a
// Cholesky factor L, and outputs S = L*L^T.
type CholeskyReshape struct {
	engine.ModuleBase
	dIn   *engine.InputPort
	lIn   *engine.InputPort
	sOut  *engine.OutputPort
	lastL *matrix.Dense
}

// NewCholeskyReshape creates a CholeskyReshape module.
func NewCholeskyReshape() *CholeskyReshape {
	c := &CholeskyReshape{}
	c.Init(c)
	c.dIn = engine.NewInputPort(c, engine.KindVector)
	c.lIn = engine.NewInputPort(c, engine.KindVector)
	c.sOut = engine.NewOutputPort(c, engine.KindMatrix)
	c.RegisterInputs(c.dIn, c.lIn)
	c.RegisterOutputs(c.sOut)
	return c
}

func (c *CholeskyReshape) DIn() *engine.InputPort   { return c.dIn }
func (c *CholeskyReshape) LIn() *engine.InputPort   { return c.lIn }
func (c *CholeskyReshape) SOut() *engine.OutputPort { return c.sOut }

func (c *CholeskyReshape) Foreprop() ([]engine.Module, error) {
	if !c.ForepropReady() {
		return nil, nil
	}
	n := c.dIn.Value().Rows()
	l := matrix.MustDense(n, n)
	d := toSlice(c.dIn.Value())
	for i, v := range d {
		l.Set(i, i, v)
	}
	lvals := toSlice(c.lIn.Value())
	for k, flatIdx := range matrix.LowerTriIndices(n) {
		col := flatIdx / n
		row := flatIdx % n
		l.Set(row, col, lvals[k])
	}
	c.lastL = l

	lt, err := matrix.Transpose(l)
	if err != nil {
		return nil, err
	}
	s, err := matrix.Mul(l, lt)
	if err != nil {
		return nil, err
	}
	return c.sOut.Foreprop(s), nil
}

// Backprop computes dvec(S)/dvec(L) = (L⊗I) + (I⊗L)*T for S=L*L^T under
// column-major vectorization, then selects the columns feeding d_in and
// l_in respectively.
func (c *CholeskyReshape) Backprop() ([]engine.Module, error) {
	if !c.BackpropReady() {
		return nil, nil
	}
	n := c.lastL.Rows()

	idN, err := matrix.Identity(n)
	if err != nil {
		return nil, err
	}
	leftTerm, err := matrix.Kron(c.lastL, idN)
	if err != nil {
		return nil, err
	}
	idLKron, err := matrix.Kron(idN, c.lastL)
	if err != nil {
		return nil, err
	}
	vecT, err := matrix.VecTranspose(n, n)
	if err != nil {
		return nil, err
	}
	rightTerm, err := matrix.Mul(idLKron, vecT)
	if err != nil {
		return nil, err
	}
	full, err := matrix.Add(leftTerm, rightTerm)
	if err != nil {
		return nil, err
	}

	lowerIdx := matrix.LowerTriIndices(n)
	diagIdx := matrix.DiagIndices(n)

	var ready []engine.Module

	// n=1 has no strict lower triangle; l_in carries an unread placeholder,
	// so there is no gradient column to route to it.
	if len(lowerIdx) > 0 {
		dSdl, err := selectColumns(full, lowerIdx)
		if err != nil {
			return nil, err
		}
		doDl, ok, err := c.sOut.ChainBackprop(dSdl)
		if err != nil {
			return nil, err
		}
		if ok {
			r, err := c.lIn.Backprop(doDl)
			if err != nil {
				return nil, err
			}
			ready = append(ready, r...)
		}
	}

	dSdd, err := selectColumns(full, diagIdx)
	if err != nil {
		return nil, err
	}

	doDd, ok, err := c.sOut.ChainBackprop(dSdd)
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := c.dIn.Backprop(doDd)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}
	return ready, nil
}

// selectColumns builds a new matrix from the columns of m at the given
// indices, preserving order.
func selectColumns(m matrix.Matrix, cols []int) (*matrix.Dense, error) {
	out, err := matrix.NewDense(m.Rows(), len(cols))
	if err != nil {
		return nil, err
	}
	for j, col := range cols {
		for i := 0; i < m.Rows(); i++ {
			v, _ := m.At(i, col)
			_ = out.Set(i, j, v)
		}
	}
	return out, nil
}
