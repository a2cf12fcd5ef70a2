package modules

import (
	"math"

	"github.com/katalvlaran/modprop/engine"
	"github.com/katalvlaran/modprop/matrix"
)

func expScalar(x float64) float64 { return math.Exp(x) }

// Addition computes out = left + right, elementwise.
type Addition struct {
	engine.ModuleBase
	left, right *engine.InputPort
	out         *engine.OutputPort
}

// NewAddition creates an Addition module whose ports carry the given kind.
func NewAddition(kind engine.PortKind) *Addition {
	a := &Addition{}
	a.Init(a)
	a.left = engine.NewInputPort(a, kind)
	a.right = engine.NewInputPort(a, kind)
	a.out = engine.NewOutputPort(a, kind)
	a.RegisterInputs(a.left, a.right)
	a.RegisterOutputs(a.out)
	return a
}

func (a *Addition) LeftPort() *engine.InputPort   { return a.left }
func (a *Addition) RightPort() *engine.InputPort  { return a.right }
func (a *Addition) OutPort() *engine.OutputPort   { return a.out }

func (a *Addition) Foreprop() ([]engine.Module, error) {
	if !a.ForepropReady() {
		return nil, nil
	}
	sum, err := matrix.Add(a.left.Value(), a.right.Value())
	if err != nil {
		return nil, err
	}
	return a.out.Foreprop(sum), nil
}

func (a *Addition) Backprop() ([]engine.Module, error) {
	if !a.BackpropReady() {
		return nil, nil
	}
	id, err := matrix.Identity(columnLen(a.right.Value()))
	if err != nil {
		return nil, err
	}

	var ready []engine.Module
	doDright, ok, err := a.out.ChainBackprop(id)
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := a.right.Backprop(doDright)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}

	doDleft, ok, err := a.out.ChainBackprop(id)
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := a.left.Backprop(doDleft)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}
	return ready, nil
}

// Difference computes out = left - right, elementwise.
type Difference struct {
	engine.ModuleBase
	left, right *engine.InputPort
	out         *engine.OutputPort
}

// NewDifference creates a Difference module whose ports carry the given kind.
func NewDifference(kind engine.PortKind) *Difference {
	d := &Difference{}
	d.Init(d)
	d.left = engine.NewInputPort(d, kind)
	d.right = engine.NewInputPort(d, kind)
	d.out = engine.NewOutputPort(d, kind)
	d.RegisterInputs(d.left, d.right)
	d.RegisterOutputs(d.out)
	return d
}

func (d *Difference) LeftPort() *engine.InputPort  { return d.left }
func (d *Difference) RightPort() *engine.InputPort { return d.right }
func (d *Difference) OutPort() *engine.OutputPort  { return d.out }

func (d *Difference) Foreprop() ([]engine.Module, error) {
	if !d.ForepropReady() {
		return nil, nil
	}
	diff, err := matrix.Sub(d.left.Value(), d.right.Value())
	if err != nil {
		return nil, err
	}
	return d.out.Foreprop(diff), nil
}

func (d *Difference) Backprop() ([]engine.Module, error) {
	if !d.BackpropReady() {
		return nil, nil
	}
	dim := columnLen(d.right.Value())
	id, err := matrix.Identity(dim)
	if err != nil {
		return nil, err
	}
	negID, err := matrix.Scale(id, -1)
	if err != nil {
		return nil, err
	}

	var ready []engine.Module
	doDright, ok, err := d.out.ChainBackprop(negID)
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := d.right.Backprop(doDright)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}

	doDleft, ok, err := d.out.ChainBackprop(id)
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := d.left.Backprop(doDleft)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}
	return ready, nil
}

// MatrixProduct computes out = left * right via standard matrix
// multiplication.
type MatrixProduct struct {
	engine.ModuleBase
	left, right *engine.InputPort
	out         *engine.OutputPort
}

// NewMatrixProduct creates a MatrixProduct module whose ports carry the
// given kind.
func NewMatrixProduct(kind engine.PortKind) *MatrixProduct {
	m := &MatrixProduct{}
	m.Init(m)
	m.left = engine.NewInputPort(m, kind)
	m.right = engine.NewInputPort(m, kind)
	m.out = engine.NewOutputPort(m, kind)
	m.RegisterInputs(m.left, m.right)
	m.RegisterOutputs(m.out)
	return m
}

func (m *MatrixProduct) LeftPort() *engine.InputPort  { return m.left }
func (m *MatrixProduct) RightPort() *engine.InputPort { return m.right }
func (m *MatrixProduct) OutPort() *engine.OutputPort  { return m.out }

func (m *MatrixProduct) Foreprop() ([]engine.Module, error) {
	if !m.ForepropReady() {
		return nil, nil
	}
	prod, err := matrix.Mul(m.left.Value(), m.right.Value())
	if err != nil {
		return nil, err
	}
	return m.out.Foreprop(prod), nil
}

func (m *MatrixProduct) Backprop() ([]engine.Module, error) {
	if !m.BackpropReady() {
		return nil, nil
	}
	left, right := m.left.Value(), m.right.Value()

	// dout_dright = I(cols(right)) ⊗ left
	idN, err := matrix.Identity(right.Cols())
	if err != nil {
		return nil, err
	}
	doutDright, err := matrix.Kron(idN, left)
	if err != nil {
		return nil, err
	}

	// dout_dleft = right^T ⊗ I(rows(left))
	rightT, err := matrix.Transpose(right)
	if err != nil {
		return nil, err
	}
	idM, err := matrix.Identity(left.Rows())
	if err != nil {
		return nil, err
	}
	doutDleft, err := matrix.Kron(rightT, idM)
	if err != nil {
		return nil, err
	}

	var ready []engine.Module
	doDright, ok, err := m.out.ChainBackprop(doutDright)
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := m.right.Backprop(doDright)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}

	doDleft, ok, err := m.out.ChainBackprop(doutDleft)
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := m.left.Backprop(doDleft)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}
	return ready, nil
}

// Exponential computes out = exp(in), elementwise.
type Exponential struct {
	engine.ModuleBase
	in  *engine.InputPort
	out *engine.OutputPort
}

// NewExponential creates an Exponential module whose ports carry the given
// kind.
func NewExponential(kind engine.PortKind) *Exponential {
	e := &Exponential{}
	e.Init(e)
	e.in = engine.NewInputPort(e, kind)
	e.out = engine.NewOutputPort(e, kind)
	e.RegisterInputs(e.in)
	e.RegisterOutputs(e.out)
	return e
}

func (e *Exponential) InPort() *engine.InputPort  { return e.in }
func (e *Exponential) OutPort() *engine.OutputPort { return e.out }

func (e *Exponential) Foreprop() ([]engine.Module, error) {
	if !e.ForepropReady() {
		return nil, nil
	}
	v := e.in.Value()
	out := matrix.MustDense(v.Rows(), v.Cols())
	for i := 0; i < v.Rows(); i++ {
		for j := 0; j < v.Cols(); j++ {
			x, _ := v.At(i, j)
			_ = out.Set(i, j, expScalar(x))
		}
	}
	return e.out.Foreprop(out), nil
}

func (e *Exponential) Backprop() ([]engine.Module, error) {
	if !e.BackpropReady() {
		return nil, nil
	}
	flat, err := matrix.Flatten(e.out.Value())
	if err != nil {
		return nil, err
	}
	doutDin := matrix.Diag(flat)

	doDin, ok, err := e.out.ChainBackprop(doutDin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return e.in.Backprop(doDin)
}
