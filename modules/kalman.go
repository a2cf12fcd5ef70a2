package modules

import (
	"github.com/katalvlaran/modprop/accum"
	"github.com/katalvlaran/modprop/engine"
	"github.com/katalvlaran/modprop/matrix"
)

// Predict performs a Kalman filter time-update step: propagating a state
// mean and covariance through a fixed linear transition A, with Q_in
// supplying additive process noise.
type Predict struct {
	engine.ModuleBase
	a matrix.Matrix

	xIn, pIn, qIn  *engine.InputPort
	xOut, pOut     *engine.OutputPort
}

// NewPredict creates a Predict module with fixed transition matrix a.
func NewPredict(a matrix.Matrix) *Predict {
	p := &Predict{a: a}
	p.Init(p)
	p.xIn = engine.NewInputPort(p, engine.KindVector)
	p.pIn = engine.NewInputPort(p, engine.KindMatrix)
	p.qIn = engine.NewInputPort(p, engine.KindMatrix)
	p.xOut = engine.NewOutputPort(p, engine.KindVector)
	p.pOut = engine.NewOutputPort(p, engine.KindMatrix)
	p.RegisterInputs(p.xIn, p.pIn, p.qIn)
	p.RegisterOutputs(p.xOut, p.pOut)
	return p
}

func (p *Predict) XIn() *engine.InputPort    { return p.xIn }
func (p *Predict) PIn() *engine.InputPort    { return p.pIn }
func (p *Predict) QIn() *engine.InputPort    { return p.qIn }
func (p *Predict) XOut() *engine.OutputPort  { return p.xOut }
func (p *Predict) POut() *engine.OutputPort  { return p.pOut }

// A returns the module's transition matrix.
func (p *Predict) A() matrix.Matrix { return p.a }

// SetA replaces the transition matrix and invalidates the module.
func (p *Predict) SetA(a matrix.Matrix) error {
	p.a = a
	return engine.Invalidate(p)
}

func (p *Predict) Foreprop() ([]engine.Module, error) {
	if !p.ForepropReady() {
		return nil, nil
	}
	nextX, err := matrix.Mul(p.a, p.xIn.Value())
	if err != nil {
		return nil, err
	}
	aT, err := matrix.Transpose(p.a)
	if err != nil {
		return nil, err
	}
	aPaT, err := matrix.Mul(p.a, p.pIn.Value())
	if err != nil {
		return nil, err
	}
	aPaT, err = matrix.Mul(aPaT, aT)
	if err != nil {
		return nil, err
	}
	nextP, err := matrix.Add(aPaT, p.qIn.Value())
	if err != nil {
		return nil, err
	}

	var ready []engine.Module
	ready = append(ready, p.xOut.Foreprop(nextX)...)
	ready = append(ready, p.pOut.Foreprop(nextP)...)
	return ready, nil
}

func (p *Predict) Backprop() ([]engine.Module, error) {
	if !p.BackpropReady() {
		return nil, nil
	}
	var ready []engine.Module

	doDxin, ok, err := p.xOut.ChainBackprop(p.a)
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := p.xIn.Backprop(doDxin)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}

	aKronA, err := matrix.Kron(p.a, p.a)
	if err != nil {
		return nil, err
	}
	doDpin, ok, err := p.pOut.ChainBackprop(aKronA)
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := p.pIn.Backprop(doDpin)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}

	doDq, ok, err := p.pOut.ChainBackprop(nil)
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := p.qIn.Backprop(doDq)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}
	return ready, nil
}

// Update performs a Kalman filter measurement-update step against a fixed
// observation y through a fixed observation matrix C, with R_in supplying
// observation noise covariance.
type Update struct {
	engine.ModuleBase
	y, c matrix.Matrix

	xIn, pIn, rIn          *engine.InputPort
	xOut, pOut, vOut, sOut *engine.OutputPort

	sChol *matrix.Dense
	k     *matrix.Dense
}

// NewUpdate creates an Update module with fixed observation y and
// observation matrix c.
func NewUpdate(y, c matrix.Matrix) *Update {
	u := &Update{y: y, c: c}
	u.Init(u)
	u.xIn = engine.NewInputPort(u, engine.KindVector)
	u.pIn = engine.NewInputPort(u, engine.KindMatrix)
	u.rIn = engine.NewInputPort(u, engine.KindMatrix)
	u.xOut = engine.NewOutputPort(u, engine.KindVector)
	u.pOut = engine.NewOutputPort(u, engine.KindMatrix)
	u.vOut = engine.NewOutputPort(u, engine.KindVector)
	u.sOut = engine.NewOutputPort(u, engine.KindMatrix)
	u.RegisterInputs(u.xIn, u.pIn, u.rIn)
	u.RegisterOutputs(u.xOut, u.pOut, u.vOut, u.sOut)
	return u
}

func (u *Update) XIn() *engine.InputPort   { return u.xIn }
func (u *Update) PIn() *engine.InputPort   { return u.pIn }
func (u *Update) RIn() *engine.InputPort   { return u.rIn }
func (u *Update) XOut() *engine.OutputPort { return u.xOut }
func (u *Update) POut() *engine.OutputPort { return u.pOut }
func (u *Update) VOut() *engine.OutputPort { return u.vOut }
func (u *Update) SOut() *engine.OutputPort { return u.sOut }

// Y returns the module's fixed observation vector.
func (u *Update) Y() matrix.Matrix { return u.y }

// C returns the module's fixed observation matrix.
func (u *Update) C() matrix.Matrix { return u.c }

// SetY replaces the observation vector and invalidates the module.
func (u *Update) SetY(y matrix.Matrix) error {
	u.y = y
	return engine.Invalidate(u)
}

// SetC replaces the observation matrix and invalidates the module.
func (u *Update) SetC(c matrix.Matrix) error {
	u.c = c
	return engine.Invalidate(u)
}

// SetObservation replaces both the observation matrix and vector in one
// invalidation pass, for callers that always update them together.
func (u *Update) SetObservation(c, y matrix.Matrix) error {
	u.c = c
	u.y = y
	return engine.Invalidate(u)
}

func (u *Update) Foreprop() ([]engine.Module, error) {
	if !u.ForepropReady() {
		return nil, nil
	}
	pIn := u.pIn.Value()

	yPred, err := matrix.Mul(u.c, u.xIn.Value())
	if err != nil {
		return nil, err
	}
	v, err := matrix.Sub(u.y, yPred)
	if err != nil {
		return nil, err
	}

	cT, err := matrix.Transpose(u.c)
	if err != nil {
		return nil, err
	}
	cPcT, err := matrix.Mul(u.c, pIn)
	if err != nil {
		return nil, err
	}
	cPcT, err = matrix.Mul(cPcT, cT)
	if err != nil {
		return nil, err
	}
	s, err := matrix.Add(cPcT, u.rIn.Value())
	if err != nil {
		return nil, err
	}

	sChol, err := matrix.Cholesky(s)
	if err != nil {
		return nil, err
	}
	u.sChol = sChol

	pcT, err := matrix.Mul(pIn, cT)
	if err != nil {
		return nil, err
	}
	k, err := matrix.CholeskySolveRight(sChol, pcT)
	if err != nil {
		return nil, err
	}
	u.k = k

	kv, err := matrix.Mul(k, v)
	if err != nil {
		return nil, err
	}
	xNext, err := matrix.Add(u.xIn.Value(), kv)
	if err != nil {
		return nil, err
	}

	kc, err := matrix.Mul(k, u.c)
	if err != nil {
		return nil, err
	}
	kcP, err := matrix.Mul(kc, pIn)
	if err != nil {
		return nil, err
	}
	pNext, err := matrix.Sub(pIn, kcP)
	if err != nil {
		return nil, err
	}

	var ready []engine.Module
	ready = append(ready, u.xOut.Foreprop(xNext)...)
	ready = append(ready, u.pOut.Foreprop(pNext)...)
	ready = append(ready, u.vOut.Foreprop(v)...)
	ready = append(ready, u.sOut.Foreprop(s)...)
	return ready, nil
}

// Backprop combines gradient contributions converging on x_in, P_in and
// R_in from all four output ports, following the closed-form reverse
// Jacobians of the Kalman measurement update.
func (u *Update) Backprop() ([]engine.Module, error) {
	if !u.BackpropReady() {
		return nil, nil
	}
	pIn := u.pIn.Value()
	n := u.xIn.Value().Rows()

	idN, err := matrix.Identity(n)
	if err != nil {
		return nil, err
	}
	kc, err := matrix.Mul(u.k, u.c)
	if err != nil {
		return nil, err
	}

	var accsXin, accsPin, accsRin []accum.Accumulator

	// _backprop_x_out
	dxoutDxin, err := matrix.Sub(idN, kc)
	if err != nil {
		return nil, err
	}
	if a, ok, err := u.xOut.ChainBackprop(dxoutDxin); err != nil {
		return nil, err
	} else if ok {
		accsXin = append(accsXin, a)
	}

	svMat, err := matrix.CholeskySolveLeft(u.sChol, u.vOut.Value())
	if err != nil {
		return nil, err
	}
	sv := toSlice(svMat)
	cT, err := matrix.Transpose(u.c)
	if err != nil {
		return nil, err
	}
	ctSv, err := matrix.Mul(cT, fromSlice(sv))
	if err != nil {
		return nil, err
	}
	ctSvT, err := matrix.Transpose(ctSv)
	if err != nil {
		return nil, err
	}
	kronIdN, err := matrix.Kron(ctSvT, idN)
	if err != nil {
		return nil, err
	}
	kronKC, err := matrix.Kron(ctSvT, kc)
	if err != nil {
		return nil, err
	}
	dxoutDPin, err := matrix.Sub(kronIdN, kronKC)
	if err != nil {
		return nil, err
	}
	if a, ok, err := u.xOut.ChainBackprop(dxoutDPin); err != nil {
		return nil, err
	} else if ok {
		accsPin = append(accsPin, a)
	}

	svRow := matrix.MustDense(1, len(sv))
	for i, x := range sv {
		_ = svRow.Set(0, i, x)
	}
	kronSvK, err := matrix.Kron(svRow, u.k)
	if err != nil {
		return nil, err
	}
	dxoutDR, err := matrix.Scale(kronSvK, -1)
	if err != nil {
		return nil, err
	}
	if a, ok, err := u.xOut.ChainBackprop(dxoutDR); err != nil {
		return nil, err
	} else if ok {
		accsRin = append(accsRin, a)
	}

	// _backprop_P_out
	pN := pIn.Rows()
	idP, err := matrix.Identity(pN)
	if err != nil {
		return nil, err
	}
	idPP, err := matrix.Identity(pN * pN)
	if err != nil {
		return nil, err
	}
	vecT, err := matrix.VecTranspose(pN, pN)
	if err != nil {
		return nil, err
	}
	idPlusT, err := matrix.Add(idPP, vecT)
	if err != nil {
		return nil, err
	}
	kronIdKC, err := matrix.Kron(idP, kc)
	if err != nil {
		return nil, err
	}
	term2, err := matrix.Mul(idPlusT, kronIdKC)
	if err != nil {
		return nil, err
	}
	kronKCKC, err := matrix.Kron(kc, kc)
	if err != nil {
		return nil, err
	}
	dPoutDPin, err := matrix.Sub(idPP, term2)
	if err != nil {
		return nil, err
	}
	dPoutDPin, err = matrix.Add(dPoutDPin, kronKCKC)
	if err != nil {
		return nil, err
	}
	if a, ok, err := u.pOut.ChainBackprop(dPoutDPin); err != nil {
		return nil, err
	} else if ok {
		accsPin = append(accsPin, a)
	}

	dPoutDRin, err := matrix.Kron(u.k, u.k)
	if err != nil {
		return nil, err
	}
	if a, ok, err := u.pOut.ChainBackprop(dPoutDRin); err != nil {
		return nil, err
	} else if ok {
		accsRin = append(accsRin, a)
	}

	// _backprop_v_out
	dvoutDxin, err := matrix.Scale(u.c, -1)
	if err != nil {
		return nil, err
	}
	if a, ok, err := u.vOut.ChainBackprop(dvoutDxin); err != nil {
		return nil, err
	} else if ok {
		accsXin = append(accsXin, a)
	}

	// _backprop_S_out
	dSoutDPin, err := matrix.Kron(u.c, u.c)
	if err != nil {
		return nil, err
	}
	if a, ok, err := u.sOut.ChainBackprop(dSoutDPin); err != nil {
		return nil, err
	} else if ok {
		accsPin = append(accsPin, a)
	}
	if a, ok, err := u.sOut.ChainBackprop(nil); err != nil {
		return nil, err
	} else if ok {
		accsRin = append(accsRin, a)
	}

	var ready []engine.Module
	sumXin, err := accum.SumAccumulators(accsXin)
	if err != nil {
		return nil, err
	}
	if sumXin != nil {
		r, err := u.xIn.Backprop(sumXin)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}

	sumPin, err := accum.SumAccumulators(accsPin)
	if err != nil {
		return nil, err
	}
	if sumPin != nil {
		r, err := u.pIn.Backprop(sumPin)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}

	sumRin, err := accum.SumAccumulators(accsRin)
	if err != nil {
		return nil, err
	}
	if sumRin != nil {
		r, err := u.rIn.Backprop(sumRin)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}
	return ready, nil
}
