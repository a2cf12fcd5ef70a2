package modules

import (
	"math"

	"github.com/katalvlaran/modprop/engine"
	"github.com/katalvlaran/modprop/matrix"
)

// LogLikelihood computes the log-likelihood of a zero-mean multivariate
// Gaussian sample under covariance S_in, for a sample x_in with its mean
// already subtracted.
type LogLikelihood struct {
	engine.ModuleBase
	xIn  *engine.InputPort
	sIn  *engine.InputPort
	llOut *engine.OutputPort

	choL *matrix.Dense
	sInv *matrix.Dense
	xInv []float64
}

// NewLogLikelihood creates a LogLikelihood module. x_in is a vector port,
// S_in a matrix port, and ll_out a scalar port.
func NewLogLikelihood() *LogLikelihood {
	l := &LogLikelihood{}
	l.Init(l)
	l.xIn = engine.NewInputPort(l, engine.KindVector)
	l.sIn = engine.NewInputPort(l, engine.KindMatrix)
	l.llOut = engine.NewOutputPort(l, engine.KindScalar)
	l.RegisterInputs(l.xIn, l.sIn)
	l.RegisterOutputs(l.llOut)
	return l
}

func (l *LogLikelihood) XIn() *engine.InputPort    { return l.xIn }
func (l *LogLikelihood) SIn() *engine.InputPort    { return l.sIn }
func (l *LogLikelihood) LLOut() *engine.OutputPort { return l.llOut }

func (l *LogLikelihood) Foreprop() ([]engine.Module, error) {
	if !l.ForepropReady() {
		return nil, nil
	}
	k := l.xIn.Value().Rows()
	cho, err := matrix.Cholesky(l.sIn.Value())
	if err != nil {
		return nil, err
	}
	l.choL = cho

	sInv, err := matrix.Inverse(cho)
	if err != nil {
		return nil, err
	}
	l.sInv = sInv

	logdet, err := matrix.LogDet(cho)
	if err != nil {
		return nil, err
	}
	regTerm := -0.5 * (float64(k)*math.Log(2*math.Pi) + logdet)

	xVec := toSlice(l.xIn.Value())
	xInvMat, err := matrix.CholeskySolveLeft(cho, fromSlice(xVec))
	if err != nil {
		return nil, err
	}
	xInv := toSlice(xInvMat)
	l.xInv = xInv

	expTerm := -0.5 * dot(xVec, xInv)

	out := matrix.MustDense(1, 1)
	_ = out.Set(0, 0, regTerm+expTerm)
	return l.llOut.Foreprop(out), nil
}

// Backprop computes dll_dxin = -x_inv and
// dll_dSin = -0.5*vec(Sinv) + 0.5*vec(x*x^T)'*kron(Sinv^T, Sinv),
// following the Gaussian log-likelihood's closed-form reverse Jacobians.
func (l *LogLikelihood) Backprop() ([]engine.Module, error) {
	if !l.BackpropReady() {
		return nil, nil
	}
	k := len(l.xInv)
	dllDxin := matrix.MustDense(1, k)
	for i, v := range l.xInv {
		_ = dllDxin.Set(0, i, -v)
	}

	var ready []engine.Module
	doDxin, ok, err := l.llOut.ChainBackprop(dllDxin)
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := l.xIn.Backprop(doDxin)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}

	xVec := toSlice(l.xIn.Value())
	xxT := outer(xVec, xVec)
	sInvVec, err := matrix.Flatten(l.sInv)
	if err != nil {
		return nil, err
	}
	xxTVec, err := matrix.Flatten(xxT)
	if err != nil {
		return nil, err
	}

	sInvT, err := matrix.Transpose(l.sInv)
	if err != nil {
		return nil, err
	}
	kronTerm, err := matrix.Kron(sInvT, l.sInv)
	if err != nil {
		return nil, err
	}

	n := l.sIn.Value().Rows() * l.sIn.Value().Cols()
	xxTRow := matrix.MustDense(1, n)
	for i, v := range xxTVec {
		_ = xxTRow.Set(0, i, v)
	}
	prod, err := matrix.Mul(xxTRow, kronTerm)
	if err != nil {
		return nil, err
	}

	dllDSin := matrix.MustDense(1, n)
	for i, v := range sInvVec {
		p, _ := prod.At(0, i)
		_ = dllDSin.Set(0, i, -0.5*v+0.5*p)
	}

	doDSin, ok, err := l.llOut.ChainBackprop(dllDSin)
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := l.sIn.Backprop(doDSin)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}
	return ready, nil
}
