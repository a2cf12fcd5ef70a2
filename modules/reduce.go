package modules

import (
	"github.com/katalvlaran/modprop/engine"
	"github.com/katalvlaran/modprop/matrix"
)

// Mean is a variable-arity module that outputs the arithmetic mean of its
// inputs. It overrides the default readiness bookkeeping with an O(1)
// counter incremented on every ForepropReady call, rather than scanning
// every input on every check. Each input port's arrival calls it once, and
// Foreprop's own readiness check adds one more call after the last
// arrival; the >= threshold tolerates that extra count.
type Mean struct {
	engine.ModuleBase
	inputs     []*engine.InputPort
	out        *engine.OutputPort
	validCount int
}

// NewMean creates an empty Mean module; add sources with CreateInput.
func NewMean() *Mean {
	m := &Mean{}
	m.Init(m)
	m.out = engine.NewOutputPort(m, engine.KindScalar)
	m.RegisterOutputs(m.out)
	return m
}

// OutPort returns the module's mean output port.
func (m *Mean) OutPort() *engine.OutputPort { return m.out }

// CreateInput adds and returns a new input port feeding this mean.
func (m *Mean) CreateInput() *engine.InputPort {
	p := engine.NewInputPort(m, engine.KindScalar)
	m.inputs = append(m.inputs, p)
	m.RegisterInputs(p)
	return p
}

// IsInvalid overrides the default full-port scan with the O(1) counter.
func (m *Mean) IsInvalid() bool {
	return m.validCount == 0 && !m.out.HasValue()
}

// Invalidate resets the readiness counter before delegating to the
// default port-invalidation walk.
func (m *Mean) Invalidate() []engine.Module {
	m.validCount = 0
	return m.ModuleBase.Invalidate()
}

// ForepropReady increments the readiness counter and reports true once
// every registered input has reported in and the output hasn't fired yet.
func (m *Mean) ForepropReady() bool {
	m.validCount++
	return !m.out.HasValue() && m.validCount >= len(m.inputs)
}

func (m *Mean) Foreprop() ([]engine.Module, error) {
	if !m.ForepropReady() {
		return nil, nil
	}
	var acc float64
	for _, p := range m.inputs {
		v, _ := p.Value().At(0, 0)
		acc += v
	}
	mean := acc / float64(len(m.inputs))
	out := matrix.MustDense(1, 1)
	_ = out.Set(0, 0, mean)
	return m.out.Foreprop(out), nil
}

func (m *Mean) Backprop() ([]engine.Module, error) {
	if !m.out.BackpropReady() {
		return nil, nil
	}
	n := len(m.inputs)
	coeff := matrix.MustDense(1, 1)
	_ = coeff.Set(0, 0, 1.0/float64(n))

	var ready []engine.Module
	for _, p := range m.inputs {
		doDi, ok, err := m.out.ChainBackprop(coeff)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		r, err := p.Backprop(doDi)
		if err != nil {
			return nil, err
		}
		ready = append(ready, r...)
	}
	return ready, nil
}

// WeightedSum is a variable-arity module that outputs sum(w_i*x_i)/sum(w_i)
// over paired value/weight input ports, created together via CreateInputs.
type WeightedSum struct {
	engine.ModuleBase
	values     []*engine.InputPort
	weights    []*engine.InputPort
	out        *engine.OutputPort
	validCount int
	den        float64
}

// NewWeightedSum creates an empty WeightedSum module.
func NewWeightedSum() *WeightedSum {
	w := &WeightedSum{}
	w.Init(w)
	w.out = engine.NewOutputPort(w, engine.KindScalar)
	w.RegisterOutputs(w.out)
	return w
}

// OutPort returns the module's weighted-sum output port.
func (w *WeightedSum) OutPort() *engine.OutputPort { return w.out }

// CreateInputs adds and returns a new (value, weight) port pair.
func (w *WeightedSum) CreateInputs() (*engine.InputPort, *engine.InputPort) {
	v := engine.NewInputPort(w, engine.KindScalar)
	wt := engine.NewInputPort(w, engine.KindScalar)
	w.values = append(w.values, v)
	w.weights = append(w.weights, wt)
	w.RegisterInputs(v, wt)
	return v, wt
}

func (w *WeightedSum) IsInvalid() bool {
	return w.validCount == 0 && !w.out.HasValue()
}

func (w *WeightedSum) Invalidate() []engine.Module {
	w.validCount = 0
	return w.ModuleBase.Invalidate()
}

// ForepropReady increments the readiness counter; a (value, weight) pair
// takes two arrivals, so the threshold is twice the pair count.
func (w *WeightedSum) ForepropReady() bool {
	w.validCount++
	return !w.out.HasValue() && w.validCount >= 2*len(w.values)
}

func (w *WeightedSum) Foreprop() ([]engine.Module, error) {
	if !w.ForepropReady() {
		return nil, nil
	}
	var num, den float64
	for i := range w.values {
		x, _ := w.values[i].Value().At(0, 0)
		wt, _ := w.weights[i].Value().At(0, 0)
		num += wt * x
		den += wt
	}
	w.den = den
	out := matrix.MustDense(1, 1)
	_ = out.Set(0, 0, num/den)
	return w.out.Foreprop(out), nil
}

func (w *WeightedSum) Backprop() ([]engine.Module, error) {
	if !w.out.BackpropReady() {
		return nil, nil
	}
	meanVal, _ := w.out.Value().At(0, 0)

	var ready []engine.Module
	for i := range w.values {
		wt, _ := w.weights[i].Value().At(0, 0)
		xi, _ := w.values[i].Value().At(0, 0)

		dMeanDin := matrix.MustDense(1, 1)
		_ = dMeanDin.Set(0, 0, wt/w.den)
		doDi, ok, err := w.out.ChainBackprop(dMeanDin)
		if err != nil {
			return nil, err
		}
		if ok {
			r, err := w.values[i].Backprop(doDi)
			if err != nil {
				return nil, err
			}
			ready = append(ready, r...)
		}

		dMeanDw := matrix.MustDense(1, 1)
		_ = dMeanDw.Set(0, 0, (xi-meanVal)/w.den)
		doDw, ok, err := w.out.ChainBackprop(dMeanDw)
		if err != nil {
			return nil, err
		}
		if ok {
			r, err := w.weights[i].Backprop(doDw)
			if err != nil {
				return nil, err
			}
			ready = append(ready, r...)
		}
	}
	return ready, nil
}
