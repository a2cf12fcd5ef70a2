package modules

import (
	"github.com/katalvlaran/modprop/accum"
	"github.com/katalvlaran/modprop/engine"
	"github.com/katalvlaran/modprop/matrix"
)

// Constant emits a fixed value on every Foreprop pass until its value is
// replaced. Replacing the value invalidates the module so downstream
// consumers recompute on the next pass.
type Constant struct {
	engine.ModuleBase
	out   *engine.OutputPort
	value matrix.Matrix
}

// NewConstant creates a Constant module holding value, with an output
// port of the given kind.
func NewConstant(value matrix.Matrix, kind engine.PortKind) *Constant {
	c := &Constant{value: value}
	c.Init(c)
	c.out = engine.NewOutputPort(c, kind)
	c.RegisterOutputs(c.out)
	return c
}

// OutPort returns the module's output port.
func (c *Constant) OutPort() *engine.OutputPort { return c.out }

// Value returns the module's current constant value.
func (c *Constant) Value() matrix.Matrix { return c.value }

// SetValue replaces the constant's value and invalidates the module so
// every downstream consumer recomputes on the next forward pass.
func (c *Constant) SetValue(v matrix.Matrix) error {
	c.value = v
	return engine.Invalidate(c)
}

// Foreprop emits the constant's current value.
func (c *Constant) Foreprop() ([]engine.Module, error) {
	if !c.ForepropReady() {
		return nil, nil
	}
	return c.out.Foreprop(c.value), nil
}

// Backprop is a no-op: Constant has no inputs to propagate into.
func (c *Constant) Backprop() ([]engine.Module, error) {
	return nil, nil
}

// BackpropValue collapses the accumulator on this constant's output port
// into a Jacobian, the entry point for reading out a parameter gradient.
func (c *Constant) BackpropValue() (matrix.Matrix, bool) {
	return c.out.BackpropValue()
}

// Sink terminates a chain with no outputs of its own. A backward pass
// begins by seeding a Sink's accumulator and driving Backprop from it.
type Sink struct {
	engine.ModuleBase
	in   *engine.InputPort
	seed accum.Accumulator
}

// NewSink creates a Sink module with an input port of the given kind.
func NewSink(kind engine.PortKind) *Sink {
	s := &Sink{}
	s.Init(s)
	s.in = engine.NewInputPort(s, kind)
	s.RegisterInputs(s.in)
	return s
}

// InPort returns the module's input port.
func (s *Sink) InPort() *engine.InputPort { return s.in }

// Value returns the value currently held at the sink's input.
func (s *Sink) Value() matrix.Matrix { return s.in.Value() }

// SetSeed installs the accumulator a backward pass will push upstream
// from this sink. Call before driving engine.Backprop(sink).
func (s *Sink) SetSeed(acc accum.Accumulator) { s.seed = acc }

// Foreprop is a no-op: Sink has no outputs to propagate to.
func (s *Sink) Foreprop() ([]engine.Module, error) {
	return nil, nil
}

// Backprop pushes a copy of the seeded accumulator into the sink's input.
func (s *Sink) Backprop() ([]engine.Module, error) {
	if !s.BackpropReady() || s.seed == nil {
		return nil, nil
	}
	return s.in.Backprop(s.seed.Clone())
}
