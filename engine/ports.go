package engine

import (
	"github.com/katalvlaran/modprop/accum"
	"github.com/katalvlaran/modprop/matrix"
)

// InputPort is an input to a Module, normally held as a struct field of
// the owning module and wired to a producer's OutputPort via Link.
type InputPort struct {
	owner  Module
	kind   PortKind
	value  matrix.Matrix
	source *OutputPort
}

// NewInputPort creates an input port of the given kind owned by m.
func NewInputPort(owner Module, kind PortKind) *InputPort {
	return &InputPort{owner: owner, kind: kind}
}

// HasValue reports whether the port currently carries a value.
func (p *InputPort) HasValue() bool { return p.value != nil }

// Value returns the port's current value, or nil if unset.
func (p *InputPort) Value() matrix.Matrix { return p.value }

// RegisterSource attaches src as this port's upstream producer.
func (p *InputPort) RegisterSource(src *OutputPort) { p.source = src }

// Invalidate clears this port's value and propagates invalidation to its
// owning module and upstream source.
func (p *InputPort) Invalidate() []Module {
	if !p.HasValue() {
		return nil
	}
	p.value = nil

	var ready []Module
	if !p.owner.IsInvalid() {
		ready = append(ready, p.owner)
	}
	if p.source != nil {
		ready = append(ready, p.source.Invalidate()...)
	}
	return ready
}

// Foreprop sets the port's value (normally called by an upstream
// OutputPort) and returns the owning module if it became foreprop-ready.
func (p *InputPort) Foreprop(v matrix.Matrix) []Module {
	p.value = v
	if p.owner.ForepropReady() {
		return []Module{p.owner}
	}
	return nil
}

// Backprop forwards a gradient accumulator to this port's upstream source,
// if any. Returns the modules that became ready as a result.
func (p *InputPort) Backprop(doDx accum.Accumulator) ([]Module, error) {
	if p.source == nil {
		return nil, nil
	}
	return p.source.Backprop(doDx)
}

// OutputPort is an output from a Module, normally held as a struct field
// of the owning module and wired to zero or more consumers' InputPorts.
type OutputPort struct {
	owner       Module
	kind        PortKind
	value       matrix.Matrix
	consumers   []*InputPort
	backpropAcc accum.Accumulator
	numBacks    int
}

// NewOutputPort creates an output port of the given kind owned by m.
func NewOutputPort(owner Module, kind PortKind) *OutputPort {
	return &OutputPort{owner: owner, kind: kind}
}

// HasValue reports whether the port currently carries a value.
func (p *OutputPort) HasValue() bool { return p.value != nil }

// Value returns the port's current value, or nil if unset.
func (p *OutputPort) Value() matrix.Matrix { return p.value }

// NumConsumers returns the number of registered consumer input ports.
func (p *OutputPort) NumConsumers() int { return len(p.consumers) }

// RegisterConsumer attaches con as a downstream consumer of this port.
func (p *OutputPort) RegisterConsumer(con *InputPort) {
	p.consumers = append(p.consumers, con)
}

// Invalidate clears this port's value and accumulator state and
// propagates invalidation to its owning module and every consumer.
func (p *OutputPort) Invalidate() []Module {
	if !p.HasValue() {
		return nil
	}
	p.backpropAcc = nil
	p.numBacks = 0
	p.value = nil

	var ready []Module
	if !p.owner.IsInvalid() {
		ready = append(ready, p.owner)
	}
	for _, con := range p.consumers {
		ready = append(ready, con.Invalidate()...)
	}
	return ready
}

// Foreprop sets this port's value and pushes it to every registered
// consumer, normally called by the owning module. Returns the modules
// that became foreprop-ready as a result.
func (p *OutputPort) Foreprop(v matrix.Matrix) []Module {
	p.value = v
	var ready []Module
	for _, con := range p.consumers {
		ready = append(ready, con.Foreprop(p.value)...)
	}
	return ready
}

// Backprop merges an arriving gradient contribution into this port's
// accumulator, normally called by a connected InputPort. Returns
// ErrNullAccumulator if doDx is nil, and ErrOverArrival if more
// contributions arrive than there are registered consumers.
func (p *OutputPort) Backprop(doDx accum.Accumulator) ([]Module, error) {
	if doDx == nil {
		return nil, ErrNullAccumulator
	}

	doDx.TickDescent()
	if p.backpropAcc == nil {
		p.backpropAcc = doDx
	} else {
		merged, err := p.backpropAcc.Add(doDx)
		if err != nil {
			return nil, err
		}
		p.backpropAcc = merged
	}
	p.numBacks++

	if p.numBacks > len(p.consumers) {
		return nil, ErrOverArrival
	}

	if p.BackpropReady() && p.owner.BackpropReady() {
		return []Module{p.owner}, nil
	}
	return nil, nil
}

// BackpropReady reports whether this port has heard from every consumer.
func (p *OutputPort) BackpropReady() bool {
	return p.numBacks == len(p.consumers)
}

// ChainBackprop returns a copy of this port's accumulator, optionally
// right-multiplied by dyDx (nil skips the multiply, used when the local
// Jacobian is the identity). Returns ok=false if nothing has accumulated.
func (p *OutputPort) ChainBackprop(dyDx matrix.Matrix) (accum.Accumulator, bool, error) {
	if p.backpropAcc == nil {
		return nil, false, nil
	}
	out := p.backpropAcc.Clone()
	if dyDx != nil {
		mulled, err := out.MulRight(dyDx)
		if err != nil {
			return nil, false, err
		}
		out = mulled
	}
	return out, true, nil
}

// BackpropValue collapses this port's accumulator to a Jacobian matrix,
// returning ok=false if nothing has accumulated yet.
func (p *OutputPort) BackpropValue() (matrix.Matrix, bool) {
	if p.backpropAcc == nil {
		return nil, false
	}
	return p.backpropAcc.Retrieve()
}

// Accumulator exposes the port's raw backprop accumulator, or nil.
func (p *OutputPort) Accumulator() accum.Accumulator {
	return p.backpropAcc
}

// SeedBackprop directly installs acc as this port's accumulator, bypassing
// consumer bookkeeping. Used to seed the terminal scalar's gradient
// (do_dy/dy = 1) at the start of a backward pass.
func (p *OutputPort) SeedBackprop(acc accum.Accumulator) {
	p.backpropAcc = acc
}

// Link joins an InputPort to the OutputPort that produces its value. Both
// ports must declare the same PortKind.
func Link(in *InputPort, out *OutputPort) error {
	if in.kind != out.kind {
		return ErrWrongPortKind
	}
	in.RegisterSource(out)
	out.RegisterConsumer(in)
	return nil
}
