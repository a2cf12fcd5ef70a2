package engine

// PortKind classifies the shape class a Port carries. Link refuses to
// join ports of differing kinds, catching miswired graphs (e.g. a scalar
// output feeding a matrix input) before any value ever flows.
type PortKind int

const (
	// KindScalar marks a port as carrying a 1x1 value.
	KindScalar PortKind = iota
	// KindVector marks a port as carrying an Nx1 column value.
	KindVector
	// KindMatrix marks a port as carrying a general RxC value.
	KindMatrix
)

// Module is the contract every node in the dataflow graph implements. A
// Module owns a fixed or variable-arity set of input and output Ports and
// reacts to the three passes the Scheduler drives: Foreprop (forward
// evaluation), Backprop (reverse-mode gradient accumulation), and
// Invalidate (clearing cached values and accumulators for a rerun).
type Module interface {
	// ForepropReady reports whether the module has everything it needs to
	// run Foreprop: all inputs carry a value and not all outputs do yet.
	ForepropReady() bool

	// Foreprop computes this module's output(s) from its current input
	// values and pushes them downstream. Returns the modules that became
	// foreprop-ready as a result, for the Scheduler to continue driving.
	Foreprop() ([]Module, error)

	// BackpropReady reports whether every output has received contributions
	// from all of its consumers and is ready to propagate a gradient
	// backward through this module.
	BackpropReady() bool

	// Backprop computes the Jacobian of the terminal scalar with respect
	// to each input, given the accumulators already resident on this
	// module's outputs, and pushes them upstream. Returns the modules that
	// became backprop-ready as a result.
	Backprop() ([]Module, error)

	// IsInvalid reports whether every port on this module is currently
	// empty (no cached value, no accumulator).
	IsInvalid() bool

	// Invalidate clears this module's cached values/accumulators and
	// propagates the invalidation to neighboring modules. Returns the
	// modules that need to be invalidated next.
	Invalidate() []Module
}

// ModuleBase provides the default readiness/invalidation bookkeeping that
// most modules share. Embed it in a concrete module type and call Init
// with the concrete value so default methods can dispatch to any
// overrides (e.g. a variable-arity module overriding ForepropReady).
type ModuleBase struct {
	self    Module
	inputs  []*InputPort
	outputs []*OutputPort
}

// Init records the concrete Module so ModuleBase's default methods can
// call back into overridden behavior. Must be called once, immediately
// after the embedding struct is constructed.
func (b *ModuleBase) Init(self Module) {
	b.self = self
}

// RegisterInputs appends the given ports to this module's input list.
func (b *ModuleBase) RegisterInputs(ports ...*InputPort) {
	b.inputs = append(b.inputs, ports...)
}

// RegisterOutputs appends the given ports to this module's output list.
func (b *ModuleBase) RegisterOutputs(ports ...*OutputPort) {
	b.outputs = append(b.outputs, ports...)
}

// Inputs returns this module's registered input ports.
func (b *ModuleBase) Inputs() []*InputPort { return b.inputs }

// Outputs returns this module's registered output ports.
func (b *ModuleBase) Outputs() []*OutputPort { return b.outputs }

// ForepropReady is the default readiness check: every input carries a
// value and not every output does yet. An empty input list is vacuously
// ready; an empty output list is vacuously "all set", so a module with no
// outputs (a sink) is never foreprop-ready under the default rule.
func (b *ModuleBase) ForepropReady() bool {
	for _, p := range b.inputs {
		if !p.HasValue() {
			return false
		}
	}
	allOutputsSet := true
	for _, p := range b.outputs {
		if !p.HasValue() {
			allOutputsSet = false
			break
		}
	}
	return !allOutputsSet
}

// BackpropReady is the default readiness check: every output port has
// heard from all of its consumers. Vacuously true for a module with no
// outputs.
func (b *ModuleBase) BackpropReady() bool {
	for _, p := range b.outputs {
		if !p.BackpropReady() {
			return false
		}
	}
	return true
}

// IsInvalid is the default check: no input and no output carries a value.
func (b *ModuleBase) IsInvalid() bool {
	for _, p := range b.inputs {
		if p.HasValue() {
			return false
		}
	}
	for _, p := range b.outputs {
		if p.HasValue() {
			return false
		}
	}
	return true
}

// Invalidate clears every port and propagates invalidation to neighbors,
// short-circuiting if the module (via its possibly-overridden IsInvalid)
// is already fully invalid.
func (b *ModuleBase) Invalidate() []Module {
	if b.self.IsInvalid() {
		return nil
	}

	var ready []Module
	for _, p := range b.inputs {
		ready = append(ready, p.Invalidate()...)
	}
	for _, p := range b.outputs {
		ready = append(ready, p.Invalidate()...)
	}
	return ready
}
