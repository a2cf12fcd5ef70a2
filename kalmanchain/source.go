package kalmanchain

import (
	"github.com/katalvlaran/modprop/engine"
	"github.com/katalvlaran/modprop/matrix"
	"github.com/katalvlaran/modprop/modules"
)

// Source is anything that can seed a leaf of the chain: it exposes a
// single output port and knows how to forward- and invalidate-propagate
// itself. ConstantSource (which wraps a modules.Constant) and
// psdparam.Source both satisfy it.
type Source interface {
	OutPort() *engine.OutputPort
	Foreprop() error
	Invalidate() error
}

// ParamSource is a Source that additionally exposes a flat, settable
// parameter vector and the gradient of the chain's terminal scalar with
// respect to it. The Q and R noise sources of a Chain must implement
// this; psdparam.Source is the constant-PSD implementation used by the
// standard chain-assembly path.
type ParamSource interface {
	Source
	Theta() []float64
	SetTheta(theta []float64) error
	BackpropValue() (matrix.Matrix, bool)
}

// ConstantSource adapts a modules.Constant to the Source interface,
// letting a fixed x0/P0 leaf drive Foreprop/Invalidate through the same
// interface a parameterized Q/R source uses.
type ConstantSource struct {
	*modules.Constant
}

// NewConstantSource wraps a fresh Constant holding value as a Source.
func NewConstantSource(value matrix.Matrix, kind engine.PortKind) *ConstantSource {
	return &ConstantSource{Constant: modules.NewConstant(value, kind)}
}

// Foreprop drives this leaf's forward pass.
func (c *ConstantSource) Foreprop() error { return engine.Foreprop(c.Constant) }

// Invalidate drives this leaf's invalidation pass.
func (c *ConstantSource) Invalidate() error { return engine.Invalidate(c.Constant) }

var (
	_ Source = (*ConstantSource)(nil)
)
