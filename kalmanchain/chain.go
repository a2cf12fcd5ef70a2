package kalmanchain

import (
	"github.com/katalvlaran/modprop/accum"
	"github.com/katalvlaran/modprop/engine"
	"github.com/katalvlaran/modprop/matrix"
	"github.com/katalvlaran/modprop/modules"
)

// Chain assembles a sequence of Kalman predict/update steps sharing one
// process-noise source and one observation-noise source, reduces every
// step's log-likelihood to a single mean via modules.Mean, and exposes
// that mean as a scalar a caller can forward-propagate, differentiate
// with respect to (Q-params, R-params), and optimize.
type Chain struct {
	x0, p0 Source
	q, r   ParamSource

	meanReductor *modules.Mean
	meanSink     *modules.Sink

	lastX, lastP *engine.OutputPort

	predicts    []*modules.Predict
	updates     []*modules.Update
	likelihoods []*modules.LogLikelihood
}

// NewChain starts a chain rooted at the initial state x0 and covariance
// p0, sharing process-noise source q and observation-noise source r
// across every step added with AddPredict/AddUpdate.
func NewChain(x0, p0 Source, q, r ParamSource) (*Chain, error) {
	c := &Chain{x0: x0, p0: p0, q: q, r: r}
	c.meanReductor = modules.NewMean()
	c.meanSink = modules.NewSink(engine.KindScalar)
	if err := engine.Link(c.meanSink.InPort(), c.meanReductor.OutPort()); err != nil {
		return nil, err
	}
	c.lastX = x0.OutPort()
	c.lastP = p0.OutPort()
	return c, nil
}

// AddPredict appends a Kalman predict step with fixed transition matrix a,
// wired from the chain's current state/covariance and the shared Q
// source, and advances the chain's state/covariance to this step's
// outputs.
func (c *Chain) AddPredict(a matrix.Matrix) (*modules.Predict, error) {
	p := modules.NewPredict(a)
	if err := engine.Link(p.XIn(), c.lastX); err != nil {
		return nil, err
	}
	if err := engine.Link(p.PIn(), c.lastP); err != nil {
		return nil, err
	}
	if err := engine.Link(p.QIn(), c.q.OutPort()); err != nil {
		return nil, err
	}

	c.lastX, c.lastP = p.XOut(), p.POut()
	c.predicts = append(c.predicts, p)
	return p, nil
}

// AddUpdate appends a Kalman update step observing y through observation
// matrix cMat, wired from the chain's current state/covariance and the
// shared R source. The step's innovation and innovation covariance feed a
// fresh LogLikelihood module whose output joins the chain's running mean.
// The chain's state/covariance advance to this step's outputs.
func (c *Chain) AddUpdate(cMat, y matrix.Matrix) (*modules.Update, *modules.LogLikelihood, error) {
	u := modules.NewUpdate(y, cMat)
	if err := engine.Link(u.XIn(), c.lastX); err != nil {
		return nil, nil, err
	}
	if err := engine.Link(u.PIn(), c.lastP); err != nil {
		return nil, nil, err
	}
	if err := engine.Link(u.RIn(), c.r.OutPort()); err != nil {
		return nil, nil, err
	}

	ll := modules.NewLogLikelihood()
	if err := engine.Link(ll.XIn(), u.VOut()); err != nil {
		return nil, nil, err
	}
	if err := engine.Link(ll.SIn(), u.SOut()); err != nil {
		return nil, nil, err
	}
	if err := engine.Link(c.meanReductor.CreateInput(), ll.LLOut()); err != nil {
		return nil, nil, err
	}

	c.lastX, c.lastP = u.XOut(), u.POut()
	c.updates = append(c.updates, u)
	c.likelihoods = append(c.likelihoods, ll)
	return u, ll, nil
}

// Foreprop drives every leaf source's forward pass and returns the
// resulting mean observation log-likelihood.
func (c *Chain) Foreprop() (matrix.Matrix, error) {
	if err := c.x0.Foreprop(); err != nil {
		return nil, err
	}
	if err := c.p0.Foreprop(); err != nil {
		return nil, err
	}
	if err := c.q.Foreprop(); err != nil {
		return nil, err
	}
	if err := c.r.Foreprop(); err != nil {
		return nil, err
	}
	return c.meanSink.Value(), nil
}

// Invalidate clears every leaf source and the values/accumulators that
// depend on them, preparing the chain for a fresh Foreprop.
func (c *Chain) Invalidate() error {
	if err := c.x0.Invalidate(); err != nil {
		return err
	}
	if err := c.p0.Invalidate(); err != nil {
		return err
	}
	if err := c.q.Invalidate(); err != nil {
		return err
	}
	return c.r.Invalidate()
}

// Backprop seeds the mean sink and drives a backward pass across the
// whole chain, returning the gradient of the mean log-likelihood with
// respect to the concatenated (Q-params, R-params) vector. maxDepth < 0
// selects an unbounded accumulator; maxDepth > 0 truncates backprop to
// maxDepth chained modules; maxDepth == 0 returns
// accum.ErrUnderspecifiedInit.
func (c *Chain) Backprop(maxDepth int) (matrix.Matrix, error) {
	one := matrix.MustIdentity(1)
	var seed accum.Accumulator
	if maxDepth < 0 {
		seed = accum.NewUnbounded(one)
	} else {
		t, err := accum.NewTruncated(one, maxDepth)
		if err != nil {
			return nil, err
		}
		seed = t
	}

	c.meanSink.SetSeed(seed)
	if err := engine.Backprop(c.meanSink); err != nil {
		return nil, err
	}

	qGrad, qOk := c.q.BackpropValue()
	rGrad, rOk := c.r.BackpropValue()
	return hstack(len(c.q.Theta()), qGrad, qOk, len(c.r.Theta()), rGrad, rOk)
}

// GetTheta returns the chain's current flat parameter vector: the Q
// source's theta followed by the R source's theta.
func (c *Chain) GetTheta() []float64 {
	out := make([]float64, 0, len(c.q.Theta())+len(c.r.Theta()))
	out = append(out, c.q.Theta()...)
	out = append(out, c.r.Theta()...)
	return out
}

// SetTheta splits theta into a Q-length prefix and an R-length suffix and
// installs each half on its source, invalidating both. Returns
// ErrParamDimensionMismatch if theta's length doesn't match nQ+nR.
func (c *Chain) SetTheta(theta []float64) error {
	nQ, nR := len(c.q.Theta()), len(c.r.Theta())
	if len(theta) != nQ+nR {
		return ErrParamDimensionMismatch
	}
	if err := c.q.SetTheta(theta[:nQ]); err != nil {
		return err
	}
	return c.r.SetTheta(theta[nQ:])
}

// LatestX returns the state estimate at the end of the chain as of the
// last Foreprop.
func (c *Chain) LatestX() matrix.Matrix { return c.lastX.Value() }

// LatestP returns the state covariance at the end of the chain as of the
// last Foreprop.
func (c *Chain) LatestP() matrix.Matrix { return c.lastP.Value() }

// MeanObservationLikelihood returns the chain's reduced mean
// log-likelihood as of the last Foreprop, or nil if Foreprop hasn't run.
func (c *Chain) MeanObservationLikelihood() matrix.Matrix { return c.meanSink.Value() }

// hstack concatenates the Q and R gradient rows into a single 1x(nQ+nR)
// row, treating a missing half (ok=false, meaning no backward
// contribution reached that source) as all zeros.
func hstack(nQ int, qGrad matrix.Matrix, qOk bool, nR int, rGrad matrix.Matrix, rOk bool) (matrix.Matrix, error) {
	out, err := matrix.NewDense(1, nQ+nR)
	if err != nil {
		return nil, err
	}
	if qOk {
		for j := 0; j < nQ; j++ {
			v, _ := qGrad.At(0, j)
			_ = out.Set(0, j, v)
		}
	}
	if rOk {
		for j := 0; j < nR; j++ {
			v, _ := rGrad.At(0, j)
			_ = out.Set(0, nQ+j, v)
		}
	}
	return out, nil
}
