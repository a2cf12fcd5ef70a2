package modules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/modprop/accum"
	"github.com/katalvlaran/modprop/engine"
	"github.com/katalvlaran/modprop/matrix"
	"github.com/katalvlaran/modprop/modules"
)

func TestPredictForepropAppliesTransitionAndAddsNoise(t *testing.T) {
	a, err := matrix.NewDenseFromRows([][]float64{{1, 1}, {0, 1}})
	require.NoError(t, err)
	x, err := matrix.NewDenseFromRows([][]float64{{1}, {2}})
	require.NoError(t, err)
	p, err := matrix.NewDenseFromRows([][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)
	q, err := matrix.NewDenseFromRows([][]float64{{0.1, 0}, {0, 0.1}})
	require.NoError(t, err)

	pred := modules.NewPredict(a)
	cx := modules.NewConstant(x, engine.KindVector)
	cp := modules.NewConstant(p, engine.KindMatrix)
	cq := modules.NewConstant(q, engine.KindMatrix)
	require.NoError(t, engine.Link(pred.XIn(), cx.OutPort()))
	require.NoError(t, engine.Link(pred.PIn(), cp.OutPort()))
	require.NoError(t, engine.Link(pred.QIn(), cq.OutPort()))

	require.NoError(t, engine.Foreprop(cx))
	require.NoError(t, engine.Foreprop(cp))
	require.NoError(t, engine.Foreprop(cq))

	wantX, err := matrix.NewDenseFromRows([][]float64{{3}, {2}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(pred.XOut().Value(), wantX, 1e-9))

	// A*P*A^T + Q with A=[[1,1],[0,1]], P=I: APAt = [[2,1],[1,1]]
	wantP, err := matrix.NewDenseFromRows([][]float64{{2.1, 1}, {1, 1.1}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(pred.POut().Value(), wantP, 1e-9))
}

func TestPredictBackpropXJacobianIsA(t *testing.T) {
	a, err := matrix.NewDenseFromRows([][]float64{{2, 0}, {0, 3}})
	require.NoError(t, err)
	x, err := matrix.NewDenseFromRows([][]float64{{1}, {1}})
	require.NoError(t, err)
	p, err := matrix.NewDenseFromRows([][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)
	q, err := matrix.NewDenseFromRows([][]float64{{0, 0}, {0, 0}})
	require.NoError(t, err)

	pred := modules.NewPredict(a)
	cx := modules.NewConstant(x, engine.KindVector)
	cp := modules.NewConstant(p, engine.KindMatrix)
	cq := modules.NewConstant(q, engine.KindMatrix)
	require.NoError(t, engine.Link(pred.XIn(), cx.OutPort()))
	require.NoError(t, engine.Link(pred.PIn(), cp.OutPort()))
	require.NoError(t, engine.Link(pred.QIn(), cq.OutPort()))

	sinkX := modules.NewSink(engine.KindVector)
	sinkP := modules.NewSink(engine.KindMatrix)
	require.NoError(t, engine.Link(sinkX.InPort(), pred.XOut()))
	require.NoError(t, engine.Link(sinkP.InPort(), pred.POut()))

	require.NoError(t, engine.Foreprop(cx))
	require.NoError(t, engine.Foreprop(cp))
	require.NoError(t, engine.Foreprop(cq))

	sinkX.SetSeed(accum.NewUnbounded(matrix.MustIdentity(2)))
	sinkP.SetSeed(accum.NewUnbounded(matrix.MustIdentity(4)))
	require.NoError(t, engine.Backprop(sinkX))
	require.NoError(t, engine.Backprop(sinkP))

	got, ok := cx.BackpropValue()
	require.True(t, ok)
	require.True(t, matrix.Equal(got, a, 1e-9))
}

func TestUpdateForepropAndBackpropShapes(t *testing.T) {
	c, err := matrix.NewDenseFromRows([][]float64{{1, 0}})
	require.NoError(t, err)
	y, err := matrix.NewDenseFromRows([][]float64{{1.5}})
	require.NoError(t, err)
	x, err := matrix.NewDenseFromRows([][]float64{{1}, {0}})
	require.NoError(t, err)
	p, err := matrix.NewDenseFromRows([][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)
	r, err := matrix.NewDenseFromRows([][]float64{{0.5}})
	require.NoError(t, err)

	upd := modules.NewUpdate(y, c)
	cx := modules.NewConstant(x, engine.KindVector)
	cp := modules.NewConstant(p, engine.KindMatrix)
	cr := modules.NewConstant(r, engine.KindMatrix)
	require.NoError(t, engine.Link(upd.XIn(), cx.OutPort()))
	require.NoError(t, engine.Link(upd.PIn(), cp.OutPort()))
	require.NoError(t, engine.Link(upd.RIn(), cr.OutPort()))

	sinkX := modules.NewSink(engine.KindVector)
	sinkP := modules.NewSink(engine.KindMatrix)
	sinkV := modules.NewSink(engine.KindVector)
	sinkS := modules.NewSink(engine.KindMatrix)
	require.NoError(t, engine.Link(sinkX.InPort(), upd.XOut()))
	require.NoError(t, engine.Link(sinkP.InPort(), upd.POut()))
	require.NoError(t, engine.Link(sinkV.InPort(), upd.VOut()))
	require.NoError(t, engine.Link(sinkS.InPort(), upd.SOut()))

	require.NoError(t, engine.Foreprop(cx))
	require.NoError(t, engine.Foreprop(cp))
	require.NoError(t, engine.Foreprop(cr))

	wantV, err := matrix.NewDenseFromRows([][]float64{{0.5}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(upd.VOut().Value(), wantV, 1e-9))

	wantS, err := matrix.NewDenseFromRows([][]float64{{1.5}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(upd.SOut().Value(), wantS, 1e-9))

	// Each sink is seeded as a row vector of ones matching its own output
	// dimension, as if differentiating a single shared scalar quantity —
	// the only way contributions converging on a shared input (P_in,
	// R_in receive from several outputs) stay dimensionally consistent.
	onesRow := func(n int) matrix.Matrix {
		m := matrix.MustDense(1, n)
		for i := 0; i < n; i++ {
			_ = m.Set(0, i, 1)
		}
		return m
	}
	sinkX.SetSeed(accum.NewUnbounded(onesRow(2)))
	sinkP.SetSeed(accum.NewUnbounded(onesRow(4)))
	sinkV.SetSeed(accum.NewUnbounded(onesRow(1)))
	sinkS.SetSeed(accum.NewUnbounded(onesRow(1)))
	require.NoError(t, engine.Backprop(sinkX))
	require.NoError(t, engine.Backprop(sinkP))
	require.NoError(t, engine.Backprop(sinkV))
	require.NoError(t, engine.Backprop(sinkS))

	gotX, ok := cx.BackpropValue()
	require.True(t, ok)
	require.Equal(t, 1, gotX.Rows())
	require.Equal(t, 2, gotX.Cols())

	gotP, ok := cp.BackpropValue()
	require.True(t, ok)
	require.Equal(t, 1, gotP.Rows())
	require.Equal(t, 4, gotP.Cols())

	gotR, ok := cr.BackpropValue()
	require.True(t, ok)
	require.Equal(t, 1, gotR.Rows())
	require.Equal(t, 1, gotR.Cols())
}
