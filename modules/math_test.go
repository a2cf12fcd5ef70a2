package modules_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/modprop/accum"
	"github.com/katalvlaran/modprop/engine"
	"github.com/katalvlaran/modprop/matrix"
	"github.com/katalvlaran/modprop/modules"
)

func seedSinkIdentity(t *testing.T, sink *modules.Sink, n int) {
	t.Helper()
	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, n)
		row[i] = 1
		rows[i] = row
	}
	seed, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)
	sink.SetSeed(accum.NewUnbounded(seed))
}

func TestAdditionForepropAndBackprop(t *testing.T) {
	left, err := matrix.NewDenseFromRows([][]float64{{1}, {2}})
	require.NoError(t, err)
	right, err := matrix.NewDenseFromRows([][]float64{{3}, {4}})
	require.NoError(t, err)

	a := modules.NewAddition(engine.KindVector)
	cl := modules.NewConstant(left, engine.KindVector)
	cr := modules.NewConstant(right, engine.KindVector)
	require.NoError(t, engine.Link(a.LeftPort(), cl.OutPort()))
	require.NoError(t, engine.Link(a.RightPort(), cr.OutPort()))

	sink := modules.NewSink(engine.KindVector)
	require.NoError(t, engine.Link(sink.InPort(), a.OutPort()))

	require.NoError(t, engine.Foreprop(cl))
	require.NoError(t, engine.Foreprop(cr))

	want, err := matrix.NewDenseFromRows([][]float64{{4}, {6}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(a.OutPort().Value(), want, 1e-12))

	seedSinkIdentity(t, sink, 2)
	require.NoError(t, engine.Backprop(sink))

	got, ok := cl.BackpropValue()
	require.True(t, ok)
	require.True(t, matrix.Equal(got, matrix.MustIdentity(2), 1e-12))
	got, ok = cr.BackpropValue()
	require.True(t, ok)
	require.True(t, matrix.Equal(got, matrix.MustIdentity(2), 1e-12))
}

func TestDifferenceBackpropNegatesRight(t *testing.T) {
	left, err := matrix.NewDenseFromRows([][]float64{{5}})
	require.NoError(t, err)
	right, err := matrix.NewDenseFromRows([][]float64{{2}})
	require.NoError(t, err)

	d := modules.NewDifference(engine.KindScalar)
	cl := modules.NewConstant(left, engine.KindScalar)
	cr := modules.NewConstant(right, engine.KindScalar)
	require.NoError(t, engine.Link(d.LeftPort(), cl.OutPort()))
	require.NoError(t, engine.Link(d.RightPort(), cr.OutPort()))
	sink := modules.NewSink(engine.KindScalar)
	require.NoError(t, engine.Link(sink.InPort(), d.OutPort()))

	require.NoError(t, engine.Foreprop(cl))
	require.NoError(t, engine.Foreprop(cr))

	want, err := matrix.NewDenseFromRows([][]float64{{3}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(d.OutPort().Value(), want, 1e-12))

	seedSinkIdentity(t, sink, 1)
	require.NoError(t, engine.Backprop(sink))

	gotL, ok := cl.BackpropValue()
	require.True(t, ok)
	require.True(t, matrix.Equal(gotL, matrix.MustIdentity(1), 1e-12))

	gotR, ok := cr.BackpropValue()
	require.True(t, ok)
	negOne, err := matrix.NewDenseFromRows([][]float64{{-1}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(gotR, negOne, 1e-12))
}

func TestMatrixProductForeprop(t *testing.T) {
	left, err := matrix.NewDenseFromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	right, err := matrix.NewDenseFromRows([][]float64{{5}, {6}})
	require.NoError(t, err)

	mp := modules.NewMatrixProduct(engine.KindMatrix)
	cl := modules.NewConstant(left, engine.KindMatrix)
	cr := modules.NewConstant(right, engine.KindMatrix)
	require.NoError(t, engine.Link(mp.LeftPort(), cl.OutPort()))
	require.NoError(t, engine.Link(mp.RightPort(), cr.OutPort()))

	require.NoError(t, engine.Foreprop(cl))
	require.NoError(t, engine.Foreprop(cr))

	want, err := matrix.NewDenseFromRows([][]float64{{17}, {39}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(mp.OutPort().Value(), want, 1e-12))
}

func TestMatrixProductBackpropKroneckerJacobians(t *testing.T) {
	left, err := matrix.NewDenseFromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	right, err := matrix.NewDenseFromRows([][]float64{{5}, {6}})
	require.NoError(t, err)

	mp := modules.NewMatrixProduct(engine.KindMatrix)
	cl := modules.NewConstant(left, engine.KindMatrix)
	cr := modules.NewConstant(right, engine.KindMatrix)
	require.NoError(t, engine.Link(mp.LeftPort(), cl.OutPort()))
	require.NoError(t, engine.Link(mp.RightPort(), cr.OutPort()))
	sink := modules.NewSink(engine.KindMatrix)
	require.NoError(t, engine.Link(sink.InPort(), mp.OutPort()))

	require.NoError(t, engine.Foreprop(cl))
	require.NoError(t, engine.Foreprop(cr))

	seedSinkIdentity(t, sink, 2)
	require.NoError(t, engine.Backprop(sink))

	gotRight, ok := cr.BackpropValue()
	require.True(t, ok)
	wantRight, err := matrix.Kron(matrix.MustIdentity(1), left)
	require.NoError(t, err)
	require.True(t, matrix.Equal(gotRight, wantRight, 1e-9))

	gotLeft, ok := cl.BackpropValue()
	require.True(t, ok)
	rightT, err := matrix.Transpose(right)
	require.NoError(t, err)
	wantLeft, err := matrix.Kron(rightT, matrix.MustIdentity(2))
	require.NoError(t, err)
	require.True(t, matrix.Equal(gotLeft, wantLeft, 1e-9))
}

func TestExponentialForepropAndBackprop(t *testing.T) {
	in, err := matrix.NewDenseFromRows([][]float64{{0}, {1}})
	require.NoError(t, err)

	e := modules.NewExponential(engine.KindVector)
	c := modules.NewConstant(in, engine.KindVector)
	require.NoError(t, engine.Link(e.InPort(), c.OutPort()))
	sink := modules.NewSink(engine.KindVector)
	require.NoError(t, engine.Link(sink.InPort(), e.OutPort()))

	require.NoError(t, engine.Foreprop(c))

	want, err := matrix.NewDenseFromRows([][]float64{{1}, {math.E}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(e.OutPort().Value(), want, 1e-9))

	seedSinkIdentity(t, sink, 2)
	require.NoError(t, engine.Backprop(sink))

	got, ok := c.BackpropValue()
	require.True(t, ok)
	wantJac, err := matrix.NewDenseFromRows([][]float64{{1, 0}, {0, math.E}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(got, wantJac, 1e-9))
}
