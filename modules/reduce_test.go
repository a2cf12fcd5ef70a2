package modules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/modprop/accum"
	"github.com/katalvlaran/modprop/engine"
	"github.com/katalvlaran/modprop/matrix"
	"github.com/katalvlaran/modprop/modules"
)

func scalarConst(t *testing.T, x float64) *modules.Constant {
	t.Helper()
	v, err := matrix.NewDenseFromRows([][]float64{{x}})
	require.NoError(t, err)
	return modules.NewConstant(v, engine.KindScalar)
}

func TestMeanForepropAveragesInputs(t *testing.T) {
	m := modules.NewMean()
	c1 := scalarConst(t, 1)
	c2 := scalarConst(t, 2)
	c3 := scalarConst(t, 6)
	require.NoError(t, engine.Link(m.CreateInput(), c1.OutPort()))
	require.NoError(t, engine.Link(m.CreateInput(), c2.OutPort()))
	require.NoError(t, engine.Link(m.CreateInput(), c3.OutPort()))

	require.NoError(t, engine.Foreprop(c1))
	require.NoError(t, engine.Foreprop(c2))
	require.NoError(t, engine.Foreprop(c3))

	want, err := matrix.NewDenseFromRows([][]float64{{3}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(m.OutPort().Value(), want, 1e-12))
}

func TestMeanBackpropDistributesEqualWeight(t *testing.T) {
	m := modules.NewMean()
	c1 := scalarConst(t, 1)
	c2 := scalarConst(t, 2)
	require.NoError(t, engine.Link(m.CreateInput(), c1.OutPort()))
	require.NoError(t, engine.Link(m.CreateInput(), c2.OutPort()))
	sink := modules.NewSink(engine.KindScalar)
	require.NoError(t, engine.Link(sink.InPort(), m.OutPort()))

	require.NoError(t, engine.Foreprop(c1))
	require.NoError(t, engine.Foreprop(c2))

	one, err := matrix.NewDenseFromRows([][]float64{{1}})
	require.NoError(t, err)
	sink.SetSeed(accum.NewUnbounded(one))
	require.NoError(t, engine.Backprop(sink))

	half, err := matrix.NewDenseFromRows([][]float64{{0.5}})
	require.NoError(t, err)
	got1, ok := c1.BackpropValue()
	require.True(t, ok)
	require.True(t, matrix.Equal(got1, half, 1e-12))
	got2, ok := c2.BackpropValue()
	require.True(t, ok)
	require.True(t, matrix.Equal(got2, half, 1e-12))
}

func TestMeanInvalidateResetsCounterAndAllowsRerun(t *testing.T) {
	m := modules.NewMean()
	c1 := scalarConst(t, 1)
	c2 := scalarConst(t, 2)
	require.NoError(t, engine.Link(m.CreateInput(), c1.OutPort()))
	require.NoError(t, engine.Link(m.CreateInput(), c2.OutPort()))

	require.NoError(t, engine.Foreprop(c1))
	require.NoError(t, engine.Foreprop(c2))
	require.True(t, m.OutPort().HasValue())

	next, err := matrix.NewDenseFromRows([][]float64{{10}})
	require.NoError(t, err)
	require.NoError(t, c1.SetValue(next))
	require.False(t, m.OutPort().HasValue())

	require.NoError(t, engine.Foreprop(c1))
	require.NoError(t, engine.Foreprop(c2))

	want, err := matrix.NewDenseFromRows([][]float64{{6}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(m.OutPort().Value(), want, 1e-12))
}

func TestWeightedSumForepropWeightsContributions(t *testing.T) {
	w := modules.NewWeightedSum()
	v1, wt1 := w.CreateInputs()
	v2, wt2 := w.CreateInputs()

	cv1 := scalarConst(t, 1)
	cw1 := scalarConst(t, 3)
	cv2 := scalarConst(t, 5)
	cw2 := scalarConst(t, 1)
	require.NoError(t, engine.Link(v1, cv1.OutPort()))
	require.NoError(t, engine.Link(wt1, cw1.OutPort()))
	require.NoError(t, engine.Link(v2, cv2.OutPort()))
	require.NoError(t, engine.Link(wt2, cw2.OutPort()))

	for _, c := range []*modules.Constant{cv1, cw1, cv2, cw2} {
		require.NoError(t, engine.Foreprop(c))
	}

	// (3*1 + 1*5) / (3+1) = 2
	want, err := matrix.NewDenseFromRows([][]float64{{2}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(w.OutPort().Value(), want, 1e-12))
}
