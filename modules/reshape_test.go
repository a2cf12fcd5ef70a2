package modules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/modprop/accum"
	"github.com/katalvlaran/modprop/engine"
	"github.com/katalvlaran/modprop/matrix"
	"github.com/katalvlaran/modprop/modules"
)

func TestDiagonalReshapeForeprop(t *testing.T) {
	v, err := matrix.NewDenseFromRows([][]float64{{2}, {3}})
	require.NoError(t, err)

	d := modules.NewDiagonalReshape()
	c := modules.NewConstant(v, engine.KindVector)
	require.NoError(t, engine.Link(d.VecIn(), c.OutPort()))

	require.NoError(t, engine.Foreprop(c))

	want, err := matrix.NewDenseFromRows([][]float64{{2, 0}, {0, 3}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(d.DiagOut().Value(), want, 1e-12))
}

func TestDiagonalReshapeBackpropPlacesIdentityRows(t *testing.T) {
	v, err := matrix.NewDenseFromRows([][]float64{{2}, {3}})
	require.NoError(t, err)

	d := modules.NewDiagonalReshape()
	c := modules.NewConstant(v, engine.KindVector)
	require.NoError(t, engine.Link(d.VecIn(), c.OutPort()))
	sink := modules.NewSink(engine.KindMatrix)
	require.NoError(t, engine.Link(sink.InPort(), d.DiagOut()))

	require.NoError(t, engine.Foreprop(c))

	seed, err := matrix.NewDenseFromRows([][]float64{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}})
	require.NoError(t, err)
	sink.SetSeed(accum.NewUnbounded(seed))
	require.NoError(t, engine.Backprop(sink))

	got, ok := c.BackpropValue()
	require.True(t, ok)
	// column-major flat indices of the 2x2 diagonal are 0 and 3
	want, err := matrix.NewDenseFromRows([][]float64{{1, 0}, {0, 0}, {0, 0}, {0, 1}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(got, want, 1e-12))
}

func TestCholeskyReshapeForeprop(t *testing.T) {
	d, err := matrix.NewDenseFromRows([][]float64{{2}, {3}})
	require.NoError(t, err)
	l, err := matrix.NewDenseFromRows([][]float64{{0.5}})
	require.NoError(t, err)

	cr := modules.NewCholeskyReshape()
	cd := modules.NewConstant(d, engine.KindVector)
	cl := modules.NewConstant(l, engine.KindVector)
	require.NoError(t, engine.Link(cr.DIn(), cd.OutPort()))
	require.NoError(t, engine.Link(cr.LIn(), cl.OutPort()))

	require.NoError(t, engine.Foreprop(cd))
	require.NoError(t, engine.Foreprop(cl))

	// L = [[2,0],[0.5,3]]; S = L*L^T
	want, err := matrix.NewDenseFromRows([][]float64{{4, 1}, {1, 9.25}})
	require.NoError(t, err)
	require.True(t, matrix.Equal(cr.SOut().Value(), want, 1e-9))
}

func TestCholeskyReshapeBackpropRunsWithoutError(t *testing.T) {
	d, err := matrix.NewDenseFromRows([][]float64{{2}, {3}})
	require.NoError(t, err)
	l, err := matrix.NewDenseFromRows([][]float64{{0.5}})
	require.NoError(t, err)

	cr := modules.NewCholeskyReshape()
	cd := modules.NewConstant(d, engine.KindVector)
	cl := modules.NewConstant(l, engine.KindVector)
	require.NoError(t, engine.Link(cr.DIn(), cd.OutPort()))
	require.NoError(t, engine.Link(cr.LIn(), cl.OutPort()))
	sink := modules.NewSink(engine.KindMatrix)
	require.NoError(t, engine.Link(sink.InPort(), cr.SOut()))

	require.NoError(t, engine.Foreprop(cd))
	require.NoError(t, engine.Foreprop(cl))

	seed := matrix.MustIdentity(4)
	sink.SetSeed(accum.NewUnbounded(seed))
	require.NoError(t, engine.Backprop(sink))

	gotD, ok := cd.BackpropValue()
	require.True(t, ok)
	require.Equal(t, 4, gotD.Rows())
	require.Equal(t, 2, gotD.Cols())

	gotL, ok := cl.BackpropValue()
	require.True(t, ok)
	require.Equal(t, 4, gotL.Rows())
	require.Equal(t, 1, gotL.Cols())
}
