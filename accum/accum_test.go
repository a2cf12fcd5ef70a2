package accum_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/modprop/accum"
	"github.com/katalvlaran/modprop/matrix"
)

func mustDense(t *testing.T, rows [][]float64) matrix.Matrix {
	t.Helper()
	m, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)
	return m
}

func TestUnboundedAddAndRetrieve(t *testing.T) {
	a := accum.NewUnbounded(mustDense(t, [][]float64{{1, 2}}))
	b := accum.NewUnbounded(mustDense(t, [][]float64{{3, 4}}))

	sum, err := a.Add(b)
	require.NoError(t, err)

	got, ok := sum.Retrieve()
	require.True(t, ok)
	want := mustDense(t, [][]float64{{4, 6}})
	require.True(t, matrix.Equal(got, want, 1e-12))
}

func TestUnboundedEmptyIsAdditiveIdentity(t *testing.T) {
	empty := accum.NewUnbounded(nil)
	val := accum.NewUnbounded(mustDense(t, [][]float64{{5, 6}}))

	sum, err := empty.Add(val)
	require.NoError(t, err)
	got, ok := sum.Retrieve()
	require.True(t, ok)
	require.True(t, matrix.Equal(got, mustDense(t, [][]float64{{5, 6}}), 1e-12))

	_, ok = empty.Retrieve()
	require.False(t, ok)
}

func TestUnboundedTickDescentIsNoop(t *testing.T) {
	a := accum.NewUnbounded(mustDense(t, [][]float64{{1}}))
	a.TickDescent()
	_, ok := a.Retrieve()
	require.True(t, ok)
}

func TestUnboundedMulRightChainsGradient(t *testing.T) {
	doDy := accum.NewUnbounded(mustDense(t, [][]float64{{1, 0}, {0, 1}})) // 2x2 identity-shaped
	dyDx := mustDense(t, [][]float64{{2, 0}, {0, 3}})

	chained, err := doDy.MulRight(dyDx)
	require.NoError(t, err)
	got, ok := chained.Retrieve()
	require.True(t, ok)
	require.True(t, matrix.Equal(got, dyDx, 1e-12))
}

func TestTruncatedExpiresAfterDepth(t *testing.T) {
	tb, err := accum.NewTruncated(mustDense(t, [][]float64{{1, 1}}), 2)
	require.NoError(t, err)

	require.False(t, tb.IsEmpty())
	tb.TickDescent()
	require.False(t, tb.IsEmpty())
	tb.TickDescent()
	require.True(t, tb.IsEmpty())

	_, ok := tb.Retrieve()
	require.False(t, ok)
}

func TestTruncatedRejectsNonPositiveDepth(t *testing.T) {
	_, err := accum.NewTruncated(mustDense(t, [][]float64{{1}}), 0)
	require.ErrorIs(t, err, accum.ErrUnderspecifiedInit)
}

func TestTruncatedAddConcatenatesEntries(t *testing.T) {
	a, err := accum.NewTruncated(mustDense(t, [][]float64{{1, 0}}), 3)
	require.NoError(t, err)
	b, err := accum.NewTruncated(mustDense(t, [][]float64{{0, 1}}), 1)
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	got, ok := sum.Retrieve()
	require.True(t, ok)
	require.True(t, matrix.Equal(got, mustDense(t, [][]float64{{1, 1}}), 1e-12))

	// after one descent, only a's entry (depth 3->2) survives; b's (depth 1->0) expires
	sum.TickDescent()
	got2, ok := sum.Retrieve()
	require.True(t, ok)
	require.True(t, matrix.Equal(got2, mustDense(t, [][]float64{{1, 0}}), 1e-12))
}

func TestSumAccumulatorsSkipsNilAndEmpty(t *testing.T) {
	a := accum.NewUnbounded(mustDense(t, [][]float64{{1, 1}}))
	empty := accum.NewUnbounded(nil)

	sum, err := accum.SumAccumulators([]accum.Accumulator{nil, empty, a})
	require.NoError(t, err)
	got, ok := sum.Retrieve()
	require.True(t, ok)
	require.True(t, matrix.Equal(got, mustDense(t, [][]float64{{1, 1}}), 1e-12))
}

func TestSumAccumulatorsAllEmptyReturnsNil(t *testing.T) {
	sum, err := accum.SumAccumulators([]accum.Accumulator{nil, accum.NewUnbounded(nil)})
	require.NoError(t, err)
	require.Nil(t, sum)
}

func TestAddAcrossKindsFails(t *testing.T) {
	u := accum.NewUnbounded(mustDense(t, [][]float64{{1}}))
	tr, err := accum.NewTruncated(mustDense(t, [][]float64{{1}}), 1)
	require.NoError(t, err)

	_, err = u.Add(tr)
	require.ErrorIs(t, err, accum.ErrTypeMismatch)
}
