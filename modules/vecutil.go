package modules

import "github.com/katalvlaran/modprop/matrix"

// columnLen returns the number of elements in an Nx1 (or 1xN) value,
// treating either orientation as a flat vector of length rows*cols.
func columnLen(m matrix.Matrix) int {
	return m.Rows() * m.Cols()
}

// toSlice extracts an Nx1 column matrix's values into a plain slice.
func toSlice(m matrix.Matrix) []float64 {
	n := m.Rows()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, _ := m.At(i, 0)
		out[i] = v
	}
	return out
}

// fromSlice builds an Nx1 column matrix from v.
func fromSlice(v []float64) *matrix.Dense {
	m := matrix.MustDense(len(v), 1)
	for i, x := range v {
		_ = m.Set(i, 0, x)
	}
	return m
}

// dot computes the inner product of two equal-length slices.
func dot(a, b []float64) float64 {
	var acc float64
	for i := range a {
		acc += a[i] * b[i]
	}
	return acc
}

// outer computes the outer product a*b^T as an N×N Dense matrix.
func outer(a, b []float64) *matrix.Dense {
	n := len(a)
	m := matrix.MustDense(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.Set(i, j, a[i]*b[j])
		}
	}
	return m
}
