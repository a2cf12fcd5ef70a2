package matrix

// Diag builds the n×n diagonal matrix whose diagonal entries are v.
// Complexity: O(n^2).
func Diag(v []float64) *Dense {
	n := len(v)
	m := MustDense(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = v[i]
	}
	return m
}

// DiagElements extracts the diagonal of a square matrix as a slice.
// Complexity: O(n).
func DiagElements(m Matrix) ([]float64, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf("DiagElements", err)
	}
	n := m.Rows()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, _ := m.At(i, i)
		out[i] = v
	}
	return out, nil
}

// LowerTriIndices enumerates the strict lower-triangular entries (row i,
// col j, i>j) of an n×n matrix in column-major nested order — column 0's
// entries first (top to bottom), then column 1's, and so on — and returns
// each entry's column-major vec index j*n+i. This is the packing order
// CholeskyReshape expects for its off-diagonal input vector, matching the
// package's column-major vec convention. Complexity: O(n^2).
func LowerTriIndices(n int) []int {
	out := make([]int, 0, n*(n-1)/2)
	for j := 0; j < n; j++ {
		for i := j + 1; i < n; i++ {
			out = append(out, j*n+i)
		}
	}
	return out
}

// DiagIndices returns the flat column-major indices of the n diagonal
// entries of an n×n matrix. Complexity: O(n).
func DiagIndices(n int) []int {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = i*n + i
	}
	return out
}
