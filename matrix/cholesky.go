package matrix

import "math"

// Cholesky computes the lower-triangular factor L such that A = L·Lᵀ for a
// symmetric positive-definite A. Returns ErrNonSPD if a non-positive pivot
// is encountered (A is not SPD, up to floating-point slack).
// Complexity: O(n^3).
func Cholesky(a Matrix) (*Dense, error) {
	if err := ValidateSquare(a); err != nil {
		return nil, matrixErrorf("Cholesky", err)
	}

	n := a.Rows()
	l := MustDense(n, n)

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			aij, _ := a.At(i, j)
			sum := aij
			for k := 0; k < j; k++ {
				sum -= l.data[i*n+k] * l.data[j*n+k]
			}
			if i == j {
				if sum <= 0 {
					return nil, matrixErrorf("Cholesky", ErrNonSPD)
				}
				l.data[i*n+j] = math.Sqrt(sum)
			} else {
				l.data[i*n+j] = sum / l.data[j*n+j]
			}
		}
	}
	return l, nil
}

// forwardSubst solves L·y = b for lower-triangular L. Complexity: O(n^2).
func forwardSubst(l *Dense, b []float64) []float64 {
	n := l.r
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= l.data[i*n+k] * y[k]
		}
		y[i] = sum / l.data[i*n+i]
	}
	return y
}

// backSubst solves Lᵀ·x = y for lower-triangular L. Complexity: O(n^2).
func backSubst(l *Dense, y []float64) []float64 {
	n := l.r
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for k := i + 1; k < n; k++ {
			sum -= l.data[k*n+i] * x[k]
		}
		x[i] = sum / l.data[i*n+i]
	}
	return x
}

// CholeskySolveLeft solves A·X = B for X, given the Cholesky factor L of A
// (A = L·Lᵀ), via forward/backward substitution applied column-by-column
// of B. Complexity: O(n^2 * cols(B)).
func CholeskySolveLeft(l *Dense, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(l); err != nil {
		return nil, matrixErrorf("CholeskySolveLeft", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf("CholeskySolveLeft", err)
	}
	if l.r != b.Rows() {
		return nil, matrixErrorf("CholeskySolveLeft", ErrDimensionMismatch)
	}

	n, cols := l.r, b.Cols()
	for i := 0; i < n; i++ {
		if d, _ := l.At(i, i); d == 0 {
			return nil, matrixErrorf("CholeskySolveLeft", ErrSingular)
		}
	}
	x := MustDense(n, cols)
	col := make([]float64, n)
	for j := 0; j < cols; j++ {
		for i := 0; i < n; i++ {
			col[i], _ = b.At(i, j)
		}
		y := forwardSubst(l, col)
		sol := backSubst(l, y)
		for i := 0; i < n; i++ {
			x.data[i*cols+j] = sol[i]
		}
	}
	return x, nil
}

// CholeskySolveRight solves X·A = B for X, given the Cholesky factor L of A
// (A = L·Lᵀ). Grounded on the Kalman gain computation, which needs
// K = (S⁻¹·(P·Cᵀ)ᵀ)ᵀ solved without materializing S⁻¹ directly: it
// transposes to B = X·A  <=>  Bᵀ = A·Xᵀ (A symmetric) and reuses
// CholeskySolveLeft. Complexity: O(n^2 * rows(B)).
func CholeskySolveRight(l *Dense, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(l); err != nil {
		return nil, matrixErrorf("CholeskySolveRight", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf("CholeskySolveRight", err)
	}
	if l.r != b.Cols() {
		return nil, matrixErrorf("CholeskySolveRight", ErrDimensionMismatch)
	}

	bt, err := Transpose(b)
	if err != nil {
		return nil, matrixErrorf("CholeskySolveRight", err)
	}
	xt, err := CholeskySolveLeft(l, bt)
	if err != nil {
		return nil, matrixErrorf("CholeskySolveRight", err)
	}
	res, err := Transpose(xt)
	if err != nil {
		return nil, matrixErrorf("CholeskySolveRight", err)
	}
	return res.(*Dense), nil
}

// LogDet returns the log-determinant of A = L·Lᵀ, computed as
// 2*sum(log(diag(L))). Complexity: O(n).
func LogDet(l *Dense) (float64, error) {
	if err := ValidateNotNil(l); err != nil {
		return 0, matrixErrorf("LogDet", err)
	}
	var sum float64
	for i := 0; i < l.r; i++ {
		sum += math.Log(l.data[i*l.c+i])
	}
	return 2 * sum, nil
}

// Inverse computes A⁻¹ given the Cholesky factor L of A (A = L·Lᵀ), by
// solving A·X = I. Complexity: O(n^3).
func Inverse(l *Dense) (*Dense, error) {
	id, err := Identity(l.r)
	if err != nil {
		return nil, matrixErrorf("Inverse", err)
	}
	return CholeskySolveLeft(l, id)
}
