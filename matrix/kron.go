package matrix

// Kron computes the Kronecker product a⊗b. For a of shape (p,q) and b of
// shape (r,s), the result has shape (p*r, q*s) with block (i,j) equal to
// a[i][j]*b. Complexity: O(p*q*r*s).
func Kron(a, b Matrix) (Matrix, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf("Kron", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf("Kron", err)
	}

	p, q := a.Rows(), a.Cols()
	r, s := b.Rows(), b.Cols()
	res, err := NewDense(p*r, q*s)
	if err != nil {
		return nil, matrixErrorf("Kron", err)
	}

	for i := 0; i < p; i++ {
		for j := 0; j < q; j++ {
			av, _ := a.At(i, j)
			if av == 0 {
				continue
			}
			rowBase := i * r
			colBase := j * s
			for u := 0; u < r; u++ {
				for v := 0; v < s; v++ {
					bv, _ := b.At(u, v)
					_ = res.Set(rowBase+u, colBase+v, av*bv)
				}
			}
		}
	}
	return res, nil
}

// VecTranspose returns the (m*n)x(m*n) permutation matrix T such that
// T * vec(A) = vec(A^T) for any m×n matrix A, under column-major
// vectorization. Grounded on the commutation-matrix construction used by
// the Kalman update module's covariance Jacobian.
// Complexity: O((m*n)^2), dominated by allocating the dense result.
func VecTranspose(m, n int) (*Dense, error) {
	if m <= 0 || n <= 0 {
		return nil, matrixErrorf("VecTranspose", ErrBadShape)
	}

	size := m * n
	t, err := NewDense(size, size)
	if err != nil {
		return nil, matrixErrorf("VecTranspose", err)
	}

	// vec(A) index for A[i][j] (0-based, column-major, shape m×n) is j*m+i.
	// vec(A^T) index for the same entry, now living in an n×m matrix at
	// position [j][i], is i*n+j. T maps the vec(A) position to the
	// vec(A^T) position.
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			src := j*m + i
			dst := i*n + j
			t.data[dst*size+src] = 1.0
		}
	}
	return t, nil
}
