package matrix

// Operation name constants for unified error wrapping.
const (
	opAdd       = "Add"
	opSub       = "Sub"
	opMul       = "Mul"
	opTranspose = "Transpose"
	opScale     = "Scale"
)

// Identity returns the n×n identity matrix. Complexity: O(n^2).
func Identity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf("Identity", err)
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1.0
	}
	return m, nil
}

// MustIdentity panics on error; intended for fixed-size constants.
func MustIdentity(n int) *Dense {
	m, err := Identity(n)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns a new Matrix with the element-wise sum a+b.
// Complexity: O(r*c).
func Add(a, b Matrix) (Matrix, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}

	rows, cols := a.Rows(), a.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opAdd, err)
	}

	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			n := rows * cols
			for idx := 0; idx < n; idx++ {
				res.data[idx] = da.data[idx] + db.data[idx]
			}
			return res, nil
		}
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			av, _ := a.At(i, j)
			bv, _ := b.At(i, j)
			_ = res.Set(i, j, av+bv)
		}
	}
	return res, nil
}

// Sub returns a new Matrix with the element-wise difference a-b.
// Complexity: O(r*c).
func Sub(a, b Matrix) (Matrix, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(opSub, err)
	}

	rows, cols := a.Rows(), a.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opSub, err)
	}

	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			n := rows * cols
			for idx := 0; idx < n; idx++ {
				res.data[idx] = da.data[idx] - db.data[idx]
			}
			return res, nil
		}
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			av, _ := a.At(i, j)
			bv, _ := b.At(i, j)
			_ = res.Set(i, j, av-bv)
		}
	}
	return res, nil
}

// Mul performs standard matrix multiplication c = a×b.
// Complexity: O(r*n*c).
func Mul(a, b Matrix) (Matrix, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if a.Cols() != b.Rows() {
		return nil, matrixErrorf(opMul, ErrDimensionMismatch)
	}

	aRows, aCols, bCols := a.Rows(), a.Cols(), b.Cols()
	res, err := NewDense(aRows, bCols)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			var rowOffsetA, rowOffsetB, rowOffsetR int
			for i := 0; i < aRows; i++ {
				rowOffsetA = i * aCols
				rowOffsetR = i * bCols
				for k := 0; k < aCols; k++ {
					av := da.data[rowOffsetA+k]
					if av == 0 {
						continue
					}
					rowOffsetB = k * bCols
					for j := 0; j < bCols; j++ {
						res.data[rowOffsetR+j] += av * db.data[rowOffsetB+j]
					}
				}
			}
			return res, nil
		}
	}

	for i := 0; i < aRows; i++ {
		for j := 0; j < bCols; j++ {
			var acc float64
			for k := 0; k < aCols; k++ {
				av, _ := a.At(i, k)
				bv, _ := b.At(k, j)
				acc += av * bv
			}
			_ = res.Set(i, j, acc)
		}
	}
	return res, nil
}

// Transpose returns a new Matrix with rows and columns swapped.
// Complexity: O(r*c).
func Transpose(m Matrix) (Matrix, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(cols, rows)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	if dm, ok := m.(*Dense); ok {
		var baseSrc int
		for i := 0; i < rows; i++ {
			baseSrc = i * cols
			for j := 0; j < cols; j++ {
				res.data[j*rows+i] = dm.data[baseSrc+j]
			}
		}
		return res, nil
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v, _ := m.At(i, j)
			_ = res.Set(j, i, v)
		}
	}
	return res, nil
}

// Scale returns a new Matrix with each element of m multiplied by alpha.
// Complexity: O(r*c).
func Scale(m Matrix, alpha float64) (Matrix, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}

	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}

	if dm, ok := m.(*Dense); ok {
		n := rows * cols
		for idx := 0; idx < n; idx++ {
			res.data[idx] = dm.data[idx] * alpha
		}
		return res, nil
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v, _ := m.At(i, j)
			_ = res.Set(i, j, v*alpha)
		}
	}
	return res, nil
}

// MatVec computes y = m*x for a column vector x. Complexity: O(r*c).
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf("MatVec", err)
	}
	if len(x) != m.Cols() {
		return nil, matrixErrorf("MatVec", ErrDimensionMismatch)
	}

	rows, cols := m.Rows(), m.Cols()
	y := make([]float64, rows)

	if d, ok := m.(*Dense); ok {
		for i := 0; i < rows; i++ {
			base := i * cols
			var acc float64
			for j := 0; j < cols; j++ {
				acc += d.data[base+j] * x[j]
			}
			y[i] = acc
		}
		return y, nil
	}

	for i := 0; i < rows; i++ {
		var acc float64
		for j := 0; j < cols; j++ {
			mv, _ := m.At(i, j)
			acc += mv * x[j]
		}
		y[i] = acc
	}
	return y, nil
}
