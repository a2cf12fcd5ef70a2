package matrix

// Flatten returns vec(m): the column-major (Fortran-order) vectorization of
// m, stacking columns top-to-bottom. Complexity: O(r*c).
func Flatten(m Matrix) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf("Flatten", err)
	}
	rows, cols := m.Rows(), m.Cols()
	out := make([]float64, rows*cols)

	if d, ok := m.(*Dense); ok {
		for j := 0; j < cols; j++ {
			base := j * rows
			for i := 0; i < rows; i++ {
				out[base+i] = d.data[i*cols+j]
			}
		}
		return out, nil
	}

	for j := 0; j < cols; j++ {
		base := j * rows
		for i := 0; i < rows; i++ {
			v, _ := m.At(i, j)
			out[base+i] = v
		}
	}
	return out, nil
}

// Unflatten builds a rows×cols Dense from v, interpreting v as the
// column-major vectorization produced by Flatten. Complexity: O(r*c).
func Unflatten(v []float64, rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, matrixErrorf("Unflatten", ErrBadShape)
	}
	if len(v) != rows*cols {
		return nil, matrixErrorf("Unflatten", ErrDimensionMismatch)
	}

	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf("Unflatten", err)
	}
	for j := 0; j < cols; j++ {
		base := j * rows
		for i := 0; i < rows; i++ {
			m.data[i*cols+j] = v[base+i]
		}
	}
	return m, nil
}

// FlattenVectorAsColumn is a convenience for treating a plain []float64 as
// an n×1 column Matrix, matching the Python modules' habit of treating 1-D
// arrays as implicit column vectors.
func FlattenVectorAsColumn(v []float64) *Dense {
	m := MustDense(len(v), 1)
	copy(m.data, v)
	return m
}
