package matrix

import "fmt"

// Matrix is the minimal surface the engine and modules package build on.
// Dense is the only implementation modprop ships; the interface exists so
// algorithms in this package can be tested against alternate backings.
type Matrix interface {
	// Rows returns the number of rows. Complexity: O(1).
	Rows() int
	// Cols returns the number of columns. Complexity: O(1).
	Cols() int
	// At retrieves the element at (row, col). Returns ErrOutOfRange on
	// invalid indices. Complexity: O(1).
	At(row, col int) (float64, error)
	// Set assigns v at (row, col). Returns ErrOutOfRange on invalid
	// indices. Complexity: O(1).
	Set(row, col int, v float64) error
	// Clone returns a deep copy, independent of the original. Complexity: O(r*c).
	Clone() Matrix
}

// Dense is a row-major matrix of float64 values.
type Dense struct {
	r, c int       // rows, cols
	data []float64 // flat backing storage, length r*c
}

var _ Matrix = (*Dense)(nil)

// NewDense creates an r×c Dense matrix initialized to zero.
// Complexity: O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrBadShape
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// MustDense panics on error; intended for tests and fixed-shape constants.
func MustDense(rows, cols int) *Dense {
	m, err := NewDense(rows, cols)
	if err != nil {
		panic(err)
	}
	return m
}

// NewDenseFromRows builds a Dense from row-major literal data. Every row
// must have the same length. Intended for tests and small constant setup.
func NewDenseFromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrBadShape
	}
	r, c := len(rows), len(rows[0])
	m, err := NewDense(r, c)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != c {
			return nil, matrixErrorf("NewDenseFromRows", ErrDimensionMismatch)
		}
		for j, v := range row {
			m.data[i*c+j] = v
		}
	}
	return m, nil
}

// Rows returns the number of rows. Complexity: O(1).
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns. Complexity: O(1).
func (m *Dense) Cols() int { return m.c }

func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, fmt.Errorf("Dense(%d,%d): %w", row, col, ErrOutOfRange)
	}
	return row*m.c + col, nil
}

// At retrieves the element at (row, col). Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, err
	}
	return m.data[off], nil
}

// Set assigns v at (row, col). Complexity: O(1).
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return err
	}
	m.data[off] = v
	return nil
}

// Clone returns a deep copy of m. Complexity: O(r*c).
func (m *Dense) Clone() Matrix {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)
	return &Dense{r: m.r, c: m.c, data: cp}
}

// String implements fmt.Stringer for debugging.
func (m *Dense) String() string {
	out := ""
	for i := 0; i < m.r; i++ {
		out += "["
		for j := 0; j < m.c; j++ {
			out += fmt.Sprintf("%g", m.data[i*m.c+j])
			if j+1 < m.c {
				out += ", "
			}
		}
		out += "]\n"
	}
	return out
}

// Equal reports whether a and b have the same shape and every element
// differs by no more than tol. Intended for tests.
func Equal(a, b Matrix, tol float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return false
	}
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			av, _ := a.At(i, j)
			bv, _ := b.At(i, j)
			d := av - bv
			if d < 0 {
				d = -d
			}
			if d > tol {
				return false
			}
		}
	}
	return true
}
