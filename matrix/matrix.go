// Package matrix implements dense matrices over GF(2^255-19).
package matrix

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/quiknode-labs/arcium-election/field"
)

var (
	// ErrShapeMismatch is returned when operand dimensions are incompatible.
	ErrShapeMismatch = errors.New("matrix: shape mismatch")

	// ErrRaggedRows is returned when rows have different lengths.
	ErrRaggedRows = errors.New("matrix: rows must have uniform length")

	// ErrNotSquare is returned by Det for non-square matrices.
	ErrNotSquare = errors.New("matrix: determinant requires a square matrix")
)

// Matrix is a row-major matrix of field elements. Operations return new matrices and
// never modify their operands.
type Matrix struct {
	rows, cols int
	data       [][]field.Element
}

// New builds a matrix from rows, copying them.
func New(rows [][]field.Element) (*Matrix, error) {
	if len(rows) == 0 {
		return &Matrix{}, nil
	}
	cols := len(rows[0])
	data := make([][]field.Element, len(rows))
	for i, row := range rows {
		if len(row) != cols {
			return nil, ErrRaggedRows
		}
		data[i] = append([]field.Element(nil), row...)
	}
	return &Matrix{rows: len(rows), cols: cols, data: data}, nil
}

// FromBigs builds a matrix from integers, reducing each into the field.
func FromBigs(rows [][]*big.Int) (*Matrix, error) {
	conv := make([][]field.Element, len(rows))
	for i, row := range rows {
		conv[i] = field.Elements(row...)
	}
	return New(conv)
}

// Zeros returns a rows x cols zero matrix.
func Zeros(rows, cols int) *Matrix {
	data := make([][]field.Element, rows)
	for i := range data {
		data[i] = make([]field.Element, cols)
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

// Identity returns the n x n identity matrix.
func Identity(n int) *Matrix {
	m := Zeros(n, n)
	for i := 0; i < n; i++ {
		m.data[i][i] = field.One()
	}
	return m
}

// Vector returns the column vector with the given entries.
func Vector(v []field.Element) *Matrix {
	m := Zeros(len(v), 1)
	for i, e := range v {
		m.data[i][0] = e
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// At returns the entry at row i, column j.
func (m *Matrix) At(i, j int) field.Element { return m.data[i][j] }

// Column returns a copy of column j.
func (m *Matrix) Column(j int) []field.Element {
	out := make([]field.Element, m.rows)
	for i := range out {
		out[i] = m.data[i][j]
	}
	return out
}

// Data returns a copy of the entries.
func (m *Matrix) Data() [][]field.Element {
	out := make([][]field.Element, m.rows)
	for i, row := range m.data {
		out[i] = append([]field.Element(nil), row...)
	}
	return out
}

// MatMul returns m * o.
func (m *Matrix) MatMul(o *Matrix) (*Matrix, error) {
	if m.cols != o.rows {
		return nil, fmt.Errorf("%w: %dx%d * %dx%d", ErrShapeMismatch, m.rows, m.cols, o.rows, o.cols)
	}
	res := Zeros(m.rows, o.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < o.cols; j++ {
			acc := field.Zero()
			for k := 0; k < m.cols; k++ {
				acc = acc.Add(m.data[i][k].Mul(o.data[k][j]))
			}
			res.data[i][j] = acc
		}
	}
	return res, nil
}

// Add returns m + o. With constantTime set, each sum is formed on fixed-width
// integers with a branchless conditional reduction, so operands derived from secret
// data never influence control flow.
func (m *Matrix) Add(o *Matrix, constantTime bool) (*Matrix, error) {
	if err := m.sameShape(o); err != nil {
		return nil, err
	}
	op := func(a, b field.Element) field.Element { return a.Add(b) }
	if constantTime {
		op = field.AddCt
	}
	return m.zipWith(o, op), nil
}

// Sub returns m - o, optionally in constant time as for Add.
func (m *Matrix) Sub(o *Matrix, constantTime bool) (*Matrix, error) {
	if err := m.sameShape(o); err != nil {
		return nil, err
	}
	op := func(a, b field.Element) field.Element { return a.Sub(b) }
	if constantTime {
		op = field.SubCt
	}
	return m.zipWith(o, op), nil
}

// Pow raises every entry to e.
func (m *Matrix) Pow(e *big.Int) *Matrix {
	res := Zeros(m.rows, m.cols)
	for i, row := range m.data {
		for j, v := range row {
			res.data[i][j] = v.Pow(e)
		}
	}
	return res
}

// Equal reports whether m and o have the same shape and entries.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i, row := range m.data {
		for j, v := range row {
			if !v.Equal(o.data[i][j]) {
				return false
			}
		}
	}
	return true
}

func (m *Matrix) String() string {
	return fmt.Sprint(m.data)
}

// Det computes the determinant by forward Gaussian elimination. It is not constant
// time and is only meant for validating public matrices.
//
// At each column, the remaining rows are partitioned into those with a non-zero
// entry in that column, which keep their order and come first, and those with a zero
// entry, which are re-appended after them. The first non-zero row is the pivot. If no
// such row exists the matrix is singular and Det returns zero.
func (m *Matrix) Det() (field.Element, error) {
	if m.rows != m.cols {
		return field.Element{}, ErrNotSquare
	}
	rows := m.Data()
	det := field.One()
	negate := false

	for c := 0; c < m.cols; c++ {
		var nonZero, zero [][]field.Element
		for _, row := range rows {
			if row[c].IsZero() {
				zero = append(zero, row)
			} else {
				// Moving this row ahead of every zero row seen so far is one
				// transposition per row it passes.
				if len(zero)%2 == 1 {
					negate = !negate
				}
				nonZero = append(nonZero, row)
			}
		}
		if len(nonZero) == 0 {
			return field.Zero(), nil
		}

		pivot := nonZero[0]
		pivotInv, err := pivot[c].Inv()
		if err != nil {
			return field.Element{}, err
		}
		det = det.Mul(pivot[c])

		remaining := make([][]field.Element, 0, len(rows)-1)
		for _, row := range nonZero[1:] {
			factor := row[c].Mul(pivotInv)
			reduced := make([]field.Element, len(row))
			for k := range row {
				reduced[k] = row[k].Sub(factor.Mul(pivot[k]))
			}
			remaining = append(remaining, reduced)
		}
		rows = append(remaining, zero...)
	}

	if negate {
		det = det.Neg()
	}
	return det, nil
}

func (m *Matrix) sameShape(o *Matrix) error {
	if m.rows != o.rows || m.cols != o.cols {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, m.rows, m.cols, o.rows, o.cols)
	}
	return nil
}

func (m *Matrix) zipWith(o *Matrix, op func(a, b field.Element) field.Element) *Matrix {
	res := Zeros(m.rows, m.cols)
	for i, row := range m.data {
		for j, v := range row {
			res.data[i][j] = op(v, o.data[i][j])
		}
	}
	return res
}
