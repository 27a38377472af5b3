// Package matrix wraps gonum's dense matrix type with the slicing and
// shape helpers the decomposition and code-generation packages need.
package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a rectangular array of real coefficients, immutable once
// produced by a decomposition step.
type Matrix struct {
	data *mat.Dense
}

// New wraps raw row-major data of the given shape.
func New(rows, cols int, data []float64) *Matrix {
	return &Matrix{data: mat.NewDense(rows, cols, data)}
}

// FromDense wraps an existing gonum matrix without copying.
func FromDense(d *mat.Dense) *Matrix {
	return &Matrix{data: d}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return &Matrix{data: d}
}

// Dense exposes the underlying gonum matrix for callers that need direct
// linear-algebra operations (product, Frobenius norm, ...).
func (m *Matrix) Dense() *mat.Dense { return m.data }

// Dims returns (rows, cols).
func (m *Matrix) Dims() (int, int) { return m.data.Dims() }

// At returns the entry at (i, j).
func (m *Matrix) At(i, j int) float64 { return m.data.At(i, j) }

// Mul returns a new Matrix holding a*b.
func Mul(a, b *Matrix) *Matrix {
	ar, _ := a.Dims()
	_, bc := b.Dims()
	out := mat.NewDense(ar, bc, nil)
	out.Mul(a.data, b.data)
	return &Matrix{data: out}
}

// SliceColumns splits m column-wise according to widths (which must sum to
// m's column count) and returns one Matrix per slice, grounded on the
// original decomposition's column-range slicing (slice_mat).
func SliceColumns(m *Matrix, widths []int) ([]*Matrix, error) {
	rows, cols := m.Dims()
	total := 0
	for _, w := range widths {
		total += w
	}
	if total != cols {
		return nil, fmt.Errorf("matrix: slice widths sum to %d, want %d columns", total, cols)
	}
	out := make([]*Matrix, len(widths))
	start := 0
	for i, w := range widths {
		sub := mat.NewDense(rows, w, nil)
		for r := 0; r < rows; r++ {
			for c := 0; c < w; c++ {
				sub.Set(r, c, m.At(r, start+c))
			}
		}
		out[i] = &Matrix{data: sub}
		start += w
	}
	return out, nil
}

// ConcatColumns horizontally concatenates matrices sharing the same row
// count, the inverse of SliceColumns, used to re-form the full-width
// approximation from per-slice factors before computing a global SQNR.
func ConcatColumns(mats []*Matrix) (*Matrix, error) {
	if len(mats) == 0 {
		return nil, fmt.Errorf("matrix: ConcatColumns requires at least one matrix")
	}
	rows, _ := mats[0].Dims()
	totalCols := 0
	for _, m := range mats {
		r, c := m.Dims()
		if r != rows {
			return nil, fmt.Errorf("matrix: ConcatColumns row mismatch (%d vs %d)", r, rows)
		}
		totalCols += c
	}
	out := mat.NewDense(rows, totalCols, nil)
	col := 0
	for _, m := range mats {
		_, c := m.Dims()
		for j := 0; j < c; j++ {
			for i := 0; i < rows; i++ {
				out.Set(i, col+j, m.At(i, j))
			}
		}
		col += c
	}
	return &Matrix{data: out}, nil
}

// Transpose returns a new Matrix holding m^T.
func Transpose(m *Matrix) *Matrix {
	r, c := m.Dims()
	out := mat.NewDense(c, r, nil)
	out.Copy(m.data.T())
	return &Matrix{data: out}
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	_, c := m.Dims()
	row := make([]float64, c)
	mat.Row(row, i, m.data)
	return row
}

// Col returns a copy of column j.
func (m *Matrix) Col(j int) []float64 {
	r, _ := m.Dims()
	col := make([]float64, r)
	mat.Col(col, j, m.data)
	return col
}
