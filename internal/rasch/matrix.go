package rasch

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrRaggedMatrix      = errors.New("rasch: rows have different lengths")
	ErrDimensionMismatch = errors.New("rasch: parameter vector does not match matrix")
)

// ResponseMatrix is a persons × items grid of 0/1 responses.
// The zero value is an empty matrix.
type ResponseMatrix struct {
	dense *mat.Dense
}

// NewResponseMatrix copies rows into a binarized matrix. Zero rows or zero
// columns yield an empty matrix without error. Rows of unequal length are
// rejected even when the first row is empty.
func NewResponseMatrix(rows [][]float64) (*ResponseMatrix, error) {
	if len(rows) == 0 {
		return &ResponseMatrix{}, nil
	}
	cols := len(rows[0])
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), cols, ErrRaggedMatrix)
		}
	}
	if cols == 0 {
		return &ResponseMatrix{}, nil
	}
	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		for _, v := range row {
			data = append(data, Binarize(v))
		}
	}
	return &ResponseMatrix{dense: mat.NewDense(len(rows), cols, data)}, nil
}

// Binarize maps a raw cell to 0 or 1. Exact 0/1 pass through; anything
// else is thresholded at 0.5. NaN maps to 0.
func Binarize(v float64) float64 {
	if v == 0 || v == 1 {
		return v
	}
	if v > 0.5 {
		return 1
	}
	return 0
}

// Dims returns the number of persons and items.
func (m *ResponseMatrix) Dims() (persons, items int) {
	if m == nil || m.dense == nil {
		return 0, 0
	}
	return m.dense.Dims()
}

// IsEmpty reports whether the matrix has no persons or no items.
func (m *ResponseMatrix) IsEmpty() bool {
	p, i := m.Dims()
	return p == 0 || i == 0
}

// At returns the response of person p to item i.
func (m *ResponseMatrix) At(p, i int) float64 {
	return m.dense.At(p, i)
}

// Person returns a copy of person p's responses.
func (m *ResponseMatrix) Person(p int) []float64 {
	_, items := m.Dims()
	out := make([]float64, items)
	copy(out, m.dense.RawRowView(p))
	return out
}

// PersonScores returns the raw (correct-count) score of every person.
func (m *ResponseMatrix) PersonScores() []float64 {
	persons, items := m.Dims()
	out := make([]float64, persons)
	for p := 0; p < persons; p++ {
		for i := 0; i < items; i++ {
			out[p] += m.dense.At(p, i)
		}
	}
	return out
}

// ItemScores returns the number of persons answering each item correctly.
func (m *ResponseMatrix) ItemScores() []float64 {
	persons, items := m.Dims()
	out := make([]float64, items)
	for p := 0; p < persons; p++ {
		for i := 0; i < items; i++ {
			out[i] += m.dense.At(p, i)
		}
	}
	return out
}

// Rows returns a copy of the matrix as row slices.
func (m *ResponseMatrix) Rows() [][]float64 {
	persons, _ := m.Dims()
	out := make([][]float64, persons)
	for p := range out {
		out[p] = m.Person(p)
	}
	return out
}
