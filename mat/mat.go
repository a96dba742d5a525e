package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmptyArray  = errors.New("empty array")
	ErrColMismatch = errors.New("column size mismatch")
	ErrRowMismatch = errors.New("row size mismatch")
)

// NewDenseFromArray builds a matrix from row major observations
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)

	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if m == 0 || n <= 0 {
		return nil, ErrEmptyArray
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// NewDenseFromColumns builds a design matrix where each input slice is one feature column
func NewDenseFromColumns(cols [][]float64) (*mat.Dense, error) {
	n := len(cols)
	if n == 0 {
		return nil, ErrEmptyArray
	}
	m := len(cols[0])
	if m == 0 {
		return nil, ErrEmptyArray
	}
	for j, col := range cols {
		if len(col) != m {
			return nil, fmt.Errorf("at column %d, %w", j, ErrRowMismatch)
		}
	}

	data := make([]float64, m*n)
	for j, col := range cols {
		for i, v := range col {
			data[i*n+j] = v
		}
	}
	return mat.NewDense(m, n, data), nil
}
