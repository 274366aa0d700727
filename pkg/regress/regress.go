// Package regress implements the regression models used by the days-to-fall
// experiment. Every model satisfies Regressor: it is fitted once on a
// row-major feature matrix and a target vector, then asked for predictions.
package regress

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotFitted is returned by Predict before a successful Fit
	ErrNotFitted = errors.New("model is not fitted")
	// ErrDimension is returned when matrix and vector shapes disagree
	ErrDimension = errors.New("dimension mismatch")
)

// Regressor is a model that can be fitted and queried for predictions
type Regressor interface {
	Name() string
	Fit(x mat.Matrix, y []float64) error
	Predict(x mat.Matrix) ([]float64, error)
}

// NewMatrix copies row-major data into a dense matrix
func NewMatrix(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return &mat.Dense{}
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data)
}

// checkFit validates training shapes and returns the matrix dimensions
func checkFit(x mat.Matrix, y []float64) (int, int, error) {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return 0, 0, fmt.Errorf("%w: empty training matrix", ErrDimension)
	}
	if r != len(y) {
		return 0, 0, fmt.Errorf("%w: %d rows, %d targets", ErrDimension, r, len(y))
	}
	return r, c, nil
}

// checkPredict validates that x has the column count seen during Fit
func checkPredict(x mat.Matrix, fitted bool, cols int) (int, error) {
	if !fitted {
		return 0, ErrNotFitted
	}
	r, c := x.Dims()
	if r > 0 && c != cols {
		return 0, fmt.Errorf("%w: fitted on %d columns, got %d", ErrDimension, cols, c)
	}
	return r, nil
}

// rowsOf copies a matrix into row slices for the tree-based models
func rowsOf(x mat.Matrix) [][]float64 {
	r, c := x.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = x.At(i, j)
		}
		rows[i] = row
	}
	return rows
}

// columnMeans returns the mean of each column
func columnMeans(x mat.Matrix) []float64 {
	r, c := x.Dims()
	means := make([]float64, c)
	for j := 0; j < c; j++ {
		sum := 0.0
		for i := 0; i < r; i++ {
			sum += x.At(i, j)
		}
		means[j] = sum / float64(r)
	}
	return means
}

// centered returns x with the given column offsets subtracted
func centered(x mat.Matrix, offsets []float64) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, x.At(i, j)-offsets[j])
		}
	}
	return out
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
