package regress

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// linearModel holds the fitted parameters shared by the linear regressors
type linearModel struct {
	coef      []float64
	intercept float64
	cols      int
	fitted    bool
}

// Coefficients returns a copy of the fitted weights
func (m *linearModel) Coefficients() []float64 {
	return append([]float64(nil), m.coef...)
}

// Intercept returns the fitted bias term (zero without intercept fitting)
func (m *linearModel) Intercept() float64 {
	return m.intercept
}

func (m *linearModel) Predict(x mat.Matrix) ([]float64, error) {
	r, err := checkPredict(x, m.fitted, m.cols)
	if err != nil {
		return nil, err
	}
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		v := m.intercept
		for j, w := range m.coef {
			v += x.At(i, j) * w
		}
		out[i] = v
	}
	return out, nil
}

// set stores weights solved on centered data and recovers the intercept
func (m *linearModel) set(coef, xMean []float64, yMean float64) {
	m.coef = coef
	m.intercept = yMean
	for j, w := range coef {
		m.intercept -= xMean[j] * w
	}
	m.cols = len(coef)
	m.fitted = true
}

// design prepares the matrix and target a linear solver works on. With an
// intercept, columns and target are mean-centered and the means returned.
func design(x mat.Matrix, y []float64, intercept bool) (*mat.Dense, []float64, []float64, float64) {
	_, c := x.Dims()
	target := append([]float64(nil), y...)
	if !intercept {
		return mat.DenseCopyOf(x), target, make([]float64, c), 0
	}

	xMean := columnMeans(x)
	yMean := meanOf(y)
	for i := range target {
		target[i] -= yMean
	}
	return centered(x, xMean), target, xMean, yMean
}

// LinearRegression is ordinary least squares solved through the SVD, which
// returns the minimum-norm solution for rank-deficient designs.
type LinearRegression struct {
	linearModel
	name         string
	FitIntercept bool
}

// NewLinearRegression creates an ordinary least squares model
func NewLinearRegression(name string, fitIntercept bool) *LinearRegression {
	return &LinearRegression{name: name, FitIntercept: fitIntercept}
}

// Name returns the display name of the model
func (m *LinearRegression) Name() string {
	return m.name
}

// Fit solves min ||y - Xw||^2
func (m *LinearRegression) Fit(x mat.Matrix, y []float64) error {
	n, p, err := checkFit(x, y)
	if err != nil {
		return err
	}

	a, target, xMean, yMean := design(x, y, m.FitIntercept)

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return fmt.Errorf("%s: SVD factorization failed", m.name)
	}

	// singular values below eps*max(n,p) relative to the largest are dropped
	eps := math.Nextafter(1, 2) - 1
	rank := svd.Rank(eps * float64(max(n, p)))
	coef := make([]float64, p)
	if rank > 0 {
		var w mat.VecDense
		svd.SolveVecTo(&w, mat.NewVecDense(n, target), rank)
		for j := range coef {
			coef[j] = w.AtVec(j)
		}
	}

	m.set(coef, xMean, yMean)
	return nil
}

// Ridge is least squares with an L2 penalty alpha * ||w||^2
type Ridge struct {
	linearModel
	name         string
	Alpha        float64
	FitIntercept bool
}

// NewRidge creates a ridge regression model
func NewRidge(name string, alpha float64, fitIntercept bool) *Ridge {
	return &Ridge{name: name, Alpha: alpha, FitIntercept: fitIntercept}
}

// Name returns the display name of the model
func (m *Ridge) Name() string {
	return m.name
}

// Fit solves (X'X + alpha*I) w = X'y
func (m *Ridge) Fit(x mat.Matrix, y []float64) error {
	n, p, err := checkFit(x, y)
	if err != nil {
		return err
	}
	if m.Alpha < 0 {
		return fmt.Errorf("%s: alpha must be non-negative, got %v", m.name, m.Alpha)
	}

	a, target, xMean, yMean := design(x, y, m.FitIntercept)

	gram := mat.NewSymDense(p, nil)
	gram.SymOuterK(1, a.T())
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+m.Alpha)
	}

	var xty mat.VecDense
	xty.MulVec(a.T(), mat.NewVecDense(n, target))

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return fmt.Errorf("%s: normal equations are not positive definite", m.name)
	}

	var w mat.VecDense
	if err := chol.SolveVecTo(&w, &xty); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return fmt.Errorf("%s: solve: %w", m.name, err)
		}
	}

	coef := make([]float64, p)
	for j := range coef {
		coef[j] = w.AtVec(j)
	}
	m.set(coef, xMean, yMean)
	return nil
}
