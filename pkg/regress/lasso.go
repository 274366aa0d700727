package regress

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Lasso minimises (1/2n)||y - Xw||^2 + alpha*||w||_1 by cyclic coordinate descent
type Lasso struct {
	linearModel
	name         string
	Alpha        float64
	FitIntercept bool
	MaxIter      int
	Tol          float64
}

// NewLasso creates a lasso model with the usual iteration limits
func NewLasso(name string, alpha float64, fitIntercept bool) *Lasso {
	return &Lasso{
		name:         name,
		Alpha:        alpha,
		FitIntercept: fitIntercept,
		MaxIter:      1000,
		Tol:          1e-4,
	}
}

// Name returns the display name of the model
func (m *Lasso) Name() string {
	return m.name
}

// Fit runs coordinate descent until the largest weight update falls below
// Tol relative to the largest weight, or MaxIter sweeps are done.
func (m *Lasso) Fit(x mat.Matrix, y []float64) error {
	n, p, err := checkFit(x, y)
	if err != nil {
		return err
	}
	if m.Alpha < 0 {
		return fmt.Errorf("%s: alpha must be non-negative, got %v", m.name, m.Alpha)
	}

	a, target, xMean, yMean := design(x, y, m.FitIntercept)

	// column squared norms
	norms := make([]float64, p)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			v := a.At(i, j)
			norms[j] += v * v
		}
	}

	coef := make([]float64, p)
	residual := target
	penalty := m.Alpha * float64(n)

	for iter := 0; iter < m.MaxIter; iter++ {
		maxDelta, maxCoef := 0.0, 0.0

		for j := 0; j < p; j++ {
			if norms[j] == 0 {
				continue
			}
			old := coef[j]

			rho := 0.0
			for i := 0; i < n; i++ {
				rho += a.At(i, j) * (residual[i] + a.At(i, j)*old)
			}
			updated := softThreshold(rho, penalty) / norms[j]

			if delta := updated - old; delta != 0 {
				for i := 0; i < n; i++ {
					residual[i] -= a.At(i, j) * delta
				}
				coef[j] = updated
			}

			maxDelta = math.Max(maxDelta, math.Abs(updated-old))
			maxCoef = math.Max(maxCoef, math.Abs(updated))
		}

		if maxCoef == 0 || maxDelta/maxCoef < m.Tol {
			break
		}
	}

	m.set(coef, xMean, yMean)
	return nil
}

func softThreshold(v, t float64) float64 {
	switch {
	case v > t:
		return v - t
	case v < -t:
		return v + t
	default:
		return 0
	}
}
