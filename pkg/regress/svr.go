package regress

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// SVR is epsilon-insensitive support vector regression with an RBF kernel.
//
// The dual is solved by coordinate descent over the signed coefficients
// beta_i in [-C, C]. The bias is fixed to the target mean, which removes
// the equality constraint of the full dual.
type SVR struct {
	name    string
	C       float64
	Epsilon float64
	Gamma   float64 // 0 selects 1 / (n_features * Var(X))
	MaxIter int
	Tol     float64

	support [][]float64
	beta    []float64
	bias    float64
	gamma   float64
	cols    int
	fitted  bool
}

// NewSVR creates an RBF support vector regressor
func NewSVR(name string, c float64) *SVR {
	return &SVR{
		name:    name,
		C:       c,
		Epsilon: 0.1,
		MaxIter: 1000,
		Tol:     1e-3,
	}
}

// Name returns the display name of the model
func (m *SVR) Name() string {
	return m.name
}

// Fit solves the box-constrained dual problem
func (m *SVR) Fit(x mat.Matrix, y []float64) error {
	n, p, err := checkFit(x, y)
	if err != nil {
		return err
	}
	if m.C <= 0 {
		return fmt.Errorf("%s: C must be positive, got %v", m.name, m.C)
	}

	rows := rowsOf(x)
	gamma := m.Gamma
	if gamma <= 0 {
		gamma = scaleGamma(rows, p)
	}

	kernel := make([][]float64, n)
	for i := range kernel {
		kernel[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		kernel[i][i] = 1
		for j := i + 1; j < n; j++ {
			k := rbf(rows[i], rows[j], gamma)
			kernel[i][j] = k
			kernel[j][i] = k
		}
	}

	bias := meanOf(y)
	beta := make([]float64, n)
	fitted := make([]float64, n) // K * beta

	for iter := 0; iter < m.MaxIter; iter++ {
		maxDelta := 0.0
		for i := 0; i < n; i++ {
			old := beta[i]
			r := y[i] - bias - (fitted[i] - kernel[i][i]*old)
			updated := softThreshold(r, m.Epsilon) / kernel[i][i]
			updated = math.Max(-m.C, math.Min(m.C, updated))

			if delta := updated - old; delta != 0 {
				for j := 0; j < n; j++ {
					fitted[j] += kernel[j][i] * delta
				}
				beta[i] = updated
				maxDelta = math.Max(maxDelta, math.Abs(delta))
			}
		}
		if maxDelta < m.Tol {
			break
		}
	}

	// keep only support vectors
	m.support, m.beta = m.support[:0], m.beta[:0]
	for i, b := range beta {
		if b != 0 {
			m.support = append(m.support, rows[i])
			m.beta = append(m.beta, b)
		}
	}
	m.bias = bias
	m.gamma = gamma
	m.cols = p
	m.fitted = true
	return nil
}

// Predict evaluates sum_i beta_i K(x_i, x) + bias
func (m *SVR) Predict(x mat.Matrix) ([]float64, error) {
	if _, err := checkPredict(x, m.fitted, m.cols); err != nil {
		return nil, err
	}
	rows := rowsOf(x)
	out := make([]float64, len(rows))
	for i, row := range rows {
		v := m.bias
		for s, sv := range m.support {
			v += m.beta[s] * rbf(sv, row, m.gamma)
		}
		out[i] = v
	}
	return out, nil
}

// SupportCount returns the number of non-zero dual coefficients
func (m *SVR) SupportCount() int {
	return len(m.support)
}

func rbf(a, b []float64, gamma float64) float64 {
	d := 0.0
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return math.Exp(-gamma * d)
}

// scaleGamma is 1 / (n_features * variance of every entry of X)
func scaleGamma(rows [][]float64, p int) float64 {
	all := make([]float64, 0, len(rows)*p)
	for _, row := range rows {
		all = append(all, row...)
	}
	_, variance := stat.PopMeanVariance(all, nil)
	if variance == 0 || math.IsNaN(variance) {
		return 1 / float64(p)
	}
	return 1 / (float64(p) * variance)
}
