package regress

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// GradientBoosting fits an additive ensemble of regression trees to the
// gradients of squared loss, with an L2 penalty on leaf weights.
type GradientBoosting struct {
	name           string
	NEstimators    int
	MaxDepth       int
	LearningRate   float64
	Lambda         float64
	MinChildWeight float64

	base   float64
	trees  []*treeNode
	cols   int
	fitted bool
}

// NewGradientBoosting creates a boosted tree ensemble
func NewGradientBoosting(name string, nEstimators, maxDepth int, lambda float64) *GradientBoosting {
	return &GradientBoosting{
		name:           name,
		NEstimators:    nEstimators,
		MaxDepth:       maxDepth,
		LearningRate:   0.3,
		Lambda:         lambda,
		MinChildWeight: 1,
	}
}

// Name returns the display name of the model
func (m *GradientBoosting) Name() string {
	return m.name
}

// Fit starts from the target mean and adds one shrunken tree per round
func (m *GradientBoosting) Fit(x mat.Matrix, y []float64) error {
	n, p, err := checkFit(x, y)
	if err != nil {
		return err
	}
	if m.NEstimators < 1 || m.MaxDepth < 1 {
		return fmt.Errorf("%s: n_estimators and max_depth must be positive", m.name)
	}
	if m.LearningRate <= 0 || m.Lambda < 0 {
		return fmt.Errorf("%s: invalid learning_rate %v or lambda %v", m.name, m.LearningRate, m.Lambda)
	}

	rows := rowsOf(x)
	params := treeParams{
		maxDepth:       m.MaxDepth,
		minSamplesLeaf: 1,
		minChildWeight: m.MinChildWeight,
		lambda:         m.Lambda,
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	m.base = meanOf(y)
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = m.base
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	m.trees = make([]*treeNode, 0, m.NEstimators)

	for round := 0; round < m.NEstimators; round++ {
		for i := range grad {
			grad[i] = pred[i] - y[i]
			hess[i] = 1
		}
		tree := growTree(rows, grad, hess, idx, params)
		m.trees = append(m.trees, tree)
		for i, row := range rows {
			pred[i] += m.LearningRate * tree.predict(row)
		}
	}

	m.cols = p
	m.fitted = true
	return nil
}

// Predict sums the shrunken tree outputs on top of the base score
func (m *GradientBoosting) Predict(x mat.Matrix) ([]float64, error) {
	if _, err := checkPredict(x, m.fitted, m.cols); err != nil {
		return nil, err
	}
	rows := rowsOf(x)
	out := make([]float64, len(rows))
	for i, row := range rows {
		v := m.base
		for _, tree := range m.trees {
			v += m.LearningRate * tree.predict(row)
		}
		out[i] = v
	}
	return out, nil
}
