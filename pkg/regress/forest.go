package regress

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// RandomForest averages depth-limited regression trees, each grown on a
// bootstrap sample of the training rows.
type RandomForest struct {
	name           string
	NEstimators    int
	MaxDepth       int
	MinSamplesLeaf int
	Seed           int64

	trees  []*treeNode
	cols   int
	fitted bool
}

// NewRandomForest creates a bagged tree ensemble
func NewRandomForest(name string, nEstimators, maxDepth int, seed int64) *RandomForest {
	return &RandomForest{
		name:           name,
		NEstimators:    nEstimators,
		MaxDepth:       maxDepth,
		MinSamplesLeaf: 1,
		Seed:           seed,
	}
}

// Name returns the display name of the model
func (m *RandomForest) Name() string {
	return m.name
}

// Fit grows NEstimators trees on bootstrap resamples
func (m *RandomForest) Fit(x mat.Matrix, y []float64) error {
	n, p, err := checkFit(x, y)
	if err != nil {
		return err
	}
	if m.NEstimators < 1 || m.MaxDepth < 1 {
		return fmt.Errorf("%s: n_estimators and max_depth must be positive", m.name)
	}

	rows := rowsOf(x)
	grad := make([]float64, n)
	hess := make([]float64, n)
	for i, v := range y {
		grad[i] = -v
		hess[i] = 1
	}

	params := treeParams{
		maxDepth:       m.MaxDepth,
		minSamplesLeaf: max(m.MinSamplesLeaf, 1),
	}

	rng := rand.New(rand.NewSource(m.Seed))
	m.trees = make([]*treeNode, m.NEstimators)
	for t := range m.trees {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		m.trees[t] = growTree(rows, grad, hess, idx, params)
	}

	m.cols = p
	m.fitted = true
	return nil
}

// Predict averages the tree outputs
func (m *RandomForest) Predict(x mat.Matrix) ([]float64, error) {
	if _, err := checkPredict(x, m.fitted, m.cols); err != nil {
		return nil, err
	}
	rows := rowsOf(x)
	out := make([]float64, len(rows))
	for i, row := range rows {
		sum := 0.0
		for _, tree := range m.trees {
			sum += tree.predict(row)
		}
		out[i] = sum / float64(len(m.trees))
	}
	return out, nil
}
