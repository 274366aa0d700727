package regress

import "sort"

// treeParams controls the growth of a single regression tree
type treeParams struct {
	maxDepth       int
	minSamplesLeaf int
	minChildWeight float64
	lambda         float64 // L2 penalty on leaf weights
}

// treeNode is a binary split on one feature, or a leaf when left is nil
type treeNode struct {
	feature   int
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) predict(row []float64) float64 {
	for n.left != nil {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// growTree fits a tree to first- and second-order loss statistics. Leaf
// weights are -G/(H+lambda) and splits maximise
// GL^2/(HL+lambda) + GR^2/(HR+lambda) - G^2/(H+lambda).
// With grad = -y, hess = 1 and lambda = 0 this is a CART tree minimising
// squared error with mean-valued leaves.
func growTree(rows [][]float64, grad, hess []float64, idx []int, params treeParams) *treeNode {
	b := &treeBuilder{rows: rows, grad: grad, hess: hess, params: params}
	return b.build(idx, 0)
}

type treeBuilder struct {
	rows   [][]float64
	grad   []float64
	hess   []float64
	params treeParams
}

func (b *treeBuilder) build(idx []int, depth int) *treeNode {
	g, h := b.sums(idx)
	node := &treeNode{value: -g / (h + b.params.lambda)}

	if depth >= b.params.maxDepth || len(idx) < 2*b.params.minSamplesLeaf {
		return node
	}

	feature, threshold, ok := b.bestSplit(idx, g, h)
	if !ok {
		return node
	}

	var left, right []int
	for _, i := range idx {
		if b.rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node.feature = feature
	node.threshold = threshold
	node.left = b.build(left, depth+1)
	node.right = b.build(right, depth+1)
	return node
}

func (b *treeBuilder) sums(idx []int) (float64, float64) {
	var g, h float64
	for _, i := range idx {
		g += b.grad[i]
		h += b.hess[i]
	}
	return g, h
}

func (b *treeBuilder) bestSplit(idx []int, g, h float64) (int, float64, bool) {
	lambda := b.params.lambda
	parent := g * g / (h + lambda)

	bestGain := 1e-12
	bestFeature, bestThreshold, found := 0, 0.0, false

	order := make([]int, len(idx))
	features := len(b.rows[idx[0]])

	for f := 0; f < features; f++ {
		copy(order, idx)
		sort.Slice(order, func(a, c int) bool {
			return b.rows[order[a]][f] < b.rows[order[c]][f]
		})

		var gl, hl float64
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			gl += b.grad[i]
			hl += b.hess[i]

			cur, next := b.rows[i][f], b.rows[order[k+1]][f]
			if cur == next {
				continue
			}
			if k+1 < b.params.minSamplesLeaf || len(order)-k-1 < b.params.minSamplesLeaf {
				continue
			}
			gr, hr := g-gl, h-hl
			if hl < b.params.minChildWeight || hr < b.params.minChildWeight {
				continue
			}

			gain := gl*gl/(hl+lambda) + gr*gr/(hr+lambda) - parent
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = cur + (next-cur)/2
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, found
}
