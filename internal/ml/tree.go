package ml

import (
	"math"
	"math/rand"
	"sort"
)

// TreeNode is one node of a fitted regression tree. Fields are exported so
// artifacts serialize with encoding/gob.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
	Value     float64
	Leaf      bool
}

// RegressionTree is a CART tree fit by variance reduction. It serves both
// ensemble families: random forest trees fit 0/1 outcomes directly (leaf
// mean = win probability) and boosting trees fit gradient residuals.
type RegressionTree struct {
	MaxDepth    int
	MinLeaf     int
	MaxFeatures int // per-split feature subsample; 0 means all features
	Root        *TreeNode
}

const minSplitGain = 1e-9

// Fit grows the tree on the rows of X selected by idx.
func (t *RegressionTree) Fit(X [][]float64, y []float64, idx []int, rng *rand.Rand) {
	rows := make([]int, len(idx))
	copy(rows, idx)
	t.Root = t.grow(X, y, rows, 0, rng)
}

func (t *RegressionTree) grow(X [][]float64, y []float64, rows []int, depth int, rng *rand.Rand) *TreeNode {
	if len(rows) == 0 {
		return &TreeNode{Leaf: true}
	}
	mean := meanAt(y, rows)
	if depth >= t.MaxDepth || len(rows) < 2*t.MinLeaf || pureAt(y, rows) {
		return &TreeNode{Leaf: true, Value: mean}
	}

	feature, threshold, gain := t.bestSplit(X, y, rows, rng)
	if gain <= minSplitGain {
		return &TreeNode{Leaf: true, Value: mean}
	}

	var left, right []int
	for _, r := range rows {
		if X[r][feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	if len(left) < t.MinLeaf || len(right) < t.MinLeaf {
		return &TreeNode{Leaf: true, Value: mean}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      t.grow(X, y, left, depth+1, rng),
		Right:     t.grow(X, y, right, depth+1, rng),
	}
}

// bestSplit scans candidate features for the split with the largest sum-of
// squared-error reduction. Thresholds are midpoints between consecutive
// distinct feature values.
func (t *RegressionTree) bestSplit(X [][]float64, y []float64, rows []int, rng *rand.Rand) (feature int, threshold, gain float64) {
	nFeatures := len(X[rows[0]])
	candidates := make([]int, nFeatures)
	for i := range candidates {
		candidates[i] = i
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < nFeatures {
		rng.Shuffle(nFeatures, func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		candidates = candidates[:t.MaxFeatures]
	}

	var totalSum, totalSq float64
	for _, r := range rows {
		totalSum += y[r]
		totalSq += y[r] * y[r]
	}
	n := float64(len(rows))
	parentSSE := totalSq - totalSum*totalSum/n

	feature = -1
	sorted := make([]int, len(rows))
	for _, f := range candidates {
		copy(sorted, rows)
		sort.Slice(sorted, func(i, j int) bool { return X[sorted[i]][f] < X[sorted[j]][f] })

		var leftSum, leftSq float64
		for i := 0; i < len(sorted)-1; i++ {
			r := sorted[i]
			leftSum += y[r]
			leftSq += y[r] * y[r]

			cur, next := X[r][f], X[sorted[i+1]][f]
			if cur == next {
				continue
			}
			nl := float64(i + 1)
			nr := n - nl
			if int(nl) < t.MinLeaf || int(nr) < t.MinLeaf {
				continue
			}
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if g := parentSSE - sse; g > gain {
				gain = g
				feature = f
				threshold = (cur + next) / 2
			}
		}
	}
	if feature < 0 {
		return 0, 0, 0
	}
	return feature, threshold, gain
}

// Predict returns the leaf value for x.
func (t *RegressionTree) Predict(x []float64) float64 {
	return t.leafFor(x).Value
}

// leafFor walks the tree to the leaf covering x. Boosting uses this to
// re-estimate leaf values with Newton steps after the structure is grown.
func (t *RegressionTree) leafFor(x []float64) *TreeNode {
	node := t.Root
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

func meanAt(y []float64, rows []int) float64 {
	var sum float64
	for _, r := range rows {
		sum += y[r]
	}
	return sum / float64(len(rows))
}

func pureAt(y []float64, rows []int) bool {
	first := y[rows[0]]
	for _, r := range rows[1:] {
		if math.Abs(y[r]-first) > 1e-12 {
			return false
		}
	}
	return true
}
