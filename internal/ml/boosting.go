package ml

import (
	"math"
	"math/rand"
)

// GradientBoosting is boosted regression trees under logistic loss. Each
// round fits a shallow tree to the current gradient residuals, then
// re-estimates its leaf values with a single Newton step before shrinking
// by the learning rate.
type GradientBoosting struct {
	NumTrees  int
	MaxDepth  int
	LearnRate float64
	Subsample float64
	Seed      int64

	BasePrediction float64 // initial log-odds
	Trees          []*RegressionTree
}

// NewGradientBoosting returns a booster with the tuned hyperparameters.
func NewGradientBoosting(seed int64) *GradientBoosting {
	return &GradientBoosting{
		NumTrees:  200,
		MaxDepth:  4,
		LearnRate: 0.1,
		Subsample: 0.8,
		Seed:      seed,
	}
}

func (b *GradientBoosting) Family() string { return FamilyGradientBoosting }

func (b *GradientBoosting) Fit(X [][]float64, y []float64) {
	rng := rand.New(rand.NewSource(b.Seed))
	n := len(X)

	pos := 0.0
	for _, v := range y {
		pos += v
	}
	// Clamp the prior away from degenerate all-win / all-loss logs.
	prior := math.Min(math.Max(pos/float64(n), 1e-4), 1-1e-4)
	b.BasePrediction = math.Log(prior / (1 - prior))

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = b.BasePrediction
	}

	residual := make([]float64, n)
	sampleSize := int(b.Subsample * float64(n))
	if sampleSize < 1 {
		sampleSize = n
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	b.Trees = make([]*RegressionTree, 0, b.NumTrees)
	for round := 0; round < b.NumTrees; round++ {
		for i := range residual {
			residual[i] = y[i] - sigmoid(scores[i])
		}

		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		sample := order[:sampleSize]

		tree := &RegressionTree{MaxDepth: b.MaxDepth, MinLeaf: 1}
		tree.Fit(X, residual, sample, rng)
		b.newtonLeaves(tree, X, y, scores, sample)
		b.Trees = append(b.Trees, tree)

		for i := range scores {
			scores[i] += b.LearnRate * tree.Predict(X[i])
		}
	}
}

// newtonLeaves replaces each leaf mean with the Newton step
// sum(residual) / sum(p*(1-p)) over the samples the leaf covers.
func (b *GradientBoosting) newtonLeaves(tree *RegressionTree, X [][]float64, y, scores []float64, sample []int) {
	num := make(map[*TreeNode]float64)
	den := make(map[*TreeNode]float64)
	for _, i := range sample {
		leaf := tree.leafFor(X[i])
		p := sigmoid(scores[i])
		num[leaf] += y[i] - p
		den[leaf] += p * (1 - p)
	}
	for leaf, d := range den {
		if d < 1e-10 {
			leaf.Value = 0
			continue
		}
		leaf.Value = num[leaf] / d
	}
}

// PredictProb returns P(win) for one feature vector.
func (b *GradientBoosting) PredictProb(x []float64) float64 {
	score := b.BasePrediction
	for _, t := range b.Trees {
		score += b.LearnRate * t.Predict(x)
	}
	return sigmoid(score)
}

func sigmoid(z float64) float64 {
	if z > 20 {
		return 1
	}
	if z < -20 {
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}
