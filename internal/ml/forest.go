package ml

import (
	"math"
	"math/rand"
)

// RandomForest is a bagged ensemble of regression trees over 0/1 outcomes.
// Each tree votes with its leaf mean; the forest probability is the average
// vote, which keeps the output usefully spread out instead of saturating.
type RandomForest struct {
	NumTrees int
	MaxDepth int
	MinLeaf  int
	Seed     int64
	Trees    []*RegressionTree
}

// NewRandomForest returns a forest with the tuned hyperparameters.
func NewRandomForest(seed int64) *RandomForest {
	return &RandomForest{
		NumTrees: 200,
		MaxDepth: 8,
		MinLeaf:  5,
		Seed:     seed,
	}
}

func (f *RandomForest) Family() string { return FamilyRandomForest }

// Fit grows NumTrees trees, each on a bootstrap sample with sqrt-feature
// subsampling per split.
func (f *RandomForest) Fit(X [][]float64, y []float64) {
	rng := rand.New(rand.NewSource(f.Seed))
	n := len(X)
	maxFeatures := int(math.Sqrt(float64(len(X[0]))))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	f.Trees = make([]*RegressionTree, f.NumTrees)
	idx := make([]int, n)
	for i := 0; i < f.NumTrees; i++ {
		for j := range idx {
			idx[j] = rng.Intn(n)
		}
		tree := &RegressionTree{
			MaxDepth:    f.MaxDepth,
			MinLeaf:     f.MinLeaf,
			MaxFeatures: maxFeatures,
		}
		tree.Fit(X, y, idx, rng)
		f.Trees[i] = tree
	}
}

// PredictProb returns P(win) for one feature vector.
func (f *RandomForest) PredictProb(x []float64) float64 {
	var sum float64
	for _, t := range f.Trees {
		sum += t.Predict(x)
	}
	p := sum / float64(len(f.Trees))
	return clampProb(p)
}

func clampProb(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
