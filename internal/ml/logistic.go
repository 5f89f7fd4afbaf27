package ml

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogisticRegression is L2-free batch gradient descent on log-loss.
// Inputs must be standardized (see Scaler); unscaled features make the
// descent step sizes wildly uneven across columns.
//
// The family is trained for the comparison report only: its probabilities
// are too confident for this feature set, so the selection policy never
// picks it (see EligibleForSelection).
type LogisticRegression struct {
	Iterations int
	LearnRate  float64

	Weights   []float64
	Intercept float64
}

// NewLogisticRegression returns a model with the tuned hyperparameters.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		Iterations: 1000,
		LearnRate:  0.1,
	}
}

func (l *LogisticRegression) Family() string { return FamilyLogisticRegression }

func (l *LogisticRegression) Fit(X [][]float64, y []float64) {
	n := len(X)
	d := len(X[0])

	xm := mat.NewDense(n, d, nil)
	for i, row := range X {
		xm.SetRow(i, row)
	}
	yv := mat.NewVecDense(n, y)

	l.Weights = make([]float64, d)
	l.Intercept = 0

	w := mat.NewVecDense(d, l.Weights)
	scores := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)
	probs := make([]float64, n)

	for iter := 0; iter < l.Iterations; iter++ {
		scores.MulVec(xm, w)
		var interceptGrad float64
		for i := 0; i < n; i++ {
			probs[i] = sigmoid(scores.AtVec(i) + l.Intercept)
			probs[i] -= yv.AtVec(i)
			interceptGrad += probs[i]
		}
		// grad = X^T (p - y) / n
		grad.MulVec(xm.T(), mat.NewVecDense(n, probs))
		step := l.LearnRate / float64(n)
		for j := 0; j < d; j++ {
			w.SetVec(j, w.AtVec(j)-step*grad.AtVec(j))
		}
		l.Intercept -= step * interceptGrad
	}
}

// PredictProb returns P(win) for one (already standardized) vector.
func (l *LogisticRegression) PredictProb(x []float64) float64 {
	return sigmoid(floats.Dot(l.Weights, x) + l.Intercept)
}
