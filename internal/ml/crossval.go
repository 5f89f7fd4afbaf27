package ml

// crossValAccuracy is the mean held-out accuracy over k contiguous folds of
// the full table. Folds are deterministic: selection must be reproducible
// for a fixed game log.
func crossValAccuracy(build func() Classifier, X [][]float64, y []float64, k int) float64 {
	n := len(X)
	if k > n {
		k = n
	}
	if k < 2 {
		return 0
	}

	var sum float64
	for fold := 0; fold < k; fold++ {
		lo := fold * n / k
		hi := (fold + 1) * n / k

		trainX := make([][]float64, 0, n-(hi-lo))
		trainY := make([]float64, 0, n-(hi-lo))
		for i := 0; i < n; i++ {
			if i >= lo && i < hi {
				continue
			}
			trainX = append(trainX, X[i])
			trainY = append(trainY, y[i])
		}

		model := build()
		model.Fit(trainX, trainY)
		sum += accuracy(model, X[lo:hi], y[lo:hi])
	}
	return sum / float64(k)
}
