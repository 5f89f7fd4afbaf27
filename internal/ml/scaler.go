package ml

import "gonum.org/v1/gonum/stat"

// Scaler standardizes features to zero mean and unit variance, fit once on
// training data. Inference must go through the same fitted scaler; refitting
// on live data would shift every feature.
type Scaler struct {
	Means []float64
	Stds  []float64
}

// FitScaler computes per-column mean and standard deviation.
func FitScaler(X [][]float64) *Scaler {
	d := len(X[0])
	s := &Scaler{
		Means: make([]float64, d),
		Stds:  make([]float64, d),
	}
	col := make([]float64, len(X))
	for j := 0; j < d; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 {
			std = 1 // constant column, leave it centered
		}
		s.Means[j] = mean
		s.Stds[j] = std
	}
	return s
}

// Transform returns standardized copies of the rows.
func (s *Scaler) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.TransformRow(row)
	}
	return out
}

// TransformRow standardizes a single vector.
func (s *Scaler) TransformRow(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Means[j]) / s.Stds[j]
	}
	return out
}
