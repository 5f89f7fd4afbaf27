package ml

import (
	"errors"
	"math"
	"testing"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/features"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
)

// constantModel always answers the same probability.
type constantModel struct{ p float64 }

func (m constantModel) Family() string                  { return "constant" }
func (m constantModel) Fit(X [][]float64, y []float64)  {}
func (m constantModel) PredictProb(x []float64) float64 { return m.p }

func fullWidthVector(fill float64) features.Vector {
	v := make(features.Vector, features.NumFeatures)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestPredictNoModel(t *testing.T) {
	if _, err := Predict(nil, fullWidthVector(0)); !errors.Is(err, ErrNoModel) {
		t.Fatalf("err = %v, want ErrNoModel", err)
	}
	if _, err := Predict(&Artifact{}, fullWidthVector(0)); !errors.Is(err, ErrNoModel) {
		t.Fatalf("err = %v, want ErrNoModel for artifact without model", err)
	}
}

func TestPredictWrongVectorWidth(t *testing.T) {
	art := &Artifact{Model: constantModel{p: 0.6}}
	if _, err := Predict(art, features.Vector{1, 2, 3}); err == nil {
		t.Fatal("expected an error for a short vector")
	}
}

func TestPredictPickAndProbabilities(t *testing.T) {
	tests := []struct {
		prob     float64
		wantPick string
		wantWin  float64
		wantConf float64
	}{
		{0.731, models.ResultWin, 73.1, 73.1},
		{0.5, models.ResultWin, 50.0, 50.0}, // exactly 0.5 counts as a win call
		{0.228, models.ResultLoss, 22.8, 77.2},
	}
	for _, tt := range tests {
		art := &Artifact{Family: FamilyGradientBoosting, Model: constantModel{p: tt.prob}}
		pred, err := Predict(art, fullWidthVector(0.5))
		if err != nil {
			t.Fatalf("Predict(%v): %v", tt.prob, err)
		}
		if pred.Pick != tt.wantPick {
			t.Errorf("prob %v: pick = %s, want %s", tt.prob, pred.Pick, tt.wantPick)
		}
		if pred.WinProb != tt.wantWin {
			t.Errorf("prob %v: win%% = %v, want %v", tt.prob, pred.WinProb, tt.wantWin)
		}
		if pred.Confidence != tt.wantConf {
			t.Errorf("prob %v: confidence = %v, want %v", tt.prob, pred.Confidence, tt.wantConf)
		}
		if sum := pred.WinProb + pred.LossProb; math.Abs(sum-100) > 1e-9 {
			t.Errorf("prob %v: win + loss = %v, want 100", tt.prob, sum)
		}
	}
}

func TestPredictAppliesScaler(t *testing.T) {
	// A spy model records what it was given, proving the artifact's fitted
	// scaler ran before the model saw the vector.
	var seen []float64
	spy := funcModel(func(x []float64) float64 {
		seen = x
		return 0.7
	})

	scaler := &Scaler{
		Means: make([]float64, features.NumFeatures),
		Stds:  make([]float64, features.NumFeatures),
	}
	for i := range scaler.Means {
		scaler.Means[i] = 1
		scaler.Stds[i] = 2
	}

	art := &Artifact{Family: FamilyLogisticRegression, Model: spy, Scaler: scaler}
	if _, err := Predict(art, fullWidthVector(3)); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	for i, v := range seen {
		if v != 1 { // (3 - 1) / 2
			t.Fatalf("feature %d reached the model unscaled: %v", i, v)
		}
	}
}

type funcModel func(x []float64) float64

func (f funcModel) Family() string                  { return "func" }
func (f funcModel) Fit(X [][]float64, y []float64)  {}
func (f funcModel) PredictProb(x []float64) float64 { return f(x) }
