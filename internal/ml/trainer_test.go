package ml

import (
	"errors"
	"testing"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/features"
)

// syntheticTable builds a deterministic, cleanly separable table: the first
// feature alone decides the outcome. Every family should learn it, which
// makes selection behavior observable without flaky thresholds.
func syntheticTable(n int) []features.Example {
	table := make([]features.Example, n)
	for i := 0; i < n; i++ {
		x0 := float64(i%10) / 10.0
		table[i] = features.Example{
			GameID: int64(i + 1),
			Vector: features.Vector{
				x0,
				float64((i*7)%13) / 13.0,
				float64(i%4) / 4.0,
				1 - x0,
				float64((i*3)%5) / 5.0,
				0.5,
			},
			Win: x0 >= 0.5,
		}
	}
	return table
}

func TestTrainEmptyTable(t *testing.T) {
	if _, err := Train(nil); !errors.Is(err, ErrNoTrainingData) {
		t.Fatalf("err = %v, want ErrNoTrainingData", err)
	}
}

func TestTrainNeverSelectsLogisticRegression(t *testing.T) {
	result, err := Train(syntheticTable(60))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	art := result.Artifact

	if art.Family == FamilyLogisticRegression {
		t.Fatalf("selected family = %s; logistic regression must never win selection", art.Family)
	}
	if art.Family != FamilyGradientBoosting && art.Family != FamilyRandomForest {
		t.Fatalf("selected family = %q, want a tree ensemble", art.Family)
	}
	// Logistic regression is still trained and reported for comparison.
	if _, ok := art.Report[FamilyLogisticRegression]; !ok {
		t.Error("comparison report is missing logistic regression")
	}
	if len(art.Report) != 3 {
		t.Errorf("report has %d families, want 3", len(art.Report))
	}
}

func TestTrainLearnsSeparableData(t *testing.T) {
	result, err := Train(syntheticTable(60))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	art := result.Artifact

	if art.CVAccuracy < 0.9 {
		t.Errorf("cv accuracy = %v on cleanly separable data, want >= 0.9", art.CVAccuracy)
	}
	if art.Games != 60 {
		t.Errorf("artifact games = %d, want 60", art.Games)
	}
	if art.Model == nil {
		t.Fatal("artifact has no model")
	}
	for family, acc := range result.HoldoutAccuracy {
		if acc < 0 || acc > 1 {
			t.Errorf("holdout accuracy for %s = %v, out of [0,1]", family, acc)
		}
	}
}

func TestTrainDeterministic(t *testing.T) {
	a, err := Train(syntheticTable(50))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	b, err := Train(syntheticTable(50))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if a.Artifact.Family != b.Artifact.Family {
		t.Errorf("families differ across runs: %s vs %s", a.Artifact.Family, b.Artifact.Family)
	}
	if a.Artifact.CVAccuracy != b.Artifact.CVAccuracy {
		t.Errorf("cv accuracy differs across runs: %v vs %v", a.Artifact.CVAccuracy, b.Artifact.CVAccuracy)
	}
	for family, acc := range a.Artifact.Report {
		if b.Artifact.Report[family] != acc {
			t.Errorf("report for %s differs across runs: %v vs %v", family, acc, b.Artifact.Report[family])
		}
	}
}

func TestEligibleForSelection(t *testing.T) {
	tests := []struct {
		family string
		want   bool
	}{
		{FamilyGradientBoosting, true},
		{FamilyRandomForest, true},
		{FamilyLogisticRegression, false},
	}
	for _, tt := range tests {
		if got := EligibleForSelection(tt.family); got != tt.want {
			t.Errorf("EligibleForSelection(%s) = %v, want %v", tt.family, got, tt.want)
		}
	}
}

func TestNeedsScaling(t *testing.T) {
	if NeedsScaling(FamilyGradientBoosting) || NeedsScaling(FamilyRandomForest) {
		t.Error("tree families must not require scaling")
	}
	if !NeedsScaling(FamilyLogisticRegression) {
		t.Error("logistic regression requires scaling")
	}
}
