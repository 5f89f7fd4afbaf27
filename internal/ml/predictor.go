package ml

import (
	"errors"
	"math"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/features"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
)

// ErrNoModel is returned when no trained artifact is loaded. Callers surface
// this as "no model opinion"; it must never be mapped to a loss prediction.
var ErrNoModel = errors.New("ml: no trained model available")

// Predict applies the artifact to one engineered vector. When the artifact
// carries a scaler the vector goes through that same fitted scaler; using a
// refit scaler here would be a correctness bug.
func Predict(a *Artifact, v features.Vector) (models.GamePrediction, error) {
	if a == nil || a.Model == nil {
		return models.GamePrediction{}, ErrNoModel
	}
	if len(v) != features.NumFeatures {
		return models.GamePrediction{}, errors.New("ml: feature vector has wrong width")
	}

	x := []float64(v)
	if a.Scaler != nil {
		x = a.Scaler.TransformRow(x)
	}

	winProb := a.Model.PredictProb(x)
	pick := models.ResultLoss
	if winProb >= 0.5 {
		pick = models.ResultWin
	}

	win := round1(winProb * 100)
	loss := round1((1 - winProb) * 100)
	return models.GamePrediction{
		Pick:          pick,
		WinProb:       win,
		LossProb:      loss,
		Confidence:    math.Max(win, loss),
		ModelFamily:   a.Family,
		ModelAccuracy: a.CVAccuracy,
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
