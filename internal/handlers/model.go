package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/features"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/ml"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/nhl"
)

// PredictNext handles GET /api/v1/predict/next: the model's call on the next
// scheduled game. "No model" and "not enough history" are explicit
// unavailable responses, never a fabricated loss pick.
func (h *Handler) PredictNext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	art := h.holder.Current()
	if art == nil {
		h.jsonResponse(w, http.StatusOK, map[string]interface{}{
			"available": false,
			"reason":    "no trained model loaded",
		})
		return
	}

	next, err := h.schedule.NextGame(ctx, nhl.Season(time.Now()))
	if err != nil {
		if errors.Is(err, nhl.ErrNoUpcomingGame) {
			h.jsonResponse(w, http.StatusOK, map[string]interface{}{
				"available": false,
				"reason":    "no upcoming game on the schedule",
			})
			return
		}
		h.logger.Errorw("Next game lookup failed", "error", err)
		h.errorResponse(w, http.StatusBadGateway, "Schedule feed unavailable")
		return
	}

	games, err := h.games.All(ctx)
	if err != nil {
		h.logger.Errorw("Game log read failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load game history")
		return
	}

	vec, err := features.BuildLiveVector(games, next.Opponent, next.IsHome)
	if err != nil {
		if errors.Is(err, features.ErrInsufficientHistory) {
			h.jsonResponse(w, http.StatusOK, map[string]interface{}{
				"available": false,
				"reason":    "not enough game history for the trailing windows",
			})
			return
		}
		h.logger.Errorw("Feature engineering failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to build features")
		return
	}

	pred, err := ml.Predict(art, vec)
	if err != nil {
		h.logger.Errorw("Prediction failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Prediction failed")
		return
	}
	pred.Opponent = next.Opponent
	pred.IsHome = next.IsHome

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"available":  true,
		"game":       next,
		"prediction": pred,
	})
}

// ModelInfo handles GET /api/v1/model.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	art := h.holder.Current()
	if art == nil {
		h.errorResponse(w, http.StatusNotFound, "No trained model loaded")
		return
	}
	h.jsonResponse(w, http.StatusOK, models.ModelInfo{
		Family:     art.Family,
		CVAccuracy: art.CVAccuracy,
		TrainedAt:  art.TrainedAt,
		ArtifactID: art.ID,
		Games:      art.Games,
		Report:     art.Report,
	})
}
