package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/features"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/ledger"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/ml"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
)

// SubmitPrediction handles POST /api/v1/predictions. The model's own pick is
// captured at submission time and frozen into the row, so later retrains
// cannot rewrite what the model believed when the user locked in.
func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitPredictionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	modelPick, modelProb := h.modelOpinion(r, req.Opponent, req.IsHome)

	id, err := h.ledger.Submit(r.Context(), &req, modelPick, modelProb)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicatePrediction):
			h.errorResponse(w, http.StatusConflict, "Prediction already submitted for this game")
		case errors.Is(err, ledger.ErrInvalidPrediction):
			h.errorResponse(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Errorw("Submit failed", "username", req.Username, "gameID", req.GameID, "error", err)
			h.errorResponse(w, http.StatusInternalServerError, "Failed to store prediction")
		}
		return
	}

	h.jsonResponse(w, http.StatusCreated, models.SubmitPredictionResponse{
		ID:           id,
		ModelPick:    modelPick,
		ModelWinProb: modelProb,
	})
}

// modelOpinion computes the model's pick for the submitted matchup. With no
// loaded model or not enough history the row stores an empty pick; the
// ledger later scores an empty model pick as zero points.
func (h *Handler) modelOpinion(r *http.Request, opponent string, isHome bool) (string, float64) {
	art := h.holder.Current()
	if art == nil {
		return "", 0
	}
	games, err := h.games.All(r.Context())
	if err != nil {
		h.logger.Warnw("Game log read failed during submit", "error", err)
		return "", 0
	}
	vec, err := features.BuildLiveVector(games, opponent, isHome)
	if err != nil {
		return "", 0
	}
	pred, err := ml.Predict(art, vec)
	if err != nil {
		return "", 0
	}
	return pred.Pick, pred.WinProb
}

// PendingPredictions handles GET /api/v1/predictions/pending.
func (h *Handler) PendingPredictions(w http.ResponseWriter, r *http.Request) {
	h.listPredictions(w, r, h.ledger.Pending)
}

// ResolvedPredictions handles GET /api/v1/predictions/resolved.
func (h *Handler) ResolvedPredictions(w http.ResponseWriter, r *http.Request) {
	h.listPredictions(w, r, h.ledger.Resolved)
}

// listPredictions serves both prediction lists. An empty username means all
// users; the frontend passes ?username= to scope to one player.
func (h *Handler) listPredictions(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, username string) ([]models.Prediction, error)) {
	username := r.URL.Query().Get("username")

	predictions, err := list(r.Context(), username)
	if err != nil {
		h.logger.Errorw("Prediction list failed", "username", username, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load predictions")
		return
	}
	if predictions == nil {
		predictions = []models.Prediction{}
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count":       len(predictions),
		"predictions": predictions,
	})
}

// ResolveGame handles POST /api/v1/games/{gameID}/resolve. Normally the
// scheduler resolves games; this endpoint exists for manual repair when the
// upstream feed lags a final score.
func (h *Handler) ResolveGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil || gameID <= 0 {
		h.errorResponse(w, http.StatusBadRequest, "Invalid game id")
		return
	}

	var req models.ResolveGameRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	resolved, err := h.ledger.Resolve(r.Context(), gameID, req.Result, req.ScoreFor, req.ScoreAgainst)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidPrediction) {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("Resolve failed", "gameID", gameID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to resolve game")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"game_id":  gameID,
		"resolved": resolved,
	})
}
