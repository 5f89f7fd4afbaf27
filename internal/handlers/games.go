package handlers

import (
	"net/http"
	"strconv"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
)

const defaultHistoryLimit = 82 // one season

// GameHistory handles GET /api/v1/games: the most recent stored games,
// newest first.
func (h *Handler) GameHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			h.errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	games, err := h.games.All(r.Context())
	if err != nil {
		h.logger.Errorw("Game history read failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load game history")
		return
	}

	if len(games) > limit {
		games = games[len(games)-limit:]
	}
	// Newest first for display.
	reversed := make([]models.HistoricalGame, len(games))
	for i := range games {
		reversed[i] = games[len(games)-1-i]
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count": len(reversed),
		"games": reversed,
	})
}

// GameCount handles GET /api/v1/games/count.
func (h *Handler) GameCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.games.Count(r.Context())
	if err != nil {
		h.logger.Errorw("Game count failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to count games")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]uint64{"count": n})
}
