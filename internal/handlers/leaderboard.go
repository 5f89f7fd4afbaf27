package handlers

import "net/http"

// Leaderboard handles GET /api/v1/leaderboard. Users are ranked by total
// points over resolved predictions; the model rides along as one aggregate
// row so the standings always show whether the humans are beating it.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.ledger.Leaderboard(r.Context())
	if err != nil {
		h.logger.Errorw("Leaderboard query failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}
	h.jsonResponse(w, http.StatusOK, lb)
}
