package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes assembles the HTTP surface.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/predictions", h.SubmitPrediction)
		r.Get("/predictions/pending", h.PendingPredictions)
		r.Get("/predictions/resolved", h.ResolvedPredictions)
		r.Get("/leaderboard", h.Leaderboard)
		r.Get("/predict/next", h.PredictNext)
		r.Get("/model", h.ModelInfo)
		r.Get("/games", h.GameHistory)
		r.Get("/games/count", h.GameCount)
		r.Post("/games/{gameID}/resolve", h.ResolveGame)
	})

	return r
}
