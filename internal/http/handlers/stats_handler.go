package handlers

import (
	"net/http"

	"github.com/fixline/homemart/internal/http/response"
	"github.com/fixline/homemart/internal/service"
	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	Stats service.StatsService
}

func NewStatsHandler(stats service.StatsService) *StatsHandler {
	return &StatsHandler{Stats: stats}
}

func (h *StatsHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Snapshot(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, stats)
}

func (h *StatsHandler) Mount(r chi.Router, protect func(routeKey string) func(http.Handler) http.Handler) {
	r.With(protect("GET /api/stats")).Get("/api/stats", h.snapshot)
}
