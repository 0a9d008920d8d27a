package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/http/response"
	"github.com/fixline/homemart/internal/service"
	"github.com/go-chi/chi/v5"
)

type AIHandler struct {
	Estimator service.EstimateService
}

func NewAIHandler(estimator service.EstimateService) *AIHandler {
	return &AIHandler{Estimator: estimator}
}

// estimate returns 200 even when the backend never produced a usable answer;
// the sentinel description tells the client what happened.
func (h *AIHandler) estimate(w http.ResponseWriter, r *http.Request) {
	var in domain.EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	res, err := h.Estimator.Estimate(r.Context(), &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, res)
}

func (h *AIHandler) Mount(r chi.Router, protect func(routeKey string) func(http.Handler) http.Handler) {
	r.With(protect("POST /api/aichat/estimate")).Post("/api/aichat/estimate", h.estimate)
}
