package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/http/response"
	"github.com/fixline/homemart/internal/service"
	"github.com/go-chi/chi/v5"
)

type RequestHandler struct {
	Requests service.RequestService
}

func NewRequestHandler(requests service.RequestService) *RequestHandler {
	return &RequestHandler{Requests: requests}
}

func (h *RequestHandler) Mount(r chi.Router, protect func(routeKey string) func(http.Handler) http.Handler) {
	r.With(protect("POST /api/requests")).Post("/api/requests", h.create)
	r.With(protect("GET /api/requests/open")).Get("/api/requests/open", h.listOpen)
	r.With(protect("GET /api/requests/mine")).Get("/api/requests/mine", h.listMine)
	r.With(protect("GET /api/requests/{id}")).Get("/api/requests/{id}", h.get)
	r.With(protect("POST /api/requests/{id}/accept")).Post("/api/requests/{id}/accept", h.accept)
	r.With(protect("POST /api/requests/{id}/complete")).Post("/api/requests/{id}/complete", h.complete)
	r.With(protect("POST /api/requests/{id}/cancel")).Post("/api/requests/{id}/cancel", h.cancel)
}

func (h *RequestHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.ServiceRequestCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	sr, err := h.Requests.Create(r.Context(), caller(r).Sub, &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, sr)
}

func (h *RequestHandler) listOpen(w http.ResponseWriter, r *http.Request) {
	list, err := h.Requests.ListOpen(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *RequestHandler) listMine(w http.ResponseWriter, r *http.Request) {
	c := caller(r)
	list, err := h.Requests.ListMine(r.Context(), c.Sub, c.Role, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *RequestHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	sr, err := h.Requests.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, sr)
}

func (h *RequestHandler) accept(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	sr, err := h.Requests.Accept(r.Context(), id, caller(r).Sub)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, sr)
}

func (h *RequestHandler) complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Requests.Complete(r.Context(), id, caller(r).Sub); err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func (h *RequestHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Requests.Cancel(r.Context(), id, caller(r).Sub); err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
}
