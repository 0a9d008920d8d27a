package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/http/response"
	"github.com/fixline/homemart/internal/service"
	"github.com/go-chi/chi/v5"
)

type PartnerHandler struct {
	Partners service.PartnerService
}

func NewPartnerHandler(partners service.PartnerService) *PartnerHandler {
	return &PartnerHandler{Partners: partners}
}

func (h *PartnerHandler) apply(w http.ResponseWriter, r *http.Request) {
	var in domain.PartnerApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	app, err := h.Partners.Apply(r.Context(), caller(r).Sub, &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, app)
}

func (h *PartnerHandler) list(w http.ResponseWriter, r *http.Request) {
	status := domain.ApplicationStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.ApplicationPending
	}
	apps, err := h.Partners.List(r.Context(), status, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, apps)
}

func (h *PartnerHandler) approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, domain.ApplicationApproved)
}

func (h *PartnerHandler) reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, domain.ApplicationRejected)
}

func (h *PartnerHandler) resolve(w http.ResponseWriter, r *http.Request, status domain.ApplicationStatus) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	var in struct {
		Note string `json:"note"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	var app *domain.PartnerApplication
	var err error
	if status == domain.ApplicationApproved {
		app, err = h.Partners.Approve(r.Context(), id, in.Note)
	} else {
		app, err = h.Partners.Reject(r.Context(), id, in.Note)
	}
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, app)
}

func (h *PartnerHandler) removePartner(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Partners.RemovePartner(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PartnerHandler) Mount(r chi.Router, protect func(routeKey string) func(http.Handler) http.Handler) {
	r.With(protect("POST /api/partners/apply")).Post("/api/partners/apply", h.apply)
	r.With(protect("GET /api/partners/applications")).Get("/api/partners/applications", h.list)
	r.With(protect("POST /api/partners/applications/{id}/approve")).Post("/api/partners/applications/{id}/approve", h.approve)
	r.With(protect("POST /api/partners/applications/{id}/reject")).Post("/api/partners/applications/{id}/reject", h.reject)
	r.With(protect("DELETE /api/partners/delete-partner/{id}")).Delete("/api/partners/delete-partner/{id}", h.removePartner)
}
