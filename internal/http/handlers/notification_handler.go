package handlers

import (
	"net/http"

	"github.com/fixline/homemart/internal/http/response"
	"github.com/fixline/homemart/internal/service"
	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	Notifications service.NotificationService
}

func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications}
}

func (h *NotificationHandler) Mount(r chi.Router, protect func(routeKey string) func(http.Handler) http.Handler) {
	r.With(protect("GET /api/notifications")).Get("/api/notifications", h.list)
	r.With(protect("POST /api/notifications/{id}/read")).Post("/api/notifications/{id}/read", h.markRead)
}

func (h *NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.Notifications.List(r.Context(), caller(r).Sub, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Notifications.MarkRead(r.Context(), caller(r).Sub, id); err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
