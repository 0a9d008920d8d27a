package handlers

import (
	"net/http"

	"github.com/fixline/homemart/internal/chat"
	"github.com/fixline/homemart/internal/http/response"
	"github.com/fixline/homemart/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients run on a separate origin; auth is the bearer token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ChatHandler struct {
	Hub *chat.Hub
}

func NewChatHandler(hub *chat.Hub) *ChatHandler {
	return &ChatHandler{Hub: hub}
}

// connect upgrades to a websocket scoped to one service request's room.
// Membership is checked before the upgrade so outsiders get a plain 403.
func (h *ChatHandler) connect(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}

	c := caller(r)
	allowed, err := h.Hub.CanJoin(r.Context(), requestID, c.Sub, c.Role)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if !allowed {
		response.Forbidden(w, "not a participant of this request")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("Websocket upgrade failed", "error", err)
		return
	}

	h.Hub.Join(r.Context(), conn, requestID, c.Sub)
}

func (h *ChatHandler) Mount(r chi.Router, protect func(routeKey string) func(http.Handler) http.Handler) {
	r.With(protect("GET /api/requests/{id}/chat")).Get("/api/requests/{id}/chat", h.connect)
}
