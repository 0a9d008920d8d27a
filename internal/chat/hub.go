package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/repo/postgres"
	"github.com/fixline/homemart/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	historyLimit   = 50
)

// Hub fans chat messages out to everyone connected to the same service
// request. One room per request, created lazily and dropped when the last
// client leaves.
type Hub struct {
	chat     postgres.ChatRepo
	requests postgres.RequestRepo

	mu    sync.RWMutex
	rooms map[int64]map[*client]struct{}
}

func NewHub(chat postgres.ChatRepo, requests postgres.RequestRepo) *Hub {
	return &Hub{
		chat:     chat,
		requests: requests,
		rooms:    make(map[int64]map[*client]struct{}),
	}
}

type client struct {
	hub       *Hub
	conn      *websocket.Conn
	requestID int64
	userID    int64
	send      chan []byte
}

type inbound struct {
	Body string `json:"body"`
}

// CanJoin reports whether the user belongs in the request's room: the
// customer, the assigned contractor, or an admin.
func (h *Hub) CanJoin(ctx context.Context, requestID, userID int64, role string) (bool, error) {
	if role == domain.RoleAdmin {
		return true, nil
	}
	sr, err := h.requests.GetByID(ctx, requestID)
	if err != nil {
		return false, err
	}
	if sr == nil {
		return false, domain.ErrNotFound
	}
	if sr.CustomerID == userID {
		return true, nil
	}
	return sr.ContractorID != nil && *sr.ContractorID == userID, nil
}

// Join takes ownership of the connection, replays recent history, and pumps
// messages until the peer goes away.
func (h *Hub) Join(ctx context.Context, conn *websocket.Conn, requestID, userID int64) {
	c := &client{
		hub:       h,
		conn:      conn,
		requestID: requestID,
		userID:    userID,
		send:      make(chan []byte, 32),
	}

	h.mu.Lock()
	room := h.rooms[requestID]
	if room == nil {
		room = make(map[*client]struct{})
		h.rooms[requestID] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()

	// The write pump must be draining before history is queued: a replay
	// larger than the send buffer would otherwise block Join with no reader.
	go c.writePump()
	h.replayHistory(ctx, c)
	c.readPump(ctx)
}

func (h *Hub) replayHistory(ctx context.Context, c *client) {
	history, err := h.chat.History(ctx, c.requestID, historyLimit)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load chat history", "error", err, "request_id", c.requestID)
		return
	}
	for i := range history {
		if payload, err := json.Marshal(&history[i]); err == nil {
			c.send <- payload
		}
	}
}

func (h *Hub) broadcast(requestID int64, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[requestID] {
		select {
		case c.send <- payload:
		default:
			// Slow consumer; drop the message rather than block the room.
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[c.requestID]
	if room == nil {
		return
	}
	if _, ok := room[c]; ok {
		delete(room, c)
		close(c.send)
	}
	if len(room) == 0 {
		delete(h.rooms, c.requestID)
	}
}

func (c *client) readPump(ctx context.Context) {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Chat connection closed unexpectedly", "error", err)
			}
			return
		}

		var in inbound
		if err := json.Unmarshal(raw, &in); err != nil || in.Body == "" {
			continue
		}

		msg, err := c.hub.chat.Append(ctx, c.requestID, c.userID, in.Body)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to persist chat message", "error", err)
			continue
		}

		if payload, err := json.Marshal(msg); err == nil {
			c.hub.broadcast(c.requestID, payload)
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
