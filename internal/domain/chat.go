package domain

import "time"

// ChatMessage belongs to the room of a service request; only the customer
// and the accepted contractor may read or write it.
type ChatMessage struct {
	ID        int64     `json:"id"`
	RequestID int64     `json:"request_id"`
	SenderID  int64     `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
