package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fixline/homemart/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	RequestCreated   = "request.created"
	RequestAccepted  = "request.accepted"
	RequestCompleted = "request.completed"
	RequestCanceled  = "request.canceled"

	OrderCreated    = "order.created"
	PaymentCaptured = "payment.captured"
	PaymentFailed   = "payment.failed"

	PartnerApplied  = "partner.applied"
	PartnerApproved = "partner.approved"
	PartnerRejected = "partner.rejected"

	NotifySend = "notify.send"
)

// Event payloads
type RequestCreatedEvent struct {
	RequestID     int64     `json:"request_id"`
	CustomerID    int64     `json:"customer_id"`
	CustomerEmail string    `json:"customer_email"`
	Title         string    `json:"title"`
	Budget        int64     `json:"budget"`
	CreatedAt     time.Time `json:"created_at"`
}

type RequestAcceptedEvent struct {
	RequestID     int64     `json:"request_id"`
	ContractorID  int64     `json:"contractor_id"`
	CustomerEmail string    `json:"customer_email"`
	AcceptedAt    time.Time `json:"accepted_at"`
}

type RequestCanceledEvent struct {
	RequestID     int64     `json:"request_id"`
	CustomerEmail string    `json:"customer_email"`
	Reason        string    `json:"reason"`
	CanceledAt    time.Time `json:"canceled_at"`
}

type OrderCreatedEvent struct {
	OrderID       int64  `json:"order_id"`
	CustomerID    int64  `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

type PaymentCapturedEvent struct {
	OrderID       int64     `json:"order_id"`
	IntentID      string    `json:"intent_id"`
	Amount        int64     `json:"amount"`
	CustomerEmail string    `json:"customer_email"`
	CapturedAt    time.Time `json:"captured_at"`
}

type PartnerAppliedEvent struct {
	ApplicationID int64  `json:"application_id"`
	UserID        int64  `json:"user_id"`
	Email         string `json:"email"`
	RequestedRole string `json:"requested_role"`
}

type NotificationEvent struct {
	Type      string                 `json:"type"`
	UserID    int64                  `json:"user_id"`
	Recipient string                 `json:"recipient"`
	Subject   string                 `json:"subject"`
	Body      string                 `json:"body"`
	Email     bool                   `json:"email"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
