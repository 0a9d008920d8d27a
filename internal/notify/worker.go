// Package notify consumes notification events off the bus and delivers them:
// a row in the notifications table for the in-app feed, plus an email when
// the event asks for one. Running it as a queue subscriber keeps delivery
// off the request path and lets multiple API instances share the work.
package notify

import (
	"context"
	"encoding/json"

	"github.com/fixline/homemart/internal/platform/mailer"
	"github.com/fixline/homemart/internal/repo/postgres"
	"github.com/fixline/homemart/pkg/events"
	"github.com/fixline/homemart/pkg/logger"
)

const queueGroup = "notify-workers"

type Worker struct {
	bus           events.Subscriber
	notifications postgres.NotificationsRepo
	mailer        mailer.Service
}

func NewWorker(bus events.Subscriber, notifications postgres.NotificationsRepo, mailer mailer.Service) *Worker {
	return &Worker{bus: bus, notifications: notifications, mailer: mailer}
}

func (w *Worker) Start(ctx context.Context) error {
	return w.bus.QueueSubscribe(events.NotifySend, queueGroup, func(msg *events.Message) {
		w.handle(ctx, msg)
	})
}

func (w *Worker) handle(ctx context.Context, msg *events.Message) {
	var ev events.NotificationEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logger.Error("Failed to decode notification event", "error", err)
		return
	}
	if ev.UserID == 0 {
		return
	}

	if _, err := w.notifications.Create(ctx, ev.UserID, ev.Type, ev.Subject, ev.Body); err != nil {
		logger.ErrorContext(ctx, "Failed to store notification",
			"error", err, "user_id", ev.UserID, "type", ev.Type)
	}

	if ev.Email && ev.Recipient != "" {
		if err := w.mailer.SendNotification(ev.Recipient, ev.Subject, ev.Body); err != nil {
			logger.ErrorContext(ctx, "Failed to send notification email",
				"error", err, "recipient", ev.Recipient, "type", ev.Type)
		}
	}
}
