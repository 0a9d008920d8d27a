package service

import (
	"context"
	"fmt"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/repo/postgres"
)

type NotificationService interface {
	List(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
}

type notificationService struct {
	notifications postgres.NotificationsRepo
}

func NewNotificationService(notifications postgres.NotificationsRepo) NotificationService {
	return &notificationService{notifications: notifications}
}

func (s *notificationService) List(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	return s.notifications.ListByUser(ctx, userID, clampLimit(limit), clampOffset(offset))
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id int64) error {
	ok, err := s.notifications.MarkRead(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
