package postgres

import (
	"context"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationsRepo interface {
	Create(ctx context.Context, userID int64, typ, subject, body string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) (bool, error)
}

type NotificationsRepoImpl struct{ pool *pgxpool.Pool }

func NewNotificationsRepo(pool *pgxpool.Pool) *NotificationsRepoImpl {
	return &NotificationsRepoImpl{pool: pool}
}

func (r *NotificationsRepoImpl) Create(ctx context.Context, userID int64, typ, subject, body string) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n domain.Notification
	err := r.pool.QueryRow(ctx, `
INSERT INTO notifications (user_id, type, subject, body)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, type, subject, body, read_at, created_at`,
		userID, typ, subject, body).Scan(&n.ID, &n.UserID, &n.Type, &n.Subject, &n.Body, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationsRepoImpl) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, type, subject, body, read_at, created_at
FROM notifications
WHERE user_id = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Subject, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

func (r *NotificationsRepoImpl) MarkRead(ctx context.Context, userID, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
UPDATE notifications
SET read_at = now()
WHERE id = $2 AND user_id = $1 AND read_at IS NULL`, userID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
