package postgres

import (
	"context"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepo interface {
	Append(ctx context.Context, requestID, senderID int64, body string) (*domain.ChatMessage, error)
	History(ctx context.Context, requestID int64, limit int) ([]domain.ChatMessage, error)
}

type ChatRepoImpl struct{ pool *pgxpool.Pool }

func NewChatRepo(pool *pgxpool.Pool) *ChatRepoImpl { return &ChatRepoImpl{pool: pool} }

func (r *ChatRepoImpl) Append(ctx context.Context, requestID, senderID int64, body string) (*domain.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.ChatMessage
	err := r.pool.QueryRow(ctx, `
INSERT INTO chat_messages (request_id, sender_id, body)
VALUES ($1, $2, $3)
RETURNING id, request_id, sender_id, body, created_at`,
		requestID, senderID, body).Scan(&m.ID, &m.RequestID, &m.SenderID, &m.Body, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ChatRepoImpl) History(ctx context.Context, requestID int64, limit int) ([]domain.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
SELECT id, request_id, sender_id, body, created_at
FROM chat_messages
WHERE request_id = $1
ORDER BY id DESC
LIMIT $2`, requestID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.RequestID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}

	// Oldest first for rendering.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, rows.Err()
}
