package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrdersRepo interface {
	// CreateWithItems writes the order and its line items in one transaction.
	CreateWithItems(ctx context.Context, userID int64, totalCents int64, currency string, items []domain.OrderItem) (*domain.Order, error)
	SetIntent(ctx context.Context, orderID int64, intentID string) error
	// MarkPaidByIntent transitions pending_payment -> paid; returns nil when
	// no pending order matches the intent (duplicate webhook deliveries).
	MarkPaidByIntent(ctx context.Context, intentID string) (*domain.Order, error)
	MarkFailedByIntent(ctx context.Context, intentID string) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error)
	SumPaidCents(ctx context.Context) (int64, error)
}

type OrdersRepoImpl struct{ pool *pgxpool.Pool }

func NewOrdersRepo(pool *pgxpool.Pool) *OrdersRepoImpl { return &OrdersRepoImpl{pool: pool} }

const orderCols = `id, user_id, status, total_cents, currency, intent_id, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.Currency, &o.IntentID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrdersRepoImpl) CreateWithItems(ctx context.Context, userID int64, totalCents int64, currency string, items []domain.OrderItem) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	order, err := scanOrder(tx.QueryRow(ctx, `
INSERT INTO orders (user_id, status, total_cents, currency)
VALUES ($1, 'pending_payment', $2, $3)
RETURNING `+orderCols, userID, totalCents, currency))
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, material_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4)`,
			order.ID, it.MaterialID, it.Quantity, it.UnitPriceCents); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrdersRepoImpl) SetIntent(ctx context.Context, orderID int64, intentID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
UPDATE orders SET intent_id = $2, updated_at = now() WHERE id = $1`, orderID, intentID)
	return err
}

func (r *OrdersRepoImpl) MarkPaidByIntent(ctx context.Context, intentID string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanOrder(r.pool.QueryRow(ctx, `
UPDATE orders
SET status = 'paid', updated_at = now()
WHERE intent_id = $1 AND status = 'pending_payment'
RETURNING `+orderCols, intentID))
}

func (r *OrdersRepoImpl) MarkFailedByIntent(ctx context.Context, intentID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
UPDATE orders
SET status = 'failed', updated_at = now()
WHERE intent_id = $1 AND status = 'pending_payment'`, intentID)
	return err
}

func (r *OrdersRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id = $1`, id))
}

func (r *OrdersRepoImpl) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderCols+` FROM orders WHERE user_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.Currency, &o.IntentID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrdersRepoImpl) SumPaidCents(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var sum int64
	err := r.pool.QueryRow(ctx,
		`SELECT coalesce(sum(total_cents), 0) FROM orders WHERE status = 'paid'`).Scan(&sum)
	return sum, err
}
