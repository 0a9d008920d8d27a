package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRepo interface {
	// Upsert adds the material to the user's cart or replaces the quantity
	// when it is already there.
	Upsert(ctx context.Context, userID, materialID int64, qty int, unitPriceCents int64) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID int64, qty int) (*domain.CartItem, error)
	Remove(ctx context.Context, userID, itemID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.CartItem, error)
	Clear(ctx context.Context, userID int64) error
}

type CartRepoImpl struct{ pool *pgxpool.Pool }

func NewCartRepo(pool *pgxpool.Pool) *CartRepoImpl { return &CartRepoImpl{pool: pool} }

const cartCols = `id, user_id, material_id, quantity, unit_price_cents, created_at, updated_at`

func scanCartItem(row pgx.Row) (*domain.CartItem, error) {
	var it domain.CartItem
	err := row.Scan(&it.ID, &it.UserID, &it.MaterialID, &it.Quantity, &it.UnitPriceCents, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (r *CartRepoImpl) Upsert(ctx context.Context, userID, materialID int64, qty int, unitPriceCents int64) (*domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanCartItem(r.pool.QueryRow(ctx, `
INSERT INTO cart_items (user_id, material_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, material_id) DO UPDATE SET
	quantity = EXCLUDED.quantity,
	unit_price_cents = EXCLUDED.unit_price_cents,
	updated_at = now()
RETURNING `+cartCols,
		userID, materialID, qty, unitPriceCents))
}

func (r *CartRepoImpl) UpdateQuantity(ctx context.Context, userID, itemID int64, qty int) (*domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanCartItem(r.pool.QueryRow(ctx, `
UPDATE cart_items
SET quantity = $3, updated_at = now()
WHERE id = $2 AND user_id = $1
RETURNING `+cartCols, userID, itemID, qty))
}

func (r *CartRepoImpl) Remove(ctx context.Context, userID, itemID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $2 AND user_id = $1`, userID, itemID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CartRepoImpl) ListByUser(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+cartCols+` FROM cart_items WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.MaterialID, &it.Quantity, &it.UnitPriceCents, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *CartRepoImpl) Clear(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}
