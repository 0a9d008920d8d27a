package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RefreshRepo stores hashed refresh tokens grouped into families. Rotation
// must be atomic: two concurrent rotations of the same token may not both
// succeed.
type RefreshRepo interface {
	Create(ctx context.Context, userID int64, tokenHash, family string, expiresAt time.Time) error
	FindByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	// Rotate marks the token rotated iff it is live (not rotated, not
	// revoked, not expired) and returns the record. Returns nil when some
	// other caller won the race or the token is not live.
	Rotate(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeFamily(ctx context.Context, family string) error
}

type RefreshRepoImpl struct{ pool *pgxpool.Pool }

func NewRefreshRepo(pool *pgxpool.Pool) *RefreshRepoImpl { return &RefreshRepoImpl{pool: pool} }

const refreshCols = `id, user_id, token_hash, family, expires_at, rotated_at, revoked_at, created_at`

func scanRefresh(row pgx.Row) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.Family, &t.ExpiresAt, &t.RotatedAt, &t.RevokedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *RefreshRepoImpl) Create(ctx context.Context, userID int64, tokenHash, family string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
INSERT INTO refresh_tokens (user_id, token_hash, family, expires_at)
VALUES ($1, $2, $3, $4)`,
		userID, tokenHash, family, expiresAt)
	return err
}

func (r *RefreshRepoImpl) FindByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanRefresh(r.pool.QueryRow(ctx,
		`SELECT `+refreshCols+` FROM refresh_tokens WHERE token_hash = $1`, tokenHash))
}

func (r *RefreshRepoImpl) Rotate(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanRefresh(r.pool.QueryRow(ctx, `
UPDATE refresh_tokens
SET rotated_at = now()
WHERE token_hash = $1
  AND rotated_at IS NULL
  AND revoked_at IS NULL
  AND expires_at > now()
RETURNING `+refreshCols, tokenHash))
}

func (r *RefreshRepoImpl) RevokeFamily(ctx context.Context, family string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
UPDATE refresh_tokens
SET revoked_at = now()
WHERE family = $1 AND revoked_at IS NULL`, family)
	return err
}
