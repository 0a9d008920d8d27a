package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OTPRepo stores one-time sign-in challenges. Creating a challenge supersedes
// any prior unconsumed one for the same (email, purpose).
type OTPRepo interface {
	CreateChallenge(ctx context.Context, email string, purpose domain.OTPPurpose, codeHash string, expiresAt time.Time) error
	Latest(ctx context.Context, email string) (*domain.OTPChallenge, error)
	// Consume marks the challenge used; returns false when it was already
	// consumed or has expired. At most one Consume per challenge succeeds.
	Consume(ctx context.Context, id int64) (bool, error)
	BumpAttempts(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type OTPRepoImpl struct{ pool *pgxpool.Pool }

func NewOTPRepo(pool *pgxpool.Pool) *OTPRepoImpl { return &OTPRepoImpl{pool: pool} }

func (r *OTPRepoImpl) CreateChallenge(ctx context.Context, email string, purpose domain.OTPPurpose, codeHash string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Supersede the prior unconsumed challenge for this (email, purpose).
	if _, err := tx.Exec(ctx, `
DELETE FROM otp_challenges
WHERE lower(email) = lower($1) AND purpose = $2 AND consumed_at IS NULL`,
		email, purpose); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO otp_challenges (email, purpose, code_hash, expires_at)
VALUES ($1, $2, $3, $4)`,
		email, purpose, codeHash, expiresAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *OTPRepoImpl) Latest(ctx context.Context, email string) (*domain.OTPChallenge, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.OTPChallenge
	err := r.pool.QueryRow(ctx, `
SELECT id, email, purpose, code_hash, attempts, expires_at, consumed_at, created_at
FROM otp_challenges
WHERE lower(email) = lower($1) AND consumed_at IS NULL
ORDER BY id DESC
LIMIT 1`, email).Scan(&c.ID, &c.Email, &c.Purpose, &c.CodeHash, &c.Attempts, &c.ExpiresAt, &c.ConsumedAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *OTPRepoImpl) Consume(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
UPDATE otp_challenges
SET consumed_at = now()
WHERE id = $1
  AND consumed_at IS NULL
  AND expires_at > now()`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OTPRepoImpl) BumpAttempts(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`UPDATE otp_challenges SET attempts = attempts + 1 WHERE id = $1`, id)
	return err
}

func (r *OTPRepoImpl) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
DELETE FROM otp_challenges
WHERE expires_at < now() - interval '1 day'`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
