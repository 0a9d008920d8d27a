package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PartnerRepo interface {
	CreateApplication(ctx context.Context, userID int64, in *domain.PartnerApplyRequest) (*domain.PartnerApplication, error)
	GetApplication(ctx context.Context, id int64) (*domain.PartnerApplication, error)
	ListApplications(ctx context.Context, status domain.ApplicationStatus, limit, offset int) ([]domain.PartnerApplication, error)
	// SetStatus resolves a pending application; returns nil when the
	// application does not exist or was already resolved.
	SetStatus(ctx context.Context, id int64, status domain.ApplicationStatus, note string) (*domain.PartnerApplication, error)
	HasPending(ctx context.Context, userID int64) (bool, error)
}

type PartnerRepoImpl struct{ pool *pgxpool.Pool }

func NewPartnerRepo(pool *pgxpool.Pool) *PartnerRepoImpl { return &PartnerRepoImpl{pool: pool} }

const applicationCols = `id, user_id, requested_role, company_name, documents_url, status, note, created_at, updated_at`

func scanApplication(row pgx.Row) (*domain.PartnerApplication, error) {
	var a domain.PartnerApplication
	err := row.Scan(&a.ID, &a.UserID, &a.RequestedRole, &a.CompanyName, &a.DocumentsURL,
		&a.Status, &a.Note, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PartnerRepoImpl) CreateApplication(ctx context.Context, userID int64, in *domain.PartnerApplyRequest) (*domain.PartnerApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanApplication(r.pool.QueryRow(ctx, `
INSERT INTO partner_applications (user_id, requested_role, company_name, documents_url, status)
VALUES ($1, $2, $3, $4, 'pending')
RETURNING `+applicationCols,
		userID, in.RequestedRole, in.CompanyName, in.DocumentsURL))
}

func (r *PartnerRepoImpl) GetApplication(ctx context.Context, id int64) (*domain.PartnerApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanApplication(r.pool.QueryRow(ctx,
		`SELECT `+applicationCols+` FROM partner_applications WHERE id = $1`, id))
}

func (r *PartnerRepoImpl) ListApplications(ctx context.Context, status domain.ApplicationStatus, limit, offset int) ([]domain.PartnerApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
SELECT `+applicationCols+`
FROM partner_applications
WHERE ($1 = '' OR status = $1)
ORDER BY id DESC
LIMIT $2 OFFSET $3`, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.PartnerApplication
	for rows.Next() {
		var a domain.PartnerApplication
		if err := rows.Scan(&a.ID, &a.UserID, &a.RequestedRole, &a.CompanyName, &a.DocumentsURL,
			&a.Status, &a.Note, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *PartnerRepoImpl) SetStatus(ctx context.Context, id int64, status domain.ApplicationStatus, note string) (*domain.PartnerApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanApplication(r.pool.QueryRow(ctx, `
UPDATE partner_applications
SET status = $2, note = $3, updated_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING `+applicationCols, id, status, note))
}

func (r *PartnerRepoImpl) HasPending(ctx context.Context, userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM partner_applications WHERE user_id = $1 AND status = 'pending')`,
		userID).Scan(&exists)
	return exists, err
}
