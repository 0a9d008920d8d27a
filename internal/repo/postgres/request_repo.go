package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestRepo interface {
	Create(ctx context.Context, customerID int64, in *domain.ServiceRequestCreate, estimateDesc string, estimateCents int64) (*domain.ServiceRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error)
	ListOpen(ctx context.Context, limit, offset int) ([]domain.ServiceRequest, error)
	ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.ServiceRequest, error)
	ListByContractor(ctx context.Context, contractorID int64, limit, offset int) ([]domain.ServiceRequest, error)
	// Accept assigns the contractor iff the request is still open.
	Accept(ctx context.Context, id, contractorID int64) (*domain.ServiceRequest, error)
	SetStatus(ctx context.Context, id int64, status domain.RequestStatus) (bool, error)
	CountByStatus(ctx context.Context, status domain.RequestStatus) (int64, error)
}

type RequestRepoImpl struct{ pool *pgxpool.Pool }

func NewRequestRepo(pool *pgxpool.Pool) *RequestRepoImpl { return &RequestRepoImpl{pool: pool} }

const requestCols = `id, customer_id, contractor_id, status, title, description, address,
	budget_cents, estimate_description, estimate_cents, created_at, updated_at`

func scanRequest(row pgx.Row) (*domain.ServiceRequest, error) {
	var sr domain.ServiceRequest
	err := row.Scan(&sr.ID, &sr.CustomerID, &sr.ContractorID, &sr.Status, &sr.Title,
		&sr.Description, &sr.Address, &sr.BudgetCents, &sr.EstimateDescription,
		&sr.EstimateCents, &sr.CreatedAt, &sr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sr, nil
}

func (r *RequestRepoImpl) Create(ctx context.Context, customerID int64, in *domain.ServiceRequestCreate, estimateDesc string, estimateCents int64) (*domain.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanRequest(r.pool.QueryRow(ctx, `
INSERT INTO service_requests
	(customer_id, status, title, description, address, budget_cents, estimate_description, estimate_cents)
VALUES ($1, 'open', $2, $3, $4, $5, $6, $7)
RETURNING `+requestCols,
		customerID, in.Title, in.Description, in.Address, in.BudgetCents, estimateDesc, estimateCents))
}

func (r *RequestRepoImpl) GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanRequest(r.pool.QueryRow(ctx,
		`SELECT `+requestCols+` FROM service_requests WHERE id = $1`, id))
}

func (r *RequestRepoImpl) list(ctx context.Context, where string, args []any) ([]domain.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+requestCols+` FROM service_requests `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.ServiceRequest
	for rows.Next() {
		var sr domain.ServiceRequest
		if err := rows.Scan(&sr.ID, &sr.CustomerID, &sr.ContractorID, &sr.Status, &sr.Title,
			&sr.Description, &sr.Address, &sr.BudgetCents, &sr.EstimateDescription,
			&sr.EstimateCents, &sr.CreatedAt, &sr.UpdatedAt); err != nil {
			return nil, err
		}
		reqs = append(reqs, sr)
	}
	return reqs, rows.Err()
}

func (r *RequestRepoImpl) ListOpen(ctx context.Context, limit, offset int) ([]domain.ServiceRequest, error) {
	return r.list(ctx, `WHERE status = 'open' ORDER BY id DESC LIMIT $1 OFFSET $2`, []any{limit, offset})
}

func (r *RequestRepoImpl) ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.ServiceRequest, error) {
	return r.list(ctx, `WHERE customer_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`, []any{customerID, limit, offset})
}

func (r *RequestRepoImpl) ListByContractor(ctx context.Context, contractorID int64, limit, offset int) ([]domain.ServiceRequest, error) {
	return r.list(ctx, `WHERE contractor_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`, []any{contractorID, limit, offset})
}

func (r *RequestRepoImpl) Accept(ctx context.Context, id, contractorID int64) (*domain.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanRequest(r.pool.QueryRow(ctx, `
UPDATE service_requests
SET contractor_id = $2, status = 'accepted', updated_at = now()
WHERE id = $1 AND status = 'open'
RETURNING `+requestCols, id, contractorID))
}

func (r *RequestRepoImpl) SetStatus(ctx context.Context, id int64, status domain.RequestStatus) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
UPDATE service_requests SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RequestRepoImpl) CountByStatus(ctx context.Context, status domain.RequestStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM service_requests WHERE status = $1`, status).Scan(&n)
	return n, err
}
