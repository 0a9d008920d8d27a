package service

import (
	"context"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/repo/postgres"
	"golang.org/x/sync/errgroup"
)

// Statistics is the admin dashboard snapshot.
type Statistics struct {
	Customers         int64 `json:"customers"`
	Contractors       int64 `json:"contractors"`
	Distributors      int64 `json:"distributors"`
	Materials         int64 `json:"materials"`
	OpenRequests      int64 `json:"open_requests"`
	AcceptedRequests  int64 `json:"accepted_requests"`
	CompletedRequests int64 `json:"completed_requests"`
	RevenueCents      int64 `json:"revenue_cents"`
}

type StatsService interface {
	Snapshot(ctx context.Context) (*Statistics, error)
}

type statsService struct {
	users    postgres.UsersRepo
	catalog  postgres.CatalogRepo
	requests postgres.RequestRepo
	orders   postgres.OrdersRepo
}

func NewStatsService(
	users postgres.UsersRepo,
	catalog postgres.CatalogRepo,
	requests postgres.RequestRepo,
	orders postgres.OrdersRepo,
) StatsService {
	return &statsService{users: users, catalog: catalog, requests: requests, orders: orders}
}

// Snapshot fans the count queries out concurrently; each lands in its own
// field so no synchronization beyond the group is needed.
func (s *statsService) Snapshot(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.Customers, err = s.users.CountByRole(ctx, domain.RoleCustomer)
		return err
	})
	g.Go(func() (err error) {
		stats.Contractors, err = s.users.CountByRole(ctx, domain.RoleContractor)
		return err
	})
	g.Go(func() (err error) {
		stats.Distributors, err = s.users.CountByRole(ctx, domain.RoleDistributor)
		return err
	})
	g.Go(func() (err error) {
		stats.Materials, err = s.catalog.CountMaterials(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.OpenRequests, err = s.requests.CountByStatus(ctx, domain.RequestOpen)
		return err
	})
	g.Go(func() (err error) {
		stats.AcceptedRequests, err = s.requests.CountByStatus(ctx, domain.RequestAccepted)
		return err
	})
	g.Go(func() (err error) {
		stats.CompletedRequests, err = s.requests.CountByStatus(ctx, domain.RequestCompleted)
		return err
	})
	g.Go(func() (err error) {
		stats.RevenueCents, err = s.orders.SumPaidCents(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
