package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/repo/postgres"
	"github.com/fixline/homemart/pkg/events"
	"github.com/fixline/homemart/pkg/logger"
)

type RequestService interface {
	Create(ctx context.Context, customerID int64, in *domain.ServiceRequestCreate) (*domain.ServiceRequest, error)
	Get(ctx context.Context, id int64) (*domain.ServiceRequest, error)
	ListOpen(ctx context.Context, limit, offset int) ([]domain.ServiceRequest, error)
	ListMine(ctx context.Context, userID int64, role string, limit, offset int) ([]domain.ServiceRequest, error)
	Accept(ctx context.Context, id, contractorID int64) (*domain.ServiceRequest, error)
	Complete(ctx context.Context, id, callerID int64) error
	Cancel(ctx context.Context, id, customerID int64) error
}

type requestService struct {
	requests  postgres.RequestRepo
	users     postgres.UsersRepo
	estimator EstimateService
	publisher events.Publisher
}

func NewRequestService(
	requests postgres.RequestRepo,
	users postgres.UsersRepo,
	estimator EstimateService,
	publisher events.Publisher,
) RequestService {
	return &requestService{
		requests:  requests,
		users:     users,
		estimator: estimator,
		publisher: publisher,
	}
}

// Create persists the request and, when asked, attaches an AI estimate first.
// An estimate that failed every retry is stored with its sentinel description
// and a zero price; the request itself still goes through.
func (s *requestService) Create(ctx context.Context, customerID int64, in *domain.ServiceRequestCreate) (*domain.ServiceRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var estimateDesc string
	var estimateCents int64
	if in.WantsAIEstimate && s.estimator != nil {
		est, err := s.estimator.Estimate(ctx, &domain.EstimateRequest{
			ProjectType: in.Title,
			Notes:       in.Description,
			Location:    in.Address,
		})
		if err != nil {
			logger.WarnContext(ctx, "Estimate failed during request creation", "error", err)
		} else {
			estimateDesc = est.Description
			estimateCents = est.EstimatedCents
		}
	}

	sr, err := s.requests.Create(ctx, customerID, in, estimateDesc, estimateCents)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if email := s.lookupEmail(ctx, customerID); email != "" {
		s.publish(ctx, events.RequestCreated, events.RequestCreatedEvent{
			RequestID:     sr.ID,
			CustomerID:    customerID,
			CustomerEmail: email,
			Title:         sr.Title,
			Budget:        sr.BudgetCents,
			CreatedAt:     sr.CreatedAt,
		})
		s.notify(ctx, customerID, email, "request_created",
			"Request received",
			fmt.Sprintf("Your request %q was created and is visible to contractors.", sr.Title))
	}

	return sr, nil
}

func (s *requestService) Get(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	sr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sr == nil {
		return nil, domain.ErrNotFound
	}
	return sr, nil
}

func (s *requestService) ListOpen(ctx context.Context, limit, offset int) ([]domain.ServiceRequest, error) {
	return s.requests.ListOpen(ctx, clampLimit(limit), clampOffset(offset))
}

func (s *requestService) ListMine(ctx context.Context, userID int64, role string, limit, offset int) ([]domain.ServiceRequest, error) {
	if role == domain.RoleContractor {
		return s.requests.ListByContractor(ctx, userID, clampLimit(limit), clampOffset(offset))
	}
	return s.requests.ListByCustomer(ctx, userID, clampLimit(limit), clampOffset(offset))
}

// Accept is first-come-first-served: the row update is guarded on the open
// status, so concurrent contractors race and exactly one wins.
func (s *requestService) Accept(ctx context.Context, id, contractorID int64) (*domain.ServiceRequest, error) {
	sr, err := s.requests.Accept(ctx, id, contractorID)
	if err != nil {
		return nil, fmt.Errorf("failed to accept request: %w", err)
	}
	if sr == nil {
		existing, err := s.requests.GetByID(ctx, id)
		if err == nil && existing == nil {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrConflict
	}

	if email := s.lookupEmail(ctx, sr.CustomerID); email != "" {
		s.publish(ctx, events.RequestAccepted, events.RequestAcceptedEvent{
			RequestID:     sr.ID,
			ContractorID:  contractorID,
			CustomerEmail: email,
			AcceptedAt:    time.Now(),
		})
		s.notify(ctx, sr.CustomerID, email, "request_accepted",
			"A contractor accepted your request",
			fmt.Sprintf("Your request %q has been accepted.", sr.Title))
	}

	return sr, nil
}

func (s *requestService) Complete(ctx context.Context, id, callerID int64) error {
	sr, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sr.CustomerID != callerID && (sr.ContractorID == nil || *sr.ContractorID != callerID) {
		return domain.ErrForbidden
	}
	if sr.Status != domain.RequestAccepted {
		return domain.ErrConflict
	}

	ok, err := s.requests.SetStatus(ctx, id, domain.RequestCompleted)
	if err != nil {
		return fmt.Errorf("failed to complete request: %w", err)
	}
	if !ok {
		return domain.ErrConflict
	}

	s.publish(ctx, events.RequestCompleted, map[string]any{"request_id": id})
	return nil
}

func (s *requestService) Cancel(ctx context.Context, id, customerID int64) error {
	sr, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sr.CustomerID != customerID {
		return domain.ErrForbidden
	}
	if sr.Status == domain.RequestCompleted || sr.Status == domain.RequestCanceled {
		return domain.ErrConflict
	}

	ok, err := s.requests.SetStatus(ctx, id, domain.RequestCanceled)
	if err != nil {
		return fmt.Errorf("failed to cancel request: %w", err)
	}
	if !ok {
		return domain.ErrConflict
	}

	if email := s.lookupEmail(ctx, sr.CustomerID); email != "" {
		s.publish(ctx, events.RequestCanceled, events.RequestCanceledEvent{
			RequestID:     id,
			CustomerEmail: email,
			CanceledAt:    time.Now(),
		})
	}
	return nil
}

func (s *requestService) lookupEmail(ctx context.Context, userID int64) string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return ""
	}
	return user.Email
}

// publish failures are logged, never surfaced: events are best-effort
// side channels, the state change already committed.
func (s *requestService) publish(ctx context.Context, subject string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}

func (s *requestService) notify(ctx context.Context, userID int64, email, typ, subject, body string) {
	if s.publisher == nil {
		return
	}
	ev := events.NotificationEvent{
		Type:      typ,
		UserID:    userID,
		Recipient: email,
		Subject:   subject,
		Body:      body,
		Email:     true,
	}
	if err := s.publisher.Publish(ctx, events.NotifySend, ev); err != nil {
		logger.ErrorContext(ctx, "Failed to publish notification", "type", typ, "error", err)
	}
}

func clampLimit(limit int) int {
	if limit < 1 || limit > 100 {
		return 20
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
