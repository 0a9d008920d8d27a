package service

import (
	"context"
	"fmt"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/repo/postgres"
	"github.com/fixline/homemart/pkg/events"
	"github.com/fixline/homemart/pkg/logger"
)

type PartnerService interface {
	Apply(ctx context.Context, userID int64, in *domain.PartnerApplyRequest) (*domain.PartnerApplication, error)
	List(ctx context.Context, status domain.ApplicationStatus, limit, offset int) ([]domain.PartnerApplication, error)
	Approve(ctx context.Context, id int64, note string) (*domain.PartnerApplication, error)
	Reject(ctx context.Context, id int64, note string) (*domain.PartnerApplication, error)
	// RemovePartner demotes the user back to customer and deletes the account
	// record's partner standing.
	RemovePartner(ctx context.Context, userID int64) error
}

type partnerService struct {
	partners  postgres.PartnerRepo
	users     postgres.UsersRepo
	publisher events.Publisher
}

func NewPartnerService(partners postgres.PartnerRepo, users postgres.UsersRepo, publisher events.Publisher) PartnerService {
	return &partnerService{partners: partners, users: users, publisher: publisher}
}

func (s *partnerService) Apply(ctx context.Context, userID int64, in *domain.PartnerApplyRequest) (*domain.PartnerApplication, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	if user.Role == in.RequestedRole {
		return nil, domain.FieldError("requested_role", "already has this role")
	}

	pending, err := s.partners.HasPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending applications: %w", err)
	}
	if pending {
		return nil, domain.ErrConflict
	}

	app, err := s.partners.CreateApplication(ctx, userID, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.publish(ctx, events.PartnerApplied, events.PartnerAppliedEvent{
		ApplicationID: app.ID,
		UserID:        userID,
		Email:         user.Email,
		RequestedRole: in.RequestedRole,
	})

	return app, nil
}

func (s *partnerService) List(ctx context.Context, status domain.ApplicationStatus, limit, offset int) ([]domain.PartnerApplication, error) {
	return s.partners.ListApplications(ctx, status, clampLimit(limit), clampOffset(offset))
}

// Approve resolves the application and flips the user's role in one flow.
// Resolution is guarded on pending status, so a second approve (or an
// approve racing a reject) is a conflict, not a double role change.
func (s *partnerService) Approve(ctx context.Context, id int64, note string) (*domain.PartnerApplication, error) {
	app, err := s.partners.SetStatus(ctx, id, domain.ApplicationApproved, note)
	if err != nil {
		return nil, fmt.Errorf("failed to approve application: %w", err)
	}
	if app == nil {
		return nil, domain.ErrConflict
	}

	if err := s.users.UpdateRole(ctx, app.UserID, app.RequestedRole); err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	s.notifyApplicant(ctx, app, events.PartnerApproved,
		"Application approved",
		fmt.Sprintf("You are now registered as a %s.", app.RequestedRole))

	return app, nil
}

func (s *partnerService) Reject(ctx context.Context, id int64, note string) (*domain.PartnerApplication, error) {
	app, err := s.partners.SetStatus(ctx, id, domain.ApplicationRejected, note)
	if err != nil {
		return nil, fmt.Errorf("failed to reject application: %w", err)
	}
	if app == nil {
		return nil, domain.ErrConflict
	}

	s.notifyApplicant(ctx, app, events.PartnerRejected,
		"Application rejected", "Your partner application was not approved.")

	return app, nil
}

func (s *partnerService) RemovePartner(ctx context.Context, userID int64) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return domain.ErrNotFound
	}
	if user.Role != domain.RoleContractor && user.Role != domain.RoleDistributor {
		return domain.ErrConflict
	}

	if err := s.users.UpdateRole(ctx, userID, domain.RoleCustomer); err != nil {
		return fmt.Errorf("failed to demote user: %w", err)
	}
	return nil
}

func (s *partnerService) notifyApplicant(ctx context.Context, app *domain.PartnerApplication, subject, title, body string) {
	user, err := s.users.FindByID(ctx, app.UserID)
	if err != nil || user == nil {
		return
	}
	s.publish(ctx, subject, map[string]any{
		"application_id": app.ID,
		"user_id":        app.UserID,
	})
	s.publish(ctx, events.NotifySend, events.NotificationEvent{
		Type:      string(app.Status),
		UserID:    app.UserID,
		Recipient: user.Email,
		Subject:   title,
		Body:      body,
		Email:     true,
	})
}

func (s *partnerService) publish(ctx context.Context, subject string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
