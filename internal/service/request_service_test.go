package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/platform/ai"
	"github.com/fixline/homemart/pkg/events"
	"github.com/fixline/homemart/pkg/retry"
)

type requestFixture struct {
	svc      RequestService
	requests *mockRequestRepo
	users    *mockUsersRepo
	bus      *mockPublisher
}

func newRequestFixture(t *testing.T, completer ai.Completer) *requestFixture {
	t.Helper()
	f := &requestFixture{
		requests: newMockRequestRepo(),
		users:    newMockUsersRepo(),
		bus:      &mockPublisher{},
	}
	var estimator EstimateService
	if completer != nil {
		estimator = NewEstimateService(completer, estimateConfig(1))
	}
	f.svc = NewRequestService(f.requests, f.users, estimator, f.bus)
	return f
}

func validCreate(wantsEstimate bool) *domain.ServiceRequestCreate {
	return &domain.ServiceRequestCreate{
		Title:           "Fix leaking roof",
		Description:     "Water comes in over the kitchen",
		Address:         "12 Oak Lane",
		BudgetCents:     250000,
		WantsAIEstimate: wantsEstimate,
	}
}

func TestCreateRequestPublishesEventAndNotification(t *testing.T) {
	f := newRequestFixture(t, nil)
	ctx := context.Background()
	u, _ := f.users.Create(ctx, "cust@example.com", "Customer", domain.RoleCustomer)

	sr, err := f.svc.Create(ctx, u.ID, validCreate(false))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sr.Status != domain.RequestOpen {
		t.Fatalf("status = %s, want open", sr.Status)
	}
	if f.bus.published(events.RequestCreated) != 1 {
		t.Fatal("expected request.created event")
	}
	if f.bus.published(events.NotifySend) != 1 {
		t.Fatal("expected notify.send event")
	}
}

func TestCreateRequestAttachesAIEstimate(t *testing.T) {
	completer := &scriptedCompleter{results: []retry.Result[ai.Completion]{
		retry.OkResult(ai.Completion{Description: "Roof repair, ~2 days", PriceCents: 180000}),
	}}
	f := newRequestFixture(t, completer)
	ctx := context.Background()
	u, _ := f.users.Create(ctx, "cust@example.com", "Customer", domain.RoleCustomer)

	sr, err := f.svc.Create(ctx, u.ID, validCreate(true))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sr.EstimateDescription != "Roof repair, ~2 days" || sr.EstimateCents != 180000 {
		t.Fatalf("estimate = %q/%d, want attached estimate", sr.EstimateDescription, sr.EstimateCents)
	}
}

func TestCreateRequestStoresSentinelWhenEstimateFails(t *testing.T) {
	completer := &scriptedCompleter{results: []retry.Result[ai.Completion]{
		retry.TransientResult(ai.Completion{Description: ai.SentinelNoResult}, errors.New("empty")),
	}}
	f := newRequestFixture(t, completer)
	ctx := context.Background()
	u, _ := f.users.Create(ctx, "cust@example.com", "Customer", domain.RoleCustomer)

	sr, err := f.svc.Create(ctx, u.ID, validCreate(true))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// The request still goes through; the sentinel records what happened.
	if sr.EstimateDescription != ai.SentinelNoResult || sr.EstimateCents != 0 {
		t.Fatalf("estimate = %q/%d, want sentinel with zero price", sr.EstimateDescription, sr.EstimateCents)
	}
}

func TestAcceptIsFirstComeFirstServed(t *testing.T) {
	f := newRequestFixture(t, nil)
	ctx := context.Background()
	cust, _ := f.users.Create(ctx, "cust@example.com", "Customer", domain.RoleCustomer)
	sr, _ := f.svc.Create(ctx, cust.ID, validCreate(false))

	if _, err := f.svc.Accept(ctx, sr.ID, 100); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := f.svc.Accept(ctx, sr.ID, 101); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second accept: err = %v, want ErrConflict", err)
	}
}

func TestAcceptUnknownRequest(t *testing.T) {
	f := newRequestFixture(t, nil)
	if _, err := f.svc.Accept(context.Background(), 999, 100); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCancelOnlyByOwner(t *testing.T) {
	f := newRequestFixture(t, nil)
	ctx := context.Background()
	cust, _ := f.users.Create(ctx, "cust@example.com", "Customer", domain.RoleCustomer)
	sr, _ := f.svc.Create(ctx, cust.ID, validCreate(false))

	if err := f.svc.Cancel(ctx, sr.ID, cust.ID+1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger cancel: err = %v, want ErrForbidden", err)
	}
	if err := f.svc.Cancel(ctx, sr.ID, cust.ID); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	// Canceling twice is a conflict.
	if err := f.svc.Cancel(ctx, sr.ID, cust.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("double cancel: err = %v, want ErrConflict", err)
	}
}

func TestCompleteRequiresParticipant(t *testing.T) {
	f := newRequestFixture(t, nil)
	ctx := context.Background()
	cust, _ := f.users.Create(ctx, "cust@example.com", "Customer", domain.RoleCustomer)
	sr, _ := f.svc.Create(ctx, cust.ID, validCreate(false))

	// Not accepted yet.
	if err := f.svc.Complete(ctx, sr.ID, cust.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("complete open request: err = %v, want ErrConflict", err)
	}

	if _, err := f.svc.Accept(ctx, sr.ID, 100); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if err := f.svc.Complete(ctx, sr.ID, 999); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger complete: err = %v, want ErrForbidden", err)
	}
	if err := f.svc.Complete(ctx, sr.ID, 100); err != nil {
		t.Fatalf("contractor complete: %v", err)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	f := newRequestFixture(t, nil)
	_, err := f.svc.Create(context.Background(), 1, &domain.ServiceRequestCreate{BudgetCents: -5})
	var v *domain.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	for _, field := range []string{"title", "description", "address", "budget_cents"} {
		if _, ok := v.Fields[field]; !ok {
			t.Errorf("missing field error for %s", field)
		}
	}
}
