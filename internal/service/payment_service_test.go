package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/pkg/events"
)

type paymentFixture struct {
	svc     PaymentService
	orders  *mockOrdersRepo
	cart    *mockCartRepo
	catalog *mockCatalogRepo
	users   *mockUsersRepo
	intents *mockIntents
	bus     *mockPublisher
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		orders:  newMockOrdersRepo(),
		cart:    newMockCartRepo(),
		catalog: newMockCatalogRepo(),
		users:   newMockUsersRepo(),
		intents: &mockIntents{},
		bus:     &mockPublisher{},
	}
	f.svc = NewPaymentService(f.orders, f.cart, f.catalog, f.users, f.intents, f.bus, "usd")
	return f
}

func (f *paymentFixture) seedCustomerWithCart(t *testing.T) int64 {
	t.Helper()
	ctx := context.Background()
	u, _ := f.users.Create(ctx, "buyer@example.com", "Buyer", domain.RoleCustomer)
	f.catalog.put(&domain.Material{ID: 10, Name: "Tile", PriceCents: 1500, Stock: 20})
	f.catalog.put(&domain.Material{ID: 11, Name: "Grout", PriceCents: 800, Stock: 5})
	f.cart.Upsert(ctx, u.ID, 10, 4, 1500)
	f.cart.Upsert(ctx, u.ID, 11, 2, 800)
	return u.ID
}

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	f := newPaymentFixture(t)
	userID := f.seedCustomerWithCart(t)

	res, err := f.svc.Checkout(context.Background(), userID)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if want := int64(4*1500 + 2*800); res.AmountCents != want {
		t.Fatalf("amount = %d, want %d", res.AmountCents, want)
	}
	if res.ClientSecret == "" {
		t.Fatal("expected a client secret")
	}

	items, _ := f.cart.ListByUser(context.Background(), userID)
	if len(items) != 0 {
		t.Fatalf("cart still has %d items after checkout", len(items))
	}

	// Stock was reserved.
	tile, _ := f.catalog.GetMaterial(context.Background(), 10)
	if tile.Stock != 16 {
		t.Fatalf("tile stock = %d, want 16", tile.Stock)
	}

	if f.bus.published(events.OrderCreated) != 1 {
		t.Fatal("expected an order.created event")
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newPaymentFixture(t)
	u, _ := f.users.Create(context.Background(), "buyer@example.com", "Buyer", domain.RoleCustomer)

	_, err := f.svc.Checkout(context.Background(), u.ID)
	var v *domain.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestCheckoutInsufficientStock(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	u, _ := f.users.Create(ctx, "buyer@example.com", "Buyer", domain.RoleCustomer)
	f.catalog.put(&domain.Material{ID: 10, Name: "Tile", PriceCents: 1500, Stock: 2})
	f.cart.Upsert(ctx, u.ID, 10, 5, 1500)

	_, err := f.svc.Checkout(ctx, u.ID)
	var v *domain.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestFailedCheckoutReleasesReservedStock(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	u, _ := f.users.Create(ctx, "buyer@example.com", "Buyer", domain.RoleCustomer)
	f.catalog.put(&domain.Material{ID: 10, Name: "Tile", PriceCents: 1500, Stock: 20})
	f.catalog.put(&domain.Material{ID: 11, Name: "Grout", PriceCents: 800, Stock: 1})
	f.cart.Upsert(ctx, u.ID, 10, 4, 1500)
	f.cart.Upsert(ctx, u.ID, 11, 2, 800)

	_, err := f.svc.Checkout(ctx, u.ID)
	var v *domain.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("err = %v, want ValidationError", err)
	}

	// The tile reservation taken before grout failed must be handed back.
	tile, _ := f.catalog.GetMaterial(ctx, 10)
	if tile.Stock != 20 {
		t.Fatalf("tile stock = %d after failed checkout, want 20", tile.Stock)
	}
}

func TestIntentFailureReleasesReservedStock(t *testing.T) {
	f := newPaymentFixture(t)
	userID := f.seedCustomerWithCart(t)
	f.intents.fail = errors.New("provider down")

	if _, err := f.svc.Checkout(context.Background(), userID); err == nil {
		t.Fatal("expected checkout to fail")
	}

	tile, _ := f.catalog.GetMaterial(context.Background(), 10)
	grout, _ := f.catalog.GetMaterial(context.Background(), 11)
	if tile.Stock != 20 || grout.Stock != 5 {
		t.Fatalf("stock = %d/%d after failed checkout, want 20/5", tile.Stock, grout.Stock)
	}

	// The cart survives so the customer can retry.
	items, _ := f.cart.ListByUser(context.Background(), userID)
	if len(items) != 2 {
		t.Fatalf("cart has %d items, want 2", len(items))
	}
}

func TestWebhookSucceededIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	userID := f.seedCustomerWithCart(t)

	res, err := f.svc.Checkout(context.Background(), userID)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if err := f.svc.HandleIntentSucceeded(context.Background(), "pi_test"); err != nil {
		t.Fatalf("first webhook: %v", err)
	}
	// Provider retries the delivery.
	if err := f.svc.HandleIntentSucceeded(context.Background(), "pi_test"); err != nil {
		t.Fatalf("duplicate webhook: %v", err)
	}

	if f.bus.published(events.PaymentCaptured) != 1 {
		t.Fatalf("payment.captured published %d times, want 1", f.bus.published(events.PaymentCaptured))
	}

	order, _ := f.svc.GetOrder(context.Background(), userID, res.OrderID)
	if order.Status != domain.OrderPaid {
		t.Fatalf("order status = %s, want paid", order.Status)
	}
}

func TestGetOrderHidesOtherUsersOrders(t *testing.T) {
	f := newPaymentFixture(t)
	userID := f.seedCustomerWithCart(t)
	res, err := f.svc.Checkout(context.Background(), userID)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	_, err = f.svc.GetOrder(context.Background(), userID+1, res.OrderID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
