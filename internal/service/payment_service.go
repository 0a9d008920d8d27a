package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/platform/payments"
	"github.com/fixline/homemart/internal/repo/postgres"
	"github.com/fixline/homemart/pkg/events"
	"github.com/fixline/homemart/pkg/logger"
)

type PaymentService interface {
	// Checkout turns the user's cart into a pending order backed by a
	// payment intent, reserving stock up front.
	Checkout(ctx context.Context, userID int64) (*domain.CheckoutResponse, error)
	// HandleIntentSucceeded is called from the provider webhook. Duplicate
	// deliveries are absorbed: only the pending -> paid transition fires
	// side effects.
	HandleIntentSucceeded(ctx context.Context, intentID string) error
	HandleIntentFailed(ctx context.Context, intentID string) error
	GetOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	ListOrders(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error)
}

type paymentService struct {
	orders    postgres.OrdersRepo
	cart      postgres.CartRepo
	catalog   postgres.CatalogRepo
	users     postgres.UsersRepo
	intents   payments.IntentCreator
	publisher events.Publisher
	currency  string
}

func NewPaymentService(
	orders postgres.OrdersRepo,
	cart postgres.CartRepo,
	catalog postgres.CatalogRepo,
	users postgres.UsersRepo,
	intents payments.IntentCreator,
	publisher events.Publisher,
	currency string,
) PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &paymentService{
		orders:    orders,
		cart:      cart,
		catalog:   catalog,
		users:     users,
		intents:   intents,
		publisher: publisher,
		currency:  currency,
	}
}

func (s *paymentService) Checkout(ctx context.Context, userID int64) (*domain.CheckoutResponse, error) {
	items, err := s.cart.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.FieldError("cart", "is empty")
	}

	// Reservations taken so far; every error path below must hand them back
	// or a failed checkout permanently burns sellable stock.
	var total int64
	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		ok, err := s.catalog.DecrementStock(ctx, it.MaterialID, it.Quantity)
		if err != nil {
			s.releaseStock(ctx, orderItems)
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		if !ok {
			s.releaseStock(ctx, orderItems)
			return nil, domain.FieldError("cart", fmt.Sprintf("material %d is out of stock", it.MaterialID))
		}
		total += it.UnitPriceCents * int64(it.Quantity)
		orderItems = append(orderItems, domain.OrderItem{
			MaterialID:     it.MaterialID,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}

	order, err := s.orders.CreateWithItems(ctx, userID, total, s.currency, orderItems)
	if err != nil {
		s.releaseStock(ctx, orderItems)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	intent, err := s.intents.CreateIntent(ctx, total, s.currency, order.ID)
	if err != nil {
		s.releaseStock(ctx, orderItems)
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	if err := s.orders.SetIntent(ctx, order.ID, intent.ID); err != nil {
		s.releaseStock(ctx, orderItems)
		return nil, fmt.Errorf("failed to attach payment intent: %w", err)
	}

	if err := s.cart.Clear(ctx, userID); err != nil {
		logger.WarnContext(ctx, "Failed to clear cart after checkout", "error", err, "user_id", userID)
	}

	if email := s.lookupEmail(ctx, userID); email != "" {
		s.publish(ctx, events.OrderCreated, events.OrderCreatedEvent{
			OrderID:       order.ID,
			CustomerID:    userID,
			CustomerEmail: email,
			Amount:        total,
			Currency:      s.currency,
		})
	}

	return &domain.CheckoutResponse{
		OrderID:      order.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  total,
		Currency:     s.currency,
	}, nil
}

func (s *paymentService) HandleIntentSucceeded(ctx context.Context, intentID string) error {
	order, err := s.orders.MarkPaidByIntent(ctx, intentID)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	if order == nil {
		// Already processed or unknown intent; webhook retries land here.
		logger.DebugContext(ctx, "Ignoring payment webhook with no pending order", "intent_id", intentID)
		return nil
	}

	email := s.lookupEmail(ctx, order.UserID)
	s.publish(ctx, events.PaymentCaptured, events.PaymentCapturedEvent{
		OrderID:       order.ID,
		IntentID:      intentID,
		Amount:        order.TotalCents,
		CustomerEmail: email,
		CapturedAt:    time.Now(),
	})
	if email != "" {
		s.publish(ctx, events.NotifySend, events.NotificationEvent{
			Type:      "payment_captured",
			UserID:    order.UserID,
			Recipient: email,
			Subject:   "Payment received",
			Body:      fmt.Sprintf("Your payment for order #%d was received.", order.ID),
			Email:     true,
		})
	}
	return nil
}

func (s *paymentService) HandleIntentFailed(ctx context.Context, intentID string) error {
	if err := s.orders.MarkFailedByIntent(ctx, intentID); err != nil {
		return fmt.Errorf("failed to mark order failed: %w", err)
	}
	s.publish(ctx, events.PaymentFailed, map[string]any{"intent_id": intentID})
	return nil
}

func (s *paymentService) GetOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (s *paymentService) ListOrders(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID, clampLimit(limit), clampOffset(offset))
}

func (s *paymentService) releaseStock(ctx context.Context, reserved []domain.OrderItem) {
	for _, it := range reserved {
		if err := s.catalog.IncrementStock(ctx, it.MaterialID, it.Quantity); err != nil {
			logger.ErrorContext(ctx, "Failed to release reserved stock",
				"error", err, "material_id", it.MaterialID, "quantity", it.Quantity)
		}
	}
}

func (s *paymentService) lookupEmail(ctx context.Context, userID int64) string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return ""
	}
	return user.Email
}

func (s *paymentService) publish(ctx context.Context, subject string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
