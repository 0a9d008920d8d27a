package service

import (
	"context"
	"fmt"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/repo/postgres"
)

type CartService interface {
	Add(ctx context.Context, userID int64, in *domain.CartAddRequest) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID int64, qty int) (*domain.CartItem, error)
	Remove(ctx context.Context, userID, itemID int64) error
	Get(ctx context.Context, userID int64) (*domain.Cart, error)
	Clear(ctx context.Context, userID int64) error
}

type cartService struct {
	cart    postgres.CartRepo
	catalog postgres.CatalogRepo
}

func NewCartService(cart postgres.CartRepo, catalog postgres.CatalogRepo) CartService {
	return &cartService{cart: cart, catalog: catalog}
}

// Add snapshots the material's current price into the cart line; a later
// price change does not affect items already in the cart.
func (s *cartService) Add(ctx context.Context, userID int64, in *domain.CartAddRequest) (*domain.CartItem, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	material, err := s.catalog.GetMaterial(ctx, in.MaterialID)
	if err != nil {
		return nil, fmt.Errorf("failed to load material: %w", err)
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	if material.Stock < in.Quantity {
		return nil, domain.FieldError("quantity", "exceeds available stock")
	}

	return s.cart.Upsert(ctx, userID, material.ID, in.Quantity, material.PriceCents)
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID int64, qty int) (*domain.CartItem, error) {
	if qty < 1 || qty > domain.MaxCartItemQuantity {
		return nil, domain.FieldError("quantity", "must be between 1 and 500")
	}
	item, err := s.cart.UpdateQuantity(ctx, userID, itemID, qty)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *cartService) Remove(ctx context.Context, userID, itemID int64) error {
	ok, err := s.cart.Remove(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *cartService) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	items, err := s.cart.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	cart := &domain.Cart{Items: items}
	cart.Recalculate()
	return cart, nil
}

func (s *cartService) Clear(ctx context.Context, userID int64) error {
	return s.cart.Clear(ctx, userID)
}
