package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mbenitez/tienda/internal/models"
	"github.com/mbenitez/tienda/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
}

func (s *CartService) GetCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := s.Repo.GetCart(ctx, cartID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
	}
	return cart, err
}

// AddItem appends a line item or bumps the quantity of an existing one.
// Stock is only checked here, not reserved; it is decremented at
// purchase time.
func (s *CartService) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be a positive integer: %w", ErrValidation)
	}

	if _, err := s.Repo.GetCart(ctx, cartID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
		}
		return nil, err
	}

	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	if quantity > product.Stock {
		return nil, fmt.Errorf("requested %d of %q, %d in stock: %w",
			quantity, product.Name, product.Stock, ErrInsufficientStock)
	}

	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.Repo.UpsertItem(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItemQuantity replaces the quantity of an existing line item.
// A product not already in the cart is reported as not found.
func (s *CartService) UpdateItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be a positive integer: %w", ErrValidation)
	}

	if _, err := s.Repo.GetCart(ctx, cartID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
		}
		return err
	}

	err := s.Repo.SetItemQuantity(ctx, cartID, productID, quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("product %s not in cart: %w", productID, ErrNotFound)
	}
	return err
}

// RemoveItem deletes the matching line item. Removing an absent item is
// not an error.
func (s *CartService) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	if _, err := s.Repo.GetCart(ctx, cartID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
		}
		return err
	}
	return s.Repo.DeleteItem(ctx, cartID, productID)
}

// ClearItems empties the cart. Idempotent.
func (s *CartService) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	if _, err := s.Repo.GetCart(ctx, cartID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
		}
		return err
	}
	return s.Repo.ClearItems(ctx, cartID)
}
