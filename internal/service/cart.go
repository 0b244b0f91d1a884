package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/favcart/internal/logging"
	"github.com/Skotchmaster/favcart/internal/models"
	"github.com/Skotchmaster/favcart/internal/repo"
)

// CartService manages the authenticated user's cart. Every method is scoped
// to userID.
type CartService struct {
	Repo *repo.GormRepo
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return s.Repo.GetCart(ctx, userID)
}

// AddItem merges into an existing line and returns the updated cart.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) ([]models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add_item")

	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}

	exists, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("product %s not found: %w", productID, ErrNotFound)
	}

	if err := s.Repo.AddToCart(ctx, userID, productID, quantity); err != nil {
		if errors.Is(err, repo.ErrQuantityLimit) {
			return nil, fmt.Errorf("quantity cannot exceed %d: %w", models.MaxCartQuantity, ErrValidation)
		}
		return nil, err
	}
	l.Debug("cart_item_added", "product_id", productID, "quantity", quantity)

	return s.Repo.GetCart(ctx, userID)
}

// RemoveItem succeeds whether or not the line exists.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) ([]models.CartItem, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if err := s.Repo.RemoveFromCart(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.Repo.GetCart(ctx, userID)
}

// SetQuantity never lets a line drop below one; use RemoveItem instead.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if productID == uuid.Nil {
		return fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if err := checkQuantity(quantity); err != nil {
		return err
	}

	err := s.Repo.SetCartQuantity(ctx, userID, productID, quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("product %s is not in the cart: %w", productID, ErrNotFound)
	}
	return err
}

func checkQuantity(quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}
	if quantity > models.MaxCartQuantity {
		return fmt.Errorf("quantity cannot exceed %d: %w", models.MaxCartQuantity, ErrValidation)
	}
	return nil
}
