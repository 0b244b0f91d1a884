package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/favcart/internal/repo"
)

type ToggleResult int

const (
	Removed ToggleResult = iota
	Added
)

func (r ToggleResult) String() string {
	if r == Added {
		return "added"
	}
	return "removed"
}

func (r ToggleResult) IsFavorite() bool { return r == Added }

type FavoritesService struct {
	Repo *repo.GormRepo
}

// ToggleFavorite flips membership with a delete and, when nothing was
// deleted, an insert-if-absent. Two concurrent toggles can both report Added
// but the set never holds a duplicate.
func (s *FavoritesService) ToggleFavorite(ctx context.Context, userID, productID uuid.UUID) (ToggleResult, error) {
	if productID == uuid.Nil {
		return Removed, fmt.Errorf("product id is required: %w", ErrValidation)
	}

	removed, err := s.Repo.RemoveFavorite(ctx, userID, productID)
	if err != nil {
		return Removed, err
	}
	if removed {
		return Removed, nil
	}

	exists, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return Removed, err
	}
	if !exists {
		return Removed, fmt.Errorf("product %s not found: %w", productID, ErrNotFound)
	}

	if err := s.Repo.AddFavorite(ctx, userID, productID); err != nil {
		return Removed, err
	}
	return Added, nil
}

func (s *FavoritesService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.Repo.ListFavorites(ctx, userID)
}
