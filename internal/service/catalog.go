package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/favcart/internal/cache"
	"github.com/Skotchmaster/favcart/internal/imagestore"
	"github.com/Skotchmaster/favcart/internal/logging"
	"github.com/Skotchmaster/favcart/internal/models"
	"github.com/Skotchmaster/favcart/internal/repo"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Cache  cache.ProductCache
	Images *imagestore.Store
}

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Ratings     float64
	Image       string
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("name is required: %w", ErrValidation)
	case strings.TrimSpace(in.Description) == "":
		return fmt.Errorf("description is required: %w", ErrValidation)
	case strings.TrimSpace(in.Image) == "":
		return fmt.Errorf("image is required: %w", ErrValidation)
	case math.IsNaN(in.Price) || in.Price < 0:
		return fmt.Errorf("price cannot be negative: %w", ErrValidation)
	case math.IsNaN(in.Ratings) || in.Ratings < 0 || in.Ratings > 5:
		return fmt.Errorf("ratings must be between 0 and 5: %w", ErrValidation)
	}
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.list")

	version, err := s.Cache.Version(ctx)
	if err != nil {
		l.Warn("product_cache_version_failed", "error", err)
		return s.Repo.ListProducts(ctx)
	}

	if products, ok, err := s.Cache.GetProducts(ctx, version); err != nil {
		l.Warn("product_cache_get_failed", "error", err)
	} else if ok {
		return products, nil
	}

	products, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetProducts(ctx, version, products); err != nil {
		l.Warn("product_cache_set_failed", "error", err)
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %s not found: %w", id, ErrNotFound)
	}
	return p, err
}

func (s *CatalogService) CreateProduct(ctx context.Context, sellerID uuid.UUID, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	image, err := s.resolveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	p, err := s.Repo.CreateProduct(ctx, &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Ratings:     in.Ratings,
		Image:       image,
		SoldByID:    sellerID,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

// UpdateProduct is allowed only for the seller.
func (s *CatalogService) UpdateProduct(ctx context.Context, userID, id uuid.UUID, in ProductInput) (*models.Product, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	image, err := s.resolveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	p, err := s.Repo.UpdateProduct(ctx, id, map[string]any{
		"name":        strings.TrimSpace(in.Name),
		"description": strings.TrimSpace(in.Description),
		"price":       in.Price,
		"ratings":     in.Ratings,
		"image":       image,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %s not found: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	err := s.Repo.DeleteProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("product %s not found: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) owned(ctx context.Context, userID, id uuid.UUID) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SoldByID != userID {
		return nil, fmt.Errorf("product %s belongs to another seller: %w", id, ErrForbidden)
	}
	return p, nil
}

func (s *CatalogService) resolveImage(ctx context.Context, v string) (string, error) {
	image, err := s.Images.Resolve(ctx, "products", v)
	if errors.Is(err, imagestore.ErrInvalidImage) {
		return "", fmt.Errorf("%v: %w", err, ErrValidation)
	}
	return image, err
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.Cache.Invalidate(ctx); err != nil {
		logging.FromContext(ctx).Warn("product_cache_invalidate_failed", "svc", "catalog", "error", err)
	}
}
