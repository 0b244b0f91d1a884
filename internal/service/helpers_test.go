package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/favcart/internal/models"
	"github.com/Skotchmaster/favcart/internal/repo"
	"github.com/Skotchmaster/favcart/internal/testutil"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return &repo.GormRepo{DB: testutil.NewDB(t)}
}

func seedUser(t *testing.T, r *repo.GormRepo) *models.User {
	t.Helper()
	u := &models.User{FullName: "User", Email: uuid.NewString() + "@example.com", PasswordHash: "x"}
	require.NoError(t, r.CreateUserIfNotExists(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, r *repo.GormRepo, seller uuid.UUID) *models.Product {
	t.Helper()
	p, err := r.CreateProduct(context.Background(), &models.Product{
		Name: "Product", Description: "d", Price: 9.99, Ratings: 4, Image: "https://img.example.com/p.png", SoldByID: seller,
	})
	require.NoError(t, err)
	return p
}
