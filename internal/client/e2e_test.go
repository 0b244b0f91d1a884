package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/favcart/internal/apitest"
)

func newSession(t *testing.T, apiURL string) (*Store, *noticeLog) {
	t.Helper()
	hc, err := NewHTTPClient(apiURL, 5*time.Second)
	require.NoError(t, err)
	log := &noticeLog{}
	return NewStore(hc, log), log
}

// seedShirt signs up a seller and lists one product.
func seedShirt(t *testing.T, apiURL string) string {
	t.Helper()
	ctx := context.Background()

	seller, _ := newSession(t, apiURL)
	require.NoError(t, seller.SignUp(ctx, SignupInput{FullName: "Seller", Email: "seller@example.com", Password: "secret1"}))
	p, err := seller.AddProduct(ctx, ProductInput{
		Name: "Shirt", Description: "Cotton", Price: 19.5, Ratings: 4, Image: "https://img.example.com/shirt.png",
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	return p.ID
}

func TestE2E_CartScenarios(t *testing.T) {
	apiURL := apitest.NewServer(t)
	shirt := seedShirt(t, apiURL)
	ctx := context.Background()

	buyer, _ := newSession(t, apiURL)
	require.NoError(t, buyer.SignUp(ctx, SignupInput{FullName: "Buyer", Email: "buyer@example.com", Password: "secret1"}))
	require.NoError(t, buyer.FetchProducts(ctx))

	// A: empty cart, add one, read it back joined
	require.NoError(t, buyer.FetchCart(ctx))
	require.Empty(t, buyer.Cart())
	require.NoError(t, buyer.AddToCart(ctx, shirt, 1))
	require.NoError(t, buyer.FetchCart(ctx))
	cart := buyer.Cart()
	require.Len(t, cart, 1)
	require.NotNil(t, cart[0].Product)
	assert.Equal(t, shirt, cart[0].Product.ID)
	assert.Equal(t, "Shirt", cart[0].Product.Name)
	assert.Equal(t, "Seller", cart[0].Product.SoldBy.FullName)
	assert.Equal(t, 1, cart[0].Quantity)

	// B: quantity 2, set to 5
	require.NoError(t, buyer.AddToCart(ctx, shirt, 1))
	require.Equal(t, 2, buyer.Cart()[0].Quantity)
	require.NoError(t, buyer.UpdateCartQuantity(ctx, shirt, 5))
	require.NoError(t, buyer.FetchCart(ctx))
	require.Len(t, buyer.Cart(), 1)
	assert.Equal(t, 5, buyer.Cart()[0].Quantity)

	require.NoError(t, buyer.RemoveFromCart(ctx, shirt))
	require.NoError(t, buyer.RemoveFromCart(ctx, shirt))
	assert.Empty(t, buyer.Cart())
}

func TestE2E_FavoriteScenario(t *testing.T) {
	apiURL := apitest.NewServer(t)
	shirt := seedShirt(t, apiURL)
	ctx := context.Background()

	buyer, log := newSession(t, apiURL)
	require.NoError(t, buyer.SignUp(ctx, SignupInput{FullName: "Fan", Email: "fan@example.com", Password: "secret1"}))
	require.Empty(t, buyer.User().Favorites)

	// C: toggle twice returns to the empty set
	fav, err := buyer.ToggleFavorite(ctx, shirt)
	require.NoError(t, err)
	assert.True(t, fav)
	assert.Equal(t, []string{shirt}, buyer.User().Favorites)

	require.NoError(t, buyer.CheckAuth(ctx))
	assert.Equal(t, []string{shirt}, buyer.User().Favorites, "server agrees")

	fav, err = buyer.ToggleFavorite(ctx, shirt)
	require.NoError(t, err)
	assert.False(t, fav)
	assert.Empty(t, buyer.User().Favorites)

	// a failing toggle leaves the set as it was
	_, err = buyer.ToggleFavorite(ctx, "00000000-0000-0000-0000-00000000abcd")
	require.Error(t, err)
	assert.Empty(t, buyer.User().Favorites)
	assert.Equal(t, NoticeError, log.Last().Kind)
}

func TestE2E_SessionLifecycle(t *testing.T) {
	apiURL := apitest.NewServer(t)
	shirt := seedShirt(t, apiURL)
	ctx := context.Background()

	hc, err := NewHTTPClient(apiURL, 5*time.Second)
	require.NoError(t, err)

	s := NewStore(hc, nil)
	require.NoError(t, s.LogIn(ctx, "seller@example.com", "secret1"))
	require.NoError(t, s.FetchProducts(ctx))
	assert.ErrorIs(t, s.AddToCart(ctx, shirt, 1), ErrOwnProduct)

	require.NoError(t, s.LogOut(ctx))
	assert.ErrorIs(t, s.FetchCart(ctx), ErrClosed)

	log := &noticeLog{}
	next := NewStore(hc, log)
	err = next.FetchCart(ctx)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, NoticeAuthRequired, log.Last().Kind)

	err = next.LogIn(ctx, "seller@example.com", "wrong-pass")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "invalid email or password", log.Last().Message)
}

func TestE2E_RemoveLineOfDeletedProduct(t *testing.T) {
	apiURL := apitest.NewServer(t)
	ctx := context.Background()

	seller, _ := newSession(t, apiURL)
	require.NoError(t, seller.SignUp(ctx, SignupInput{FullName: "Seller", Email: "seller@example.com", Password: "secret1"}))
	p, err := seller.AddProduct(ctx, ProductInput{
		Name: "Lamp", Description: "Brass", Price: 40, Ratings: 5, Image: "https://img.example.com/lamp.png",
	})
	require.NoError(t, err)

	buyer, _ := newSession(t, apiURL)
	require.NoError(t, buyer.SignUp(ctx, SignupInput{FullName: "Buyer", Email: "buyer@example.com", Password: "secret1"}))
	require.NoError(t, buyer.AddToCart(ctx, p.ID, 2))

	require.NoError(t, seller.DeleteProduct(ctx, p.ID))

	require.NoError(t, buyer.FetchCart(ctx))
	cart := buyer.Cart()
	require.Len(t, cart, 1)
	assert.Nil(t, cart[0].Product)
	assert.Equal(t, p.ID, cart[0].ProductID())

	require.NoError(t, buyer.RemoveFromCart(ctx, cart[0].ProductID()))
	assert.Empty(t, buyer.Cart())
	require.NoError(t, buyer.FetchCart(ctx))
	assert.Empty(t, buyer.Cart())
}
