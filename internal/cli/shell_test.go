package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/favcart/internal/apitest"
	"github.com/Skotchmaster/favcart/internal/client"
)

func newTestApp(t *testing.T, apiURL string, lines ...string) (*App, *bytes.Buffer) {
	t.Helper()
	stubTerminal(t, false, "", nil)

	hc, err := client.NewHTTPClient(apiURL, 5*time.Second)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	sc := bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	app := NewApp(hc, sc, out)
	t.Cleanup(app.Close)
	return app, out
}

func TestApp_SellerAndBuyer(t *testing.T) {
	apiURL := apitest.NewServer(t)
	ctx := context.Background()

	seller, sellerOut := newTestApp(t, apiURL,
		"Seller", "seller@example.com", "secret1",
		"Shirt", "Cotton", "19.5", "4", "https://img.example.com/shirt.png",
	)
	require.NoError(t, seller.SignUp(ctx))
	assert.True(t, seller.isLoggedIn())
	assert.Equal(t, "seller@example.com", seller.status())
	require.NoError(t, seller.Sell(ctx))
	assert.Contains(t, sellerOut.String(), "[success] Product added successfully")

	products := seller.store.Products()
	require.Len(t, products, 1)
	shirt := products[0].ID
	require.NotEmpty(t, shirt)

	// sellers cannot buy their own listing
	assert.ErrorIs(t, seller.Add(ctx, []string{shirt}), client.ErrOwnProduct)

	buyer, out := newTestApp(t, apiURL, "Buyer", "buyer@example.com", "secret1")
	require.NoError(t, buyer.SignUp(ctx))
	require.NoError(t, buyer.Products(ctx))
	assert.Contains(t, out.String(), "Shirt")
	assert.Contains(t, out.String(), "Seller")

	require.NoError(t, buyer.Add(ctx, []string{shirt, "2"}))
	require.NoError(t, buyer.Quantity(ctx, []string{shirt, "3"}))

	out.Reset()
	require.NoError(t, buyer.Cart(ctx))
	assert.Contains(t, out.String(), "58.50")

	out.Reset()
	require.NoError(t, buyer.Favorite(ctx, []string{shirt}))
	assert.Contains(t, out.String(), "added")
	out.Reset()
	require.NoError(t, buyer.Favorite(ctx, []string{shirt}))
	assert.Contains(t, out.String(), "removed")

	require.NoError(t, buyer.Remove(ctx, []string{shirt}))
	require.NoError(t, buyer.Cart(ctx))
	assert.Empty(t, buyer.store.Cart())

	require.NoError(t, buyer.LogOut(ctx))
	assert.False(t, buyer.isLoggedIn())
	assert.Equal(t, "guest", buyer.status())
}

func TestApp_LogInWithWrongPassword(t *testing.T) {
	apiURL := apitest.NewServer(t)
	ctx := context.Background()

	first, _ := newTestApp(t, apiURL, "Alice", "alice@example.com", "secret1")
	require.NoError(t, first.SignUp(ctx))

	app, out := newTestApp(t, apiURL, "alice@example.com", "wrong-pass", "alice@example.com", "secret1")
	require.Error(t, app.LogIn(ctx))
	assert.Contains(t, out.String(), "[error]")
	assert.False(t, app.isLoggedIn())

	require.NoError(t, app.LogIn(ctx))
	assert.Equal(t, "alice@example.com", app.status())
}

func TestApp_UsageErrors(t *testing.T) {
	app, out := newTestApp(t, "http://127.0.0.1:1/api")
	ctx := context.Background()

	assert.ErrorIs(t, app.Add(ctx, nil), errUsage)
	assert.ErrorIs(t, app.Add(ctx, []string{"x", "two"}), errUsage)
	assert.ErrorIs(t, app.Remove(ctx, nil), errUsage)
	assert.ErrorIs(t, app.Quantity(ctx, []string{"x"}), errUsage)
	assert.ErrorIs(t, app.Quantity(ctx, []string{"x", "y"}), errUsage)
	assert.ErrorIs(t, app.Favorite(ctx, nil), errUsage)
	assert.ErrorIs(t, app.Unlist(ctx, nil), errUsage)
	assert.Contains(t, out.String(), "usage: qty <product-id> <quantity>")
}

func TestApp_GuestGuards(t *testing.T) {
	app, _ := newTestApp(t, "http://127.0.0.1:1/api")

	assert.ErrorIs(t, app.Favorite(context.Background(), []string{"x"}), client.ErrNotLoggedIn)
	assert.ErrorIs(t, app.Quantity(context.Background(), []string{"x", "0"}), client.ErrInvalidQuantity)
}
