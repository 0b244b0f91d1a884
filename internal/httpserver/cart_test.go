package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartLine struct {
	Product *struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	} `json:"productId"`
	ProductRef string `json:"productRef"`
	Quantity   int    `json:"quantity"`
}

func TestCartHTTP_AddMergesAndRemoveIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	_, seller := env.signup(t, "Seller", "seller@example.com")
	_, buyer := env.signup(t, "Buyer", "buyer@example.com")
	pid := env.addProduct(t, seller, "Mug")

	rec := env.do(t, http.MethodPost, "/api/cart/add", map[string]any{"productId": pid, "quantity": 2}, buyer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(t, http.MethodPost, "/api/cart/add", map[string]any{"productId": pid, "quantity": 3}, buyer)
	require.Equal(t, http.StatusOK, rec.Code)

	var added struct {
		Message string     `json:"message"`
		Cart    []cartLine `json:"cart"`
	}
	decode(t, rec, &added)
	require.Len(t, added.Cart, 1)
	assert.Equal(t, 5, added.Cart[0].Quantity)
	require.NotNil(t, added.Cart[0].Product)
	assert.Equal(t, "Mug", added.Cart[0].Product.Name)

	rec = env.do(t, http.MethodPost, "/api/cart/add", map[string]any{"productId": pid}, buyer)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &added)
	assert.Equal(t, 6, added.Cart[0].Quantity, "quantity defaults to one")

	for i := 0; i < 2; i++ {
		rec = env.do(t, http.MethodDelete, "/api/cart/remove/"+pid, nil, buyer)
		require.Equal(t, http.StatusOK, rec.Code)
		var removed struct {
			Cart []cartLine `json:"cart"`
		}
		decode(t, rec, &removed)
		assert.Empty(t, removed.Cart)
	}
}

func TestCartHTTP_Errors(t *testing.T) {
	env := newTestEnv(t)
	_, seller := env.signup(t, "Seller", "seller@example.com")
	_, buyer := env.signup(t, "Buyer", "buyer@example.com")
	pid := env.addProduct(t, seller, "Mug")

	rec := env.do(t, http.MethodGet, "/api/cart", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/cart/add", map[string]any{"productId": "00000000-0000-0000-0000-000000000002"}, buyer)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/cart/add", map[string]any{"productId": pid, "quantity": 0}, buyer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/cart/update", map[string]any{"productId": pid, "quantity": 2}, buyer)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no line to update")

	rec = env.do(t, http.MethodPost, "/api/cart/add", map[string]any{"productId": pid}, buyer)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, q := range []int{0, -1} {
		rec = env.do(t, http.MethodPatch, "/api/cart/update", map[string]any{"productId": pid, "quantity": q}, buyer)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	rec = env.do(t, http.MethodPatch, "/api/cart/update", map[string]any{"productId": pid}, buyer)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "quantity is required")

	rec = env.do(t, http.MethodPatch, "/api/cart/update", map[string]any{"productId": pid, "quantity": 4}, buyer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cart updated", message(t, rec))

	rec = env.do(t, http.MethodGet, "/api/cart", nil, buyer)
	require.Equal(t, http.StatusOK, rec.Code)
	var lines []cartLine
	decode(t, rec, &lines)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
}

func TestCartHTTP_DeletedProductShowsAsNull(t *testing.T) {
	env := newTestEnv(t)
	_, seller := env.signup(t, "Seller", "seller@example.com")
	pid := env.addProduct(t, seller, "Gone")

	rec := env.do(t, http.MethodPost, "/api/cart/add", map[string]any{"productId": pid}, seller)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/products/"+pid, nil, seller)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/cart", nil, seller)
	require.Equal(t, http.StatusOK, rec.Code)
	var lines []cartLine
	decode(t, rec, &lines)
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].Product)
	assert.Equal(t, pid, lines[0].ProductRef)
	assert.Equal(t, 1, lines[0].Quantity)

	rec = env.do(t, http.MethodDelete, "/api/cart/remove/"+lines[0].ProductRef, nil, seller)
	require.Equal(t, http.StatusOK, rec.Code)
	var removed struct {
		Cart []cartLine `json:"cart"`
	}
	decode(t, rec, &removed)
	assert.Empty(t, removed.Cart)
}
