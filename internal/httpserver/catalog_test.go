package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogHTTP_ListAndGet(t *testing.T) {
	env := newTestEnv(t)
	sellerID, cookies := env.signup(t, "Seller", "seller@example.com")
	pid := env.addProduct(t, cookies, "Chair")

	rec := env.do(t, http.MethodGet, "/api/products/getproducts", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []struct {
		ID     string `json:"_id"`
		Name   string `json:"name"`
		SoldBy struct {
			ID       string `json:"_id"`
			FullName string `json:"fullName"`
		} `json:"soldBy"`
	}
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, pid, list[0].ID)
	assert.Equal(t, sellerID, list[0].SoldBy.ID)
	assert.Equal(t, "Seller", list[0].SoldBy.FullName)

	rec = env.do(t, http.MethodGet, "/api/products/getproducts/"+pid, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/products/getproducts/00000000-0000-0000-0000-000000000009", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/products/getproducts/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogHTTP_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	_, cookies := env.signup(t, "Seller", "seller@example.com")

	rec := env.do(t, http.MethodPost, "/api/products/addproduct", map[string]any{
		"name": "X", "description": "d", "price": 1, "ratings": 4, "image": "https://img.example.com/x.png",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	bad := []map[string]any{
		{"name": "X", "description": "d", "ratings": 4, "image": "https://i/x.png"},
		{"name": "X", "description": "d", "price": -1, "ratings": 4, "image": "https://i/x.png"},
		{"name": "X", "description": "d", "price": 1, "ratings": 6, "image": "https://i/x.png"},
		{"name": "X", "description": "d", "price": 1, "ratings": 4, "image": "ftp://i/x.png"},
	}
	for i, body := range bad {
		rec := env.do(t, http.MethodPost, "/api/products/addproduct", body, cookies)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "case %d: %s", i, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/products/addproduct", map[string]any{
		"name": "Free", "description": "d", "price": 0, "ratings": 0, "image": "https://img.example.com/x.png",
	}, cookies)
	assert.Equal(t, http.StatusCreated, rec.Code, "zero price and ratings are valid")
}

func TestCatalogHTTP_OnlySellerMayModify(t *testing.T) {
	env := newTestEnv(t)
	_, seller := env.signup(t, "Seller", "seller@example.com")
	_, other := env.signup(t, "Other", "other@example.com")
	pid := env.addProduct(t, seller, "Desk")

	update := map[string]any{
		"name": "Desk v2", "description": "d", "price": 12, "ratings": 4, "image": "https://img.example.com/x.png",
	}

	rec := env.do(t, http.MethodPut, "/api/products/"+pid, update, other)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/products/"+pid, nil, other)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/products/"+pid, update, seller)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Product struct {
			Name string `json:"name"`
		} `json:"product"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "Desk v2", resp.Product.Name)

	rec = env.do(t, http.MethodDelete, "/api/products/"+pid, nil, seller)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/products/getproducts/"+pid, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Contains(t, env.pub.Types(), "product_deleted")
}
