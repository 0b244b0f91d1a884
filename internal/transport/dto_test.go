package transport

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/favcart/internal/models"
)

func TestNewCartView_DeletedProductIsNull(t *testing.T) {
	t.Parallel()

	seller := &models.User{ID: uuid.New(), FullName: "Sam"}
	p := &models.Product{ID: uuid.New(), Name: "Mug", SoldByID: seller.ID, SoldBy: seller}

	gone := uuid.New()
	view := NewCartView([]models.CartItem{
		{ProductID: p.ID, Product: p, Quantity: 2},
		{ProductID: gone, Quantity: 1},
	})

	raw, err := json.Marshal(view)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 2)

	first := decoded[0]["productId"].(map[string]any)
	assert.Equal(t, p.ID.String(), first["_id"])
	assert.Equal(t, "Sam", first["soldBy"].(map[string]any)["fullName"])
	assert.Equal(t, p.ID.String(), decoded[0]["productRef"])
	assert.Nil(t, decoded[1]["productId"])
	assert.Equal(t, gone.String(), decoded[1]["productRef"])
	assert.EqualValues(t, 1, decoded[1]["quantity"])
}

func TestNewUserView_EmptyCollectionsAreArrays(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(NewUserView(&models.User{ID: uuid.New(), Email: "a@example.com"}, nil, nil))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"cart":[]`)
	assert.Contains(t, string(raw), `"favorites":[]`)
	assert.NotContains(t, string(raw), "password")
}
