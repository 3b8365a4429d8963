package shopping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddItem(t *testing.T) {
	cart, err := NewCart(uuid.New())
	require.NoError(t, err)

	productID := uuid.New()

	require.NoError(t, cart.AddItem(productID, 2, "blue", "M"))
	require.Len(t, cart.Items, 1)

	t.Run("same product and variant merges quantity", func(t *testing.T) {
		require.NoError(t, cart.AddItem(productID, 1, "blue", "M"))
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 3, cart.Items[0].Quantity)
	})

	t.Run("different variant adds a new line", func(t *testing.T) {
		require.NoError(t, cart.AddItem(productID, 1, "red", "M"))
		assert.Len(t, cart.Items, 2)
	})

	t.Run("invalid quantity", func(t *testing.T) {
		assert.Error(t, cart.AddItem(uuid.New(), 0, "", ""))
	})
}

func TestCart_UpdateAndRemove(t *testing.T) {
	cart, err := NewCart(uuid.New())
	require.NoError(t, err)
	require.NoError(t, cart.AddItem(uuid.New(), 1, "", ""))
	itemID := cart.Items[0].ID

	require.NoError(t, cart.UpdateQuantity(itemID, 5))
	assert.Equal(t, 5, cart.Items[0].Quantity)

	assert.Error(t, cart.UpdateQuantity(uuid.New(), 2), "unknown item")
	assert.Error(t, cart.UpdateQuantity(itemID, 0), "zero quantity")

	require.NoError(t, cart.RemoveItem(itemID))
	assert.True(t, cart.IsEmpty())
	assert.Error(t, cart.RemoveItem(itemID), "already removed")
}

func TestCart_Clear(t *testing.T) {
	cart, err := NewCart(uuid.New())
	require.NoError(t, err)
	require.NoError(t, cart.AddItem(uuid.New(), 1, "", ""))
	require.NoError(t, cart.AddItem(uuid.New(), 2, "", ""))

	cart.Clear()
	assert.True(t, cart.IsEmpty())
}
