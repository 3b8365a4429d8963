package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockEntry(t *testing.T) {
	productID := uuid.New()
	actorID := uuid.New()

	t.Run("order decrement", func(t *testing.T) {
		entry, err := NewStockEntry(productID, actorID, -3, 10, ReasonOrder, "order-123")
		require.NoError(t, err)
		assert.Equal(t, 10, entry.PreviousStock)
		assert.Equal(t, 7, entry.NewStock)
		assert.Equal(t, entry.PreviousStock+entry.Change, entry.NewStock)
	})

	t.Run("restock increment", func(t *testing.T) {
		entry, err := NewStockEntry(productID, actorID, 5, 2, ReasonRestock, "")
		require.NoError(t, err)
		assert.Equal(t, 7, entry.NewStock)
	})

	t.Run("zero change rejected", func(t *testing.T) {
		_, err := NewStockEntry(productID, actorID, 0, 10, ReasonAdjustment, "")
		assert.Error(t, err)
	})

	t.Run("negative result rejected", func(t *testing.T) {
		_, err := NewStockEntry(productID, actorID, -5, 3, ReasonOrder, "")
		assert.Error(t, err)
	})

	t.Run("unknown reason rejected", func(t *testing.T) {
		_, err := NewStockEntry(productID, actorID, 1, 0, Reason("SHRINKAGE"), "")
		assert.Error(t, err)
	})

	t.Run("empty product rejected", func(t *testing.T) {
		_, err := NewStockEntry(uuid.Nil, actorID, 1, 0, ReasonAdjustment, "")
		assert.Error(t, err)
	})
}
