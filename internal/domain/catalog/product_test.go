package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProduct(t *testing.T) *Product {
	vendorID := uuid.New()
	product, err := NewProduct(vendorID, "Handmade Mug", "A mug", "Kitchen", valueobject.NewMoneyUSDFromInt(25), 10)
	require.NoError(t, err)
	return product
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid input", func(t *testing.T) {
		vendorID := uuid.New()
		product, err := NewProduct(vendorID, "Handmade Mug", "A mug", "Kitchen", valueobject.NewMoneyUSDFromInt(25), 10)

		require.NoError(t, err)
		assert.Equal(t, "Handmade Mug", product.Name)
		assert.True(t, product.IsOwnedBy(vendorID))
		assert.Equal(t, 10, product.Stock)
		assert.False(t, product.IsDeleted)
		assert.Len(t, product.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeProductCreated, product.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProduct(uuid.New(), "", "", "Kitchen", valueobject.NewMoneyUSDFromInt(25), 10)
		assert.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct(uuid.New(), "Mug", "", "Kitchen", valueobject.NewMoneyUSD(decimal.NewFromInt(-1)), 10)
		assert.Error(t, err)
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		_, err := NewProduct(uuid.New(), "Mug", "", "Kitchen", valueobject.NewMoneyUSDFromInt(25), -1)
		assert.Error(t, err)
	})
}

func TestProduct_SetPrice(t *testing.T) {
	product := createTestProduct(t)

	original := valueobject.NewMoneyUSDFromInt(30)
	err := product.SetPrice(valueobject.NewMoneyUSDFromInt(20), &original)
	require.NoError(t, err)

	assert.True(t, product.Price.Equal(decimal.NewFromInt(20)))
	require.NotNil(t, product.OriginalPrice)
	assert.True(t, product.OriginalPrice.Equal(decimal.NewFromInt(30)))

	err = product.SetPrice(valueobject.NewMoneyUSD(decimal.NewFromInt(-5)), nil)
	assert.Error(t, err)
}

func TestProduct_Delist(t *testing.T) {
	product := createTestProduct(t)

	require.NoError(t, product.Delist())
	assert.True(t, product.IsDeleted)

	// Delisting twice is an invalid state transition
	assert.Error(t, product.Delist())
}

func TestProduct_InStock(t *testing.T) {
	product := createTestProduct(t)

	assert.True(t, product.InStock(10))
	assert.True(t, product.InStock(1))
	assert.False(t, product.InStock(11))
}

func TestProduct_IsOwnedBy(t *testing.T) {
	product := createTestProduct(t)

	assert.False(t, product.IsOwnedBy(uuid.New()))

	product.VendorID = nil
	assert.False(t, product.IsOwnedBy(uuid.New()))
}

func TestProduct_ApplyReviewStats(t *testing.T) {
	product := createTestProduct(t)

	product.ApplyReviewStats(4.5, 2)
	assert.Equal(t, 4.5, product.Rating)
	assert.Equal(t, 2, product.NumReviews)
}
