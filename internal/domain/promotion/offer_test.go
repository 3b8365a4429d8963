package promotion

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeOffer(t *testing.T, discountType DiscountType, value, minOrder int64) *Offer {
	t.Helper()
	o, err := NewOffer("SAVE", "test offer", discountType,
		decimal.NewFromInt(value), decimal.NewFromInt(minOrder),
		time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	return o
}

func TestNewOffer(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		discountType DiscountType
		value        int64
		wantErr      bool
	}{
		{"valid percentage", "SUMMER10", DiscountPercentage, 10, false},
		{"valid fixed", "FLAT50", DiscountFixed, 50, false},
		{"empty code", "", DiscountPercentage, 10, true},
		{"unknown discount type", "X", DiscountType("BOGUS"), 10, true},
		{"zero value", "X", DiscountFixed, 0, true},
		{"percentage above 100", "X", DiscountPercentage, 110, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOffer(tt.code, "", tt.discountType,
				decimal.NewFromInt(tt.value), decimal.Zero,
				time.Now(), time.Now().Add(time.Hour))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, OfferStatusActive, o.Status)
		})
	}

	t.Run("code is upper-cased", func(t *testing.T) {
		o, err := NewOffer("summer10", "", DiscountPercentage,
			decimal.NewFromInt(10), decimal.Zero, time.Now(), time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "SUMMER10", o.Code)
	})
}

func TestOffer_Validate(t *testing.T) {
	t.Run("ten percent of 1000 is 100", func(t *testing.T) {
		o := activeOffer(t, DiscountPercentage, 10, 0)
		res := o.Validate(decimal.NewFromInt(1000), time.Now())
		assert.True(t, res.Valid)
		assert.True(t, res.Discount.Equal(decimal.NewFromInt(100)), "discount %s", res.Discount)
	})

	t.Run("fixed 5000 on a 1000 cart is capped at 1000", func(t *testing.T) {
		o := activeOffer(t, DiscountFixed, 5000, 0)
		res := o.Validate(decimal.NewFromInt(1000), time.Now())
		assert.True(t, res.Valid)
		assert.True(t, res.Discount.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("inactive offer is invalid code", func(t *testing.T) {
		o := activeOffer(t, DiscountPercentage, 10, 0)
		o.Deactivate()
		res := o.Validate(decimal.NewFromInt(1000), time.Now())
		assert.False(t, res.Valid)
		assert.Equal(t, ReasonInvalidCode, res.Reason)
		assert.True(t, res.Discount.IsZero())
	})

	t.Run("expired offer", func(t *testing.T) {
		o := activeOffer(t, DiscountPercentage, 10, 0)
		res := o.Validate(decimal.NewFromInt(1000), o.ExpiryDate.Add(time.Minute))
		assert.False(t, res.Valid)
		assert.Equal(t, ReasonExpired, res.Reason)
	})

	t.Run("not yet started offer", func(t *testing.T) {
		o := activeOffer(t, DiscountPercentage, 10, 0)
		res := o.Validate(decimal.NewFromInt(1000), o.StartDate.Add(-time.Minute))
		assert.False(t, res.Valid)
		assert.Equal(t, ReasonExpired, res.Reason)
	})

	t.Run("below minimum order value", func(t *testing.T) {
		o := activeOffer(t, DiscountPercentage, 10, 500)
		res := o.Validate(decimal.NewFromInt(499), time.Now())
		assert.False(t, res.Valid)
		assert.Equal(t, ReasonBelowMinimum, res.Reason)
	})

	t.Run("exactly the minimum order value passes", func(t *testing.T) {
		o := activeOffer(t, DiscountPercentage, 10, 500)
		res := o.Validate(decimal.NewFromInt(500), time.Now())
		assert.True(t, res.Valid)
	})

	t.Run("exhausted redemption cap", func(t *testing.T) {
		o := activeOffer(t, DiscountPercentage, 10, 0)
		require.NoError(t, o.SetMaxRedemptions(3))
		o.RedemptionCount = 3
		res := o.Validate(decimal.NewFromInt(1000), time.Now())
		assert.False(t, res.Valid)
		assert.Equal(t, ReasonExhausted, res.Reason)
	})

	t.Run("zero max redemptions means unlimited", func(t *testing.T) {
		o := activeOffer(t, DiscountPercentage, 10, 0)
		o.RedemptionCount = 100000
		res := o.Validate(decimal.NewFromInt(1000), time.Now())
		assert.True(t, res.Valid)
	})
}

func TestOffer_Scoping(t *testing.T) {
	o := activeOffer(t, DiscountPercentage, 10, 0)

	require.NoError(t, o.RestrictToCategory("Furniture"))
	assert.Equal(t, ScopeCategory, o.Scope)
	assert.Equal(t, "Furniture", o.Category)

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	require.NoError(t, o.RestrictToProducts(ids))
	assert.Equal(t, ScopeProducts, o.Scope)
	assert.Empty(t, o.Category)
	assert.Len(t, o.ProductIDs, 2)

	assert.Error(t, o.RestrictToCategory(""))
	assert.Error(t, o.RestrictToProducts(nil))
	assert.Error(t, o.SetMaxRedemptions(-1))
}
