package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newOfferFixture(t *testing.T) *OfferService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))
	return NewOfferService(persistence.NewGormOfferRepository(db), zap.NewNop())
}

func createRequest(code string) CreateOfferRequest {
	return CreateOfferRequest{
		Code:         code,
		Description:  "spring promo",
		DiscountType: "PERCENTAGE",
		Value:        decimal.NewFromInt(10),
		StartDate:    time.Now().Add(-time.Hour),
		ExpiryDate:   time.Now().Add(24 * time.Hour),
	}
}

func TestOfferService_CreateAndValidate(t *testing.T) {
	svc := newOfferFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest("spring10"))
	require.NoError(t, err)
	assert.Equal(t, "SPRING10", created.Code)
	assert.Equal(t, "ACTIVE", created.Status)

	t.Run("duplicate code rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, createRequest("SPRING10"))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CODE_TAKEN", domainErr.Code)
	})

	t.Run("valid code yields discount", func(t *testing.T) {
		result, err := svc.Validate(ctx, ValidateOfferRequest{Code: "SPRING10", CartTotal: decimal.NewFromInt(1000)})
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.True(t, decimal.NewFromInt(100).Equal(result.Discount))
	})

	t.Run("unknown code reports invalid without error", func(t *testing.T) {
		result, err := svc.Validate(ctx, ValidateOfferRequest{Code: "NOPE", CartTotal: decimal.NewFromInt(1000)})
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, "INVALID_CODE", result.Reason)
	})

	t.Run("deactivated code no longer validates", func(t *testing.T) {
		require.NoError(t, svc.Deactivate(ctx, created.ID))
		result, err := svc.Validate(ctx, ValidateOfferRequest{Code: "SPRING10", CartTotal: decimal.NewFromInt(1000)})
		require.NoError(t, err)
		assert.False(t, result.Valid)
	})
}

func TestOfferService_UpdateAndDelete(t *testing.T) {
	svc := newOfferFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest("TEN"))
	require.NoError(t, err)

	t.Run("update caps redemptions and reactivates", func(t *testing.T) {
		limit := 5
		active := true
		updated, err := svc.Update(ctx, created.ID, UpdateOfferRequest{MaxRedemptions: &limit, Active: &active})
		require.NoError(t, err)
		assert.Equal(t, 5, updated.MaxRedemptions)
		assert.Equal(t, "ACTIVE", updated.Status)
	})

	t.Run("expiry before start rejected", func(t *testing.T) {
		bad := time.Now().Add(-48 * time.Hour)
		_, err := svc.Update(ctx, created.ID, UpdateOfferRequest{ExpiryDate: &bad})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_WINDOW", domainErr.Code)
	})

	t.Run("unredeemed offer deletes outright", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, created.ID))
		_, err := svc.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOfferService_ScopedCreate(t *testing.T) {
	svc := newOfferFixture(t)
	ctx := context.Background()

	req := createRequest("BOOKS15")
	req.Category = "books"
	created, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "CATEGORY", created.Scope)
	assert.Equal(t, "books", created.Category)
}
