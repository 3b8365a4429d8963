package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/locallift/backend/internal/domain/promotion"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOffer(t *testing.T, repo *GormOfferRepository, code string, maxRedemptions int) *promotion.Offer {
	t.Helper()
	offer, err := promotion.NewOffer(code, "test offer", promotion.DiscountPercentage,
		decimal.NewFromInt(10), decimal.Zero,
		time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	if maxRedemptions > 0 {
		require.NoError(t, offer.SetMaxRedemptions(maxRedemptions))
	}
	require.NoError(t, repo.Save(context.Background(), offer))
	return offer
}

func TestGormOfferRepository_FindByCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOfferRepository(db)
	ctx := context.Background()

	seedOffer(t, repo, "SAVE10", 0)

	t.Run("lookup is case insensitive", func(t *testing.T) {
		offer, err := repo.FindByCode(ctx, "save10")
		require.NoError(t, err)
		assert.Equal(t, "SAVE10", offer.Code)
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		_, err := repo.FindByCode(ctx, "NOPE")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exists by code", func(t *testing.T) {
		ok, err := repo.ExistsByCode(ctx, "Save10")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestGormOfferRepository_IncrementRedemptions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOfferRepository(db)
	ctx := context.Background()

	t.Run("counts up to the cap and then rejects", func(t *testing.T) {
		offer := seedOffer(t, repo, "LIMIT2", 2)

		require.NoError(t, repo.IncrementRedemptions(ctx, offer.ID))
		require.NoError(t, repo.IncrementRedemptions(ctx, offer.ID))

		err := repo.IncrementRedemptions(ctx, offer.ID)
		require.Error(t, err)

		found, err := repo.FindByID(ctx, offer.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, found.RedemptionCount)
	})

	t.Run("zero cap means unlimited", func(t *testing.T) {
		offer := seedOffer(t, repo, "FOREVER", 0)

		for i := 0; i < 5; i++ {
			require.NoError(t, repo.IncrementRedemptions(ctx, offer.ID))
		}

		found, err := repo.FindByID(ctx, offer.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, found.RedemptionCount)
	})
}

func TestGormOfferRepository_FindActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOfferRepository(db)
	ctx := context.Background()

	seedOffer(t, repo, "LIVE", 0)

	expired, err := promotion.NewOffer("GONE", "expired", promotion.DiscountFixed,
		decimal.NewFromInt(5), decimal.Zero,
		time.Now().Add(-48*time.Hour), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, expired))

	inactive := seedOffer(t, repo, "PAUSED", 0)
	inactive.Deactivate()
	require.NoError(t, repo.Save(ctx, inactive))

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "LIVE", active[0].Code)
}
