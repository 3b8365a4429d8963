package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProductRepository_DecrementStock_SQL(t *testing.T) {
	const decrementPattern = `UPDATE "products" SET "stock"=stock - \$1 ` +
		`WHERE id = \$2 AND is_deleted = \$3 AND stock >= \$4`

	t.Run("decrements while stock covers the quantity", func(t *testing.T) {
		db, mock, sqlDB := newMockGorm(t)
		defer sqlDB.Close()

		repo := NewGormProductRepository(db)
		productID := uuid.New()

		mock.ExpectExec(decrementPattern).
			WithArgs(1, productID, false, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.DecrementStock(context.Background(), productID, 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("last unit race leaves exactly one winner", func(t *testing.T) {
		// Two checkouts contend for a single remaining unit. The database
		// serializes the conditional updates: the first matches the row,
		// the second finds stock already at zero and matches nothing.
		db, mock, sqlDB := newMockGorm(t)
		defer sqlDB.Close()

		repo := NewGormProductRepository(db)
		productID := uuid.New()

		mock.ExpectExec(decrementPattern).
			WithArgs(1, productID, false, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(decrementPattern).
			WithArgs(1, productID, false, 1).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, repo.DecrementStock(context.Background(), productID, 1))

		err := repo.DecrementStock(context.Background(), productID, 1)
		require.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive quantities without touching the database", func(t *testing.T) {
		db, mock, sqlDB := newMockGorm(t)
		defer sqlDB.Close()

		repo := NewGormProductRepository(db)

		err := repo.DecrementStock(context.Background(), uuid.New(), 0)
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
