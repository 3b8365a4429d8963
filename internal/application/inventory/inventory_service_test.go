package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	domaininventory "github.com/locallift/backend/internal/domain/inventory"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/domain/shared/valueobject"
	"github.com/locallift/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type inventoryFixture struct {
	service     *InventoryService
	stockRepo   *persistence.GormStockEntryRepository
	productRepo *persistence.GormProductRepository
}

func newInventoryFixture(t *testing.T) *inventoryFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))

	stockRepo := persistence.NewGormStockEntryRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	return &inventoryFixture{
		service:     NewInventoryService(stockRepo, productRepo, zap.NewNop()),
		stockRepo:   stockRepo,
		productRepo: productRepo,
	}
}

func (f *inventoryFixture) seedProduct(t *testing.T, vendorID uuid.UUID, name string, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(vendorID, name, "", "misc", valueobject.NewMoneyUSDFromInt(25), stock)
	require.NoError(t, err)
	require.NoError(t, f.productRepo.Save(context.Background(), product))
	return product
}

func (f *inventoryFixture) seedEntry(t *testing.T, productID, actorID uuid.UUID, change, previous int, reason domaininventory.Reason, reference string) {
	t.Helper()
	entry, err := domaininventory.NewStockEntry(productID, actorID, change, previous, reason, reference)
	require.NoError(t, err)
	require.NoError(t, f.stockRepo.Save(context.Background(), entry))
}

func TestInventoryService_LedgerForProduct(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	vendorID := uuid.New()

	product := f.seedProduct(t, vendorID, "Candles", 20)
	f.seedEntry(t, product.ID, vendorID, 20, 0, domaininventory.ReasonAdjustment, "")
	f.seedEntry(t, product.ID, vendorID, -3, 20, domaininventory.ReasonOrder, "ORD-1")
	f.seedEntry(t, product.ID, vendorID, 3, 17, domaininventory.ReasonRestock, "ORD-1")

	t.Run("owner reads the full ledger", func(t *testing.T) {
		page, err := f.service.LedgerForProduct(ctx, vendorID, false, product.ID, LedgerFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		require.Len(t, page.Items, 3)
		for _, row := range page.Items {
			assert.Equal(t, row.PreviousStock+row.Change, row.NewStock)
		}
	})

	t.Run("reason filter narrows rows", func(t *testing.T) {
		page, err := f.service.LedgerForProduct(ctx, vendorID, false, product.ID, LedgerFilter{Reason: string(domaininventory.ReasonOrder)})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "ORD-1", page.Items[0].Reference)
	})

	t.Run("another vendor is rejected", func(t *testing.T) {
		_, err := f.service.LedgerForProduct(ctx, uuid.New(), false, product.ID, LedgerFilter{})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		page, err := f.service.LedgerForProduct(ctx, uuid.New(), true, product.ID, LedgerFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		_, err := f.service.LedgerForProduct(ctx, vendorID, true, uuid.New(), LedgerFilter{})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestInventoryService_Ledger(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	vendorID := uuid.New()

	first := f.seedProduct(t, vendorID, "Mugs", 5)
	second := f.seedProduct(t, vendorID, "Plates", 8)
	f.seedEntry(t, first.ID, vendorID, 5, 0, domaininventory.ReasonAdjustment, "")
	f.seedEntry(t, second.ID, vendorID, 8, 0, domaininventory.ReasonAdjustment, "")

	page, err := f.service.Ledger(ctx, LedgerFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestInventoryService_LowStock(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()
	vendorID := uuid.New()

	f.seedProduct(t, vendorID, "Nearly gone", 1)
	f.seedProduct(t, vendorID, "Running low", 4)
	f.seedProduct(t, vendorID, "Plenty", 50)
	f.seedProduct(t, uuid.New(), "Someone else's", 0)

	rows, err := f.service.LowStock(ctx, vendorID, 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Emptiest first
	assert.Equal(t, "Nearly gone", rows[0].Name)
	assert.Equal(t, "Running low", rows[1].Name)
}
