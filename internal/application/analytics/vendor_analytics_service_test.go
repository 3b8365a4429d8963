package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/identity"
	"github.com/locallift/backend/internal/domain/order"
	"github.com/locallift/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newAnalyticsFixture(t *testing.T) (*VendorAnalyticsService, order.VendorOrderEntryRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))
	repo := persistence.NewGormVendorOrderEntryRepository(db)
	svc := NewVendorAnalyticsService(repo, persistence.NewGormOrderRepository(db), persistence.NewGormUserRepository(db), zap.NewNop())
	return svc, repo
}

func entry(vendorID, customerID uuid.UUID, revenue int64, units int, status order.Status, placedAt time.Time) order.VendorOrderEntry {
	return order.VendorOrderEntry{
		ID:         uuid.New(),
		VendorID:   vendorID,
		OrderID:    uuid.New(),
		CustomerID: customerID,
		Revenue:    decimal.NewFromInt(revenue),
		Units:      units,
		Status:     status,
		PlacedAt:   placedAt,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func TestVendorAnalytics_Dashboard(t *testing.T) {
	svc, repo := newAnalyticsFixture(t)
	ctx := context.Background()
	now := time.Now()

	vendorA := uuid.New()
	vendorB := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	// Two vendors selling on the same orders: A took 200 across two
	// orders, B took 50 on one. Each dashboard must only see its own cut.
	require.NoError(t, repo.SaveAll(ctx, []order.VendorOrderEntry{
		entry(vendorA, alice, 120, 2, order.StatusDelivered, now.Add(-2*time.Hour)),
		entry(vendorA, bob, 80, 1, order.StatusPending, now.AddDate(0, 0, -1)),
		entry(vendorB, alice, 50, 1, order.StatusDelivered, now.Add(-2*time.Hour)),
	}))

	summaryA, err := svc.Dashboard(ctx, vendorA)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(summaryA.TotalRevenue), "vendor A revenue: %s", summaryA.TotalRevenue)
	assert.Equal(t, 2, summaryA.OrderCount)
	assert.Equal(t, 3, summaryA.UnitsSold)
	assert.Equal(t, 2, summaryA.UniqueCustomers)
	assert.True(t, decimal.NewFromInt(100).Equal(summaryA.AverageOrderValue))
	assert.Equal(t, 1, summaryA.StatusBreakdown["DELIVERED"])
	assert.Equal(t, 1, summaryA.StatusBreakdown["PENDING"])

	summaryB, err := svc.Dashboard(ctx, vendorB)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(summaryB.TotalRevenue))
	assert.Equal(t, 1, summaryB.OrderCount)
	assert.Equal(t, 1, summaryB.UniqueCustomers)
}

func TestVendorAnalytics_TotalsSpanFullHistory(t *testing.T) {
	svc, repo := newAnalyticsFixture(t)
	ctx := context.Background()
	vendor := uuid.New()
	customer := uuid.New()
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	// one recent sale plus one well before the six-month series window
	require.NoError(t, repo.SaveAll(ctx, []order.VendorOrderEntry{
		entry(vendor, customer, 100, 1, order.StatusDelivered, now),
		entry(vendor, uuid.New(), 900, 3, order.StatusDelivered, now.AddDate(0, -8, 0)),
	}))

	summary, err := svc.dashboardAt(ctx, vendor, now)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(1000).Equal(summary.TotalRevenue), "lifetime revenue: %s", summary.TotalRevenue)
	assert.Equal(t, 2, summary.OrderCount)
	assert.Equal(t, 4, summary.UnitsSold)
	assert.Equal(t, 2, summary.UniqueCustomers)
	assert.Equal(t, 2, summary.StatusBreakdown["DELIVERED"])

	// the series still only covers its own window
	require.Len(t, summary.MonthlySeries, 6)
	assert.True(t, decimal.NewFromInt(100).Equal(summary.MonthlySeries[5].Revenue))
	assert.True(t, summary.MonthlySeries[0].Revenue.IsZero())
}

func TestVendorAnalytics_Series(t *testing.T) {
	svc, repo := newAnalyticsFixture(t)
	ctx := context.Background()
	now := time.Now()
	vendor := uuid.New()
	customer := uuid.New()

	require.NoError(t, repo.SaveAll(ctx, []order.VendorOrderEntry{
		entry(vendor, customer, 100, 1, order.StatusDelivered, now),
		entry(vendor, customer, 40, 1, order.StatusDelivered, now),
		entry(vendor, customer, 60, 1, order.StatusDelivered, now.AddDate(0, 0, -3)),
	}))

	summary, err := svc.Dashboard(ctx, vendor)
	require.NoError(t, err)

	require.Len(t, summary.DailySeries, 7)
	today := summary.DailySeries[6]
	assert.Equal(t, now.Format("2006-01-02"), today.Date)
	assert.True(t, decimal.NewFromInt(140).Equal(today.Revenue))
	assert.Equal(t, 2, today.Orders)

	threeDaysAgo := summary.DailySeries[3]
	assert.True(t, decimal.NewFromInt(60).Equal(threeDaysAgo.Revenue))

	// days without orders stay present at zero
	assert.True(t, summary.DailySeries[0].Revenue.IsZero())

	require.Len(t, summary.MonthlySeries, 6)
	assert.Equal(t, now.Format("2006-01"), summary.MonthlySeries[5].Month)
}

func TestVendorAnalytics_PlatformStats(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))

	userRepo := persistence.NewGormUserRepository(db)
	svc := NewVendorAnalyticsService(
		persistence.NewGormVendorOrderEntryRepository(db),
		persistence.NewGormOrderRepository(db),
		userRepo,
		zap.NewNop(),
	)
	ctx := context.Background()

	seedUser := func(name, email string, role identity.Role) {
		user, err := identity.NewUser(name, email, "hunter2secret", role)
		require.NoError(t, err)
		require.NoError(t, userRepo.Save(ctx, user))
	}
	seedUser("Ada", "ada@example.com", identity.RoleCustomer)
	seedUser("Grace", "grace@example.com", identity.RoleBusiness)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Users)
	assert.Equal(t, int64(1), stats.Vendors)
	assert.Zero(t, stats.Orders)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.Empty(t, stats.StatusBreakdown)
}

func TestVendorAnalytics_Growth(t *testing.T) {
	svc, repo := newAnalyticsFixture(t)
	ctx := context.Background()
	vendor := uuid.New()
	customer := uuid.New()

	// pin the clock mid-month so the previous entry stays in the window
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveAll(ctx, []order.VendorOrderEntry{
		entry(vendor, customer, 100, 1, order.StatusDelivered, now.AddDate(0, -1, 0)),
		entry(vendor, customer, 150, 1, order.StatusDelivered, now),
	}))

	summary, err := svc.dashboardAt(ctx, vendor, now)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(summary.RevenueGrowth), "growth: %s", summary.RevenueGrowth)

	t.Run("no prior month means zero growth", func(t *testing.T) {
		fresh := uuid.New()
		require.NoError(t, repo.SaveAll(ctx, []order.VendorOrderEntry{
			entry(fresh, customer, 500, 1, order.StatusDelivered, now),
		}))
		summary, err := svc.dashboardAt(ctx, fresh, now)
		require.NoError(t, err)
		assert.True(t, summary.RevenueGrowth.IsZero())
	})
}
