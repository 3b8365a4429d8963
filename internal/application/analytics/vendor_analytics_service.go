package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/identity"
	"github.com/locallift/backend/internal/domain/order"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// VendorAnalyticsService computes vendor dashboards from the per-vendor
// order index. It never touches the orders table for vendor views: every
// figure derives from vendor_order_entries rows written at checkout, so
// numbers reflect only the vendor's own line items. Platform-wide admin
// stats read the orders and users tables directly.
type VendorAnalyticsService struct {
	entryRepo order.VendorOrderEntryRepository
	orderRepo order.OrderRepository
	userRepo  identity.UserRepository
	logger    *zap.Logger
}

func NewVendorAnalyticsService(
	entryRepo order.VendorOrderEntryRepository,
	orderRepo order.OrderRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *VendorAnalyticsService {
	return &VendorAnalyticsService{
		entryRepo: entryRepo,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		logger:    logger.Named("vendor-analytics"),
	}
}

// DailyPoint is one day of the trailing revenue series
type DailyPoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// MonthlyPoint is one calendar month of the revenue series
type MonthlyPoint struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// Summary is the vendor dashboard headline block
type Summary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	OrderCount        int             `json:"order_count"`
	UnitsSold         int             `json:"units_sold"`
	UniqueCustomers   int             `json:"unique_customers"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	StatusBreakdown   map[string]int  `json:"status_breakdown"`
	RevenueGrowth     decimal.Decimal `json:"revenue_growth_percent"`
	DailySeries       []DailyPoint    `json:"daily_series"`
	MonthlySeries     []MonthlyPoint  `json:"monthly_series"`
}

// Dashboard builds the full vendor summary. The daily series covers the
// trailing seven days including today; the monthly series covers the
// current month and the five before it. Growth compares this calendar
// month against the previous one and reports zero when there is no prior
// revenue to compare against.
func (s *VendorAnalyticsService) Dashboard(ctx context.Context, vendorID uuid.UUID) (*Summary, error) {
	return s.dashboardAt(ctx, vendorID, time.Now())
}

func (s *VendorAnalyticsService) dashboardAt(ctx context.Context, vendorID uuid.UUID, now time.Time) (*Summary, error) {
	monthlyWindow := 6

	// The headline totals span the vendor's full history; the series
	// bucketing below drops entries outside its own window.
	entries, err := s.entryRepo.FindByVendor(ctx, vendorID, nil)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		RevenueGrowth:     decimal.Zero,
		StatusBreakdown:   make(map[string]int),
	}

	customers := make(map[uuid.UUID]struct{})
	for idx := range entries {
		entry := &entries[idx]
		summary.TotalRevenue = summary.TotalRevenue.Add(entry.Revenue)
		summary.OrderCount++
		summary.UnitsSold += entry.Units
		summary.StatusBreakdown[string(entry.Status)]++
		customers[entry.CustomerID] = struct{}{}
	}
	summary.UniqueCustomers = len(customers)
	if summary.OrderCount > 0 {
		// AOV is rounded to whole currency units for the dashboard tiles
		summary.AverageOrderValue = summary.TotalRevenue.
			Div(decimal.NewFromInt(int64(summary.OrderCount))).Round(0)
	}

	summary.DailySeries = dailySeries(entries, now)
	summary.MonthlySeries = monthlySeries(entries, now, monthlyWindow)
	summary.RevenueGrowth = monthOverMonthGrowth(summary.MonthlySeries)

	return summary, nil
}

// PlatformStats is the admin overview block
type PlatformStats struct {
	Users           int64            `json:"users"`
	Vendors         int64            `json:"vendors"`
	Orders          int64            `json:"orders"`
	TotalRevenue    decimal.Decimal  `json:"total_revenue"`
	StatusBreakdown map[string]int64 `json:"status_breakdown"`
}

// Stats builds the platform-wide totals for the admin overview.
// Cancelled orders count towards the order total but not the revenue.
func (s *VendorAnalyticsService) Stats(ctx context.Context) (*PlatformStats, error) {
	users, err := s.userRepo.Count(ctx, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}

	vendorFilter := shared.DefaultFilter()
	vendorFilter.Filters["role"] = string(identity.RoleBusiness)
	vendors, err := s.userRepo.Count(ctx, vendorFilter)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orderRepo.TotalRevenue(ctx)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &PlatformStats{
		Users:           users,
		Vendors:         vendors,
		Orders:          orders,
		TotalRevenue:    revenue,
		StatusBreakdown: breakdown,
	}, nil
}

// dailySeries buckets revenue per day over the trailing seven days,
// oldest first, emitting zero rows for days without orders.
func dailySeries(entries []order.VendorOrderEntry, now time.Time) []DailyPoint {
	const days = 7
	points := make([]DailyPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, i-(days-1)).Format("2006-01-02")
		points[i] = DailyPoint{Date: day, Revenue: decimal.Zero}
		index[day] = i
	}

	for idx := range entries {
		entry := &entries[idx]
		day := entry.PlacedAt.Format("2006-01-02")
		if i, ok := index[day]; ok {
			points[i].Revenue = points[i].Revenue.Add(entry.Revenue)
			points[i].Orders++
		}
	}
	return points
}

// monthlySeries buckets revenue per calendar month over the trailing
// window, oldest first.
func monthlySeries(entries []order.VendorOrderEntry, now time.Time, window int) []MonthlyPoint {
	points := make([]MonthlyPoint, window)
	index := make(map[string]int, window)
	for i := 0; i < window; i++ {
		month := startOfMonth(now).AddDate(0, i-(window-1), 0).Format("2006-01")
		points[i] = MonthlyPoint{Month: month, Revenue: decimal.Zero}
		index[month] = i
	}

	for idx := range entries {
		entry := &entries[idx]
		month := entry.PlacedAt.Format("2006-01")
		if i, ok := index[month]; ok {
			points[i].Revenue = points[i].Revenue.Add(entry.Revenue)
			points[i].Orders++
		}
	}
	return points
}

// monthOverMonthGrowth compares the last two points of the monthly
// series as a percentage. A zero previous month yields zero growth, not
// a division error.
func monthOverMonthGrowth(series []MonthlyPoint) decimal.Decimal {
	if len(series) < 2 {
		return decimal.Zero
	}
	current := series[len(series)-1].Revenue
	previous := series[len(series)-2].Revenue
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
