package service

import (
	"context"
	"time"

	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/shopspring/decimal"
)

const (
	defaultReportDays = 30
	topListSize       = 5
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	reportRepo   repository.ReportRepository
	productRepo  repository.ProductRepository
	campaignRepo repository.CampaignRepository
	clock        clock.Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	reportRepo repository.ReportRepository,
	productRepo repository.ProductRepository,
	campaignRepo repository.CampaignRepository,
	clk clock.Clock,
) *DashboardService {
	if clk == nil {
		clk = clock.Real()
	}
	return &DashboardService{
		reportRepo:   reportRepo,
		productRepo:  productRepo,
		campaignRepo: campaignRepo,
		clock:        clk,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	From              time.Time                      `json:"from"`
	To                time.Time                      `json:"to"`
	OrderCount        int64                          `json:"order_count"`
	Revenue           decimal.Decimal                `json:"revenue"`
	Discounts         decimal.Decimal                `json:"discounts"`
	AverageOrderValue decimal.Decimal                `json:"average_order_value"`
	RevenueGrowth     float64                        `json:"revenue_growth"`
	PointsIssued      int64                          `json:"points_issued"`
	PointsRedeemed    int64                          `json:"points_redeemed"`
	CouponsRedeemed   int64                          `json:"coupons_redeemed"`
	ActiveCampaigns   int                            `json:"active_campaigns"`
	LowStockCount     int64                          `json:"low_stock_count"`
	TopProducts       []repository.TopProductResult  `json:"top_products"`
	TopCustomers      []repository.TopCustomerResult `json:"top_customers"`
}

// DashboardInput selects the reporting period. Missing bounds default to the
// last 30 days.
type DashboardInput struct {
	From *time.Time
	To   *time.Time
}

// GetDashboardStats returns dashboard statistics for the period
func (s *DashboardService) GetDashboardStats(ctx context.Context, input *DashboardInput) (*DashboardStats, error) {
	if _, err := requireTenant(ctx); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	to := now
	if input.To != nil {
		to = *input.To
	}
	from := to.AddDate(0, 0, -defaultReportDays)
	if input.From != nil {
		from = *input.From
	}
	if !from.Before(to) {
		return nil, apperror.NewBadRequestError("from must be before to")
	}

	stats := &DashboardStats{From: from, To: to}

	sales, err := s.reportRepo.Sales(ctx, from, to)
	if err != nil {
		return nil, err
	}
	stats.OrderCount = sales.OrderCount
	stats.Revenue = sales.Revenue.Round(2)
	stats.Discounts = sales.Discounts.Round(2)
	if sales.OrderCount > 0 {
		stats.AverageOrderValue = sales.Revenue.Div(decimal.NewFromInt(sales.OrderCount)).Round(2)
	}

	// growth against the period of the same length just before
	previous, err := s.reportRepo.Sales(ctx, from.Add(-to.Sub(from)), from)
	if err != nil {
		return nil, err
	}
	stats.RevenueGrowth = growth(previous.Revenue, sales.Revenue)

	points, err := s.reportRepo.Points(ctx, from, to)
	if err != nil {
		return nil, err
	}
	stats.PointsIssued = points.Issued
	stats.PointsRedeemed = points.Redeemed

	if stats.CouponsRedeemed, err = s.reportRepo.CouponRedemptions(ctx, from, to); err != nil {
		return nil, err
	}

	campaigns, err := s.campaignRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	stats.ActiveCampaigns = countRunning(campaigns, now)

	if stats.LowStockCount, err = s.productRepo.CountLowStock(ctx); err != nil {
		return nil, err
	}

	if stats.TopProducts, err = s.reportRepo.TopProducts(ctx, from, to, topListSize); err != nil {
		return nil, err
	}
	if stats.TopCustomers, err = s.reportRepo.TopCustomers(ctx, topListSize); err != nil {
		return nil, err
	}

	return stats, nil
}

func countRunning(campaigns []entity.Campaign, now time.Time) int {
	n := 0
	for i := range campaigns {
		if campaigns[i].IsRunning(now) {
			n++
		}
	}
	return n
}

// growth is the percentage change from before to after, rounded to 1dp
func growth(before, after decimal.Decimal) float64 {
	if before.IsZero() {
		if after.IsPositive() {
			return 100
		}
		return 0
	}
	pct, _ := after.Sub(before).Div(before).Mul(hundred).Round(1).Float64()
	return pct
}
