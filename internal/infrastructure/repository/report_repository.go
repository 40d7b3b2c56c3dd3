package repository

import (
	"context"
	"time"

	"github.com/sangkips/storefront-admin/internal/domain/enum"
	domainRepo "github.com/sangkips/storefront-admin/internal/domain/repository"
	"gorm.io/gorm"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) domainRepo.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Sales(ctx context.Context, from, to time.Time) (*domainRepo.SalesSummary, error) {
	tenantID, ok := GetTenantID(ctx)
	if !ok {
		return &domainRepo.SalesSummary{}, nil
	}

	var result domainRepo.SalesSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) as order_count,
			COALESCE(SUM(total), 0) as revenue,
			COALESCE(SUM(discount_total), 0) as discounts
		FROM orders
		WHERE tenant_id = ? AND status = ? AND deleted_at IS NULL
			AND completed_at >= ? AND completed_at < ?
	`, tenantID, enum.OrderStatusCompleted, from, to).Scan(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *reportRepository) Points(ctx context.Context, from, to time.Time) (*domainRepo.PointsSummary, error) {
	tenantID, ok := GetTenantID(ctx)
	if !ok {
		return &domainRepo.PointsSummary{}, nil
	}

	var result domainRepo.PointsSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(CASE WHEN points > 0 THEN points ELSE 0 END), 0) as issued,
			COALESCE(SUM(CASE WHEN points < 0 THEN -points ELSE 0 END), 0) as redeemed
		FROM point_transactions
		WHERE tenant_id = ? AND created_at >= ? AND created_at < ?
	`, tenantID, from, to).Scan(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *reportRepository) CouponRedemptions(ctx context.Context, from, to time.Time) (int64, error) {
	tenantID, ok := GetTenantID(ctx)
	if !ok {
		return 0, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM coupon_redemptions
		WHERE tenant_id = ? AND created_at >= ? AND created_at < ?
	`, tenantID, from, to).Scan(&count).Error
	return count, err
}

func (r *reportRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]domainRepo.TopProductResult, error) {
	tenantID, ok := GetTenantID(ctx)
	if !ok {
		return []domainRepo.TopProductResult{}, nil
	}

	var results []domainRepo.TopProductResult
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			oi.product_id as product_id,
			MAX(oi.name) as product_name,
			COALESCE(SUM(oi.quantity), 0) as quantity_sold,
			COALESCE(SUM(oi.total), 0) as revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.tenant_id = ? AND o.status = ? AND o.deleted_at IS NULL
			AND o.completed_at >= ? AND o.completed_at < ?
		GROUP BY oi.product_id
		ORDER BY revenue DESC
		LIMIT ?
	`, tenantID, enum.OrderStatusCompleted, from, to, limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reportRepository) TopCustomers(ctx context.Context, limit int) ([]domainRepo.TopCustomerResult, error) {
	tenantID, ok := GetTenantID(ctx)
	if !ok {
		return []domainRepo.TopCustomerResult{}, nil
	}

	var results []domainRepo.TopCustomerResult
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id as customer_id,
			name as customer_name,
			total_spent,
			points_balance
		FROM customers
		WHERE tenant_id = ? AND deleted_at IS NULL
		ORDER BY total_spent DESC, points_balance DESC
		LIMIT ?
	`, tenantID, limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
