package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesSummary aggregates completed orders in a period
type SalesSummary struct {
	OrderCount int64
	Revenue    decimal.Decimal
	Discounts  decimal.Decimal
}

// PointsSummary aggregates ledger movements in a period
type PointsSummary struct {
	Issued   int64
	Redeemed int64
}

// TopProductResult represents a product's sales performance
type TopProductResult struct {
	ProductID    uuid.UUID
	ProductName  string
	QuantitySold int
	Revenue      decimal.Decimal
}

// TopCustomerResult represents a customer's spending and loyalty standing
type TopCustomerResult struct {
	CustomerID    uuid.UUID
	CustomerName  string
	TotalSpent    decimal.Decimal
	PointsBalance int64
}

// ReportRepository defines aggregation queries for the dashboard
type ReportRepository interface {
	Sales(ctx context.Context, from, to time.Time) (*SalesSummary, error)
	Points(ctx context.Context, from, to time.Time) (*PointsSummary, error)
	CouponRedemptions(ctx context.Context, from, to time.Time) (int64, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProductResult, error)
	TopCustomers(ctx context.Context, limit int) ([]TopCustomerResult, error)
}
