package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/pkg/pagination"
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	// Create inserts the order and its items in one transaction
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
	// TransitionStatus moves an order from one status to another, stamping
	// the matching timestamp. It returns ErrStaleStatus when the stored
	// status is no longer from.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enum.OrderStatus, at time.Time) error
	SetLoyalty(ctx context.Context, id uuid.UUID, points int64, campaignID *uuid.UUID) error
	// CountCustomerCoupon counts non-cancelled orders of a customer that used a coupon
	CountCustomerCoupon(ctx context.Context, couponID, customerID uuid.UUID) (int64, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination *pagination.Params
	Search     string
	Status     *enum.OrderStatus
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortOrder  string
}
