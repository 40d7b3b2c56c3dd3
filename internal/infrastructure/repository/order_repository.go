package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	domainRepo "github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"gorm.io/gorm"
)

var statusTimestamps = map[enum.OrderStatus]string{
	enum.OrderStatusCompleted: "completed_at",
	enum.OrderStatusCancelled: "cancelled_at",
	enum.OrderStatusRefunded:  "refunded_at",
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Scopes(TenantScope(ctx))
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := order.Items
		order.Items = nil
		if err := tx.Omit("Customer").Create(order).Error; err != nil {
			order.Items = items
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		order.Items = items
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&order.Items).Error
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return first[entity.Order](
		r.scoped(ctx).Preload("Customer").Preload("Items"),
		"id = ?", id,
	)
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := r.scoped(ctx).Model(&entity.Order{})

	if params.Search != "" {
		query = query.Where("invoice_no ILIKE ?", "%"+params.Search+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("created_at < ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortOrder := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	if params.Pagination == nil {
		params.Pagination = pagination.Default()
	}
	err := query.Scopes(Paginate(params.Pagination)).
		Preload("Customer").
		Order("created_at " + sortOrder).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enum.OrderStatus, at time.Time) error {
	updates := map[string]interface{}{"status": to}
	if col, ok := statusTimestamps[to]; ok {
		updates[col] = at
	}

	result := r.scoped(ctx).
		Model(&entity.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrStaleStatus
	}
	return nil
}

func (r *orderRepository) SetLoyalty(ctx context.Context, id uuid.UUID, points int64, campaignID *uuid.UUID) error {
	return r.scoped(ctx).
		Model(&entity.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"points_earned": points,
			"campaign_id":   campaignID,
		}).Error
}

func (r *orderRepository) CountCustomerCoupon(ctx context.Context, couponID, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.scoped(ctx).
		Model(&entity.Order{}).
		Where("coupon_id = ? AND customer_id = ? AND status <> ?", couponID, customerID, enum.OrderStatusCancelled).
		Count(&count).Error
	return count, err
}
