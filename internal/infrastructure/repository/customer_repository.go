package repository

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	domainRepo "github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Scopes(TenantScope(ctx))
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	return first[entity.Customer](r.scoped(ctx), "id = ?", id)
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	return first[entity.Customer](r.scoped(ctx), "LOWER(email) = LOWER(?)", email)
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	return first[entity.Customer](r.scoped(ctx), "phone = ?", phone)
}

// Update saves profile fields. Loyalty counters are only moved by
// ApplyPoints and RecordOrder.
func (r *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).
		Omit("points_balance", "lifetime_points", "total_orders", "total_spent").
		Save(customer).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.scoped(ctx).Delete(&entity.Customer{}, "id = ?", id).Error
}

func (r *customerRepository) List(ctx context.Context, params *domainRepo.CustomerFilterParams) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := r.scoped(ctx).Model(&entity.Customer{})

	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", like, like, like)
	}

	if tag := strings.ToLower(strings.TrimSpace(params.Tag)); tag != "" {
		data, _ := json.Marshal([]string{tag})
		query = query.Where("tags @> ?::jsonb", string(data))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Pagination == nil {
		params.Pagination = pagination.Default()
	}
	err := query.Scopes(Paginate(params.Pagination)).
		Order("created_at DESC").
		Find(&customers).Error

	return customers, total, err
}

func (r *customerRepository) ApplyPoints(ctx context.Context, entry *entity.PointTransaction) (*entity.Customer, error) {
	var customer *entity.Customer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		customer, err = applyPoints(ctx, tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// applyPoints moves the balance and writes the ledger row inside tx. The
// balance update is conditional so it never goes below zero.
func applyPoints(ctx context.Context, tx *gorm.DB, entry *entity.PointTransaction) (*entity.Customer, error) {
	updates := map[string]interface{}{
		"points_balance": gorm.Expr("points_balance + ?", entry.Points),
	}
	if entry.Points > 0 {
		updates["lifetime_points"] = gorm.Expr("lifetime_points + ?", entry.Points)
	}

	result := tx.Model(&entity.Customer{}).
		Scopes(TenantScope(ctx)).
		Where("id = ? AND points_balance + ? >= 0", entry.CustomerID, entry.Points).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}

	var customer entity.Customer
	if err := tx.Scopes(TenantScope(ctx)).First(&customer, "id = ?", entry.CustomerID).Error; err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, domainRepo.ErrInsufficientPoints
	}

	entry.TenantID = customer.TenantID
	entry.BalanceAfter = customer.PointsBalance
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) RecordOrder(ctx context.Context, customerID uuid.UUID, orders int, spent decimal.Decimal) error {
	return r.scoped(ctx).
		Model(&entity.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]interface{}{
			"total_orders": gorm.Expr("total_orders + ?", orders),
			"total_spent":  gorm.Expr("total_spent + ?", spent),
		}).Error
}

func (r *customerRepository) ListPoints(ctx context.Context, customerID uuid.UUID, params *pagination.CursorParams) ([]entity.PointTransaction, error) {
	params.Normalize()
	cursor, err := params.Decode()
	if err != nil {
		return nil, err
	}

	query := r.scoped(ctx).Where("customer_id = ?", customerID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var entries []entity.PointTransaction
	// limit+1 lets the caller detect a next page
	err = query.Order("created_at DESC, id DESC").
		Limit(params.Limit + 1).
		Find(&entries).Error
	return entries, err
}
