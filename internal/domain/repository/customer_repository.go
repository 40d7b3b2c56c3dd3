package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	GetByEmail(ctx context.Context, email string) (*entity.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *CustomerFilterParams) ([]entity.Customer, int64, error)

	// ApplyPoints adds tx.Points (which may be negative) to the customer's
	// balance and appends tx to the ledger in one transaction. It returns
	// ErrInsufficientPoints when the balance would drop below zero. Positive
	// entries also raise lifetime points.
	ApplyPoints(ctx context.Context, tx *entity.PointTransaction) (*entity.Customer, error)

	// RecordOrder moves the order counters of a customer by the given deltas
	RecordOrder(ctx context.Context, customerID uuid.UUID, orders int, spent decimal.Decimal) error

	// ListPoints returns ledger entries newest first, keyed by created_at/id
	ListPoints(ctx context.Context, customerID uuid.UUID, params *pagination.CursorParams) ([]entity.PointTransaction, error)
}

// CustomerFilterParams contains filtering parameters for customer queries
type CustomerFilterParams struct {
	Pagination *pagination.Params
	Search     string
	Tag        string
}
