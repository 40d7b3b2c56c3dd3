package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order represents a sales order
type Order struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID    *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	InvoiceNo     string             `gorm:"size:100;unique;not null" json:"invoice_no"`
	Status        enum.OrderStatus   `gorm:"default:0;index" json:"status"`
	PaymentMethod enum.PaymentMethod `gorm:"default:0" json:"payment_method"`
	TotalProducts int                `gorm:"default:0" json:"total_products"`
	SubTotal      decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"sub_total"`
	DiscountTotal decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"discount_total"`
	TaxTotal      decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"tax_total"`
	Total         decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	CouponID      *uuid.UUID         `gorm:"type:uuid;index" json:"coupon_id,omitempty"`
	CouponCode    *string            `gorm:"size:64" json:"coupon_code,omitempty"`
	PointsEarned  int64              `gorm:"not null;default:0" json:"points_earned"`
	CampaignID    *uuid.UUID         `gorm:"type:uuid" json:"campaign_id,omitempty"`
	Notes         *string            `gorm:"type:text" json:"notes,omitempty"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	RefundedAt    *time.Time         `json:"refunded_at,omitempty"`
	CreatedAt     time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"-"`

	Customer *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// StockMovements returns the quantity per product held by the order
func (o *Order) StockMovements() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(o.Items))
	for _, item := range o.Items {
		out[item.ProductID] += item.Quantity
	}
	return out
}

// OrderItem represents a line item in an order. Name and prices are copied
// from the product at order time.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	CategoryID *uuid.UUID      `gorm:"type:uuid" json:"category_id,omitempty"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new order item
func (oi *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
