package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/pkg/condition"
	"github.com/sangkips/storefront-admin/pkg/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Coupon is a discount code redeemable on orders
type Coupon struct {
	ID               uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	TenantID         uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_coupons_tenant_code" json:"tenant_id"`
	Code             string           `gorm:"size:64;not null;uniqueIndex:idx_coupons_tenant_code" json:"code"`
	Description      *string          `gorm:"type:text" json:"description,omitempty"`
	DiscountMode     pricing.Mode     `gorm:"size:20;not null;default:'percentage'" json:"discount_mode"`
	DiscountValue    decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"discount_value"`
	MinSubtotal      *decimal.Decimal `gorm:"type:decimal(12,2)" json:"min_subtotal,omitempty"`
	MaxDiscount      *decimal.Decimal `gorm:"type:decimal(12,2)" json:"max_discount,omitempty"`
	UsageLimit       *int             `json:"usage_limit,omitempty"`
	PerCustomerLimit *int             `json:"per_customer_limit,omitempty"`
	UsageCount       int              `gorm:"not null;default:0" json:"usage_count"`
	StartsAt         *time.Time       `json:"starts_at,omitempty"`
	EndsAt           *time.Time       `json:"ends_at,omitempty"`
	Active           bool             `gorm:"not null;default:true" json:"active"`
	Conditions       condition.Tree   `gorm:"type:jsonb" json:"conditions"`
	CreatedBy        uuid.UUID        `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new coupon
func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Coupon model
func (Coupon) TableName() string {
	return "coupons"
}

// Exhausted reports whether the coupon reached its total usage limit
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit
}

// CouponRedemption links a coupon to the order that used it
type CouponRedemption struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CouponID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"coupon_id"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	CustomerID *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Discount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	CreatedAt  time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new redemption
func (r *CouponRedemption) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CouponRedemption model
func (CouponRedemption) TableName() string {
	return "coupon_redemptions"
}
