package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/pkg/condition"
	"github.com/sangkips/storefront-admin/pkg/pricing"
	"github.com/shopspring/decimal"
)

// CampaignRequest creates or updates a campaign
type CampaignRequest struct {
	Name        string            `json:"name" binding:"required,min=2,max=255"`
	Description *string           `json:"description"`
	Type        enum.CampaignType `json:"type"`
	Multiplier  decimal.Decimal   `json:"multiplier"`
	BonusPoints int64             `json:"bonus_points" binding:"min=0"`
	Priority    int               `json:"priority"`
	StartsAt    *time.Time        `json:"starts_at"`
	EndsAt      *time.Time        `json:"ends_at"`
	Conditions  condition.Tree    `json:"conditions"`
}

// EvaluateRequest carries the facts for a dry run
type EvaluateRequest struct {
	Facts condition.Facts `json:"facts" binding:"required"`
}

// CouponRequest creates or updates a coupon
type CouponRequest struct {
	Code             string           `json:"code" binding:"required,min=3,max=64"`
	Description      *string          `json:"description"`
	DiscountMode     pricing.Mode     `json:"discount_mode" binding:"required,discount_mode"`
	DiscountValue    decimal.Decimal  `json:"discount_value" binding:"gt=0"`
	MinSubtotal      *decimal.Decimal `json:"min_subtotal" binding:"omitempty,gte=0"`
	MaxDiscount      *decimal.Decimal `json:"max_discount" binding:"omitempty,gt=0"`
	UsageLimit       *int             `json:"usage_limit" binding:"omitempty,min=1"`
	PerCustomerLimit *int             `json:"per_customer_limit" binding:"omitempty,min=1"`
	StartsAt         *time.Time       `json:"starts_at"`
	EndsAt           *time.Time       `json:"ends_at"`
	Active           bool             `json:"active"`
	Conditions       condition.Tree   `json:"conditions"`
}

// ValidateCouponRequest previews a coupon against an order
type ValidateCouponRequest struct {
	Code       string          `json:"code" binding:"required"`
	Subtotal   decimal.Decimal `json:"subtotal" binding:"gte=0"`
	CustomerID *uuid.UUID      `json:"customer_id"`
	Facts      condition.Facts `json:"facts"`
}

// EventRequest creates or updates an earning event
type EventRequest struct {
	Name                 string         `json:"name" binding:"required,min=2,max=255"`
	Description          *string        `json:"description"`
	Type                 enum.EventType `json:"type"`
	Points               int64          `json:"points" binding:"required,min=1"`
	MaxClaimsPerCustomer int            `json:"max_claims_per_customer" binding:"min=0"`
	TotalClaimCap        *int           `json:"total_claim_cap" binding:"omitempty,min=1"`
	StartsAt             *time.Time     `json:"starts_at"`
	EndsAt               *time.Time     `json:"ends_at"`
	Active               bool           `json:"active"`
}

// ClaimEventRequest claims an earning event for a customer. Code is either
// the scanned payload or the bare token.
type ClaimEventRequest struct {
	Code       string    `json:"code" binding:"required"`
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
}
