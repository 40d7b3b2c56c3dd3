package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/sangkips/storefront-admin/pkg/condition"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"github.com/sangkips/storefront-admin/pkg/pricing"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CouponService manages discount coupons
type CouponService struct {
	couponRepo   repository.CouponRepository
	customerRepo repository.CustomerRepository
	clock        clock.Clock
}

// NewCouponService creates a new coupon service
func NewCouponService(couponRepo repository.CouponRepository, customerRepo repository.CustomerRepository, clk clock.Clock) *CouponService {
	return &CouponService{couponRepo: couponRepo, customerRepo: customerRepo, clock: clk}
}

// CouponInput holds the editable fields of a coupon
type CouponInput struct {
	Code             string
	Description      *string
	DiscountMode     pricing.Mode
	DiscountValue    decimal.Decimal
	MinSubtotal      *decimal.Decimal
	MaxDiscount      *decimal.Decimal
	UsageLimit       *int
	PerCustomerLimit *int
	StartsAt         *time.Time
	EndsAt           *time.Time
	Active           bool
	Conditions       condition.Tree
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (in *CouponInput) validate() error {
	var fields []apperror.FieldError
	add := func(field, msg string) {
		fields = append(fields, apperror.FieldError{Field: field, Message: msg})
	}

	if normalizeCode(in.Code) == "" {
		add("code", "is required")
	}
	switch in.DiscountMode {
	case pricing.ModePercentage:
		if !in.DiscountValue.IsPositive() || in.DiscountValue.GreaterThan(hundred) {
			add("discount_value", "must be greater than 0 and at most 100")
		}
	case pricing.ModeFixed:
		if !in.DiscountValue.IsPositive() {
			add("discount_value", "must be greater than 0")
		}
	default:
		add("discount_mode", "must be percentage or fixed")
	}
	if in.MinSubtotal != nil && in.MinSubtotal.IsNegative() {
		add("min_subtotal", "must not be negative")
	}
	if in.MaxDiscount != nil && !in.MaxDiscount.IsPositive() {
		add("max_discount", "must be greater than 0")
	}
	if in.UsageLimit != nil && *in.UsageLimit < 1 {
		add("usage_limit", "must be at least 1")
	}
	if in.PerCustomerLimit != nil && *in.PerCustomerLimit < 1 {
		add("per_customer_limit", "must be at least 1")
	}
	if in.StartsAt != nil && in.EndsAt != nil && !in.EndsAt.After(*in.StartsAt) {
		add("ends_at", "must be after starts_at")
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return validateConditions("conditions", in.Conditions)
}

func (in *CouponInput) apply(c *entity.Coupon) {
	c.Code = normalizeCode(in.Code)
	c.Description = in.Description
	c.DiscountMode = in.DiscountMode
	c.DiscountValue = in.DiscountValue.Round(2)
	c.MinSubtotal = in.MinSubtotal
	c.MaxDiscount = in.MaxDiscount
	c.UsageLimit = in.UsageLimit
	c.PerCustomerLimit = in.PerCustomerLimit
	c.StartsAt = in.StartsAt
	c.EndsAt = in.EndsAt
	c.Active = in.Active
	c.Conditions = in.Conditions
}

func (s *CouponService) checkCodeFree(ctx context.Context, code string, self uuid.UUID) error {
	existing, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("Coupon code already exists")
	}
	return nil
}

// CreateCoupon creates a coupon. Codes are stored upper-cased and are unique
// within the tenant.
func (s *CouponService) CreateCoupon(ctx context.Context, userID uuid.UUID, input *CouponInput) (*entity.Coupon, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := s.checkCodeFree(ctx, normalizeCode(input.Code), uuid.Nil); err != nil {
		return nil, err
	}

	coupon := &entity.Coupon{TenantID: tenantID, CreatedBy: userID}
	input.apply(coupon)

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// GetCoupon retrieves a coupon by ID
func (s *CouponService) GetCoupon(ctx context.Context, id uuid.UUID) (*entity.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, apperror.NewNotFoundError("Coupon")
	}
	return coupon, nil
}

// ListCoupons lists coupons, optionally searching by code
func (s *CouponService) ListCoupons(ctx context.Context, params *pagination.Params, search string) (*pagination.Result[entity.Coupon], error) {
	coupons, total, err := s.couponRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(coupons, params, total), nil
}

// UpdateCoupon replaces the editable fields of a coupon. The usage count is
// kept.
func (s *CouponService) UpdateCoupon(ctx context.Context, id uuid.UUID, input *CouponInput) (*entity.Coupon, error) {
	coupon, err := s.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := s.checkCodeFree(ctx, normalizeCode(input.Code), coupon.ID); err != nil {
		return nil, err
	}

	input.apply(coupon)
	if err := s.couponRepo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// DeleteCoupon deletes a coupon
func (s *CouponService) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCoupon(ctx, id); err != nil {
		return err
	}
	return s.couponRepo.Delete(ctx, id)
}

// ValidateCouponInput describes a prospective order for a coupon check
type ValidateCouponInput struct {
	Code       string
	Subtotal   decimal.Decimal
	CustomerID *uuid.UUID
	Facts      condition.Facts
}

// ValidateCoupon previews the discount a coupon would give, or returns a
// rejection carrying the reason it cannot be used
func (s *CouponService) ValidateCoupon(ctx context.Context, input *ValidateCouponInput) (*CouponQuote, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, normalizeCode(input.Code))
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, apperror.NewRejection(ReasonCouponNotFound, "Coupon code is not valid")
	}

	facts := OrderFacts{Subtotal: input.Subtotal.Round(2)}
	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
		facts.Customer = customer
	}

	return quoteCoupon(ctx, s.couponRepo, coupon, facts, input.Facts, s.clock.Now())
}
