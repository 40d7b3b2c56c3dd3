package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/pkg/pagination"
)

// CampaignRepository defines the interface for loyalty campaign data operations
type CampaignRepository interface {
	Create(ctx context.Context, campaign *entity.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Campaign, error)
	Update(ctx context.Context, campaign *entity.Campaign) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.Params, status *enum.CampaignStatus) ([]entity.Campaign, int64, error)
	// ListActive returns campaigns with status active ordered by priority,
	// highest first. Time windows are checked by the caller.
	ListActive(ctx context.Context) ([]entity.Campaign, error)
}

// CouponRepository defines the interface for coupon data operations
type CouponRepository interface {
	Create(ctx context.Context, coupon *entity.Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Coupon, error)
	GetByCode(ctx context.Context, code string) (*entity.Coupon, error)
	Update(ctx context.Context, coupon *entity.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.Params, search string) ([]entity.Coupon, int64, error)
	// Redeem bumps the usage count, guarded by the usage limit, and records
	// the redemption. It returns ErrCouponExhausted when the limit was hit.
	Redeem(ctx context.Context, redemption *entity.CouponRedemption) error
	// Release undoes the redemption of an order, if any
	Release(ctx context.Context, orderID uuid.UUID) error
	CountRedemptions(ctx context.Context, couponID, customerID uuid.UUID) (int64, error)
}

// EarningEventRepository defines the interface for QR and click event data operations
type EarningEventRepository interface {
	Create(ctx context.Context, event *entity.EarningEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.EarningEvent, error)
	GetByToken(ctx context.Context, token string) (*entity.EarningEvent, error)
	Update(ctx context.Context, event *entity.EarningEvent) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.Params) ([]entity.EarningEvent, int64, error)
	CountClaims(ctx context.Context, eventID, customerID uuid.UUID) (int64, error)
	GetClaimByKey(ctx context.Context, eventID uuid.UUID, key string) (*entity.EventClaim, error)
	// Claim records the claim, bumps the claim count and credits entry to the
	// customer in one transaction. It returns ErrEventCapReached when the
	// total cap is used up and ErrEventClaimLimit when the customer already
	// holds maxPerCustomer claims. Nothing is written on any error.
	Claim(ctx context.Context, claim *entity.EventClaim, entry *entity.PointTransaction, maxPerCustomer int) (*entity.Customer, error)
}
