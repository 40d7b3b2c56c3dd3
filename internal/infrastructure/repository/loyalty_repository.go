package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	domainRepo "github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type campaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *gorm.DB) domainRepo.CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Scopes(TenantScope(ctx))
}

func (r *campaignRepository) Create(ctx context.Context, campaign *entity.Campaign) error {
	return r.db.WithContext(ctx).Create(campaign).Error
}

func (r *campaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Campaign, error) {
	return first[entity.Campaign](r.scoped(ctx), "id = ?", id)
}

func (r *campaignRepository) Update(ctx context.Context, campaign *entity.Campaign) error {
	return r.db.WithContext(ctx).Save(campaign).Error
}

func (r *campaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.scoped(ctx).Delete(&entity.Campaign{}, "id = ?", id).Error
}

func (r *campaignRepository) List(ctx context.Context, params *pagination.Params, status *enum.CampaignStatus) ([]entity.Campaign, int64, error) {
	var campaigns []entity.Campaign
	var total int64

	query := r.scoped(ctx).Model(&entity.Campaign{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params)).
		Order("priority DESC, created_at DESC").
		Find(&campaigns).Error

	return campaigns, total, err
}

func (r *campaignRepository) ListActive(ctx context.Context) ([]entity.Campaign, error) {
	var campaigns []entity.Campaign
	err := r.scoped(ctx).
		Where("status = ?", enum.CampaignStatusActive).
		Order("priority DESC, created_at ASC").
		Find(&campaigns).Error
	return campaigns, err
}

type couponRepository struct {
	db *gorm.DB
}

// NewCouponRepository creates a new coupon repository
func NewCouponRepository(db *gorm.DB) domainRepo.CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Scopes(TenantScope(ctx))
}

func (r *couponRepository) Create(ctx context.Context, coupon *entity.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Coupon, error) {
	return first[entity.Coupon](r.scoped(ctx), "id = ?", id)
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	return first[entity.Coupon](r.scoped(ctx), "UPPER(code) = UPPER(?)", code)
}

// Update leaves usage_count alone; it only moves through Redeem and Release
func (r *couponRepository) Update(ctx context.Context, coupon *entity.Coupon) error {
	return r.db.WithContext(ctx).Omit("usage_count").Save(coupon).Error
}

func (r *couponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.scoped(ctx).Delete(&entity.Coupon{}, "id = ?", id).Error
}

func (r *couponRepository) List(ctx context.Context, params *pagination.Params, search string) ([]entity.Coupon, int64, error) {
	var coupons []entity.Coupon
	var total int64

	query := r.scoped(ctx).Model(&entity.Coupon{})
	if search != "" {
		query = query.Where("code ILIKE ? OR description ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params)).
		Order("created_at DESC").
		Find(&coupons).Error

	return coupons, total, err
}

func (r *couponRepository) Redeem(ctx context.Context, redemption *entity.CouponRedemption) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Coupon{}).
			Scopes(TenantScope(ctx)).
			Where("id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", redemption.CouponID).
			Update("usage_count", gorm.Expr("usage_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainRepo.ErrCouponExhausted
		}
		return tx.Create(redemption).Error
	})
}

func (r *couponRepository) Release(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var redemption entity.CouponRedemption
		err := tx.Scopes(TenantScope(ctx)).First(&redemption, "order_id = ?", orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Delete(&redemption).Error; err != nil {
			return err
		}
		return tx.Model(&entity.Coupon{}).
			Where("id = ? AND usage_count > 0", redemption.CouponID).
			Update("usage_count", gorm.Expr("usage_count - 1")).Error
	})
}

func (r *couponRepository) CountRedemptions(ctx context.Context, couponID, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.scoped(ctx).
		Model(&entity.CouponRedemption{}).
		Where("coupon_id = ? AND customer_id = ?", couponID, customerID).
		Count(&count).Error
	return count, err
}

type earningEventRepository struct {
	db *gorm.DB
}

// NewEarningEventRepository creates a new earning event repository
func NewEarningEventRepository(db *gorm.DB) domainRepo.EarningEventRepository {
	return &earningEventRepository{db: db}
}

func (r *earningEventRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Scopes(TenantScope(ctx))
}

func (r *earningEventRepository) Create(ctx context.Context, event *entity.EarningEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *earningEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.EarningEvent, error) {
	return first[entity.EarningEvent](r.scoped(ctx), "id = ?", id)
}

func (r *earningEventRepository) GetByToken(ctx context.Context, token string) (*entity.EarningEvent, error) {
	return first[entity.EarningEvent](r.scoped(ctx), "token = ?", token)
}

func (r *earningEventRepository) Update(ctx context.Context, event *entity.EarningEvent) error {
	return r.db.WithContext(ctx).Omit("claim_count").Save(event).Error
}

func (r *earningEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.scoped(ctx).Delete(&entity.EarningEvent{}, "id = ?", id).Error
}

func (r *earningEventRepository) List(ctx context.Context, params *pagination.Params) ([]entity.EarningEvent, int64, error) {
	var events []entity.EarningEvent
	var total int64

	query := r.scoped(ctx).Model(&entity.EarningEvent{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params)).
		Order("created_at DESC").
		Find(&events).Error

	return events, total, err
}

func (r *earningEventRepository) CountClaims(ctx context.Context, eventID, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.scoped(ctx).
		Model(&entity.EventClaim{}).
		Where("event_id = ? AND customer_id = ?", eventID, customerID).
		Count(&count).Error
	return count, err
}

func (r *earningEventRepository) GetClaimByKey(ctx context.Context, eventID uuid.UUID, key string) (*entity.EventClaim, error) {
	return first[entity.EventClaim](r.scoped(ctx), "event_id = ? AND idempotency_key = ?", eventID, key)
}

func (r *earningEventRepository) Claim(ctx context.Context, claim *entity.EventClaim, entry *entity.PointTransaction, maxPerCustomer int) (*entity.Customer, error) {
	var customer *entity.Customer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the row lock serializes claims on one event, so the count below
		// cannot be raced
		var event entity.EarningEvent
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(TenantScope(ctx)).
			First(&event, "id = ?", claim.EventID).Error
		if err != nil {
			return err
		}
		if event.CapReached() {
			return domainRepo.ErrEventCapReached
		}

		var claims int64
		err = tx.Model(&entity.EventClaim{}).
			Scopes(TenantScope(ctx)).
			Where("event_id = ? AND customer_id = ?", claim.EventID, claim.CustomerID).
			Count(&claims).Error
		if err != nil {
			return err
		}
		if claims >= int64(maxPerCustomer) {
			return domainRepo.ErrEventClaimLimit
		}

		err = tx.Model(&event).
			Update("claim_count", gorm.Expr("claim_count + 1")).Error
		if err != nil {
			return err
		}
		if err := tx.Create(claim).Error; err != nil {
			return err
		}

		customer, err = applyPoints(ctx, tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}
