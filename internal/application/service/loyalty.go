package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/sangkips/storefront-admin/pkg/condition"
	"github.com/sangkips/storefront-admin/pkg/pricing"
	"github.com/shopspring/decimal"
)

// Rejection reasons returned when a coupon cannot be applied
const (
	ReasonCouponNotFound      = "coupon_not_found"
	ReasonCouponInactive      = "coupon_inactive"
	ReasonCouponNotStarted    = "coupon_not_started"
	ReasonCouponExpired       = "coupon_expired"
	ReasonCouponExhausted     = "coupon_usage_exhausted"
	ReasonCouponCustomerLimit = "coupon_customer_limit"
	ReasonBelowMinimum        = "below_minimum"
	ReasonConditionsNotMet    = "conditions_not_met"
)

// OrderFacts is what eligibility rules can see about an order
type OrderFacts struct {
	Subtotal      decimal.Decimal
	ItemCount     int
	PaymentMethod *enum.PaymentMethod
	Categories    []string
	Products      []string
	Customer      *entity.Customer
}

// Facts flattens the order into condition facts. Line facts are left out
// while ItemCount is zero, meaning the lines are not known yet. Customer
// facts are only present when the order has a customer.
func (o OrderFacts) Facts() condition.Facts {
	facts := condition.Facts{
		condition.FieldOrderSubtotal: condition.Number(o.Subtotal),
	}
	if o.ItemCount > 0 {
		facts[condition.FieldOrderItemCount] = condition.Int(int64(o.ItemCount))
		facts[condition.FieldOrderCategories] = condition.Strings(uniqueSorted(o.Categories)...)
		facts[condition.FieldOrderProducts] = condition.Strings(uniqueSorted(o.Products)...)
	}
	if o.PaymentMethod != nil {
		facts[condition.FieldOrderPaymentMethod] = condition.String(o.PaymentMethod.String())
	}
	if c := o.Customer; c != nil {
		facts[condition.FieldCustomerTotalOrders] = condition.Int(int64(c.TotalOrders))
		facts[condition.FieldCustomerTotalSpent] = condition.Number(c.TotalSpent)
		facts[condition.FieldCustomerPoints] = condition.Int(c.PointsBalance)
		facts[condition.FieldCustomerTags] = condition.Strings(c.Tags...)
		facts[condition.FieldCustomerMarketingOpt] = condition.Bool(c.AcceptsMarketing)
	}
	return facts
}

// mergeFacts overlays extra on base without modifying either
func mergeFacts(base, extra condition.Facts) condition.Facts {
	out := make(condition.Facts, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// uniqueSorted trims and de-duplicates case-insensitively, keeping the
// first spelling seen
func uniqueSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// matches evaluates a stored rule. A rule that fails to evaluate is logged
// and treated as not matching.
func matches(tree condition.Tree, facts condition.Facts, kind string, id uuid.UUID) bool {
	ok, err := condition.Evaluate(tree.Root, facts)
	if err != nil {
		log.Warn().Err(err).Str(kind, id.String()).Msg("eligibility rule failed to evaluate")
		return false
	}
	return ok
}

// PointsAward is the outcome of applying campaigns to an order
type PointsAward struct {
	BasePoints  int64
	Multiplier  decimal.Decimal
	BonusPoints int64
	Points      int64
	CampaignID  *uuid.UUID
	Campaigns   []uuid.UUID
}

// computePoints turns an order total into points. Base points are
// floor(total x rate). The highest multiplier among running, matching
// multiplier campaigns applies; ties go to the first in priority order.
// Every running, matching bonus campaign adds its bonus on top.
func computePoints(total, rate decimal.Decimal, campaigns []entity.Campaign, facts condition.Facts, now time.Time) PointsAward {
	award := PointsAward{Multiplier: decimal.NewFromInt(1)}
	if total.IsNegative() || !rate.IsPositive() {
		return award
	}
	award.BasePoints = total.Mul(rate).Floor().IntPart()

	var best *entity.Campaign
	for i := range campaigns {
		c := &campaigns[i]
		if !c.IsRunning(now) || !matches(c.Conditions, facts, "campaign_id", c.ID) {
			continue
		}
		switch c.Type {
		case enum.CampaignTypePointsMultiplier:
			if best == nil || c.Multiplier.GreaterThan(best.Multiplier) {
				best = c
			}
		case enum.CampaignTypeBonusPoints:
			award.BonusPoints += c.BonusPoints
			award.Campaigns = append(award.Campaigns, c.ID)
			if award.CampaignID == nil {
				id := c.ID
				award.CampaignID = &id
			}
		}
	}

	points := decimal.NewFromInt(award.BasePoints)
	if best != nil {
		award.Multiplier = best.Multiplier
		points = points.Mul(best.Multiplier).Floor()
		id := best.ID
		award.CampaignID = &id
		award.Campaigns = append([]uuid.UUID{best.ID}, award.Campaigns...)
	}
	award.Points = points.IntPart() + award.BonusPoints
	return award
}

// CouponQuote is the discount a coupon gives on a subtotal
type CouponQuote struct {
	Coupon   *entity.Coupon  `json:"coupon"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// couponDiscount runs the coupon through a pricing state with the subtotal as
// base price, then caps the amount at MaxDiscount
func couponDiscount(coupon *entity.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	state := pricing.New(subtotal,
		pricing.WithMode(coupon.DiscountMode),
		pricing.WithDiscountEnabled(true),
	)
	state.SetDiscountValue(coupon.DiscountValue)
	if coupon.MaxDiscount != nil && state.DiscountAmount().GreaterThan(*coupon.MaxDiscount) {
		state.SetFinalPrice(state.BasePrice().Sub(*coupon.MaxDiscount))
	}
	return state.DiscountAmount()
}

// quoteCoupon checks every rule of a coupon for an order and prices it
func quoteCoupon(ctx context.Context, redemptions repository.CouponRepository, coupon *entity.Coupon, facts OrderFacts, extra condition.Facts, now time.Time) (*CouponQuote, error) {
	if !coupon.Active {
		return nil, apperror.NewRejection(ReasonCouponInactive, "Coupon is not active")
	}
	switch clock.InWindow(now, coupon.StartsAt, coupon.EndsAt) {
	case clock.WindowNotStarted:
		return nil, apperror.NewRejection(ReasonCouponNotStarted, "Coupon is not valid yet")
	case clock.WindowEnded:
		return nil, apperror.NewRejection(ReasonCouponExpired, "Coupon has expired")
	}
	if coupon.Exhausted() {
		return nil, apperror.NewRejection(ReasonCouponExhausted, "Coupon usage limit reached")
	}
	if coupon.MinSubtotal != nil && facts.Subtotal.LessThan(*coupon.MinSubtotal) {
		return nil, apperror.NewRejection(ReasonBelowMinimum, "Order subtotal is below the coupon minimum of "+coupon.MinSubtotal.StringFixed(2))
	}
	if coupon.PerCustomerLimit != nil && facts.Customer != nil {
		used, err := redemptions.CountRedemptions(ctx, coupon.ID, facts.Customer.ID)
		if err != nil {
			return nil, err
		}
		if used >= int64(*coupon.PerCustomerLimit) {
			return nil, apperror.NewRejection(ReasonCouponCustomerLimit, "Customer already used this coupon the maximum number of times")
		}
	}
	if !matches(coupon.Conditions, mergeFacts(extra, facts.Facts()), "coupon_id", coupon.ID) {
		return nil, apperror.NewRejection(ReasonConditionsNotMet, "Order does not meet the coupon conditions")
	}

	discount := couponDiscount(coupon, facts.Subtotal)
	return &CouponQuote{
		Coupon:   coupon,
		Subtotal: facts.Subtotal,
		Discount: discount,
		Total:    facts.Subtotal.Sub(discount),
	}, nil
}

// rejection reports whether err is a business rule refusal with reason
func rejection(err error, reason string) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Reason == reason
}
