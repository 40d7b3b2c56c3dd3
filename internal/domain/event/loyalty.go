package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names a loyalty event on the stream
type Type string

const (
	PointsEarned   Type = "points.earned"
	PointsReversed Type = "points.reversed"
	PointsAdjusted Type = "points.adjusted"
	EventClaimed   Type = "event.claimed"
	CouponRedeemed Type = "coupon.redeemed"
)

// LoyaltyEvent is published whenever a customer's points or coupon usage moves
type LoyaltyEvent struct {
	ID         uuid.UUID  `json:"id"`
	Type       Type       `json:"type"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	OrderID    *uuid.UUID `json:"order_id,omitempty"`
	CampaignID *uuid.UUID `json:"campaign_id,omitempty"`
	CouponID   *uuid.UUID `json:"coupon_id,omitempty"`
	EventID    *uuid.UUID `json:"event_id,omitempty"`
	Points     int64      `json:"points"`
	Balance    int64      `json:"balance"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Publisher delivers loyalty events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, events ...LoyaltyEvent) error
}
