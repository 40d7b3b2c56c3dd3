package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"gorm.io/gorm"
)

// EarningEvent awards points to customers who scan its QR code or follow its
// link. Token is the public claim secret.
type EarningEvent struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name                 string         `gorm:"size:255;not null" json:"name"`
	Description          *string        `gorm:"type:text" json:"description,omitempty"`
	Type                 enum.EventType `gorm:"not null;default:0" json:"type"`
	Points               int64          `gorm:"not null" json:"points"`
	Token                string         `gorm:"size:64;not null;uniqueIndex" json:"token"`
	MaxClaimsPerCustomer int            `gorm:"not null;default:1" json:"max_claims_per_customer"`
	TotalClaimCap        *int           `json:"total_claim_cap,omitempty"`
	ClaimCount           int            `gorm:"not null;default:0" json:"claim_count"`
	StartsAt             *time.Time     `json:"starts_at,omitempty"`
	EndsAt               *time.Time     `json:"ends_at,omitempty"`
	Active               bool           `gorm:"not null;default:true" json:"active"`
	CreatedBy            uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new event
func (e *EarningEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the EarningEvent model
func (EarningEvent) TableName() string {
	return "earning_events"
}

// CapReached reports whether the event handed out all of its claims
func (e *EarningEvent) CapReached() bool {
	return e.TotalClaimCap != nil && e.ClaimCount >= *e.TotalClaimCap
}

// EventClaim records a customer claiming an earning event
type EventClaim struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TenantID       uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	EventID        uuid.UUID `gorm:"type:uuid;not null;index:idx_event_claims_customer;uniqueIndex:idx_event_claims_key" json:"event_id"`
	CustomerID     uuid.UUID `gorm:"type:uuid;not null;index:idx_event_claims_customer" json:"customer_id"`
	Points         int64     `gorm:"not null" json:"points"`
	IdempotencyKey *string   `gorm:"size:255;uniqueIndex:idx_event_claims_key" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new claim
func (c *EventClaim) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the EventClaim model
func (EventClaim) TableName() string {
	return "event_claims"
}
