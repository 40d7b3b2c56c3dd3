package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/sangkips/storefront-admin/pkg/condition"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Campaign is a loyalty promotion that boosts the points earned by orders
// matching its conditions.
type Campaign struct {
	ID          uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID           `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name        string              `gorm:"size:255;not null" json:"name"`
	Description *string             `gorm:"type:text" json:"description,omitempty"`
	Type        enum.CampaignType   `gorm:"not null;default:0" json:"type"`
	Status      enum.CampaignStatus `gorm:"not null;default:0;index" json:"status"`
	Multiplier  decimal.Decimal     `gorm:"type:decimal(6,2);not null;default:1" json:"multiplier"`
	BonusPoints int64               `gorm:"not null;default:0" json:"bonus_points"`
	Priority    int                 `gorm:"not null;default:0" json:"priority"`
	StartsAt    *time.Time          `json:"starts_at,omitempty"`
	EndsAt      *time.Time          `json:"ends_at,omitempty"`
	Conditions  condition.Tree      `gorm:"type:jsonb" json:"conditions"`
	CreatedBy   uuid.UUID           `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	DeletedAt   gorm.DeletedAt      `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new campaign
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Campaign model
func (Campaign) TableName() string {
	return "campaigns"
}

// IsRunning reports whether the campaign is active and inside its window at now
func (c *Campaign) IsRunning(now time.Time) bool {
	return c.Status == enum.CampaignStatusActive &&
		clock.InWindow(now, c.StartsAt, c.EndsAt) == clock.WindowOpen
}
