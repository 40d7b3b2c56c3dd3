package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer represents a customer in the CRM together with loyalty counters
type Customer struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name             string          `gorm:"size:255;not null" json:"name"`
	Email            *string         `gorm:"size:255;index" json:"email,omitempty"`
	Phone            *string         `gorm:"size:50;index" json:"phone,omitempty"`
	Address          *string         `gorm:"type:text" json:"address,omitempty"`
	Notes            *string         `gorm:"type:text" json:"notes,omitempty"`
	Tags             Tags            `gorm:"type:jsonb" json:"tags"`
	AcceptsMarketing bool            `gorm:"default:false" json:"accepts_marketing"`
	PointsBalance    int64           `gorm:"not null;default:0" json:"points_balance"`
	LifetimePoints   int64           `gorm:"not null;default:0" json:"lifetime_points"`
	TotalOrders      int             `gorm:"not null;default:0" json:"total_orders"`
	TotalSpent       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_spent"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// Tags is a normalised set of lower-case labels stored as a JSON array
type Tags []string

// NormalizeTags trims, lower-cases and de-duplicates tags keeping first-seen order
func NormalizeTags(in []string) Tags {
	out := make(Tags, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Scan implements the sql.Scanner interface for Tags
func (t *Tags) Scan(value interface{}) error {
	if value == nil {
		*t = Tags{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Tags: unsupported type")
	}
	return json.Unmarshal(bytes, t)
}

// Value implements the driver.Valuer interface for Tags
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// PointTransaction is one entry in a customer's points ledger. Points is
// signed; BalanceAfter is the customer's balance once the entry applied.
type PointTransaction struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	TenantID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CustomerID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"customer_id"`
	Points       int64            `gorm:"not null" json:"points"`
	BalanceAfter int64            `gorm:"not null" json:"balance_after"`
	Source       enum.PointSource `gorm:"not null;default:0" json:"source"`
	OrderID      *uuid.UUID       `gorm:"type:uuid;index" json:"order_id,omitempty"`
	EventID      *uuid.UUID       `gorm:"type:uuid;index" json:"event_id,omitempty"`
	CampaignID   *uuid.UUID       `gorm:"type:uuid" json:"campaign_id,omitempty"`
	Reason       string           `gorm:"size:255" json:"reason,omitempty"`
	CreatedBy    *uuid.UUID       `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new ledger entry
func (p *PointTransaction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PointTransaction model
func (PointTransaction) TableName() string {
	return "point_transactions"
}
