package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tenant represents a store in the multitenant system
type Tenant struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Slug      string         `gorm:"size:255;unique;not null" json:"slug"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Settings  TenantSettings `gorm:"type:jsonb" json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Owner   User               `gorm:"foreignKey:OwnerID" json:"-"`
	Members []TenantMembership `gorm:"foreignKey:TenantID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new tenant
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Tenant model
func (Tenant) TableName() string {
	return "tenants"
}

// Membership roles
const (
	MemberRoleOwner  = "owner"
	MemberRoleAdmin  = "admin"
	MemberRoleMember = "member"
)

// MemberUser represents a subset of user fields for membership responses
type MemberUser struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

// TenantMembership represents a user's membership in a tenant
type TenantMembership struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role      string    `gorm:"size:50;default:'member'" json:"role"`
	CreatedAt time.Time `json:"created_at"`

	Tenant Tenant `gorm:"foreignKey:TenantID" json:"-"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	MemberUser *MemberUser `gorm:"-" json:"user,omitempty"`
}

// PopulateUserDetails populates the MemberUser field from the User relationship
func (tm *TenantMembership) PopulateUserDetails() {
	if tm.User.ID != uuid.Nil {
		tm.MemberUser = &MemberUser{
			ID:        tm.User.ID,
			FirstName: tm.User.FirstName,
			LastName:  tm.User.LastName,
			Email:     tm.User.Email,
		}
	}
}

// TableName returns the table name for the TenantMembership model
func (TenantMembership) TableName() string {
	return "tenant_memberships"
}

// ValidMemberRole reports whether role can be granted through the members API
func ValidMemberRole(role string) bool {
	return role == MemberRoleAdmin || role == MemberRoleMember
}

// TenantSettings holds all customizable tenant configuration
type TenantSettings struct {
	// Branding
	LogoURL      string `json:"logo_url,omitempty"`
	PrimaryColor string `json:"primary_color,omitempty"`

	// Localization
	Currency   string `json:"currency,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
	Locale     string `json:"locale,omitempty"`
	DateFormat string `json:"date_format,omitempty"`

	// Business
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxLabel      string          `json:"tax_label,omitempty"`
	InvoicePrefix string          `json:"invoice_prefix,omitempty"`

	Loyalty LoyaltySettings `json:"loyalty"`

	// Payments
	PaymentMethods []PaymentMethodSetting `json:"payment_methods,omitempty"`
	Mpesa          *MpesaIntegration      `json:"mpesa,omitempty"`
	Stripe         *StripeIntegration     `json:"stripe,omitempty"`
	Paystack       *PaystackIntegration   `json:"paystack,omitempty"`

	// Notifications
	EmailNotifications bool   `json:"email_notifications"`
	SMSNotifications   bool   `json:"sms_notifications"`
	LowStockAlerts     bool   `json:"low_stock_alerts"`
	WebhookURL         string `json:"webhook_url,omitempty"`
}

// LoyaltySettings controls how many points a completed order earns
type LoyaltySettings struct {
	Enabled               bool            `json:"enabled"`
	PointsPerCurrencyUnit decimal.Decimal `json:"points_per_currency_unit"`
}

// Scan implements the sql.Scanner interface for TenantSettings
func (ts *TenantSettings) Scan(value interface{}) error {
	if value == nil {
		*ts = TenantSettings{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan TenantSettings: unsupported type")
	}

	return json.Unmarshal(bytes, ts)
}

// Value implements the driver.Valuer interface for TenantSettings
func (ts TenantSettings) Value() (driver.Value, error) {
	data, err := json.Marshal(ts)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// DefaultTenantSettings returns default settings for new tenants
func DefaultTenantSettings() TenantSettings {
	return TenantSettings{
		Currency:       "KES",
		Timezone:       "Africa/Nairobi",
		Locale:         "en-KE",
		DateFormat:     "DD/MM/YYYY",
		TaxRate:        decimal.NewFromInt(16),
		TaxLabel:       "VAT",
		InvoicePrefix:  "INV-",
		PaymentMethods: DefaultPaymentMethods(),
		Loyalty: LoyaltySettings{
			Enabled:               true,
			PointsPerCurrencyUnit: decimal.NewFromInt(1),
		},
		EmailNotifications: true,
		LowStockAlerts:     true,
	}
}
