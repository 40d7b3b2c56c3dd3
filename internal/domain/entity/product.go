package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/pkg/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a sellable catalog item
type Product struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID       uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_slug;uniqueIndex:idx_products_tenant_code" json:"tenant_id"`
	UserID         uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID     *uuid.UUID         `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name           string             `gorm:"size:255;not null" json:"name"`
	Slug           string             `gorm:"size:255;not null;uniqueIndex:idx_products_tenant_slug" json:"slug"`
	Code           string             `gorm:"size:100;not null;uniqueIndex:idx_products_tenant_code" json:"code"`
	Description    *string            `gorm:"type:text" json:"description,omitempty"`
	Quantity       int                `gorm:"default:0" json:"quantity"`
	QuantityAlert  int                `gorm:"default:0" json:"quantity_alert"`
	Price          decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	CompareAtPrice *decimal.Decimal   `gorm:"type:decimal(12,2)" json:"compare_at_price,omitempty"`
	CostPrice      decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"cost_price"`
	TaxType        enum.TaxType       `gorm:"default:0" json:"tax_type"`
	Status         enum.ProductStatus `gorm:"default:0;index" json:"status"`
	ImageURL       *string            `gorm:"size:255" json:"image_url,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// PricingState reopens the stored price pair as an editable pricing state
func (p *Product) PricingState(opts ...pricing.Option) *pricing.State {
	return pricing.FromPersisted(p.Price, p.CompareAtPrice, opts...)
}

// ApplyEmission stores the flattened output of a pricing state
func (p *Product) ApplyEmission(e pricing.Emission) {
	p.Price = e.Price
	if e.CompareAtPrice == nil {
		p.CompareAtPrice = nil
		return
	}
	v := *e.CompareAtPrice
	p.CompareAtPrice = &v
}

// OnSale reports whether the product shows a compare-at price
func (p *Product) OnSale() bool {
	return p.CompareAtPrice != nil && p.CompareAtPrice.GreaterThan(p.Price)
}

// IsLowStock reports whether stock is at or below the alert level
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.QuantityAlert
}

// Category represents a product category
type Category struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_categories_tenant_slug" json:"tenant_id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Slug      string         `gorm:"size:255;not null;uniqueIndex:idx_categories_tenant_slug" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// PriceHistory records one change of a product's price pair
type PriceHistory struct {
	ID                uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	TenantID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProductID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_id"`
	UserID            uuid.UUID        `gorm:"type:uuid;not null" json:"user_id"`
	OldPrice          decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"old_price"`
	NewPrice          decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"new_price"`
	OldCompareAtPrice *decimal.Decimal `gorm:"type:decimal(12,2)" json:"old_compare_at_price,omitempty"`
	NewCompareAtPrice *decimal.Decimal `gorm:"type:decimal(12,2)" json:"new_compare_at_price,omitempty"`
	Source            string           `gorm:"size:50;not null;default:'manual'" json:"source"`
	CreatedAt         time.Time        `gorm:"index" json:"created_at"`
}

// Price change sources
const (
	PriceSourceManual = "manual"
	PriceSourceImport = "import"
)

// BeforeCreate generates a UUID before creating a new history row
func (h *PriceHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PriceHistory model
func (PriceHistory) TableName() string {
	return "product_price_history"
}

// PriceChanged reports whether the price pair of before and after differ
func PriceChanged(beforePrice decimal.Decimal, beforeCompare *decimal.Decimal, after *Product) bool {
	if !beforePrice.Equal(after.Price) {
		return true
	}
	switch {
	case beforeCompare == nil && after.CompareAtPrice == nil:
		return false
	case beforeCompare == nil || after.CompareAtPrice == nil:
		return true
	default:
		return !beforeCompare.Equal(*after.CompareAtPrice)
	}
}
