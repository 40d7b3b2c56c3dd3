package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/pkg/pricing"
	"github.com/shopspring/decimal"
)

// PricingRequest is the pricing block of a product form. When both are sent,
// final_price wins over discount_value. Amounts are accepted as numbers or
// strings; out of range values are clamped by the pricing state.
type PricingRequest struct {
	BasePrice       pricing.Input  `json:"base_price"`
	DiscountEnabled bool           `json:"discount_enabled"`
	DiscountMode    pricing.Mode   `json:"discount_mode" binding:"omitempty,discount_mode"`
	DiscountValue   *pricing.Input `json:"discount_value"`
	FinalPrice      *pricing.Input `json:"final_price"`
}

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	CategoryID    *uuid.UUID          `json:"category_id"`
	Name          string              `json:"name" binding:"required,min=2,max=255"`
	Code          string              `json:"code" binding:"omitempty,max=100"`
	Description   *string             `json:"description"`
	Quantity      int                 `json:"quantity" binding:"min=0"`
	QuantityAlert int                 `json:"quantity_alert" binding:"min=0"`
	Pricing       PricingRequest      `json:"pricing" binding:"required"`
	CostPrice     decimal.Decimal     `json:"cost_price" binding:"gte=0"`
	TaxType       enum.TaxType        `json:"tax_type"`
	Status        *enum.ProductStatus `json:"status"`
	ImageURL      *string             `json:"image_url" binding:"omitempty,url"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	CategoryID    *uuid.UUID          `json:"category_id"`
	Name          *string             `json:"name" binding:"omitempty,min=2,max=255"`
	Code          *string             `json:"code" binding:"omitempty,min=1,max=100"`
	Description   *string             `json:"description"`
	Quantity      *int                `json:"quantity" binding:"omitempty,min=0"`
	QuantityAlert *int                `json:"quantity_alert" binding:"omitempty,min=0"`
	Pricing       *PricingRequest     `json:"pricing"`
	CostPrice     *decimal.Decimal    `json:"cost_price" binding:"omitempty,gte=0"`
	TaxType       *enum.TaxType       `json:"tax_type"`
	Status        *enum.ProductStatus `json:"status"`
	ImageURL      *string             `json:"image_url" binding:"omitempty,url"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=draft active archived"`
	LowStock   bool   `form:"low_stock"`
	OnSale     bool   `form:"on_sale"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=name price quantity created_at"`
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// PricingPreviewRequest replays editor edits on a fresh pricing state
type PricingPreviewRequest struct {
	BasePrice pricing.Input  `json:"base_price"`
	Mode      pricing.Mode   `json:"discount_mode" binding:"omitempty,discount_mode"`
	Enabled   bool           `json:"discount_enabled"`
	Edits     []pricing.Edit `json:"edits" binding:"max=200"`
}

// CategoryRequest creates or renames a category
type CategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
}
