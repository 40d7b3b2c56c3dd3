package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"github.com/sangkips/storefront-admin/pkg/pricing"
	"github.com/sangkips/storefront-admin/pkg/utils"
	"github.com/shopspring/decimal"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo      repository.ProductRepository
	categoryRepo     repository.CategoryRepository
	priceHistoryRepo repository.PriceHistoryRepository
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	priceHistoryRepo repository.PriceHistoryRepository,
) *ProductService {
	return &ProductService{
		productRepo:      productRepo,
		categoryRepo:     categoryRepo,
		priceHistoryRepo: priceHistoryRepo,
	}
}

// PricingInput is the pricing block of a product form. Either DiscountValue
// or FinalPrice drives the discount; FinalPrice wins when both are set.
type PricingInput struct {
	BasePrice       decimal.Decimal
	DiscountEnabled bool
	DiscountMode    pricing.Mode
	DiscountValue   *decimal.Decimal
	FinalPrice      *decimal.Decimal
}

// State runs the block through a pricing state
func (in *PricingInput) State() *pricing.State {
	state := pricing.New(in.BasePrice,
		pricing.WithMode(pricing.ParseMode(string(in.DiscountMode))),
		pricing.WithDiscountEnabled(in.DiscountEnabled),
	)
	switch {
	case in.FinalPrice != nil:
		state.SetFinalPrice(*in.FinalPrice)
	case in.DiscountValue != nil:
		state.SetDiscountValue(*in.DiscountValue)
	}
	return state
}

// ProductResult is a saved product with the advisory messages produced while
// reconciling its pricing block
type ProductResult struct {
	Product  *entity.Product
	Warnings []string
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	UserID        uuid.UUID
	CategoryID    *uuid.UUID
	Name          string
	Code          string
	Description   *string
	Quantity      int
	QuantityAlert int
	Pricing       PricingInput
	CostPrice     decimal.Decimal
	TaxType       enum.TaxType
	Status        *enum.ProductStatus
	ImageURL      *string
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*ProductResult, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(input.Code)
	if code == "" {
		code = utils.GenerateProductCode()
	}
	existingProduct, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existingProduct != nil {
		return nil, apperror.NewConflictError("Product code already exists")
	}

	slug, err := s.uniqueSlug(ctx, input.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}

	status := enum.ProductStatusActive
	if input.Status != nil {
		status = *input.Status
	}

	product := &entity.Product{
		TenantID:      tenantID,
		UserID:        input.UserID,
		CategoryID:    input.CategoryID,
		Name:          input.Name,
		Slug:          slug,
		Code:          code,
		Description:   input.Description,
		Quantity:      input.Quantity,
		QuantityAlert: input.QuantityAlert,
		CostPrice:     input.CostPrice.Round(2),
		TaxType:       input.TaxType,
		Status:        status,
		ImageURL:      input.ImageURL,
	}

	state := input.Pricing.State()
	product.ApplyEmission(state.Emission())

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	saved, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: saved, Warnings: state.Warnings()}, nil
}

// GetProduct retrieves a product by slug
func (s *ProductService) GetProduct(ctx context.Context, slug string) (*entity.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.Result[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.Default()
	}
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(products, params.Pagination, total), nil
}

// UpdateProductInput represents the update product input. Nil fields are
// left unchanged.
type UpdateProductInput struct {
	UserID        uuid.UUID
	ProductSlug   string
	CategoryID    *uuid.UUID
	Name          *string
	Code          *string
	Description   *string
	Quantity      *int
	QuantityAlert *int
	Pricing       *PricingInput
	CostPrice     *decimal.Decimal
	TaxType       *enum.TaxType
	Status        *enum.ProductStatus
	ImageURL      *string
}

// UpdateProduct updates a product and records a price history entry when the
// price pair changed
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*ProductResult, error) {
	product, err := s.GetProduct(ctx, input.ProductSlug)
	if err != nil {
		return nil, err
	}

	if input.Code != nil && *input.Code != product.Code {
		existingProduct, err := s.productRepo.GetByCode(ctx, *input.Code)
		if err != nil {
			return nil, err
		}
		if existingProduct != nil && existingProduct.ID != product.ID {
			return nil, apperror.NewConflictError("Product code already exists")
		}
		product.Code = *input.Code
	}

	if input.CategoryID != nil {
		if err := s.checkCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = input.CategoryID
		product.Category = nil
	}
	if input.Name != nil && *input.Name != product.Name {
		slug, err := s.uniqueSlug(ctx, *input.Name, product.ID)
		if err != nil {
			return nil, err
		}
		product.Name = *input.Name
		product.Slug = slug
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.QuantityAlert != nil {
		product.QuantityAlert = *input.QuantityAlert
	}
	if input.CostPrice != nil {
		product.CostPrice = input.CostPrice.Round(2)
	}
	if input.TaxType != nil {
		product.TaxType = *input.TaxType
	}
	if input.Status != nil {
		product.Status = *input.Status
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}

	oldPrice := product.Price
	oldCompareAt := product.CompareAtPrice
	var warnings []string
	if input.Pricing != nil {
		state := input.Pricing.State()
		product.ApplyEmission(state.Emission())
		warnings = state.Warnings()
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	if entity.PriceChanged(oldPrice, oldCompareAt, product) {
		s.recordPriceChange(ctx, product, input.UserID, oldPrice, oldCompareAt, entity.PriceSourceManual)
	}

	saved, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: saved, Warnings: warnings}, nil
}

func (s *ProductService) recordPriceChange(ctx context.Context, product *entity.Product, userID uuid.UUID, oldPrice decimal.Decimal, oldCompareAt *decimal.Decimal, source string) {
	entry := &entity.PriceHistory{
		TenantID:          product.TenantID,
		ProductID:         product.ID,
		UserID:            userID,
		OldPrice:          oldPrice,
		NewPrice:          product.Price,
		OldCompareAtPrice: oldCompareAt,
		NewCompareAtPrice: product.CompareAtPrice,
		Source:            source,
	}
	if err := s.priceHistoryRepo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to record price history")
	}
}

// DeleteProduct deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, slug string) error {
	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, product.ID)
}

// GetPricing reopens the stored price pair of a product as an editor state
func (s *ProductService) GetPricing(ctx context.Context, slug string) (*pricing.Snapshot, error) {
	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	snap := product.PricingState().Snapshot()
	return &snap, nil
}

// PriceHistory lists the price changes of a product, newest first
func (s *ProductService) PriceHistory(ctx context.Context, slug string, params *pagination.Params) (*pagination.Result[entity.PriceHistory], error) {
	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	entries, total, err := s.priceHistoryRepo.ListByProduct(ctx, product.ID, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(entries, params, total), nil
}

// PreviewInput is a sequence of editor mutations replayed on a fresh state
type PreviewInput struct {
	BasePrice decimal.Decimal
	Mode      pricing.Mode
	Enabled   bool
	Edits     []pricing.Edit
}

// PreviewResult is the outcome of a pricing preview
type PreviewResult struct {
	State     pricing.Snapshot `json:"state"`
	Emission  pricing.Emission `json:"emission"`
	Emissions int              `json:"emissions"`
	Warnings  []string         `json:"warnings"`
}

// Preview replays edits without touching storage. Warnings of every edit are
// collected in order, without duplicates.
func (s *ProductService) Preview(input *PreviewInput) (*PreviewResult, error) {
	emissions := 0
	state := pricing.New(input.BasePrice,
		pricing.WithMode(pricing.ParseMode(string(input.Mode))),
		pricing.WithDiscountEnabled(input.Enabled),
		pricing.WithOnChange(func(pricing.Emission) { emissions++ }),
	)

	warnings := []string{}
	seen := map[string]bool{}
	for i, edit := range input.Edits {
		if err := state.Apply(edit); err != nil {
			if errors.Is(err, pricing.ErrUnknownOp) {
				return nil, apperror.NewValidationError([]apperror.FieldError{
					{Field: fmt.Sprintf("edits[%d].op", i), Message: err.Error()},
				})
			}
			return nil, err
		}
		for _, w := range state.Warnings() {
			if !seen[w] {
				seen[w] = true
				warnings = append(warnings, w)
			}
		}
	}

	return &PreviewResult{
		State:     state.Snapshot(),
		Emission:  state.Emission(),
		Emissions: emissions,
		Warnings:  warnings,
	}, nil
}

// GetLowStockProducts returns products at or below their alert quantity
func (s *ProductService) GetLowStockProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}

func (s *ProductService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	category, err := s.categoryRepo.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if category == nil {
		return apperror.NewNotFoundError("Category")
	}
	return nil
}

// uniqueSlug slugifies name and appends a short suffix when another product
// of the tenant already uses the slug
func (s *ProductService) uniqueSlug(ctx context.Context, name string, self uuid.UUID) (string, error) {
	slug := utils.Slugify(name)
	if slug == "" {
		slug = "product"
	}
	existing, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	if existing == nil || existing.ID == self {
		return slug, nil
	}
	return slug + "-" + utils.GenerateToken()[:6], nil
}
