package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type productFixture struct {
	tenantID uuid.UUID
	products *stubProducts
	history  *stubPriceHistory
	service  *ProductService
}

func newProductFixture(products ...entity.Product) *productFixture {
	f := &productFixture{
		tenantID: uuid.New(),
		products: newStubProducts(products...),
		history:  &stubPriceHistory{},
	}
	f.service = NewProductService(f.products, nil, f.history)
	return f
}

func TestPricingInputState(t *testing.T) {
	tests := []struct {
		name      string
		input     PricingInput
		price     string
		compareAt string
	}{
		{
			name:  "discount off keeps the base",
			input: PricingInput{BasePrice: dec("100"), DiscountMode: pricing.ModePercentage, DiscountValue: decPtr("10")},
			price: "100",
		},
		{
			name:      "percentage",
			input:     PricingInput{BasePrice: dec("100"), DiscountEnabled: true, DiscountMode: pricing.ModePercentage, DiscountValue: decPtr("10")},
			price:     "90",
			compareAt: "100",
		},
		{
			name:      "fixed",
			input:     PricingInput{BasePrice: dec("100"), DiscountEnabled: true, DiscountMode: pricing.ModeFixed, DiscountValue: decPtr("15")},
			price:     "85",
			compareAt: "100",
		},
		{
			name: "final price wins over discount value",
			input: PricingInput{
				BasePrice:       dec("100"),
				DiscountEnabled: true,
				DiscountMode:    pricing.ModePercentage,
				DiscountValue:   decPtr("10"),
				FinalPrice:      decPtr("80"),
			},
			price:     "80",
			compareAt: "100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.input.State().Emission()
			assert.True(t, dec(tt.price).Equal(got.Price), "price %s", got.Price)
			if tt.compareAt == "" {
				assert.Nil(t, got.CompareAtPrice)
				return
			}
			require.NotNil(t, got.CompareAtPrice)
			assert.True(t, dec(tt.compareAt).Equal(*got.CompareAtPrice), "compare at %s", got.CompareAtPrice)
		})
	}
}

func TestCreateProduct(t *testing.T) {
	t.Run("stores the emitted price pair", func(t *testing.T) {
		f := newProductFixture()
		res, err := f.service.CreateProduct(tenantCtx(f.tenantID), &CreateProductInput{
			Name: "Blue Mug",
			Pricing: PricingInput{
				BasePrice:       dec("100"),
				DiscountEnabled: true,
				DiscountMode:    pricing.ModePercentage,
				DiscountValue:   decPtr("25"),
			},
		})
		require.NoError(t, err)

		p := res.Product
		assert.Equal(t, f.tenantID, p.TenantID)
		assert.Equal(t, "blue-mug", p.Slug)
		assert.True(t, strings.HasPrefix(p.Code, "PROD-"))
		assert.True(t, dec("75").Equal(p.Price))
		require.NotNil(t, p.CompareAtPrice)
		assert.True(t, dec("100").Equal(*p.CompareAtPrice))
		assert.Empty(t, res.Warnings)
		assert.Empty(t, f.history.entries)
	})

	t.Run("final price above base is capped with a warning", func(t *testing.T) {
		f := newProductFixture()
		res, err := f.service.CreateProduct(tenantCtx(f.tenantID), &CreateProductInput{
			Name: "Red Mug",
			Pricing: PricingInput{
				BasePrice:       dec("40"),
				DiscountEnabled: true,
				FinalPrice:      decPtr("55"),
			},
		})
		require.NoError(t, err)
		assert.True(t, dec("40").Equal(res.Product.Price))
		assert.Equal(t, []string{pricing.WarnFinalAboveBase}, res.Warnings)
	})

	t.Run("duplicate code", func(t *testing.T) {
		f := newProductFixture(entity.Product{ID: uuid.New(), Code: "MUG-1", Slug: "mug"})
		_, err := f.service.CreateProduct(tenantCtx(f.tenantID), &CreateProductInput{Name: "Mug", Code: " MUG-1 "})
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)
	})

	t.Run("needs a tenant", func(t *testing.T) {
		f := newProductFixture()
		_, err := f.service.CreateProduct(context.Background(), &CreateProductInput{Name: "Mug"})
		assert.ErrorIs(t, err, apperror.ErrTenantRequired)
		assert.Empty(t, f.products.products)
	})
}

func TestUpdateProductPriceHistory(t *testing.T) {
	userID := uuid.New()
	existing := entity.Product{ID: uuid.New(), Name: "Mug", Slug: "mug", Code: "MUG-1", Price: dec("50")}

	t.Run("price change is recorded", func(t *testing.T) {
		f := newProductFixture(existing)
		res, err := f.service.UpdateProduct(tenantCtx(f.tenantID), &UpdateProductInput{
			UserID:      userID,
			ProductSlug: "mug",
			Pricing: &PricingInput{
				BasePrice:       dec("50"),
				DiscountEnabled: true,
				DiscountMode:    pricing.ModeFixed,
				DiscountValue:   decPtr("5"),
			},
		})
		require.NoError(t, err)
		assert.True(t, dec("45").Equal(res.Product.Price))

		require.Len(t, f.history.entries, 1)
		h := f.history.entries[0]
		assert.Equal(t, existing.ID, h.ProductID)
		assert.Equal(t, userID, h.UserID)
		assert.Equal(t, entity.PriceSourceManual, h.Source)
		assert.True(t, dec("50").Equal(h.OldPrice))
		assert.True(t, dec("45").Equal(h.NewPrice))
		assert.Nil(t, h.OldCompareAtPrice)
		require.NotNil(t, h.NewCompareAtPrice)
		assert.True(t, dec("50").Equal(*h.NewCompareAtPrice))
	})

	t.Run("same price pair records nothing", func(t *testing.T) {
		f := newProductFixture(existing)
		qty := 7
		_, err := f.service.UpdateProduct(tenantCtx(f.tenantID), &UpdateProductInput{
			ProductSlug: "mug",
			Quantity:    &qty,
			Pricing:     &PricingInput{BasePrice: dec("50.00")},
		})
		require.NoError(t, err)
		assert.Empty(t, f.history.entries)
		assert.Equal(t, 7, f.products.products[existing.ID].Quantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newProductFixture()
		_, err := f.service.UpdateProduct(tenantCtx(f.tenantID), &UpdateProductInput{ProductSlug: "nope"})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
	})
}

func TestGetPricing(t *testing.T) {
	f := newProductFixture(entity.Product{ID: uuid.New(), Slug: "mug", Price: dec("45"), CompareAtPrice: decPtr("50")})

	snap, err := f.service.GetPricing(tenantCtx(f.tenantID), "mug")
	require.NoError(t, err)
	assert.True(t, snap.DiscountEnabled)
	assert.Equal(t, pricing.ModePercentage, snap.DiscountMode)
	assert.True(t, dec("50").Equal(snap.BasePrice))
	assert.True(t, dec("10").Equal(snap.DiscountValue))
	assert.True(t, dec("45").Equal(snap.FinalPrice))

	_, err = f.service.GetPricing(tenantCtx(f.tenantID), "nope")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestPreview(t *testing.T) {
	svc := NewProductService(nil, nil, nil)
	edit := func(op pricing.Op, v string) pricing.Edit {
		return pricing.Edit{Op: op, Value: pricing.NewInput(dec(v))}
	}

	t.Run("replays edits in order", func(t *testing.T) {
		res, err := svc.Preview(&PreviewInput{
			BasePrice: dec("100"),
			Mode:      pricing.ModePercentage,
			Enabled:   true,
			Edits: []pricing.Edit{
				edit(pricing.OpSetDiscountValue, "150"),
				edit(pricing.OpSetDiscountValue, "150"),
				{Op: pricing.OpSetDiscountMode, Mode: pricing.ModeFixed},
				edit(pricing.OpSetFinalPrice, "120"),
				edit(pricing.OpSetDiscountValue, "25"),
			},
		})
		require.NoError(t, err)

		assert.Equal(t, 5, res.Emissions)
		assert.Equal(t, []string{pricing.WarnPercentageAbove100, pricing.WarnFinalAboveBase}, res.Warnings)
		assert.Equal(t, pricing.ModeFixed, res.State.DiscountMode)
		assert.True(t, dec("25").Equal(res.State.DiscountValue))
		assert.True(t, dec("75").Equal(res.State.FinalPrice))
		assert.True(t, dec("75").Equal(res.Emission.Price))
		require.NotNil(t, res.Emission.CompareAtPrice)
		assert.True(t, dec("100").Equal(*res.Emission.CompareAtPrice))
	})

	t.Run("no edits", func(t *testing.T) {
		res, err := svc.Preview(&PreviewInput{BasePrice: dec("10")})
		require.NoError(t, err)
		assert.Zero(t, res.Emissions)
		assert.NotNil(t, res.Warnings)
		assert.Nil(t, res.Emission.CompareAtPrice)
	})

	t.Run("unknown op", func(t *testing.T) {
		_, err := svc.Preview(&PreviewInput{
			BasePrice: dec("100"),
			Edits:     []pricing.Edit{edit(pricing.OpSetBasePrice, "90"), {Op: "set_tax"}},
		})
		appErr := apperror.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
		require.Len(t, appErr.Errors, 1)
		assert.Equal(t, "edits[1].op", appErr.Errors[0].Field)
	})
}
