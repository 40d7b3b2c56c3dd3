package entity

import (
	"testing"
	"time"

	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/pkg/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProductPricingRoundTrip(t *testing.T) {
	compareAt := dec("100")
	p := &Product{Price: dec("75"), CompareAtPrice: &compareAt}
	assert.True(t, p.OnSale())

	state := p.PricingState()
	assert.True(t, state.DiscountEnabled())
	assert.Equal(t, pricing.ModePercentage, state.Mode())
	assert.True(t, dec("25").Equal(state.DiscountValue()))

	state.SetDiscountEnabled(false)
	p.ApplyEmission(state.Emission())
	assert.True(t, dec("100").Equal(p.Price))
	assert.Nil(t, p.CompareAtPrice)
	assert.False(t, p.OnSale())
}

func TestPriceChanged(t *testing.T) {
	ten := dec("10")
	p := &Product{Price: dec("8"), CompareAtPrice: &ten}

	assert.False(t, PriceChanged(dec("8.00"), &ten, p))
	assert.True(t, PriceChanged(dec("9"), &ten, p))
	assert.True(t, PriceChanged(dec("8"), nil, p))

	p.CompareAtPrice = nil
	assert.False(t, PriceChanged(dec("8"), nil, p))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, Tags{"vip", "wholesale"}, NormalizeTags([]string{" VIP ", "wholesale", "vip", ""}))

	v, err := Tags(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var tags Tags
	require.NoError(t, tags.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, Tags{"a", "b"}, tags)
}

func TestPaymentMethodList(t *testing.T) {
	settings := TenantSettings{PaymentMethods: []PaymentMethodSetting{
		{Method: enum.PaymentMethodMpesa, Enabled: true, SortOrder: -1},
	}}

	list := settings.PaymentMethodList()
	require.Len(t, list, len(enum.PaymentMethods()))
	assert.Equal(t, enum.PaymentMethodMpesa, list[0].Method)
	assert.Equal(t, "M-Pesa", list[0].DisplayName)
	assert.True(t, list[0].Enabled)
	for _, pm := range list[1:] {
		assert.False(t, pm.Enabled, pm.Method.String())
	}

	assert.True(t, settings.IsPaymentMethodEnabled(enum.PaymentMethodMpesa))
	assert.False(t, settings.IsPaymentMethodEnabled(enum.PaymentMethodCash))
	assert.True(t, DefaultTenantSettings().IsPaymentMethodEnabled(enum.PaymentMethodCash))
}

func TestMaskedSettings(t *testing.T) {
	settings := TenantSettings{
		Stripe: &StripeIntegration{PublishableKey: "pk_live_1", SecretKey: "sk_live_abcdef1234", WebhookSecret: "abc"},
	}
	masked := settings.Masked()

	assert.Equal(t, "********1234", masked.Stripe.SecretKey)
	assert.Equal(t, "********", masked.Stripe.WebhookSecret)
	assert.Equal(t, "pk_live_1", masked.Stripe.PublishableKey)
	assert.Equal(t, "sk_live_abcdef1234", settings.Stripe.SecretKey, "original must not change")
	assert.True(t, IsMaskedSecret(masked.Stripe.SecretKey))
	assert.Equal(t, "", MaskSecret(""))
}

func TestTenantSettingsValue(t *testing.T) {
	in := DefaultTenantSettings()
	v, err := in.Value()
	require.NoError(t, err)

	var out TenantSettings
	require.NoError(t, out.Scan(v))
	assert.True(t, in.TaxRate.Equal(out.TaxRate))
	assert.True(t, out.Loyalty.Enabled)
	assert.Len(t, out.PaymentMethods, len(in.PaymentMethods))
}

func TestCampaignIsRunning(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)
	c := &Campaign{Status: enum.CampaignStatusActive, StartsAt: &start, EndsAt: &end}

	assert.True(t, c.IsRunning(now))
	assert.False(t, c.IsRunning(end))
	assert.False(t, c.IsRunning(start.Add(-time.Second)))

	c.Status = enum.CampaignStatusPaused
	assert.False(t, c.IsRunning(now))
}

func TestLimits(t *testing.T) {
	limit := 2
	c := &Coupon{UsageLimit: &limit, UsageCount: 2}
	assert.True(t, c.Exhausted())
	c.UsageLimit = nil
	assert.False(t, c.Exhausted())

	e := &EarningEvent{TotalClaimCap: &limit, ClaimCount: 1}
	assert.False(t, e.CapReached())
}

func TestUserPermissionNames(t *testing.T) {
	u := &User{
		FirstName: "Ada",
		Roles: []Role{
			{Name: "admin", Permissions: []Permission{{Name: "manage-orders"}, {Name: "manage-coupons"}}},
			{Name: "cashier", Permissions: []Permission{{Name: "manage-orders"}}},
		},
	}
	assert.Equal(t, []string{"admin", "cashier"}, u.RoleNames())
	assert.Equal(t, []string{"manage-coupons", "manage-orders"}, u.PermissionNames())
	assert.Equal(t, "Ada", u.FullName())
	assert.Empty(t, (&User{}).PermissionNames())
}

func TestPasswordResetToken(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	tok := &PasswordResetToken{TokenHash: HashResetToken("abc"), ExpiresAt: now.Add(time.Hour)}

	assert.Len(t, tok.TokenHash, 64)
	assert.NotEqual(t, HashResetToken("abd"), tok.TokenHash)
	assert.True(t, tok.IsValid(now))
	assert.False(t, tok.IsValid(now.Add(time.Hour)))

	tok.UsedAt = &now
	assert.False(t, tok.IsValid(now))
}
