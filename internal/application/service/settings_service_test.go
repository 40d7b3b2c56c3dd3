package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	appErr := apperror.GetAppError(err)
	require.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	out := make([]string, 0, len(appErr.Errors))
	for _, f := range appErr.Errors {
		out = append(out, f.Field)
	}
	return out
}

func TestUpdateSettings(t *testing.T) {
	repo := &stubSettings{settings: entity.DefaultTenantSettings()}
	svc := NewSettingsService(repo)
	ctx := tenantCtx(uuid.New())

	rate := dec("8")
	currency := " usd "
	off := false
	got, err := svc.UpdateSettings(ctx, &UpdateSettingsInput{
		TaxRate:        &rate,
		Currency:       &currency,
		LoyaltyEnabled: &off,
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", got.Currency)
	assert.True(t, rate.Equal(got.TaxRate))
	assert.False(t, got.Loyalty.Enabled)
	assert.Equal(t, "Africa/Nairobi", got.Timezone)

	badRate := dec("120")
	badZone := "Mars/Olympus"
	negative := dec("-1")
	_, err = svc.UpdateSettings(ctx, &UpdateSettingsInput{
		TaxRate:               &badRate,
		Timezone:              &badZone,
		PointsPerCurrencyUnit: &negative,
	})
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"tax_rate", "timezone", "loyalty.points_per_currency_unit"}, fieldNames(t, err))
	assert.Equal(t, "USD", repo.settings.Currency)

	_, err = svc.UpdateSettings(context.Background(), &UpdateSettingsInput{})
	assert.ErrorIs(t, err, apperror.ErrTenantRequired)
}

func TestUpdatePaymentMethods(t *testing.T) {
	const secret = "sk_live_abcd1234"

	newService := func() (*SettingsService, *stubSettings) {
		settings := entity.DefaultTenantSettings()
		settings.Stripe = &entity.StripeIntegration{PublishableKey: "pk_old", SecretKey: secret, WebhookSecret: "whsec_9876"}
		repo := &stubSettings{settings: settings}
		return NewSettingsService(repo), repo
	}

	t.Run("masked secrets keep the stored value", func(t *testing.T) {
		svc, repo := newService()
		out, err := svc.UpdatePaymentMethods(tenantCtx(uuid.New()), &PaymentSettings{
			Methods: []entity.PaymentMethodSetting{
				{Method: enum.PaymentMethodCash, Enabled: true},
				{Method: enum.PaymentMethodStripe, Enabled: true},
			},
			Stripe: &entity.StripeIntegration{PublishableKey: "pk_new", SecretKey: entity.MaskSecret(secret)},
		})
		require.NoError(t, err)

		assert.Equal(t, secret, repo.settings.Stripe.SecretKey)
		assert.Equal(t, "whsec_9876", repo.settings.Stripe.WebhookSecret)
		assert.Equal(t, "pk_new", repo.settings.Stripe.PublishableKey)
		assert.True(t, entity.IsMaskedSecret(out.Stripe.SecretKey))
		assert.True(t, repo.settings.IsPaymentMethodEnabled(enum.PaymentMethodStripe))
		assert.Len(t, out.Methods, len(enum.PaymentMethods()))
	})

	t.Run("provider without credentials", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.UpdatePaymentMethods(tenantCtx(uuid.New()), &PaymentSettings{
			Methods: []entity.PaymentMethodSetting{
				{Method: enum.PaymentMethodMpesa, Enabled: true},
				{Method: enum.PaymentMethodMpesa, Enabled: false},
			},
		})
		require.Error(t, err)
		assert.Equal(t, []string{"methods[0].enabled", "methods[1].method"}, fieldNames(t, err))
	})

	t.Run("at least one method", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.UpdatePaymentMethods(tenantCtx(uuid.New()), &PaymentSettings{
			Methods: []entity.PaymentMethodSetting{{Method: enum.PaymentMethodCash, Enabled: false}},
		})
		require.Error(t, err)
		assert.Equal(t, []string{"methods"}, fieldNames(t, err))
	})
}

func TestGetSettingsMasksSecrets(t *testing.T) {
	settings := entity.DefaultTenantSettings()
	settings.Paystack = &entity.PaystackIntegration{PublicKey: "pk", SecretKey: "sk_test_secretvalue"}
	svc := NewSettingsService(&stubSettings{settings: settings})

	got, err := svc.GetSettings(tenantCtx(uuid.New()))
	require.NoError(t, err)
	assert.NotEqual(t, "sk_test_secretvalue", got.Paystack.SecretKey)
	assert.Equal(t, "pk", got.Paystack.PublicKey)
}
