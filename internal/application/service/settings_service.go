package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/shopspring/decimal"
)

// SettingsService handles store settings
type SettingsService struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
	}
}

// GetSettings returns the store settings with provider secrets masked
func (s *SettingsService) GetSettings(ctx context.Context) (*entity.TenantSettings, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := loadSettings(ctx, s.settingsRepo, tenantID)
	if err != nil {
		return nil, err
	}
	masked := settings.Masked()
	masked.PaymentMethods = settings.PaymentMethodList()
	return &masked, nil
}

// UpdateSettingsInput holds the general settings; nil fields are left alone
type UpdateSettingsInput struct {
	LogoURL       *string
	PrimaryColor  *string
	Currency      *string
	Timezone      *string
	Locale        *string
	DateFormat    *string
	TaxRate       *decimal.Decimal
	TaxLabel      *string
	InvoicePrefix *string

	LoyaltyEnabled        *bool
	PointsPerCurrencyUnit *decimal.Decimal

	EmailNotifications *bool
	SMSNotifications   *bool
	LowStockAlerts     *bool
	WebhookURL         *string
}

func (in *UpdateSettingsInput) validate() error {
	var fields []apperror.FieldError
	if in.TaxRate != nil && (in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(hundred)) {
		fields = append(fields, apperror.FieldError{Field: "tax_rate", Message: "must be between 0 and 100"})
	}
	if in.PointsPerCurrencyUnit != nil && in.PointsPerCurrencyUnit.IsNegative() {
		fields = append(fields, apperror.FieldError{Field: "loyalty.points_per_currency_unit", Message: "must not be negative"})
	}
	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil {
			fields = append(fields, apperror.FieldError{Field: "timezone", Message: "unknown timezone"})
		}
	}
	if in.Currency != nil && len(strings.TrimSpace(*in.Currency)) != 3 {
		fields = append(fields, apperror.FieldError{Field: "currency", Message: "must be a 3 letter code"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}

// UpdateSettings changes the general settings
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.TenantSettings, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	settings, err := loadSettings(ctx, s.settingsRepo, tenantID)
	if err != nil {
		return nil, err
	}

	setString(&settings.LogoURL, input.LogoURL)
	setString(&settings.PrimaryColor, input.PrimaryColor)
	if input.Currency != nil {
		settings.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}
	setString(&settings.Timezone, input.Timezone)
	setString(&settings.Locale, input.Locale)
	setString(&settings.DateFormat, input.DateFormat)
	if input.TaxRate != nil {
		settings.TaxRate = *input.TaxRate
	}
	setString(&settings.TaxLabel, input.TaxLabel)
	setString(&settings.InvoicePrefix, input.InvoicePrefix)
	if input.LoyaltyEnabled != nil {
		settings.Loyalty.Enabled = *input.LoyaltyEnabled
	}
	if input.PointsPerCurrencyUnit != nil {
		settings.Loyalty.PointsPerCurrencyUnit = *input.PointsPerCurrencyUnit
	}
	setBool(&settings.EmailNotifications, input.EmailNotifications)
	setBool(&settings.SMSNotifications, input.SMSNotifications)
	setBool(&settings.LowStockAlerts, input.LowStockAlerts)
	setString(&settings.WebhookURL, input.WebhookURL)

	if err := s.settingsRepo.Update(ctx, tenantID, settings); err != nil {
		return nil, err
	}
	return s.GetSettings(ctx)
}

// PaymentSettings is the payment part of the store settings
type PaymentSettings struct {
	Methods  []entity.PaymentMethodSetting `json:"methods"`
	Mpesa    *entity.MpesaIntegration      `json:"mpesa,omitempty"`
	Stripe   *entity.StripeIntegration     `json:"stripe,omitempty"`
	Paystack *entity.PaystackIntegration   `json:"paystack,omitempty"`
}

func paymentSettings(settings *entity.TenantSettings) *PaymentSettings {
	masked := settings.Masked()
	return &PaymentSettings{
		Methods:  settings.PaymentMethodList(),
		Mpesa:    masked.Mpesa,
		Stripe:   masked.Stripe,
		Paystack: masked.Paystack,
	}
}

// GetPaymentMethods lists every payment method with its state
func (s *SettingsService) GetPaymentMethods(ctx context.Context) (*PaymentSettings, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := loadSettings(ctx, s.settingsRepo, tenantID)
	if err != nil {
		return nil, err
	}
	return paymentSettings(settings), nil
}

// UpdatePaymentMethods replaces the method list and provider credentials.
// Credentials left out keep their stored value, and so do secrets sent back
// in masked form.
func (s *SettingsService) UpdatePaymentMethods(ctx context.Context, input *PaymentSettings) (*PaymentSettings, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := loadSettings(ctx, s.settingsRepo, tenantID)
	if err != nil {
		return nil, err
	}

	if input.Mpesa != nil {
		m := *input.Mpesa
		if settings.Mpesa != nil {
			keepSecret(&m.ConsumerSecret, settings.Mpesa.ConsumerSecret)
			keepSecret(&m.PassKey, settings.Mpesa.PassKey)
		}
		settings.Mpesa = &m
	}
	if input.Stripe != nil {
		st := *input.Stripe
		if settings.Stripe != nil {
			keepSecret(&st.SecretKey, settings.Stripe.SecretKey)
			keepSecret(&st.WebhookSecret, settings.Stripe.WebhookSecret)
		}
		settings.Stripe = &st
	}
	if input.Paystack != nil {
		p := *input.Paystack
		if settings.Paystack != nil {
			keepSecret(&p.SecretKey, settings.Paystack.SecretKey)
		}
		settings.Paystack = &p
	}

	if input.Methods != nil {
		settings.PaymentMethods = input.Methods
	}
	if err := validatePaymentSettings(settings); err != nil {
		return nil, err
	}

	if err := s.settingsRepo.Update(ctx, tenantID, settings); err != nil {
		return nil, err
	}
	return paymentSettings(settings), nil
}

// validatePaymentSettings rejects duplicate methods and enabled provider
// methods without credentials
func validatePaymentSettings(settings *entity.TenantSettings) error {
	var fields []apperror.FieldError
	seen := make(map[enum.PaymentMethod]bool)
	enabled := 0
	for i, pm := range settings.PaymentMethods {
		field := fmt.Sprintf("methods[%d]", i)
		if seen[pm.Method] {
			fields = append(fields, apperror.FieldError{Field: field + ".method", Message: "listed more than once"})
			continue
		}
		seen[pm.Method] = true
		if !pm.Enabled {
			continue
		}
		enabled++
		if pm.Method.RequiresCredentials() && !hasCredentials(settings, pm.Method) {
			fields = append(fields, apperror.FieldError{Field: field + ".enabled", Message: pm.Method.String() + " credentials are required"})
		}
	}
	if enabled == 0 && len(settings.PaymentMethods) > 0 {
		fields = append(fields, apperror.FieldError{Field: "methods", Message: "at least one method must be enabled"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}

func hasCredentials(settings *entity.TenantSettings, m enum.PaymentMethod) bool {
	switch m {
	case enum.PaymentMethodMpesa:
		c := settings.Mpesa
		return c != nil && c.ConsumerKey != "" && c.ConsumerSecret != "" && c.ShortCode != "" && c.PassKey != ""
	case enum.PaymentMethodStripe:
		return settings.Stripe != nil && settings.Stripe.SecretKey != ""
	case enum.PaymentMethodPaystack:
		return settings.Paystack != nil && settings.Paystack.SecretKey != ""
	}
	return true
}

func keepSecret(dst *string, stored string) {
	if *dst == "" || entity.IsMaskedSecret(*dst) {
		*dst = stored
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
