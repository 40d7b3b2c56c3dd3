package request

import (
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LoyaltySettingsRequest is the loyalty part of the settings form
type LoyaltySettingsRequest struct {
	Enabled               *bool            `json:"enabled"`
	PointsPerCurrencyUnit *decimal.Decimal `json:"points_per_currency_unit" binding:"omitempty,gte=0"`
}

// UpdateSettingsRequest changes the general store settings
type UpdateSettingsRequest struct {
	LogoURL       *string                 `json:"logo_url" binding:"omitempty,url"`
	PrimaryColor  *string                 `json:"primary_color" binding:"omitempty,hexcolor"`
	Currency      *string                 `json:"currency" binding:"omitempty,len=3"`
	Timezone      *string                 `json:"timezone"`
	Locale        *string                 `json:"locale" binding:"omitempty,max=20"`
	DateFormat    *string                 `json:"date_format" binding:"omitempty,max=20"`
	TaxRate       *decimal.Decimal        `json:"tax_rate" binding:"omitempty,gte=0,lte=100"`
	TaxLabel      *string                 `json:"tax_label" binding:"omitempty,max=20"`
	InvoicePrefix *string                 `json:"invoice_prefix" binding:"omitempty,max=10"`
	Loyalty       *LoyaltySettingsRequest `json:"loyalty"`

	EmailNotifications *bool   `json:"email_notifications"`
	SMSNotifications   *bool   `json:"sms_notifications"`
	LowStockAlerts     *bool   `json:"low_stock_alerts"`
	WebhookURL         *string `json:"webhook_url" binding:"omitempty,url"`
}

// PaymentMethodsRequest replaces the payment method list and credentials
type PaymentMethodsRequest struct {
	Methods  []entity.PaymentMethodSetting `json:"methods" binding:"required,min=1,dive"`
	Mpesa    *entity.MpesaIntegration      `json:"mpesa"`
	Stripe   *entity.StripeIntegration     `json:"stripe"`
	Paystack *entity.PaystackIntegration   `json:"paystack"`
}
