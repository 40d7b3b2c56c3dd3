package entity

import (
	"sort"
	"strings"

	"github.com/sangkips/storefront-admin/internal/domain/enum"
)

const secretMask = "********"

// PaymentMethodSetting is one entry of a tenant's checkout payment options
type PaymentMethodSetting struct {
	Method      enum.PaymentMethod `json:"method"`
	Enabled     bool               `json:"enabled"`
	DisplayName string             `json:"display_name"`
	SortOrder   int                `json:"sort_order"`
}

// MpesaIntegration holds M-Pesa configuration
type MpesaIntegration struct {
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
	ShortCode      string `json:"short_code"`
	PassKey        string `json:"pass_key"`
	Environment    string `json:"environment"` // sandbox, production
}

// StripeIntegration holds Stripe configuration
type StripeIntegration struct {
	PublishableKey string `json:"publishable_key"`
	SecretKey      string `json:"secret_key"`
	WebhookSecret  string `json:"webhook_secret"`
}

// PaystackIntegration holds Paystack configuration
type PaystackIntegration struct {
	PublicKey string `json:"public_key"`
	SecretKey string `json:"secret_key"`
}

var defaultDisplayNames = map[enum.PaymentMethod]string{
	enum.PaymentMethodCash:         "Cash",
	enum.PaymentMethodCard:         "Card",
	enum.PaymentMethodMpesa:        "M-Pesa",
	enum.PaymentMethodStripe:       "Stripe",
	enum.PaymentMethodPaystack:     "Paystack",
	enum.PaymentMethodBankTransfer: "Bank transfer",
}

// DefaultPaymentMethods enables cash only; every other method starts disabled
func DefaultPaymentMethods() []PaymentMethodSetting {
	methods := enum.PaymentMethods()
	out := make([]PaymentMethodSetting, 0, len(methods))
	for i, m := range methods {
		out = append(out, PaymentMethodSetting{
			Method:      m,
			Enabled:     m == enum.PaymentMethodCash,
			DisplayName: defaultDisplayNames[m],
			SortOrder:   i,
		})
	}
	return out
}

// PaymentMethodList returns one entry per supported method, filling methods the
// tenant never configured with disabled defaults, ordered by SortOrder.
func (ts TenantSettings) PaymentMethodList() []PaymentMethodSetting {
	byMethod := make(map[enum.PaymentMethod]PaymentMethodSetting, len(ts.PaymentMethods))
	for _, pm := range ts.PaymentMethods {
		byMethod[pm.Method] = pm
	}
	out := make([]PaymentMethodSetting, 0, len(enum.PaymentMethods()))
	for _, def := range DefaultPaymentMethods() {
		if pm, ok := byMethod[def.Method]; ok {
			if pm.DisplayName == "" {
				pm.DisplayName = def.DisplayName
			}
			out = append(out, pm)
			continue
		}
		def.Enabled = false
		out = append(out, def)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// IsPaymentMethodEnabled reports whether orders may be paid with m
func (ts TenantSettings) IsPaymentMethodEnabled(m enum.PaymentMethod) bool {
	for _, pm := range ts.PaymentMethods {
		if pm.Method == m {
			return pm.Enabled
		}
	}
	return false
}

// Masked returns a copy with provider secrets replaced, safe to send to clients
func (ts TenantSettings) Masked() TenantSettings {
	out := ts
	if ts.Mpesa != nil {
		m := *ts.Mpesa
		m.ConsumerSecret = MaskSecret(m.ConsumerSecret)
		m.PassKey = MaskSecret(m.PassKey)
		out.Mpesa = &m
	}
	if ts.Stripe != nil {
		s := *ts.Stripe
		s.SecretKey = MaskSecret(s.SecretKey)
		s.WebhookSecret = MaskSecret(s.WebhookSecret)
		out.Stripe = &s
	}
	if ts.Paystack != nil {
		p := *ts.Paystack
		p.SecretKey = MaskSecret(p.SecretKey)
		out.Paystack = &p
	}
	return out
}

// MaskSecret keeps the last four characters of a secret
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return secretMask
	}
	return secretMask + s[len(s)-4:]
}

// IsMaskedSecret reports whether s is a value produced by MaskSecret. Updates
// that echo a masked value back keep the stored secret.
func IsMaskedSecret(s string) bool {
	return strings.HasPrefix(s, secretMask)
}
