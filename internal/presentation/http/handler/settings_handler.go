package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/storefront-admin/internal/application/service"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/request"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/response"
)

// SettingsHandler handles store settings HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings retrieves the current store's settings with secrets masked
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings retrieved successfully", settings)
}

// UpdateSettings updates the general store settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req request.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	input := &service.UpdateSettingsInput{
		LogoURL:            req.LogoURL,
		PrimaryColor:       req.PrimaryColor,
		Currency:           req.Currency,
		Timezone:           req.Timezone,
		Locale:             req.Locale,
		DateFormat:         req.DateFormat,
		TaxRate:            req.TaxRate,
		TaxLabel:           req.TaxLabel,
		InvoicePrefix:      req.InvoicePrefix,
		EmailNotifications: req.EmailNotifications,
		SMSNotifications:   req.SMSNotifications,
		LowStockAlerts:     req.LowStockAlerts,
		WebhookURL:         req.WebhookURL,
	}
	if req.Loyalty != nil {
		input.LoyaltyEnabled = req.Loyalty.Enabled
		input.PointsPerCurrencyUnit = req.Loyalty.PointsPerCurrencyUnit
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings updated successfully", settings)
}

// GetPaymentMethods lists the payment methods and masked credentials
func (h *SettingsHandler) GetPaymentMethods(c *gin.Context) {
	settings, err := h.settingsService.GetPaymentMethods(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment methods retrieved successfully", settings)
}

// UpdatePaymentMethods replaces the payment method list. Masked or empty
// secrets keep the stored value.
func (h *SettingsHandler) UpdatePaymentMethods(c *gin.Context) {
	var req request.PaymentMethodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	settings, err := h.settingsService.UpdatePaymentMethods(c.Request.Context(), &service.PaymentSettings{
		Methods:  req.Methods,
		Mpesa:    req.Mpesa,
		Stripe:   req.Stripe,
		Paystack: req.Paystack,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment methods updated successfully", settings)
}
