package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/email"
)

// LowStockMailer sends low stock alerts
type LowStockMailer interface {
	IsConfigured() bool
	SendLowStockAlert(to, storeName string, items []email.LowStockItem) error
}

// StockAlerter tells a store owner when products run low
type StockAlerter struct {
	tenantRepo repository.TenantRepository
	userRepo   repository.UserRepository
	mailer     LowStockMailer
}

// NewStockAlerter returns nil when no mailer is configured
func NewStockAlerter(tenantRepo repository.TenantRepository, userRepo repository.UserRepository, mailer LowStockMailer) *StockAlerter {
	if mailer == nil || !mailer.IsConfigured() {
		return nil
	}
	return &StockAlerter{tenantRepo: tenantRepo, userRepo: userRepo, mailer: mailer}
}

// Notify mails the owner of the tenant. Errors are logged.
func (a *StockAlerter) Notify(ctx context.Context, tenantID uuid.UUID, products []entity.Product) {
	logger := log.With().Str("tenant_id", tenantID.String()).Logger()

	tenant, err := a.tenantRepo.GetByID(ctx, tenantID)
	if err != nil || tenant == nil {
		logger.Error().Err(err).Msg("low stock alert: tenant lookup failed")
		return
	}
	owner, err := a.userRepo.GetByID(ctx, tenant.OwnerID)
	if err != nil || owner == nil {
		logger.Error().Err(err).Msg("low stock alert: owner lookup failed")
		return
	}

	items := make([]email.LowStockItem, 0, len(products))
	for _, p := range products {
		items = append(items, email.LowStockItem{
			Name:     p.Name,
			Code:     p.Code,
			Quantity: p.Quantity,
			Alert:    p.QuantityAlert,
		})
	}

	if err := a.mailer.SendLowStockAlert(owner.Email, tenant.Name, items); err != nil {
		logger.Error().Err(err).Msg("failed to send low stock alert")
		return
	}
	logger.Info().Int("products", len(items)).Msg("low stock alert sent")
}
