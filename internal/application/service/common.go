package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/event"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	infraRepo "github.com/sangkips/storefront-admin/internal/infrastructure/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/condition"
)

// requireTenant returns the tenant of the request or ErrTenantRequired
func requireTenant(ctx context.Context) (uuid.UUID, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return uuid.Nil, apperror.ErrTenantRequired
	}
	return tenantID, nil
}

// validateConditions turns condition problems into field errors under prefix
func validateConditions(prefix string, tree condition.Tree) error {
	err := condition.Validate(tree.Root, condition.OrderSchema)
	if err == nil {
		return nil
	}
	var verr *condition.ValidationError
	if !errors.As(err, &verr) {
		return apperror.NewBadRequestError(err.Error())
	}
	fields := make([]apperror.FieldError, 0, len(verr.Problems))
	for _, p := range verr.Problems {
		fields = append(fields, apperror.FieldError{Field: prefix + "." + p.Path, Message: p.Message})
	}
	return apperror.NewValidationError(fields)
}

// loadSettings returns the settings of a tenant
func loadSettings(ctx context.Context, repo repository.SettingsRepository, tenantID uuid.UUID) (*entity.TenantSettings, error) {
	settings, err := repo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, apperror.NewNotFoundError("Tenant")
	}
	return settings, nil
}

// publish hands events to the stream after the writes they describe have
// committed. Delivery failures are logged and do not fail the request.
func publish(ctx context.Context, pub event.Publisher, events ...event.LoyaltyEvent) {
	if pub == nil || len(events) == 0 {
		return
	}
	if err := pub.Publish(ctx, events...); err != nil {
		log.Error().Err(err).Int("count", len(events)).Str("type", string(events[0].Type)).Msg("failed to publish loyalty events")
	}
}

// pointsEvent describes a ledger entry that has been applied
func pointsEvent(t event.Type, entry *entity.PointTransaction, balance int64) event.LoyaltyEvent {
	customerID := entry.CustomerID
	return event.LoyaltyEvent{
		ID:         uuid.New(),
		Type:       t,
		TenantID:   entry.TenantID,
		CustomerID: &customerID,
		OrderID:    entry.OrderID,
		CampaignID: entry.CampaignID,
		EventID:    entry.EventID,
		Points:     entry.Points,
		Balance:    balance,
		OccurredAt: entry.CreatedAt,
	}
}
