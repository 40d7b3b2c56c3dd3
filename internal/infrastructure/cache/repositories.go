package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	domainRepo "github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/internal/infrastructure/repository"
)

func settingsKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("tenant:%s:settings", tenantID)
}

func activeCampaignsKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("tenant:%s:campaigns:active", tenantID)
}

// settingsRepository reads tenant settings through the cache. Cache failures
// are logged and fall through to the database.
type settingsRepository struct {
	next  domainRepo.SettingsRepository
	store Store
}

// NewSettingsRepository wraps a settings repository with a read-through cache
func NewSettingsRepository(next domainRepo.SettingsRepository, store Store) domainRepo.SettingsRepository {
	return &settingsRepository{next: next, store: store}
}

func (r *settingsRepository) Get(ctx context.Context, tenantID uuid.UUID) (*entity.TenantSettings, error) {
	key := settingsKey(tenantID)

	var cached entity.TenantSettings
	err := r.store.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Warn().Err(err).Str("key", key).Msg("settings cache read failed")
	}

	settings, err := r.next.Get(ctx, tenantID)
	if err != nil || settings == nil {
		return settings, err
	}
	if err := r.store.Set(ctx, key, settings); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("settings cache write failed")
	}
	return settings, nil
}

func (r *settingsRepository) Update(ctx context.Context, tenantID uuid.UUID, settings *entity.TenantSettings) error {
	if err := r.next.Update(ctx, tenantID, settings); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, settingsKey(tenantID)); err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("settings cache invalidation failed")
	}
	return nil
}

// campaignRepository caches the active campaign list per tenant, which is
// read on every order completion. Writes invalidate the tenant's entry.
type campaignRepository struct {
	domainRepo.CampaignRepository
	store Store
}

// NewCampaignRepository wraps a campaign repository with an active list cache
func NewCampaignRepository(next domainRepo.CampaignRepository, store Store) domainRepo.CampaignRepository {
	return &campaignRepository{CampaignRepository: next, store: store}
}

func (r *campaignRepository) ListActive(ctx context.Context) ([]entity.Campaign, error) {
	tenantID, ok := repository.GetTenantID(ctx)
	if !ok {
		return r.CampaignRepository.ListActive(ctx)
	}
	key := activeCampaignsKey(tenantID)

	var cached []entity.Campaign
	err := r.store.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Warn().Err(err).Str("key", key).Msg("campaign cache read failed")
	}

	campaigns, err := r.CampaignRepository.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, key, campaigns); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("campaign cache write failed")
	}
	return campaigns, nil
}

func (r *campaignRepository) Create(ctx context.Context, campaign *entity.Campaign) error {
	if err := r.CampaignRepository.Create(ctx, campaign); err != nil {
		return err
	}
	r.invalidate(ctx, campaign.TenantID)
	return nil
}

func (r *campaignRepository) Update(ctx context.Context, campaign *entity.Campaign) error {
	if err := r.CampaignRepository.Update(ctx, campaign); err != nil {
		return err
	}
	r.invalidate(ctx, campaign.TenantID)
	return nil
}

func (r *campaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.CampaignRepository.Delete(ctx, id); err != nil {
		return err
	}
	if tenantID, ok := repository.GetTenantID(ctx); ok {
		r.invalidate(ctx, tenantID)
	}
	return nil
}

func (r *campaignRepository) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if err := r.store.Delete(ctx, activeCampaignsKey(tenantID)); err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("campaign cache invalidation failed")
	}
}
