package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/internal/infrastructure/repository"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	var out map[string]int
	assert.ErrorIs(t, c.Get(ctx, "k", &out), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}))
	require.NoError(t, c.Get(ctx, "k", &out))
	assert.Equal(t, 1, out["a"])

	ttl := mr.TTL("k")
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.LessOrEqual(t, ttl, time.Minute+12*time.Second)

	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestRedisCache_InvalidJSON(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("bad", "{not json"))

	var out map[string]int
	err := c.Get(context.Background(), "bad", &out)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

type stubSettings struct {
	settings *entity.TenantSettings
	gets     int
	updates  int
}

func (s *stubSettings) Get(context.Context, uuid.UUID) (*entity.TenantSettings, error) {
	s.gets++
	return s.settings, nil
}

func (s *stubSettings) Update(_ context.Context, _ uuid.UUID, settings *entity.TenantSettings) error {
	s.updates++
	s.settings = settings
	return nil
}

func TestSettingsRepository_ReadThrough(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	tenantID := uuid.New()

	defaults := entity.DefaultTenantSettings()
	inner := &stubSettings{settings: &defaults}
	repo := NewSettingsRepository(inner, c)

	got, err := repo.Get(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "KES", got.Currency)
	assert.True(t, mr.Exists(settingsKey(tenantID)))

	got, err = repo.Get(ctx, tenantID)
	require.NoError(t, err)
	assert.True(t, defaults.TaxRate.Equal(got.TaxRate))
	assert.Equal(t, 1, inner.gets)

	updated := defaults
	updated.Currency = "USD"
	require.NoError(t, repo.Update(ctx, tenantID, &updated))
	assert.False(t, mr.Exists(settingsKey(tenantID)))

	got, err = repo.Get(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, 2, inner.gets)
}

func TestSettingsRepository_NoopStore(t *testing.T) {
	defaults := entity.DefaultTenantSettings()
	inner := &stubSettings{settings: &defaults}
	repo := NewSettingsRepository(inner, Noop{})

	for i := 0; i < 3; i++ {
		_, err := repo.Get(context.Background(), uuid.New())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.gets)
}

type stubCampaigns struct {
	active []entity.Campaign
	lists  int
}

func (s *stubCampaigns) Create(context.Context, *entity.Campaign) error { return nil }
func (s *stubCampaigns) GetByID(context.Context, uuid.UUID) (*entity.Campaign, error) {
	return nil, nil
}
func (s *stubCampaigns) Update(context.Context, *entity.Campaign) error { return nil }
func (s *stubCampaigns) Delete(context.Context, uuid.UUID) error        { return nil }
func (s *stubCampaigns) List(context.Context, *pagination.Params, *enum.CampaignStatus) ([]entity.Campaign, int64, error) {
	return s.active, int64(len(s.active)), nil
}
func (s *stubCampaigns) ListActive(context.Context) ([]entity.Campaign, error) {
	s.lists++
	return s.active, nil
}

func TestCampaignRepository_ActiveCache(t *testing.T) {
	c, mr := setupTestRedis(t)
	tenantID := uuid.New()
	ctx := repository.WithTenant(context.Background(), tenantID)

	inner := &stubCampaigns{active: []entity.Campaign{{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Name:       "Double points",
		Type:       enum.CampaignTypePointsMultiplier,
		Status:     enum.CampaignStatusActive,
		Multiplier: decimal.NewFromInt(2),
	}}}
	repo := NewCampaignRepository(inner, c)

	got, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, enum.CampaignTypePointsMultiplier, got[0].Type)
	assert.True(t, decimal.NewFromInt(2).Equal(got[0].Multiplier))
	assert.Equal(t, 1, inner.lists)

	require.NoError(t, repo.Update(ctx, &inner.active[0]))
	assert.False(t, mr.Exists(activeCampaignsKey(tenantID)))

	_, err = repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.lists)
}
