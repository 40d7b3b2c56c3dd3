package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/sangkips/storefront-admin/pkg/condition"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CampaignService manages loyalty campaigns
type CampaignService struct {
	campaignRepo repository.CampaignRepository
	clock        clock.Clock
}

// NewCampaignService creates a new campaign service
func NewCampaignService(campaignRepo repository.CampaignRepository, clk clock.Clock) *CampaignService {
	return &CampaignService{campaignRepo: campaignRepo, clock: clk}
}

// CampaignInput holds the editable fields of a campaign
type CampaignInput struct {
	Name        string
	Description *string
	Type        enum.CampaignType
	Multiplier  decimal.Decimal
	BonusPoints int64
	Priority    int
	StartsAt    *time.Time
	EndsAt      *time.Time
	Conditions  condition.Tree
}

func (in *CampaignInput) validate() error {
	var fields []apperror.FieldError
	switch in.Type {
	case enum.CampaignTypePointsMultiplier:
		if !in.Multiplier.GreaterThan(decimal.NewFromInt(1)) {
			fields = append(fields, apperror.FieldError{Field: "multiplier", Message: "must be greater than 1"})
		}
	case enum.CampaignTypeBonusPoints:
		if in.BonusPoints <= 0 {
			fields = append(fields, apperror.FieldError{Field: "bonus_points", Message: "must be greater than 0"})
		}
	}
	if in.StartsAt != nil && in.EndsAt != nil && !in.EndsAt.After(*in.StartsAt) {
		fields = append(fields, apperror.FieldError{Field: "ends_at", Message: "must be after starts_at"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return validateConditions("conditions", in.Conditions)
}

func (in *CampaignInput) apply(c *entity.Campaign) {
	c.Name = in.Name
	c.Description = in.Description
	c.Type = in.Type
	c.Priority = in.Priority
	c.StartsAt = in.StartsAt
	c.EndsAt = in.EndsAt
	c.Conditions = in.Conditions

	// Only the field matching the type is meaningful
	c.Multiplier = decimal.NewFromInt(1)
	c.BonusPoints = 0
	if in.Type == enum.CampaignTypePointsMultiplier {
		c.Multiplier = in.Multiplier.Round(2)
	} else {
		c.BonusPoints = in.BonusPoints
	}
}

// CreateCampaign creates a campaign in draft status
func (s *CampaignService) CreateCampaign(ctx context.Context, userID uuid.UUID, input *CampaignInput) (*entity.Campaign, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	campaign := &entity.Campaign{
		TenantID:  tenantID,
		Status:    enum.CampaignStatusDraft,
		CreatedBy: userID,
	}
	input.apply(campaign)

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// GetCampaign retrieves a campaign by ID
func (s *CampaignService) GetCampaign(ctx context.Context, id uuid.UUID) (*entity.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, apperror.NewNotFoundError("Campaign")
	}
	return campaign, nil
}

// ListCampaigns lists campaigns, optionally filtered by status
func (s *CampaignService) ListCampaigns(ctx context.Context, params *pagination.Params, status *enum.CampaignStatus) (*pagination.Result[entity.Campaign], error) {
	campaigns, total, err := s.campaignRepo.List(ctx, params, status)
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(campaigns, params, total), nil
}

// UpdateCampaign replaces the editable fields of a campaign. Ended campaigns
// are read-only.
func (s *CampaignService) UpdateCampaign(ctx context.Context, id uuid.UUID, input *CampaignInput) (*entity.Campaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status == enum.CampaignStatusEnded {
		return nil, apperror.NewConflictError("Ended campaigns cannot be changed")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	input.apply(campaign)
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// DeleteCampaign deletes a campaign
func (s *CampaignService) DeleteCampaign(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCampaign(ctx, id); err != nil {
		return err
	}
	return s.campaignRepo.Delete(ctx, id)
}

// ActivateCampaign starts a draft or paused campaign. A campaign whose window
// already closed cannot be activated.
func (s *CampaignService) ActivateCampaign(ctx context.Context, id uuid.UUID) (*entity.Campaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	switch campaign.Status {
	case enum.CampaignStatusActive:
		return campaign, nil
	case enum.CampaignStatusEnded:
		return nil, apperror.NewConflictError("Ended campaigns cannot be activated")
	}
	if clock.InWindow(s.clock.Now(), campaign.StartsAt, campaign.EndsAt) == clock.WindowEnded {
		return nil, apperror.NewConflictError("Campaign window has already ended")
	}

	campaign.Status = enum.CampaignStatusActive
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// PauseCampaign stops an active campaign from applying to new orders
func (s *CampaignService) PauseCampaign(ctx context.Context, id uuid.UUID) (*entity.Campaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status == enum.CampaignStatusPaused {
		return campaign, nil
	}
	if campaign.Status != enum.CampaignStatusActive {
		return nil, apperror.NewConflictError("Only active campaigns can be paused")
	}

	campaign.Status = enum.CampaignStatusPaused
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// EndCampaign closes a campaign for good
func (s *CampaignService) EndCampaign(ctx context.Context, id uuid.UUID) (*entity.Campaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status == enum.CampaignStatusEnded {
		return campaign, nil
	}

	campaign.Status = enum.CampaignStatusEnded
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// EvaluationResult is the outcome of a campaign dry run
type EvaluationResult struct {
	Matched      bool     `json:"matched"`
	Running      bool     `json:"running"`
	MissingFacts []string `json:"missing_facts"`
}

// EvaluateCampaign dry-runs the campaign conditions against supplied facts.
// Facts the rules reference but the caller left out are listed, since a
// condition on a missing fact never matches.
func (s *CampaignService) EvaluateCampaign(ctx context.Context, id uuid.UUID, facts condition.Facts) (*EvaluationResult, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	missing := []string{}
	for _, field := range condition.Referenced(campaign.Conditions.Root) {
		if _, ok := facts[field]; !ok {
			missing = append(missing, field)
		}
	}

	matched, err := condition.Evaluate(campaign.Conditions.Root, facts)
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}

	return &EvaluationResult{
		Matched:      matched,
		Running:      campaign.IsRunning(s.clock.Now()),
		MissingFacts: missing,
	}, nil
}

// ActiveCampaigns returns the campaigns applying to orders right now
func (s *CampaignService) ActiveCampaigns(ctx context.Context) ([]entity.Campaign, error) {
	campaigns, err := s.campaignRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	running := make([]entity.Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		if c.IsRunning(now) {
			running = append(running, c)
		}
	}
	return running, nil
}
