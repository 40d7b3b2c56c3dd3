package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/internal/domain/event"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"github.com/sangkips/storefront-admin/pkg/utils"
)

// Rejection reasons returned when an earning event cannot be claimed
const (
	ReasonEventInactive    = "event_inactive"
	ReasonEventNotStarted  = "event_not_started"
	ReasonEventExpired     = "event_expired"
	ReasonEventCapReached  = "event_cap_reached"
	ReasonEventClaimLimit  = "event_claim_limit"
	ReasonEventWrongTenant = "event_wrong_tenant"
)

// EventService manages QR and click earning events
type EventService struct {
	eventRepo    repository.EarningEventRepository
	customerRepo repository.CustomerRepository
	publisher    event.Publisher
	clock        clock.Clock
	claimBaseURL string
}

// NewEventService creates a new earning event service
func NewEventService(
	eventRepo repository.EarningEventRepository,
	customerRepo repository.CustomerRepository,
	publisher event.Publisher,
	clk clock.Clock,
	claimBaseURL string,
) *EventService {
	return &EventService{
		eventRepo:    eventRepo,
		customerRepo: customerRepo,
		publisher:    publisher,
		clock:        clk,
		claimBaseURL: claimBaseURL,
	}
}

// EventInput holds the editable fields of an earning event
type EventInput struct {
	Name                 string
	Description          *string
	Type                 enum.EventType
	Points               int64
	MaxClaimsPerCustomer int
	TotalClaimCap        *int
	StartsAt             *time.Time
	EndsAt               *time.Time
	Active               bool
}

func (in *EventInput) validate() error {
	var fields []apperror.FieldError
	if in.Points <= 0 {
		fields = append(fields, apperror.FieldError{Field: "points", Message: "must be greater than 0"})
	}
	if in.MaxClaimsPerCustomer < 1 {
		fields = append(fields, apperror.FieldError{Field: "max_claims_per_customer", Message: "must be at least 1"})
	}
	if in.TotalClaimCap != nil && *in.TotalClaimCap < 1 {
		fields = append(fields, apperror.FieldError{Field: "total_claim_cap", Message: "must be at least 1"})
	}
	if in.StartsAt != nil && in.EndsAt != nil && !in.EndsAt.After(*in.StartsAt) {
		fields = append(fields, apperror.FieldError{Field: "ends_at", Message: "must be after starts_at"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}

func (in *EventInput) apply(e *entity.EarningEvent) {
	e.Name = in.Name
	e.Description = in.Description
	e.Type = in.Type
	e.Points = in.Points
	e.MaxClaimsPerCustomer = in.MaxClaimsPerCustomer
	e.TotalClaimCap = in.TotalClaimCap
	e.StartsAt = in.StartsAt
	e.EndsAt = in.EndsAt
	e.Active = in.Active
}

// CreateEvent creates an earning event with a fresh claim token
func (s *EventService) CreateEvent(ctx context.Context, userID uuid.UUID, input *EventInput) (*entity.EarningEvent, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if input.MaxClaimsPerCustomer == 0 {
		input.MaxClaimsPerCustomer = 1
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	e := &entity.EarningEvent{
		TenantID:  tenantID,
		Token:     utils.GenerateToken(),
		CreatedBy: userID,
	}
	input.apply(e)

	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetEvent retrieves an earning event by ID
func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*entity.EarningEvent, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperror.NewNotFoundError("Event")
	}
	return e, nil
}

// ListEvents lists earning events
func (s *EventService) ListEvents(ctx context.Context, params *pagination.Params) (*pagination.Result[entity.EarningEvent], error) {
	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(events, params, total), nil
}

// UpdateEvent replaces the editable fields of an event. The token and claim
// count are kept.
func (s *EventService) UpdateEvent(ctx context.Context, id uuid.UUID, input *EventInput) (*entity.EarningEvent, error) {
	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.MaxClaimsPerCustomer == 0 {
		input.MaxClaimsPerCustomer = e.MaxClaimsPerCustomer
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	input.apply(e)
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// RotateToken replaces the claim token, invalidating printed QR codes
func (s *EventService) RotateToken(ctx context.Context, id uuid.UUID) (*entity.EarningEvent, error) {
	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Token = utils.GenerateToken()
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEvent deletes an earning event
func (s *EventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetEvent(ctx, id); err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, id)
}

// ClaimPayload is what an event QR code or link carries
type ClaimPayload struct {
	Payload string `json:"payload"`
	URL     string `json:"url,omitempty"`
}

// Payload returns "{tenant}:{token}" for an event
func Payload(e *entity.EarningEvent) string {
	return e.TenantID.String() + ":" + e.Token
}

// QRPayload returns the claim payload of an event and, when a claim base URL
// is configured, the link that embeds it
func (s *EventService) QRPayload(ctx context.Context, id uuid.UUID) (*ClaimPayload, error) {
	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &ClaimPayload{Payload: Payload(e)}
	if s.claimBaseURL != "" {
		base, err := url.Parse(s.claimBaseURL)
		if err != nil {
			return nil, apperror.Wrap(500, "Claim base URL is invalid", err)
		}
		q := base.Query()
		q.Set("code", out.Payload)
		base.RawQuery = q.Encode()
		out.URL = base.String()
	}
	return out, nil
}

// ClaimInput is a customer redeeming an event code
type ClaimInput struct {
	Code           string
	CustomerID     uuid.UUID
	IdempotencyKey string
}

// ClaimResult is the outcome of a claim
type ClaimResult struct {
	Claim    *entity.EventClaim `json:"claim"`
	Points   int64              `json:"points"`
	Balance  int64              `json:"balance"`
	Replayed bool               `json:"replayed"`
}

// parseCode accepts either a full "{tenant}:{token}" payload or a bare token
func parseCode(code string) (tenant string, token string) {
	code = strings.TrimSpace(code)
	if i := strings.LastIndex(code, ":"); i >= 0 {
		return code[:i], code[i+1:]
	}
	return "", code
}

// ClaimEvent awards the event points to a customer. A repeated idempotency
// key returns the first claim without awarding again.
func (s *EventService) ClaimEvent(ctx context.Context, input *ClaimInput) (*ClaimResult, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	tenantPart, token := parseCode(input.Code)
	if tenantPart != "" && tenantPart != tenantID.String() {
		return nil, apperror.NewRejection(ReasonEventWrongTenant, "Code belongs to another store")
	}

	e, err := s.eventRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperror.NewNotFoundError("Event")
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	var key *string
	if k := strings.TrimSpace(input.IdempotencyKey); k != "" {
		key = &k
		prior, err := s.eventRepo.GetClaimByKey(ctx, e.ID, k)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			if prior.CustomerID != customer.ID {
				return nil, apperror.NewConflictError("Idempotency key was used for another customer")
			}
			return &ClaimResult{Claim: prior, Points: prior.Points, Balance: customer.PointsBalance, Replayed: true}, nil
		}
	}

	if err := s.checkClaimable(ctx, e, customer.ID); err != nil {
		return nil, err
	}

	claim := &entity.EventClaim{
		TenantID:       tenantID,
		EventID:        e.ID,
		CustomerID:     customer.ID,
		Points:         e.Points,
		IdempotencyKey: key,
	}
	eventID := e.ID
	entry := &entity.PointTransaction{
		CustomerID: customer.ID,
		Points:     e.Points,
		Source:     enum.PointSourceEvent,
		EventID:    &eventID,
		Reason:     e.Name,
	}
	updated, err := s.eventRepo.Claim(ctx, claim, entry, e.MaxClaimsPerCustomer)
	switch {
	case errors.Is(err, repository.ErrEventCapReached):
		return nil, apperror.NewRejection(ReasonEventCapReached, "All claims for this event have been handed out")
	case errors.Is(err, repository.ErrEventClaimLimit):
		return nil, apperror.NewRejection(ReasonEventClaimLimit, "Customer already claimed this event")
	case err != nil:
		return nil, err
	}

	claimed := pointsEvent(event.EventClaimed, entry, updated.PointsBalance)
	publish(ctx, s.publisher, claimed)

	return &ClaimResult{Claim: claim, Points: e.Points, Balance: updated.PointsBalance}, nil
}

func (s *EventService) checkClaimable(ctx context.Context, e *entity.EarningEvent, customerID uuid.UUID) error {
	if !e.Active {
		return apperror.NewRejection(ReasonEventInactive, "Event is not active")
	}
	switch clock.InWindow(s.clock.Now(), e.StartsAt, e.EndsAt) {
	case clock.WindowNotStarted:
		return apperror.NewRejection(ReasonEventNotStarted, "Event has not started")
	case clock.WindowEnded:
		return apperror.NewRejection(ReasonEventExpired, "Event has ended")
	}
	if e.CapReached() {
		return apperror.NewRejection(ReasonEventCapReached, "All claims for this event have been handed out")
	}

	claims, err := s.eventRepo.CountClaims(ctx, e.ID, customerID)
	if err != nil {
		return err
	}
	if claims >= int64(e.MaxClaimsPerCustomer) {
		return apperror.NewRejection(ReasonEventClaimLimit, "Customer already claimed this event")
	}
	return nil
}
