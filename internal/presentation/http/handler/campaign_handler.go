package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/application/service"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/request"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/response"
	"github.com/sangkips/storefront-admin/pkg/condition"
)

// CampaignHandler handles loyalty campaign HTTP requests
type CampaignHandler struct {
	campaignService *service.CampaignService
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignService *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

func campaignInput(req *request.CampaignRequest) *service.CampaignInput {
	return &service.CampaignInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Multiplier:  req.Multiplier,
		BonusPoints: req.BonusPoints,
		Priority:    req.Priority,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Conditions:  req.Conditions,
	}
}

// List handles listing campaigns, optionally by status
func (h *CampaignHandler) List(c *gin.Context) {
	var status *enum.CampaignStatus
	if s, ok := enum.ParseCampaignStatus(c.Query("status")); ok {
		status = &s
	}

	result, err := h.campaignService.ListCampaigns(c.Request.Context(), pageParams(c), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Campaigns retrieved successfully", result)
}

// Create handles creating a draft campaign
func (h *CampaignHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	campaign, err := h.campaignService.CreateCampaign(c.Request.Context(), userID, campaignInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Campaign created successfully", campaign)
}

// Get handles getting a single campaign
func (h *CampaignHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	campaign, err := h.campaignService.GetCampaign(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Campaign retrieved successfully", campaign)
}

// Update handles replacing the editable fields of a campaign
func (h *CampaignHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	campaign, err := h.campaignService.UpdateCampaign(c.Request.Context(), id, campaignInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Campaign updated successfully", campaign)
}

// Delete handles deleting a campaign
func (h *CampaignHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.campaignService.DeleteCampaign(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Campaign deleted successfully", nil)
}

// Activate handles moving a campaign to active
func (h *CampaignHandler) Activate(c *gin.Context) {
	h.transition(c, h.campaignService.ActivateCampaign, "Campaign activated")
}

// Pause handles pausing an active campaign
func (h *CampaignHandler) Pause(c *gin.Context) {
	h.transition(c, h.campaignService.PauseCampaign, "Campaign paused")
}

// End handles ending a campaign for good
func (h *CampaignHandler) End(c *gin.Context) {
	h.transition(c, h.campaignService.EndCampaign, "Campaign ended")
}

func (h *CampaignHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID) (*entity.Campaign, error), msg string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	campaign, err := fn(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, msg, campaign)
}

// Evaluate dry-runs a campaign's conditions against supplied facts
func (h *CampaignHandler) Evaluate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.campaignService.EvaluateCampaign(c.Request.Context(), id, req.Facts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Campaign evaluated", result)
}

type conditionField struct {
	Field     string               `json:"field"`
	Type      condition.FieldType  `json:"type"`
	Operators []condition.Operator `json:"operators"`
}

// ConditionSchema lists the fields and operators rule builders may use
func (h *CampaignHandler) ConditionSchema(c *gin.Context) {
	names := condition.OrderSchema.FieldNames()
	fields := make([]conditionField, 0, len(names))
	for _, name := range names {
		t := condition.OrderSchema[name]
		fields = append(fields, conditionField{
			Field:     name,
			Type:      t,
			Operators: condition.Operators(t),
		})
	}

	response.OK(c, "Condition schema retrieved successfully", gin.H{
		"fields":    fields,
		"max_depth": condition.MaxDepth,
	})
}
