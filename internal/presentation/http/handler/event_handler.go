package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/storefront-admin/internal/application/service"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/request"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/response"
	"github.com/sangkips/storefront-admin/internal/presentation/http/middleware"
)

// EventHandler handles earning event HTTP requests
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler creates a new earning event handler
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func eventInput(req *request.EventRequest) *service.EventInput {
	return &service.EventInput{
		Name:                 req.Name,
		Description:          req.Description,
		Type:                 req.Type,
		Points:               req.Points,
		MaxClaimsPerCustomer: req.MaxClaimsPerCustomer,
		TotalClaimCap:        req.TotalClaimCap,
		StartsAt:             req.StartsAt,
		EndsAt:               req.EndsAt,
		Active:               req.Active,
	}
}

// List handles listing earning events
func (h *EventHandler) List(c *gin.Context) {
	result, err := h.eventService.ListEvents(c.Request.Context(), pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Events retrieved successfully", result)
}

// Create handles creating an earning event
func (h *EventHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	e, err := h.eventService.CreateEvent(c.Request.Context(), userID, eventInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Event created successfully", e)
}

// Get handles getting a single earning event
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	e, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Event retrieved successfully", e)
}

// Update handles updating an earning event
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	e, err := h.eventService.UpdateEvent(c.Request.Context(), id, eventInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Event updated successfully", e)
}

// Delete handles deleting an earning event
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Event deleted successfully", nil)
}

// RotateToken invalidates printed codes by issuing a new claim token
func (h *EventHandler) RotateToken(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	e, err := h.eventService.RotateToken(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Event token rotated", e)
}

// QR returns the payload to render as a QR code or share as a link
func (h *EventHandler) QR(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	payload, err := h.eventService.QRPayload(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Event payload retrieved successfully", payload)
}

// Claim awards an event's points to a customer
// @Summary Claim Earning Event
// @Description Requires an Idempotency-Key header; a retried key returns the first claim.
// @Tags events
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ClaimEventRequest true "Claim"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /events/claim [post]
func (h *EventHandler) Claim(c *gin.Context) {
	var req request.ClaimEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.eventService.ClaimEvent(c.Request.Context(), &service.ClaimInput{
		Code:           req.Code,
		CustomerID:     req.CustomerID,
		IdempotencyKey: middleware.IdempotencyKey(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Points claimed successfully", result)
}
