package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/storefront-admin/internal/application/service"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/request"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/response"
)

// CouponHandler handles coupon HTTP requests
type CouponHandler struct {
	couponService *service.CouponService
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(couponService *service.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

func couponInput(req *request.CouponRequest) *service.CouponInput {
	return &service.CouponInput{
		Code:             req.Code,
		Description:      req.Description,
		DiscountMode:     req.DiscountMode,
		DiscountValue:    req.DiscountValue,
		MinSubtotal:      req.MinSubtotal,
		MaxDiscount:      req.MaxDiscount,
		UsageLimit:       req.UsageLimit,
		PerCustomerLimit: req.PerCustomerLimit,
		StartsAt:         req.StartsAt,
		EndsAt:           req.EndsAt,
		Active:           req.Active,
		Conditions:       req.Conditions,
	}
}

// List handles listing coupons
func (h *CouponHandler) List(c *gin.Context) {
	result, err := h.couponService.ListCoupons(c.Request.Context(), pageParams(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Coupons retrieved successfully", result)
}

// Create handles creating a coupon
func (h *CouponHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	coupon, err := h.couponService.CreateCoupon(c.Request.Context(), userID, couponInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Coupon created successfully", coupon)
}

// Get handles getting a single coupon
func (h *CouponHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	coupon, err := h.couponService.GetCoupon(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Coupon retrieved successfully", coupon)
}

// Update handles updating a coupon
func (h *CouponHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req request.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	coupon, err := h.couponService.UpdateCoupon(c.Request.Context(), id, couponInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Coupon updated successfully", coupon)
}

// Delete handles deleting a coupon
func (h *CouponHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.couponService.DeleteCoupon(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Coupon deleted successfully", nil)
}

// Validate previews the discount a code gives on a prospective order
// @Summary Validate Coupon
// @Tags coupons
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ValidateCouponRequest true "Order preview"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse "reason is one of coupon_not_found, coupon_expired, ..."
// @Router /coupons/validate [post]
func (h *CouponHandler) Validate(c *gin.Context) {
	var req request.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	quote, err := h.couponService.ValidateCoupon(c.Request.Context(), &service.ValidateCouponInput{
		Code:       req.Code,
		Subtotal:   req.Subtotal,
		CustomerID: req.CustomerID,
		Facts:      req.Facts,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Coupon is valid", quote)
}
