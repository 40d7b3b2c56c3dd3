package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/storefront-admin/internal/application/service"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/request"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/response"
	"github.com/sangkips/storefront-admin/internal/presentation/http/middleware"
)

// TenantHandler handles tenant-related HTTP requests
type TenantHandler struct {
	tenantService *service.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// CreateTenant opens a new store owned by the current user
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), &service.CreateTenantInput{
		Name:    req.Name,
		Slug:    req.Slug,
		OwnerID: userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Tenant created successfully", tenant)
}

// GetCurrentTenant returns the current user's active tenant
func (h *TenantHandler) GetCurrentTenant(c *gin.Context) {
	tenant, err := h.tenantService.GetTenant(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tenant retrieved successfully", gin.H{
		"tenant": tenant,
		"role":   c.GetString("member_role"),
	})
}

// ListTenants returns all tenants for super admins, or only tenants the user belongs to
func (h *TenantHandler) ListTenants(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var (
		result interface{}
		err    error
	)
	if IsSuperAdmin(c) {
		result, err = h.tenantService.ListAllTenants(c.Request.Context(), pageParams(c))
	} else {
		result, err = h.tenantService.GetUserTenants(c.Request.Context(), userID, pageParams(c))
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Tenants retrieved successfully", result)
}

// UpdateTenant renames the current tenant
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	var req request.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request.Context(), &service.UpdateTenantInput{
		ID:   middleware.GetTenantID(c),
		Name: req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tenant updated successfully", gin.H{
		"tenant": tenant,
	})
}

// ListMembers returns all members of the current tenant
func (h *TenantHandler) ListMembers(c *gin.Context) {
	members, err := h.tenantService.GetTenantMembers(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Members retrieved successfully", gin.H{
		"members": members,
	})
}

// InviteMember adds a registered user to the current tenant
func (h *TenantHandler) InviteMember(c *gin.Context) {
	var req request.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	membership, err := h.tenantService.InviteMember(c.Request.Context(), &service.InviteMemberInput{
		TenantID: middleware.GetTenantID(c),
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Member invited successfully", membership)
}

// RemoveMember removes a user from the current tenant
func (h *TenantHandler) RemoveMember(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}

	if err := h.tenantService.RemoveMember(c.Request.Context(), middleware.GetTenantID(c), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Member removed successfully", nil)
}

// UpdateMemberRole updates a member's role in the current tenant
func (h *TenantHandler) UpdateMemberRole(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}

	var req request.MemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.tenantService.UpdateMemberRole(c.Request.Context(), middleware.GetTenantID(c), userID, req.Role); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Member role updated successfully", nil)
}

// AssignUserToTenant assigns a user to a tenant (super admin only)
func (h *TenantHandler) AssignUserToTenant(c *gin.Context) {
	var req request.AssignUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	membership, err := h.tenantService.AssignUserToTenant(c.Request.Context(), &service.AssignUserToTenantInput{
		TenantID: req.TenantID,
		UserID:   req.UserID,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "User assigned to tenant successfully", membership)
}
