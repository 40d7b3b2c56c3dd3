package request

import "github.com/google/uuid"

// CreateTenantRequest opens another store for the current user
type CreateTenantRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
	Slug string `json:"slug" binding:"omitempty,min=2,max=100"`
}

// UpdateTenantRequest renames the current store
type UpdateTenantRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
}

// InviteMemberRequest adds an existing user to the current store
type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=admin member"`
}

// MemberRoleRequest changes a member's role
type MemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin member"`
}

// AssignUserRequest places a user in any store
type AssignUserRequest struct {
	TenantID uuid.UUID `json:"tenant_id" binding:"required"`
	UserID   uuid.UUID `json:"user_id" binding:"required"`
	Role     string    `json:"role" binding:"omitempty,oneof=admin member"`
}
