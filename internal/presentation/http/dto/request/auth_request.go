package request

import "github.com/google/uuid"

// Passwords are capped at 72 bytes, the most bcrypt reads.

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
}

// RegisterRequest signs up a store owner. The store is named after the owner
// when store_name is empty.
type RegisterRequest struct {
	FirstName       string `json:"first_name" binding:"required,min=2,max=255"`
	LastName        string `json:"last_name" binding:"required,min=2,max=255"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
	StoreName       string `json:"store_name" binding:"omitempty,min=2,max=255"`
}

// RefreshTokenRequest may name the store to stay in. Without it the store
// from the X-Tenant-ID header, then the one in the refresh token, is used.
type RefreshTokenRequest struct {
	RefreshToken string     `json:"refresh_token" binding:"required"`
	TenantID     *uuid.UUID `json:"tenant_id"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required,len=64,hexadecimal"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required,max=72"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// UpdateProfileRequest changes only the fields that are present
type UpdateProfileRequest struct {
	FirstName string  `json:"first_name" binding:"omitempty,min=2,max=255"`
	LastName  string  `json:"last_name" binding:"omitempty,min=2,max=255"`
	Username  string  `json:"username" binding:"omitempty,min=3,max=50,alphanum"`
	Photo     *string `json:"photo" binding:"omitempty,url"`
}
