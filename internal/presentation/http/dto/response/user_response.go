package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
)

// UserResponse is the account view returned by login, profile and user
// admin endpoints. Credentials and provider ids never leave the server.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Photo       *string    `json:"photo,omitempty"`
	Provider    string     `json:"provider"`
	Verified    bool       `json:"email_verified"`
	Roles       []string   `json:"roles"`
	Permissions []string   `json:"permissions"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

func NewUserResponse(u *entity.User) UserResponse {
	out := UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		Email:       u.Email,
		Username:    u.Username,
		Photo:       u.Photo,
		Provider:    u.Provider,
		Verified:    u.EmailVerifiedAt != nil,
		Roles:       u.RoleNames(),
		Permissions: u.PermissionNames(),
	}
	if out.Permissions == nil {
		out.Permissions = []string{}
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt
		out.CreatedAt = &created
	}
	return out
}
