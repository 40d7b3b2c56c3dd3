package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"github.com/sangkips/storefront-admin/pkg/utils"
)

// TenantService handles tenant-related operations
type TenantService struct {
	tenantRepo repository.TenantRepository
	userRepo   repository.UserRepository
}

// NewTenantService creates a new tenant service
func NewTenantService(tenantRepo repository.TenantRepository, userRepo repository.UserRepository) *TenantService {
	return &TenantService{tenantRepo: tenantRepo, userRepo: userRepo}
}

// CreateTenantInput represents input for creating a tenant
type CreateTenantInput struct {
	Name     string
	Slug     string
	OwnerID  uuid.UUID
	Settings *entity.TenantSettings
}

// CreateTenant creates a new tenant and makes the owner its first member.
// An empty slug is derived from the name and suffixed until it is free.
func (s *TenantService) CreateTenant(ctx context.Context, input *CreateTenantInput) (*entity.Tenant, error) {
	slug := utils.Slugify(input.Slug)
	if input.Slug != "" {
		exists, err := s.tenantRepo.SlugExists(ctx, slug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperror.NewConflictError("Tenant slug already exists")
		}
	} else {
		var err error
		slug, err = s.uniqueSlug(ctx, input.Name)
		if err != nil {
			return nil, err
		}
	}

	settings := entity.DefaultTenantSettings()
	if input.Settings != nil {
		settings = *input.Settings
	}

	tenant := &entity.Tenant{
		Name:     input.Name,
		Slug:     slug,
		OwnerID:  input.OwnerID,
		Settings: settings,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	membership := &entity.TenantMembership{
		TenantID: tenant.ID,
		UserID:   input.OwnerID,
		Role:     entity.MemberRoleOwner,
	}
	if err := s.tenantRepo.AddMember(ctx, membership); err != nil {
		return nil, err
	}

	return tenant, nil
}

func (s *TenantService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = "store"
	}
	slug := base
	for i := 0; i < 5; i++ {
		exists, err := s.tenantRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + utils.GenerateToken()[:6]
	}
	return "", apperror.NewConflictError("Could not generate a unique tenant slug")
}

// GetTenant retrieves a tenant by ID
func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFoundError("Tenant")
	}
	return tenant, nil
}

// GetUserTenants retrieves the tenants a user belongs to
func (s *TenantService) GetUserTenants(ctx context.Context, userID uuid.UUID, params *pagination.Params) (*pagination.Result[entity.Tenant], error) {
	params.Normalize()
	tenants, total, err := s.tenantRepo.GetUserTenants(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(tenants, params, total), nil
}

// UpdateTenantInput represents input for updating a tenant
type UpdateTenantInput struct {
	ID   uuid.UUID
	Name string
}

// UpdateTenant renames a tenant. Settings have their own service.
func (s *TenantService) UpdateTenant(ctx context.Context, input *UpdateTenantInput) (*entity.Tenant, error) {
	tenant, err := s.GetTenant(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		tenant.Name = input.Name
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

// InviteMemberInput represents input for inviting a user to a tenant
type InviteMemberInput struct {
	TenantID uuid.UUID
	Email    string
	Role     string
}

// InviteMember adds an existing user, found by email, to a tenant
func (s *TenantService) InviteMember(ctx context.Context, input *InviteMemberInput) (*entity.TenantMembership, error) {
	role := input.Role
	if role == "" {
		role = entity.MemberRoleMember
	}
	if !entity.ValidMemberRole(role) {
		return nil, apperror.NewBadRequestf("Invalid role %q", role)
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	return s.addMember(ctx, input.TenantID, user.ID, role)
}

func (s *TenantService) addMember(ctx context.Context, tenantID, userID uuid.UUID, role string) (*entity.TenantMembership, error) {
	existing, err := s.tenantRepo.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("User is already a member of this tenant")
	}

	membership := &entity.TenantMembership{
		TenantID: tenantID,
		UserID:   userID,
		Role:     role,
	}
	if err := s.tenantRepo.AddMember(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// RemoveMember removes a user from a tenant. The owner cannot be removed.
func (s *TenantService) RemoveMember(ctx context.Context, tenantID, userID uuid.UUID) error {
	membership, err := s.tenantRepo.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperror.NewNotFoundError("Member")
	}
	if membership.Role == entity.MemberRoleOwner {
		return apperror.NewBadRequestError("The tenant owner cannot be removed")
	}
	return s.tenantRepo.RemoveMember(ctx, tenantID, userID)
}

// GetTenantMembers retrieves all members of a tenant
func (s *TenantService) GetTenantMembers(ctx context.Context, tenantID uuid.UUID) ([]entity.TenantMembership, error) {
	members, err := s.tenantRepo.GetMembers(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	for i := range members {
		members[i].PopulateUserDetails()
	}

	return members, nil
}

// UpdateMemberRole updates a member's role in a tenant
func (s *TenantService) UpdateMemberRole(ctx context.Context, tenantID, userID uuid.UUID, role string) error {
	if !entity.ValidMemberRole(role) {
		return apperror.NewBadRequestf("Invalid role %q", role)
	}
	membership, err := s.tenantRepo.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperror.NewNotFoundError("Member")
	}
	if membership.Role == entity.MemberRoleOwner {
		return apperror.NewBadRequestError("The tenant owner's role cannot be changed")
	}
	return s.tenantRepo.UpdateMemberRole(ctx, tenantID, userID, role)
}

// IsMember reports whether the user belongs to the tenant
func (s *TenantService) IsMember(ctx context.Context, tenantID, userID uuid.UUID) (bool, error) {
	membership, err := s.tenantRepo.GetMembership(ctx, tenantID, userID)
	return membership != nil, err
}

// ListAllTenants retrieves all tenants (for super admin use)
func (s *TenantService) ListAllTenants(ctx context.Context, params *pagination.Params) (*pagination.Result[entity.Tenant], error) {
	params.Normalize()
	tenants, total, err := s.tenantRepo.ListAll(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(tenants, params, total), nil
}

// AssignUserToTenantInput represents input for assigning a user to a tenant
type AssignUserToTenantInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     string
}

// AssignUserToTenant assigns a user to a tenant (for super admin use)
func (s *TenantService) AssignUserToTenant(ctx context.Context, input *AssignUserToTenantInput) (*entity.TenantMembership, error) {
	if _, err := s.GetTenant(ctx, input.TenantID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	role := input.Role
	if role == "" {
		role = entity.MemberRoleMember
	}
	if !entity.ValidMemberRole(role) {
		return nil, apperror.NewBadRequestf("Invalid role %q", role)
	}

	return s.addMember(ctx, input.TenantID, input.UserID, role)
}
