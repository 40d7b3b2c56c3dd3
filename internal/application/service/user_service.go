package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/pagination"
)

const superAdminRole = "super-admin"

// UserService is the platform side account administration. Store level
// access is handled by TenantService memberships.
type UserService struct {
	userRepo       repository.UserRepository
	roleRepo       repository.RoleRepository
	permissionRepo repository.PermissionRepository
}

func NewUserService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	permissionRepo repository.PermissionRepository,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
	}
}

func (s *UserService) ListUsers(ctx context.Context, params *pagination.Params, search string) (*pagination.Result[entity.User], error) {
	params.Normalize()

	users, total, err := s.userRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(users, params, total), nil
}

// GetUser loads the user with roles and their permissions
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

type UpdateUserRolesInput struct {
	ActorID uuid.UUID
	UserID  uuid.UUID
	RoleIDs []uint
}

// UpdateUserRoles replaces the user's global roles. Every id must name an
// existing role, and an actor cannot drop their own super-admin role.
func (s *UserService) UpdateUserRoles(ctx context.Context, input *UpdateUserRolesInput) (*entity.User, error) {
	user, err := s.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	ids := slices.Clone(input.RoleIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	roles, err := s.roleRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(roles) != len(ids) {
		var fields []apperror.FieldError
		for i, id := range ids {
			if !slices.ContainsFunc(roles, func(r entity.Role) bool { return r.ID == id }) {
				fields = append(fields, apperror.FieldError{
					Field:   fmt.Sprintf("role_ids[%d]", i),
					Message: fmt.Sprintf("role %d does not exist", id),
				})
			}
		}
		return nil, apperror.NewValidationError(fields)
	}

	keepsSuperAdmin := slices.ContainsFunc(roles, func(r entity.Role) bool { return r.Name == superAdminRole })
	if input.ActorID == user.ID && slices.Contains(user.RoleNames(), superAdminRole) && !keepsSuperAdmin {
		return nil, apperror.NewBadRequestError("You cannot remove your own super-admin role")
	}

	if err := s.userRepo.ReplaceRoles(ctx, user.ID, ids); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID.String()).Uints("role_ids", ids).Msg("user roles replaced")

	return s.GetUser(ctx, user.ID)
}

// DeleteUser soft deletes an account other than the actor's own
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return apperror.NewBadRequestError("Cannot delete your own account")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}
	return s.userRepo.Delete(ctx, userID)
}

func (s *UserService) ListRoles(ctx context.Context) ([]entity.Role, error) {
	return s.roleRepo.List(ctx)
}

func (s *UserService) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	return s.permissionRepo.List(ctx)
}
