package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	repository.UserRepository
	users    map[uuid.UUID]*entity.User
	roles    map[uint]entity.Role
	replaced map[uuid.UUID][]uint
	deleted  []uuid.UUID
}

func (s *stubUsers) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (s *stubUsers) GetWithRoles(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return s.GetByID(ctx, id)
}

func (s *stubUsers) ReplaceRoles(_ context.Context, userID uuid.UUID, roleIDs []uint) error {
	s.replaced[userID] = roleIDs
	u := s.users[userID]
	u.Roles = nil
	for _, id := range roleIDs {
		u.Roles = append(u.Roles, s.roles[id])
	}
	return nil
}

func (s *stubUsers) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubRoles struct {
	repository.RoleRepository
	roles map[uint]entity.Role
}

func (s *stubRoles) GetByIDs(_ context.Context, ids []uint) ([]entity.Role, error) {
	var out []entity.Role
	for _, id := range ids {
		if r, ok := s.roles[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func newUserFixture() (*UserService, *stubUsers, *entity.User, *entity.User) {
	roles := map[uint]entity.Role{
		1: {ID: 1, Name: superAdminRole},
		2: {ID: 2, Name: "user"},
	}
	admin := &entity.User{ID: uuid.New(), Roles: []entity.Role{roles[1]}}
	staff := &entity.User{ID: uuid.New(), Roles: []entity.Role{roles[2]}}
	users := &stubUsers{
		users:    map[uuid.UUID]*entity.User{admin.ID: admin, staff.ID: staff},
		roles:    roles,
		replaced: make(map[uuid.UUID][]uint),
	}
	return NewUserService(users, &stubRoles{roles: roles}, nil), users, admin, staff
}

func TestUpdateUserRoles(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces with deduplicated ids", func(t *testing.T) {
		svc, users, admin, staff := newUserFixture()
		out, err := svc.UpdateUserRoles(ctx, &UpdateUserRolesInput{ActorID: admin.ID, UserID: staff.ID, RoleIDs: []uint{2, 1, 2}})
		require.NoError(t, err)
		assert.Equal(t, []uint{1, 2}, users.replaced[staff.ID])
		assert.ElementsMatch(t, []string{superAdminRole, "user"}, out.RoleNames())
	})

	t.Run("unknown role", func(t *testing.T) {
		svc, users, admin, staff := newUserFixture()
		_, err := svc.UpdateUserRoles(ctx, &UpdateUserRolesInput{ActorID: admin.ID, UserID: staff.ID, RoleIDs: []uint{2, 9}})
		appErr := apperror.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
		require.Len(t, appErr.Errors, 1)
		assert.Equal(t, "role_ids[1]", appErr.Errors[0].Field)
		assert.Empty(t, users.replaced)
	})

	t.Run("cannot drop own super-admin", func(t *testing.T) {
		svc, users, admin, _ := newUserFixture()
		_, err := svc.UpdateUserRoles(ctx, &UpdateUserRolesInput{ActorID: admin.ID, UserID: admin.ID, RoleIDs: []uint{2}})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
		assert.Empty(t, users.replaced)
	})

	t.Run("missing user", func(t *testing.T) {
		svc, _, admin, _ := newUserFixture()
		_, err := svc.UpdateUserRoles(ctx, &UpdateUserRolesInput{ActorID: admin.ID, UserID: uuid.New()})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	svc, users, admin, staff := newUserFixture()

	err := svc.DeleteUser(ctx, admin.ID, admin.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	err = svc.DeleteUser(ctx, admin.ID, uuid.New())
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)

	require.NoError(t, svc.DeleteUser(ctx, admin.ID, staff.ID))
	assert.Equal(t, []uuid.UUID{staff.ID}, users.deleted)
}
