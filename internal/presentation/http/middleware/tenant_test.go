package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	infraRepo "github.com/sangkips/storefront-admin/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTenants struct {
	repository.TenantRepository
	tenants     map[uuid.UUID]*entity.Tenant
	memberships map[uuid.UUID]string
}

func (s *stubTenants) GetByID(_ context.Context, id uuid.UUID) (*entity.Tenant, error) {
	return s.tenants[id], nil
}

func (s *stubTenants) GetBySlug(_ context.Context, slug string) (*entity.Tenant, error) {
	for _, t := range s.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, nil
}

func (s *stubTenants) GetMembership(_ context.Context, tenantID, userID uuid.UUID) (*entity.TenantMembership, error) {
	role, ok := s.memberships[userID]
	if !ok {
		return nil, nil
	}
	return &entity.TenantMembership{TenantID: tenantID, UserID: userID, Role: role}, nil
}

func TestExtractTenantFromHost(t *testing.T) {
	slug, err := ExtractTenantFromHost("acme.shop.example.com:8080")
	require.NoError(t, err)
	assert.Equal(t, "acme", slug)

	_, err = ExtractTenantFromHost("localhost:8080")
	assert.Error(t, err)
}

type tenantRig struct {
	router *gin.Engine
	tenant *entity.Tenant
	member uuid.UUID
	owner  uuid.UUID
}

func newTenantRig() *tenantRig {
	rig := &tenantRig{
		tenant: &entity.Tenant{ID: uuid.New(), Slug: "acme"},
		member: uuid.New(),
		owner:  uuid.New(),
	}
	repo := &stubTenants{
		tenants: map[uuid.UUID]*entity.Tenant{rig.tenant.ID: rig.tenant},
		memberships: map[uuid.UUID]string{
			rig.member: entity.MemberRoleMember,
			rig.owner:  entity.MemberRoleOwner,
		},
	}

	rig.router = gin.New()
	rig.router.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User"); raw != "" {
			c.Set("user_id", uuid.MustParse(raw))
		}
		if c.GetHeader("X-Test-Admin") != "" {
			c.Set("user_roles", []string{"super-admin"})
		}
	})
	rig.router.Use(TenantMiddleware(repo), RequireTenant())
	rig.router.GET("/whoami", func(c *gin.Context) {
		ctxTenant, _ := infraRepo.GetTenantID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"tenant":  GetTenantID(c).String(),
			"context": ctxTenant.String(),
			"role":    c.GetString("member_role"),
		})
	})
	rig.router.DELETE("/whoami", RequireMemberRole(entity.MemberRoleOwner), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return rig
}

func (r *tenantRig) do(method string, user uuid.UUID, headers map[string]string, host string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/whoami", nil)
	if host != "" {
		req.Host = host
	}
	if user != uuid.Nil {
		req.Header.Set("X-Test-User", user.String())
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.router.ServeHTTP(w, req)
	return w
}

func TestTenantMiddleware(t *testing.T) {
	rig := newTenantRig()
	byHeader := map[string]string{TenantHeader: rig.tenant.ID.String()}

	t.Run("header", func(t *testing.T) {
		w := rig.do(http.MethodGet, rig.member, byHeader, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"tenant":"`+rig.tenant.ID.String()+`","context":"`+rig.tenant.ID.String()+`","role":"member"}`, w.Body.String())
	})

	t.Run("subdomain", func(t *testing.T) {
		w := rig.do(http.MethodGet, rig.member, nil, "acme.shop.example.com")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown store", func(t *testing.T) {
		w := rig.do(http.MethodGet, rig.member, map[string]string{TenantHeader: uuid.NewString()}, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = rig.do(http.MethodGet, rig.member, map[string]string{TenantHeader: "not-a-uuid"}, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("not a member", func(t *testing.T) {
		w := rig.do(http.MethodGet, uuid.New(), byHeader, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("super admin enters any store", func(t *testing.T) {
		headers := map[string]string{TenantHeader: rig.tenant.ID.String(), "X-Test-Admin": "1"}
		w := rig.do(http.MethodGet, uuid.New(), headers, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no store", func(t *testing.T) {
		w := rig.do(http.MethodGet, rig.member, nil, "localhost")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("member role", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, rig.do(http.MethodDelete, rig.member, byHeader, "").Code)
		assert.Equal(t, http.StatusNoContent, rig.do(http.MethodDelete, rig.owner, byHeader, "").Code)
	})
}
