package middleware

import (
	"errors"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	infraRepo "github.com/sangkips/storefront-admin/internal/infrastructure/repository"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/response"
	"github.com/sangkips/storefront-admin/pkg/apperror"
)

// TenantHeader selects a store explicitly
const TenantHeader = "X-Tenant-ID"

// ExtractTenantFromHost extracts tenant slug from subdomain
// e.g., "acme.shop.example.com" -> "acme"
func ExtractTenantFromHost(host string) (string, error) {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return "", errors.New("invalid subdomain")
	}
	return parts[0], nil
}

// TenantMiddleware resolves the store of the request and checks that the
// user belongs to it. The store comes from the X-Tenant-ID header, then the
// subdomain, then the tenant claim of the access token. Super admins may
// enter any store.
func TenantMiddleware(tenantRepo repository.TenantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tenant, err := resolveTenant(c, tenantRepo)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if tenant == nil {
			c.Set("tenant_id", uuid.Nil)
			c.Next()
			return
		}

		if userID, ok := currentUser(c); ok && !hasRole(c, "super-admin") {
			membership, err := tenantRepo.GetMembership(ctx, tenant.ID, userID)
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			if membership == nil {
				response.Forbidden(c, "Access denied to this tenant")
				c.Abort()
				return
			}
			c.Set("member_role", membership.Role)
		}

		c.Set("tenant_id", tenant.ID)
		c.Set("tenant", tenant)
		c.Request = c.Request.WithContext(infraRepo.WithTenant(ctx, tenant.ID))

		c.Next()
	}
}

func resolveTenant(c *gin.Context, tenantRepo repository.TenantRepository) (*entity.Tenant, error) {
	ctx := c.Request.Context()

	if raw := c.GetHeader(TenantHeader); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errTenantNotFound
		}
		return found(tenantRepo.GetByID(ctx, id))
	}

	if slug, err := ExtractTenantFromHost(c.Request.Host); err == nil {
		return found(tenantRepo.GetBySlug(ctx, slug))
	}

	if v, ok := c.Get("token_tenant_id"); ok {
		if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
			return found(tenantRepo.GetByID(ctx, id))
		}
	}
	return nil, nil
}

var errTenantNotFound = apperror.NewNotFoundError("Tenant")

func found(tenant *entity.Tenant, err error) (*entity.Tenant, error) {
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, errTenantNotFound
	}
	return tenant, nil
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func hasRole(c *gin.Context, role string) bool {
	return slices.Contains(contextStrings(c, "user_roles"), role)
}

// RequireTenant ensures a valid tenant context exists
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetTenantID(c) == uuid.Nil {
			response.BadRequest(c, "Tenant context required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireMemberRole limits a route to members holding one of roles in the
// current store. Super admins always pass.
func RequireMemberRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hasRole(c, "super-admin") {
			c.Next()
			return
		}
		role := c.GetString("member_role")
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "Your role in this store does not allow this action")
		c.Abort()
	}
}

// GetTenantID retrieves the tenant ID from gin context
func GetTenantID(c *gin.Context) uuid.UUID {
	tenantID, exists := c.Get("tenant_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := tenantID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
