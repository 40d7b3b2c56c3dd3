package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/sangkips/storefront-admin/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	tok, ok = bearerToken("bearer   abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, ok := bearerToken(h)
		assert.False(t, ok, h)
	}
}

func TestAuthMiddleware(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	jwtManager := utils.NewJWTManager("secret", time.Hour, 24*time.Hour, clock.NewFake(now))
	userID, tenantID := uuid.New(), uuid.New()

	access, err := jwtManager.GenerateAccessToken(userID, tenantID, "a@b.co", []string{"admin"}, []string{"manage-orders"})
	require.NoError(t, err)
	refresh, err := jwtManager.GenerateRefreshToken(userID, tenantID)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/orders", AuthMiddleware(jwtManager), RequirePermission("manage-orders"), func(c *gin.Context) {
		assert.Equal(t, userID, c.MustGet("user_id"))
		assert.Equal(t, tenantID, c.MustGet("token_tenant_id"))
		c.Status(http.StatusNoContent)
	})
	r.GET("/coupons", AuthMiddleware(jwtManager), RequirePermission("manage-coupons"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/admin", AuthMiddleware(jwtManager), RequireRole("super-admin", "admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	call := func(path, header string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, call("/orders", "Bearer "+access))
	assert.Equal(t, http.StatusUnauthorized, call("/orders", ""))
	assert.Equal(t, http.StatusUnauthorized, call("/orders", "Bearer "+refresh))
	assert.Equal(t, http.StatusForbidden, call("/coupons", "Bearer "+access))
	assert.Equal(t, http.StatusNoContent, call("/admin", "Bearer "+access))
}
