package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/storefront-admin/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestWithHeaders(t *testing.T) {
	got := withHeaders([]string{"Authorization", "Idempotency-Key"}, requiredHeaders...)
	assert.Equal(t, []string{"Authorization", "Idempotency-Key", TenantHeader, RequestIDHeader}, got)
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware(&config.CORSConfig{AllowedOrigins: []string{"https://admin.example.com"}}))
	router.POST("/orders", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/orders", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
}
