package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type signup struct {
	Email string `json:"email" binding:"required,email"`
	Age   int    `json:"age" binding:"gte=18"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var out APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestBindError(t *testing.T) {
	router := gin.New()
	router.POST("/signup", func(c *gin.Context) {
		var req signup
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}
		OK(c, "ok", req)
	})

	do := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do(`{"email":"nope","age":12}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.False(t, body.Success)
	errs, ok := body.Errors.([]interface{})
	require.True(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, "must be a valid email", errs[0].(map[string]interface{})["message"])
	assert.Equal(t, "must be at least 18", errs[1].(map[string]interface{})["message"])

	w = do(`{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(`{"email":"a@b.co","age":30}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorCarriesReason(t *testing.T) {
	router := gin.New()
	router.GET("/rejected", func(c *gin.Context) {
		Error(c, apperror.NewRejection("coupon_expired", "Coupon has expired"))
	})
	router.GET("/boom", func(c *gin.Context) {
		Error(c, errors.New("pq: connection refused"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rejected", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "coupon_expired", body.Reason)
	assert.Equal(t, "Coupon has expired", body.Message)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestNewUserResponse(t *testing.T) {
	photo := "https://cdn.example/p.png"
	u := &entity.User{
		ID:        uuid.New(),
		FirstName: "Ada",
		LastName:  "Wanjiru",
		Email:     "ada@shop.example",
		Password:  "hash",
		Photo:     &photo,
		Roles:     []entity.Role{{Name: "admin", Permissions: []entity.Permission{{Name: "manage-orders"}}}},
	}

	out := NewUserResponse(u)
	assert.Equal(t, "Ada Wanjiru", out.FullName)
	assert.Equal(t, []string{"admin"}, out.Roles)
	assert.Equal(t, []string{"manage-orders"}, out.Permissions)
	assert.False(t, out.Verified)
	assert.Nil(t, out.CreatedAt)

	raw, err := json.Marshal(NewUserResponse(&entity.User{}))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"permissions":[]`)
	assert.NotContains(t, string(raw), "password")
}
