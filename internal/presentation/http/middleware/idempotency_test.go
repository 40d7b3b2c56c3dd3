package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryKeys struct {
	keys map[string]*entity.IdempotencyKey
}

func (m *memoryKeys) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	return m.keys[key+"|"+userID.String()], nil
}

func (m *memoryKeys) Create(_ context.Context, k *entity.IdempotencyKey) error {
	m.keys[k.Key+"|"+k.UserID.String()] = k
	return nil
}

func (m *memoryKeys) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, k := range m.keys {
		if k.IsExpired(now) {
			delete(m.keys, id)
			n++
		}
	}
	return n, nil
}

type idempotencyRig struct {
	router *gin.Engine
	keys   *memoryKeys
	clock  *clock.Fake
	calls  int
	status int
}

func newIdempotencyRig() *idempotencyRig {
	rig := &idempotencyRig{
		keys:   &memoryKeys{keys: make(map[string]*entity.IdempotencyKey)},
		clock:  clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		status: http.StatusCreated,
	}
	userID := uuid.New()
	cfg := IdempotencyConfig{Repo: rig.keys, Clock: rig.clock}

	rig.router = gin.New()
	rig.router.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	rig.router.POST("/orders", IdempotencyRequired(cfg), func(c *gin.Context) {
		rig.calls++
		c.JSON(rig.status, gin.H{"call": rig.calls})
	})
	return rig
}

func (r *idempotencyRig) post(key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyReplay(t *testing.T) {
	rig := newIdempotencyRig()

	first := rig.post("k1", `{"items":1}`)
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get(IdempotencyReplayedHeader))

	second := rig.post("k1", `{"items":1}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(IdempotencyReplayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, rig.calls)
}

func TestIdempotencyDifferentBody(t *testing.T) {
	rig := newIdempotencyRig()
	rig.post("k1", `{"items":1}`)

	w := rig.post("k1", `{"items":2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 1, rig.calls)
}

func TestIdempotencyKeyRequired(t *testing.T) {
	rig := newIdempotencyRig()
	w := rig.post("", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, rig.calls)
}

func TestIdempotencyServerErrorsAreRetried(t *testing.T) {
	rig := newIdempotencyRig()
	rig.status = http.StatusInternalServerError
	rig.post("k1", `{}`)

	rig.status = http.StatusCreated
	w := rig.post("k1", `{}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, rig.calls)
}

func TestIdempotencyKeyExpires(t *testing.T) {
	rig := newIdempotencyRig()
	rig.post("k1", `{}`)

	rig.clock.Advance(IdempotencyKeyTTL + time.Minute)
	w := rig.post("k1", `{}`)
	assert.Empty(t, w.Header().Get(IdempotencyReplayedHeader))
	assert.Equal(t, 2, rig.calls)

	n, err := rig.keys.DeleteExpired(context.Background(), rig.clock.Now().Add(IdempotencyKeyTTL+time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
