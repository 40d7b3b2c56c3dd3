package service

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/internal/domain/event"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventFixture struct {
	tenantID  uuid.UUID
	event     entity.EarningEvent
	customer  entity.Customer
	events    *stubEvents
	customers *stubCustomers
	publisher *recordingPublisher
	service   *EventService
}

func newEventFixture(t *testing.T, mutate func(e *entity.EarningEvent)) *eventFixture {
	t.Helper()
	f := &eventFixture{tenantID: uuid.New()}
	f.event = entity.EarningEvent{
		ID:                   uuid.New(),
		TenantID:             f.tenantID,
		Name:                 "Store opening",
		Type:                 enum.EventTypeQR,
		Points:               50,
		Token:                "tok123",
		MaxClaimsPerCustomer: 1,
		Active:               true,
	}
	if mutate != nil {
		mutate(&f.event)
	}
	f.customer = entity.Customer{ID: uuid.New(), TenantID: f.tenantID, PointsBalance: 10}

	f.events = newStubEvents(f.event)
	f.customers = newStubCustomers(f.customer)
	f.events.customers = f.customers
	f.publisher = &recordingPublisher{}
	f.service = NewEventService(f.events, f.customers, f.publisher, clock.NewFake(testNow), "https://shop.example/claim")
	return f
}

func (f *eventFixture) claim(code, key string) (*ClaimResult, error) {
	return f.service.ClaimEvent(tenantCtx(f.tenantID), &ClaimInput{
		Code:           code,
		CustomerID:     f.customer.ID,
		IdempotencyKey: key,
	})
}

func TestParseCode(t *testing.T) {
	tenant, token := parseCode(" abc:tok ")
	assert.Equal(t, "abc", tenant)
	assert.Equal(t, "tok", token)

	tenant, token = parseCode("tok")
	assert.Empty(t, tenant)
	assert.Equal(t, "tok", token)
}

func TestClaimEvent(t *testing.T) {
	t.Run("awards points", func(t *testing.T) {
		f := newEventFixture(t, nil)

		res, err := f.claim(Payload(&f.event), "k1")
		require.NoError(t, err)
		assert.False(t, res.Replayed)
		assert.Equal(t, int64(50), res.Points)
		assert.Equal(t, int64(60), res.Balance)

		require.Len(t, f.events.claims, 1)
		require.NotNil(t, f.events.claims[0].IdempotencyKey)
		assert.Equal(t, "k1", *f.events.claims[0].IdempotencyKey)
		require.Len(t, f.customers.ledger, 1)
		assert.Equal(t, enum.PointSourceEvent, f.customers.ledger[0].Source)
		assert.Equal(t, []event.Type{event.EventClaimed}, f.publisher.types())
	})

	t.Run("bare token", func(t *testing.T) {
		f := newEventFixture(t, nil)
		_, err := f.claim("tok123", "")
		require.NoError(t, err)
		require.Len(t, f.events.claims, 1)
		assert.Nil(t, f.events.claims[0].IdempotencyKey)
	})

	t.Run("replayed key returns the first claim", func(t *testing.T) {
		f := newEventFixture(t, nil)
		key := "k1"
		f.events.prior = &entity.EventClaim{ID: uuid.New(), EventID: f.event.ID, CustomerID: f.customer.ID, Points: 50, IdempotencyKey: &key}
		f.events.count = 1

		res, err := f.claim("tok123", key)
		require.NoError(t, err)
		assert.True(t, res.Replayed)
		assert.Equal(t, f.events.prior.ID, res.Claim.ID)
		assert.Empty(t, f.customers.ledger)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("replayed key for another customer", func(t *testing.T) {
		f := newEventFixture(t, nil)
		key := "k1"
		f.events.prior = &entity.EventClaim{ID: uuid.New(), CustomerID: uuid.New(), IdempotencyKey: &key}

		_, err := f.claim("tok123", key)
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)
	})

	t.Run("code from another store", func(t *testing.T) {
		f := newEventFixture(t, nil)
		_, err := f.claim(uuid.NewString()+":tok123", "")
		assert.True(t, rejection(err, ReasonEventWrongTenant))
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newEventFixture(t, nil)
		_, err := f.claim("nope", "")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
	})

	t.Run("inactive", func(t *testing.T) {
		f := newEventFixture(t, func(e *entity.EarningEvent) { e.Active = false })
		_, err := f.claim("tok123", "")
		assert.True(t, rejection(err, ReasonEventInactive))
	})

	t.Run("ended", func(t *testing.T) {
		ended := testNow
		f := newEventFixture(t, func(e *entity.EarningEvent) { e.EndsAt = &ended })
		_, err := f.claim("tok123", "")
		assert.True(t, rejection(err, ReasonEventExpired))
	})

	t.Run("per customer limit", func(t *testing.T) {
		f := newEventFixture(t, nil)
		f.events.count = 1
		_, err := f.claim("tok123", "")
		assert.True(t, rejection(err, ReasonEventClaimLimit))
		assert.Empty(t, f.customers.ledger)
	})

	t.Run("total cap reached while claiming", func(t *testing.T) {
		f := newEventFixture(t, nil)
		f.events.claimErr = repository.ErrEventCapReached
		_, err := f.claim("tok123", "")
		assert.True(t, rejection(err, ReasonEventCapReached))
		assert.Empty(t, f.customers.ledger)
	})

	t.Run("second claim in the same window", func(t *testing.T) {
		f := newEventFixture(t, nil)
		_, err := f.claim("tok123", "a")
		require.NoError(t, err)

		_, err = f.claim("tok123", "b")
		assert.True(t, rejection(err, ReasonEventClaimLimit))
		assert.Len(t, f.events.claims, 1)
		assert.Len(t, f.customers.ledger, 1)
	})

	t.Run("per customer limit lost to a concurrent claim", func(t *testing.T) {
		f := newEventFixture(t, nil)
		f.events.claimErr = repository.ErrEventClaimLimit
		_, err := f.claim("tok123", "")
		assert.True(t, rejection(err, ReasonEventClaimLimit))
		assert.Empty(t, f.customers.ledger)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("failed credit records no claim", func(t *testing.T) {
		f := newEventFixture(t, func(e *entity.EarningEvent) { e.Points = -100 })
		_, err := f.claim("tok123", "")
		require.ErrorIs(t, err, repository.ErrInsufficientPoints)
		assert.Empty(t, f.events.claims)
		assert.Empty(t, f.customers.ledger)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("total cap already reached", func(t *testing.T) {
		limit := 5
		f := newEventFixture(t, func(e *entity.EarningEvent) {
			e.TotalClaimCap = &limit
			e.ClaimCount = 5
		})
		_, err := f.claim("tok123", "")
		assert.True(t, rejection(err, ReasonEventCapReached))
	})
}

func TestQRPayload(t *testing.T) {
	f := newEventFixture(t, nil)

	out, err := f.service.QRPayload(tenantCtx(f.tenantID), f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, f.tenantID.String()+":tok123", out.Payload)

	u, err := url.Parse(out.URL)
	require.NoError(t, err)
	assert.Equal(t, "shop.example", u.Host)
	assert.Equal(t, out.Payload, u.Query().Get("code"))

	f.service.claimBaseURL = ""
	out, err = f.service.QRPayload(tenantCtx(f.tenantID), f.event.ID)
	require.NoError(t, err)
	assert.Empty(t, out.URL)
}
