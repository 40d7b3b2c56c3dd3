package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/internal/domain/event"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	infraRepo "github.com/sangkips/storefront-admin/internal/infrastructure/repository"
	"github.com/shopspring/decimal"
)

// In-memory repositories. Each embeds its interface so calls the tests do not
// expect panic on the nil receiver.

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func tenantCtx(tenantID uuid.UUID) context.Context {
	return infraRepo.WithTenant(context.Background(), tenantID)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type stubSettings struct {
	repository.SettingsRepository
	settings entity.TenantSettings
}

func (s *stubSettings) Get(_ context.Context, _ uuid.UUID) (*entity.TenantSettings, error) {
	out := s.settings
	return &out, nil
}

func (s *stubSettings) Update(_ context.Context, _ uuid.UUID, settings *entity.TenantSettings) error {
	s.settings = *settings
	return nil
}

type stubProducts struct {
	repository.ProductRepository
	products    map[uuid.UUID]entity.Product
	outOfStock  []uuid.UUID
	decremented map[uuid.UUID]int
	incremented map[uuid.UUID]int
}

func newStubProducts(products ...entity.Product) *stubProducts {
	s := &stubProducts{
		products:    make(map[uuid.UUID]entity.Product),
		decremented: make(map[uuid.UUID]int),
		incremented: make(map[uuid.UUID]int),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *stubProducts) GetByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubProducts) AtomicDecrementBatch(_ context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	if len(s.outOfStock) > 0 {
		return s.outOfStock, nil
	}
	for id, qty := range decrements {
		s.decremented[id] += qty
	}
	return nil, nil
}

func (s *stubProducts) AtomicIncrementBatch(_ context.Context, increments map[uuid.UUID]int) error {
	for id, qty := range increments {
		s.incremented[id] += qty
	}
	return nil
}

func (s *stubProducts) Create(_ context.Context, p *entity.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.products[p.ID] = *p
	return nil
}

func (s *stubProducts) Update(_ context.Context, p *entity.Product) error {
	s.products[p.ID] = *p
	return nil
}

func (s *stubProducts) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *stubProducts) GetBySlug(_ context.Context, slug string) (*entity.Product, error) {
	return s.find(func(p entity.Product) bool { return p.Slug == slug }), nil
}

func (s *stubProducts) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	return s.find(func(p entity.Product) bool { return p.Code == code }), nil
}

func (s *stubProducts) find(match func(entity.Product) bool) *entity.Product {
	for _, p := range s.products {
		if match(p) {
			out := p
			return &out
		}
	}
	return nil
}

type stubPriceHistory struct {
	repository.PriceHistoryRepository
	entries []entity.PriceHistory
}

func (s *stubPriceHistory) Create(_ context.Context, entry *entity.PriceHistory) error {
	s.entries = append(s.entries, *entry)
	return nil
}

type stubCustomers struct {
	repository.CustomerRepository
	mu        sync.Mutex
	customers map[uuid.UUID]*entity.Customer
	ledger    []entity.PointTransaction
}

func newStubCustomers(customers ...entity.Customer) *stubCustomers {
	s := &stubCustomers{customers: make(map[uuid.UUID]*entity.Customer)}
	for i := range customers {
		c := customers[i]
		s.customers[c.ID] = &c
	}
	return s
}

func (s *stubCustomers) GetByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (s *stubCustomers) Create(_ context.Context, c *entity.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	stored := *c
	s.customers[c.ID] = &stored
	return nil
}

func (s *stubCustomers) GetByEmail(_ context.Context, email string) (*entity.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.Email != nil && *c.Email == email {
			out := *c
			return &out, nil
		}
	}
	return nil, nil
}

func (s *stubCustomers) GetByPhone(_ context.Context, phone string) (*entity.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.Phone != nil && *c.Phone == phone {
			out := *c
			return &out, nil
		}
	}
	return nil, nil
}

func (s *stubCustomers) ApplyPoints(_ context.Context, tx *entity.PointTransaction) (*entity.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[tx.CustomerID]
	if !ok {
		return nil, repository.ErrInsufficientPoints
	}
	if c.PointsBalance+tx.Points < 0 {
		return nil, repository.ErrInsufficientPoints
	}
	c.PointsBalance += tx.Points
	if tx.Points > 0 {
		c.LifetimePoints += tx.Points
	}
	tx.BalanceAfter = c.PointsBalance
	tx.CreatedAt = testNow
	s.ledger = append(s.ledger, *tx)
	out := *c
	return &out, nil
}

func (s *stubCustomers) RecordOrder(_ context.Context, id uuid.UUID, orders int, spent decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.customers[id]; ok {
		c.TotalOrders += orders
		c.TotalSpent = c.TotalSpent.Add(spent)
	}
	return nil
}

type stubCoupons struct {
	repository.CouponRepository
	coupons     map[string]*entity.Coupon
	used        int64
	redeemErr   error
	redemptions []entity.CouponRedemption
	released    []uuid.UUID
}

func newStubCoupons(coupons ...entity.Coupon) *stubCoupons {
	s := &stubCoupons{coupons: make(map[string]*entity.Coupon)}
	for i := range coupons {
		c := coupons[i]
		s.coupons[c.Code] = &c
	}
	return s
}

func (s *stubCoupons) GetByCode(_ context.Context, code string) (*entity.Coupon, error) {
	c, ok := s.coupons[code]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (s *stubCoupons) CountRedemptions(_ context.Context, _, _ uuid.UUID) (int64, error) {
	return s.used, nil
}

func (s *stubCoupons) Redeem(_ context.Context, r *entity.CouponRedemption) error {
	if s.redeemErr != nil {
		return s.redeemErr
	}
	s.redemptions = append(s.redemptions, *r)
	return nil
}

func (s *stubCoupons) Release(_ context.Context, orderID uuid.UUID) error {
	s.released = append(s.released, orderID)
	return nil
}

type stubCampaigns struct {
	repository.CampaignRepository
	active []entity.Campaign
}

func (s *stubCampaigns) ListActive(_ context.Context) ([]entity.Campaign, error) {
	return s.active, nil
}

type stubOrders struct {
	repository.OrderRepository
	orders map[uuid.UUID]*entity.Order
}

func newStubOrders(orders ...entity.Order) *stubOrders {
	s := &stubOrders{orders: make(map[uuid.UUID]*entity.Order)}
	for i := range orders {
		o := orders[i]
		s.orders[o.ID] = &o
	}
	return s
}

func (s *stubOrders) Create(_ context.Context, o *entity.Order) error {
	stored := *o
	s.orders[o.ID] = &stored
	return nil
}

func (s *stubOrders) GetByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	out := *o
	return &out, nil
}

func (s *stubOrders) TransitionStatus(_ context.Context, id uuid.UUID, from, to enum.OrderStatus, at time.Time) error {
	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return repository.ErrStaleStatus
	}
	o.Status = to
	switch to {
	case enum.OrderStatusCompleted:
		o.CompletedAt = &at
	case enum.OrderStatusCancelled:
		o.CancelledAt = &at
	case enum.OrderStatusRefunded:
		o.RefundedAt = &at
	}
	return nil
}

func (s *stubOrders) SetLoyalty(_ context.Context, id uuid.UUID, points int64, campaignID *uuid.UUID) error {
	if o, ok := s.orders[id]; ok {
		o.PointsEarned = points
		o.CampaignID = campaignID
	}
	return nil
}

type stubEvents struct {
	repository.EarningEventRepository
	events    map[string]*entity.EarningEvent
	customers *stubCustomers
	prior     *entity.EventClaim
	count     int64
	claimErr  error
	claims    []entity.EventClaim
}

func newStubEvents(events ...entity.EarningEvent) *stubEvents {
	s := &stubEvents{events: make(map[string]*entity.EarningEvent)}
	for i := range events {
		e := events[i]
		s.events[e.Token] = &e
	}
	return s
}

func (s *stubEvents) GetByToken(_ context.Context, token string) (*entity.EarningEvent, error) {
	e, ok := s.events[token]
	if !ok {
		return nil, nil
	}
	out := *e
	return &out, nil
}

func (s *stubEvents) GetByID(_ context.Context, id uuid.UUID) (*entity.EarningEvent, error) {
	for _, e := range s.events {
		if e.ID == id {
			out := *e
			return &out, nil
		}
	}
	return nil, nil
}

func (s *stubEvents) GetClaimByKey(_ context.Context, _ uuid.UUID, key string) (*entity.EventClaim, error) {
	if s.prior != nil && s.prior.IdempotencyKey != nil && *s.prior.IdempotencyKey == key {
		return s.prior, nil
	}
	return nil, nil
}

func (s *stubEvents) CountClaims(_ context.Context, _, _ uuid.UUID) (int64, error) {
	return s.count, nil
}

// Claim writes nothing unless the whole claim succeeds
func (s *stubEvents) Claim(ctx context.Context, c *entity.EventClaim, entry *entity.PointTransaction, maxPerCustomer int) (*entity.Customer, error) {
	if s.claimErr != nil {
		return nil, s.claimErr
	}
	held := s.count
	for _, prev := range s.claims {
		if prev.CustomerID == c.CustomerID {
			held++
		}
	}
	if held >= int64(maxPerCustomer) {
		return nil, repository.ErrEventClaimLimit
	}
	customer, err := s.customers.ApplyPoints(ctx, entry)
	if err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.claims = append(s.claims, *c)
	return customer, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.LoyaltyEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...event.LoyaltyEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
