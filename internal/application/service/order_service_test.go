package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/internal/domain/event"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/sangkips/storefront-admin/pkg/condition"
	"github.com/sangkips/storefront-admin/pkg/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	exclusive, inclusive := uuid.New(), uuid.New()
	taxTypes := map[uuid.UUID]enum.TaxType{
		exclusive: enum.TaxTypeExclusive,
		inclusive: enum.TaxTypeInclusive,
	}
	line := func(id uuid.UUID, total string) entity.OrderItem {
		return entity.OrderItem{ProductID: id, Total: dec(total)}
	}

	tests := []struct {
		name                       string
		items                      []entity.OrderItem
		discount                   string
		subtotal, disc, tax, total string
	}{
		{"exclusive adds tax", []entity.OrderItem{line(exclusive, "100")}, "0", "100", "0", "16", "116"},
		{"inclusive reports tax", []entity.OrderItem{line(inclusive, "116")}, "0", "116", "0", "16", "116"},
		{"discount spread over both", []entity.OrderItem{line(exclusive, "100"), line(inclusive, "100")}, "50", "200", "50", "22.34", "162"},
		{"discount clamped to subtotal", []entity.OrderItem{line(exclusive, "100")}, "500", "100", "100", "0", "0"},
		{"negative discount ignored", []entity.OrderItem{line(exclusive, "100")}, "-5", "100", "0", "16", "116"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeTotals(tt.items, taxTypes, dec(tt.discount), dec("16"))
			assert.True(t, dec(tt.subtotal).Equal(got.SubTotal), "subtotal %s", got.SubTotal)
			assert.True(t, dec(tt.disc).Equal(got.DiscountTotal), "discount %s", got.DiscountTotal)
			assert.True(t, dec(tt.tax).Equal(got.TaxTotal), "tax %s", got.TaxTotal)
			assert.True(t, dec(tt.total).Equal(got.Total), "total %s", got.Total)
		})
	}
}

type orderFixture struct {
	tenantID  uuid.UUID
	product   entity.Product
	customer  entity.Customer
	orders    *stubOrders
	products  *stubProducts
	customers *stubCustomers
	coupons   *stubCoupons
	campaigns *stubCampaigns
	publisher *recordingPublisher
	service   *OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{tenantID: uuid.New()}
	f.product = entity.Product{
		ID:       uuid.New(),
		TenantID: f.tenantID,
		Name:     "Runner",
		Code:     "SKU-1",
		Price:    dec("100"),
		Quantity: 10,
		TaxType:  enum.TaxTypeExclusive,
		Status:   enum.ProductStatusActive,
		Category: &entity.Category{Slug: "shoes"},
	}
	f.customer = entity.Customer{ID: uuid.New(), TenantID: f.tenantID, Name: "Wanjiru"}

	f.orders = newStubOrders()
	f.products = newStubProducts(f.product)
	f.customers = newStubCustomers(f.customer)
	f.coupons = newStubCoupons(entity.Coupon{
		ID:            uuid.New(),
		TenantID:      f.tenantID,
		Code:          "SAVE10",
		DiscountMode:  pricing.ModePercentage,
		DiscountValue: dec("10"),
		Active:        true,
	})
	f.campaigns = &stubCampaigns{}
	f.publisher = &recordingPublisher{}

	f.service = NewOrderService(OrderDeps{
		Orders:    f.orders,
		Products:  f.products,
		Customers: f.customers,
		Coupons:   f.coupons,
		Campaigns: f.campaigns,
		Settings:  &stubSettings{settings: entity.DefaultTenantSettings()},
		Publisher: f.publisher,
		Clock:     clock.NewFake(testNow),
	})
	return f
}

func (f *orderFixture) input(qty int) *CreateOrderInput {
	customerID := f.customer.ID
	return &CreateOrderInput{
		UserID:        uuid.New(),
		CustomerID:    &customerID,
		PaymentMethod: enum.PaymentMethodCash,
		Items:         []OrderItemInput{{ProductID: f.product.ID, Quantity: qty}},
	}
}

func TestCreateOrder(t *testing.T) {
	t.Run("prices the order and redeems the coupon", func(t *testing.T) {
		f := newOrderFixture(t)
		in := f.input(2)
		code := " save10 "
		in.CouponCode = &code

		order, err := f.service.CreateOrder(tenantCtx(f.tenantID), in)
		require.NoError(t, err)

		assert.Equal(t, enum.OrderStatusPending, order.Status)
		assert.True(t, dec("200").Equal(order.SubTotal))
		assert.True(t, dec("20").Equal(order.DiscountTotal))
		assert.True(t, dec("28.8").Equal(order.TaxTotal))
		assert.True(t, dec("208.8").Equal(order.Total))
		require.NotNil(t, order.CouponCode)
		assert.Equal(t, "SAVE10", *order.CouponCode)

		assert.Equal(t, 2, f.products.decremented[f.product.ID])
		require.Len(t, f.coupons.redemptions, 1)
		assert.Equal(t, order.ID, f.coupons.redemptions[0].OrderID)
		assert.Equal(t, []event.Type{event.CouponRedeemed}, f.publisher.types())
	})

	t.Run("completing at the till awards points", func(t *testing.T) {
		f := newOrderFixture(t)
		double := runningCampaign(enum.CampaignTypePointsMultiplier, 1)
		double.Multiplier = dec("2")
		double.Conditions = condition.Tree{Root: condition.Compare(
			condition.FieldOrderCategories, condition.OpContains, condition.String("shoes"))}
		f.campaigns.active = []entity.Campaign{double}

		in := f.input(1)
		in.Complete = true
		order, err := f.service.CreateOrder(tenantCtx(f.tenantID), in)
		require.NoError(t, err)

		assert.Equal(t, enum.OrderStatusCompleted, order.Status)
		assert.Equal(t, int64(232), order.PointsEarned)
		require.NotNil(t, order.CampaignID)
		assert.Equal(t, double.ID, *order.CampaignID)

		c, _ := f.customers.GetByID(context.Background(), f.customer.ID)
		assert.Equal(t, int64(232), c.PointsBalance)
		assert.Equal(t, 1, c.TotalOrders)
		assert.True(t, dec("116").Equal(c.TotalSpent))
		assert.Equal(t, []event.Type{event.PointsEarned}, f.publisher.types())
	})

	t.Run("insufficient stock", func(t *testing.T) {
		f := newOrderFixture(t)
		f.products.outOfStock = []uuid.UUID{f.product.ID}

		_, err := f.service.CreateOrder(tenantCtx(f.tenantID), f.input(50))
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
		assert.Contains(t, err.Error(), "Runner")
		assert.Empty(t, f.orders.orders)
	})

	t.Run("exhausted coupon gives stock back", func(t *testing.T) {
		f := newOrderFixture(t)
		f.coupons.redeemErr = repository.ErrCouponExhausted
		in := f.input(3)
		code := "SAVE10"
		in.CouponCode = &code

		_, err := f.service.CreateOrder(tenantCtx(f.tenantID), in)
		assert.True(t, rejection(err, ReasonCouponExhausted), "got %v", err)
		assert.Equal(t, 3, f.products.incremented[f.product.ID])
		assert.Empty(t, f.orders.orders)
	})

	t.Run("unknown coupon takes no stock", func(t *testing.T) {
		f := newOrderFixture(t)
		in := f.input(1)
		code := "NOPE"
		in.CouponCode = &code

		_, err := f.service.CreateOrder(tenantCtx(f.tenantID), in)
		assert.True(t, rejection(err, ReasonCouponNotFound))
		assert.Empty(t, f.products.decremented)
	})

	t.Run("disabled payment method", func(t *testing.T) {
		f := newOrderFixture(t)
		in := f.input(1)
		in.PaymentMethod = enum.PaymentMethodCard

		_, err := f.service.CreateOrder(tenantCtx(f.tenantID), in)
		assert.True(t, rejection(err, "payment_method_disabled"))
	})

	t.Run("product not for sale", func(t *testing.T) {
		f := newOrderFixture(t)
		p := f.products.products[f.product.ID]
		p.Status = enum.ProductStatusArchived
		f.products.products[f.product.ID] = p

		_, err := f.service.CreateOrder(tenantCtx(f.tenantID), f.input(1))
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
	})

	t.Run("tenant required", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.service.CreateOrder(context.Background(), f.input(1))
		assert.ErrorIs(t, err, apperror.ErrTenantRequired)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	completedOrder := func(f *orderFixture, points int64) entity.Order {
		customerID := f.customer.ID
		couponID := uuid.New()
		return entity.Order{
			ID:            uuid.New(),
			TenantID:      f.tenantID,
			CustomerID:    &customerID,
			InvoiceNo:     "INV-1",
			Status:        enum.OrderStatusCompleted,
			TotalProducts: 3,
			Total:         dec("300"),
			CouponID:      &couponID,
			PointsEarned:  points,
			Items:         []entity.OrderItem{{ProductID: f.product.ID, Quantity: 3, Total: dec("300")}},
		}
	}

	t.Run("refund reverses what is left of the points", func(t *testing.T) {
		f := newOrderFixture(t)
		f.customer.PointsBalance = 40
		f.customer.TotalOrders = 1
		f.customer.TotalSpent = dec("300")
		f.customers = newStubCustomers(f.customer)
		f.service.customerRepo = f.customers

		o := completedOrder(f, 100)
		f.orders.orders[o.ID] = &o

		got, err := f.service.UpdateOrderStatus(tenantCtx(f.tenantID), o.ID, enum.OrderStatusRefunded)
		require.NoError(t, err)
		assert.Equal(t, enum.OrderStatusRefunded, got.Status)

		assert.Equal(t, 3, f.products.incremented[f.product.ID])
		assert.Equal(t, []uuid.UUID{o.ID}, f.coupons.released)

		c, _ := f.customers.GetByID(context.Background(), f.customer.ID)
		assert.Equal(t, int64(0), c.PointsBalance)
		assert.Equal(t, 0, c.TotalOrders)
		assert.True(t, c.TotalSpent.IsZero())
		require.Len(t, f.customers.ledger, 1)
		assert.Equal(t, int64(-40), f.customers.ledger[0].Points)
		assert.Equal(t, enum.PointSourceReversal, f.customers.ledger[0].Source)
		assert.Equal(t, []event.Type{event.PointsReversed}, f.publisher.types())
	})

	t.Run("cancel from pending leaves the customer alone", func(t *testing.T) {
		f := newOrderFixture(t)
		o := completedOrder(f, 0)
		o.Status = enum.OrderStatusPending
		f.orders.orders[o.ID] = &o

		_, err := f.service.UpdateOrderStatus(tenantCtx(f.tenantID), o.ID, enum.OrderStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, 3, f.products.incremented[f.product.ID])
		assert.Empty(t, f.customers.ledger)
		c, _ := f.customers.GetByID(context.Background(), f.customer.ID)
		assert.Equal(t, 0, c.TotalOrders)
	})

	t.Run("invalid transition", func(t *testing.T) {
		f := newOrderFixture(t)
		o := completedOrder(f, 0)
		o.Status = enum.OrderStatusPending
		f.orders.orders[o.ID] = &o

		_, err := f.service.UpdateOrderStatus(tenantCtx(f.tenantID), o.ID, enum.OrderStatusRefunded)
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)
		assert.Empty(t, f.products.incremented)
	})

	t.Run("missing order", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.service.UpdateOrderStatus(tenantCtx(f.tenantID), uuid.New(), enum.OrderStatusCompleted)
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
	})
}
