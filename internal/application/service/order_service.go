package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/internal/domain/enum"
	"github.com/sangkips/storefront-admin/internal/domain/event"
	"github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/pkg/apperror"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/sangkips/storefront-admin/pkg/pagination"
	"github.com/sangkips/storefront-admin/pkg/utils"
	"github.com/shopspring/decimal"
)

// OrderService handles order-related operations
type OrderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	couponRepo   repository.CouponRepository
	campaignRepo repository.CampaignRepository
	settingsRepo repository.SettingsRepository
	alerter      *StockAlerter
	publisher    event.Publisher
	clock        clock.Clock
}

// OrderDeps groups the collaborators of the order service
type OrderDeps struct {
	Orders    repository.OrderRepository
	Products  repository.ProductRepository
	Customers repository.CustomerRepository
	Coupons   repository.CouponRepository
	Campaigns repository.CampaignRepository
	Settings  repository.SettingsRepository
	Alerter   *StockAlerter
	Publisher event.Publisher
	Clock     clock.Clock
}

// NewOrderService creates a new order service
func NewOrderService(deps OrderDeps) *OrderService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &OrderService{
		orderRepo:    deps.Orders,
		productRepo:  deps.Products,
		customerRepo: deps.Customers,
		couponRepo:   deps.Coupons,
		campaignRepo: deps.Campaigns,
		settingsRepo: deps.Settings,
		alerter:      deps.Alerter,
		publisher:    deps.Publisher,
		clock:        clk,
	}
}

// OrderItemInput represents an item in an order
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput represents the create order input
type CreateOrderInput struct {
	UserID        uuid.UUID
	CustomerID    *uuid.UUID
	PaymentMethod enum.PaymentMethod
	CouponCode    *string
	Notes         *string
	Items         []OrderItemInput
	// Complete moves the order straight to completed, as at a till
	Complete bool
}

// Totals are the money amounts of an order
type Totals struct {
	SubTotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal
}

// computeTotals applies the discount to the subtotal and taxes what is left.
// Exclusive lines get tax added on top; inclusive lines already carry it, so
// their share is only reported. The discount is spread over both kinds in
// proportion to their subtotal.
func computeTotals(items []entity.OrderItem, taxTypes map[uuid.UUID]enum.TaxType, discount, rate decimal.Decimal) Totals {
	var subtotal, exclusive decimal.Decimal
	for _, item := range items {
		subtotal = subtotal.Add(item.Total)
		if taxTypes[item.ProductID] == enum.TaxTypeExclusive {
			exclusive = exclusive.Add(item.Total)
		}
	}
	inclusive := subtotal.Sub(exclusive)

	discount = decimal.Min(decimal.Max(discount, decimal.Zero), subtotal)
	discounted := subtotal.Sub(discount)

	ratio := decimal.Zero
	if subtotal.IsPositive() {
		ratio = discounted.Div(subtotal)
	}
	added := exclusive.Mul(ratio).Mul(rate).Div(hundred)
	included := decimal.Zero
	if rate.IsPositive() {
		included = inclusive.Mul(ratio).Mul(rate).Div(hundred.Add(rate))
	}

	return Totals{
		SubTotal:      subtotal.Round(2),
		DiscountTotal: discount.Round(2),
		TaxTotal:      added.Add(included).Round(2),
		Total:         discounted.Add(added).Round(2),
	}
}

// CreateOrder prices and stores an order. Stock is taken and the coupon is
// redeemed before the order is written; both are given back when a later
// step fails.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.Order, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("Order must contain at least one item")
	}

	settings, err := loadSettings(ctx, s.settingsRepo, tenantID)
	if err != nil {
		return nil, err
	}
	if !settings.IsPaymentMethodEnabled(input.PaymentMethod) {
		return nil, apperror.NewRejection("payment_method_disabled",
			fmt.Sprintf("Payment method %s is not enabled", input.PaymentMethod))
	}

	var customer *entity.Customer
	if input.CustomerID != nil {
		customer, err = s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
	}

	quantities := make(map[uuid.UUID]int)
	var order []uuid.UUID
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, apperror.NewBadRequestError("Item quantity must be at least 1")
		}
		if _, seen := quantities[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	products, err := s.productRepo.GetByIDs(ctx, order)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	items := make([]entity.OrderItem, 0, len(order))
	taxTypes := make(map[uuid.UUID]enum.TaxType, len(order))
	facts := OrderFacts{PaymentMethod: &input.PaymentMethod, Customer: customer}
	totalProducts := 0
	for _, id := range order {
		product, ok := productMap[id]
		if !ok {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", id))
		}
		if product.Status != enum.ProductStatusActive {
			return nil, apperror.NewBadRequestf("Product %s is not available for sale", product.Name)
		}
		qty := quantities[id]
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
		items = append(items, entity.OrderItem{
			ProductID:  product.ID,
			CategoryID: product.CategoryID,
			Name:       product.Name,
			Quantity:   qty,
			UnitPrice:  product.Price,
			Total:      lineTotal,
		})
		taxTypes[product.ID] = product.TaxType
		totalProducts += qty

		facts.Subtotal = facts.Subtotal.Add(lineTotal)
		facts.Products = append(facts.Products, product.Code)
		if product.Category != nil {
			facts.Categories = append(facts.Categories, product.Category.Slug)
		}
	}
	facts.ItemCount = totalProducts

	var quote *CouponQuote
	if input.CouponCode != nil && strings.TrimSpace(*input.CouponCode) != "" {
		coupon, err := s.couponRepo.GetByCode(ctx, normalizeCode(*input.CouponCode))
		if err != nil {
			return nil, err
		}
		if coupon == nil {
			return nil, apperror.NewRejection(ReasonCouponNotFound, "Coupon code is not valid")
		}
		quote, err = quoteCoupon(ctx, s.couponRepo, coupon, facts, nil, s.clock.Now())
		if err != nil {
			return nil, err
		}
	}

	discount := decimal.Zero
	if quote != nil {
		discount = quote.Discount
	}
	totals := computeTotals(items, taxTypes, discount, settings.TaxRate)

	o := &entity.Order{
		ID:            uuid.New(),
		TenantID:      tenantID,
		UserID:        input.UserID,
		CustomerID:    input.CustomerID,
		InvoiceNo:     utils.GenerateInvoiceNo(settings.InvoicePrefix),
		Status:        enum.OrderStatusPending,
		PaymentMethod: input.PaymentMethod,
		TotalProducts: totalProducts,
		SubTotal:      totals.SubTotal,
		DiscountTotal: totals.DiscountTotal,
		TaxTotal:      totals.TaxTotal,
		Total:         totals.Total,
		Notes:         input.Notes,
		Items:         items,
	}

	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, quantities)
	if err != nil {
		return nil, err
	}
	if len(failedIDs) > 0 {
		var failedNames []string
		for _, id := range failedIDs {
			if product, exists := productMap[id]; exists {
				failedNames = append(failedNames, product.Name)
			}
		}
		return nil, apperror.NewBadRequestf("Insufficient stock for: %s", strings.Join(failedNames, ", "))
	}

	if quote != nil {
		couponID := quote.Coupon.ID
		code := quote.Coupon.Code
		o.CouponID = &couponID
		o.CouponCode = &code
		err := s.couponRepo.Redeem(ctx, &entity.CouponRedemption{
			TenantID:   tenantID,
			CouponID:   couponID,
			OrderID:    o.ID,
			CustomerID: input.CustomerID,
			Discount:   totals.DiscountTotal,
		})
		if err != nil {
			s.restoreStock(ctx, quantities)
			if errors.Is(err, repository.ErrCouponExhausted) {
				return nil, apperror.NewRejection(ReasonCouponExhausted, "Coupon usage limit reached")
			}
			return nil, err
		}
	}

	if err := s.orderRepo.Create(ctx, o); err != nil {
		if quote != nil {
			if rerr := s.couponRepo.Release(ctx, o.ID); rerr != nil {
				log.Error().Err(rerr).Str("order_id", o.ID.String()).Msg("failed to release coupon after order failure")
			}
		}
		s.restoreStock(ctx, quantities)
		return nil, err
	}

	if quote != nil {
		couponID := quote.Coupon.ID
		orderID := o.ID
		publish(ctx, s.publisher, event.LoyaltyEvent{
			ID:         uuid.New(),
			Type:       event.CouponRedeemed,
			TenantID:   tenantID,
			CustomerID: input.CustomerID,
			OrderID:    &orderID,
			CouponID:   &couponID,
			OccurredAt: s.clock.Now(),
		})
	}

	s.alertLowStock(ctx, tenantID, settings, products, quantities)

	if input.Complete {
		return s.UpdateOrderStatus(ctx, o.ID, enum.OrderStatusCompleted)
	}
	return s.GetOrder(ctx, o.ID)
}

func (s *OrderService) restoreStock(ctx context.Context, quantities map[uuid.UUID]int) {
	if err := s.productRepo.AtomicIncrementBatch(ctx, quantities); err != nil {
		log.Error().Err(err).Msg("failed to restore stock")
	}
}

// alertLowStock mails the owner about products that this order pushed to or
// below their alert level
func (s *OrderService) alertLowStock(ctx context.Context, tenantID uuid.UUID, settings *entity.TenantSettings, products []entity.Product, taken map[uuid.UUID]int) {
	if s.alerter == nil || !settings.LowStockAlerts {
		return
	}
	var crossed []entity.Product
	for _, p := range products {
		before := p.Quantity
		p.Quantity -= taken[p.ID]
		if before > p.QuantityAlert && p.IsLowStock() {
			crossed = append(crossed, p)
		}
	}
	if len(crossed) == 0 {
		return
	}
	go s.alerter.Notify(context.WithoutCancel(ctx), tenantID, crossed)
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders lists orders with filtering
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) (*pagination.Result[entity.Order], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.Default()
	}
	if params.StartDate != nil && params.EndDate != nil && params.EndDate.Before(*params.StartDate) {
		return nil, apperror.NewBadRequestError("end_date must not be before start_date")
	}
	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(orders, params.Pagination, total), nil
}

// UpdateOrderStatus moves an order along its lifecycle. Completing awards
// loyalty points; cancelling or refunding gives back stock, coupon usage and
// awarded points.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, to enum.OrderStatus) (*entity.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if !from.CanTransitionTo(to) {
		return nil, apperror.NewConflictError(fmt.Sprintf("Order cannot move from %s to %s", from, to))
	}

	if err := s.orderRepo.TransitionStatus(ctx, order.ID, from, to, s.clock.Now()); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperror.NewConflictError("Order status was changed by another request")
		}
		return nil, err
	}

	switch to {
	case enum.OrderStatusCompleted:
		s.completeOrder(ctx, order)
	case enum.OrderStatusCancelled, enum.OrderStatusRefunded:
		s.reverseOrder(ctx, order, from)
	}

	return s.GetOrder(ctx, order.ID)
}

// completeOrder updates the customer counters and awards points. Failures
// are logged; the order stays completed.
func (s *OrderService) completeOrder(ctx context.Context, order *entity.Order) {
	if order.CustomerID == nil {
		return
	}
	logger := log.With().Str("order_id", order.ID.String()).Logger()

	customer, err := s.customerRepo.GetByID(ctx, *order.CustomerID)
	if err != nil || customer == nil {
		logger.Error().Err(err).Msg("customer missing on completion")
		return
	}

	settings, err := loadSettings(ctx, s.settingsRepo, order.TenantID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load settings on completion")
		return
	}

	if settings.Loyalty.Enabled {
		award, err := s.awardFor(ctx, order, customer, settings.Loyalty.PointsPerCurrencyUnit)
		if err != nil {
			logger.Error().Err(err).Msg("failed to compute loyalty points")
		} else if award.Points > 0 {
			s.applyAward(ctx, order, award)
		}
	}

	if err := s.customerRepo.RecordOrder(ctx, customer.ID, 1, order.Total); err != nil {
		logger.Error().Err(err).Msg("failed to update customer counters")
	}
}

// awardFor evaluates running campaigns against the order as it stood before
// completion
func (s *OrderService) awardFor(ctx context.Context, order *entity.Order, customer *entity.Customer, rate decimal.Decimal) (PointsAward, error) {
	campaigns, err := s.campaignRepo.ListActive(ctx)
	if err != nil {
		return PointsAward{}, err
	}

	facts := OrderFacts{
		Subtotal:      order.SubTotal,
		ItemCount:     order.TotalProducts,
		PaymentMethod: &order.PaymentMethod,
		Customer:      customer,
	}
	if err := s.lineFacts(ctx, order, &facts); err != nil {
		return PointsAward{}, err
	}

	return computePoints(order.Total, rate, campaigns, facts.Facts(), s.clock.Now()), nil
}

// lineFacts fills product codes and category slugs from the order lines
func (s *OrderService) lineFacts(ctx context.Context, order *entity.Order, facts *OrderFacts) error {
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range products {
		facts.Products = append(facts.Products, p.Code)
		if p.Category != nil {
			facts.Categories = append(facts.Categories, p.Category.Slug)
		}
	}
	return nil
}

func (s *OrderService) applyAward(ctx context.Context, order *entity.Order, award PointsAward) {
	orderID := order.ID
	entry := &entity.PointTransaction{
		CustomerID: *order.CustomerID,
		Points:     award.Points,
		Source:     enum.PointSourceOrder,
		OrderID:    &orderID,
		CampaignID: award.CampaignID,
		Reason:     "Order " + order.InvoiceNo,
	}
	customer, err := s.customerRepo.ApplyPoints(ctx, entry)
	if err != nil {
		log.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to award points")
		return
	}
	if err := s.orderRepo.SetLoyalty(ctx, order.ID, award.Points, award.CampaignID); err != nil {
		log.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to store awarded points on order")
	}
	order.PointsEarned = award.Points
	order.CampaignID = award.CampaignID

	publish(ctx, s.publisher, pointsEvent(event.PointsEarned, entry, customer.PointsBalance))
}

// reverseOrder undoes the side effects of an order. Points already spent by
// the customer cannot be taken back, so at most the current balance is
// reversed.
func (s *OrderService) reverseOrder(ctx context.Context, order *entity.Order, from enum.OrderStatus) {
	logger := log.With().Str("order_id", order.ID.String()).Logger()

	s.restoreStock(ctx, order.StockMovements())

	if order.CouponID != nil {
		if err := s.couponRepo.Release(ctx, order.ID); err != nil {
			logger.Error().Err(err).Msg("failed to release coupon")
		}
	}

	if from != enum.OrderStatusCompleted || order.CustomerID == nil {
		return
	}

	if err := s.customerRepo.RecordOrder(ctx, *order.CustomerID, -1, order.Total.Neg()); err != nil {
		logger.Error().Err(err).Msg("failed to update customer counters")
	}

	if order.PointsEarned <= 0 {
		return
	}
	customer, err := s.customerRepo.GetByID(ctx, *order.CustomerID)
	if err != nil || customer == nil {
		logger.Error().Err(err).Msg("customer missing on reversal")
		return
	}
	points := order.PointsEarned
	if customer.PointsBalance < points {
		points = customer.PointsBalance
	}
	if points <= 0 {
		return
	}

	orderID := order.ID
	entry := &entity.PointTransaction{
		CustomerID: customer.ID,
		Points:     -points,
		Source:     enum.PointSourceReversal,
		OrderID:    &orderID,
		CampaignID: order.CampaignID,
		Reason:     "Reversal of order " + order.InvoiceNo,
	}
	updated, err := s.customerRepo.ApplyPoints(ctx, entry)
	if err != nil {
		logger.Error().Err(err).Msg("failed to reverse points")
		return
	}
	publish(ctx, s.publisher, pointsEvent(event.PointsReversed, entry, updated.PointsBalance))
}
