package request

import "github.com/google/uuid"

// OrderItemRequest is one line of an order
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest represents an order creation request
type CreateOrderRequest struct {
	CustomerID    *uuid.UUID         `json:"customer_id"`
	PaymentMethod string             `json:"payment_method" binding:"required,payment_method"`
	CouponCode    *string            `json:"coupon_code" binding:"omitempty,max=64"`
	Notes         *string            `json:"notes" binding:"omitempty,max=1000"`
	Complete      bool               `json:"complete"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusRequest moves an order to another status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=completed cancelled refunded"`
}

// OrderFilterRequest represents order filter parameters
type OrderFilterRequest struct {
	Search     string `form:"search"`
	Status     string `form:"status" binding:"omitempty,oneof=pending completed cancelled refunded"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}
