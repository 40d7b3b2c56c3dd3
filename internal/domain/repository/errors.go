package repository

import "errors"

// Errors returned by the conditional writes below. They describe a lost race
// or a violated guard, not a storage failure.
var (
	ErrInsufficientPoints = errors.New("insufficient points balance")
	ErrCouponExhausted    = errors.New("coupon usage limit reached")
	ErrEventCapReached    = errors.New("event claim cap reached")
	ErrEventClaimLimit    = errors.New("customer claim limit reached")
	ErrStaleStatus        = errors.New("order status changed concurrently")
)
