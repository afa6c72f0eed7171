package services

import "errors"

// Domain failures surfaced to handlers. All of them are recoverable: the
// handler maps each to an informational message and a fallback route.
var (
	ErrItemNotFound           = errors.New("item not found")
	ErrNoActiveOrder          = errors.New("no active order")
	ErrItemNotInCart          = errors.New("item is not in the cart")
	ErrCouponNotFound         = errors.New("coupon not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrBillingAddressMissing  = errors.New("billing address not set")
	ErrNoDefaultAddress       = errors.New("no default address on file")
	ErrShippingIncomplete     = errors.New("required shipping address fields missing")
	ErrBillingIncomplete      = errors.New("required billing address fields missing")
	ErrInvalidPaymentOption   = errors.New("invalid payment option")
	ErrRefundAlreadyRequested = errors.New("refund already requested for this order")
)
