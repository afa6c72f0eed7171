package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/threadline/internal/middleware"
	"github.com/example/threadline/internal/services"
)

// CheckoutHandler manages the checkout step and coupon application.
type CheckoutHandler struct {
	checkout *services.CheckoutService
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(checkout *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// Begin returns the checkout page state. When the order already has a
// billing address the response routes straight to payment.
func (h *CheckoutHandler) Begin(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	state, err := h.checkout.Begin(userID)
	if errors.Is(err, services.ErrNoActiveOrder) {
		return c.JSON(fiber.Map{
			"success":  false,
			"message":  "You do not have an active order.",
			"redirect": "/api/items",
		})
	}
	if err != nil {
		return err
	}

	if state.ReadyForPayment {
		return c.JSON(fiber.Map{
			"success": true,
			"next":    "/api/payment/" + services.PaymentMethodCentime,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"order":              state.Order,
			"total":              state.Order.Total(),
			"default_shipping":   state.DefaultShipping,
			"default_billing":    state.DefaultBilling,
			"show_promo_section": state.ShowPromoSection,
		},
	})
}

// Submit resolves the order's addresses and routes to the chosen payment
// method. Validation failures come back as recoverable messages pointing at
// checkout, not as errors.
func (h *CheckoutHandler) Submit(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	method, err := h.checkout.Submit(userID, req)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"success": true, "next": "/api/payment/" + method})
	case errors.Is(err, services.ErrNoActiveOrder):
		return c.JSON(fiber.Map{"success": false, "message": "You do not have an active order."})
	case errors.Is(err, services.ErrShippingIncomplete):
		return checkoutRetry(c, "Please fill in the required shipping address fields")
	case errors.Is(err, services.ErrBillingIncomplete):
		return checkoutRetry(c, "Please fill in the required billing address fields")
	case errors.Is(err, services.ErrNoDefaultAddress):
		return checkoutRetry(c, "You have no default address on file")
	case errors.Is(err, services.ErrInvalidPaymentOption):
		return checkoutRetry(c, "Failed checkout")
	default:
		return err
	}
}

type couponRequest struct {
	CouponCode string `json:"coupon_code"`
}

// ApplyCoupon attaches a coupon to the active order and routes to payment.
func (h *CheckoutHandler) ApplyCoupon(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req couponRequest
	if err := c.BodyParser(&req); err != nil || req.CouponCode == "" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	err := h.checkout.ApplyCoupon(userID, req.CouponCode)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Successfully added coupon code",
			"next":    "/api/payment/" + services.PaymentMethodCentime,
		})
	case errors.Is(err, services.ErrCouponNotFound):
		return checkoutRetry(c, "Invalid coupon code")
	case errors.Is(err, services.ErrNoActiveOrder):
		return c.JSON(fiber.Map{"success": false, "message": "You do not have an active order."})
	default:
		return err
	}
}

func checkoutRetry(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{
		"success":  false,
		"message":  message,
		"redirect": "/api/checkout",
	})
}
