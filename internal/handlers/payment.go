package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/threadline/internal/middleware"
	"github.com/example/threadline/internal/services"
)

// PaymentHandler manages the payment step.
type PaymentHandler struct {
	payments *services.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Page returns the payment page state for the chosen method, including a
// saved card for one-click users.
func (h *PaymentHandler) Page(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if c.Params("method") != services.PaymentMethodCentime {
		return fiber.NewError(fiber.StatusNotFound, "unsupported payment method")
	}

	page, err := h.payments.Page(userID)
	if redirected, redirectErr := paymentGuard(c, err); redirected {
		return redirectErr
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"order":      page.Order,
			"total":      page.Order.Total(),
			"saved_card": page.SavedCard,
		},
	})
}

// Pay captures the charge and finalizes the order. Processor failures map
// onto distinct recoverable messages; the order stays active on any of them.
func (h *PaymentHandler) Pay(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if c.Params("method") != services.PaymentMethodCentime {
		return fiber.NewError(fiber.StatusNotFound, "unsupported payment method")
	}

	var req services.PayRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.payments.Pay(userID, req)
	if err != nil {
		if redirected, redirectErr := paymentGuard(c, err); redirected {
			return redirectErr
		}
		var procErr *services.ProcessorError
		if errors.As(err, &procErr) {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"success": false,
				"message": procErr.UserMessage(),
			})
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Your order was successful. Please check your email for the details.",
		"data": fiber.Map{
			"reference_code": order.ReferenceCode,
			"order":          order,
		},
	})
}

// paymentGuard handles the state-machine guards: no active order points
// home, a missing billing address points back to checkout.
func paymentGuard(c *fiber.Ctx, err error) (bool, error) {
	switch {
	case errors.Is(err, services.ErrNoActiveOrder):
		return true, c.JSON(fiber.Map{
			"success":  false,
			"message":  "You do not have an active order.",
			"redirect": "/api/items",
		})
	case errors.Is(err, services.ErrBillingAddressMissing):
		return true, c.JSON(fiber.Map{
			"success":  false,
			"message":  "Please complete checkout first.",
			"redirect": "/api/checkout",
		})
	default:
		return false, nil
	}
}
