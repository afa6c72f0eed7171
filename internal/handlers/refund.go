package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/threadline/internal/services"
)

// RefundHandler manages the public refund request endpoint.
type RefundHandler struct {
	refunds *services.RefundService
}

// NewRefundHandler constructs RefundHandler.
func NewRefundHandler(refunds *services.RefundService) *RefundHandler {
	return &RefundHandler{refunds: refunds}
}

type refundRequest struct {
	ReferenceCode string `json:"reference_code"`
	Email         string `json:"email"`
	Reason        string `json:"reason"`
}

// Request files a refund request for the order matching the reference code.
// Open to any requester who knows a valid code.
func (h *RefundHandler) Request(c *fiber.Ctx) error {
	var req refundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.ReferenceCode == "" || req.Email == "" || req.Reason == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	err := h.refunds.Request(req.ReferenceCode, req.Email, req.Reason)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"success": true, "message": "Refund is requested"})
	case errors.Is(err, services.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Invalid reference code",
		})
	case errors.Is(err, services.ErrRefundAlreadyRequested):
		return c.JSON(fiber.Map{
			"success": false,
			"message": "A refund has already been requested for this order",
		})
	default:
		return err
	}
}
