package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/threadline/internal/models"
	"github.com/example/threadline/internal/services"
	"github.com/example/threadline/internal/utils"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	db      *gorm.DB
	refunds *services.RefundService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, refunds *services.RefundService) *AdminHandler {
	return &AdminHandler{db: db, refunds: refunds}
}

// ListRefundRequests returns orders awaiting a refund decision.
func (h *AdminHandler) ListRefundRequests(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	query := h.db.Model(&models.Order{}).Where("refund_requested")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items.Item").Preload("Payment").
		Order("ordered_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type acceptRefundsRequest struct {
	OrderIDs []string `json:"order_ids"`
}

// AcceptRefunds grants the pending refund requests for the given orders.
func (h *AdminHandler) AcceptRefunds(c *fiber.Ctx) error {
	var req acceptRefundsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.OrderIDs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "order_ids is required")
	}

	ids := make([]uuid.UUID, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid order id: "+raw)
		}
		ids = append(ids, id)
	}

	granted, err := h.refunds.Accept(ids)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"granted": granted},
	})
}

type couponUpsertRequest struct {
	Code   string `json:"code"`
	Amount int64  `json:"amount"`
}

// CreateCoupon adds a flat-amount discount code.
func (h *AdminHandler) CreateCoupon(c *fiber.Ctx) error {
	var req couponUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" || req.Amount <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "code and a positive amount are required")
	}

	coupon := models.Coupon{Code: req.Code, Amount: req.Amount}
	if err := h.db.Create(&coupon).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": coupon})
}
