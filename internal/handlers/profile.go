package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/threadline/internal/middleware"
	"github.com/example/threadline/internal/models"
)

// ProfileHandler manages user profile endpoints.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the authenticated user with their payment profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	var profile models.UserProfile
	if err := h.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":                   user.ID,
			"first_name":           user.FirstName,
			"last_name":            user.LastName,
			"email":                user.Email,
			"one_click_purchasing": profile.OneClickPurchasing,
			"created_at":           user.CreatedAt,
		},
	})
}

// ListAddresses returns the user's address book.
func (h *ProfileHandler) ListAddresses(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var addresses []models.Address
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&addresses).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": addresses})
}

// ListOrders returns the user's finalized orders, newest first.
func (h *ProfileHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var orders []models.Order
	if err := h.db.Preload("Items.Item").Preload("Payment").Preload("Coupon").
		Where("user_id = ? AND ordered", userID).
		Order("ordered_at desc").
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": orders})
}
