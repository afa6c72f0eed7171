package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/threadline/internal/middleware"
	"github.com/example/threadline/internal/services"
)

// CartHandler manages cart mutation and summary endpoints.
type CartHandler struct {
	cart *services.CartService
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// AddItem adds one unit of the item to the cart.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	result, err := h.cart.AddItem(userID, c.Params("slug"))
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": cartMessage(result)})
}

// DecreaseItem lowers the item's quantity by one.
func (h *CartHandler) DecreaseItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	result, err := h.cart.DecreaseItem(userID, c.Params("slug"))
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": cartMessage(result)})
}

// RemoveItem deletes the item's line from the cart.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	result, err := h.cart.RemoveItem(userID, c.Params("slug"))
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": cartMessage(result)})
}

// Summary returns the active order with its lines and running total.
func (h *CartHandler) Summary(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	order, err := h.cart.Summary(userID)
	if errors.Is(err, services.ErrNoActiveOrder) {
		return c.JSON(fiber.Map{"success": false, "message": "You do not have an active order."})
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"order": order,
			"total": order.Total(),
		},
	})
}

func cartMessage(result *services.CartResult) string {
	switch result.Event {
	case services.CartItemAdded:
		return fmt.Sprintf("%s is added to your cart.", result.Item.Title)
	case services.CartQuantityUpdated:
		return fmt.Sprintf("The quantity of %s is updated.", result.Item.Title)
	case services.CartItemRemoved:
		return fmt.Sprintf("%s is removed from your cart.", result.Item.Title)
	default:
		return fmt.Sprintf("%s is removed from your cart. You have no active order.", result.Item.Title)
	}
}

// cartError maps cart failures: unknown items are 404s, everything else the
// user can recover from is an informational response.
func cartError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		return fiber.NewError(fiber.StatusNotFound, "item not found")
	case errors.Is(err, services.ErrNoActiveOrder):
		return c.JSON(fiber.Map{"success": false, "message": "You do not have an active order."})
	case errors.Is(err, services.ErrItemNotInCart):
		return c.JSON(fiber.Map{"success": false, "message": "This item is not in your cart."})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// A concurrent mutation beat this one to the unique index.
		return c.JSON(fiber.Map{"success": false, "message": "Your cart is busy, please try again."})
	default:
		return err
	}
}
