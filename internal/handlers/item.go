package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/threadline/internal/models"
	"github.com/example/threadline/internal/utils"
)

// ItemHandler manages catalog endpoints.
type ItemHandler struct {
	db *gorm.DB
}

// NewItemHandler constructs ItemHandler.
func NewItemHandler(db *gorm.DB) *ItemHandler {
	return &ItemHandler{db: db}
}

// ListItems returns the catalog ordered by price descending, paginated,
// with an optional free-text search over title and category.
func (h *ItemHandler) ListItems(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Item{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + search + "%"
		query = query.Where("title ILIKE ? OR category ILIKE ?", q, q)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var items []models.Item
	if err := query.Order("price desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetItem loads one item by slug.
func (h *ItemHandler) GetItem(c *fiber.Ctx) error {
	var item models.Item
	if err := h.db.Where("slug = ?", c.Params("slug")).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "item not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

type itemRequest struct {
	Title         string `json:"title"`
	Price         int64  `json:"price"`
	DiscountPrice *int64 `json:"discount_price"`
	Category      string `json:"category"`
	Label         string `json:"label"`
	Description   string `json:"description"`
}

// CreateItem adds a catalog item. The slug is derived here, at creation,
// from category and title.
func (h *ItemHandler) CreateItem(c *fiber.Ctx) error {
	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Title == "" || req.Category == "" || req.Price < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	item := models.Item{
		Title:         req.Title,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Category:      req.Category,
		Label:         req.Label,
		Description:   req.Description,
		Slug:          utils.Slugify(req.Category, req.Title),
	}

	if err := h.db.Create(&item).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}
