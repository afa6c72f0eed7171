package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/threadline/internal/models"
)

// CartEvent tells the handler which message to show after a mutation.
type CartEvent int

const (
	CartItemAdded CartEvent = iota
	CartQuantityUpdated
	CartItemRemoved
	CartOrderDeleted
)

// CartResult reports the outcome of a cart mutation.
type CartResult struct {
	Event CartEvent
	Item  *models.Item
}

// CartService mutates the user's single active order. Every mutation runs
// in one transaction; the partial unique indexes on orders and order items
// back the one-active-order and one-line-per-item invariants under
// concurrent requests.
type CartService struct {
	db *gorm.DB
}

// NewCartService constructs CartService.
func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// AddItem adds one unit of the item to the user's cart, creating the active
// order lazily and merging into an existing line instead of duplicating it.
func (s *CartService) AddItem(userID uuid.UUID, slug string) (*CartResult, error) {
	var result CartResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := itemBySlug(tx, slug)
		if err != nil {
			return err
		}
		result.Item = item

		order, err := activeOrder(tx, userID)
		if errors.Is(err, ErrNoActiveOrder) {
			order = &models.Order{UserID: userID}
			if err := tx.Create(order).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var line models.OrderItem
		err = tx.Where("order_id = ? AND item_id = ? AND NOT ordered", order.ID, item.ID).
			First(&line).Error
		switch {
		case err == nil:
			result.Event = CartQuantityUpdated
			return tx.Model(&line).Update("quantity", line.Quantity+1).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			result.Event = CartItemAdded
			line = models.OrderItem{
				UserID:   userID,
				ItemID:   item.ID,
				OrderID:  &order.ID,
				Quantity: 1,
			}
			return tx.Create(&line).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DecreaseItem lowers the line's quantity by one. At zero the line is
// deleted, and an emptied order is deleted with it.
func (s *CartService) DecreaseItem(userID uuid.UUID, slug string) (*CartResult, error) {
	var result CartResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, order, line, err := cartLine(tx, userID, slug)
		if err != nil {
			return err
		}
		result.Item = item

		if line.Quantity > 1 {
			result.Event = CartQuantityUpdated
			return tx.Model(line).Update("quantity", line.Quantity-1).Error
		}

		if err := tx.Delete(line).Error; err != nil {
			return err
		}
		return s.dropOrderIfEmpty(tx, order, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RemoveItem deletes the whole line regardless of quantity, and the order
// when it empties.
func (s *CartService) RemoveItem(userID uuid.UUID, slug string) (*CartResult, error) {
	var result CartResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, order, line, err := cartLine(tx, userID, slug)
		if err != nil {
			return err
		}
		result.Item = item

		if err := tx.Delete(line).Error; err != nil {
			return err
		}
		return s.dropOrderIfEmpty(tx, order, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Summary loads the active order with lines, items and coupon.
func (s *CartService) Summary(userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items.Item").Preload("Coupon").
		Where("user_id = ? AND NOT ordered", userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveOrder
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *CartService) dropOrderIfEmpty(tx *gorm.DB, order *models.Order, result *CartResult) error {
	var remaining int64
	if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).
		Count(&remaining).Error; err != nil {
		return err
	}
	if remaining > 0 {
		result.Event = CartItemRemoved
		return nil
	}
	result.Event = CartOrderDeleted
	return tx.Delete(order).Error
}

func itemBySlug(tx *gorm.DB, slug string) (*models.Item, error) {
	var item models.Item
	if err := tx.Where("slug = ?", slug).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func activeOrder(tx *gorm.DB, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := tx.Where("user_id = ? AND NOT ordered", userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveOrder
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func cartLine(tx *gorm.DB, userID uuid.UUID, slug string) (*models.Item, *models.Order, *models.OrderItem, error) {
	item, err := itemBySlug(tx, slug)
	if err != nil {
		return nil, nil, nil, err
	}

	order, err := activeOrder(tx, userID)
	if err != nil {
		return item, nil, nil, err
	}

	var line models.OrderItem
	err = tx.Where("order_id = ? AND item_id = ? AND NOT ordered", order.ID, item.ID).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, order, nil, ErrItemNotInCart
	}
	if err != nil {
		return item, order, nil, err
	}
	return item, order, &line, nil
}
