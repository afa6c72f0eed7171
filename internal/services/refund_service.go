package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/threadline/internal/models"
)

// RefundService handles refund intake and the administrator's grant action.
type RefundService struct {
	db *gorm.DB
}

// NewRefundService constructs RefundService.
func NewRefundService(db *gorm.DB) *RefundService {
	return &RefundService{db: db}
}

// Request files a refund against the order matching the reference code.
// Any requester may reference any valid code; ownership is not checked.
func (s *RefundService) Request(referenceCode, email, reason string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Where("reference_code = ?", referenceCode).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		var existing models.Refund
		err = tx.Where("order_id = ?", order.ID).First(&existing).Error
		if err == nil {
			return ErrRefundAlreadyRequested
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		refund := models.Refund{OrderID: order.ID, Email: email, Reason: reason}
		if err := tx.Create(&refund).Error; err != nil {
			return err
		}
		return tx.Model(&order).Update("refund_requested", true).Error
	})
}

// Accept grants the requested refunds for the given orders: requested goes
// false, granted goes true, and the linked refund row is marked accepted.
// Orders without a pending request are skipped. Returns how many orders
// were granted.
func (s *RefundService) Accept(orderIDs []uuid.UUID) (int, error) {
	granted := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range orderIDs {
			var order models.Order
			err := tx.First(&order, "id = ?", id).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if !order.RefundRequested {
				continue
			}

			if err := tx.Model(&order).Updates(map[string]any{
				"refund_requested": false,
				"refund_granted":   true,
			}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Refund{}).Where("order_id = ?", order.ID).
				Update("accepted", true).Error; err != nil {
				return err
			}
			granted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return granted, nil
}
