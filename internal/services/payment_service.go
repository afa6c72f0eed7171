package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/threadline/internal/models"
	"github.com/example/threadline/internal/utils"
)

// PayRequest is the payment form: a one-time card token plus the save /
// use-saved-method switches.
type PayRequest struct {
	Token      string `json:"token"`
	Save       bool   `json:"save"`
	UseDefault bool   `json:"use_default"`
}

// PaymentPage is what the payment step needs to render: the payable order
// and, for one-click users, a saved card.
type PaymentPage struct {
	Order     *models.Order
	SavedCard *ProcessorSource
}

// PaymentService computes the payable total, captures the charge with the
// processor and finalizes the order.
type PaymentService struct {
	db        *gorm.DB
	processor ProcessorClient
	mailer    Mailer
	currency  string
}

// NewPaymentService constructs PaymentService.
func NewPaymentService(db *gorm.DB, processor ProcessorClient, mailer Mailer, currency string) *PaymentService {
	return &PaymentService{db: db, processor: processor, mailer: mailer, currency: currency}
}

// Page loads the payment step. ErrBillingAddressMissing signals the caller
// to route back to checkout. A failed saved-card lookup only drops the
// one-click shortcut, never the page.
func (s *PaymentService) Page(userID uuid.UUID) (*PaymentPage, error) {
	order, err := s.payableOrder(userID)
	if err != nil {
		return nil, err
	}
	page := &PaymentPage{Order: order}

	var profile models.UserProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	if profile.OneClickPurchasing && profile.ProcessorCustomerID != "" {
		sources, err := s.processor.ListSources(profile.ProcessorCustomerID, 3)
		if err != nil {
			log.Printf("[Payment] Listing saved sources failed: %v", err)
		} else if len(sources) > 0 {
			page.SavedCard = &sources[0]
		}
	}
	return page, nil
}

// Pay runs the charge flow:
//
//  1. optionally store the token as a reusable method on the user's
//     processor customer, creating the customer first time around,
//  2. charge the stored customer or the one-time token for the order total,
//  3. finalize the order in one transaction (payment row, lines ordered,
//     order ordered, reference code), compensating with a remote refund if
//     the transaction fails after the charge went through,
//  4. send the confirmation mail carrying the reference code.
//
// A *ProcessorError from any step leaves the order active and unpaid so the
// user can retry.
func (s *PaymentService) Pay(userID uuid.UUID, req PayRequest) (*models.Order, error) {
	order, err := s.payableOrder(userID)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	var profile models.UserProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}

	if req.Save {
		if err := s.saveMethod(&user, &profile, req.Token); err != nil {
			return nil, err
		}
	}

	amount := order.Total()
	chargeReq := ChargeRequest{Amount: amount, Currency: s.currency}
	if req.UseDefault || req.Save {
		if profile.ProcessorCustomerID == "" {
			return nil, &ProcessorError{Kind: ProcessorErrInvalidRequest, Message: "no saved payment method on file"}
		}
		chargeReq.CustomerID = profile.ProcessorCustomerID
	} else {
		chargeReq.SourceToken = req.Token
	}

	charge, err := s.processor.CreateCharge(chargeReq)
	if err != nil {
		return nil, err
	}

	refCode, err := utils.GenerateReferenceCode()
	if err != nil {
		s.compensate(charge.ID, err)
		return nil, err
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		payment := models.Payment{UserID: userID, ChargeID: charge.ID, Amount: amount}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).
			Update("ordered", true).Error; err != nil {
			return err
		}
		return tx.Model(order).Updates(map[string]any{
			"ordered":        true,
			"ordered_at":     &now,
			"payment_id":     payment.ID,
			"reference_code": refCode,
		}).Error
	})
	if err != nil {
		s.compensate(charge.ID, err)
		return nil, err
	}

	subject := "Your order confirmation"
	body := fmt.Sprintf(
		"Purchase successful. The reference code for your order is %s. Use it to request a refund if needed.",
		refCode)
	if err := s.mailer.Send([]string{user.Email}, subject, body); err != nil {
		log.Printf("[Payment] Confirmation mail for order %s failed: %v", order.ID, err)
	}

	return s.orderByID(order.ID)
}

// saveMethod persists the card token as a reusable source, creating the
// processor customer and flipping one-click purchasing on first use.
func (s *PaymentService) saveMethod(user *models.User, profile *models.UserProfile, token string) error {
	if profile.ProcessorCustomerID != "" {
		_, err := s.processor.CreateSource(profile.ProcessorCustomerID, token)
		return err
	}

	customer, err := s.processor.CreateCustomer(user.Email, token)
	if err != nil {
		return err
	}
	profile.ProcessorCustomerID = customer.ID
	profile.OneClickPurchasing = true
	return s.db.Model(profile).Updates(map[string]any{
		"processor_customer_id": customer.ID,
		"one_click_purchasing":  true,
	}).Error
}

// compensate refunds a captured charge whose local finalization failed.
func (s *PaymentService) compensate(chargeID string, cause error) {
	log.Printf("[Payment] Finalization failed after charge %s, refunding: %v", chargeID, cause)
	if err := s.processor.RefundCharge(chargeID); err != nil {
		log.Printf("[Payment] Compensating refund for charge %s failed: %v", chargeID, err)
	}
}

func (s *PaymentService) payableOrder(userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items.Item").Preload("Coupon").Preload("BillingAddress").
		Where("user_id = ? AND NOT ordered", userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveOrder
	}
	if err != nil {
		return nil, err
	}
	if order.BillingAddressID == nil {
		return nil, ErrBillingAddressMissing
	}
	return &order, nil
}

func (s *PaymentService) orderByID(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items.Item").Preload("Coupon").Preload("Payment").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
