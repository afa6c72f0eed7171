package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/threadline/internal/models"
)

// Payment methods a checkout can route to.
const (
	PaymentMethodCentime = "centime"
	PaymentMethodPaypal  = "paypal"
)

// AddressInput is a freeform address submitted at checkout.
type AddressInput struct {
	StreetAddress    string `json:"street_address"`
	ApartmentAddress string `json:"apartment_address"`
	Country          string `json:"country"`
	Zipcode          string `json:"zipcode"`
}

func (a AddressInput) complete() bool {
	return a.StreetAddress != "" && a.Country != "" && a.Zipcode != ""
}

// CheckoutRequest carries the checkout form. Default-reuse and freeform are
// mutually exclusive per leg; SameBillingAddress wins over the other two
// billing modes.
type CheckoutRequest struct {
	Shipping           AddressInput `json:"shipping"`
	UseDefaultShipping bool         `json:"use_default_shipping"`
	SetDefaultShipping bool         `json:"set_default_shipping"`
	SameBillingAddress bool         `json:"same_billing_address"`
	Billing            AddressInput `json:"billing"`
	UseDefaultBilling  bool         `json:"use_default_billing"`
	SetDefaultBilling  bool         `json:"set_default_billing"`
	PaymentOption      string       `json:"payment_option"`
}

// CheckoutState is what the checkout page needs to render.
type CheckoutState struct {
	Order            *models.Order
	DefaultShipping  *models.Address
	DefaultBilling   *models.Address
	ShowPromoSection bool
	ReadyForPayment  bool
}

// CheckoutService resolves shipping and billing addresses for the active
// order and routes the user to a payment method.
type CheckoutService struct {
	db *gorm.DB
}

// NewCheckoutService constructs CheckoutService.
func NewCheckoutService(db *gorm.DB) *CheckoutService {
	return &CheckoutService{db: db}
}

// Begin loads the state for the checkout page. When the order already has a
// billing address the caller should skip straight to payment.
func (s *CheckoutService) Begin(userID uuid.UUID) (*CheckoutState, error) {
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

	state := &CheckoutState{
		Order:            &order,
		ShowPromoSection: order.CouponID == nil,
		ReadyForPayment:  order.BillingAddressID != nil,
	}
	if state.ReadyForPayment {
		return state, nil
	}

	shipping, err := s.defaultAddress(s.db, userID, models.AddressShipping)
	if err != nil {
		return nil, err
	}
	billing, err := s.defaultAddress(s.db, userID, models.AddressBilling)
	if err != nil {
		return nil, err
	}
	state.DefaultShipping = shipping
	state.DefaultBilling = billing
	return state, nil
}

// Submit resolves both address legs onto the active order and returns the
// chosen payment method. The order is not finalized here; that happens in
// the payment flow.
func (s *CheckoutService) Submit(userID uuid.UUID, req CheckoutRequest) (string, error) {
	if req.PaymentOption != PaymentMethodCentime && req.PaymentOption != PaymentMethodPaypal {
		return "", ErrInvalidPaymentOption
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := activeOrder(tx, userID)
		if err != nil {
			return err
		}

		shipping, err := s.resolveShipping(tx, userID, req)
		if err != nil {
			return err
		}
		if err := tx.Model(order).Update("shipping_address_id", shipping.ID).Error; err != nil {
			return err
		}

		billing, err := s.resolveBilling(tx, userID, req, shipping)
		if err != nil {
			return err
		}
		return tx.Model(order).Update("billing_address_id", billing.ID).Error
	})
	if err != nil {
		return "", err
	}
	return req.PaymentOption, nil
}

// ApplyCoupon attaches the coupon with the exactly matching code to the
// active order, replacing any previously attached one.
func (s *CheckoutService) ApplyCoupon(userID uuid.UUID, code string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		order, err := activeOrder(tx, userID)
		if err != nil {
			return err
		}

		var coupon models.Coupon
		if err := tx.Where("code = ?", code).First(&coupon).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCouponNotFound
			}
			return err
		}

		return tx.Model(order).Update("coupon_id", coupon.ID).Error
	})
}

func (s *CheckoutService) resolveShipping(tx *gorm.DB, userID uuid.UUID, req CheckoutRequest) (*models.Address, error) {
	if req.UseDefaultShipping {
		addr, err := s.defaultAddress(tx, userID, models.AddressShipping)
		if err != nil {
			return nil, err
		}
		if addr == nil {
			return nil, ErrNoDefaultAddress
		}
		return addr, nil
	}

	if !req.Shipping.complete() {
		return nil, ErrShippingIncomplete
	}

	addr := models.Address{
		UserID:           userID,
		StreetAddress:    req.Shipping.StreetAddress,
		ApartmentAddress: req.Shipping.ApartmentAddress,
		Zipcode:          req.Shipping.Zipcode,
		Country:          req.Shipping.Country,
		AddressType:      models.AddressShipping,
		Default:          req.SetDefaultShipping,
	}
	if err := tx.Create(&addr).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *CheckoutService) resolveBilling(tx *gorm.DB, userID uuid.UUID, req CheckoutRequest, shipping *models.Address) (*models.Address, error) {
	switch {
	case req.SameBillingAddress:
		// A fresh row, not a shared one, so the two legs can diverge later.
		dup := models.Address{
			UserID:           shipping.UserID,
			StreetAddress:    shipping.StreetAddress,
			ApartmentAddress: shipping.ApartmentAddress,
			Zipcode:          shipping.Zipcode,
			Country:          shipping.Country,
			AddressType:      models.AddressBilling,
			Default:          shipping.Default,
		}
		if err := tx.Create(&dup).Error; err != nil {
			return nil, err
		}
		return &dup, nil

	case req.UseDefaultBilling:
		addr, err := s.defaultAddress(tx, userID, models.AddressBilling)
		if err != nil {
			return nil, err
		}
		if addr == nil {
			return nil, ErrNoDefaultAddress
		}
		return addr, nil

	default:
		if !req.Billing.complete() {
			return nil, ErrBillingIncomplete
		}
		addr := models.Address{
			UserID:           userID,
			StreetAddress:    req.Billing.StreetAddress,
			ApartmentAddress: req.Billing.ApartmentAddress,
			Zipcode:          req.Billing.Zipcode,
			Country:          req.Billing.Country,
			AddressType:      models.AddressBilling,
			Default:          req.SetDefaultBilling,
		}
		if err := tx.Create(&addr).Error; err != nil {
			return nil, err
		}
		return &addr, nil
	}
}

// defaultAddress returns the most recently created default address of the
// given type, or nil when the user has none.
func (s *CheckoutService) defaultAddress(tx *gorm.DB, userID uuid.UUID, addressType string) (*models.Address, error) {
	var addr models.Address
	err := tx.Where("user_id = ? AND address_type = ? AND \"default\"", userID, addressType).
		Order("created_at desc").
		First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}
