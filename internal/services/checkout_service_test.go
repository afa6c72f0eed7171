package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/threadline/internal/models"
)

func freeformCheckout() CheckoutRequest {
	return CheckoutRequest{
		Shipping: AddressInput{
			StreetAddress:    "12 Grand Line Ave",
			ApartmentAddress: "Apt 3",
			Country:          "JP",
			Zipcode:          "100-0001",
		},
		Billing: AddressInput{
			StreetAddress: "9 Thriller Bark Rd",
			Country:       "JP",
			Zipcode:       "100-0002",
		},
		PaymentOption: PaymentMethodCentime,
	}
}

func TestSubmitFreeformAddresses(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	svc := NewCheckoutService(db)
	user := createTestUser(t, db, "luffy@example.com")
	item := createTestItem(t, db, "Oxford Classic", 1000, nil)
	_, err := carts.AddItem(user.ID, item.Slug)
	require.NoError(t, err)

	method, err := svc.Submit(user.ID, freeformCheckout())
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodCentime, method)

	order, err := carts.Summary(user.ID)
	require.NoError(t, err)
	require.NotNil(t, order.ShippingAddressID)
	require.NotNil(t, order.BillingAddressID)

	var shipping, billing models.Address
	require.NoError(t, db.First(&shipping, "id = ?", order.ShippingAddressID).Error)
	require.NoError(t, db.First(&billing, "id = ?", order.BillingAddressID).Error)
	assert.Equal(t, models.AddressShipping, shipping.AddressType)
	assert.Equal(t, models.AddressBilling, billing.AddressType)
	assert.Equal(t, "12 Grand Line Ave", shipping.StreetAddress)
	assert.Equal(t, "9 Thriller Bark Rd", billing.StreetAddress)
}

func TestSubmitSameBillingCopiesTheRow(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	svc := NewCheckoutService(db)
	user := createTestUser(t, db, "zoro@example.com")
	item := createTestItem(t, db, "Oxford Classic", 1000, nil)
	_, err := carts.AddItem(user.ID, item.Slug)
	require.NoError(t, err)

	req := freeformCheckout()
	req.SameBillingAddress = true
	req.Billing = AddressInput{}

	_, err = svc.Submit(user.ID, req)
	require.NoError(t, err)

	order, err := carts.Summary(user.ID)
	require.NoError(t, err)

	var shipping, billing models.Address
	require.NoError(t, db.First(&shipping, "id = ?", order.ShippingAddressID).Error)
	require.NoError(t, db.First(&billing, "id = ?", order.BillingAddressID).Error)

	assert.NotEqual(t, shipping.ID, billing.ID, "billing must be its own row")
	assert.Equal(t, shipping.StreetAddress, billing.StreetAddress)
	assert.Equal(t, shipping.ApartmentAddress, billing.ApartmentAddress)
	assert.Equal(t, shipping.Zipcode, billing.Zipcode)
	assert.Equal(t, shipping.Country, billing.Country)
	assert.Equal(t, models.AddressShipping, shipping.AddressType)
	assert.Equal(t, models.AddressBilling, billing.AddressType)
}

func TestSubmitMissingShippingFieldsCommitsNothing(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	svc := NewCheckoutService(db)
	user := createTestUser(t, db, "nami@example.com")
	item := createTestItem(t, db, "Oxford Classic", 1000, nil)
	_, err := carts.AddItem(user.ID, item.Slug)
	require.NoError(t, err)

	req := freeformCheckout()
	req.Shipping.Zipcode = ""

	_, err = svc.Submit(user.ID, req)
	assert.ErrorIs(t, err, ErrShippingIncomplete)

	order, err := carts.Summary(user.ID)
	require.NoError(t, err)
	assert.Nil(t, order.ShippingAddressID)
	assert.Nil(t, order.BillingAddressID)

	var addresses int64
	require.NoError(t, db.Model(&models.Address{}).Count(&addresses).Error)
	assert.Zero(t, addresses, "the failed step must not persist an address")
}

func TestSubmitMissingBillingFieldsRollsBackShipping(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	svc := NewCheckoutService(db)
	user := createTestUser(t, db, "usopp@example.com")
	item := createTestItem(t, db, "Oxford Classic", 1000, nil)
	_, err := carts.AddItem(user.ID, item.Slug)
	require.NoError(t, err)

	req := freeformCheckout()
	req.Billing.StreetAddress = ""

	_, err = svc.Submit(user.ID, req)
	assert.ErrorIs(t, err, ErrBillingIncomplete)

	order, err := carts.Summary(user.ID)
	require.NoError(t, err)
	assert.Nil(t, order.ShippingAddressID, "the whole submit runs in one transaction")
}

func TestSubmitUseDefaultShippingPicksMostRecent(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	svc := NewCheckoutService(db)
	user := createTestUser(t, db, "sanji@example.com")
	item := createTestItem(t, db, "Oxford Classic", 1000, nil)
	_, err := carts.AddItem(user.ID, item.Slug)
	require.NoError(t, err)

	older := models.Address{
		UserID: user.ID, StreetAddress: "1 Old St", Country: "JP", Zipcode: "1",
		AddressType: models.AddressShipping, Default: true,
	}
	require.NoError(t, db.Create(&older).Error)
	newer := models.Address{
		UserID: user.ID, StreetAddress: "2 New St", Country: "JP", Zipcode: "2",
		AddressType: models.AddressShipping, Default: true,
	}
	require.NoError(t, db.Create(&newer).Error)
	// Force a strict recency ordering regardless of clock resolution.
	require.NoError(t, db.Model(&newer).Update("created_at", older.CreatedAt.Add(1_000_000_000)).Error)

	req := freeformCheckout()
	req.UseDefaultShipping = true
	req.Shipping = AddressInput{}

	_, err = svc.Submit(user.ID, req)
	require.NoError(t, err)

	order, err := carts.Summary(user.ID)
	require.NoError(t, err)
	require.NotNil(t, order.ShippingAddressID)
	assert.Equal(t, newer.ID, *order.ShippingAddressID)
}

func TestSubmitUseDefaultWithoutOne(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	svc := NewCheckoutService(db)
	user := createTestUser(t, db, "chopper@example.com")
	item := createTestItem(t, db, "Oxford Classic", 1000, nil)
	_, err := carts.AddItem(user.ID, item.Slug)
	require.NoError(t, err)

	req := freeformCheckout()
	req.UseDefaultShipping = true

	_, err = svc.Submit(user.ID, req)
	assert.ErrorIs(t, err, ErrNoDefaultAddress)
}

func TestSubmitWithoutActiveOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewCheckoutService(db)
	user := createTestUser(t, db, "robin@example.com")

	_, err := svc.Submit(user.ID, freeformCheckout())
	assert.ErrorIs(t, err, ErrNoActiveOrder)
}

func TestSubmitRejectsUnknownPaymentOption(t *testing.T) {
	db := newTestDB(t)
	svc := NewCheckoutService(db)
	user := createTestUser(t, db, "franky@example.com")

	req := freeformCheckout()
	req.PaymentOption = "cheque"

	_, err := svc.Submit(user.ID, req)
	assert.ErrorIs(t, err, ErrInvalidPaymentOption)
}

func TestApplyCouponAttachesAndReplaces(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	svc := NewCheckoutService(db)
	user := createTestUser(t, db, "brook@example.com")
	item := createTestItem(t, db, "Oxford Classic", 1000, nil)
	_, err := carts.AddItem(user.ID, item.Slug)
	require.NoError(t, err)

	first := createTestCoupon(t, db, "SAVE100", 100)
	second := createTestCoupon(t, db, "SAVE500", 500)

	require.NoError(t, svc.ApplyCoupon(user.ID, first.Code))
	order, err := carts.Summary(user.ID)
	require.NoError(t, err)
	require.NotNil(t, order.CouponID)
	assert.Equal(t, first.ID, *order.CouponID)

	require.NoError(t, svc.ApplyCoupon(user.ID, second.Code))
	order, err = carts.Summary(user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, *order.CouponID, "a new coupon replaces the previous one")
}

func TestApplyCouponUnknownCode(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	svc := NewCheckoutService(db)
	user := createTestUser(t, db, "vivi@example.com")
	item := createTestItem(t, db, "Oxford Classic", 1000, nil)
	_, err := carts.AddItem(user.ID, item.Slug)
	require.NoError(t, err)

	err = svc.ApplyCoupon(user.ID, "NOPE")
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestBeginShortCircuitsWhenBillingSet(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	svc := NewCheckoutService(db)
	user := createTestUser(t, db, "ace@example.com")
	item := createTestItem(t, db, "Oxford Classic", 1000, nil)
	_, err := carts.AddItem(user.ID, item.Slug)
	require.NoError(t, err)

	state, err := svc.Begin(user.ID)
	require.NoError(t, err)
	assert.False(t, state.ReadyForPayment)
	assert.True(t, state.ShowPromoSection)

	_, err = svc.Submit(user.ID, freeformCheckout())
	require.NoError(t, err)

	state, err = svc.Begin(user.ID)
	require.NoError(t, err)
	assert.True(t, state.ReadyForPayment, "a user who finished addressing is not asked again")
}
