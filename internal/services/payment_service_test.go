package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/threadline/internal/models"
)

type fakeProcessor struct {
	chargeErr error
	charges   []ChargeRequest
	refunded  []string
	customers []string
	sources   []string
	saved     []ProcessorSource
}

func (f *fakeProcessor) ListSources(customerID string, limit int) ([]ProcessorSource, error) {
	if limit < len(f.saved) {
		return f.saved[:limit], nil
	}
	return f.saved, nil
}

func (f *fakeProcessor) CreateCustomer(email, token string) (*ProcessorCustomer, error) {
	f.customers = append(f.customers, email)
	return &ProcessorCustomer{ID: "cus_test", Email: email}, nil
}

func (f *fakeProcessor) CreateSource(customerID, token string) (*ProcessorSource, error) {
	f.sources = append(f.sources, token)
	return &ProcessorSource{ID: "src_" + token}, nil
}

func (f *fakeProcessor) CreateCharge(req ChargeRequest) (*ProcessorCharge, error) {
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	f.charges = append(f.charges, req)
	return &ProcessorCharge{ID: "ch_test", Amount: req.Amount, Status: "succeeded"}, nil
}

func (f *fakeProcessor) RefundCharge(chargeID string) error {
	f.refunded = append(f.refunded, chargeID)
	return nil
}

type sentMail struct {
	To      []string
	Subject string
	Body    string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) Send(to []string, subject, body string) error {
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// payableCart builds a user with an addressed active order holding qty
// units of a 1000-per-unit item, optionally with a coupon attached.
func payableCart(t *testing.T, db *gorm.DB, email string, qty int, couponAmount int64) *models.User {
	t.Helper()

	carts := NewCartService(db)
	checkout := NewCheckoutService(db)
	user := createTestUser(t, db, email)
	item := createTestItem(t, db, "Oxford Classic", 1000, nil)

	for i := 0; i < qty; i++ {
		_, err := carts.AddItem(user.ID, item.Slug)
		require.NoError(t, err)
	}

	_, err := checkout.Submit(user.ID, freeformCheckout())
	require.NoError(t, err)

	if couponAmount > 0 {
		coupon := createTestCoupon(t, db, "PROMO", couponAmount)
		require.NoError(t, checkout.ApplyCoupon(user.ID, coupon.Code))
	}
	return user
}

var refCodePattern = regexp.MustCompile(`^[a-z0-9]{20}$`)

func TestPaySuccessFinalizesEverythingTogether(t *testing.T) {
	db := newTestDB(t)
	processor := &fakeProcessor{}
	mailer := &fakeMailer{}
	svc := NewPaymentService(db, processor, mailer, "usd")

	// 3 × 1000 with a 500 coupon: payable total 2500.
	user := payableCart(t, db, "luffy@example.com", 3, 500)

	order, err := svc.Pay(user.ID, PayRequest{Token: "tok_visa"})
	require.NoError(t, err)

	require.Len(t, processor.charges, 1)
	assert.EqualValues(t, 2500, processor.charges[0].Amount)
	assert.Equal(t, "usd", processor.charges[0].Currency)
	assert.Equal(t, "tok_visa", processor.charges[0].SourceToken)

	assert.True(t, order.Ordered)
	assert.NotNil(t, order.OrderedAt)
	assert.Regexp(t, refCodePattern, order.ReferenceCode)
	require.NotNil(t, order.PaymentID)

	var payment models.Payment
	require.NoError(t, db.First(&payment, "id = ?", order.PaymentID).Error)
	assert.Equal(t, "ch_test", payment.ChargeID)
	assert.EqualValues(t, 2500, payment.Amount)
	assert.Equal(t, user.ID, payment.UserID)

	var unorderedLines int64
	require.NoError(t, db.Model(&models.OrderItem{}).
		Where("order_id = ? AND NOT ordered", order.ID).Count(&unorderedLines).Error)
	assert.Zero(t, unorderedLines, "every line is marked ordered with the order")

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{user.Email}, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, order.ReferenceCode)

	assert.Empty(t, processor.refunded, "no compensation on the happy path")
}

func TestPayEachFailureKindLeavesOrderUntouched(t *testing.T) {
	kinds := map[string]ProcessorErrorKind{
		"card":            ProcessorErrCard,
		"rate limit":      ProcessorErrRateLimit,
		"invalid request": ProcessorErrInvalidRequest,
		"authentication":  ProcessorErrAuthentication,
		"connection":      ProcessorErrConnection,
		"api":             ProcessorErrAPI,
		"unknown":         ProcessorErrUnknown,
	}

	for name, kind := range kinds {
		t.Run(name, func(t *testing.T) {
			db := newTestDB(t)
			processor := &fakeProcessor{chargeErr: &ProcessorError{Kind: kind, Message: "nope"}}
			mailer := &fakeMailer{}
			svc := NewPaymentService(db, processor, mailer, "usd")
			user := payableCart(t, db, "zoro@example.com", 1, 0)

			_, err := svc.Pay(user.ID, PayRequest{Token: "tok_visa"})
			var procErr *ProcessorError
			require.ErrorAs(t, err, &procErr)
			assert.Equal(t, kind, procErr.Kind)
			assert.NotEmpty(t, procErr.UserMessage())

			var order models.Order
			require.NoError(t, db.Where("user_id = ?", user.ID).First(&order).Error)
			assert.False(t, order.Ordered, "order stays active for a retry")
			assert.Empty(t, order.ReferenceCode)
			assert.Nil(t, order.PaymentID)

			var payments int64
			require.NoError(t, db.Model(&models.Payment{}).Count(&payments).Error)
			assert.Zero(t, payments)
			assert.Empty(t, mailer.sent)
		})
	}
}

func TestPayFinalizationFailureCompensatesWithRefund(t *testing.T) {
	db := newTestDB(t)
	processor := &fakeProcessor{}
	mailer := &fakeMailer{}
	svc := NewPaymentService(db, processor, mailer, "usd")
	user := payableCart(t, db, "usopp@example.com", 1, 0)

	// Break finalization after the remote charge: with the payments table
	// gone, the transaction's first insert fails.
	require.NoError(t, db.Migrator().DropTable(&models.Payment{}))

	_, err := svc.Pay(user.ID, PayRequest{Token: "tok_visa"})
	require.Error(t, err)

	require.Len(t, processor.charges, 1, "the charge itself went through")
	assert.Equal(t, []string{"ch_test"}, processor.refunded, "the captured charge is refunded")

	var order models.Order
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&order).Error)
	assert.False(t, order.Ordered, "order stays active for a retry")
	assert.Empty(t, order.ReferenceCode)
	assert.Nil(t, order.PaymentID)

	var unorderedLines int64
	require.NoError(t, db.Model(&models.OrderItem{}).
		Where("order_id = ? AND NOT ordered", order.ID).Count(&unorderedLines).Error)
	assert.EqualValues(t, 1, unorderedLines, "no line was left marked ordered")

	assert.Empty(t, mailer.sent, "no confirmation for an unfinalized order")
}

func TestPayFailureMessagesAreDistinct(t *testing.T) {
	kinds := []ProcessorErrorKind{
		ProcessorErrCard, ProcessorErrRateLimit, ProcessorErrInvalidRequest,
		ProcessorErrAuthentication, ProcessorErrConnection, ProcessorErrAPI,
		ProcessorErrUnknown,
	}
	seen := map[string]bool{}
	for _, kind := range kinds {
		msg := (&ProcessorError{Kind: kind}).UserMessage()
		assert.False(t, seen[msg], "duplicate user message: %q", msg)
		seen[msg] = true
	}
}

func TestPayWithoutBillingAddress(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db, &fakeProcessor{}, &fakeMailer{}, "usd")
	carts := NewCartService(db)
	user := createTestUser(t, db, "nami@example.com")
	item := createTestItem(t, db, "Oxford Classic", 1000, nil)
	_, err := carts.AddItem(user.ID, item.Slug)
	require.NoError(t, err)

	_, err = svc.Pay(user.ID, PayRequest{Token: "tok_visa"})
	assert.ErrorIs(t, err, ErrBillingAddressMissing)
}

func TestPayWithoutActiveOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db, &fakeProcessor{}, &fakeMailer{}, "usd")
	user := createTestUser(t, db, "usopp@example.com")

	_, err := svc.Pay(user.ID, PayRequest{Token: "tok_visa"})
	assert.ErrorIs(t, err, ErrNoActiveOrder)
}

func TestPaySaveCreatesCustomerAndChargesIt(t *testing.T) {
	db := newTestDB(t)
	processor := &fakeProcessor{}
	svc := NewPaymentService(db, processor, &fakeMailer{}, "usd")
	user := payableCart(t, db, "sanji@example.com", 1, 0)

	_, err := svc.Pay(user.ID, PayRequest{Token: "tok_visa", Save: true})
	require.NoError(t, err)

	require.Len(t, processor.customers, 1, "first save creates the customer")
	require.Len(t, processor.charges, 1)
	assert.Equal(t, "cus_test", processor.charges[0].CustomerID)
	assert.Empty(t, processor.charges[0].SourceToken)

	var profile models.UserProfile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "cus_test", profile.ProcessorCustomerID)
	assert.True(t, profile.OneClickPurchasing)
}

func TestPaySaveAttachesSourceToExistingCustomer(t *testing.T) {
	db := newTestDB(t)
	processor := &fakeProcessor{}
	svc := NewPaymentService(db, processor, &fakeMailer{}, "usd")
	user := payableCart(t, db, "robin@example.com", 1, 0)

	require.NoError(t, db.Model(&models.UserProfile{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]any{"processor_customer_id": "cus_existing", "one_click_purchasing": true}).Error)

	_, err := svc.Pay(user.ID, PayRequest{Token: "tok_new", Save: true})
	require.NoError(t, err)

	assert.Empty(t, processor.customers, "existing customer is reused")
	require.Len(t, processor.sources, 1)
	assert.Equal(t, "tok_new", processor.sources[0])
	assert.Equal(t, "cus_existing", processor.charges[0].CustomerID)
}

func TestPayUseDefaultWithoutSavedMethod(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db, &fakeProcessor{}, &fakeMailer{}, "usd")
	user := payableCart(t, db, "chopper@example.com", 1, 0)

	_, err := svc.Pay(user.ID, PayRequest{UseDefault: true})
	var procErr *ProcessorError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, ProcessorErrInvalidRequest, procErr.Kind)
}

func TestPageSurfacesSavedCard(t *testing.T) {
	db := newTestDB(t)
	processor := &fakeProcessor{saved: []ProcessorSource{{ID: "src_1", Brand: "Visa", Last4: "4242"}}}
	svc := NewPaymentService(db, processor, &fakeMailer{}, "usd")
	user := payableCart(t, db, "franky@example.com", 1, 0)

	require.NoError(t, db.Model(&models.UserProfile{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]any{"processor_customer_id": "cus_1", "one_click_purchasing": true}).Error)

	page, err := svc.Page(user.ID)
	require.NoError(t, err)
	require.NotNil(t, page.SavedCard)
	assert.Equal(t, "4242", page.SavedCard.Last4)
	assert.EqualValues(t, 1000, page.Order.Total())
}

func TestPageWithoutOneClickSkipsLookup(t *testing.T) {
	db := newTestDB(t)
	processor := &fakeProcessor{saved: []ProcessorSource{{ID: "src_1"}}}
	svc := NewPaymentService(db, processor, &fakeMailer{}, "usd")
	user := payableCart(t, db, "brook@example.com", 1, 0)

	page, err := svc.Page(user.ID)
	require.NoError(t, err)
	assert.Nil(t, page.SavedCard)
}

func TestPayIgnoresOtherUsersOrders(t *testing.T) {
	db := newTestDB(t)
	processor := &fakeProcessor{}
	svc := NewPaymentService(db, processor, &fakeMailer{}, "usd")
	_ = payableCart(t, db, "owner@example.com", 1, 0)
	stranger := createTestUser(t, db, "stranger@example.com")

	_, err := svc.Pay(stranger.ID, PayRequest{Token: "tok_visa"})
	assert.ErrorIs(t, err, ErrNoActiveOrder)
}
