package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a cart line: one item with a quantity, owned by one user.
// The partial unique index keeps at most one unordered line per (user, item);
// ordered lines are history and may repeat.
type OrderItem struct {
	BaseModel
	UserID   uuid.UUID  `gorm:"type:uuid;index;index:idx_order_items_active,unique,where:not ordered" json:"user_id"`
	ItemID   uuid.UUID  `gorm:"type:uuid;index:idx_order_items_active,unique,where:not ordered" json:"item_id"`
	Item     *Item      `json:"item,omitempty"`
	OrderID  *uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	Quantity int        `json:"quantity"`
	Ordered  bool       `json:"ordered"`
}

// LineTotal returns the effective unit price times quantity. Item must be
// loaded.
func (oi *OrderItem) LineTotal() int64 {
	return oi.Item.EffectiveUnitPrice() * int64(oi.Quantity)
}

// AmountSaved returns how much the discount price saves over the list price
// for this line, or 0 when the item has no discount.
func (oi *OrderItem) AmountSaved() int64 {
	if oi.Item.DiscountPrice == nil {
		return 0
	}
	return (oi.Item.Price - *oi.Item.DiscountPrice) * int64(oi.Quantity)
}

// Order is the user's cart while Ordered is false and immutable purchase
// history afterwards. The partial unique index enforces at most one active
// (unordered) order per user at the storage layer.
type Order struct {
	BaseModel
	UserID            uuid.UUID   `gorm:"type:uuid;index;index:idx_orders_active_user,unique,where:not ordered" json:"user_id"`
	User              *User       `json:"user,omitempty"`
	ReferenceCode     string      `gorm:"index" json:"reference_code"`
	Items             []OrderItem `json:"items,omitempty"`
	Ordered           bool        `json:"ordered"`
	OrderedAt         *time.Time  `json:"ordered_at"`
	ShippingAddressID *uuid.UUID  `gorm:"type:uuid" json:"shipping_address_id"`
	ShippingAddress   *Address    `json:"shipping_address,omitempty"`
	BillingAddressID  *uuid.UUID  `gorm:"type:uuid" json:"billing_address_id"`
	BillingAddress    *Address    `json:"billing_address,omitempty"`
	PaymentID         *uuid.UUID  `gorm:"type:uuid" json:"payment_id"`
	Payment           *Payment    `json:"payment,omitempty"`
	CouponID          *uuid.UUID  `gorm:"type:uuid" json:"coupon_id"`
	Coupon            *Coupon     `json:"coupon,omitempty"`
	BeingDelivered    bool        `json:"being_delivered"`
	Received          bool        `json:"received"`
	RefundRequested   bool        `json:"refund_requested"`
	RefundGranted     bool        `json:"refund_granted"`
}

// Total sums each line's effective price and subtracts the coupon amount when
// one is attached. Items (with their Item) and Coupon must be loaded.
func (o *Order) Total() int64 {
	var total int64
	for i := range o.Items {
		total += o.Items[i].LineTotal()
	}
	if o.Coupon != nil {
		total -= o.Coupon.Amount
	}
	return total
}
