package models

import (
	"github.com/google/uuid"
)

// Payment records a captured processor charge. Created only after the
// processor confirms the charge. Amount is in minor currency units.
type Payment struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	ChargeID string    `json:"charge_id"`
	Amount   int64     `json:"amount"`
}

// Coupon is a flat fixed-amount discount code.
type Coupon struct {
	BaseModel
	Code   string `gorm:"uniqueIndex" json:"code"`
	Amount int64  `json:"amount"`
}

// Refund is a customer's refund request against one order. Accepted is
// toggled only by an administrator.
type Refund struct {
	BaseModel
	OrderID  uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"order_id"`
	Email    string    `json:"email"`
	Reason   string    `json:"reason"`
	Accepted bool      `json:"accepted"`
}
