package models

import (
	"github.com/google/uuid"
)

// User represents an authenticated customer.
type User struct {
	BaseModel
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	Addresses    []Address `json:"addresses,omitempty"`
	Orders       []Order   `json:"orders,omitempty"`
}

// UserProfile carries per-user payment processor state. Exactly one row per
// user, created together with the User during registration.
type UserProfile struct {
	BaseModel
	UserID              uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	ProcessorCustomerID string    `json:"processor_customer_id"`
	OneClickPurchasing  bool      `json:"one_click_purchasing"`
}
