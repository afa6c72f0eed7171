package models

import (
	"github.com/google/uuid"
)

// Address types.
const (
	AddressShipping = "shipping"
	AddressBilling  = "billing"
)

// Address is a shipping or billing address in a user's address book.
// Several addresses of the same type may be flagged default; lookups pick
// the most recently created one.
type Address struct {
	BaseModel
	UserID           uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	StreetAddress    string    `json:"street_address"`
	ApartmentAddress string    `json:"apartment_address"`
	Zipcode          string    `json:"zipcode"`
	Country          string    `json:"country"`
	AddressType      string    `gorm:"index" json:"address_type"`
	Default          bool      `json:"default"`
}
