package models

// Item categories available in the catalog.
const (
	CategoryShirt  = "Shirt"
	CategoryPant   = "Pant"
	CategoryTShirt = "T-Shirt"
)

// Display labels for catalog badges.
const (
	LabelPrimary   = "primary"
	LabelSecondary = "secondary"
	LabelDanger    = "danger"
)

// Item is a catalog product. Prices are stored in minor currency units.
type Item struct {
	BaseModel
	Title         string `json:"title"`
	Price         int64  `json:"price"`
	DiscountPrice *int64 `json:"discount_price"`
	Category      string `json:"category"`
	Label         string `json:"label"`
	Description   string `json:"description"`
	Slug          string `gorm:"uniqueIndex" json:"slug"`
}

// EffectiveUnitPrice returns the discount price when set, else the list price.
func (i *Item) EffectiveUnitPrice() int64 {
	if i.DiscountPrice != nil {
		return *i.DiscountPrice
	}
	return i.Price
}
