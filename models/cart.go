package models

import "github.com/shopspring/decimal"

// CartLine is one menu item in a user's cart. UnitPrice is copied from the
// catalog when the line is first created and Price is always
// Quantity * UnitPrice.
type CartLine struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"user"`
	MenuItemID uint            `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"menu_item_id"`
	MenuItem   *MenuItem       `gorm:"constraint:OnDelete:CASCADE" json:"menu_item,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 1000

// MaxAmount is the exclusive upper bound of a decimal(10,2) column.
var MaxAmount = decimal.New(1, 8)

// AddToCartRequest is the payload for adding an item to the caller's cart.
type AddToCartRequest struct {
	MenuItemID uint `json:"menu_item_id" validate:"required"`
	Quantity   int  `json:"quantity" validate:"required,min=1,max=1000"`
}

// LinePrice returns quantity * unit.
func LinePrice(quantity int, unit decimal.Decimal) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}
