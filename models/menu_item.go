package models

import "github.com/shopspring/decimal"

// MenuItem is a purchasable dish. Price is always positive.
type MenuItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Title      string          `gorm:"type:varchar(255);index;not null" json:"title"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);index;not null" json:"price"`
	Featured   bool            `gorm:"index;not null;default:false" json:"featured"`
	CategoryID uint            `gorm:"index;not null" json:"category_id"`
	Category   *Category       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
}

// CreateMenuItemRequest is the payload for creating a menu item.
type CreateMenuItemRequest struct {
	Title      string          `json:"title" validate:"required,max=255"`
	Price      decimal.Decimal `json:"price"`
	Featured   bool            `json:"featured"`
	CategoryID uint            `json:"category_id" validate:"required"`
}

// UpdateMenuItemRequest carries the fields to change; nil fields are left as is.
type UpdateMenuItemRequest struct {
	Title      *string          `json:"title" validate:"omitempty,min=1,max=255"`
	Price      *decimal.Decimal `json:"price"`
	Featured   *bool            `json:"featured"`
	CategoryID *uint            `json:"category_id" validate:"omitempty,min=1"`
}

// MenuItemOrdering lists the accepted values of the ordering query parameter.
var MenuItemOrdering = map[string]string{
	"":       "id ASC",
	"id":     "id ASC",
	"-id":    "id DESC",
	"price":  "price ASC",
	"-price": "price DESC",
	"title":  "title ASC",
	"-title": "title DESC",
}

// MenuItemFilter narrows a menu listing.
type MenuItemFilter struct {
	Category string
	Featured *bool
	Ordering string
	Page     int
	Limit    int
}
