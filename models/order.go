package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "placed"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
)

var statusRank = map[OrderStatus]int{
	OrderStatusPlaced:         0,
	OrderStatusOutForDelivery: 1,
	OrderStatusDelivered:      2,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether an order in s may move to next. Staying in
// the same status is allowed; otherwise only a single step forward is.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to == from || to == from+1
}

// RequiresCrew reports whether an order in s must have a delivery crew.
func (s OrderStatus) RequiresCrew() bool {
	return s == OrderStatusOutForDelivery || s == OrderStatusDelivered
}

// Order is a placed cart. Total is the sum of its item prices at creation
// and is never recomputed.
type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"index;not null" json:"user"`
	DeliveryCrewID *uint           `gorm:"index" json:"delivery_crew"`
	Status         OrderStatus     `gorm:"type:varchar(32);index;not null;default:'placed'" json:"status"`
	Total          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	CreatedAt      time.Time       `gorm:"index;not null" json:"date"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is an immutable copy of a cart line.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;uniqueIndex:idx_order_item" json:"order"`
	MenuItemID uint            `gorm:"not null;uniqueIndex:idx_order_item" json:"menu_item_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// OrderFilter restricts order queries. Nil fields do not filter.
type OrderFilter struct {
	UserID         *uint
	DeliveryCrewID *uint
}

// OrderChanges are the columns written by a guarded order update.
type OrderChanges struct {
	Status         OrderStatus
	DeliveryCrewID *uint
}

// NullableID distinguishes an absent JSON field from an explicit null.
type NullableID struct {
	Set   bool
	Value *uint
}

// UnmarshalJSON accepts null, a number or a numeric string.
func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	n.Value = nil

	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("expected an id or null")
		}
		raw = json.Number(s)
	}

	id, err := strconv.ParseUint(raw.String(), 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid id %q", raw.String())
	}
	v := uint(id)
	n.Value = &v
	return nil
}

// MarshalJSON renders the value or null.
func (n NullableID) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// UpdateOrderRequest is the payload for changing an order. Managers may send
// both fields; delivery crew may only send Status.
type UpdateOrderRequest struct {
	DeliveryCrew NullableID   `json:"delivery_crew"`
	Status       *OrderStatus `json:"status"`
}
