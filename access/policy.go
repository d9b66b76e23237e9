package access

import "restaurant-service/models"

// UpdateVariant is the set of order fields an actor may change.
type UpdateVariant int

const (
	// UpdateNone forbids any change.
	UpdateNone UpdateVariant = iota
	// UpdateStatusOnly allows the status field.
	UpdateStatusOnly
	// UpdateFull allows status and delivery crew.
	UpdateFull
)

// CanWriteCatalog reports whether the actor may create, change or delete
// categories and menu items.
func CanWriteCatalog(a Actor) bool {
	return a.Role == Manager || a.Role == Administrator
}

// UpdateVariantFor returns the order fields the actor may change.
func UpdateVariantFor(a Actor) UpdateVariant {
	switch a.Role {
	case Administrator, Manager:
		return UpdateFull
	case DeliveryCrew, Staff:
		return UpdateStatusOnly
	default:
		return UpdateNone
	}
}

// OrderScope returns the filter limiting which orders the actor can see.
func OrderScope(a Actor) models.OrderFilter {
	id := a.ID
	switch a.Role {
	case Customer:
		return models.OrderFilter{UserID: &id}
	case DeliveryCrew:
		return models.OrderFilter{DeliveryCrewID: &id}
	default:
		return models.OrderFilter{}
	}
}
