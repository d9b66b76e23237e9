// Package access resolves who is calling and what they may do.
package access

// Role is the closed set of actor roles.
type Role int

const (
	Customer Role = iota
	DeliveryCrew
	// Staff belongs to a group that is neither Manager nor Delivery Crew.
	Staff
	Manager
	Administrator
)

func (r Role) String() string {
	switch r {
	case Administrator:
		return "administrator"
	case Manager:
		return "manager"
	case DeliveryCrew:
		return "delivery_crew"
	case Staff:
		return "staff"
	default:
		return "customer"
	}
}

// ContextKey is the gin context key the authenticated Actor is stored under.
const ContextKey = "actor"

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uint
	Role Role
}
