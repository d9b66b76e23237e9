package access

import (
	"context"
	"fmt"

	"restaurant-service/models"
)

// GroupStore answers membership questions about a user.
type GroupStore interface {
	IsAdministrator(ctx context.Context, userID uint) (bool, error)
	HasRole(ctx context.Context, userID uint, group string) (bool, error)
	GroupCountOf(ctx context.Context, userID uint) (int64, error)
}

// Resolver turns a user id into an Actor.
type Resolver struct {
	store GroupStore
}

// NewResolver creates a Resolver backed by store.
func NewResolver(store GroupStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve determines the role of userID. The first match wins: the
// administrator flag, then no groups at all (customer), then membership in
// the Delivery Crew group, then the Manager group. Any other membership
// resolves to Staff.
func (r *Resolver) Resolve(ctx context.Context, userID uint) (Actor, error) {
	actor := Actor{ID: userID, Role: Customer}

	admin, err := r.store.IsAdministrator(ctx, userID)
	if err != nil {
		return actor, fmt.Errorf("resolve administrator: %w", err)
	}
	if admin {
		actor.Role = Administrator
		return actor, nil
	}

	groups, err := r.store.GroupCountOf(ctx, userID)
	if err != nil {
		return actor, fmt.Errorf("count groups: %w", err)
	}
	if groups == 0 {
		return actor, nil
	}

	crew, err := r.store.HasRole(ctx, userID, models.GroupDeliveryCrew)
	if err != nil {
		return actor, fmt.Errorf("resolve delivery crew: %w", err)
	}
	if crew {
		actor.Role = DeliveryCrew
		return actor, nil
	}

	manager, err := r.store.HasRole(ctx, userID, models.GroupManager)
	if err != nil {
		return actor, fmt.Errorf("resolve manager: %w", err)
	}
	if manager {
		actor.Role = Manager
		return actor, nil
	}

	actor.Role = Staff
	return actor, nil
}
