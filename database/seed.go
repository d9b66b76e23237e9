package database

import (
	"context"
	"errors"
	"fmt"

	"restaurant-service/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GroupSeeder is the part of the group repository used at startup.
type GroupSeeder interface {
	EnsureGroup(ctx context.Context, name string) (*models.Group, error)
	PromoteAdministrator(ctx context.Context, username string) error
}

// Seed makes sure the role groups exist and, when adminUsername is set,
// flags that user as an administrator. A missing user is only logged since
// accounts are created by the identity provider.
func Seed(ctx context.Context, groups GroupSeeder, adminUsername string, logger *zap.Logger) error {
	for _, name := range []string{models.GroupManager, models.GroupDeliveryCrew} {
		if _, err := groups.EnsureGroup(ctx, name); err != nil {
			return fmt.Errorf("failed to seed group %q: %w", name, err)
		}
	}

	if adminUsername == "" {
		return nil
	}
	err := groups.PromoteAdministrator(ctx, adminUsername)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warn("skip seeding administrator: user not found", zap.String("username", adminUsername))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to promote administrator: %w", err)
	}
	logger.Info("administrator flag ensured", zap.String("username", adminUsername))
	return nil
}
