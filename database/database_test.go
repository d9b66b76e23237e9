package database_test

import (
	"context"
	"errors"
	"testing"

	"restaurant-service/database"
	"restaurant-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockSeeder struct {
	mock.Mock
}

func (m *mockSeeder) EnsureGroup(ctx context.Context, name string) (*models.Group, error) {
	args := m.Called(ctx, name)
	if g := args.Get(0); g != nil {
		return g.(*models.Group), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSeeder) PromoteAdministrator(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

func TestSettingsDSN(t *testing.T) {
	s := database.Settings{
		User: "app", Password: "secret", Name: "restaurant",
		Host: "db", Port: "5432", SSLMode: "disable", TimeZone: "UTC",
	}
	assert.Equal(t, "host=db user=app password=secret dbname=restaurant port=5432 sslmode=disable TimeZone=UTC", s.DSN())
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("creates groups and promotes admin", func(t *testing.T) {
		m := new(mockSeeder)
		m.On("EnsureGroup", ctx, models.GroupManager).Return(&models.Group{ID: 1, Name: models.GroupManager}, nil)
		m.On("EnsureGroup", ctx, models.GroupDeliveryCrew).Return(&models.Group{ID: 2, Name: models.GroupDeliveryCrew}, nil)
		m.On("PromoteAdministrator", ctx, "root").Return(nil)

		require.NoError(t, database.Seed(ctx, m, "root", zap.NewNop()))
		m.AssertExpectations(t)
	})

	t.Run("no admin configured", func(t *testing.T) {
		m := new(mockSeeder)
		m.On("EnsureGroup", ctx, mock.Anything).Return(&models.Group{}, nil)

		require.NoError(t, database.Seed(ctx, m, "", zap.NewNop()))
		m.AssertNotCalled(t, "PromoteAdministrator", mock.Anything, mock.Anything)
	})

	t.Run("unknown admin is skipped", func(t *testing.T) {
		m := new(mockSeeder)
		m.On("EnsureGroup", ctx, mock.Anything).Return(&models.Group{}, nil)
		m.On("PromoteAdministrator", ctx, "ghost").Return(gorm.ErrRecordNotFound)

		assert.NoError(t, database.Seed(ctx, m, "ghost", zap.NewNop()))
	})

	t.Run("group failure aborts", func(t *testing.T) {
		m := new(mockSeeder)
		m.On("EnsureGroup", ctx, models.GroupManager).Return(nil, errors.New("db down"))

		err := database.Seed(ctx, m, "root", zap.NewNop())
		assert.ErrorContains(t, err, "db down")
		m.AssertNumberOfCalls(t, "EnsureGroup", 1)
	})
}
