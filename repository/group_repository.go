package repository

import (
	"context"

	"restaurant-service/models"

	"gorm.io/gorm"
)

// GroupRepository reads role membership from the users/groups tables and
// seeds the groups this service depends on.
type GroupRepository interface {
	IsAdministrator(ctx context.Context, userID uint) (bool, error)
	HasRole(ctx context.Context, userID uint, group string) (bool, error)
	GroupCountOf(ctx context.Context, userID uint) (int64, error)
	EnsureGroup(ctx context.Context, name string) (*models.Group, error)
	PromoteAdministrator(ctx context.Context, username string) error
}

// GormGroupRepository implements GroupRepository using GORM.
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GormGroupRepository.
func NewGormGroupRepository(db *gorm.DB) GroupRepository {
	return &GormGroupRepository{db: db}
}

func (r *GormGroupRepository) IsAdministrator(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_superuser = ?", userID, true).
		Count(&count).Error
	return count > 0, err
}

func (r *GormGroupRepository) HasRole(ctx context.Context, userID uint, group string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("user_groups").
		Joins("JOIN groups ON groups.id = user_groups.group_id").
		Where("user_groups.user_id = ? AND groups.name = ?", userID, group).
		Count(&count).Error
	return count > 0, err
}

func (r *GormGroupRepository) GroupCountOf(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("user_groups").
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// EnsureGroup returns the named group, creating it if missing.
func (r *GormGroupRepository) EnsureGroup(ctx context.Context, name string) (*models.Group, error) {
	group := models.Group{Name: name}
	if err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// PromoteAdministrator sets the administrator flag on an existing user.
func (r *GormGroupRepository) PromoteAdministrator(ctx context.Context, username string) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Update("is_superuser", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
