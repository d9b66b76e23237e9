package repository

import (
	"context"
	"strings"

	"restaurant-service/models"

	"gorm.io/gorm"
)

// MenuItemRepository defines data access for menu items.
type MenuItemRepository interface {
	Create(ctx context.Context, item *models.MenuItem) error
	FindByID(ctx context.Context, id uint) (*models.MenuItem, error)
	FindAll(ctx context.Context, filter models.MenuItemFilter) ([]models.MenuItem, int64, error)
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id uint) error
}

// GormMenuItemRepository implements MenuItemRepository using GORM.
type GormMenuItemRepository struct {
	db *gorm.DB
}

// NewGormMenuItemRepository creates a new GormMenuItemRepository.
func NewGormMenuItemRepository(db *gorm.DB) MenuItemRepository {
	return &GormMenuItemRepository{db: db}
}

func (r *GormMenuItemRepository) Create(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Omit("Category").Create(item).Error
}

// FindByID loads a menu item together with its category.
func (r *GormMenuItemRepository) FindByID(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).Preload("Category").First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindAll returns one page of menu items matching filter. Category matches
// the category title case-insensitively.
func (r *GormMenuItemRepository) FindAll(ctx context.Context, filter models.MenuItemFilter) ([]models.MenuItem, int64, error) {
	var items []models.MenuItem
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MenuItem{})
	if filter.Category != "" {
		query = query.
			Joins("JOIN categories ON categories.id = menu_items.category_id").
			Where("LOWER(categories.title) = ?", strings.ToLower(filter.Category))
	}
	if filter.Featured != nil {
		query = query.Where("menu_items.featured = ?", *filter.Featured)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := models.MenuItemOrdering[filter.Ordering]
	if !ok {
		order = models.MenuItemOrdering[""]
	}

	if err := query.
		Preload("Category").
		Order("menu_items." + order).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormMenuItemRepository) Update(ctx context.Context, item *models.MenuItem) error {
	result := r.db.WithContext(ctx).
		Model(item).
		Select("title", "price", "featured", "category_id").
		Updates(item)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormMenuItemRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.MenuItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
