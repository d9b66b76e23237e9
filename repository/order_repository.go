package repository

import (
	"context"

	"restaurant-service/models"

	"gorm.io/gorm"
)

// OrderRepository defines data access for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uint, filter models.OrderFilter) (*models.Order, error)
	FindAll(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, error)
	UpdateGuarded(ctx context.Context, id uint, from, to models.OrderChanges) (bool, error)
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts the order and its items.
func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func scoped(query *gorm.DB, filter models.OrderFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.DeliveryCrewID != nil {
		query = query.Where("delivery_crew_id = ?", *filter.DeliveryCrewID)
	}
	return query
}

// FindByID returns the order only if it also satisfies filter.
func (r *GormOrderRepository) FindByID(ctx context.Context, id uint, filter models.OrderFilter) (*models.Order, error) {
	var order models.Order
	query := scoped(r.db.WithContext(ctx).Model(&models.Order{}), filter)
	if err := query.Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindAll returns one page of orders matching filter, newest first.
func (r *GormOrderRepository) FindAll(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := scoped(r.db.WithContext(ctx).Model(&models.Order{}), filter).Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Items").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateGuarded writes to only if the order still has the status and crew in
// from. It reports false when the row was changed concurrently or is gone.
func (r *GormOrderRepository) UpdateGuarded(ctx context.Context, id uint, from, to models.OrderChanges) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from.Status)
	if from.DeliveryCrewID == nil {
		query = query.Where("delivery_crew_id IS NULL")
	} else {
		query = query.Where("delivery_crew_id = ?", *from.DeliveryCrewID)
	}

	var crew interface{}
	if to.DeliveryCrewID != nil {
		crew = *to.DeliveryCrewID
	}

	result := query.Updates(map[string]interface{}{
		"status":           to.Status,
		"delivery_crew_id": crew,
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
