package repository

import (
	"context"

	"restaurant-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository defines data access for cart lines.
type CartRepository interface {
	FindByUser(ctx context.Context, userID uint) ([]models.CartLine, error)
	LockByUser(ctx context.Context, userID uint) ([]models.CartLine, error)
	FindLine(ctx context.Context, userID, menuItemID uint) (*models.CartLine, error)
	AddQuantity(ctx context.Context, line *models.CartLine) (bool, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
	DeleteLines(ctx context.Context, userID uint, ids []uint) (int64, error)
}

// GormCartRepository implements CartRepository using GORM.
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository.
func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

// FindByUser returns the user's cart lines with their menu items.
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Preload("MenuItem").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&lines).Error
	return lines, err
}

// LockByUser reads the user's cart lines with SELECT ... FOR UPDATE. It must
// run inside a transaction; concurrent callers for the same user block until
// the holder commits.
func (r *GormCartRepository) LockByUser(ctx context.Context, userID uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&lines).Error
	return lines, err
}

func (r *GormCartRepository) FindLine(ctx context.Context, userID, menuItemID uint) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Preload("MenuItem").
		Where("user_id = ? AND menu_item_id = ?", userID, menuItemID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// AddQuantity inserts line, or when the user already has a line for the
// menu item, adds line.Quantity to it. An existing line keeps its unit price
// snapshot and its price is recomputed from it. It reports false, writing
// nothing, when the merged line would exceed MaxLineQuantity or MaxAmount.
func (r *GormCartRepository) AddQuantity(ctx context.Context, line *models.CartLine) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit("MenuItem").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "menu_item_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_lines.quantity + excluded.quantity"),
				"price":    gorm.Expr("cart_lines.unit_price * (cart_lines.quantity + excluded.quantity)"),
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("cart_lines.quantity + excluded.quantity <= ?", models.MaxLineQuantity),
				gorm.Expr("cart_lines.unit_price * (cart_lines.quantity + excluded.quantity) < ?", models.MaxAmount),
			}},
		}).
		Create(line)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteLines removes the given lines of the user. Lines added after ids
// were read are left alone.
func (r *GormCartRepository) DeleteLines(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.CartLine{})
	return result.RowsAffected, result.Error
}

// DeleteByUser removes every cart line of the user.
func (r *GormCartRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{})
	return result.RowsAffected, result.Error
}
