package services

import (
	"context"
	"errors"
	"fmt"

	"restaurant-service/access"
	apperrors "restaurant-service/common/errors"
	"restaurant-service/models"
	"restaurant-service/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CartService defines the operations on the caller's cart.
type CartService interface {
	ListCart(ctx context.Context, actor access.Actor) ([]models.CartLine, error)
	AddToCart(ctx context.Context, actor access.Actor, req *models.AddToCartRequest) (*models.CartLine, error)
	ClearCart(ctx context.Context, actor access.Actor) error
}

type cartServiceImpl struct {
	carts  repository.CartRepository
	items  repository.MenuItemRepository
	logger *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(carts repository.CartRepository, items repository.MenuItemRepository, logger *zap.Logger) CartService {
	return &cartServiceImpl{carts: carts, items: items, logger: logger}
}

func (s *cartServiceImpl) ListCart(ctx context.Context, actor access.Actor) ([]models.CartLine, error) {
	lines, err := s.carts.FindByUser(ctx, actor.ID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.Uint("user_id", actor.ID), zap.Error(err))
		return nil, apperrors.Internal("Failed to load cart", err)
	}
	return lines, nil
}

// AddToCart adds quantity of a menu item to the cart. The catalog price is
// captured on the first add; later adds of the same item reuse it.
func (s *cartServiceImpl) AddToCart(ctx context.Context, actor access.Actor, req *models.AddToCartRequest) (*models.CartLine, error) {
	if req.Quantity < 1 {
		return nil, apperrors.Validation("quantity must be at least 1")
	}
	if req.Quantity > models.MaxLineQuantity {
		return nil, apperrors.Validation(fmt.Sprintf("quantity must be at most %d", models.MaxLineQuantity))
	}

	item, err := s.items.FindByID(ctx, req.MenuItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Menu item not found")
		}
		s.logger.Error("Failed to load menu item", zap.Uint("menu_item_id", req.MenuItemID), zap.Error(err))
		return nil, apperrors.Internal("Failed to add to cart", err)
	}

	price := models.LinePrice(req.Quantity, item.Price)
	if !validPrice(price) {
		return nil, apperrors.Validation("Cart line price exceeds the maximum amount")
	}

	line := &models.CartLine{
		UserID:     actor.ID,
		MenuItemID: item.ID,
		Quantity:   req.Quantity,
		UnitPrice:  item.Price,
		Price:      price,
	}
	applied, err := s.carts.AddQuantity(ctx, line)
	if err != nil {
		s.logger.Error("Failed to add to cart", zap.Uint("user_id", actor.ID), zap.Error(err))
		return nil, apperrors.Internal("Failed to add to cart", err)
	}
	if !applied {
		return nil, apperrors.Validation(fmt.Sprintf(
			"Cart line would exceed %d units or the maximum amount", models.MaxLineQuantity))
	}

	stored, err := s.carts.FindLine(ctx, actor.ID, item.ID)
	if err != nil {
		s.logger.Error("Failed to reload cart line", zap.Uint("user_id", actor.ID), zap.Error(err))
		return nil, apperrors.Internal("Failed to add to cart", err)
	}
	return stored, nil
}

func (s *cartServiceImpl) ClearCart(ctx context.Context, actor access.Actor) error {
	removed, err := s.carts.DeleteByUser(ctx, actor.ID)
	if err != nil {
		s.logger.Error("Failed to clear cart", zap.Uint("user_id", actor.ID), zap.Error(err))
		return apperrors.Internal("Failed to clear cart", err)
	}
	s.logger.Debug("Cart cleared", zap.Uint("user_id", actor.ID), zap.Int64("lines", removed))
	return nil
}
