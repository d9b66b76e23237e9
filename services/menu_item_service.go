package services

import (
	"context"
	"errors"
	"strings"

	"restaurant-service/access"
	"restaurant-service/cache"
	apperrors "restaurant-service/common/errors"
	"restaurant-service/models"
	"restaurant-service/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MenuItemService defines the business logic for menu items.
type MenuItemService interface {
	ListMenuItems(ctx context.Context, filter models.MenuItemFilter) ([]models.MenuItem, int64, error)
	GetMenuItem(ctx context.Context, id uint) (*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, actor access.Actor, req *models.CreateMenuItemRequest) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, actor access.Actor, id uint, req *models.UpdateMenuItemRequest) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, actor access.Actor, id uint) error
}

type menuItemServiceImpl struct {
	items      repository.MenuItemRepository
	categories repository.CategoryRepository
	cache      cache.MenuCache
	logger     *zap.Logger
}

// NewMenuItemService creates a new MenuItemService. A nil cache disables caching.
func NewMenuItemService(
	items repository.MenuItemRepository,
	categories repository.CategoryRepository,
	menuCache cache.MenuCache,
	logger *zap.Logger,
) MenuItemService {
	if menuCache == nil {
		menuCache = cache.Noop{}
	}
	return &menuItemServiceImpl{
		items:      items,
		categories: categories,
		cache:      menuCache,
		logger:     logger,
	}
}

// ListMenuItems returns one page of the menu, served from cache when possible.
func (s *menuItemServiceImpl) ListMenuItems(ctx context.Context, filter models.MenuItemFilter) ([]models.MenuItem, int64, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	filter.Category = strings.TrimSpace(filter.Category)
	if _, ok := models.MenuItemOrdering[filter.Ordering]; !ok {
		return nil, 0, apperrors.Validation("ordering must be one of id, -id, price, -price, title, -title")
	}

	cached, version, ok := s.cache.GetList(ctx, filter)
	if ok {
		return cached.Items, cached.Total, nil
	}

	items, total, err := s.items.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list menu items", zap.Error(err))
		return nil, 0, apperrors.Internal("Failed to list menu items", err)
	}

	s.cache.SetList(version, filter, &cache.MenuPage{Items: items, Total: total})
	return items, total, nil
}

func (s *menuItemServiceImpl) GetMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	cached, version, ok := s.cache.GetItem(ctx, id)
	if ok {
		return cached, nil
	}

	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetItem(version, item)
	return item, nil
}

func (s *menuItemServiceImpl) CreateMenuItem(ctx context.Context, actor access.Actor, req *models.CreateMenuItemRequest) (*models.MenuItem, error) {
	if !access.CanWriteCatalog(actor) {
		return nil, apperrors.Forbidden("Manager role required")
	}

	item := &models.MenuItem{
		Title:      strings.TrimSpace(req.Title),
		Price:      req.Price,
		Featured:   req.Featured,
		CategoryID: req.CategoryID,
	}
	if err := s.check(ctx, item); err != nil {
		return nil, err
	}

	if err := s.items.Create(ctx, item); err != nil {
		s.logger.Error("Failed to create menu item", zap.Error(err))
		return nil, apperrors.Internal("Failed to create menu item", err)
	}

	s.invalidate(ctx)
	s.logger.Info("Menu item created",
		zap.Uint("menu_item_id", item.ID),
		zap.String("title", item.Title),
		zap.String("price", item.Price.StringFixed(2)),
	)
	return item, nil
}

// UpdateMenuItem applies the non-nil fields of req. Existing cart lines and
// order items keep the price they were created with.
func (s *menuItemServiceImpl) UpdateMenuItem(ctx context.Context, actor access.Actor, id uint, req *models.UpdateMenuItemRequest) (*models.MenuItem, error) {
	if !access.CanWriteCatalog(actor) {
		return nil, apperrors.Forbidden("Manager role required")
	}

	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		item.Title = strings.TrimSpace(*req.Title)
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Featured != nil {
		item.Featured = *req.Featured
	}
	if req.CategoryID != nil && *req.CategoryID != item.CategoryID {
		item.CategoryID = *req.CategoryID
		item.Category = nil
	}
	if err := s.check(ctx, item); err != nil {
		return nil, err
	}

	if err := s.items.Update(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Menu item not found")
		}
		s.logger.Error("Failed to update menu item", zap.Uint("menu_item_id", id), zap.Error(err))
		return nil, apperrors.Internal("Failed to update menu item", err)
	}

	s.invalidate(ctx)
	return item, nil
}

func (s *menuItemServiceImpl) DeleteMenuItem(ctx context.Context, actor access.Actor, id uint) error {
	if !access.CanWriteCatalog(actor) {
		return apperrors.Forbidden("Manager role required")
	}

	if err := s.items.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Menu item not found")
		}
		s.logger.Error("Failed to delete menu item", zap.Uint("menu_item_id", id), zap.Error(err))
		return apperrors.Internal("Failed to delete menu item", err)
	}

	s.invalidate(ctx)
	s.logger.Info("Menu item deleted", zap.Uint("menu_item_id", id))
	return nil
}

func (s *menuItemServiceImpl) load(ctx context.Context, id uint) (*models.MenuItem, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Menu item not found")
		}
		s.logger.Error("Failed to load menu item", zap.Uint("menu_item_id", id), zap.Error(err))
		return nil, apperrors.Internal("Failed to load menu item", err)
	}
	return item, nil
}

// check enforces the item invariants and attaches its category.
func (s *menuItemServiceImpl) check(ctx context.Context, item *models.MenuItem) error {
	if item.Title == "" {
		return apperrors.Validation("title is required")
	}
	if !validPrice(item.Price) {
		return apperrors.Validation("price must be a positive amount with at most two decimal places")
	}
	if item.CategoryID == 0 {
		return apperrors.Validation("category_id is required")
	}
	if item.Category != nil && item.Category.ID == item.CategoryID {
		return nil
	}

	category, err := s.categories.FindByID(ctx, item.CategoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Validation("category does not exist")
		}
		s.logger.Error("Failed to load category", zap.Uint("category_id", item.CategoryID), zap.Error(err))
		return apperrors.Internal("Failed to load category", err)
	}
	item.Category = category
	return nil
}

func (s *menuItemServiceImpl) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("Failed to invalidate menu cache", zap.Error(err))
	}
}
