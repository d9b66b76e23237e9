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

// CategoryService defines the business logic for menu categories.
type CategoryService interface {
	ListCategories(ctx context.Context, page, limit int) ([]models.Category, int64, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, actor access.Actor, req *models.CreateCategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, actor access.Actor, id uint, req *models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, actor access.Actor, id uint) error
}

type categoryServiceImpl struct {
	repo   repository.CategoryRepository
	cache  cache.MenuCache
	logger *zap.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repository.CategoryRepository, menuCache cache.MenuCache, logger *zap.Logger) CategoryService {
	if menuCache == nil {
		menuCache = cache.Noop{}
	}
	return &categoryServiceImpl{repo: repo, cache: menuCache, logger: logger}
}

func (s *categoryServiceImpl) ListCategories(ctx context.Context, page, limit int) ([]models.Category, int64, error) {
	page, limit = normalizePage(page, limit)
	categories, total, err := s.repo.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list categories", zap.Error(err))
		return nil, 0, apperrors.Internal("Failed to list categories", err)
	}
	return categories, total, nil
}

func (s *categoryServiceImpl) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Category not found")
		}
		s.logger.Error("Failed to load category", zap.Uint("category_id", id), zap.Error(err))
		return nil, apperrors.Internal("Failed to load category", err)
	}
	return category, nil
}

func (s *categoryServiceImpl) CreateCategory(ctx context.Context, actor access.Actor, req *models.CreateCategoryRequest) (*models.Category, error) {
	if !access.CanWriteCatalog(actor) {
		return nil, apperrors.Forbidden("Manager role required")
	}

	category := &models.Category{
		Slug:  strings.TrimSpace(req.Slug),
		Title: strings.TrimSpace(req.Title),
	}
	if category.Slug == "" || category.Title == "" {
		return nil, apperrors.Validation("slug and title are required")
	}
	if err := s.ensureSlugFree(ctx, category.Slug, 0); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, category); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Validation("A category with this slug already exists")
		}
		s.logger.Error("Failed to create category", zap.Error(err))
		return nil, apperrors.Internal("Failed to create category", err)
	}

	s.invalidate(ctx)
	s.logger.Info("Category created", zap.Uint("category_id", category.ID), zap.String("slug", category.Slug))
	return category, nil
}

func (s *categoryServiceImpl) UpdateCategory(ctx context.Context, actor access.Actor, id uint, req *models.UpdateCategoryRequest) (*models.Category, error) {
	if !access.CanWriteCatalog(actor) {
		return nil, apperrors.Forbidden("Manager role required")
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		if slug == "" {
			return nil, apperrors.Validation("slug must not be empty")
		}
		if slug != category.Slug {
			if err := s.ensureSlugFree(ctx, slug, id); err != nil {
				return nil, err
			}
		}
		category.Slug = slug
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.Validation("title must not be empty")
		}
		category.Title = title
	}

	if err := s.repo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperrors.NotFound("Category not found")
		case isUniqueViolation(err):
			return nil, apperrors.Validation("A category with this slug already exists")
		}
		s.logger.Error("Failed to update category", zap.Uint("category_id", id), zap.Error(err))
		return nil, apperrors.Internal("Failed to update category", err)
	}

	s.invalidate(ctx)
	return category, nil
}

// DeleteCategory removes a category that no menu item references.
func (s *categoryServiceImpl) DeleteCategory(ctx context.Context, actor access.Actor, id uint) error {
	if !access.CanWriteCatalog(actor) {
		return apperrors.Forbidden("Manager role required")
	}

	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}

	inUse, err := s.repo.CountMenuItems(ctx, id)
	if err != nil {
		s.logger.Error("Failed to count category menu items", zap.Uint("category_id", id), zap.Error(err))
		return apperrors.Internal("Failed to delete category", err)
	}
	if inUse > 0 {
		return apperrors.Validation("Category still has menu items")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Category not found")
		}
		s.logger.Error("Failed to delete category", zap.Uint("category_id", id), zap.Error(err))
		return apperrors.Internal("Failed to delete category", err)
	}

	s.invalidate(ctx)
	s.logger.Info("Category deleted", zap.Uint("category_id", id))
	return nil
}

func (s *categoryServiceImpl) ensureSlugFree(ctx context.Context, slug string, excludeID uint) error {
	taken, err := s.repo.SlugTaken(ctx, slug, excludeID)
	if err != nil {
		s.logger.Error("Failed to check category slug", zap.Error(err))
		return apperrors.Internal("Failed to check category slug", err)
	}
	if taken {
		return apperrors.Validation("A category with this slug already exists")
	}
	return nil
}

// Menu listings embed their category, so category writes also retire them.
func (s *categoryServiceImpl) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("Failed to invalidate menu cache", zap.Error(err))
	}
}
