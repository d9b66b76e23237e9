package controllers

import (
	"net/http"

	"restaurant-service/middleware"
	"restaurant-service/models"
	"restaurant-service/services"

	"github.com/gin-gonic/gin"
)

// CategoryController handles HTTP requests for menu categories.
type CategoryController struct {
	service   services.CategoryService
	validator *RequestValidator
}

// NewCategoryController creates a new CategoryController.
func NewCategoryController(service services.CategoryService, validator *RequestValidator) *CategoryController {
	return &CategoryController{service: service, validator: validator}
}

// ListCategories handles GET /api/categories.
func (cc *CategoryController) ListCategories(c *gin.Context) {
	page, limit, err := cc.validator.ParsePagination(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	categories, total, err := cc.service.ListCategories(c.Request.Context(), page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"meta":       pageMeta(page, limit, total),
	})
}

// GetCategory handles GET /api/categories/:id.
func (cc *CategoryController) GetCategory(c *gin.Context) {
	id, err := cc.validator.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	category, err := cc.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// CreateCategory handles POST /api/categories.
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.CreateCategoryRequest
	if err := cc.validator.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	category, err := cc.service.CreateCategory(c.Request.Context(), actor, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory handles PUT and PATCH /api/categories/:id.
func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := cc.validator.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.UpdateCategoryRequest
	if err := cc.validator.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	category, err := cc.service.UpdateCategory(c.Request.Context(), actor, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory handles DELETE /api/categories/:id.
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := cc.validator.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := cc.service.DeleteCategory(c.Request.Context(), actor, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
