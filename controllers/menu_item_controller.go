package controllers

import (
	"net/http"

	"restaurant-service/middleware"
	"restaurant-service/models"
	"restaurant-service/services"

	"github.com/gin-gonic/gin"
)

// MenuItemController handles HTTP requests for menu items.
type MenuItemController struct {
	service   services.MenuItemService
	validator *RequestValidator
}

// NewMenuItemController creates a new MenuItemController.
func NewMenuItemController(service services.MenuItemService, validator *RequestValidator) *MenuItemController {
	return &MenuItemController{service: service, validator: validator}
}

// ListMenuItems handles GET /api/menu-items?category=&featured=&ordering=&page=&limit=.
func (mc *MenuItemController) ListMenuItems(c *gin.Context) {
	filter, err := mc.validator.ParseMenuFilter(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	items, total, err := mc.service.ListMenuItems(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"menu_items": items,
		"meta":       pageMeta(filter.Page, filter.Limit, total),
	})
}

// GetMenuItem handles GET /api/menu-items/:id.
func (mc *MenuItemController) GetMenuItem(c *gin.Context) {
	id, err := mc.validator.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	item, err := mc.service.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu_item": item})
}

// CreateMenuItem handles POST /api/menu-items.
func (mc *MenuItemController) CreateMenuItem(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.CreateMenuItemRequest
	if err := mc.validator.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	item, err := mc.service.CreateMenuItem(c.Request.Context(), actor, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"menu_item": item})
}

// UpdateMenuItem handles PUT and PATCH /api/menu-items/:id.
func (mc *MenuItemController) UpdateMenuItem(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := mc.validator.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.UpdateMenuItemRequest
	if err := mc.validator.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	item, err := mc.service.UpdateMenuItem(c.Request.Context(), actor, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu_item": item})
}

// DeleteMenuItem handles DELETE /api/menu-items/:id.
func (mc *MenuItemController) DeleteMenuItem(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := mc.validator.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := mc.service.DeleteMenuItem(c.Request.Context(), actor, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}
