package controllers

import (
	"net/http"

	"restaurant-service/middleware"
	"restaurant-service/models"
	"restaurant-service/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CartController handles HTTP requests for the caller's cart.
type CartController struct {
	service   services.CartService
	validator *RequestValidator
}

// NewCartController creates a new CartController.
func NewCartController(service services.CartService, validator *RequestValidator) *CartController {
	return &CartController{service: service, validator: validator}
}

// GetCart handles GET /api/cart/menu-items.
func (cc *CartController) GetCart(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	lines, err := cc.service.ListCart(c.Request.Context(), actor)
	if err != nil {
		_ = c.Error(err)
		return
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price)
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	c.JSON(http.StatusOK, gin.H{"cart": lines, "total": total})
}

// AddToCart handles POST /api/cart/menu-items.
func (cc *CartController) AddToCart(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.AddToCartRequest
	if err := cc.validator.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	line, err := cc.service.AddToCart(c.Request.Context(), actor, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cart_line": line})
}

// ClearCart handles DELETE /api/cart/menu-items.
func (cc *CartController) ClearCart(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := cc.service.ClearCart(c.Request.Context(), actor); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
