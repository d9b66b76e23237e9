package controllers

import (
	"net/http"

	"restaurant-service/middleware"
	"restaurant-service/models"
	"restaurant-service/services"

	"github.com/gin-gonic/gin"
)

// OrderController handles HTTP requests for orders.
type OrderController struct {
	service   services.OrderService
	validator *RequestValidator
}

// NewOrderController creates a new OrderController.
func NewOrderController(service services.OrderService, validator *RequestValidator) *OrderController {
	return &OrderController{service: service, validator: validator}
}

// ListOrders handles GET /api/orders. What is listed depends on the caller's role.
func (oc *OrderController) ListOrders(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	page, limit, err := oc.validator.ParsePagination(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	orders, total, err := oc.service.ListOrders(c.Request.Context(), actor, page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"meta":   pageMeta(page, limit, total),
	})
}

// PlaceOrder handles POST /api/orders by converting the caller's cart.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	order, err := oc.service.PlaceOrder(c.Request.Context(), actor)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetOrder handles GET /api/orders/:id.
func (oc *OrderController) GetOrder(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := oc.validator.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	order, err := oc.service.GetOrder(c.Request.Context(), actor, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateOrder handles PUT and PATCH /api/orders/:id.
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := oc.validator.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.UpdateOrderRequest
	if err := oc.validator.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	order, err := oc.service.UpdateOrder(c.Request.Context(), actor, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
