package routes

import (
	"net/http"

	"restaurant-service/controllers"

	"github.com/gin-gonic/gin"
)

// Controllers bundles the handlers mounted under /api.
type Controllers struct {
	Categories *controllers.CategoryController
	MenuItems  *controllers.MenuItemController
	Cart       *controllers.CartController
	Orders     *controllers.OrderController
}

// RegisterRoutes sets up the catalog, cart and order routes. auth resolves
// the caller and catalogWriter restricts catalog writes to management.
func RegisterRoutes(r *gin.Engine, ctrl Controllers, auth, catalogWriter gin.HandlerFunc) {
	api := r.Group("/api")

	// Catalog reads are public
	categories := api.Group("/categories")
	categories.GET("", ctrl.Categories.ListCategories)
	categories.GET("/:id", ctrl.Categories.GetCategory)

	menuItems := api.Group("/menu-items")
	menuItems.GET("", ctrl.MenuItems.ListMenuItems)
	menuItems.GET("/:id", ctrl.MenuItems.GetMenuItem)

	categoryWrites := categories.Group("", auth, catalogWriter)
	categoryWrites.POST("", ctrl.Categories.CreateCategory)
	categoryWrites.PUT("/:id", ctrl.Categories.UpdateCategory)
	categoryWrites.PATCH("/:id", ctrl.Categories.UpdateCategory)
	categoryWrites.DELETE("/:id", ctrl.Categories.DeleteCategory)

	menuWrites := menuItems.Group("", auth, catalogWriter)
	menuWrites.POST("", ctrl.MenuItems.CreateMenuItem)
	menuWrites.PUT("/:id", ctrl.MenuItems.UpdateMenuItem)
	menuWrites.PATCH("/:id", ctrl.MenuItems.UpdateMenuItem)
	menuWrites.DELETE("/:id", ctrl.MenuItems.DeleteMenuItem)

	cart := api.Group("/cart", auth)
	cart.GET("/menu-items", ctrl.Cart.GetCart)
	cart.POST("/menu-items", ctrl.Cart.AddToCart)
	cart.DELETE("/menu-items", ctrl.Cart.ClearCart)

	orders := api.Group("/orders", auth)
	orders.GET("", ctrl.Orders.ListOrders)
	orders.POST("", ctrl.Orders.PlaceOrder)
	orders.GET("/:id", ctrl.Orders.GetOrder)
	orders.PUT("/:id", ctrl.Orders.UpdateOrder)
	orders.PATCH("/:id", ctrl.Orders.UpdateOrder)
}

// RegisterHealth mounts the liveness endpoint.
func RegisterHealth(r *gin.Engine, service string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": service})
	})
}
