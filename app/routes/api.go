package routes

import (
	"github.com/shashiranjanraj/ordersync/app/controllers"
	"github.com/shashiranjanraj/ordersync/pkg/router"
)

// Controllers are the handlers RegisterAPI mounts.
type Controllers struct {
	Products *controllers.ProductController
	Orders   *controllers.OrderController
	Audit    *controllers.AuditController
}

func RegisterAPI(r *router.Router, c Controllers) {
	api := r.Group("/api")

	api.Get("/products", "products.index", c.Products.Index)
	api.Get("/products/{id}", "products.show", c.Products.Show)
	api.Put("/products/{id}", "products.update", c.Products.Update)
	api.Post("/products/{id}/sync", "products.sync", c.Products.Sync)
	api.Get("/products/{id}/audit", "products.audit", c.Products.Audit)
	api.Get("/products/{id}/orders", "products.orders", c.Orders.ByProduct)

	api.Get("/orders/{id}", "orders.show", c.Orders.Show)

	api.Get("/audit", "audit.all", c.Audit.All)
}
