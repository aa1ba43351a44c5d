package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ordersync/app/repositories"
	"github.com/shashiranjanraj/ordersync/app/services"
	"github.com/shashiranjanraj/ordersync/pkg/response"
)

// OrderController serves the order snapshots. It never writes.
type OrderController struct {
	orders   *repositories.OrderRepository
	products *services.ProductService
}

func NewOrderController(orders *repositories.OrderRepository, products *services.ProductService) *OrderController {
	return &OrderController{orders: orders, products: products}
}

func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		response.NotFound(w, "")
		return
	}
	o, err := c.orders.FindByID(r.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(w, "order not found")
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, o)
}

// ByProduct lists the orders linked to one product.
func (c *OrderController) ByProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		response.NotFound(w, "")
		return
	}
	if _, err := c.products.Get(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	orders, err := c.orders.ByProduct(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, orders)
}
