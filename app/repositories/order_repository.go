package repositories

import (
	"context"

	"github.com/shashiranjanraj/ordersync/app/models"
	"github.com/shashiranjanraj/ordersync/pkg/orm"
)

// OrderRepository handles database operations for Order.
type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// ByProduct returns every order linked to productID.
func (r *OrderRepository) ByProduct(ctx context.Context, productID uint) ([]models.Order, error) {
	var orders []models.Order
	err := orm.DB().WithContext(ctx).Model(&models.Order{}).Where("product_id = ?", productID).Order("id").Get(&orders)
	return orders, err
}

// FindByID looks up an order by primary key.
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (models.Order, error) {
	var order models.Order
	err := orm.DB().WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).First(&order)
	return order, err
}
