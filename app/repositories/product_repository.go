package repositories

import (
	"context"

	"github.com/shashiranjanraj/ordersync/app/models"
	"github.com/shashiranjanraj/ordersync/pkg/orm"
)

// ProductRepository handles database operations for Product.
type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

// FindByID looks up a product by primary key.
func (r *ProductRepository) FindByID(ctx context.Context, id uint) (models.Product, error) {
	var product models.Product
	err := orm.DB().WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).First(&product)
	return product, err
}

// Create persists a new product record.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return orm.DB().WithContext(ctx).Create(product)
}

// Update persists changes to an existing product.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	return orm.DB().WithContext(ctx).Save(product)
}

// All returns products ordered by id, one page at a time.
func (r *ProductRepository) All(ctx context.Context, page, limit int) ([]models.Product, orm.Pagination, error) {
	var products []models.Product
	pagination, err := orm.DB().WithContext(ctx).Model(&models.Product{}).Order("id").GetWithPagination(&products, page, limit)
	return products, pagination, err
}
