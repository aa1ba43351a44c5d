package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ordersync/app/models"
	"github.com/shashiranjanraj/ordersync/pkg/migration"
	"github.com/shashiranjanraj/ordersync/pkg/queue"
)

func init() {
	migration.Register("20260101000000_create_lookup_tables", &CreateLookupTables{})
	migration.Register("20260101000001_create_products_table", &CreateProductsTable{})
	migration.Register("20260101000002_create_orders_table", &CreateOrdersTable{})
	migration.Register("20260101000003_create_failed_jobs_table", &CreateFailedJobsTable{})
}

// -------- 0001: lookup tables --------

type CreateLookupTables struct{}

func (m *CreateLookupTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.SpecialEffect{},
		&models.Size{},
		&models.Customer{},
		&models.PaperType{},
		&models.GSM{},
	)
}

func (m *CreateLookupTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("special_effects", "sizes", "customers", "paper_types", "gsm")
}

// -------- 0002: products --------

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

// -------- 0003: orders --------

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("orders")
}

// -------- 0004: failed jobs --------

type CreateFailedJobsTable struct{}

func (m *CreateFailedJobsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&queue.FailedJobRecord{})
}

func (m *CreateFailedJobsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(queue.FailedJobRecord{}.TableName())
}
