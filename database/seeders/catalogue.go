package seeders

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/ordersync/app/models"
)

func init() {
	Register("catalogue", SeedCatalogue)
}

func ptr[T any](v T) *T { return &v }

// SeedCatalogue inserts a small demo catalogue: lookup tables, two
// products and a handful of orders with stale snapshots, so that
// `ordersync audit --all` has something to report. Re-running it is a no-op.
func SeedCatalogue(db *gorm.DB) error {
	upsert := db.Clauses(clause.OnConflict{DoNothing: true})

	lookups := []any{
		&[]models.SpecialEffect{{ID: 1, Name: "Spot UV"}, {ID: 2, Name: "Embossing"}, {ID: 147, Name: "Gold Foil"}},
		&[]models.Size{{ID: 1, Name: "A4"}, {ID: 2, Name: "A5"}},
		&[]models.Customer{{ID: 1, Name: "Acme Foods"}, {ID: 2, Name: "Northwind Traders"}},
		&[]models.PaperType{{ID: 1, Name: "Art Card"}, {ID: 2, Name: "Kraft"}},
		&[]models.GSM{{ID: 1, Name: "300"}, {ID: 2, Name: "350"}},
	}
	for _, rows := range lookups {
		if err := upsert.Create(rows).Error; err != nil {
			return err
		}
	}

	products := []models.Product{
		{
			ID: 1, ProductName: "Mailer Box", SKU: "MB-001", ArtworkCode: "AW-100",
			CustomerID: ptr(uint(1)), PaperTypeID: ptr(uint(1)), GSMID: ptr(uint(2)), SizeID: ptr(uint(1)),
			Dimension: "210x297", Ink: "CMYK", PlateNo: "P-17",
			SpecialEffects: "1|147", UPS: ptr("4"),
		},
		{
			ID: 2, ProductName: "Coffee Sleeve", SKU: "CS-002", ArtworkCode: "AW-200",
			CustomerID: ptr(uint(2)), PaperTypeID: ptr(uint(2)), GSMID: ptr(uint(1)), SizeID: ptr(uint(2)),
			Dimension: "90x250", Ink: "2C", PlateNo: "P-22",
			SpecialEffects: "2", UPS: ptr("abc"),
		},
	}
	if err := upsert.Create(&products).Error; err != nil {
		return err
	}

	orders := []models.Order{
		{ID: 1, OrderID: "JOB-1001", ProductID: ptr(uint(1)), ProductName: "Mailer Box (old)", SpecialEffects: "1|147", Quantity: 500},
		{ID: 2, OrderID: "JOB-1002", ProductID: ptr(uint(1)), ProductName: "Mailer Box", Quantity: 1200},
		{ID: 3, OrderID: "JOB-1003", ProductID: ptr(uint(2)), ProductName: "Coffee Sleeve", SpecialEffects: "Embossing", Quantity: 5000},
		{ID: 4, OrderID: "JOB-1004", ProductName: "Walk-in reprint", Quantity: 50},
		{ID: 5, OrderID: "JOB-1001-R", ProductID: ptr(uint(1)), ParentID: ptr(uint(1)), ProductName: "Mailer Box (old)", Quantity: 100},
	}
	return upsert.Create(&orders).Error
}
