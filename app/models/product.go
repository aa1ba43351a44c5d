package models

import "time"

// Product is the canonical record for a printable item. Orders copy its
// fields at write time; see Order.
type Product struct {
	ID             uint   `gorm:"primaryKey"                json:"id"`
	ProductName    string `gorm:"size:255;not null;index"   json:"product_name"`
	SKU            string `gorm:"size:100;index"            json:"sku"`
	ArtworkCode    string `gorm:"size:100"                  json:"artwork_code"`
	CustomerID     *uint  `gorm:"index"                     json:"customer_id"`
	PaperTypeID    *uint  `json:"paper_type_id"`
	GSMID          *uint  `gorm:"column:gsm_id"             json:"gsm_id"`
	SizeID         *uint  `json:"size_id"`
	Dimension      string `gorm:"size:100"                  json:"dimension"`
	FoldingDim     string `gorm:"size:100"                  json:"folding_dim"`
	Folding        string `gorm:"size:100"                  json:"folding"`
	Ink            string `gorm:"size:100"                  json:"ink"`
	PlateNo        string `gorm:"size:100"                  json:"plate_no"`
	Coating        string `gorm:"size:100"                  json:"coating"`
	SpecialEffects string `gorm:"type:text"                 json:"special_effects"` // pipe-delimited special_effects ids
	Specs          string `gorm:"type:text"                 json:"specs"`           // derived, see services.ComposeSpecs
	// UPS is free text in the product form; the engine coerces it to a number.
	UPS       *string   `gorm:"column:ups;size:32" json:"ups"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
