package models

import "time"

// Order statuses and progress stages used by the production board.
const (
	StatusPending      = "Pending"
	StatusInProduction = "In Production"
	StatusComplete     = "Complete"

	ProgressPaper = "Paper"
	ProgressReady = "Ready"
)

// Order is a production job. The snapshot columns hold a copy of the
// product taken at the last sync; they are never joined live.
type Order struct {
	ID        uint   `gorm:"primaryKey"   json:"id"`
	OrderID   string `gorm:"size:64;index" json:"order_id"` // external job reference
	ProductID *uint  `gorm:"index"        json:"product_id"`
	ParentID  *uint  `gorm:"index"        json:"parent_id"`

	ProductName    string `gorm:"size:255"  json:"product_name"`
	Specs          string `gorm:"type:text" json:"specs"`
	ProductSpecs   string `gorm:"type:text" json:"product_specs"`
	SpecialEffects string `gorm:"type:text" json:"special_effects"` // resolved names, never ids
	Dimension      string `gorm:"size:100"  json:"dimension"`
	PlateNo        string `gorm:"size:100"  json:"plate_no"`
	Ink            string `gorm:"size:100"  json:"ink"`
	ArtworkCode    string `gorm:"size:100"  json:"artwork_code"`
	UPS            *int   `gorm:"column:ups" json:"ups"`
	CustomerName   string `gorm:"size:255"  json:"customer_name"`
	PaperTypeName  string `gorm:"size:255"  json:"paper_type_name"`
	GSMValue       string `gorm:"column:gsm_value;size:50" json:"gsm_value"`

	Quantity  int       `json:"quantity"`
	Status    string    `gorm:"size:50;default:Pending" json:"status"`
	Progress  string    `gorm:"size:50;default:Paper"   json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
