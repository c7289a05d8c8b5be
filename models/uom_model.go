package models

type Uom struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"unique" json:"code"` // "KG", "PCS", "LT"
	Name string `json:"name"`
	// Precision is the number of decimal places quantities of this unit
	// are rounded to. One rule per UOM, applied at every call site.
	Precision int32 `json:"precision" gorm:"default:4"`
}
