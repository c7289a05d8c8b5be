package models

import (
	"fiber-mes/types"

	"gorm.io/gorm"
)

type Product struct {
	gorm.Model
	OrgID     types.SnowflakeID `json:"org_id" gorm:"uniqueIndex:idx_products_org_code,priority:1"`
	ItemCode  string            `json:"item_code" gorm:"uniqueIndex:idx_products_org_code,priority:2"`
	ItemName  string            `json:"item_name"`
	Uom       string            `json:"uom"`
	Group     string            `json:"group"`
	Category  string            `json:"category"`
	Remarks   string            `json:"remarks"`
	CreatedBy int
	UpdatedBy int
	DeletedBy int
}
