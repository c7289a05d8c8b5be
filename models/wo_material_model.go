package models

import (
	"time"

	"fiber-mes/controllers/idgen"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WOMaterial is one scaled requirement line frozen from the BOM for a
// single work order. RequiredQty, BOMVersion and SnapshotAt are write-once
// per snapshot generation; ConsumedQty and ReservedQty are maintained by
// the reservation and consumption services only.
type WOMaterial struct {
	ID           types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	OrgID        types.SnowflakeID `json:"org_id" gorm:"index"`
	WorkOrderID  types.SnowflakeID `json:"work_order_id" gorm:"index"`
	ProductID    uint              `json:"product_id"`
	MaterialName string            `json:"material_name"` // denormalized product name at snapshot time
	RequiredQty  decimal.Decimal   `json:"required_qty" gorm:"type:decimal(20,4);not null"`
	ConsumedQty  decimal.Decimal   `json:"consumed_qty" gorm:"type:decimal(20,4);default:0"`
	ReservedQty  decimal.Decimal   `json:"reserved_qty" gorm:"type:decimal(20,4);default:0"`
	Uom          string            `json:"uom"`
	Sequence     int               `json:"sequence"`
	IsByProduct  bool              `json:"is_by_product" gorm:"default:false"`
	YieldPercent decimal.Decimal   `json:"yield_percent" gorm:"type:decimal(10,4);default:0"`
	ScrapPercent decimal.Decimal   `json:"scrap_percent" gorm:"type:decimal(10,4);default:0"`
	BOMItemID    types.SnowflakeID `json:"bom_item_id"`
	BOMVersion   int               `json:"bom_version"`
	SnapshotAt   time.Time         `json:"snapshot_at"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (m *WOMaterial) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == 0 {
		m.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}

// OutstandingQty is the quantity still reservable against this line.
func (m *WOMaterial) OutstandingQty() decimal.Decimal {
	return m.RequiredQty.Sub(m.ReservedQty)
}
