package models

import (
	"time"

	"fiber-mes/controllers/idgen"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ConsumptionStatusActive   = "active"
	ConsumptionStatusReversed = "reversed"
)

// Consumption is one draw of material against a line. Reversal flips the
// status and restores the line's consumed counter; rows are append-only.
// ReservedDrawQty is the part of ConsumedQty satisfied from the allocated
// bucket of the reservation in ReservationID; the rest came from free
// stock. Release and reversal settle against these, never against the raw
// reservation quantity.
type Consumption struct {
	ID              types.SnowflakeID  `json:"ID" gorm:"primaryKey"`
	OrgID           types.SnowflakeID  `json:"org_id" gorm:"index"`
	WorkOrderID     types.SnowflakeID  `json:"work_order_id" gorm:"index"`
	WOMaterialID    types.SnowflakeID  `json:"wo_material_id" gorm:"index"`
	InventoryUnitID types.SnowflakeID  `json:"inventory_unit_id" gorm:"index"`
	ReservationID   *types.SnowflakeID `json:"reservation_id" gorm:"index"`
	ConsumedQty     decimal.Decimal    `json:"consumed_qty" gorm:"type:decimal(20,4);not null"`
	ReservedDrawQty decimal.Decimal    `json:"reserved_draw_qty" gorm:"type:decimal(20,4);default:0"`
	Uom             string             `json:"uom"`
	IsFullUnit      bool               `json:"is_full_unit" gorm:"default:false"`
	Status          string             `json:"status" gorm:"default:'active';index"`
	ConsumedBy      int                `json:"consumed_by"`
	ConsumedAt      time.Time          `json:"consumed_at"`
	ReversedAt      *time.Time         `json:"reversed_at"`
	ReversedBy      *int               `json:"reversed_by"`
	ReversalReason  string             `json:"reversal_reason"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (c *Consumption) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == 0 {
		c.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}
