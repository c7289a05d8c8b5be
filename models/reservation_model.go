package models

import (
	"time"

	"fiber-mes/controllers/idgen"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ReservationStatusActive   = "active"
	ReservationStatusReleased = "released"
)

// Reservation binds a quantity of one inventory unit to one material line.
// Rows are never deleted; release flips the status and keeps the audit
// trail. At most one active reservation may exist per (line, unit) pair.
type Reservation struct {
	ID              types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	OrgID           types.SnowflakeID `json:"org_id" gorm:"index"`
	WorkOrderID     types.SnowflakeID `json:"work_order_id" gorm:"index"`
	WOMaterialID    types.SnowflakeID `json:"wo_material_id" gorm:"index"`
	InventoryUnitID types.SnowflakeID `json:"inventory_unit_id" gorm:"index"`
	ReservedQty     decimal.Decimal   `json:"reserved_qty" gorm:"type:decimal(20,4);not null"`
	Status          string            `json:"status" gorm:"default:'active';index"`
	ReleasedAt      *time.Time        `json:"released_at"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time
	CreatedBy       int `json:"created_by"`
	UpdatedBy       int
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == 0 {
		r.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}
