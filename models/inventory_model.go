package models

import (
	"time"

	"fiber-mes/controllers/idgen"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryUnit is a traceable quantity of stock (a lot / license plate).
// QtyAvailable is only ever changed through conditional updates so two
// racing reservations cannot both win the same quantity.
type InventoryUnit struct {
	ID           types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	OrgID        types.SnowflakeID `json:"org_id" gorm:"index"`
	ProductID    uint              `json:"product_id" gorm:"index"`
	ItemCode     string            `json:"item_code"`
	Pallet       string            `json:"pallet"` // unit identifier / license plate
	LotNo        string            `json:"lot_no" gorm:"index"`
	WhsCode      string            `json:"whs_code"`
	Location     string            `json:"location"`
	Uom          string            `json:"uom"`
	QtyOnhand    decimal.Decimal   `json:"qty_onhand" gorm:"type:decimal(20,4);default:0"`
	QtyAvailable decimal.Decimal   `json:"qty_available" gorm:"type:decimal(20,4);default:0"`
	QtyAllocated decimal.Decimal   `json:"qty_allocated" gorm:"type:decimal(20,4);default:0"`
	RecDate      time.Time         `json:"rec_date"`
	ExpiryDate   *time.Time        `json:"expiry_date"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    int
	UpdatedBy    int
}

func (i *InventoryUnit) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == 0 {
		i.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}
