package models

import (
	"time"

	"fiber-mes/controllers/idgen"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BOMHeader is the bill-of-materials definition the snapshot generator
// reads. The percentages on its items are defined against OutputQty.
type BOMHeader struct {
	ID        types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	OrgID     types.SnowflakeID `json:"org_id" gorm:"index"`
	ProductID uint              `json:"product_id" gorm:"index"`
	Version   int               `json:"version" gorm:"default:1"`
	OutputQty decimal.Decimal   `json:"output_qty" gorm:"type:decimal(20,4);not null"`
	Uom       string            `json:"uom"`
	Items     []BOMItem         `json:"items" gorm:"foreignKey:BOMHeaderID"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
	CreatedBy int
	UpdatedBy int
}

func (b *BOMHeader) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == 0 {
		b.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}

type BOMItem struct {
	ID           types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	BOMHeaderID  types.SnowflakeID `json:"bom_header_id" gorm:"index"`
	ProductID    uint              `json:"product_id"`
	Quantity     decimal.Decimal   `json:"quantity" gorm:"type:decimal(20,4);not null"`
	Uom          string            `json:"uom"`
	ScrapPercent decimal.Decimal   `json:"scrap_percent" gorm:"type:decimal(10,4);default:0"`
	YieldPercent decimal.Decimal   `json:"yield_percent" gorm:"type:decimal(10,4);default:0"`
	IsByProduct  bool              `json:"is_by_product" gorm:"default:false"`
	Sequence     int               `json:"sequence"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (b *BOMItem) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == 0 {
		b.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}
