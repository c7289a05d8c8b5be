package models

import (
	"time"

	"fiber-mes/controllers/idgen"
	"fiber-mes/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	WOStatusDraft      = "draft"
	WOStatusPlanned    = "planned"
	WOStatusReleased   = "released"
	WOStatusInProgress = "in_progress"
	WOStatusCompleted  = "completed"
	WOStatusCancelled  = "cancelled"
)

// WorkOrder status is owned by the surrounding lifecycle; the material
// engine only reads it.
type WorkOrder struct {
	ID          types.SnowflakeID  `json:"ID" gorm:"primaryKey"`
	OrgID       types.SnowflakeID  `json:"org_id" gorm:"index"`
	WoNo        string             `json:"wo_no" gorm:"index"`
	ProductID   uint               `json:"product_id"`
	BOMHeaderID *types.SnowflakeID `json:"bom_header_id"`
	TargetQty   decimal.Decimal    `json:"target_qty" gorm:"type:decimal(20,4);not null"`
	Uom         string             `json:"uom"`
	Status      string             `json:"status" gorm:"default:'draft'"`
	Notes       string             `json:"notes"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt
	CreatedBy   int
	UpdatedBy   int
}

func (w *WorkOrder) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == 0 {
		w.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}

// IsEditable reports whether the material snapshot may still be
// (re)generated.
func (w *WorkOrder) IsEditable() bool {
	return w.Status == WOStatusDraft || w.Status == WOStatusPlanned
}

func (w *WorkOrder) IsTerminal() bool {
	return w.Status == WOStatusCompleted || w.Status == WOStatusCancelled
}

func (w *WorkOrder) IsInProgress() bool {
	return w.Status == WOStatusInProgress
}
