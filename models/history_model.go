package models

import (
	"time"

	"fiber-mes/controllers/idgen"
	"fiber-mes/types"

	"gorm.io/gorm"
)

type TransactionHistory struct {
	ID        int64             `json:"ID" gorm:"primaryKey"`
	OrgID     types.SnowflakeID `json:"org_id" gorm:"index"`
	RefNo     string            `json:"ref_no"`
	Status    string            `json:"status"`
	Type      string            `json:"type"`
	Detail    string            `json:"detail"`
	CreatedAt time.Time
	CreatedBy int
	UpdatedAt time.Time
	UpdatedBy int
	DeletedAt gorm.DeletedAt
	DeletedBy int
}

func (u *TransactionHistory) BeforeCreate(tx *gorm.DB) (err error) {
	u.ID = idgen.GenerateID()
	return
}
