package models

import (
	"time"

	"fiber-mes/controllers/idgen"
	"fiber-mes/types"

	"gorm.io/gorm"
)

// Over-consumption policy values. "deny" forces a confirmation round trip
// before a material line may be consumed past its requirement.
const (
	OverConsumptionDeny  = "deny"
	OverConsumptionAllow = "allow"
)

type Organization struct {
	ID                    types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	Code                  string            `json:"code" gorm:"unique;not null"`
	Name                  string            `json:"name"`
	OverConsumptionPolicy string            `json:"over_consumption_policy" gorm:"default:'deny'"`
	AlertEmail            string            `json:"alert_email"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             gorm.DeletedAt
}

func (o *Organization) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == 0 {
		o.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}
