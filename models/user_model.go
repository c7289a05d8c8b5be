package models

import (
	"time"

	"fiber-mes/types"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username  string            `json:"username" gorm:"unique"`
	Password  string            `json:"-"`
	Name      string            `json:"name"`
	Email     string            `json:"email" gorm:"unique"`
	Role      string            `json:"role"`
	OrgID     types.SnowflakeID `json:"org_id" gorm:"index"`
	CreatedBy int
	UpdatedBy int
	DeletedBy int
}

type UserSession struct {
	gorm.Model
	UserID         uint      `json:"user_id" gorm:"index"`
	SessionID      string    `json:"session_id" gorm:"uniqueIndex"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}
