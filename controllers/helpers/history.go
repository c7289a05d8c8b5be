package helpers

import (
	"fiber-mes/models"
	"fiber-mes/types"

	"gorm.io/gorm"
)

// InsertTransactionHistory inserts a new transaction history record.
func InsertTransactionHistory(db *gorm.DB, orgID types.SnowflakeID, refNo, status, txType, detail string, actor int) error {
	history := models.TransactionHistory{
		OrgID:     orgID,
		RefNo:     refNo,
		Status:    status,
		Type:      txType,
		Detail:    detail,
		CreatedBy: actor,
	}
	return db.Create(&history).Error
}
