// database/migrate.go
package database

import (
	"fiber-mes/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.UserSession{},
		&models.Uom{},
		&models.Product{},
		&models.BOMHeader{},
		&models.BOMItem{},
		&models.WorkOrder{},
		&models.WOMaterial{},
		&models.InventoryUnit{},
		&models.Reservation{},
		&models.Consumption{},
		&models.TransactionHistory{},
	)
}
