// database/seeder.go
package database

import (
	"errors"
	"log"

	"fiber-mes/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func RunSeeders(db *gorm.DB) {
	SeedUoms(db)
	SeedOrganization(db)
	SeedUserMaster(db)
}

func SeedUoms(db *gorm.DB) {
	uoms := []models.Uom{
		{Code: "KG", Name: "Kilogram", Precision: 4},
		{Code: "GR", Name: "Gram", Precision: 2},
		{Code: "LT", Name: "Liter", Precision: 4},
		{Code: "PCS", Name: "Piece", Precision: 0},
		{Code: "EA", Name: "Each", Precision: 0},
	}

	for _, uom := range uoms {
		var existing models.Uom
		err := db.Where("code = ?", uom.Code).First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := db.Create(&uom).Error; err != nil {
					log.Fatalf("Failed to seed uom %s: %v", uom.Code, err)
				}
			} else {
				log.Fatalf("Unexpected DB error: %v", err)
			}
		}
	}
}

func SeedOrganization(db *gorm.DB) {
	org := models.Organization{
		Code:                  "DEFAULT",
		Name:                  "Default Organization",
		OverConsumptionPolicy: models.OverConsumptionDeny,
	}

	var existing models.Organization
	err := db.Where("code = ?", org.Code).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&org).Error; err != nil {
				log.Fatalf("Failed to seed organization: %v", err)
			}
		} else {
			log.Fatalf("Unexpected DB error: %v", err)
		}
	}
}

func SeedUserMaster(db *gorm.DB) {
	var org models.Organization
	if err := db.Where("code = ?", "DEFAULT").First(&org).Error; err != nil {
		log.Fatalf("Default organization missing: %v", err)
	}

	var existing models.User
	err := db.Where("username = ?", "admin").First(&existing).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("Unexpected DB error: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := models.User{
		Username: "admin",
		Password: string(hashed),
		Name:     "Administrator",
		Email:    "admin@localhost",
		Role:     "admin",
		OrgID:    org.ID,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}
}
