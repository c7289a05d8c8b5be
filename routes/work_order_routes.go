package routes

import (
	"fiber-mes/config"
	"fiber-mes/controllers"
	"fiber-mes/middleware"
	"fiber-mes/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupWorkOrderRoutes(app *fiber.App, db *gorm.DB, log *logger.Logger) {
	materialController := controllers.NewWOMaterialController(db, log)
	consumptionController := controllers.NewConsumptionController(db, log)
	api := app.Group(config.MAIN_ROUTES+"/work-orders", middleware.NewAuthMiddleware(db))

	api.Post("/:id/materials/generate", materialController.GenerateSnapshot)
	api.Get("/:id/materials", materialController.ListMaterials)
	api.Get("/:id/consumptions", consumptionController.History)
	api.Get("/:id/consumptions/excel", consumptionController.ExportExcel)
}
