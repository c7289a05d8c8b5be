package routes

import (
	"fiber-mes/config"
	"fiber-mes/controllers"
	"fiber-mes/middleware"
	"fiber-mes/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupConsumptionRoutes(app *fiber.App, db *gorm.DB, log *logger.Logger) {
	consumptionController := controllers.NewConsumptionController(db, log)
	api := app.Group(config.MAIN_ROUTES, middleware.NewAuthMiddleware(db))

	api.Post("/materials/:id/consumptions", consumptionController.Consume)
	api.Put("/consumptions/:id/reverse", consumptionController.Reverse)
}
