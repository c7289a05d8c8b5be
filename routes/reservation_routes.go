package routes

import (
	"fiber-mes/config"
	"fiber-mes/controllers"
	"fiber-mes/middleware"
	"fiber-mes/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupReservationRoutes(app *fiber.App, db *gorm.DB, log *logger.Logger) {
	reservationController := controllers.NewReservationController(db, log)
	api := app.Group(config.MAIN_ROUTES, middleware.NewAuthMiddleware(db))

	api.Post("/materials/:id/reservations", reservationController.Reserve)
	api.Get("/materials/:id/reservations/suggest", reservationController.Suggest)
	api.Put("/reservations/:id/release", reservationController.Release)
}
