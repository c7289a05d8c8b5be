package routes

import (
	"fiber-mes/config"
	"fiber-mes/controllers"
	"fiber-mes/middleware"
	"fiber-mes/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB, log *logger.Logger) {
	authController := controllers.NewAuthController(db, log)
	api := app.Group(config.MAIN_ROUTES + "/auth")

	api.Post("/login", authController.Login)
	api.Get("/logout", middleware.NewAuthMiddleware(db), authController.Logout)
}
