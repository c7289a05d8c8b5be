package main

import (
	"log"

	"fiber-mes/config"
	"fiber-mes/controllers/idgen"
	"fiber-mes/database"
	"fiber-mes/pkg/logger"
	"fiber-mes/routes"

	"github.com/gofiber/fiber/v2"
)

func main() {

	config.LoadConfig()

	appLog, err := logger.New(config.APP_MODE)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer appLog.Sync()

	db, err := config.ConnectDB()
	if err != nil {
		appLog.Fatal("Failed to connect to database", "error", err)
	}

	if err := database.Migrate(db); err != nil {
		appLog.Fatal("Failed to auto migrate", "error", err)
	}

	idgen.Init()
	database.RunSeeders(db)

	app := fiber.New()
	config.SetupCORS(app)

	routes.SetupAuthRoutes(app, db, appLog)
	routes.SetupWorkOrderRoutes(app, db, appLog)
	routes.SetupReservationRoutes(app, db, appLog)
	routes.SetupConsumptionRoutes(app, db, appLog)

	appLog.Info("server starting", "port", config.APP_PORT)
	if err := app.Listen(":" + config.APP_PORT); err != nil {
		appLog.Fatal("server stopped", "error", err)
	}
}
