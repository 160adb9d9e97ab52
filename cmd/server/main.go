package main

import (
	"log"

	"github.com/dogdesk/DogDeskBack/internal/cache"
	"github.com/dogdesk/DogDeskBack/internal/config"
	"github.com/dogdesk/DogDeskBack/internal/database"
	"github.com/dogdesk/DogDeskBack/internal/events"
	"github.com/dogdesk/DogDeskBack/internal/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	// Optional collaborators; the API degrades gracefully without them.
	balances := cache.NewBalanceStore(cfg.RedisAddr, cfg.RedisPassword)
	defer balances.Close()
	publisher := events.NewPublisher(cfg.AMQPUrl)
	defer publisher.Close()

	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	if err := routes.RegisterRoutes(app, cfg, database.DB, routes.Collaborators{
		Balances:  balances,
		Publisher: publisher,
	}); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
