package routes

import (
	"github.com/dogdesk/DogDeskBack/internal/cache"
	"github.com/dogdesk/DogDeskBack/internal/config"
	"github.com/dogdesk/DogDeskBack/internal/events"
	"github.com/dogdesk/DogDeskBack/internal/handlers"
	"github.com/dogdesk/DogDeskBack/internal/middleware"
	"github.com/dogdesk/DogDeskBack/internal/repository"
	"github.com/dogdesk/DogDeskBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Collaborators struct {
	Balances  *cache.BalanceStore
	Publisher *events.Publisher
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, collab Collaborators) error {
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	dogRepo := repository.NewDogRepository(db)

	sessionOpts := services.SessionServiceOptions{
		AutoProvisionTrainer: cfg.AutoProvisionTrainer,
		DefaultTrainerEmail:  cfg.DefaultTrainerEmail,
	}
	if collab.Publisher != nil {
		sessionOpts.Events = collab.Publisher
	}
	if collab.Balances != nil {
		sessionOpts.Balances = collab.Balances
	}
	sessionService := services.NewSessionService(db, sessionOpts)
	sessionHandler := handlers.NewSessionHandler(sessionService)

	var balances services.BalanceStore
	if collab.Balances != nil {
		balances = collab.Balances
	}
	packageService := services.NewPackageService(db, balances)
	packageHandler := handlers.NewPackageHandler(packageService)

	clientHandler := handlers.NewClientHandler(clientRepo, dogRepo)
	dogHandler := handlers.NewDogHandler(dogRepo, clientRepo)
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	v1 := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	clients := v1.Group("/clients")
	clients.Post("", clientHandler.CreateClient)
	clients.Get("", clientHandler.ListClients)
	clients.Get("/:id", clientHandler.GetClient)

	dogs := v1.Group("/dogs")
	dogs.Post("", dogHandler.CreateDog)
	dogs.Get("", dogHandler.ListDogs)

	packages := v1.Group("/packages")
	packages.Get("", packageHandler.ListPackages)
	packages.Post("", packageHandler.CreatePackage)
	packages.Get("/templates", packageHandler.ListTemplates)
	packages.Post("/templates", packageHandler.CreateTemplate)

	sessions := v1.Group("/sessions")
	sessions.Post("", sessionHandler.CreateSession)
	sessions.Get("", sessionHandler.ListSessions)
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Patch("/:id", sessionHandler.UpdateSession)
	sessions.Delete("/:id", sessionHandler.DeleteSession)

	return registerDocsRoutes(app, cfg)
}
