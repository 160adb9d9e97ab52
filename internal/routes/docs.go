package routes

import (
	"github.com/dogdesk/DogDeskBack/internal/config"
	"github.com/gofiber/fiber/v2"
)

type docsEndpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

var apiEndpoints = []docsEndpoint{
	{"POST", "/api/auth/login", "Exchange email/password for a bearer token"},
	{"GET", "/api/auth/me", "Current account"},
	{"POST", "/api/v1/clients", "Create a client"},
	{"GET", "/api/v1/clients", "List clients (paginated)"},
	{"GET", "/api/v1/clients/:id", "Client with their dogs"},
	{"POST", "/api/v1/dogs", "Register a dog for a client"},
	{"GET", "/api/v1/dogs?clientId=", "Dogs belonging to a client"},
	{"GET", "/api/v1/packages?clientId=", "Client's packages with remaining credits"},
	{"POST", "/api/v1/packages", "Record a package purchase for a client"},
	{"GET", "/api/v1/packages/templates", "Reusable package templates"},
	{"POST", "/api/v1/packages/templates", "Define a package template"},
	{"POST", "/api/v1/sessions", "Schedule a session, optionally reserving a package credit"},
	{"GET", "/api/v1/sessions", "List sessions (dogId, clientId, timeframe filters)"},
	{"GET", "/api/v1/sessions/:id", "Session detail"},
	{"PATCH", "/api/v1/sessions/:id", "Sparse update; packageId changes move credits atomically"},
	{"DELETE", "/api/v1/sessions/:id", "Delete a session, releasing any held credit"},
}

// registerDocsRoutes exposes a machine-readable endpoint index in development
// only; production deployments keep the surface dark.
func registerDocsRoutes(app *fiber.App, cfg *config.Config) error {
	if !cfg.DocsEnabled() {
		return nil
	}

	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":      "DogDesk API",
			"endpoints": apiEndpoints,
		})
	})
	return nil
}
