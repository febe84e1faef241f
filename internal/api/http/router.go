package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/boaz-housing/internal/api/http/handlers"
	"github.com/spec-kit/boaz-housing/internal/auth"
	"github.com/spec-kit/boaz-housing/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Logements      *handlers.LogementsHandler
	Souscriptions  *handlers.SouscriptionsHandler
	Services       *handlers.ServicesHandler
	Wizard         *handlers.WizardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)

	authed := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	authed.Post("/logout", cfg.Auth.Logout)
	authed.Post("/refresh", cfg.Auth.Refresh)
	authed.Get("/me", cfg.Auth.Me)
	authed.Get("/redirect", cfg.Auth.Redirect)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdminGenerale))
	users.Post("", cfg.Auth.CreateUser)
	users.Get("", cfg.Auth.ListUsers)
	users.Get("/by-email/:email", cfg.Auth.GetUserByEmail)

	staff := []domain.Role{domain.RoleAdminGenerale, domain.RoleAgentBoaz}

	logements := api.Group("/logements", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	logements.Get("", cfg.Logements.List)
	logements.Get("/disponibles", cfg.Logements.Disponibles)
	logements.Get("/stats", cfg.Logements.Stats)
	logements.Get("/:id", cfg.Logements.Get)
	logements.Post("", auth.RequireRole(staff...), cfg.Logements.Create)
	logements.Put("/:id", auth.RequireRole(staff...), cfg.Logements.Update)
	logements.Patch("/:id/statut", auth.RequireRole(staff...), cfg.Logements.ChangerStatut)
	logements.Delete("/:id", auth.RequireRole(domain.RoleAdminGenerale), cfg.Logements.Delete)

	souscriptions := api.Group("/souscriptions", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	souscriptions.Get("", cfg.Souscriptions.List)
	souscriptions.Get("/by-reference/:reference", cfg.Souscriptions.GetByReference)
	souscriptions.Get("/:id", cfg.Souscriptions.Get)
	souscriptions.Post("", auth.RequireRole(staff...), cfg.Souscriptions.Create)
	// modifier, payer, supprimer and envoyer-proforma are open to every
	// authenticated role; the action table is enforced in the service layer.
	souscriptions.Put("/:id", cfg.Souscriptions.Update)
	souscriptions.Post("/:id/payer", cfg.Souscriptions.Payer)
	souscriptions.Post("/:id/livrer", auth.RequireRole(domain.RoleAdminGenerale), cfg.Souscriptions.Livrer)
	souscriptions.Patch("/:id/statut", auth.RequireRole(staff...), cfg.Souscriptions.ChangerStatut)
	souscriptions.Delete("/:id", cfg.Souscriptions.Delete)
	souscriptions.Get("/:id/history", cfg.Souscriptions.History)
	souscriptions.Get("/:id/actions", cfg.Souscriptions.Actions)
	souscriptions.Post("/:id/generate-proforma", auth.RequireRole(staff...), cfg.Souscriptions.GenerateProforma)
	souscriptions.Post("/:id/generate-attestation", auth.RequireRole(domain.RoleAdminGenerale), cfg.Souscriptions.GenerateAttestation)
	souscriptions.Post("/:id/envoyer-proforma", cfg.Souscriptions.EnvoyerProforma)

	services := api.Group("/services")
	services.Get("", cfg.Services.List)
	services.Get("/slug/:slug", cfg.Services.GetBySlug)
	services.Get("/:id", cfg.Services.Get)
	services.Post("/calculate-total", cfg.Services.CalculateTotal)
	api.Get("/organisation", cfg.Services.Organisation)

	wizard := api.Group("/wizard", cfg.AuthMiddleware.Handle, auth.RequireRole(staff...))
	wizard.Post("", cfg.Wizard.Start)
	wizard.Get("/:draftId", cfg.Wizard.Get)
	wizard.Post("/:draftId/next", cfg.Wizard.Next)
	wizard.Post("/:draftId/back", cfg.Wizard.Back)
	wizard.Post("/:draftId/search-logements", cfg.Wizard.SearchLogements)
	wizard.Post("/:draftId/proforma", cfg.Wizard.RequestProforma)
	wizard.Get("/:draftId/proforma", cfg.Wizard.Proforma)
	wizard.Post("/:draftId/submit", cfg.Wizard.Submit)
	wizard.Delete("/:draftId", cfg.Wizard.Abandon)
}
