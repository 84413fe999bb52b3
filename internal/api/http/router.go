package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mapease/checkin-service/internal/api/http/handlers"
	"github.com/mapease/checkin-service/internal/auth"
	"github.com/mapease/checkin-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Events         *handlers.EventsHandler
	Registrations  *handlers.RegistrationsHandler
	Tokens         *handlers.TokensHandler
	Checkin        *handlers.CheckinHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authenticated := cfg.AuthMiddleware.Handle
	admin := auth.RequireAdmin()

	app.Get("/metrics", authenticated, admin, cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	app.Post("/operators", authenticated, auth.RequireRole(domain.RoleSuperAdmin), cfg.Auth.Enroll)

	app.Post("/events", authenticated, admin, cfg.Events.Create)
	app.Get("/events", authenticated, admin, cfg.Events.List)
	app.Get("/events/:eventId", authenticated, admin, cfg.Events.Get)

	app.Post("/events/:eventId/registrations", cfg.Registrations.Register)
	app.Get("/events/:eventId/registrations", authenticated, admin, cfg.Registrations.List)

	registrations := app.Group("/registrations", authenticated, admin)
	registrations.Get("/:id", cfg.Registrations.Get)
	registrations.Post("/:id/approve", cfg.Registrations.Approve)
	registrations.Post("/:id/reject", cfg.Registrations.Reject)

	app.Post("/tokens", authenticated, admin, cfg.Tokens.Issue)

	checkin := app.Group("/checkin", authenticated, auth.RequireRole())
	checkin.Post("/scan", cfg.Checkin.Scan)
	checkin.Get("/:registrationId", admin, cfg.Checkin.Status)
}
