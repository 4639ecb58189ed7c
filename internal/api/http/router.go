package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk-service/internal/api/http/handlers"
	"github.com/opsdesk/helpdesk-service/internal/auth"
	"github.com/opsdesk/helpdesk-service/internal/notify"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Directory      *handlers.DirectoryHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires the helpdesk API routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Snapshot)

	app.Post("/auth/login", cfg.Auth.Login)

	app.Get("/departments", cfg.Directory.Departments)
	app.Get("/technicians", cfg.Directory.ListTechnicians)
	app.Get("/technicians/:id", cfg.Directory.GetTechnician)

	tickets := app.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/board", cfg.Tickets.Board)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/transitions", cfg.AuthMiddleware.Handle, cfg.Tickets.Transition)
}

// NotifierRouteConfig bundles dependencies for the notifier service.
type NotifierRouteConfig struct {
	Health   *handlers.HealthHandler
	Notifier *handlers.NotifierHandler
}

// RegisterNotifierRoutes wires the notifier service routes.
func RegisterNotifierRoutes(app *fiber.App, cfg NotifierRouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post(notify.PathConfirmation, cfg.Notifier.Confirmation)
	app.Post(notify.PathAssignment, cfg.Notifier.Assignment)
	app.Post(notify.PathResolution, cfg.Notifier.Resolution)
}
