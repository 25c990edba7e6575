package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trackit-app/dashboard-service/internal/api/http/handlers"
	"github.com/trackit-app/dashboard-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	AdminTickets   *handlers.AdminTicketsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/stream", cfg.Tickets.StreamTickets)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	app.Get("/dashboard/summary", cfg.AuthMiddleware.Handle, cfg.Dashboard.Summary)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, AccessGate())
	admin.Get("/tickets", cfg.AdminTickets.ListTickets)
	admin.Get("/tickets/stream", cfg.AdminTickets.StreamTickets)
}
