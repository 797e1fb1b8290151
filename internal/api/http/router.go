package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanryp/servicedesk-sub004/internal/api/http/handlers"
	"github.com/yanryp/servicedesk-sub004/internal/auth"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Catalog        *handlers.CatalogHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if reg := cfg.Metrics.Registry(); reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	app.Post("/auth/login", cfg.Users.Login)

	authenticated := cfg.AuthMiddleware.Handle
	app.Get("/me", authenticated, cfg.Users.Me)

	templates := app.Group("/templates", authenticated)
	templates.Get("/:id", cfg.Catalog.GetTemplate)
	templates.Get("/:id/fields", cfg.Catalog.GetFields)
	templates.Get("/:id/prefill", cfg.Catalog.Prefill)

	app.Get("/master-data/:field", authenticated, cfg.Catalog.GetMasterData)

	caches := app.Group("/cache", authenticated, auth.RequireRole())
	caches.Delete("/templates/:id", cfg.Catalog.RefreshTemplate)
	caches.Delete("/master-data/:field", cfg.Catalog.RefreshMasterData)

	tickets := app.Group("/tickets", authenticated)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)

	managers := auth.RequireRole(domain.UserRoleManager)
	tickets.Put("/:id/approval", managers, cfg.StaffTickets.SubmitApproval)

	agents := auth.RequireRole(domain.UserRoleAgent)
	tickets.Post("/:id/start", agents, cfg.StaffTickets.Start)
	tickets.Post("/:id/resolve", agents, cfg.StaffTickets.Resolve)
	tickets.Post("/:id/close", agents, cfg.StaffTickets.Close)
}
