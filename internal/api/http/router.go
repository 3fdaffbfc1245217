package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
	Admin   *handlers.AdminHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Live)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	api.Get("/health", cfg.Health.Live)

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:ticketId", cfg.Tickets.GetTicket)
	tickets.Get("/:ticketId/audit-trail", cfg.Tickets.GetAuditTrail)
	tickets.Get("/:ticketId/download/:documentId", cfg.Tickets.DownloadDocument)
	tickets.Post("/:ticketId/feedback", cfg.Tickets.SubmitFeedback)
	tickets.Post("/:ticketId/reopen", cfg.Tickets.ReopenTicket)
	tickets.Post("/:ticketId/clarification", cfg.Tickets.ProvideClarification)
	tickets.Patch("/:ticketId/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:ticketId/resolve", cfg.Tickets.ResolveTicket)
	tickets.Post("/:ticketId/request-clarification", cfg.Tickets.RequestClarification)
	tickets.Post("/:ticketId/assign", cfg.Tickets.AssignTicket)

	admin := api.Group("/admin")
	admin.Get("/tickets", cfg.Admin.ListTickets)
	admin.Get("/tickets/intervene", cfg.Admin.ListInterventionQueue)
	admin.Get("/tickets/track", cfg.Admin.ListTickets)
	admin.Get("/stats", cfg.Admin.Stats)
	admin.Post("/tickets/:ticketId/intervene", cfg.Admin.Intervene)

	re := api.Group("/re")
	re.Get("/tickets", cfg.Admin.ListTickets)
	re.Get("/tickets/:ticketId", cfg.Tickets.GetTicket)
	re.Post("/tickets/:ticketId/resolve", cfg.Tickets.ResolveTicket)
	re.Post("/tickets/:ticketId/seek-clarification", cfg.Tickets.RequestClarification)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Cannot "+c.Method()+" "+c.OriginalURL())
	})
}
