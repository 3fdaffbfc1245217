package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// InterventionStatuses is the default filter of the intervention queue.
var InterventionStatuses = string(domain.TicketStatusReopened) + "," + string(domain.TicketStatusClarificationProvided)

// AdminHandler serves the administrative and RE views.
type AdminHandler struct {
	tickets *service.TicketService
	queries *service.QueryService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(tickets *service.TicketService, queries *service.QueryService) *AdminHandler {
	return &AdminHandler{tickets: tickets, queries: queries}
}

// ListTickets GET /api/admin/tickets, /api/admin/tickets/track and /api/re/tickets.
func (h *AdminHandler) ListTickets(c *fiber.Ctx) error {
	query, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	return h.list(c, query)
}

// ListInterventionQueue GET /api/admin/tickets/intervene. Defaults to tickets awaiting
// an administrator.
func (h *AdminHandler) ListInterventionQueue(c *fiber.Ctx) error {
	query, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	if query.Status == "" {
		query.Status = InterventionStatuses
	}
	return h.list(c, query)
}

func (h *AdminHandler) list(c *fiber.Ctx, query service.TicketQuery) error {
	result, err := h.queries.ListAdminTickets(c.UserContext(), query)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, result, "Tickets retrieved successfully")
}

// Stats GET /api/admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.queries.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, stats, "Statistics retrieved successfully")
}

// Intervene POST /api/admin/tickets/:ticketId/intervene.
func (h *AdminHandler) Intervene(c *fiber.Ctx) error {
	var req dto.InterveneRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.InterveneTicket(c.UserContext(), c.Params("ticketId"), req.ToChange())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticket, "Intervention recorded successfully")
}
