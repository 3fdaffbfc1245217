package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/upload"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket endpoints shared by requesters, administrators and REs.
type TicketsHandler struct {
	tickets *service.TicketService
	queries *service.QueryService
	uploads *upload.Resolver
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, queries *service.QueryService, uploads *upload.Resolver) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, queries: queries, uploads: uploads}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	query, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	result, err := h.queries.ListTickets(c.UserContext(), query)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, result, "Tickets retrieved successfully")
}

// Stats GET /api/tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.queries.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, stats, "Statistics retrieved successfully")
}

// GetTicket GET /api/tickets/:ticketId.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.queries.GetTicket(c.UserContext(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticket, "Ticket retrieved successfully")
}

// GetAuditTrail GET /api/tickets/:ticketId/audit-trail.
func (h *TicketsHandler) GetAuditTrail(c *fiber.Ctx) error {
	trail, err := h.queries.GetAuditTrail(c.UserContext(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, trail, "Audit trail retrieved successfully")
}

// DownloadDocument GET /api/tickets/:ticketId/download/:documentId.
func (h *TicketsHandler) DownloadDocument(c *fiber.Ctx) error {
	doc, err := h.queries.GetDocument(c.UserContext(), c.Params("ticketId"), c.Params("documentId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.DocumentDownloadResponse{Document: *doc, DownloadURL: doc.URL}, "Document located")
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	docs, err := h.documents(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.CreateTicket(c.UserContext(), req.ToInput(docs))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, ticket, "Ticket created successfully")
}

// SubmitFeedback POST /api/tickets/:ticketId/feedback.
func (h *TicketsHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	docs, err := h.documents(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.SubmitFeedback(c.UserContext(), c.Params("ticketId"), req.ToChange(docs))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticket, "Feedback submitted successfully")
}

// ReopenTicket POST /api/tickets/:ticketId/reopen.
func (h *TicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	var req dto.ReopenRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	docs, err := h.documents(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.ReopenTicket(c.UserContext(), c.Params("ticketId"), req.ToChange(docs))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticket, "Ticket reopened successfully")
}

// ProvideClarification POST /api/tickets/:ticketId/clarification.
func (h *TicketsHandler) ProvideClarification(c *fiber.Ctx) error {
	var req dto.ClarificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	docs, err := h.documents(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.ProvideClarification(c.UserContext(), c.Params("ticketId"), req.ToChange(docs))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticket, "Clarification provided successfully")
}

// UpdateStatus PATCH /api/tickets/:ticketId/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	req, docs, err := h.statusRequest(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), c.Params("ticketId"), req.ToChange(docs))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticket, "Ticket status updated successfully")
}

// ResolveTicket POST /api/tickets/:ticketId/resolve and /api/re/tickets/:ticketId/resolve.
func (h *TicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	req, docs, err := h.statusRequest(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.ResolveTicket(c.UserContext(), c.Params("ticketId"), req.ToChange(docs))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticket, "Ticket resolved successfully")
}

// RequestClarification POST /api/tickets/:ticketId/request-clarification and
// /api/re/tickets/:ticketId/seek-clarification.
func (h *TicketsHandler) RequestClarification(c *fiber.Ctx) error {
	req, docs, err := h.statusRequest(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.RequestClarification(c.UserContext(), c.Params("ticketId"), req.ToChange(docs))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticket, "Clarification requested successfully")
}

// AssignTicket POST /api/tickets/:ticketId/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	docs, err := h.documents(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.AssignTicket(c.UserContext(), c.Params("ticketId"), req.ToChange(docs))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ticket, "Ticket assigned successfully")
}

func (h *TicketsHandler) statusRequest(c *fiber.Ctx) (dto.StatusUpdateRequest, []domain.Document, error) {
	var req dto.StatusUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return req, nil, err
	}
	docs, err := h.documents(c)
	return req, docs, err
}

// documents resolves multipart attachments. Non-multipart requests carry none.
func (h *TicketsHandler) documents(c *fiber.Ctx) ([]domain.Document, error) {
	if !isMultipart(c) {
		return []domain.Document{}, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.NewValidationError("invalid multipart payload", nil)
	}
	return h.uploads.Resolve(form.File[upload.FormField])
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

// parseBody decodes JSON or form payloads. An empty body leaves out untouched.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketQuery, error) {
	var q dto.TicketListQuery
	if err := c.QueryParser(&q); err != nil {
		return service.TicketQuery{}, apperrors.NewValidationError("invalid query parameters", nil)
	}
	return service.TicketQuery{
		Page:      parseInt(q.Page, 1),
		Limit:     parseInt(q.Limit, 10),
		Status:    q.Status,
		Category:  q.Category,
		Search:    q.Search,
		SortField: q.SortField,
		SortOrder: q.SortOrder,
	}, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}

func respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(fiber.Map{"data": data, "message": message})
}
