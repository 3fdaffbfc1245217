package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AllFilter disables the status or category filter.
const AllFilter = "All"

// TicketQuery holds list parameters as received from a caller.
type TicketQuery struct {
	Page      int
	Limit     int
	Status    string
	Category  string
	Search    string
	SortField string
	SortOrder string
}

// PageResult is one page of a filtered list.
type PageResult[T any] struct {
	Data            []T   `json:"data"`
	Total           int64 `json:"total"`
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	TotalPages      int   `json:"totalPages"`
	HasMore         bool  `json:"hasMore"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// AdminTicketView adds derived fields shown on the administrative list.
type AdminTicketView struct {
	domain.Ticket
	TicketAge       string `json:"ticketAge"`
	ReopeningReason string `json:"reopeningReason,omitempty"`
}

// TicketDetail is a single ticket with its reopening reason when one applies.
type TicketDetail struct {
	domain.Ticket
	ReopeningReason string `json:"reopeningReason,omitempty"`
}

// TicketStats summarizes the collection.
type TicketStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
}

var statsKeys = map[domain.TicketStatus]string{
	domain.TicketStatusPending:               "pending",
	domain.TicketStatusResolved:              "resolved",
	domain.TicketStatusClarificationSought:   "clarificationSought",
	domain.TicketStatusClarificationProvided: "clarificationProvided",
	domain.TicketStatusReopened:              "reopened",
	domain.TicketStatusRespondedByRE:         "respondedByRE",
	domain.TicketStatusAssignedToRE:          "assignedToRE",
	domain.TicketStatusClosed:                "closed",
}

// QueryService serves read-only ticket views.
type QueryService struct {
	tickets  repository.TicketRepository
	now      func() time.Time
	location *time.Location
}

// NewQueryService builds a query service. now and location default to time.Now and time.Local.
func NewQueryService(repo repository.TicketRepository, now func() time.Time, location *time.Location) *QueryService {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &QueryService{tickets: repo, now: now, location: location}
}

// ListTickets returns one page of tickets matching query.
func (q *QueryService) ListTickets(ctx context.Context, query TicketQuery) (*PageResult[domain.Ticket], error) {
	return q.fetch(ctx, query)
}

// ListAdminTickets is ListTickets with ticket age and reopening reason attached.
func (q *QueryService) ListAdminTickets(ctx context.Context, query TicketQuery) (*PageResult[AdminTicketView], error) {
	page, err := q.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	now := q.now().In(q.location)
	views := make([]AdminTicketView, 0, len(page.Data))
	for _, ticket := range page.Data {
		view := AdminTicketView{Ticket: ticket, TicketAge: domain.TicketAge(ticket.RaisedOn, now)}
		if reason, ok := domain.ReopeningReason(ticket); ok {
			view.ReopeningReason = reason
		}
		views = append(views, view)
	}
	return &PageResult[AdminTicketView]{
		Data:            views,
		Total:           page.Total,
		Page:            page.Page,
		Limit:           page.Limit,
		TotalPages:      page.TotalPages,
		HasMore:         page.HasMore,
		HasNextPage:     page.HasNextPage,
		HasPreviousPage: page.HasPreviousPage,
	}, nil
}

func (q *QueryService) fetch(ctx context.Context, query TicketQuery) (*PageResult[domain.Ticket], error) {
	filter, err := BuildFilter(query)
	if err != nil {
		return nil, err
	}

	var (
		total   int64
		tickets []domain.Ticket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = q.tickets.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		tickets, err = q.tickets.ListWithFilter(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}

	page, limit := query.Page, filter.Limit
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	hasNext := page < totalPages
	return &PageResult[domain.Ticket]{
		Data:            tickets,
		Total:           total,
		Page:            page,
		Limit:           limit,
		TotalPages:      totalPages,
		HasMore:         hasNext,
		HasNextPage:     hasNext,
		HasPreviousPage: page > 1,
	}, nil
}

// BuildFilter validates paging and translates query into a repository filter.
func BuildFilter(query TicketQuery) (repository.TicketFilter, error) {
	if query.Page < 1 {
		return repository.TicketFilter{}, apperrors.NewValidationError("page must be a positive integer", map[string]any{"page": query.Page})
	}
	if query.Limit < 1 {
		return repository.TicketFilter{}, apperrors.NewValidationError("limit must be a positive integer", map[string]any{"limit": query.Limit})
	}

	filter := repository.TicketFilter{
		Statuses:  ParseStatuses(query.Status),
		SortField: repository.ResolveSortField(strings.TrimSpace(query.SortField)),
		SortOrder: repository.ParseSortOrder(query.SortOrder),
		Limit:     query.Limit,
		Offset:    (query.Page - 1) * query.Limit,
	}
	if category := strings.TrimSpace(query.Category); category != "" && category != AllFilter {
		c := domain.TicketCategory(category)
		filter.Category = &c
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		filter.SearchTerm = &search
	}
	return filter, nil
}

// ParseStatuses splits a comma separated status list. An empty value or one containing
// "All" yields no filter.
func ParseStatuses(value string) []domain.TicketStatus {
	var statuses []domain.TicketStatus
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == AllFilter {
			return nil
		}
		statuses = append(statuses, domain.TicketStatus(part))
	}
	return statuses
}

// GetTicket loads one ticket.
func (q *QueryService) GetTicket(ctx context.Context, ticketID string) (*TicketDetail, error) {
	ticket, err := q.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	detail := &TicketDetail{Ticket: *ticket}
	if reason, ok := domain.ReopeningReason(*ticket); ok {
		detail.ReopeningReason = reason
	}
	return detail, nil
}

// GetAuditTrail returns the audit entries of a ticket in order.
func (q *QueryService) GetAuditTrail(ctx context.Context, ticketID string) ([]domain.AuditEntry, error) {
	ticket, err := q.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AuditTrail == nil {
		return []domain.AuditEntry{}, nil
	}
	return ticket.AuditTrail, nil
}

// GetDocument finds a document attached to the ticket or to any of its audit entries.
func (q *QueryService) GetDocument(ctx context.Context, ticketID, documentID string) (*domain.Document, error) {
	ticket, err := q.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	doc, ok := ticket.FindDocument(strings.TrimSpace(documentID))
	if !ok {
		return nil, apperrors.NewNotFound("Document", map[string]any{"ticketId": ticketID, "documentId": documentID})
	}
	return &doc, nil
}

// Stats returns the total and per-status ticket counts.
func (q *QueryService) Stats(ctx context.Context) (*TicketStats, error) {
	var (
		total  int64
		counts map[domain.TicketStatus]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = q.tickets.Count(gctx, repository.TicketFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = q.tickets.CountByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &TicketStats{Total: total, ByStatus: make(map[string]int64, len(statsKeys))}
	for _, key := range statsKeys {
		stats.ByStatus[key] = 0
	}
	for status, n := range counts {
		if key, ok := statsKeys[domain.TicketStatus(strings.TrimSpace(string(status)))]; ok {
			stats.ByStatus[key] += n
		}
	}
	return stats, nil
}

// CleanupStatusWhitespace trims stored status values and returns how many tickets changed.
func (q *QueryService) CleanupStatusWhitespace(ctx context.Context) (int64, error) {
	return q.tickets.TrimStatusWhitespace(ctx)
}

func (q *QueryService) load(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticketID = strings.TrimSpace(ticketID)
	ticket, err := q.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, ticketID)
	}
	return ticket, nil
}
