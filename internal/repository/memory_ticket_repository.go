package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type memoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
	srNos   map[int64]string
}

// NewMemoryTicketRepository returns a process-local store used for development and tests.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{
		tickets: make(map[string]domain.Ticket),
		srNos:   make(map[int64]string),
	}
}

func (r *memoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tickets[ticket.TicketID]; ok {
		return ErrDuplicate
	}
	if _, ok := r.srNos[ticket.SrNo]; ok {
		return ErrDuplicate
	}
	if ticket.Version == 0 {
		ticket.Version = 1
	}
	r.tickets[ticket.TicketID] = ticket.Clone()
	r.srNos[ticket.SrNo] = ticket.TicketID
	return nil
}

func (r *memoryTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tickets[ticket.TicketID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != ticket.Version {
		return ErrVersionConflict
	}
	next := ticket.Clone()
	next.SrNo = stored.SrNo
	next.CreatedAt = stored.CreatedAt
	next.Version = stored.Version + 1
	r.tickets[ticket.TicketID] = next
	ticket.Version = next.Version
	return nil
}

func (r *memoryTicketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.tickets[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	ticket := stored.Clone()
	return &ticket, nil
}

func (r *memoryTicketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	matches := r.matching(filter)

	less := memoryLess(ResolveSortField(filter.SortField))
	desc := filter.SortOrder != SortAsc
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if desc {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.SrNo < b.SrNo
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matches) {
		return []domain.Ticket{}, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

func (r *memoryTicketRepository) Count(ctx context.Context, filter TicketFilter) (int64, error) {
	return int64(len(r.matching(filter))), nil
}

func (r *memoryTicketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.TicketStatus]int64)
	for _, ticket := range r.tickets {
		counts[ticket.Status]++
	}
	return counts, nil
}

func (r *memoryTicketRepository) ListTicketIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.tickets))
	for id := range r.tickets {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *memoryTicketRepository) MaxSrNo(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var max int64
	for srNo := range r.srNos {
		if srNo > max {
			max = srNo
		}
	}
	return max, nil
}

func (r *memoryTicketRepository) TrimStatusWhitespace(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated int64
	for id, ticket := range r.tickets {
		trimmed := domain.TicketStatus(strings.TrimSpace(string(ticket.Status)))
		if trimmed == ticket.Status {
			continue
		}
		ticket.Status = trimmed
		r.tickets[id] = ticket
		updated++
	}
	return updated, nil
}

func (r *memoryTicketRepository) matching(filter TicketFilter) []domain.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var statuses map[domain.TicketStatus]struct{}
	if len(filter.Statuses) > 0 {
		statuses = make(map[domain.TicketStatus]struct{}, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses[s] = struct{}{}
		}
	}
	search := ""
	if filter.SearchTerm != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
	}

	result := []domain.Ticket{}
	for _, ticket := range r.tickets {
		if statuses != nil {
			if _, ok := statuses[ticket.Status]; !ok {
				continue
			}
		}
		if filter.Category != nil && ticket.Category != *filter.Category {
			continue
		}
		if search != "" && !containsFold(search, ticket.Subject, ticket.Description, ticket.TicketID, ticket.SubCategory) {
			continue
		}
		result = append(result, ticket.Clone())
	}
	return result
}

func containsFold(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func memoryLess(field string) func(a, b domain.Ticket) bool {
	switch field {
	case "updatedAt":
		return func(a, b domain.Ticket) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case "srNo":
		return func(a, b domain.Ticket) bool { return a.SrNo < b.SrNo }
	case "ticketId":
		return func(a, b domain.Ticket) bool { return a.TicketID < b.TicketID }
	case "status":
		return func(a, b domain.Ticket) bool { return a.Status < b.Status }
	case "category":
		return func(a, b domain.Ticket) bool { return a.Category < b.Category }
	case "priority":
		return func(a, b domain.Ticket) bool { return a.Priority < b.Priority }
	case "subject":
		return func(a, b domain.Ticket) bool { return a.Subject < b.Subject }
	default:
		return func(a, b domain.Ticket) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}
