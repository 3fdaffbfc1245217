package service

import (
	"context"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// mockTicketRepository overrides individual calls and delegates the rest to an in-memory store.
type mockTicketRepository struct {
	repository.TicketRepository

	CreateFunc        func(ctx context.Context, ticket *domain.Ticket) error
	UpdateFunc        func(ctx context.Context, ticket *domain.Ticket) error
	GetByTicketIDFunc func(ctx context.Context, ticketID string) (*domain.Ticket, error)
	CountFunc         func(ctx context.Context, filter repository.TicketFilter) (int64, error)
}

func newMockTicketRepository() *mockTicketRepository {
	return &mockTicketRepository{TicketRepository: repository.NewMemoryTicketRepository()}
}

func (m *mockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ticket)
	}
	return m.TicketRepository.Create(ctx, ticket)
}

func (m *mockTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, ticket)
	}
	return m.TicketRepository.Update(ctx, ticket)
}

func (m *mockTicketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if m.GetByTicketIDFunc != nil {
		return m.GetByTicketIDFunc(ctx, ticketID)
	}
	return m.TicketRepository.GetByTicketID(ctx, ticketID)
}

func (m *mockTicketRepository) Count(ctx context.Context, filter repository.TicketFilter) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, filter)
	}
	return m.TicketRepository.Count(ctx, filter)
}

type mockSequencer struct {
	NextTicketIDFunc func(ctx context.Context) (string, error)
	NextSrNoFunc     func(ctx context.Context) (int64, error)
	ResyncFunc       func(ctx context.Context) error
}

func (m *mockSequencer) NextTicketID(ctx context.Context) (string, error) {
	if m.NextTicketIDFunc != nil {
		return m.NextTicketIDFunc(ctx)
	}
	return "", nil
}

func (m *mockSequencer) NextSrNo(ctx context.Context) (int64, error) {
	if m.NextSrNoFunc != nil {
		return m.NextSrNoFunc(ctx)
	}
	return 0, nil
}

func (m *mockSequencer) Resync(ctx context.Context) error {
	if m.ResyncFunc != nil {
		return m.ResyncFunc(ctx)
	}
	return nil
}

type mockRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *mockRecorder) RecordOperation(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, operation+":"+outcome)
}

// eventRecorder captures every published lifecycle event.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func newEventRecorder(d events.Dispatcher) *eventRecorder {
	r := &eventRecorder{}
	events.SubscribeAll(d, func(ctx context.Context, e events.Event) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
		return nil
	})
	return r
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
