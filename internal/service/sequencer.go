package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// Sequencer assigns ticket identifiers.
type Sequencer interface {
	NextTicketID(ctx context.Context) (string, error)
	NextSrNo(ctx context.Context) (int64, error)
}

// StoreSequencer derives identifiers from the store maximum. Calls are serialized within the
// process and the last issued values are remembered, so concurrent creates in one process
// never collide; collisions across processes surface as repository.ErrDuplicate.
type StoreSequencer struct {
	repo repository.TicketRepository

	mu       sync.Mutex
	lastID   int64
	lastSrNo int64
}

// NewStoreSequencer builds a sequencer over repo.
func NewStoreSequencer(repo repository.TicketRepository) *StoreSequencer {
	return &StoreSequencer{repo: repo}
}

// NextTicketID returns max(numeric ticket ids)+1, or the initial id on an empty store.
func (s *StoreSequencer) NextTicketID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.repo.ListTicketIDs(ctx)
	if err != nil {
		return "", fmt.Errorf("load ticket ids: %w", err)
	}
	next := domain.TicketIDBase(ids) + 1
	if next <= s.lastID {
		next = s.lastID + 1
	}
	s.lastID = next
	return fmt.Sprintf("%d", next), nil
}

// NextSrNo returns max(srNo)+1, or 1 on an empty store.
func (s *StoreSequencer) NextSrNo(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	max, err := s.repo.MaxSrNo(ctx)
	if err != nil {
		return 0, fmt.Errorf("load max sr no: %w", err)
	}
	next := max + 1
	if next <= s.lastSrNo {
		next = s.lastSrNo + 1
	}
	s.lastSrNo = next
	return next, nil
}
