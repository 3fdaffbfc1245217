package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const (
	maxCreateAttempts = 3
	maxUpdateAttempts = 3
)

// DefaultAssignees is the pool a new ticket's assignee is drawn from when none is given.
var DefaultAssignees = []string{
	"Helpdesk Team",
	"Technical Support",
	"IT Support Team",
	"Customer Service",
	"Operations Team",
	"System Admin",
	"Network Team",
}

// OperationRecorder counts lifecycle outcomes.
type OperationRecorder interface {
	RecordOperation(operation, outcome string)
}

// TicketService coordinates ticket lifecycle workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	sequencer  Sequencer
	locker     Locker
	dispatcher events.Dispatcher
	recorder   OperationRecorder
	logger     *zap.Logger
	now        func() time.Time
	location   *time.Location
	intN       func(n int) int
}

// TicketDependencies bundles collaborators for the ticket service. Only TicketRepo is
// required; the rest fall back to in-process defaults.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Sequencer  Sequencer
	Locker     Locker
	Dispatcher events.Dispatcher
	Recorder   OperationRecorder
	Logger     *zap.Logger
	Now        func() time.Time
	Location   *time.Location
	IntN       func(n int) int
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	Category     domain.TicketCategory `json:"category" validate:"required,oneof=Technical Operational Functional Miscellaneous 'CERSAI-CKYC Level Queries'"`
	SubCategory  string                `json:"subCategory" validate:"required,max=100"`
	Subject      string                `json:"subject" validate:"required,max=100"`
	Description  string                `json:"description" validate:"required,max=1000"`
	Priority     domain.TicketPriority `json:"priority" validate:"omitempty,oneof=Low Medium High Urgent"`
	Initiator    string                `json:"initiator" validate:"max=100"`
	RaisedBy     string                `json:"raisedBy" validate:"max=100"`
	REClientName string                `json:"reClientName" validate:"max=100"`
	FICode       string                `json:"fiCode" validate:"max=20"`
	AssignedTo   string                `json:"assignedTo" validate:"max=100"`
	ContactInfo  *domain.ContactInfo   `json:"contactInfo"`
	Tags         []string              `json:"tags"`
	Documents    []domain.Document     `json:"-"`
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:    deps.TicketRepo,
		sequencer:  deps.Sequencer,
		locker:     deps.Locker,
		dispatcher: deps.Dispatcher,
		recorder:   deps.Recorder,
		logger:     deps.Logger,
		now:        deps.Now,
		location:   deps.Location,
		intN:       deps.IntN,
	}
	if s.sequencer == nil {
		s.sequencer = NewStoreSequencer(deps.TicketRepo)
	}
	if s.locker == nil {
		s.locker = NewKeyedMutex()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.intN == nil {
		s.intN = rand.IntN
	}
	return s
}

// CreateTicket validates input, assigns identifiers and stores a Pending ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input CreateTicketInput) (ticket *domain.Ticket, err error) {
	defer func() { s.record("create", err) }()

	input.SubCategory = strings.TrimSpace(input.SubCategory)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Description = strings.TrimSpace(input.Description)
	input.Initiator = strings.TrimSpace(input.Initiator)
	input.RaisedBy = strings.TrimSpace(input.RaisedBy)
	input.REClientName = strings.TrimSpace(input.REClientName)
	input.FICode = strings.TrimSpace(input.FICode)
	input.AssignedTo = strings.TrimSpace(input.AssignedTo)
	if err := apperrors.ValidateStruct(input); err != nil {
		return nil, err
	}

	fiCode := input.FICode
	if fiCode == "" {
		fiCode = fmt.Sprintf("FI%03d", s.intN(999)+1)
	}
	assignedTo := input.AssignedTo
	if assignedTo == "" {
		assignedTo = DefaultAssignees[s.intN(len(DefaultAssignees))]
	}

	for attempt := 1; ; attempt++ {
		ticketID, err := s.sequencer.NextTicketID(ctx)
		if err != nil {
			return nil, err
		}
		srNo, err := s.sequencer.NextSrNo(ctx)
		if err != nil {
			return nil, err
		}

		created := domain.NewTicket(domain.NewTicketParams{
			TicketID:     ticketID,
			SrNo:         srNo,
			Category:     input.Category,
			SubCategory:  input.SubCategory,
			Subject:      input.Subject,
			Description:  input.Description,
			Priority:     input.Priority,
			Initiator:    input.Initiator,
			RaisedBy:     input.RaisedBy,
			REClientName: input.REClientName,
			FICode:       fiCode,
			AssignedTo:   assignedTo,
			Documents:    input.Documents,
			ContactInfo:  input.ContactInfo,
			Tags:         input.Tags,
		}, s.clock())

		err = s.tickets.Create(ctx, &created)
		if errors.Is(err, repository.ErrDuplicate) && attempt < maxCreateAttempts {
			s.logger.Warn("ticket identifier collision; retrying",
				zap.String("ticket_id", ticketID), zap.Int64("sr_no", srNo), zap.Int("attempt", attempt))
			if r, ok := s.sequencer.(interface{ Resync(context.Context) error }); ok {
				if err := r.Resync(ctx); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create ticket: %w", err)
		}

		s.logger.Info("ticket created",
			zap.String("ticket_id", created.TicketID),
			zap.Int64("sr_no", created.SrNo),
			zap.String("category", string(created.Category)))
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketCreated,
			TicketID: created.TicketID,
			Actor:    events.Actor{UserName: created.Initiator},
			Payload: events.TicketCreatedPayload{
				SrNo:        created.SrNo,
				Category:    created.Category,
				SubCategory: created.SubCategory,
				Priority:    created.Priority,
				Subject:     created.Subject,
			},
		})
		return &created, nil
	}
}

// SubmitFeedback records the requester's rating and closes a resolved ticket.
func (s *TicketService) SubmitFeedback(ctx context.Context, ticketID string, in domain.FeedbackChange) (ticket *domain.Ticket, err error) {
	defer func() { s.record("feedback", err) }()

	in.Comment = strings.TrimSpace(in.Comment)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	updated, entry, previous, err := s.mutate(ctx, ticketID, func(t domain.Ticket, now time.Time) (domain.Ticket, domain.AuditEntry, error) {
		return domain.SubmitFeedback(t, in, now)
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventFeedbackSubmitted,
		TicketID: ticketID,
		Actor:    actorFromEntry(entry),
		Payload: events.TicketFeedbackPayload{
			TicketStatusChangedPayload: statusPayload(previous, entry),
			Rating:                     in.Rating,
		},
	})
	return updated, nil
}

// ReopenTicket moves a resolved ticket back to Re-Opened.
func (s *TicketService) ReopenTicket(ctx context.Context, ticketID string, in domain.ReopenChange) (ticket *domain.Ticket, err error) {
	defer func() { s.record("reopen", err) }()

	in.Reason = strings.TrimSpace(in.Reason)
	in.Description = strings.TrimSpace(in.Description)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	updated, entry, previous, err := s.mutate(ctx, ticketID, func(t domain.Ticket, now time.Time) (domain.Ticket, domain.AuditEntry, error) {
		return domain.Reopen(t, in, now)
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReopened,
		TicketID: ticketID,
		Actor:    actorFromEntry(entry),
		Payload:  statusPayload(previous, entry),
	})
	return updated, nil
}

// ProvideClarification answers an open clarification request.
func (s *TicketService) ProvideClarification(ctx context.Context, ticketID string, in domain.ClarificationChange) (ticket *domain.Ticket, err error) {
	defer func() { s.record("clarification", err) }()

	in.Clarification = strings.TrimSpace(in.Clarification)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	updated, entry, previous, err := s.mutate(ctx, ticketID, func(t domain.Ticket, now time.Time) (domain.Ticket, domain.AuditEntry, error) {
		return domain.ProvideClarification(t, in, now)
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventClarificationProvided,
		TicketID: ticketID,
		Actor:    actorFromEntry(entry),
		Payload:  statusPayload(previous, entry),
	})
	return updated, nil
}

// UpdateStatus applies an administrative status change checked against the transition table.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID string, in domain.StatusChange) (ticket *domain.Ticket, err error) {
	defer func() { s.record("update_status", err) }()

	in.Status = domain.TicketStatus(strings.TrimSpace(string(in.Status)))
	in.Remarks = strings.TrimSpace(in.Remarks)
	in.AdminUser = strings.TrimSpace(in.AdminUser)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	updated, entry, previous, err := s.mutate(ctx, ticketID, func(t domain.Ticket, now time.Time) (domain.Ticket, domain.AuditEntry, error) {
		return domain.UpdateStatus(t, in, now)
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		Actor:    actorFromEntry(entry),
		Payload:  statusPayload(previous, entry),
	})
	return updated, nil
}

// ResolveTicket is UpdateStatus targeting Resolved.
func (s *TicketService) ResolveTicket(ctx context.Context, ticketID string, in domain.StatusChange) (*domain.Ticket, error) {
	in.Status = domain.TicketStatusResolved
	return s.UpdateStatus(ctx, ticketID, in)
}

// RequestClarification is UpdateStatus targeting Clarification Sought.
func (s *TicketService) RequestClarification(ctx context.Context, ticketID string, in domain.StatusChange) (*domain.Ticket, error) {
	in.Status = domain.TicketStatusClarificationSought
	return s.UpdateStatus(ctx, ticketID, in)
}

// InterveneTicket records an administrative annotation without changing status.
func (s *TicketService) InterveneTicket(ctx context.Context, ticketID string, in domain.InterventionChange) (ticket *domain.Ticket, err error) {
	defer func() { s.record("intervene", err) }()

	in.Remark = strings.TrimSpace(in.Remark)
	in.AdminUser = strings.TrimSpace(in.AdminUser)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	updated, entry, previous, err := s.mutate(ctx, ticketID, func(t domain.Ticket, now time.Time) (domain.Ticket, domain.AuditEntry, error) {
		return domain.Intervene(t, in, now)
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketIntervened,
		TicketID: ticketID,
		Actor:    actorFromEntry(entry),
		Payload:  statusPayload(previous, entry),
	})
	return updated, nil
}

// AssignTicket routes a ticket to the helpdesk or to an RE.
func (s *TicketService) AssignTicket(ctx context.Context, ticketID string, in domain.AssignmentChange) (ticket *domain.Ticket, err error) {
	defer func() { s.record("assign", err) }()

	in.REEntity = strings.TrimSpace(in.REEntity)
	in.Remarks = strings.TrimSpace(in.Remarks)
	in.AdminUser = strings.TrimSpace(in.AdminUser)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	updated, entry, previous, err := s.mutate(ctx, ticketID, func(t domain.Ticket, now time.Time) (domain.Ticket, domain.AuditEntry, error) {
		return domain.Assign(t, in, now)
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticketID,
		Actor:    actorFromEntry(entry),
		Payload: events.TicketAssignedPayload{
			TicketStatusChangedPayload: statusPayload(previous, entry),
			AssignTo:                   strings.ToLower(strings.TrimSpace(in.AssignTo)),
			AssignedTo:                 updated.AssignedTo,
		},
	})
	return updated, nil
}

type lifecycleFunc func(t domain.Ticket, now time.Time) (domain.Ticket, domain.AuditEntry, error)

// mutate runs apply inside the ticket's critical section and persists the result with an
// optimistic version check, reloading and reapplying on conflict.
func (s *TicketService) mutate(ctx context.Context, ticketID string, apply lifecycleFunc) (*domain.Ticket, domain.AuditEntry, domain.TicketStatus, error) {
	ticketID = strings.TrimSpace(ticketID)
	unlock, err := s.locker.Lock(ctx, ticketID)
	if err != nil {
		return nil, domain.AuditEntry{}, "", fmt.Errorf("lock ticket %s: %w", ticketID, err)
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		current, err := s.load(ctx, ticketID)
		if err != nil {
			return nil, domain.AuditEntry{}, "", err
		}
		previous := current.Status

		updated, entry, err := apply(*current, s.clock())
		if err != nil {
			return nil, domain.AuditEntry{}, "", err
		}

		err = s.tickets.Update(ctx, &updated)
		if errors.Is(err, repository.ErrVersionConflict) && attempt < maxUpdateAttempts {
			s.logger.Warn("ticket version conflict; retrying",
				zap.String("ticket_id", ticketID), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, domain.AuditEntry{}, "", storeError(err, ticketID)
		}

		s.logger.Info("ticket updated",
			zap.String("ticket_id", ticketID),
			zap.String("activity", entry.Activity),
			zap.String("status", string(updated.Status)),
			zap.String("previous_status", string(previous)))
		return &updated, entry, previous, nil
	}
}

func (s *TicketService) load(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, ticketID)
	}
	return ticket, nil
}

func (s *TicketService) clock() time.Time {
	return s.now().In(s.location)
}

func (s *TicketService) record(operation string, err error) {
	if s.recorder == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = apperrors.ToDomainError(err).Code
	}
	s.recorder.RecordOperation(operation, outcome)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event subscribers failed",
			zap.String("ticket_id", event.TicketID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}

func storeError(err error, ticketID string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("Ticket", map[string]any{"ticketId": ticketID})
	}
	return err
}

func actorFromEntry(entry domain.AuditEntry) events.Actor {
	return events.Actor{UserID: entry.UserID, UserName: entry.UserName}
}

func statusPayload(previous domain.TicketStatus, entry domain.AuditEntry) events.TicketStatusChangedPayload {
	ids := make([]string, 0, len(entry.Documents))
	for _, doc := range entry.Documents {
		ids = append(ids, doc.ID)
	}
	return events.TicketStatusChangedPayload{
		OldStatus:   previous,
		NewStatus:   entry.Status,
		Activity:    entry.Activity,
		Remark:      entry.Remark,
		AuditSrNo:   entry.SrNo,
		DocumentIDs: ids,
	}
}
