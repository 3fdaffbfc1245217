package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

// ActivityLogger writes a structured log line for every lifecycle event.
type ActivityLogger struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewActivityLogger creates the subscriber.
func NewActivityLogger(dispatcher events.Dispatcher, logger *zap.Logger) *ActivityLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityLogger{
		dispatcher: dispatcher,
		logger:     logger.Named("activity"),
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityLogger) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketCreated, a.handleTicketCreated)
	a.dispatcher.Subscribe(events.EventTicketStatusChanged, a.handleStatusChange)
	a.dispatcher.Subscribe(events.EventFeedbackSubmitted, a.handleFeedbackSubmitted)
	a.dispatcher.Subscribe(events.EventTicketReopened, a.handleStatusChange)
	a.dispatcher.Subscribe(events.EventClarificationProvided, a.handleStatusChange)
	a.dispatcher.Subscribe(events.EventTicketIntervened, a.handleStatusChange)
	a.dispatcher.Subscribe(events.EventTicketAssigned, a.handleTicketAssigned)
}

func (a *ActivityLogger) handleTicketCreated(ctx context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.TicketCreatedPayload); ok {
		fields = append(fields,
			zap.Int64("sr_no", payload.SrNo),
			zap.String("category", string(payload.Category)),
			zap.String("priority", string(payload.Priority)))
	}
	a.logger.Info("TicketCreated", fields...)
	return nil
}

func (a *ActivityLogger) handleStatusChange(ctx context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.TicketStatusChangedPayload); ok {
		fields = append(fields, statusFields(payload)...)
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}

func (a *ActivityLogger) handleFeedbackSubmitted(ctx context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.TicketFeedbackPayload); ok {
		fields = append(fields, statusFields(payload.TicketStatusChangedPayload)...)
		fields = append(fields, zap.Int("rating", payload.Rating))
	}
	a.logger.Info("FeedbackSubmitted", fields...)
	return nil
}

func (a *ActivityLogger) handleTicketAssigned(ctx context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.TicketAssignedPayload); ok {
		fields = append(fields, statusFields(payload.TicketStatusChangedPayload)...)
		fields = append(fields,
			zap.String("assign_to", payload.AssignTo),
			zap.String("assigned_to", payload.AssignedTo))
	}
	a.logger.Info("TicketAssigned", fields...)
	return nil
}

func (a *ActivityLogger) baseFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("ticket_id", event.TicketID),
		zap.String("user_name", event.Actor.UserName),
	}
}

func statusFields(payload events.TicketStatusChangedPayload) []zap.Field {
	return []zap.Field{
		zap.String("previous_status", string(payload.OldStatus)),
		zap.String("status", string(payload.NewStatus)),
		zap.String("activity", payload.Activity),
		zap.Int("audit_sr_no", payload.AuditSrNo),
	}
}
