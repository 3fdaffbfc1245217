package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventFeedbackSubmitted     EventType = "ticket_feedback_submitted"
	EventTicketReopened        EventType = "ticket_reopened"
	EventClarificationProvided EventType = "ticket_clarification_provided"
	EventTicketIntervened      EventType = "ticket_intervened"
	EventTicketAssigned        EventType = "ticket_assigned"
)

// AllEventTypes lists every lifecycle event, for subscribers that want all of them.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventFeedbackSubmitted,
	EventTicketReopened,
	EventClarificationProvided,
	EventTicketIntervened,
	EventTicketAssigned,
}

// Actor identifies who triggered an event.
type Actor struct {
	UserID   string `json:"user_id,omitempty"`
	UserName string `json:"user_name"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	SrNo        int64                 `json:"sr_no"`
	Category    domain.TicketCategory `json:"category"`
	SubCategory string                `json:"sub_category"`
	Priority    domain.TicketPriority `json:"priority"`
	Subject     string                `json:"subject"`
}

// TicketStatusChangedPayload is shared by every status-changing event.
type TicketStatusChangedPayload struct {
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
	Activity    string              `json:"activity"`
	Remark      string              `json:"remark,omitempty"`
	AuditSrNo   int                 `json:"audit_sr_no"`
	DocumentIDs []string            `json:"document_ids,omitempty"`
}

// TicketFeedbackPayload payload.
type TicketFeedbackPayload struct {
	TicketStatusChangedPayload
	Rating int `json:"rating"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TicketStatusChangedPayload
	AssignTo   string `json:"assign_to"`
	AssignedTo string `json:"assigned_to"`
}
