package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Default actor names used when the caller does not identify itself.
const (
	DefaultInitiator = "User"
	DefaultRequester = "User"
	DefaultAdmin     = "Admin"
	HelpdeskAssignee = "Helpdesk"
)

// Assignment targets accepted by Assign.
const (
	AssignToHelpdesk = "helpdesk"
	AssignToRE       = "re"
)

// NewTicketParams carries the resolved values for a new ticket.
type NewTicketParams struct {
	TicketID     string
	SrNo         int64
	Category     TicketCategory
	SubCategory  string
	Subject      string
	Description  string
	Priority     TicketPriority
	Initiator    string
	RaisedBy     string
	REClientName string
	FICode       string
	AssignedTo   string
	Documents    []Document
	ContactInfo  *ContactInfo
	Tags         []string
}

// NewTicket builds a Pending ticket with its creation audit entry.
func NewTicket(p NewTicketParams, now time.Time) Ticket {
	initiator := firstNonEmpty(p.Initiator, DefaultInitiator)
	priority := p.Priority
	if priority == "" {
		priority = TicketPriorityMedium
	}
	docs := p.Documents
	if docs == nil {
		docs = []Document{}
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	stamp := FormatTimestamp(now)

	ticket := Ticket{
		TicketID:       p.TicketID,
		SrNo:           p.SrNo,
		Category:       p.Category,
		SubCategory:    p.SubCategory,
		Subject:        p.Subject,
		Description:    p.Description,
		Status:         TicketStatusPending,
		Priority:       priority,
		RaisedOn:       stamp,
		LastUpdatedOn:  stamp,
		Initiator:      initiator,
		RaisedBy:       firstNonEmpty(p.RaisedBy, initiator),
		REClientName:   firstNonEmpty(p.REClientName, initiator),
		FICode:         p.FICode,
		AssignedTo:     p.AssignedTo,
		Documents:      append(make([]Document, 0, len(docs)), docs...),
		AuditTrail:     []AuditEntry{},
		ContactInfo:    p.ContactInfo,
		Tags:           tags,
		RelatedTickets: []string{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	ticket, _ = AppendAudit(ticket, AuditInput{
		Activity:  ActivityTicketCreated,
		Status:    TicketStatusPending,
		Remark:    fmt.Sprintf("Ticket raised for %s - %s", p.Category, p.SubCategory),
		Documents: docs,
		UserName:  initiator,
	}, now)
	return ticket
}

// FeedbackChange is the requester's closing feedback.
type FeedbackChange struct {
	Rating    int
	Comment   string
	Documents []Document
	UserID    string
	UserName  string
}

// Validate checks the rating range.
func (in FeedbackChange) Validate() error {
	if in.Rating < 1 || in.Rating > 5 {
		return apperrors.NewValidationError("Rating must be between 1 and 5", map[string]any{"rating": in.Rating})
	}
	return nil
}

// SubmitFeedback closes a resolved ticket and records the rating.
func SubmitFeedback(t Ticket, in FeedbackChange, now time.Time) (Ticket, AuditEntry, error) {
	if err := in.Validate(); err != nil {
		return t, AuditEntry{}, err
	}
	if t.Status != TicketStatusResolved {
		return t, AuditEntry{}, invalidState("Feedback can only be submitted for resolved tickets", t)
	}

	previous := t.Status
	t.Feedback = &Feedback{Rating: in.Rating, Comment: in.Comment, SubmittedAt: now}
	t.Status = TicketStatusClosed
	t.Reason = ""
	return record(t, AuditInput{
		Activity:       ActivityFeedbackSubmitted,
		Status:         TicketStatusClosed,
		PreviousStatus: previous,
		Remark:         strings.TrimSpace(fmt.Sprintf("Rating: %d/5. %s", in.Rating, in.Comment)),
		Documents:      in.Documents,
		UserID:         in.UserID,
		UserName:       firstNonEmpty(in.UserName, DefaultRequester),
	}, now)
}

// ReopenChange carries the requester's reason for reopening.
type ReopenChange struct {
	Reason      string
	Description string
	Documents   []Document
	UserID      string
	UserName    string
}

// Validate requires a non-blank reason.
func (in ReopenChange) Validate() error {
	if strings.TrimSpace(in.Reason) == "" {
		return missingField("Reason is required to reopen a ticket", "reason")
	}
	return nil
}

// Reopen moves a resolved ticket back to Re-Opened.
func Reopen(t Ticket, in ReopenChange, now time.Time) (Ticket, AuditEntry, error) {
	if err := in.Validate(); err != nil {
		return t, AuditEntry{}, err
	}
	reason := strings.TrimSpace(in.Reason)
	if t.Status != TicketStatusResolved {
		return t, AuditEntry{}, invalidState("Only resolved tickets can be reopened", t)
	}

	previous := t.Status
	t.Status = TicketStatusReopened
	t.Reason = reason
	return record(t, AuditInput{
		Activity:       ActivityTicketReopened,
		Status:         TicketStatusReopened,
		PreviousStatus: previous,
		Remark:         strings.TrimSpace(fmt.Sprintf("Reason: %s. %s", reason, in.Description)),
		Documents:      in.Documents,
		UserID:         in.UserID,
		UserName:       firstNonEmpty(in.UserName, DefaultRequester),
	}, now)
}

// ClarificationChange is the requester's answer to a clarification request.
type ClarificationChange struct {
	Clarification string
	Documents     []Document
	UserID        string
	UserName      string
}

// Validate requires clarification text.
func (in ClarificationChange) Validate() error {
	if strings.TrimSpace(in.Clarification) == "" {
		return missingField("Clarification text is required", "clarification")
	}
	return nil
}

// ProvideClarification answers an open clarification request.
func ProvideClarification(t Ticket, in ClarificationChange, now time.Time) (Ticket, AuditEntry, error) {
	if err := in.Validate(); err != nil {
		return t, AuditEntry{}, err
	}
	if t.Status != TicketStatusClarificationSought {
		return t, AuditEntry{}, invalidState(`Clarification can only be provided when status is "Clarification Sought"`, t)
	}

	previous := t.Status
	t.Status = TicketStatusClarificationProvided
	t.Reason = ""
	return record(t, AuditInput{
		Activity:       ActivityClarificationProvided,
		Status:         TicketStatusClarificationProvided,
		PreviousStatus: previous,
		Remark:         in.Clarification,
		Documents:      in.Documents,
		UserID:         in.UserID,
		UserName:       firstNonEmpty(in.UserName, DefaultRequester),
	}, now)
}

// StatusChange is an administrative status update checked against the transition table.
type StatusChange struct {
	Status    TicketStatus
	Remarks   string
	Documents []Document
	UserID    string
	AdminUser string
}

// Validate requires a target status and bounds the remarks.
func (in StatusChange) Validate() error {
	if strings.TrimSpace(string(in.Status)) == "" {
		return missingField("New status is required", "status")
	}
	return validateRemarks(in.Remarks)
}

// UpdateStatus applies a table-validated status change.
func UpdateStatus(t Ticket, in StatusChange, now time.Time) (Ticket, AuditEntry, error) {
	if err := in.Validate(); err != nil {
		return t, AuditEntry{}, err
	}
	if !CanTransition(t.Status, in.Status) {
		return t, AuditEntry{}, apperrors.NewInvalidTransition(string(t.Status), string(in.Status))
	}

	previous := t.Status
	t.Status = in.Status
	if in.Remarks != "" {
		t.Remarks = in.Remarks
	}
	if in.Status != TicketStatusReopened {
		t.Reason = ""
	}
	return record(t, AuditInput{
		Activity:       ActivityForStatus(in.Status),
		Status:         in.Status,
		PreviousStatus: previous,
		Remark:         in.Remarks,
		Documents:      in.Documents,
		UserID:         in.UserID,
		UserName:       firstNonEmpty(in.AdminUser, DefaultAdmin),
	}, now)
}

// InterventionChange is an administrative annotation.
type InterventionChange struct {
	Remark    string
	UserID    string
	AdminUser string
}

// Validate requires a non-blank remark.
func (in InterventionChange) Validate() error {
	if strings.TrimSpace(in.Remark) == "" {
		return missingField("Remark is required", "remark")
	}
	return nil
}

// Intervene records an annotation without changing status.
func Intervene(t Ticket, in InterventionChange, now time.Time) (Ticket, AuditEntry, error) {
	if err := in.Validate(); err != nil {
		return t, AuditEntry{}, err
	}
	remark := strings.TrimSpace(in.Remark)
	return record(t, AuditInput{
		Activity:       ActivityAdminIntervention,
		Status:         t.Status,
		PreviousStatus: t.Status,
		Remark:         remark,
		UserID:         in.UserID,
		UserName:       firstNonEmpty(in.AdminUser, DefaultAdmin),
	}, now)
}

// AssignmentChange routes a ticket to the helpdesk or to an RE.
type AssignmentChange struct {
	AssignTo  string
	REEntity  string
	Remarks   string
	Documents []Document
	UserID    string
	AdminUser string
}

// Validate checks the target and requires reEntity for RE assignments.
func (in AssignmentChange) Validate() error {
	switch in.target() {
	case "":
		return missingField("assignTo is required (helpdesk or re)", "assignTo")
	case AssignToHelpdesk:
	case AssignToRE:
		if strings.TrimSpace(in.REEntity) == "" {
			return missingField("RE Entity is required when assigning to RE", "reEntity")
		}
	default:
		return apperrors.NewValidationError("assignTo must be one of [helpdesk re]", map[string]any{"assignTo": in.AssignTo})
	}
	return validateRemarks(in.Remarks)
}

func (in AssignmentChange) target() string {
	return strings.ToLower(strings.TrimSpace(in.AssignTo))
}

// Assign sets the ticket to Assigned to RE regardless of the transition table.
// A helpdesk assignment uses the same status; only assignedTo and the activity differ.
// Closed is terminal, so assigning a closed ticket fails with INVALID_STATE.
func Assign(t Ticket, in AssignmentChange, now time.Time) (Ticket, AuditEntry, error) {
	if err := in.Validate(); err != nil {
		return t, AuditEntry{}, err
	}
	target := in.target()
	reEntity := strings.TrimSpace(in.REEntity)
	if t.Status.IsTerminal() {
		return t, AuditEntry{}, invalidState("Closed tickets cannot be assigned", t)
	}

	previous := t.Status
	activity := ActivityAssignedToHelpdesk
	t.AssignedTo = HelpdeskAssignee
	if target == AssignToRE {
		activity = ActivityAssignedToRE
		t.AssignedTo = reEntity
	}
	t.Status = TicketStatusAssignedToRE
	t.Reason = ""
	if in.Remarks != "" {
		t.Remarks = in.Remarks
	}
	return record(t, AuditInput{
		Activity:       activity,
		Status:         TicketStatusAssignedToRE,
		PreviousStatus: previous,
		Remark:         in.Remarks,
		Documents:      in.Documents,
		UserID:         in.UserID,
		UserName:       firstNonEmpty(in.AdminUser, DefaultAdmin),
	}, now)
}

// ReopeningReason derives the reopening reason from the ticket's reason field or, failing
// that, from the latest "Ticket Re-Opened" audit remark.
func ReopeningReason(t Ticket) (string, bool) {
	if t.Status != TicketStatusReopened && t.Reason == "" {
		return "", false
	}
	if t.Reason != "" {
		return t.Reason, true
	}
	for i := len(t.AuditTrail) - 1; i >= 0; i-- {
		entry := t.AuditTrail[i]
		if entry.Activity != ActivityTicketReopened {
			continue
		}
		if entry.Remark == "" {
			return "", false
		}
		return strings.TrimSpace(strings.TrimPrefix(entry.Remark, "Reason: ")), true
	}
	return "", false
}

func record(t Ticket, in AuditInput, now time.Time) (Ticket, AuditEntry, error) {
	t.LastUpdatedOn = FormatTimestamp(now)
	t.UpdatedAt = now
	updated, entry := AppendAudit(t, in, now)
	return updated, entry, nil
}

func missingField(message, field string) error {
	return apperrors.NewValidationError(message, map[string]any{"missing": []string{field}})
}

func validateRemarks(remarks string) error {
	if utf8.RuneCountInString(remarks) > MaxRemarksLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("remarks must be at most %d characters long", MaxRemarksLength),
			map[string]any{"remarks": utf8.RuneCountInString(remarks)})
	}
	return nil
}

func invalidState(message string, t Ticket) error {
	return apperrors.NewInvalidState(message, map[string]any{
		"ticketId": t.TicketID,
		"status":   t.Status,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
