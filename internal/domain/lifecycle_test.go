package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

var fixedNow = time.Date(2024, time.May, 14, 10, 15, 0, 0, time.UTC)

func newTestTicket(t *testing.T) Ticket {
	t.Helper()
	return NewTicket(NewTicketParams{
		TicketID:    "7654567897",
		SrNo:        1,
		Category:    CategoryTechnical,
		SubCategory: "Login",
		Subject:     "Cannot log in",
		Description: "The portal rejects my password",
		FICode:      "FI045",
		AssignedTo:  "Helpdesk Team",
	}, fixedNow)
}

func withStatus(t *testing.T, ticket Ticket, status TicketStatus) Ticket {
	t.Helper()
	ticket, _ = AppendAudit(ticket, AuditInput{
		Activity:       ActivityForStatus(status),
		Status:         status,
		PreviousStatus: ticket.Status,
	}, fixedNow)
	ticket.Status = status
	return ticket
}

func assertAuditConsistent(t *testing.T, ticket Ticket) {
	t.Helper()
	require.NotEmpty(t, ticket.AuditTrail)
	for i, entry := range ticket.AuditTrail {
		assert.Equal(t, i+1, entry.SrNo)
	}
	last, ok := ticket.LastAuditEntry()
	require.True(t, ok)
	assert.Equal(t, ticket.Status, last.Status)
}

func TestNewTicket(t *testing.T) {
	ticket := newTestTicket(t)

	assert.Equal(t, TicketStatusPending, ticket.Status)
	assert.Equal(t, TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, DefaultInitiator, ticket.Initiator)
	assert.Equal(t, DefaultInitiator, ticket.RaisedBy)
	assert.Equal(t, DefaultInitiator, ticket.REClientName)
	assert.Equal(t, "14/05/2024 10:15AM", ticket.RaisedOn)
	assert.Equal(t, ticket.RaisedOn, ticket.LastUpdatedOn)
	assert.NotNil(t, ticket.Documents)
	assert.NotNil(t, ticket.Tags)

	require.Len(t, ticket.AuditTrail, 1)
	entry := ticket.AuditTrail[0]
	assert.Equal(t, 1, entry.SrNo)
	assert.Equal(t, ActivityTicketCreated, entry.Activity)
	assert.Equal(t, "Ticket raised for Technical - Login", entry.Remark)
	assert.Empty(t, entry.PreviousStatus)
	assert.Equal(t, DefaultInitiator, entry.UserName)
}

func TestNewTicketKeepsExplicitActors(t *testing.T) {
	ticket := NewTicket(NewTicketParams{
		TicketID:     "1",
		Category:     CategoryOperational,
		SubCategory:  "Reports",
		Priority:     TicketPriorityUrgent,
		Initiator:    "Asha",
		REClientName: "Acme Bank",
	}, fixedNow)

	assert.Equal(t, TicketPriorityUrgent, ticket.Priority)
	assert.Equal(t, "Asha", ticket.RaisedBy)
	assert.Equal(t, "Acme Bank", ticket.REClientName)
	assert.Equal(t, "Asha", ticket.AuditTrail[0].UserName)
}

func TestSubmitFeedback(t *testing.T) {
	tests := []struct {
		name     string
		status   TicketStatus
		rating   int
		wantCode string
	}{
		{"rating too low", TicketStatusResolved, 0, apperrors.CodeValidation},
		{"rating too high", TicketStatusResolved, 6, apperrors.CodeValidation},
		{"not resolved", TicketStatusPending, 3, apperrors.CodeInvalidState},
		{"validation wins over state", TicketStatusPending, 9, apperrors.CodeValidation},
		{"resolved with valid rating", TicketStatusResolved, 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := newTestTicket(t)
			if tt.status != TicketStatusPending {
				ticket = withStatus(t, ticket, tt.status)
			}
			before := len(ticket.AuditTrail)

			updated, entry, err := SubmitFeedback(ticket, FeedbackChange{Rating: tt.rating, Comment: "thanks"}, fixedNow)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tt.wantCode))
				assert.Len(t, updated.AuditTrail, before)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TicketStatusClosed, updated.Status)
			require.NotNil(t, updated.Feedback)
			assert.Equal(t, tt.rating, updated.Feedback.Rating)
			assert.Equal(t, ActivityFeedbackSubmitted, entry.Activity)
			assert.Equal(t, TicketStatusResolved, entry.PreviousStatus)
			assert.Equal(t, "Rating: 3/5. thanks", entry.Remark)
			assert.Equal(t, DefaultRequester, entry.UserName)
			assertAuditConsistent(t, updated)
		})
	}
}

func TestFeedbackRemarkWithoutComment(t *testing.T) {
	ticket := withStatus(t, newTestTicket(t), TicketStatusResolved)
	_, entry, err := SubmitFeedback(ticket, FeedbackChange{Rating: 5}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "Rating: 5/5.", entry.Remark)
}

func TestReopen(t *testing.T) {
	t.Run("requires reason", func(t *testing.T) {
		ticket := withStatus(t, newTestTicket(t), TicketStatusResolved)
		_, _, err := Reopen(ticket, ReopenChange{Reason: "  "}, fixedNow)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	})

	t.Run("requires resolved", func(t *testing.T) {
		ticket := withStatus(t, newTestTicket(t), TicketStatusClarificationSought)
		_, _, err := Reopen(ticket, ReopenChange{Reason: "still broken"}, fixedNow)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidState))
	})

	t.Run("reopens resolved ticket", func(t *testing.T) {
		ticket := withStatus(t, newTestTicket(t), TicketStatusResolved)
		updated, entry, err := Reopen(ticket, ReopenChange{Reason: "still broken", Description: "same error"}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, TicketStatusReopened, updated.Status)
		assert.Equal(t, "still broken", updated.Reason)
		assert.Equal(t, ActivityTicketReopened, entry.Activity)
		assert.Equal(t, "Reason: still broken. same error", entry.Remark)
		assertAuditConsistent(t, updated)

		reason, ok := ReopeningReason(updated)
		assert.True(t, ok)
		assert.Equal(t, "still broken", reason)
	})
}

func TestProvideClarification(t *testing.T) {
	ticket := newTestTicket(t)
	_, _, err := ProvideClarification(ticket, ClarificationChange{Clarification: "details"}, fixedNow)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidState))

	_, _, err = ProvideClarification(ticket, ClarificationChange{}, fixedNow)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	sought := withStatus(t, ticket, TicketStatusClarificationSought)
	updated, entry, err := ProvideClarification(sought, ClarificationChange{Clarification: "here are the logs"}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, TicketStatusClarificationProvided, updated.Status)
	assert.Equal(t, "here are the logs", entry.Remark)
	assert.Equal(t, TicketStatusClarificationSought, entry.PreviousStatus)
	assertAuditConsistent(t, updated)
}

func TestUpdateStatus(t *testing.T) {
	t.Run("table transition", func(t *testing.T) {
		ticket := newTestTicket(t)
		updated, entry, err := UpdateStatus(ticket, StatusChange{Status: TicketStatusResolved, Remarks: "fixed"}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, TicketStatusResolved, updated.Status)
		assert.Equal(t, "fixed", updated.Remarks)
		assert.Equal(t, ActivityTicketResolved, entry.Activity)
		assert.Equal(t, DefaultAdmin, entry.UserName)
		assertAuditConsistent(t, updated)
	})

	t.Run("closed is terminal", func(t *testing.T) {
		ticket := withStatus(t, newTestTicket(t), TicketStatusClosed)
		_, _, err := UpdateStatus(ticket, StatusChange{Status: TicketStatusPending}, fixedNow)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
		de := apperrors.ToDomainError(err)
		assert.Equal(t, "Closed", de.Details["from"])
		assert.Equal(t, "Pending", de.Details["to"])
	})

	t.Run("missing status", func(t *testing.T) {
		_, _, err := UpdateStatus(newTestTicket(t), StatusChange{}, fixedNow)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	})

	t.Run("unknown status", func(t *testing.T) {
		_, _, err := UpdateStatus(newTestTicket(t), StatusChange{Status: "Escalated"}, fixedNow)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
	})

	t.Run("keeps remarks when none given and uses admin name", func(t *testing.T) {
		ticket := newTestTicket(t)
		ticket.Remarks = "earlier"
		updated, entry, err := UpdateStatus(ticket, StatusChange{Status: TicketStatusClarificationSought, AdminUser: "Ravi"}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, "earlier", updated.Remarks)
		assert.Equal(t, "Ravi", entry.UserName)
		assert.Equal(t, ActivityClarificationRequested, entry.Activity)
	})
}

func TestIntervene(t *testing.T) {
	ticket := withStatus(t, newTestTicket(t), TicketStatusReopened)

	_, _, err := Intervene(ticket, InterventionChange{}, fixedNow)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	updated, entry, err := Intervene(ticket, InterventionChange{Remark: "escalating to L2", AdminUser: "Meera"}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, TicketStatusReopened, updated.Status)
	assert.Equal(t, ActivityAdminIntervention, entry.Activity)
	assert.Equal(t, TicketStatusReopened, entry.Status)
	assert.Equal(t, TicketStatusReopened, entry.PreviousStatus)
	assert.Equal(t, "Meera", entry.UserName)
	assertAuditConsistent(t, updated)
}

func TestAssign(t *testing.T) {
	t.Run("re requires entity", func(t *testing.T) {
		_, _, err := Assign(newTestTicket(t), AssignmentChange{AssignTo: "re"}, fixedNow)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
		assert.Contains(t, err.Error(), "RE Entity is required")
	})

	t.Run("re with entity", func(t *testing.T) {
		updated, entry, err := Assign(newTestTicket(t), AssignmentChange{AssignTo: "re", REEntity: "FI045"}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, TicketStatusAssignedToRE, updated.Status)
		assert.Equal(t, "FI045", updated.AssignedTo)
		assert.Equal(t, ActivityAssignedToRE, entry.Activity)
		assertAuditConsistent(t, updated)
	})

	t.Run("helpdesk keeps assigned to RE status", func(t *testing.T) {
		updated, entry, err := Assign(newTestTicket(t), AssignmentChange{AssignTo: "Helpdesk"}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, TicketStatusAssignedToRE, updated.Status)
		assert.Equal(t, HelpdeskAssignee, updated.AssignedTo)
		assert.Equal(t, ActivityAssignedToHelpdesk, entry.Activity)
	})

	t.Run("bypasses transition table", func(t *testing.T) {
		ticket := withStatus(t, newTestTicket(t), TicketStatusResolved)
		updated, _, err := Assign(ticket, AssignmentChange{AssignTo: "re", REEntity: "FI001"}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, TicketStatusAssignedToRE, updated.Status)
	})

	t.Run("closed cannot be assigned", func(t *testing.T) {
		ticket := withStatus(t, newTestTicket(t), TicketStatusClosed)
		_, _, err := Assign(ticket, AssignmentChange{AssignTo: "helpdesk"}, fixedNow)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidState))
	})

	t.Run("unknown target", func(t *testing.T) {
		_, _, err := Assign(newTestTicket(t), AssignmentChange{AssignTo: "vendor"}, fixedNow)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	})
}

func TestAppendAuditDoesNotMutateInput(t *testing.T) {
	ticket := newTestTicket(t)
	updated, entry := AppendAudit(ticket, AuditInput{Activity: "x", Status: TicketStatusPending}, fixedNow)

	assert.Len(t, ticket.AuditTrail, 1)
	assert.Len(t, updated.AuditTrail, 2)
	assert.Equal(t, 2, entry.SrNo)
	assert.Equal(t, "14/05/2024 10:15AM", entry.Date)
	assert.Equal(t, "2024-05-14T10:15:00.000Z", entry.Timestamp)
	assert.NotNil(t, entry.Documents)
}

func TestReopeningReasonFallsBackToAudit(t *testing.T) {
	ticket := withStatus(t, newTestTicket(t), TicketStatusResolved)
	ticket, _, err := Reopen(ticket, ReopenChange{Reason: "not fixed"}, fixedNow)
	require.NoError(t, err)
	ticket.Reason = ""

	reason, ok := ReopeningReason(ticket)
	assert.True(t, ok)
	assert.Equal(t, "not fixed.", reason)

	_, ok = ReopeningReason(newTestTicket(t))
	assert.False(t, ok)
}

func TestLifecycleSequenceKeepsInvariants(t *testing.T) {
	ticket := newTestTicket(t)
	var err error

	ticket, _, err = UpdateStatus(ticket, StatusChange{Status: TicketStatusClarificationSought}, fixedNow)
	require.NoError(t, err)
	ticket, _, err = ProvideClarification(ticket, ClarificationChange{Clarification: "logs attached"}, fixedNow)
	require.NoError(t, err)
	ticket, _, err = UpdateStatus(ticket, StatusChange{Status: TicketStatusResolved}, fixedNow)
	require.NoError(t, err)
	ticket, _, err = Reopen(ticket, ReopenChange{Reason: "regressed"}, fixedNow)
	require.NoError(t, err)
	ticket, _, err = Assign(ticket, AssignmentChange{AssignTo: "re", REEntity: "FI045"}, fixedNow)
	require.NoError(t, err)
	ticket, _, err = UpdateStatus(ticket, StatusChange{Status: TicketStatusResolved}, fixedNow)
	require.NoError(t, err)
	ticket, _, err = SubmitFeedback(ticket, FeedbackChange{Rating: 4}, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, TicketStatusClosed, ticket.Status)
	assert.Len(t, ticket.AuditTrail, 8)
	assert.Empty(t, ticket.Reason)
	assertAuditConsistent(t, ticket)
}
