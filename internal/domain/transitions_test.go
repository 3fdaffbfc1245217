package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		current TicketStatus
		next    TicketStatus
		want    bool
	}{
		{"pending to resolved", TicketStatusPending, TicketStatusResolved, true},
		{"pending to clarification sought", TicketStatusPending, TicketStatusClarificationSought, true},
		{"pending to reopened", TicketStatusPending, TicketStatusReopened, true},
		{"pending to closed", TicketStatusPending, TicketStatusClosed, false},
		{"resolved to closed", TicketStatusResolved, TicketStatusClosed, true},
		{"resolved to reopened", TicketStatusResolved, TicketStatusReopened, true},
		{"resolved to pending", TicketStatusResolved, TicketStatusPending, false},
		{"clarification sought to provided", TicketStatusClarificationSought, TicketStatusClarificationProvided, true},
		{"clarification sought to pending", TicketStatusClarificationSought, TicketStatusPending, false},
		{"clarification provided to pending", TicketStatusClarificationProvided, TicketStatusPending, true},
		{"clarification provided to reopened", TicketStatusClarificationProvided, TicketStatusReopened, false},
		{"reopened to resolved", TicketStatusReopened, TicketStatusResolved, true},
		{"responded by RE to clarification sought", TicketStatusRespondedByRE, TicketStatusClarificationSought, true},
		{"assigned to RE to resolved", TicketStatusAssignedToRE, TicketStatusResolved, true},
		{"assigned to RE to closed", TicketStatusAssignedToRE, TicketStatusClosed, false},
		{"closed to pending", TicketStatusClosed, TicketStatusPending, false},
		{"closed to reopened", TicketStatusClosed, TicketStatusReopened, false},
		{"unknown current", TicketStatus("Bogus"), TicketStatusResolved, false},
		{"unknown target", TicketStatusPending, TicketStatus("Bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.current, tt.next))
		})
	}
}

func TestClosedIsTerminal(t *testing.T) {
	assert.Empty(t, AllowedTransitions(TicketStatusClosed))
	assert.True(t, TicketStatusClosed.IsTerminal())
	for _, status := range TicketStatuses {
		if status == TicketStatusClosed {
			continue
		}
		assert.False(t, status.IsTerminal(), status)
		assert.NotEmpty(t, AllowedTransitions(status), status)
	}
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	next := AllowedTransitions(TicketStatusPending)
	next[0] = TicketStatusClosed
	assert.False(t, CanTransition(TicketStatusPending, TicketStatusClosed))
}

func TestActivityForStatus(t *testing.T) {
	tests := map[TicketStatus]string{
		TicketStatusResolved:              "Ticket Resolved",
		TicketStatusClarificationSought:   "Clarification Requested",
		TicketStatusPending:               "Ticket Status Updated",
		TicketStatusReopened:              "Ticket Re-Opened",
		TicketStatusClosed:                "Ticket Closed",
		TicketStatusAssignedToRE:          "Ticket Assigned to RE",
		TicketStatusRespondedByRE:         "RE Responded",
		TicketStatusClarificationProvided: "Status Updated",
		TicketStatus("Something Else"):    "Status Updated",
	}
	for status, want := range tests {
		assert.Equal(t, want, ActivityForStatus(status), status)
	}
}
