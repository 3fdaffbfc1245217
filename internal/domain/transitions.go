package domain

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusPending:               {TicketStatusResolved, TicketStatusClarificationSought, TicketStatusReopened},
	TicketStatusResolved:              {TicketStatusReopened, TicketStatusClosed},
	TicketStatusClarificationSought:   {TicketStatusResolved, TicketStatusReopened, TicketStatusClarificationProvided},
	TicketStatusClarificationProvided: {TicketStatusResolved, TicketStatusClarificationSought, TicketStatusPending},
	TicketStatusReopened:              {TicketStatusResolved, TicketStatusClarificationSought, TicketStatusPending},
	TicketStatusRespondedByRE:         {TicketStatusResolved, TicketStatusClarificationSought, TicketStatusPending},
	TicketStatusAssignedToRE:          {TicketStatusResolved, TicketStatusClarificationSought, TicketStatusPending},
	TicketStatusClosed:                {},
}

// CanTransition reports whether the generic status update may move from current to next.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from current through a status update.
func AllowedTransitions(current TicketStatus) []TicketStatus {
	return append([]TicketStatus(nil), allowedTransitions[current]...)
}

// Activity labels recorded in the audit trail.
const (
	ActivityTicketCreated          = "Ticket Created"
	ActivityFeedbackSubmitted      = "Feedback Submitted"
	ActivityTicketReopened         = "Ticket Re-Opened"
	ActivityClarificationProvided  = "Clarification Provided"
	ActivityTicketResolved         = "Ticket Resolved"
	ActivityClarificationRequested = "Clarification Requested"
	ActivityTicketStatusUpdated    = "Ticket Status Updated"
	ActivityTicketClosed           = "Ticket Closed"
	ActivityTicketAssignedToRE     = "Ticket Assigned to RE"
	ActivityREResponded            = "RE Responded"
	ActivityStatusUpdated          = "Status Updated"
	ActivityAdminIntervention      = "Admin Intervention"
	ActivityAssignedToRE           = "Assigned to RE"
	ActivityAssignedToHelpdesk     = "Assigned to Helpdesk"
)

// ActivityForStatus returns the audit label for a status update targeting status.
func ActivityForStatus(status TicketStatus) string {
	switch status {
	case TicketStatusResolved:
		return ActivityTicketResolved
	case TicketStatusClarificationSought:
		return ActivityClarificationRequested
	case TicketStatusPending:
		return ActivityTicketStatusUpdated
	case TicketStatusReopened:
		return ActivityTicketReopened
	case TicketStatusClosed:
		return ActivityTicketClosed
	case TicketStatusAssignedToRE:
		return ActivityTicketAssignedToRE
	case TicketStatusRespondedByRE:
		return ActivityREResponded
	default:
		return ActivityStatusUpdated
	}
}
