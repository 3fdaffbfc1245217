package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending               TicketStatus = "Pending"
	TicketStatusResolved              TicketStatus = "Resolved"
	TicketStatusClarificationSought   TicketStatus = "Clarification Sought"
	TicketStatusClarificationProvided TicketStatus = "Clarification Provided"
	TicketStatusReopened              TicketStatus = "Re-Opened"
	TicketStatusRespondedByRE         TicketStatus = "Responded by RE"
	TicketStatusAssignedToRE          TicketStatus = "Assigned to RE"
	TicketStatusClosed                TicketStatus = "Closed"
)

// TicketStatuses lists every status in lifecycle order.
var TicketStatuses = []TicketStatus{
	TicketStatusPending,
	TicketStatusResolved,
	TicketStatusClarificationSought,
	TicketStatusClarificationProvided,
	TicketStatusReopened,
	TicketStatusRespondedByRE,
	TicketStatusAssignedToRE,
	TicketStatusClosed,
}

// IsValid reports whether s is a known status.
func (s TicketStatus) IsValid() bool {
	for _, candidate := range TicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusClosed
}

// TicketCategory enumerates ticket classification.
type TicketCategory string

const (
	CategoryTechnical     TicketCategory = "Technical"
	CategoryOperational   TicketCategory = "Operational"
	CategoryFunctional    TicketCategory = "Functional"
	CategoryMiscellaneous TicketCategory = "Miscellaneous"
	CategoryCersaiCKYC    TicketCategory = "CERSAI-CKYC Level Queries"
)

// TicketCategories lists the accepted categories.
var TicketCategories = []TicketCategory{
	CategoryTechnical,
	CategoryOperational,
	CategoryFunctional,
	CategoryMiscellaneous,
	CategoryCersaiCKYC,
}

// IsValid reports whether c is a known category.
func (c TicketCategory) IsValid() bool {
	for _, candidate := range TicketCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
	TicketPriorityUrgent TicketPriority = "Urgent"
)

// Field limits enforced on ticket text.
const (
	MaxSubjectLength     = 100
	MaxDescriptionLength = 1000
	MaxRemarksLength     = 200
)

// Feedback is the requester's rating recorded when a resolved ticket is closed.
type Feedback struct {
	Rating      int       `json:"rating" bson:"rating"`
	Comment     string    `json:"comment,omitempty" bson:"comment,omitempty"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
}

// ContactInfo holds requester contact details.
type ContactInfo struct {
	Email string `json:"email,omitempty" bson:"email,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
}

// SLA carries the externally computed service level marker.
type SLA struct {
	DueDate string `json:"dueDate" bson:"dueDate"`
	Status  string `json:"status" bson:"status"`
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	TicketID       string         `json:"ticketId" bson:"ticketId"`
	SrNo           int64          `json:"srNo" bson:"srNo"`
	Category       TicketCategory `json:"category" bson:"category"`
	SubCategory    string         `json:"subCategory" bson:"subCategory"`
	Subject        string         `json:"subject" bson:"subject"`
	Description    string         `json:"description" bson:"description"`
	Status         TicketStatus   `json:"status" bson:"status"`
	Priority       TicketPriority `json:"priority" bson:"priority"`
	Reason         string         `json:"reason,omitempty" bson:"reason,omitempty"`
	Remarks        string         `json:"remarks,omitempty" bson:"remarks,omitempty"`
	RaisedOn       string         `json:"raisedOn" bson:"raisedOn"`
	LastUpdatedOn  string         `json:"lastUpdatedOn" bson:"lastUpdatedOn"`
	Initiator      string         `json:"initiator" bson:"initiator"`
	RaisedBy       string         `json:"raisedBy" bson:"raisedBy"`
	REClientName   string         `json:"reClientName" bson:"reClientName"`
	FICode         string         `json:"fiCode" bson:"fiCode"`
	AssignedTo     string         `json:"assignedTo" bson:"assignedTo"`
	Documents      []Document     `json:"documents" bson:"documents"`
	AuditTrail     []AuditEntry   `json:"auditTrail" bson:"auditTrail"`
	Feedback       *Feedback      `json:"feedback,omitempty" bson:"feedback,omitempty"`
	ContactInfo    *ContactInfo   `json:"contactInfo,omitempty" bson:"contactInfo,omitempty"`
	Tags           []string       `json:"tags" bson:"tags"`
	RelatedTickets []string       `json:"relatedTickets" bson:"relatedTickets"`
	SLA            *SLA           `json:"sla,omitempty" bson:"sla,omitempty"`
	Version        int            `json:"-" bson:"version"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// LastAuditEntry returns the most recent audit entry, if any.
func (t *Ticket) LastAuditEntry() (AuditEntry, bool) {
	if len(t.AuditTrail) == 0 {
		return AuditEntry{}, false
	}
	return t.AuditTrail[len(t.AuditTrail)-1], true
}

// FindDocument looks up a document on the ticket or any of its audit entries.
func (t *Ticket) FindDocument(documentID string) (Document, bool) {
	for _, doc := range t.Documents {
		if doc.ID == documentID {
			return doc, true
		}
	}
	for _, entry := range t.AuditTrail {
		for _, doc := range entry.Documents {
			if doc.ID == documentID {
				return doc, true
			}
		}
	}
	return Document{}, false
}

// Clone returns a deep copy so callers can mutate without aliasing slices.
func (t Ticket) Clone() Ticket {
	out := t
	out.Documents = cloneDocuments(t.Documents)
	if t.AuditTrail != nil {
		out.AuditTrail = make([]AuditEntry, len(t.AuditTrail))
		for i, entry := range t.AuditTrail {
			entry.Documents = cloneDocuments(entry.Documents)
			out.AuditTrail[i] = entry
		}
	}
	if t.Feedback != nil {
		fb := *t.Feedback
		out.Feedback = &fb
	}
	if t.ContactInfo != nil {
		ci := *t.ContactInfo
		out.ContactInfo = &ci
	}
	if t.SLA != nil {
		sla := *t.SLA
		out.SLA = &sla
	}
	out.Tags = cloneStrings(t.Tags)
	out.RelatedTickets = cloneStrings(t.RelatedTickets)
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append(make([]string, 0, len(values)), values...)
}

func cloneDocuments(docs []Document) []Document {
	if docs == nil {
		return nil
	}
	return append(make([]Document, 0, len(docs)), docs...)
}
