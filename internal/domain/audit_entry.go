package domain

import "time"

// AuditEntry is an immutable record of one state-affecting action on a ticket.
type AuditEntry struct {
	SrNo           int          `json:"srNo" bson:"srNo"`
	Activity       string       `json:"activity" bson:"activity"`
	Status         TicketStatus `json:"status" bson:"status"`
	PreviousStatus TicketStatus `json:"previousStatus,omitempty" bson:"previousStatus,omitempty"`
	Remark         string       `json:"remark" bson:"remark"`
	Documents      []Document   `json:"documents" bson:"documents"`
	UserID         string       `json:"userId,omitempty" bson:"userId,omitempty"`
	UserName       string       `json:"userName,omitempty" bson:"userName,omitempty"`
	Date           string       `json:"date" bson:"date"`
	Timestamp      string       `json:"timestamp" bson:"timestamp"`
}

// AuditInput carries the caller-supplied part of an audit entry.
type AuditInput struct {
	Activity       string
	Status         TicketStatus
	PreviousStatus TicketStatus
	Remark         string
	Documents      []Document
	UserID         string
	UserName       string
}

// AppendAudit returns a copy of t with a new audit entry appended, along with that entry.
// The entry is numbered len(auditTrail)+1 and stamped with now. t itself is not modified.
func AppendAudit(t Ticket, in AuditInput, now time.Time) (Ticket, AuditEntry) {
	out := t.Clone()
	docs := in.Documents
	if docs == nil {
		docs = []Document{}
	}
	entry := AuditEntry{
		SrNo:           len(out.AuditTrail) + 1,
		Activity:       in.Activity,
		Status:         in.Status,
		PreviousStatus: in.PreviousStatus,
		Remark:         in.Remark,
		Documents:      append(make([]Document, 0, len(docs)), docs...),
		UserID:         in.UserID,
		UserName:       in.UserName,
		Date:           FormatTimestamp(now),
		Timestamp:      ISOTimestamp(now),
	}
	out.AuditTrail = append(out.AuditTrail, entry)
	return out, entry
}
