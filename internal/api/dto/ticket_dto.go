package dto

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CreateTicketRequest payload. Accepted as JSON or as multipart form fields.
type CreateTicketRequest struct {
	Category     string              `json:"category" form:"category"`
	SubCategory  string              `json:"subCategory" form:"subCategory"`
	Subject      string              `json:"subject" form:"subject"`
	Description  string              `json:"description" form:"description"`
	Priority     string              `json:"priority" form:"priority"`
	Initiator    string              `json:"initiator" form:"initiator"`
	RaisedBy     string              `json:"raisedBy" form:"raisedBy"`
	REClientName string              `json:"reClientName" form:"reClientName"`
	FICode       string              `json:"fiCode" form:"fiCode"`
	AssignedTo   string              `json:"assignedTo" form:"assignedTo"`
	ContactInfo  *domain.ContactInfo `json:"contactInfo" form:"-"`
	Tags         []string            `json:"tags" form:"tags"`
}

// ToInput maps the request onto the service input.
func (r CreateTicketRequest) ToInput(docs []domain.Document) service.CreateTicketInput {
	return service.CreateTicketInput{
		Category:     domain.TicketCategory(r.Category),
		SubCategory:  r.SubCategory,
		Subject:      r.Subject,
		Description:  r.Description,
		Priority:     domain.TicketPriority(r.Priority),
		Initiator:    r.Initiator,
		RaisedBy:     r.RaisedBy,
		REClientName: r.REClientName,
		FICode:       r.FICode,
		AssignedTo:   r.AssignedTo,
		ContactInfo:  r.ContactInfo,
		Tags:         r.Tags,
		Documents:    docs,
	}
}

// FeedbackRequest payload.
type FeedbackRequest struct {
	Rating   int    `json:"rating" form:"rating"`
	Comment  string `json:"comment" form:"comment"`
	UserID   string `json:"userId" form:"userId"`
	UserName string `json:"userName" form:"userName"`
}

// ToChange maps the request onto the domain change.
func (r FeedbackRequest) ToChange(docs []domain.Document) domain.FeedbackChange {
	return domain.FeedbackChange{Rating: r.Rating, Comment: r.Comment, Documents: docs, UserID: r.UserID, UserName: r.UserName}
}

// ReopenRequest payload.
type ReopenRequest struct {
	Reason      string `json:"reason" form:"reason"`
	Description string `json:"description" form:"description"`
	UserID      string `json:"userId" form:"userId"`
	UserName    string `json:"userName" form:"userName"`
}

// ToChange maps the request onto the domain change.
func (r ReopenRequest) ToChange(docs []domain.Document) domain.ReopenChange {
	return domain.ReopenChange{Reason: r.Reason, Description: r.Description, Documents: docs, UserID: r.UserID, UserName: r.UserName}
}

// ClarificationRequest payload.
type ClarificationRequest struct {
	Clarification string `json:"clarification" form:"clarification"`
	UserID        string `json:"userId" form:"userId"`
	UserName      string `json:"userName" form:"userName"`
}

// ToChange maps the request onto the domain change.
func (r ClarificationRequest) ToChange(docs []domain.Document) domain.ClarificationChange {
	return domain.ClarificationChange{Clarification: r.Clarification, Documents: docs, UserID: r.UserID, UserName: r.UserName}
}

// StatusUpdateRequest payload. Status is ignored by the resolve and clarification routes.
type StatusUpdateRequest struct {
	Status    string `json:"status" form:"status"`
	Remarks   string `json:"remarks" form:"remarks"`
	AdminUser string `json:"adminUser" form:"adminUser"`
	UserID    string `json:"userId" form:"userId"`
}

// ToChange maps the request onto the domain change.
func (r StatusUpdateRequest) ToChange(docs []domain.Document) domain.StatusChange {
	return domain.StatusChange{
		Status:    domain.TicketStatus(r.Status),
		Remarks:   r.Remarks,
		Documents: docs,
		UserID:    r.UserID,
		AdminUser: r.AdminUser,
	}
}

// InterveneRequest payload.
type InterveneRequest struct {
	Remark    string `json:"remark" form:"remark"`
	AdminUser string `json:"adminUser" form:"adminUser"`
	UserID    string `json:"userId" form:"userId"`
}

// ToChange maps the request onto the domain change.
func (r InterveneRequest) ToChange() domain.InterventionChange {
	return domain.InterventionChange{Remark: r.Remark, UserID: r.UserID, AdminUser: r.AdminUser}
}

// AssignRequest payload.
type AssignRequest struct {
	AssignTo  string `json:"assignTo" form:"assignTo"`
	REEntity  string `json:"reEntity" form:"reEntity"`
	Remarks   string `json:"remarks" form:"remarks"`
	AdminUser string `json:"adminUser" form:"adminUser"`
	UserID    string `json:"userId" form:"userId"`
}

// ToChange maps the request onto the domain change.
func (r AssignRequest) ToChange(docs []domain.Document) domain.AssignmentChange {
	return domain.AssignmentChange{
		AssignTo:  r.AssignTo,
		REEntity:  r.REEntity,
		Remarks:   r.Remarks,
		Documents: docs,
		UserID:    r.UserID,
		AdminUser: r.AdminUser,
	}
}

// TicketListQuery captures list query parameters.
type TicketListQuery struct {
	Page      string `query:"page"`
	Limit     string `query:"limit"`
	Status    string `query:"status"`
	Category  string `query:"category"`
	Search    string `query:"search"`
	SortField string `query:"sortField"`
	SortOrder string `query:"sortOrder"`
}

// DocumentDownloadResponse describes where a document can be fetched.
type DocumentDownloadResponse struct {
	domain.Document
	DownloadURL string `json:"downloadUrl"`
}
