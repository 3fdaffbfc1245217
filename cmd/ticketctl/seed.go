package main

import (
	"context"
	"fmt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

type sampleTicket struct {
	category    domain.TicketCategory
	subCategory string
	subject     string
	description string
	priority    domain.TicketPriority
}

var samples = []sampleTicket{
	{domain.CategoryTechnical, "Login", "Unable to log in to the portal", "Valid credentials are rejected since this morning", domain.TicketPriorityHigh},
	{domain.CategoryOperational, "Reports", "Monthly report is missing rows", "Branch totals are absent from the export", domain.TicketPriorityMedium},
	{domain.CategoryFunctional, "Uploads", "Bulk upload times out", "Files above 5 MB never finish uploading", domain.TicketPriorityMedium},
	{domain.CategoryCersaiCKYC, "KYC Search", "CKYC search returns stale record", "Updated address is not reflected in search results", domain.TicketPriorityUrgent},
	{domain.CategoryMiscellaneous, "Access", "Request for additional user seat", "A new analyst joined the compliance team", domain.TicketPriorityLow},
}

// seedScenarios drive each sample ticket to a different point of its lifecycle.
var seedScenarios = []func(ctx context.Context, svc *service.TicketService, id string) error{
	func(context.Context, *service.TicketService, string) error { return nil },
	func(ctx context.Context, svc *service.TicketService, id string) error {
		_, err := svc.ResolveTicket(ctx, id, domain.StatusChange{Remarks: "Fixed in the latest release", AdminUser: "Seeder"})
		return err
	},
	func(ctx context.Context, svc *service.TicketService, id string) error {
		if _, err := svc.ResolveTicket(ctx, id, domain.StatusChange{Remarks: "Configuration corrected", AdminUser: "Seeder"}); err != nil {
			return err
		}
		_, err := svc.SubmitFeedback(ctx, id, domain.FeedbackChange{Rating: 4, Comment: "Quick turnaround", UserName: "Seeder"})
		return err
	},
	func(ctx context.Context, svc *service.TicketService, id string) error {
		if _, err := svc.RequestClarification(ctx, id, domain.StatusChange{Remarks: "Please share a screenshot", AdminUser: "Seeder"}); err != nil {
			return err
		}
		_, err := svc.ProvideClarification(ctx, id, domain.ClarificationChange{Clarification: "Screenshot attached to the email thread", UserName: "Seeder"})
		return err
	},
	func(ctx context.Context, svc *service.TicketService, id string) error {
		if _, err := svc.ResolveTicket(ctx, id, domain.StatusChange{Remarks: "Seat provisioned", AdminUser: "Seeder"}); err != nil {
			return err
		}
		_, err := svc.ReopenTicket(ctx, id, domain.ReopenChange{Reason: "Seat is not visible yet", UserName: "Seeder"})
		return err
	},
	func(ctx context.Context, svc *service.TicketService, id string) error {
		_, err := svc.AssignTicket(ctx, id, domain.AssignmentChange{AssignTo: domain.AssignToRE, REEntity: "Regional RE", Remarks: "Needs RE review", AdminUser: "Seeder"})
		return err
	},
}

// seedTickets creates count tickets and returns their ids in creation order.
func seedTickets(ctx context.Context, svc *service.TicketService, count int) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		sample := samples[i%len(samples)]
		ticket, err := svc.CreateTicket(ctx, service.CreateTicketInput{
			Category:    sample.category,
			SubCategory: sample.subCategory,
			Subject:     sample.subject,
			Description: sample.description,
			Priority:    sample.priority,
			Initiator:   "Seeder",
			RaisedBy:    "Seeder",
		})
		if err != nil {
			return ids, fmt.Errorf("create sample %d: %w", i+1, err)
		}
		if err := seedScenarios[i%len(seedScenarios)](ctx, svc, ticket.TicketID); err != nil {
			return ids, fmt.Errorf("advance ticket %s: %w", ticket.TicketID, err)
		}
		ids = append(ids, ticket.TicketID)
	}
	return ids, nil
}
