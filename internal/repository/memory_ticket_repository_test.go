package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

var baseTime = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

func seedTicket(t *testing.T, repo TicketRepository, srNo int64, status domain.TicketStatus, subject string) domain.Ticket {
	t.Helper()
	ticket := domain.NewTicket(domain.NewTicketParams{
		TicketID:    fmt.Sprintf("%d", 7654567896+srNo),
		SrNo:        srNo,
		Category:    domain.CategoryTechnical,
		SubCategory: "Portal",
		Subject:     subject,
		Description: "description " + subject,
	}, baseTime.Add(time.Duration(srNo)*time.Minute))
	ticket.Status = status
	require.NoError(t, repo.Create(context.Background(), &ticket))
	return ticket
}

func TestMemoryRepositoryCreateRejectsDuplicates(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	ticket := seedTicket(t, repo, 1, domain.TicketStatusPending, "first")

	dupID := ticket
	dupID.SrNo = 2
	assert.ErrorIs(t, repo.Create(ctx, &dupID), ErrDuplicate)

	dupSr := ticket
	dupSr.TicketID = "other"
	assert.ErrorIs(t, repo.Create(ctx, &dupSr), ErrDuplicate)
}

func TestMemoryRepositoryUpdateChecksVersion(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	seedTicket(t, repo, 1, domain.TicketStatusPending, "first")

	a, err := repo.GetByTicketID(ctx, "7654567897")
	require.NoError(t, err)
	b, err := repo.GetByTicketID(ctx, "7654567897")
	require.NoError(t, err)

	a.Status = domain.TicketStatusResolved
	require.NoError(t, repo.Update(ctx, a))
	assert.Equal(t, 2, a.Version)

	b.Status = domain.TicketStatusClarificationSought
	assert.ErrorIs(t, repo.Update(ctx, b), ErrVersionConflict)

	missing := domain.Ticket{TicketID: "nope", Version: 1}
	assert.ErrorIs(t, repo.Update(ctx, &missing), ErrNotFound)

	stored, err := repo.GetByTicketID(ctx, "7654567897")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, stored.Status)
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	seedTicket(t, repo, 1, domain.TicketStatusPending, "first")

	got, err := repo.GetByTicketID(ctx, "7654567897")
	require.NoError(t, err)
	got.AuditTrail[0].Remark = "tampered"

	again, err := repo.GetByTicketID(ctx, "7654567897")
	require.NoError(t, err)
	assert.NotEqual(t, "tampered", again.AuditTrail[0].Remark)

	_, err = repo.GetByTicketID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryListAndCount(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	for i := int64(1); i <= 15; i++ {
		status := domain.TicketStatusResolved
		if i%5 == 0 || i%5 == 1 {
			status = domain.TicketStatusPending
		}
		seedTicket(t, repo, i, status, fmt.Sprintf("Subject %02d", i))
	}

	pending := TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusPending}, Limit: 5}
	total, err := repo.Count(ctx, pending)
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)

	page, err := repo.ListWithFilter(ctx, pending)
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, int64(15), page[0].SrNo, "default sort is createdAt desc")

	pending.Offset = 5
	page, err = repo.ListWithFilter(ctx, pending)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	asc := TicketFilter{SortField: "srNo", SortOrder: SortAsc, Limit: 3}
	page, err = repo.ListWithFilter(ctx, asc)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{page[0].SrNo, page[1].SrNo, page[2].SrNo})

	beyond := TicketFilter{Offset: 100, Limit: 10}
	page, err = repo.ListWithFilter(ctx, beyond)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMemoryRepositorySearchIsLiteralAndCaseInsensitive(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	seedTicket(t, repo, 1, domain.TicketStatusPending, "Password reset (urgent)")
	seedTicket(t, repo, 2, domain.TicketStatusPending, "Printer jam")

	term := "PASSWORD"
	total, err := repo.Count(ctx, TicketFilter{SearchTerm: &term})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	literal := "(urgent)"
	total, err = repo.Count(ctx, TicketFilter{SearchTerm: &literal})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	byID := "7654567898"
	page, err := repo.ListWithFilter(ctx, TicketFilter{SearchTerm: &byID})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Printer jam", page[0].Subject)
}

func TestMemoryRepositoryCategoryAndStats(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	seedTicket(t, repo, 1, domain.TicketStatusPending, "a")
	seedTicket(t, repo, 2, domain.TicketStatus(" Resolved "), "b")

	other := domain.CategoryFunctional
	total, err := repo.Count(ctx, TicketFilter{Category: &other})
	require.NoError(t, err)
	assert.Zero(t, total)

	updated, err := repo.TrimStatusWhitespace(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[domain.TicketStatusPending])
	assert.EqualValues(t, 1, counts[domain.TicketStatusResolved])

	max, err := repo.MaxSrNo(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, max)

	ids, err := repo.ListTicketIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"7654567897", "7654567898"}, ids)
}

func TestResolveSortField(t *testing.T) {
	assert.Equal(t, "srNo", ResolveSortField("srNo"))
	assert.Equal(t, DefaultSortField, ResolveSortField(""))
	assert.Equal(t, DefaultSortField, ResolveSortField("password; DROP TABLE"))
	assert.Equal(t, SortAsc, ParseSortOrder("ASC"))
	assert.Equal(t, SortDesc, ParseSortOrder(""))
	assert.Equal(t, SortDesc, ParseSortOrder("sideways"))
}
