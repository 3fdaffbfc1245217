//go:build integration

package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// setupPostgres returns a migrated pool. TEST_DB_DSN points the tests at an existing database.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image: "postgres:15",
				Env: map[string]string{
					"POSTGRES_PASSWORD": "test",
					"POSTGRES_USER":     "test",
					"POSTGRES_DB":       "helpdesk",
				},
				ExposedPorts: []string{"5432/tcp"},
				WaitingFor: wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60 * time.Second),
			},
			Started: true,
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = pg.Terminate(ctx) })

		host, err := pg.Host(ctx)
		require.NoError(t, err)
		port, err := pg.MappedPort(ctx, "5432")
		require.NoError(t, err)
		dsn = fmt.Sprintf("postgres://test:test@%s:%s/helpdesk?sslmode=disable", host, port.Port())
	}

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))
	_, err = pool.Exec(ctx, `TRUNCATE tickets`)
	require.NoError(t, err)
	return pool
}

func TestPostgresRepositoryRoundTrip(t *testing.T) {
	repo := NewTicketRepository(setupPostgres(t))
	ctx := context.Background()

	created := seedTicket(t, repo, 1, domain.TicketStatusPending, "VPN drops (office)")
	seedTicket(t, repo, 2, domain.TicketStatusResolved, "Password reset")

	got, err := repo.GetByTicketID(ctx, created.TicketID)
	require.NoError(t, err)
	assert.Equal(t, created.Subject, got.Subject)
	assert.Equal(t, 1, got.Version)
	require.Len(t, got.AuditTrail, 1)
	assert.NotNil(t, got.Documents)

	dup := *got
	dup.SrNo = 99
	assert.ErrorIs(t, repo.Create(ctx, &dup), ErrDuplicate)

	_, err = repo.GetByTicketID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepositoryUpdateChecksVersion(t *testing.T) {
	repo := NewTicketRepository(setupPostgres(t))
	ctx := context.Background()
	ticket := seedTicket(t, repo, 1, domain.TicketStatusPending, "first")

	a, err := repo.GetByTicketID(ctx, ticket.TicketID)
	require.NoError(t, err)
	b, err := repo.GetByTicketID(ctx, ticket.TicketID)
	require.NoError(t, err)

	a.Status = domain.TicketStatusResolved
	require.NoError(t, repo.Update(ctx, a))
	assert.Equal(t, 2, a.Version)

	b.Status = domain.TicketStatusClarificationSought
	assert.ErrorIs(t, repo.Update(ctx, b), ErrVersionConflict)
}

func TestPostgresRepositoryFilters(t *testing.T) {
	repo := NewTicketRepository(setupPostgres(t))
	ctx := context.Background()
	seedTicket(t, repo, 1, domain.TicketStatusPending, "VPN drops (office)")
	seedTicket(t, repo, 2, domain.TicketStatusResolved, "Password reset")
	seedTicket(t, repo, 3, domain.TicketStatusPending, "Printer jammed")

	term := "(office"
	count, err := repo.Count(ctx, TicketFilter{SearchTerm: &term})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	rows, err := repo.ListWithFilter(ctx, TicketFilter{
		Statuses:  []domain.TicketStatus{domain.TicketStatusPending},
		SortField: "srNo",
		SortOrder: SortAsc,
		Limit:     10,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].SrNo)
	assert.Equal(t, int64(3), rows[1].SrNo)

	byStatus, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byStatus[domain.TicketStatusPending])

	maxSr, err := repo.MaxSrNo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), maxSr)
}

func TestPostgresRepositoryTrimStatusWhitespace(t *testing.T) {
	pool := setupPostgres(t)
	repo := NewTicketRepository(pool)
	ctx := context.Background()
	ticket := seedTicket(t, repo, 1, domain.TicketStatusPending, "first")

	_, err := pool.Exec(ctx, `UPDATE tickets SET status = ' Pending ' WHERE ticket_id = $1`, ticket.TicketID)
	require.NoError(t, err)

	fixed, err := repo.TrimStatusWhitespace(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fixed)

	got, err := repo.GetByTicketID(ctx, ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPending, got.Status)
}
