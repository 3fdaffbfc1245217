package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

func memoryConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "helpdesk-service", Timezone: "UTC"},
		Store:  config.StoreConfig{Driver: config.StoreDriverMemory},
		Redis:  config.RedisConfig{KeyPrefix: "test:"},
		Upload: config.UploadConfig{MaxFileBytes: 1024, MaxFiles: 2, URLPrefix: "/uploads"},
	}
}

func createTicket(t *testing.T, c *Container) *domain.Ticket {
	t.Helper()
	ticket, err := c.Tickets.CreateTicket(context.Background(), service.CreateTicketInput{
		Category:    domain.CategoryTechnical,
		SubCategory: "SFTP",
		Subject:     "x",
		Description: "y",
	})
	require.NoError(t, err)
	return ticket
}

func TestNewWiresMemoryStore(t *testing.T) {
	c, err := New(context.Background(), memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Postgres)
	assert.Nil(t, c.Mongo)
	assert.False(t, c.Redis.Enabled())

	ticket := createTicket(t, c)
	assert.Equal(t, "7654567897", ticket.TicketID)

	_, err = c.Tickets.ResolveTicket(context.Background(), ticket.TicketID, domain.StatusChange{})
	require.NoError(t, err)

	stats, err := c.Queries.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ByStatus["resolved"])
	assert.Equal(t, int64(1), c.Metrics.Snapshot().Operations["update_status|ok"])
}

func TestNewUsesRedisWhenConfigured(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.Redis.Addr = mr.Addr()

	c, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	require.True(t, c.Redis.Enabled())
	first := createTicket(t, c)
	second := createTicket(t, c)
	assert.Equal(t, "7654567897", first.TicketID)
	assert.Equal(t, "7654567898", second.TicketID)

	counter, err := mr.Get("test:seq:sr_no")
	require.NoError(t, err)
	assert.Equal(t, "2", counter)
}

func TestCloseIsIdempotent(t *testing.T) {
	c, err := New(context.Background(), memoryConfig(), zap.NewNop())
	require.NoError(t, err)

	c.Close()
	assert.NotPanics(t, c.Close)
}
