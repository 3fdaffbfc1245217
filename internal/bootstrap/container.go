package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/upload"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

// Container holds the wired services shared by the HTTP server and the operator CLI.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Postgres   *persistence.Postgres
	Mongo      *persistence.Mongo
	Redis      *persistence.Redis
	Repo       repository.TicketRepository
	Dispatcher events.Dispatcher
	Tickets    *service.TicketService
	Queries    *service.QueryService
	Uploads    *upload.Resolver

	closers []func()
}

// New connects the configured store, Redis and Kafka and builds the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    observability.NewMetrics(),
		Dispatcher: events.NewInMemoryDispatcher(),
		Uploads:    upload.NewResolver(cfg.Upload),
	}

	if err := c.openStore(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.Redis = persistence.NewRedis(cfg.Redis, logger)
	c.closers = append(c.closers, c.Redis.Close)

	var (
		sequencer service.Sequencer
		locker    service.Locker
	)
	if c.Redis.Enabled() {
		sequencer = persistence.NewRedisSequencer(c.Redis.Client, c.Redis.KeyPrefix, c.Repo)
		locker = persistence.NewRedisLocker(c.Redis.Client, c.Redis.KeyPrefix, cfg.Lifecycle.LockTTL(), cfg.Lifecycle.LockWait())
	}

	var sink *events.KafkaSink
	if cfg.Kafka.Enabled() {
		var err error
		sink, err = events.NewKafkaSink(cfg.Kafka, logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.closers = append(c.closers, sink.Close)
		logger.Info("publishing lifecycle events to kafka", zap.String("topic", cfg.Kafka.AuditTopic))
	}
	worker.StartEventWorkers(c.Dispatcher, service.NewActivityLogger(c.Dispatcher, logger), sink)

	location := cfg.App.Location()
	c.Tickets = service.NewTicketService(service.TicketDependencies{
		TicketRepo: c.Repo,
		Sequencer:  sequencer,
		Locker:     locker,
		Dispatcher: c.Dispatcher,
		Recorder:   c.Metrics,
		Logger:     logger,
		Location:   location,
	})
	c.Queries = service.NewQueryService(c.Repo, nil, location)
	return c, nil
}

func (c *Container) openStore(ctx context.Context) error {
	cfg := c.Config
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, c.Logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		c.Postgres = pg
		c.closers = append(c.closers, pg.Close)
		if pg.PoolHandle() == nil {
			return fmt.Errorf("store driver %q requires POSTGRES_DSN", cfg.Store.Driver)
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), c.Logger); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		c.Repo = repository.NewTicketRepository(pg.PoolHandle())
	case config.StoreDriverMongo:
		m, err := persistence.NewMongo(ctx, cfg.Mongo, c.Logger)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		c.Mongo = m
		c.closers = append(c.closers, m.Close)
		if err := repository.EnsureTicketIndexes(ctx, m.Database); err != nil {
			return fmt.Errorf("ensure mongo indexes: %w", err)
		}
		c.Repo = repository.NewMongoTicketRepository(m.Database)
	default:
		c.Logger.Warn("using in-memory ticket store; data is lost on restart")
		c.Repo = repository.NewMemoryTicketRepository()
	}
	c.Logger.Info("ticket store ready", zap.String("driver", cfg.Store.Driver))
	return nil
}

// Close releases connections in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
