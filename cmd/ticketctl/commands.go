package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/bootstrap"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Postgres schema migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPostgres(cmd.Context(), persistence.RunMigrations)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPostgres(cmd.Context(), persistence.RollbackMigration)
			},
		},
	)
	return cmd
}

func newSeedCommand() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create sample tickets through the lifecycle operations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				ids, err := seedTickets(ctx, c.Tickets, count)
				if err != nil {
					return err
				}
				c.Logger.Info("seeded tickets", zap.Int("count", len(ids)), zap.Strings("ticket_ids", ids))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "Number of tickets to create")
	return cmd
}

func newCleanupStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-status",
		Short: "Trim whitespace from stored ticket status values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				fixed, err := c.Queries.CleanupStatusWhitespace(ctx)
				if err != nil {
					return err
				}
				c.Logger.Info("status cleanup finished", zap.Int64("tickets_updated", fixed))
				return nil
			})
		},
	}
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print ticket counts per status as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				stats, err := c.Queries.Stats(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			})
		},
	}
}

func loadEnv() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func withContainer(ctx context.Context, fn func(context.Context, *bootstrap.Container) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	c, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}

func withPostgres(ctx context.Context, fn func(context.Context, *pgxpool.Pool, *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()
	if pg.PoolHandle() == nil {
		return fmt.Errorf("POSTGRES_DSN is required for migrations")
	}
	return fn(ctx, pg.PoolHandle(), logger)
}
