package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ticketctl",
		Short:        "Operator tooling for the helpdesk ticket service",
		Long:         `ticketctl manages the ticket store: schema migrations, sample data, status cleanup and statistics.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newMigrateCommand(),
		newSeedCommand(),
		newCleanupStatusCommand(),
		newStatsCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
