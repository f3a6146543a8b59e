package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbPath     string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "steelpath",
		Short: "SteelPath - Steel plant decarbonization pathway simulator",
		Long: `SteelPath simulates annual technology-switching decisions for a fleet of
steel plants along a decarbonization pathway.

Each simulated year, plants whose investment cycle permits a switch rank
their candidate technologies by total cost of ownership and emissions
abatement, subject to shared resource constraints (biomass, scrap, CCS,
CO2 utilisation), technology availability windows, and Rego adoption
policies. Decisions, constraint audits, and cycle schedules are persisted
to SQLite for later inspection.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "steelpath.db", "SQLite database path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newBatchCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newRunsCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newPoliciesCommand())

	return rootCmd
}
