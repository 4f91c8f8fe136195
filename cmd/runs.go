package cmd

import (
	"fmt"

	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/internal/iocache"
	"github.com/huangsam/hoc/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsCmd focused on run history management.
//
// Note: Runs subcommands never open a repository; they only need the
// analysis-backend settings.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the hits-of-code run history",
	Long: `Manage the run history recorded by hoc.

When analysis-backend is set, every hoc invocation records:
- Run metadata (repository, HEAD, rename detection, timestamps, duration)
- Summary counters (commits, merges, files changed, insertions, deletions)
- The stats of every commit visited

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show run history statistics
  list    - Show recent runs
  export  - Export data to Parquet for analytics
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Record runs in ~/.hoc_runs.db
  HOC_ANALYSIS_BACKEND=sqlite hoc

  # Show the last runs
  HOC_ANALYSIS_BACKEND=sqlite hocctl runs list --limit 5`,
}

// runsStatusCmd shows run history status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show detailed information about the run history store.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Database table sizes

Examples:
  hocctl runs status`,
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store := storeManager.GetRunStore()
		if store == nil {
			return fmt.Errorf("run history store is not initialized")
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get run status: %w", err)
		}
		iocache.PrintRunStatus(cmd.OutOrStdout(), status)
		return nil
	},
}

// runsListCmd prints recent runs.
var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recent runs",
	Long: `List recent runs, newest first.

Output formats: table (default), json, csv.

Examples:
  hocctl runs list --limit 5
  hocctl runs list --output csv --output-file runs.csv`,
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := requireRunStore()
		if err != nil {
			return err
		}
		runs, err := store.GetRecentRuns(cfg.ResultLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		return outwriter.WriteRuns(runs, cfg)
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored run data to Parquet format for use with analytics tools.

Exports two datasets named after the --output-file prefix:
- <prefix>.runs.parquet - one row per run
- <prefix>.commit_stats.parquet - one row per commit visited by a run

Requires: --output-file parameter

Examples:
  hocctl runs export --output-file hoc-data
  duckdb -c "SELECT SUM(total_hits) FROM read_parquet('hoc-data.runs.parquet')"`,
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := requireRunStore()
		if err != nil {
			return err
		}
		return iocache.ExecuteRunsExport(store, cfg.OutputFile, cmd.OutOrStdout())
	},
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded run history",
	Long: `Delete all stored runs and commit stats.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the run tables

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  hocctl runs export --output-file backup
  hocctl runs clear`,
	PreRunE: configSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// A custom sqlite connection string is the database file itself
		if err := iocache.ClearRuns(cfg.AnalysisBackend, cfg.AnalysisDBConnect, cfg.AnalysisDBConnect); err != nil {
			return fmt.Errorf("failed to clear run history: %w", err)
		}
		cmd.Println("Run history cleared successfully.")
		return nil
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  hocctl runs migrate

  # Rollback to initial state
  hocctl runs migrate --target-version 0`,
	PreRunE: configSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.AnalysisBackend, cfg.AnalysisDBConnect, targetVersion, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	},
}

// bindRunsFlags registers the runs flags and binds them to Viper.
func bindRunsFlags() {
	runsCmd.PersistentFlags().String("output-file", "", "Optional path to write output to (a file prefix for export)")
	if err := viper.BindPFlags(runsCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding runs flags", err)
	}

	runsListCmd.Flags().IntP("limit", "l", contract.DefaultResultLimit, "Number of runs to display")
	runsListCmd.Flags().String("output", "table", "Output format: table or json or csv")
	runsListCmd.Flags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	if err := viper.BindPFlags(runsListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs list flags", err)
	}

	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
