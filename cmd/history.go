package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/internal/iostore"
	"github.com/workpulse/workpulse/internal/outwriter"
	"github.com/workpulse/workpulse/schema"
)

// resolveHistoryBackend resolves the history backend from config, falling
// back to the cache backend when none is set.
func resolveHistoryBackend() (schema.DatabaseBackend, string) {
	backendStr := viper.GetString("history-backend")
	connStr := viper.GetString("history-db-connect")
	if backendStr == "" {
		return schema.DatabaseBackend(viper.GetString("cache-backend")), viper.GetString("cache-db-connect")
	}
	return schema.DatabaseBackend(backendStr), connStr
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr := resolveHistoryBackend()

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.SourceBackend = schema.NoneBackend
	cfg.CacheBackend = schema.NoneBackend
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	cfg.OutputFile = viper.GetString("output-file")

	// Initialize stores with the loaded config (no source or cache access
	// is needed for history commands)
	if err := iostore.InitStores(cfg); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func historyMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr := resolveHistoryBackend()

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr

	return nil
}

// historyMigrateSetupWrapper wraps historyMigrateSetup to provide PreRunE for migrate command.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return historyMigrateSetup()
}

// historyCmd focused on metrics history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead
// of the full sharedSetup used by aggregation commands.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage daily metrics history and exports",
	Long: `Manage the daily metrics history used as the trend baseline.

Every aggregation writes the day's workspace totals into the history table.
Trend percentages compare the current period against these daily rollups.

This also enables longitudinal analysis and data export for BI tools.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  # Check history status
  workpulse history status

  # Export for analysis in pandas/DuckDB
  workpulse history export --output-file history-data.parquet`,
}

// historyClearCmd clears the history data.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all daily metrics history",
	Long: `Delete all stored daily rollups.

WARNING: This action cannot be undone and removes the trend baseline.
Consider exporting data first.

Use this when:
- Resetting trend tracking
- Starting fresh after a source data rewrite
- Testing trend features

Examples:
  # Export before clearing
  workpulse history export --output-file backup.parquet
  workpulse history clear`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ClearHistory(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history data", err)
		}
		fmt.Println("History data cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show detailed information about the daily metrics history.

Displays:
- Backend type and connection status
- Total number of daily rows stored
- Number of distinct workspaces tracked
- First and last recorded dates

Use this to:
- Verify history tracking is enabled and working
- Check how far back the trend baseline reaches
- Estimate storage requirements

Examples:
  # Check history status
  workpulse history status`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iostore.Manager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		if err := outwriter.NewOutWriter().WriteHistoryStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write history status", err)
		}
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export daily metrics history to Parquet for BI tools and analytics",
	Long: `Export all stored daily rollups to Parquet format for use with analytics tools.

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --output-file parameter

Examples:
  # Export all data
  workpulse history export --output-file workpulse-data.parquet

  # Use with DuckDB for analysis
  workpulse history export --output-file data.parquet
  duckdb -c "SELECT * FROM read_parquet('data.parquet.metrics_history.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ExecuteHistoryExport(rootCtx, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history data", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the metrics history store.

Migrations allow:
- Upgrading to new schema versions when Workpulse is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  workpulse history migrate

  # Migrate to specific version
  workpulse history migrate --target-version 1

  # Rollback to initial state
  workpulse history migrate --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iostore.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
