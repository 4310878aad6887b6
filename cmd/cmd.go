// Package cmd defines the command-line interface for workpulse.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("range", "r", string(schema.Range7d), "Time range: 7d, 30d, 90d, 1y or all")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("batch-size", contract.DefaultBatchSize, "Number of repositories fetched concurrently")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("source-backend", string(schema.SQLiteBackend), "Source data backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("source-db-connect", "", "Database connection string for source data (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Metrics cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for the metrics cache")
	rootCmd.PersistentFlags().String("history-backend", "", "History backend: sqlite or mysql or postgresql or none (defaults to cache backend)")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for the metrics history")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of metricsCmd to Viper
	metricsCmd.Flags().Bool("force-refresh", false, "Bypass the cache and recompute metrics")
	metricsCmd.Flags().Bool("repo-stats", false, "Include per-repository statistics")
	if err := viper.BindPFlags(metricsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding metrics flags", err)
	}

	// Bind all flags of backfillCmd to Viper
	backfillCmd.Flags().String("github-token", "", "GitHub API token (falls back to GITHUB_TOKEN)")
	backfillCmd.Flags().Int("backfill-days", contract.DefaultBackfillDays, "Number of days of history to backfill (max 365)")
	if err := viper.BindPFlags(backfillCmd.Flags()); err != nil {
		contract.LogFatal("Error binding backfill flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
