package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/workpulse/workpulse/core"
	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/internal/iostore"
	"github.com/workpulse/workpulse/internal/outwriter"
	"github.com/workpulse/workpulse/schema"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	cfg.SourceBackend = schema.NoneBackend
	cfg.HistoryBackend = schema.NoneBackend
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	cfg.OutputFile = viper.GetString("output-file")

	// Initialize stores with the loaded config (no source or history access
	// is needed for cache commands)
	if err := iostore.InitStores(cfg); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on metrics cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by aggregation commands. This avoids source store
// setup and complex config processing for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the workspace metrics cache (improves performance)",
	Long: `Manage the metrics cache that speeds up repeated aggregations.

Workpulse caches computed workspace snapshots per time range so repeated
queries skip the expensive per-repository aggregation. Stale snapshots are
still served while a recomputation runs in the foreground.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status     - Show cache statistics and connection info
  clear      - Remove all cached data
  invalidate - Mark one workspace's snapshots as stale

Examples:
  # Check cache status
  workpulse cache status

  # Mark snapshots stale after a backfill
  workpulse cache invalidate acme-platform`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached workspace snapshots",
	Long: `Delete all cached metrics snapshots from the configured backend.

Use this when:
- Source data was rewritten or re-ingested from scratch
- Cache may be stale or corrupted
- Testing aggregation performance without cache

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  workpulse cache clear

  # Clear MySQL cache (set connection string via env variable)
  WORKPULSE_CACHE_BACKEND=mysql WORKPULSE_CACHE_DB_CONNECT="..." workpulse cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ClearCache(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the workspace metrics cache.

Displays:
- Backend type and connection status
- Total and stale snapshot counts
- Last calculation and oldest expiry timestamps
- Cache table size

Use this to:
- Verify the cache is working and connected
- Monitor how many snapshots have gone stale
- Debug cache-related issues

Examples:
  # Check cache status
  workpulse cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iostore.Manager.GetCacheStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		if err := outwriter.NewOutWriter().WriteCacheStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write cache status", err)
		}
	},
}

// cacheInvalidateCmd marks a workspace's snapshots as stale.
var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <workspace-id>",
	Short: "Mark every cached snapshot for a workspace as stale",
	Long: `Flag all cached snapshots for one workspace as stale without deleting them.

Stale snapshots are still served on the next query while a fresh
computation replaces them, so invalidation never causes a latency spike.

Use this after ingesting new source data (for example after a backfill)
so the next query picks up the new rows.

Examples:
  # Invalidate after a backfill
  workpulse backfill acme-platform
  workpulse cache invalidate acme-platform`,
	Args:    cobra.ExactArgs(1),
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		cfg.WorkspaceID = args[0]
		if err := contract.ValidateWorkspaceID(cfg.WorkspaceID); err != nil {
			contract.LogFatal("Invalid workspace", err)
		}
		if err := core.ExecuteInvalidateCache(rootCtx, cfg, iostore.Manager); err != nil {
			contract.LogFatal("Failed to invalidate cache", err)
		}
	},
}
