package cmd

import (
	"github.com/spf13/cobra"
	"github.com/workpulse/workpulse/core"
	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/internal/iostore"
)

// metricsCmd aggregates and displays workspace metrics.
var metricsCmd = &cobra.Command{
	Use:   "metrics <workspace-id>",
	Short: "Aggregate contributor and repository metrics for a workspace",
	Long: `Aggregate pull request, issue and contributor activity for every repository
tracked by a workspace over the requested time range.

Results are served from the metrics cache when a fresh snapshot exists.
Stale snapshots are served immediately while a recomputation happens, so
repeated queries stay fast even for large workspaces.

Displays:
- Summary metrics with trend deltas against the previous period
- Top contributors ranked by pull requests, issues and commits
- Per-repository statistics when --repo-stats is set

Examples:
  # Metrics for the last 7 days (default range)
  workpulse metrics acme-platform

  # Monthly view with per-repository breakdown
  workpulse metrics acme-platform --range 30d --repo-stats

  # Bypass the cache entirely
  workpulse metrics acme-platform --force-refresh

  # Machine-readable output
  workpulse metrics acme-platform --output json --output-file metrics.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := contract.ValidateWorkspaceID(cfg.WorkspaceID); err != nil {
			contract.LogFatal("Invalid workspace", err)
		}
		if err := core.ExecuteWorkspaceMetrics(rootCtx, cfg, iostore.Manager); err != nil {
			contract.LogFatal("Cannot aggregate workspace metrics", err)
		}
	},
}

// refreshCmd recomputes one cached snapshot.
var refreshCmd = &cobra.Command{
	Use:   "refresh <workspace-id>",
	Short: "Recompute the cached metrics snapshot for a workspace",
	Long: `Force a recomputation of the cached metrics snapshot for one workspace
and time range, then display the fresh result.

Unlike 'metrics --force-refresh', this command exists for scheduled jobs
that keep caches warm without caring about display options.

Examples:
  # Refresh the weekly snapshot
  workpulse refresh acme-platform

  # Refresh the yearly snapshot
  workpulse refresh acme-platform --range 1y`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := contract.ValidateWorkspaceID(cfg.WorkspaceID); err != nil {
			contract.LogFatal("Invalid workspace", err)
		}
		if err := core.ExecuteForceRefresh(rootCtx, cfg, iostore.Manager); err != nil {
			contract.LogFatal("Cannot refresh workspace metrics", err)
		}
	},
}
