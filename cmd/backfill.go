package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/internal/ghapi"
	"github.com/workpulse/workpulse/internal/iostore"
	"github.com/workpulse/workpulse/internal/outwriter"
)

// backfillCmd ingests GitHub activity into the source store.
var backfillCmd = &cobra.Command{
	Use:   "backfill <workspace-id>",
	Short: "Ingest GitHub activity for a workspace into the source store",
	Long: `Fetch pull requests, issues and contributor events from the GitHub API
for every repository tracked by a workspace and load them into the source
store.

The backfill walks repositories one at a time with delays between pages
and repositories to stay within API rate limits. Per-repository failures
are logged and counted; the run continues with the remaining repositories.

Authentication uses --github-token, WORKPULSE_GITHUB_TOKEN or GITHUB_TOKEN.
Anonymous access works but has a far lower rate limit.

After a backfill, invalidate the cache so the next query sees the new rows:
  workpulse cache invalidate <workspace-id>

Examples:
  # Backfill the default 30 days
  workpulse backfill acme-platform

  # Backfill a full quarter
  workpulse backfill acme-platform --backfill-days 90`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := contract.ValidateWorkspaceID(cfg.WorkspaceID); err != nil {
			contract.LogFatal("Invalid workspace", err)
		}

		token := cfg.GitHubToken
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}

		start := time.Now()
		backfill := ghapi.NewBackfill(ghapi.NewClient(token), iostore.Manager.GetSourceStore(), cfg.BackfillDays)
		stats, err := backfill.Run(rootCtx, cfg.WorkspaceID)
		if err != nil {
			contract.LogFatal("Backfill failed", err)
		}

		if err := outwriter.NewOutWriter().WriteBackfillStats(stats, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Failed to write backfill stats", err)
		}
	},
}
