package core

import (
	"context"
	"time"

	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

// loadBaseline sums the daily history rows over the prior window of equal
// length. Nil means no history exists yet and trends fall back to the
// zero-baseline rule; a read failure degrades the same way.
func loadBaseline(ctx context.Context, history contract.HistoryStore, workspaceID string, period Period) *schema.HistoryBaseline {
	prior := period.PriorWindow()
	baseline, err := history.SumWindow(ctx, workspaceID, prior.Start, prior.End)
	if err != nil {
		contract.LogWarn("Failed to load history baseline", err)
		return nil
	}
	return baseline
}

// updateHistory appends today's rollup for future trend comparisons. The
// upsert on (workspace_id, date) makes repeated same-day calls idempotent.
// A write failure is logged, not raised.
func updateHistory(ctx context.Context, history contract.HistoryStore, m *schema.WorkspaceMetrics, now time.Time) {
	row := schema.HistoryRow{
		WorkspaceID:  m.WorkspaceID,
		Date:         now.UTC().Format(contract.DateOnlyFormat),
		Stars:        m.TotalStars,
		PullRequests: m.TotalPRs,
		Contributors: m.UniqueContributors,
		Commits:      m.TotalCommits,
		Issues:       m.TotalIssues,
		RecordedAt:   now.UTC(),
	}
	if err := history.UpsertDaily(ctx, row); err != nil {
		contract.LogWarn("Failed to update metrics history", err)
	}
}
