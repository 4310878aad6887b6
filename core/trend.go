package core

import (
	"math"

	"github.com/workpulse/workpulse/schema"
)

// percentChange computes the rounded percentage delta between a current and
// previous value. A zero previous value cannot divide, so "went from nothing
// to something" counts as a full positive trend and "stayed at nothing" is flat.
func percentChange(current, previous int) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(current-previous) / float64(previous) * 100))
}

// calculateTrends compares current totals against the historical baseline.
// A nil baseline means no history rows exist for the prior window; every
// trend then collapses to the zero-baseline case.
func calculateTrends(m *schema.WorkspaceMetrics, baseline *schema.HistoryBaseline) schema.TrendData {
	if baseline == nil {
		baseline = &schema.HistoryBaseline{}
	}
	return schema.TrendData{
		Stars:        percentChange(m.TotalStars, baseline.Stars),
		PullRequests: percentChange(m.TotalPRs, baseline.PullRequests),
		Contributors: percentChange(m.UniqueContributors, baseline.Contributors),
		Commits:      percentChange(m.TotalCommits, baseline.Commits),
		Issues:       percentChange(m.TotalIssues, baseline.Issues),
	}
}
