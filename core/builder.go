package core

import (
	"math"
	"sort"
	"time"

	"github.com/workpulse/workpulse/core/agg"
	"github.com/workpulse/workpulse/schema"
)

// WorkspaceMetricsBuilder assembles the final metrics object from an
// aggregation accumulator and a trend baseline.
type WorkspaceMetricsBuilder struct {
	acc    *agg.Accumulator
	period Period
	result *schema.WorkspaceMetrics
}

// NewWorkspaceMetricsBuilder is the starting point for building workspace metrics.
func NewWorkspaceMetricsBuilder(workspaceID string, timeRange schema.TimeRange, period Period, acc *agg.Accumulator) *WorkspaceMetricsBuilder {
	return &WorkspaceMetricsBuilder{
		acc:    acc,
		period: period,
		result: &schema.WorkspaceMetrics{
			WorkspaceID: workspaceID,
			TimeRange:   timeRange,
			PeriodStart: period.Start,
			PeriodEnd:   period.End,
			Languages:   make(map[string]int),
		},
	}
}

// ApplyTotals copies the raw counters from the accumulator.
func (b *WorkspaceMetricsBuilder) ApplyTotals() *WorkspaceMetricsBuilder {
	m := b.result
	m.TotalPRs = b.acc.TotalPRs
	m.MergedPRs = b.acc.MergedPRs
	m.OpenPRs = b.acc.OpenPRs
	m.DraftPRs = b.acc.DraftPRs

	m.TotalIssues = b.acc.TotalIssues
	m.ClosedIssues = b.acc.ClosedIssues
	m.OpenIssues = b.acc.OpenIssues

	m.TotalStars = b.acc.TotalStars
	m.TotalForks = b.acc.TotalForks
	m.TotalCommits = b.acc.TotalCommits
	m.UniqueContributors = len(b.acc.Contributors)

	for lang, count := range b.acc.Languages {
		m.Languages[lang] = count
	}
	m.RepositoryStats = b.acc.RepoStats
	return b
}

// ApplyDerivedRates computes the averaged and rate-based fields.
func (b *WorkspaceMetricsBuilder) ApplyDerivedRates() *WorkspaceMetricsBuilder {
	m := b.result
	m.AvgPRMergeTimeHours = meanHours(b.acc.MergeDurations)
	m.AvgIssueCloseTimeHours = meanHours(b.acc.CloseDurations)

	// Days() is floored at 1 so a sub-day period never divides by zero.
	m.PRVelocity = float64(m.TotalPRs) / float64(b.period.Days())

	if m.TotalIssues > 0 {
		m.IssueClosureRate = math.Round(float64(m.ClosedIssues)/float64(m.TotalIssues)*10000) / 100
	}
	return b
}

// ApplyTopContributors ranks contributors descending by PR + issue + commit
// activity and truncates to the configured limit.
func (b *WorkspaceMetricsBuilder) ApplyTopContributors() *WorkspaceMetricsBuilder {
	ranked := make([]schema.ContributorStat, 0, len(b.acc.Contributors))
	for _, c := range b.acc.Contributors {
		ranked = append(ranked, *c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		ti, tj := ranked[i].ActivityTotal(), ranked[j].ActivityTotal()
		if ti != tj {
			return ti > tj
		}
		return ranked[i].Username < ranked[j].Username // stable order for ties
	})
	if len(ranked) > schema.TopContributorLimit {
		ranked = ranked[:schema.TopContributorLimit]
	}
	b.result.TopContributors = ranked
	return b
}

// ApplyTimeline produces one entry per calendar day in the period. Days with
// no recorded entries default to zero activity; the series is dense and
// gap-filled, never sparse.
func (b *WorkspaceMetricsBuilder) ApplyTimeline() *WorkspaceMetricsBuilder {
	var timeline []schema.ActivityPoint
	b.period.EachDay(func(date string) {
		if p, ok := b.acc.Daily[date]; ok {
			timeline = append(timeline, *p)
		} else {
			timeline = append(timeline, schema.ActivityPoint{Date: date})
		}
	})
	b.result.ActivityTimeline = timeline
	return b
}

// ApplyTrends attaches percentage deltas against the historical baseline.
func (b *WorkspaceMetricsBuilder) ApplyTrends(baseline *schema.HistoryBaseline) *WorkspaceMetricsBuilder {
	b.result.Trends = calculateTrends(b.result, baseline)
	return b
}

// Build stamps the calculation time and returns the finished metrics.
func (b *WorkspaceMetricsBuilder) Build(now time.Time) *schema.WorkspaceMetrics {
	b.result.CalculatedAt = now.UTC()
	return b.result
}

// meanHours averages a duration sample, returning 0 for an empty sample.
func meanHours(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}
