package core

import (
	"context"
	"fmt"
	"time"

	"github.com/workpulse/workpulse/core/agg"
	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

// Options control a single aggregation call.
type Options struct {
	TimeRange              schema.TimeRange
	ForceRefresh           bool
	IncludeRepositoryStats bool
}

// AggregationService runs the workspace metrics pipeline against injected
// stores. The pipeline is a single request/response computation with an
// external read-through/write-through cache; the service itself holds no
// persistent state.
type AggregationService struct {
	source  contract.SourceStore
	cache   contract.MetricsCacheStore
	history contract.HistoryStore

	batchSize int
	now       func() time.Time
}

// NewAggregationService wires the pipeline to its stores. Cache and history
// may be nil (disabled backends); the source store is required.
func NewAggregationService(source contract.SourceStore, cache contract.MetricsCacheStore, history contract.HistoryStore) *AggregationService {
	return &AggregationService{
		source:    source,
		cache:     cache,
		history:   history,
		batchSize: schema.AggregationBatchSize,
		now:       time.Now,
	}
}

// SetBatchSize overrides the repository fetch batch size. Values below 1
// are ignored.
func (s *AggregationService) SetBatchSize(n int) {
	if n >= 1 {
		s.batchSize = n
	}
}

// AggregateWorkspaceMetrics computes (or serves from cache) the metrics for
// one workspace and time range.
//
// Failure taxonomy: a workspace repository lookup failure aborts the call;
// per-data-kind fetch failures degrade to zero counts for that kind; cache
// and history write failures are logged only. Callers always receive a
// well-formed metrics object except when the lookup itself fails.
func (s *AggregationService) AggregateWorkspaceMetrics(ctx context.Context, workspaceID string, opts Options) (*schema.WorkspaceMetrics, error) {
	if err := contract.ValidateWorkspaceID(workspaceID); err != nil {
		return nil, err
	}
	timeRange := opts.TimeRange
	if _, ok := schema.ValidTimeRanges[timeRange]; !ok {
		timeRange = schema.Range30d
	}
	now := s.now()

	// Serve from cache unless the caller demands a recompute. Expired rows
	// come back flagged stale; serving them anyway is the
	// stale-while-revalidate policy.
	if s.cache != nil && !opts.ForceRefresh {
		if cached := getCachedMetrics(ctx, s.cache, workspaceID, timeRange, now); cached != nil {
			m := cached.Metrics
			m.CacheHit = true
			m.Stale = cached.IsStale
			return &m, nil
		}
	}

	// No repositories means no possible result, so this failure is fatal.
	repos, err := s.source.ListWorkspaceRepositories(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace repositories: %w", err)
	}

	period := CalculatePeriod(timeRange, now)

	// A workspace with zero tracked repositories is not an error: return a
	// well-formed zero-valued result without touching cache or history.
	if len(repos) == 0 {
		return NewWorkspaceMetricsBuilder(workspaceID, timeRange, period, agg.NewAccumulator()).
			ApplyTotals().
			ApplyDerivedRates().
			ApplyTopContributors().
			ApplyTimeline().
			ApplyTrends(nil).
			Build(now), nil
	}

	acc := agg.AggregateRepositories(ctx, s.source, repos, period.Start, period.End, s.batchSize, opts.IncludeRepositoryStats)

	var baseline *schema.HistoryBaseline
	if s.history != nil {
		baseline = loadBaseline(ctx, s.history, workspaceID, period)
	}

	metrics := NewWorkspaceMetricsBuilder(workspaceID, timeRange, period, acc).
		ApplyTotals().
		ApplyDerivedRates().
		ApplyTopContributors().
		ApplyTimeline().
		ApplyTrends(baseline).
		Build(now)

	if s.cache != nil {
		saveToCache(ctx, s.cache, metrics, now)
	}
	if s.history != nil {
		updateHistory(ctx, s.history, metrics, now)
	}

	return metrics, nil
}

// InvalidateCache flags every cached snapshot for the workspace as stale.
// External ingestion calls this when new source data lands; the rows stay
// servable until the next forced refresh overwrites them.
func (s *AggregationService) InvalidateCache(ctx context.Context, workspaceID string) error {
	if err := contract.ValidateWorkspaceID(workspaceID); err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.MarkAllStale(ctx, workspaceID)
}

// ForceRefresh recomputes the metrics for one (workspace, range), bypassing
// and then overwriting the cache.
func (s *AggregationService) ForceRefresh(ctx context.Context, workspaceID string, timeRange schema.TimeRange) (*schema.WorkspaceMetrics, error) {
	return s.AggregateWorkspaceMetrics(ctx, workspaceID, Options{
		TimeRange:    timeRange,
		ForceRefresh: true,
	})
}
