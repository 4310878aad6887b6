package core

import (
	"context"
	"time"

	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

// getCachedMetrics retrieves the snapshot for (workspace, range), or nil on
// a miss. A snapshot past its expiry is flagged stale in storage and still
// returned, so callers can serve it while deciding to revalidate.
func getCachedMetrics(ctx context.Context, cache contract.MetricsCacheStore, workspaceID string, timeRange schema.TimeRange, now time.Time) *schema.CachedMetrics {
	cached, err := cache.Get(ctx, workspaceID, timeRange)
	if err != nil {
		contract.LogWarn("Failed to read metrics cache", err)
		return nil
	}
	if cached == nil {
		return nil
	}

	if cached.Expired(now) && !cached.IsStale {
		cached.IsStale = true
		if err := cache.MarkStale(ctx, workspaceID, timeRange); err != nil {
			contract.LogWarn("Failed to mark cache entry stale", err)
		}
	}
	return cached
}

// saveToCache upserts a freshly computed snapshot. The expiry is range
// dependent. A write failure is logged and swallowed: the caller already
// holds the metrics and a cache problem must not abort the result.
func saveToCache(ctx context.Context, cache contract.MetricsCacheStore, metrics *schema.WorkspaceMetrics, now time.Time) {
	cached := &schema.CachedMetrics{
		WorkspaceID:  metrics.WorkspaceID,
		TimeRange:    metrics.TimeRange,
		PeriodStart:  metrics.PeriodStart,
		PeriodEnd:    metrics.PeriodEnd,
		Metrics:      *metrics,
		CalculatedAt: now.UTC(),
		ExpiresAt:    now.UTC().Add(metrics.TimeRange.CacheTTL()),
		IsStale:      false,
	}
	if err := cache.Upsert(ctx, cached); err != nil {
		contract.LogWarn("Failed to write metrics cache", err)
	}
}
