// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/workpulse/workpulse/schema"
)

// SourceStore defines read access to the workspace source tables and the
// write half used by backfill ingestion. This allows the core aggregation
// logic to be tested without a real database.
type SourceStore interface {
	// --- Read path (aggregation) ---

	// ListWorkspaceRepositories resolves the set of repositories tracked by
	// a workspace via the join table. A failure here is fatal to the whole
	// aggregation call; an empty result is not an error.
	ListWorkspaceRepositories(ctx context.Context, workspaceID string) ([]schema.Repository, error)

	// ListPullRequests returns pull requests created within [start, end) for one repository.
	ListPullRequests(ctx context.Context, repositoryID string, start, end time.Time) ([]schema.PullRequest, error)

	// ListIssues returns issues created within [start, end) for one repository.
	ListIssues(ctx context.Context, repositoryID string, start, end time.Time) ([]schema.Issue, error)

	// ListContributorEvents returns commit and review events within [start, end) for one repository.
	ListContributorEvents(ctx context.Context, repositoryID string, start, end time.Time) ([]schema.ContributorEvent, error)

	// --- Write path (backfill) ---

	// UpsertRepository inserts or updates one repository row and its workspace membership.
	UpsertRepository(ctx context.Context, workspaceID string, repo schema.Repository) error

	// InsertPullRequests inserts pull request rows, replacing rows with the same ID.
	InsertPullRequests(ctx context.Context, prs []schema.PullRequest) (int, error)

	// InsertIssues inserts issue rows, replacing rows with the same ID.
	InsertIssues(ctx context.Context, issues []schema.Issue) (int, error)

	// InsertEvents inserts contributor event rows.
	InsertEvents(ctx context.Context, events []schema.ContributorEvent) (int, error)

	// GetStatus returns basic connectivity information about the source store.
	GetStatus() (schema.CacheStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// MetricsCacheStore defines storage for computed metrics snapshots, keyed by
// (workspace_id, time_range) with at most one row per key. Writes are
// upserts with last-write-wins semantics; two overlapping aggregations for
// the same key may overwrite each other and that race is accepted.
type MetricsCacheStore interface {
	// Get returns the snapshot for the key, or nil when none exists.
	// Expired rows are still returned; staleness handling is the caller's job.
	Get(ctx context.Context, workspaceID string, timeRange schema.TimeRange) (*schema.CachedMetrics, error)

	// Upsert writes the snapshot, replacing any row with the same key.
	Upsert(ctx context.Context, cached *schema.CachedMetrics) error

	// MarkStale flags the row for one (workspace, range) key as stale.
	MarkStale(ctx context.Context, workspaceID string, timeRange schema.TimeRange) error

	// MarkAllStale flags every cached row for the workspace as stale. This
	// backs cache invalidation when new source data lands.
	MarkAllStale(ctx context.Context, workspaceID string) error

	// Delete removes every cached row for the workspace.
	Delete(ctx context.Context, workspaceID string) error

	// GetStatus returns status information about the cache store.
	GetStatus() (schema.CacheStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// HistoryStore defines storage for the append-only daily rollup table used
// as the trend baseline.
type HistoryStore interface {
	// UpsertDaily writes the day's totals for a workspace. Repeated calls on
	// the same date overwrite the earlier row, making the updater idempotent.
	UpsertDaily(ctx context.Context, row schema.HistoryRow) error

	// SumWindow sums daily rows with date in [start, end) for the workspace.
	// It returns nil when no rows fall inside the window.
	SumWindow(ctx context.Context, workspaceID string, start, end time.Time) (*schema.HistoryBaseline, error)

	// GetAll returns every history row, ordered by workspace then date.
	// Used by the parquet export.
	GetAll(ctx context.Context) ([]schema.HistoryRow, error)

	// GetStatus returns status information about the history store.
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// StoreManager defines the interface for accessing the configured stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetSourceStore() SourceStore
	GetCacheStore() MetricsCacheStore
	GetHistoryStore() HistoryStore
}
