package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse/internal/iostore"
	"github.com/workpulse/workpulse/schema"
)

var fixedNow = time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

func TestAggregateRejectsInvalidWorkspace(t *testing.T) {
	svc := NewAggregationService(&iostore.MockSourceStore{}, nil, nil)

	_, err := svc.AggregateWorkspaceMetrics(context.Background(), "   ", Options{TimeRange: schema.Range7d})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace id is required")
}

func TestAggregateZeroRepositories(t *testing.T) {
	source := &iostore.MockSourceStore{}
	source.On("ListWorkspaceRepositories", mock.Anything, "acme").Return([]schema.Repository{}, nil)

	svc := NewAggregationService(source, nil, nil)
	svc.now = func() time.Time { return fixedNow }

	m, err := svc.AggregateWorkspaceMetrics(context.Background(), "acme", Options{TimeRange: schema.Range7d})
	require.NoError(t, err)

	assert.Equal(t, "acme", m.WorkspaceID)
	assert.Equal(t, schema.Range7d, m.TimeRange)
	assert.Zero(t, m.TotalPRs)
	assert.Zero(t, m.UniqueContributors)
	assert.NotNil(t, m.Languages)
	assert.Len(t, m.ActivityTimeline, 8, "seven days back plus today, inclusive")
	assert.False(t, m.CacheHit)
	source.AssertExpectations(t)
}

func TestAggregateLookupFailureIsFatal(t *testing.T) {
	source := &iostore.MockSourceStore{}
	source.On("ListWorkspaceRepositories", mock.Anything, "acme").Return(nil, errors.New("connection refused"))

	svc := NewAggregationService(source, nil, nil)

	_, err := svc.AggregateWorkspaceMetrics(context.Background(), "acme", Options{TimeRange: schema.Range7d})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list workspace repositories")
}

func TestAggregateInvalidRangeFallsBackTo30d(t *testing.T) {
	source := &iostore.MockSourceStore{}
	source.On("ListWorkspaceRepositories", mock.Anything, "acme").Return([]schema.Repository{}, nil)

	svc := NewAggregationService(source, nil, nil)
	svc.now = func() time.Time { return fixedNow }

	m, err := svc.AggregateWorkspaceMetrics(context.Background(), "acme", Options{TimeRange: "2w"})
	require.NoError(t, err)
	assert.Equal(t, schema.Range30d, m.TimeRange)
}

func TestAggregateComputesAndCachesThenServesFromCache(t *testing.T) {
	ctx := context.Background()
	repo := schema.Repository{ID: "r1", FullName: "acme/api", Stars: 50, Forks: 5, PrimaryLanguage: "Go"}

	merged := fixedNow.Add(-24 * time.Hour)
	prs := []schema.PullRequest{
		{ID: "pr1", RepositoryID: "r1", State: "closed", Author: "alice", CreatedAt: fixedNow.Add(-48 * time.Hour), MergedAt: &merged},
		{ID: "pr2", RepositoryID: "r1", State: "open", Author: "bob", CreatedAt: fixedNow.Add(-30 * time.Hour)},
	}
	issues := []schema.Issue{
		{ID: "is1", RepositoryID: "r1", State: "open", Author: "alice", CreatedAt: fixedNow.Add(-20 * time.Hour)},
	}
	events := []schema.ContributorEvent{
		{RepositoryID: "r1", Username: "alice", Kind: schema.CommitEvent, OccurredAt: fixedNow.Add(-10 * time.Hour)},
		{RepositoryID: "r1", Username: "bob", Kind: schema.ReviewEvent, OccurredAt: fixedNow.Add(-9 * time.Hour)},
	}

	source := &iostore.MockSourceStore{}
	source.On("ListWorkspaceRepositories", mock.Anything, "acme").Return([]schema.Repository{repo}, nil).Once()
	source.On("ListPullRequests", mock.Anything, "r1", mock.Anything, mock.Anything).Return(prs, nil)
	source.On("ListIssues", mock.Anything, "r1", mock.Anything, mock.Anything).Return(issues, nil)
	source.On("ListContributorEvents", mock.Anything, "r1", mock.Anything, mock.Anything).Return(events, nil)

	cache := &iostore.MockCacheStore{}
	cache.On("Get", mock.Anything, "acme", schema.Range7d).Return(nil, nil).Once()

	var saved *schema.CachedMetrics
	cache.On("Upsert", mock.Anything, mock.AnythingOfType("*schema.CachedMetrics")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*schema.CachedMetrics) }).
		Return(nil).Once()

	history := &iostore.MockHistoryStore{}
	history.On("SumWindow", mock.Anything, "acme", mock.Anything, mock.Anything).Return(nil, nil)
	history.On("UpsertDaily", mock.Anything, mock.AnythingOfType("schema.HistoryRow")).Return(nil)

	svc := NewAggregationService(source, cache, history)
	svc.now = func() time.Time { return fixedNow }

	// First call computes and persists.
	m, err := svc.AggregateWorkspaceMetrics(ctx, "acme", Options{TimeRange: schema.Range7d})
	require.NoError(t, err)
	assert.False(t, m.CacheHit)
	assert.Equal(t, 2, m.TotalPRs)
	assert.Equal(t, 1, m.MergedPRs)
	assert.Equal(t, 1, m.OpenPRs)
	assert.Equal(t, 1, m.TotalIssues)
	assert.Equal(t, 1, m.TotalCommits)
	assert.Equal(t, 2, m.UniqueContributors)
	assert.Equal(t, 50, m.TotalStars)
	assert.InDelta(t, 24.0, m.AvgPRMergeTimeHours, 1e-9)

	require.NotNil(t, saved)
	assert.Equal(t, fixedNow.Add(schema.Range7d.CacheTTL()), saved.ExpiresAt)
	assert.False(t, saved.IsStale)

	// Second call is served from the cache without touching the source.
	cache.On("Get", mock.Anything, "acme", schema.Range7d).Return(saved, nil).Once()

	m2, err := svc.AggregateWorkspaceMetrics(ctx, "acme", Options{TimeRange: schema.Range7d})
	require.NoError(t, err)
	assert.True(t, m2.CacheHit)
	assert.False(t, m2.Stale)
	assert.Equal(t, m.TotalPRs, m2.TotalPRs)
	source.AssertNumberOfCalls(t, "ListWorkspaceRepositories", 1)
}

func TestAggregateServesExpiredSnapshotAsStale(t *testing.T) {
	cached := &schema.CachedMetrics{
		WorkspaceID:  "acme",
		TimeRange:    schema.Range7d,
		Metrics:      schema.WorkspaceMetrics{WorkspaceID: "acme", TimeRange: schema.Range7d, TotalPRs: 9},
		CalculatedAt: fixedNow.Add(-time.Hour),
		ExpiresAt:    fixedNow.Add(-30 * time.Minute),
		IsStale:      false,
	}

	cache := &iostore.MockCacheStore{}
	cache.On("Get", mock.Anything, "acme", schema.Range7d).Return(cached, nil)
	cache.On("MarkStale", mock.Anything, "acme", schema.Range7d).Return(nil)

	source := &iostore.MockSourceStore{}

	svc := NewAggregationService(source, cache, nil)
	svc.now = func() time.Time { return fixedNow }

	m, err := svc.AggregateWorkspaceMetrics(context.Background(), "acme", Options{TimeRange: schema.Range7d})
	require.NoError(t, err)
	assert.True(t, m.CacheHit)
	assert.True(t, m.Stale)
	assert.Equal(t, 9, m.TotalPRs)

	cache.AssertCalled(t, "MarkStale", mock.Anything, "acme", schema.Range7d)
	source.AssertNotCalled(t, "ListWorkspaceRepositories", mock.Anything, mock.Anything)
}

func TestForceRefreshBypassesCacheRead(t *testing.T) {
	source := &iostore.MockSourceStore{}
	source.On("ListWorkspaceRepositories", mock.Anything, "acme").Return([]schema.Repository{}, nil)

	cache := &iostore.MockCacheStore{}

	svc := NewAggregationService(source, cache, nil)
	svc.now = func() time.Time { return fixedNow }

	_, err := svc.ForceRefresh(context.Background(), "acme", schema.Range7d)
	require.NoError(t, err)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestAggregateSwallowsCacheWriteFailure(t *testing.T) {
	repo := schema.Repository{ID: "r1", FullName: "acme/api"}
	source := &iostore.MockSourceStore{}
	source.On("ListWorkspaceRepositories", mock.Anything, "acme").Return([]schema.Repository{repo}, nil)
	source.On("ListPullRequests", mock.Anything, "r1", mock.Anything, mock.Anything).Return(nil, nil)
	source.On("ListIssues", mock.Anything, "r1", mock.Anything, mock.Anything).Return(nil, nil)
	source.On("ListContributorEvents", mock.Anything, "r1", mock.Anything, mock.Anything).Return(nil, nil)

	cache := &iostore.MockCacheStore{}
	cache.On("Get", mock.Anything, "acme", schema.Range7d).Return(nil, nil)
	cache.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := NewAggregationService(source, cache, nil)
	svc.now = func() time.Time { return fixedNow }

	m, err := svc.AggregateWorkspaceMetrics(context.Background(), "acme", Options{TimeRange: schema.Range7d})
	require.NoError(t, err, "a cache write failure must not abort the result")
	assert.NotNil(t, m)
}

func TestInvalidateCache(t *testing.T) {
	cache := &iostore.MockCacheStore{}
	cache.On("MarkAllStale", mock.Anything, "acme").Return(nil)

	svc := NewAggregationService(&iostore.MockSourceStore{}, cache, nil)
	require.NoError(t, svc.InvalidateCache(context.Background(), "acme"))
	cache.AssertExpectations(t)

	// Disabled cache is a no-op, not an error.
	svcNoCache := NewAggregationService(&iostore.MockSourceStore{}, nil, nil)
	require.NoError(t, svcNoCache.InvalidateCache(context.Background(), "acme"))

	require.Error(t, svc.InvalidateCache(context.Background(), " "))
}
