package iostore

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetSourceStore implements the StoreManager interface.
func (m *MockStoreManager) GetSourceStore() contract.SourceStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SourceStore)
	return store
}

// GetCacheStore implements the StoreManager interface.
func (m *MockStoreManager) GetCacheStore() contract.MetricsCacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.MetricsCacheStore)
	return store
}

// GetHistoryStore implements the StoreManager interface.
func (m *MockStoreManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockSourceStore is a mock implementation of SourceStore for testing.
type MockSourceStore struct {
	mock.Mock
}

var _ contract.SourceStore = &MockSourceStore{} // Compile-time check

// ListWorkspaceRepositories implements the SourceStore interface.
func (m *MockSourceStore) ListWorkspaceRepositories(ctx context.Context, workspaceID string) ([]schema.Repository, error) {
	args := m.Called(ctx, workspaceID)
	repos, _ := args.Get(0).([]schema.Repository)
	return repos, args.Error(1)
}

// ListPullRequests implements the SourceStore interface.
func (m *MockSourceStore) ListPullRequests(ctx context.Context, repositoryID string, start, end time.Time) ([]schema.PullRequest, error) {
	args := m.Called(ctx, repositoryID, start, end)
	prs, _ := args.Get(0).([]schema.PullRequest)
	return prs, args.Error(1)
}

// ListIssues implements the SourceStore interface.
func (m *MockSourceStore) ListIssues(ctx context.Context, repositoryID string, start, end time.Time) ([]schema.Issue, error) {
	args := m.Called(ctx, repositoryID, start, end)
	issues, _ := args.Get(0).([]schema.Issue)
	return issues, args.Error(1)
}

// ListContributorEvents implements the SourceStore interface.
func (m *MockSourceStore) ListContributorEvents(ctx context.Context, repositoryID string, start, end time.Time) ([]schema.ContributorEvent, error) {
	args := m.Called(ctx, repositoryID, start, end)
	events, _ := args.Get(0).([]schema.ContributorEvent)
	return events, args.Error(1)
}

// UpsertRepository implements the SourceStore interface.
func (m *MockSourceStore) UpsertRepository(ctx context.Context, workspaceID string, repo schema.Repository) error {
	args := m.Called(ctx, workspaceID, repo)
	return args.Error(0)
}

// InsertPullRequests implements the SourceStore interface.
func (m *MockSourceStore) InsertPullRequests(ctx context.Context, prs []schema.PullRequest) (int, error) {
	args := m.Called(ctx, prs)
	return args.Int(0), args.Error(1)
}

// InsertIssues implements the SourceStore interface.
func (m *MockSourceStore) InsertIssues(ctx context.Context, issues []schema.Issue) (int, error) {
	args := m.Called(ctx, issues)
	return args.Int(0), args.Error(1)
}

// InsertEvents implements the SourceStore interface.
func (m *MockSourceStore) InsertEvents(ctx context.Context, events []schema.ContributorEvent) (int, error) {
	args := m.Called(ctx, events)
	return args.Int(0), args.Error(1)
}

// GetStatus implements the SourceStore interface.
func (m *MockSourceStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the SourceStore interface.
func (m *MockSourceStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockCacheStore is a mock implementation of MetricsCacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.MetricsCacheStore = &MockCacheStore{} // Compile-time check

// Get implements the MetricsCacheStore interface.
func (m *MockCacheStore) Get(ctx context.Context, workspaceID string, timeRange schema.TimeRange) (*schema.CachedMetrics, error) {
	args := m.Called(ctx, workspaceID, timeRange)
	cached, _ := args.Get(0).(*schema.CachedMetrics)
	return cached, args.Error(1)
}

// Upsert implements the MetricsCacheStore interface.
func (m *MockCacheStore) Upsert(ctx context.Context, cached *schema.CachedMetrics) error {
	args := m.Called(ctx, cached)
	return args.Error(0)
}

// MarkStale implements the MetricsCacheStore interface.
func (m *MockCacheStore) MarkStale(ctx context.Context, workspaceID string, timeRange schema.TimeRange) error {
	args := m.Called(ctx, workspaceID, timeRange)
	return args.Error(0)
}

// MarkAllStale implements the MetricsCacheStore interface.
func (m *MockCacheStore) MarkAllStale(ctx context.Context, workspaceID string) error {
	args := m.Called(ctx, workspaceID)
	return args.Error(0)
}

// Delete implements the MetricsCacheStore interface.
func (m *MockCacheStore) Delete(ctx context.Context, workspaceID string) error {
	args := m.Called(ctx, workspaceID)
	return args.Error(0)
}

// GetStatus implements the MetricsCacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the MetricsCacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// UpsertDaily implements the HistoryStore interface.
func (m *MockHistoryStore) UpsertDaily(ctx context.Context, row schema.HistoryRow) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

// SumWindow implements the HistoryStore interface.
func (m *MockHistoryStore) SumWindow(ctx context.Context, workspaceID string, start, end time.Time) (*schema.HistoryBaseline, error) {
	args := m.Called(ctx, workspaceID, start, end)
	baseline, _ := args.Get(0).(*schema.HistoryBaseline)
	return baseline, args.Error(1)
}

// GetAll implements the HistoryStore interface.
func (m *MockHistoryStore) GetAll(ctx context.Context) ([]schema.HistoryRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]schema.HistoryRow)
	return rows, args.Error(1)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
