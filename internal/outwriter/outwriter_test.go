package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

func sampleMetrics() *schema.WorkspaceMetrics {
	return &schema.WorkspaceMetrics{
		WorkspaceID: "acme-platform",
		TimeRange:   schema.Range7d,
		PeriodStart: time.Date(2026, 8, 16, 12, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),

		TotalPRs: 12, MergedPRs: 8, OpenPRs: 3, DraftPRs: 1,
		TotalIssues: 6, ClosedIssues: 4, OpenIssues: 2,
		TotalStars: 120, TotalForks: 15, TotalCommits: 90, UniqueContributors: 7,

		AvgPRMergeTimeHours: 18.5, AvgIssueCloseTimeHours: 40.25,
		PRVelocity: 1.5, IssueClosureRate: 66.67,

		Trends: schema.TrendData{Stars: 10, PullRequests: -20, Contributors: 0, Commits: 5, Issues: 100},
		TopContributors: []schema.ContributorStat{
			{Username: "alice", PullRequests: 5, Issues: 2, Commits: 30, Reviews: 4},
			{Username: "bob", PullRequests: 3, Issues: 1, Commits: 20, Reviews: 0},
		},
		ActivityTimeline: []schema.ActivityPoint{
			{Date: "2026-08-16"},
			{Date: "2026-08-17", PullRequests: 2, Commits: 10},
			{Date: "2026-08-18"},
		},
		Languages:    map[string]int{"Go": 2},
		CalculatedAt: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	}
}

// outputToFile runs fn with cfg pointed at a temp file and returns the content.
func outputToFile(t *testing.T, cfg *contract.Config, fn func() error) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out")
	cfg.OutputFile = path
	require.NoError(t, fn())
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestPrintWorkspaceMetricsJSON(t *testing.T) {
	cfg := &contract.Config{Output: schema.JSONOut, Precision: 1}
	metrics := sampleMetrics()

	content := outputToFile(t, cfg, func() error {
		return PrintWorkspaceMetrics(metrics, cfg, time.Second)
	})

	var decoded schema.WorkspaceMetrics
	require.NoError(t, json.Unmarshal([]byte(content), &decoded))
	assert.Equal(t, "acme-platform", decoded.WorkspaceID)
	assert.Equal(t, 12, decoded.TotalPRs)
	assert.Equal(t, -20, decoded.Trends.PullRequests)
	assert.Len(t, decoded.TopContributors, 2)
}

func TestPrintWorkspaceMetricsCSV(t *testing.T) {
	cfg := &contract.Config{Output: schema.CSVOut, Precision: 2}
	metrics := sampleMetrics()

	content := outputToFile(t, cfg, func() error {
		return PrintWorkspaceMetrics(metrics, cfg, time.Second)
	})

	records, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 16, "header plus one row per metric")
	assert.Equal(t, []string{"metric", "value", "trend"}, records[0])
	assert.Equal(t, []string{"total_prs", "12", "-20%"}, records[1])
	assert.Equal(t, []string{"total_stars", "120", "+10%"}, records[8])
	assert.Equal(t, []string{"avg_pr_merge_time_hours", "18.50", ""}, records[12])
}

func TestPrintWorkspaceMetricsText(t *testing.T) {
	cfg := &contract.Config{Output: schema.TextOut, Precision: 1, Width: 120, CacheBackend: schema.SQLiteBackend}
	metrics := sampleMetrics()

	content := outputToFile(t, cfg, func() error {
		return PrintWorkspaceMetrics(metrics, cfg, 2*time.Second)
	})

	assert.Contains(t, content, "Workspace acme-platform over 7d (2026-08-16 to 2026-08-23)")
	assert.Contains(t, content, "Served from fresh computation")
	assert.Contains(t, content, "Top contributors")
	assert.Contains(t, content, "alice")
	assert.Contains(t, content, "Activity on 1 of 3 days in the period")
	assert.Contains(t, content, "Aggregation completed in 2s. Cache backend: sqlite")
	assert.NotContains(t, content, "Repositories\n", "repo table omitted when stats are absent")
}

func TestPrintWorkspaceMetricsTextStaleCacheHit(t *testing.T) {
	cfg := &contract.Config{Output: schema.TextOut, Precision: 1, Width: 120}
	metrics := sampleMetrics()
	metrics.CacheHit = true
	metrics.Stale = true
	metrics.RepositoryStats = []schema.RepositoryStat{
		{RepositoryID: "r1", FullName: "acme/api", Stars: 100, Forks: 10, Language: "Go", PullRequests: 8, MergedPRs: 6, Issues: 4},
	}

	content := outputToFile(t, cfg, func() error {
		return PrintWorkspaceMetrics(metrics, cfg, time.Second)
	})

	assert.Contains(t, content, "Served from cache (stale)")
	assert.Contains(t, content, "acme/api")
}

func TestPrintCacheStatus(t *testing.T) {
	status := schema.CacheStatus{
		Backend: "sqlite", Connected: true,
		TotalEntries: 4, StaleEntries: 1,
		LastCalculated: time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
		OldestExpiry:   time.Date(2026, 8, 23, 11, 0, 0, 0, time.UTC),
		TableSizeBytes: 4096,
	}

	cfg := &contract.Config{Output: schema.TextOut}
	content := outputToFile(t, cfg, func() error { return PrintCacheStatus(status, cfg) })
	assert.Contains(t, content, "Cache backend: sqlite")
	assert.Contains(t, content, "Total entries: 4 (1 stale)")
	assert.Contains(t, content, "Table size: 4.0 KB")

	cfg = &contract.Config{Output: schema.CSVOut}
	content = outputToFile(t, cfg, func() error { return PrintCacheStatus(status, cfg) })
	records, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "sqlite", records[1][0])
	assert.Equal(t, "4", records[1][2])
	assert.Equal(t, "2026-08-23T10:00:00Z", records[1][4])
}

func TestPrintCacheStatusDisconnected(t *testing.T) {
	cfg := &contract.Config{Output: schema.TextOut}
	content := outputToFile(t, cfg, func() error {
		return PrintCacheStatus(schema.CacheStatus{Backend: "none"}, cfg)
	})
	assert.Contains(t, content, "Connected: false")
	assert.NotContains(t, content, "Total entries")
}

func TestPrintHistoryStatus(t *testing.T) {
	status := schema.HistoryStatus{
		Backend: "sqlite", Connected: true,
		TotalRows: 30, Workspaces: 2,
		FirstDate: "2026-07-01", LastDate: "2026-08-23",
	}

	cfg := &contract.Config{Output: schema.TextOut}
	content := outputToFile(t, cfg, func() error { return PrintHistoryStatus(status, cfg) })
	assert.Contains(t, content, "History backend: sqlite")
	assert.Contains(t, content, "Total rows: 30 across 2 workspaces")
	assert.Contains(t, content, "Date range: 2026-07-01 to 2026-08-23")

	cfg = &contract.Config{Output: schema.JSONOut}
	content = outputToFile(t, cfg, func() error { return PrintHistoryStatus(status, cfg) })
	var decoded schema.HistoryStatus
	require.NoError(t, json.Unmarshal([]byte(content), &decoded))
	assert.Equal(t, status, decoded)
}

func TestPrintBackfillStats(t *testing.T) {
	stats := schema.BackfillStats{
		ReposProcessed: 3, PullsFetched: 20, IssuesFetched: 10,
		EventsFetched: 50, RowsInserted: 80, APICalls: 9, Errors: 1,
	}

	cfg := &contract.Config{Output: schema.TextOut}
	content := outputToFile(t, cfg, func() error {
		return PrintBackfillStats(stats, cfg, 3*time.Second)
	})
	assert.Contains(t, content, "Backfill complete in 3s")
	assert.Contains(t, content, "Repositories processed: 3")
	assert.Contains(t, content, "API calls: 9 (1 errors)")
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  int
	}{
		{"narrow clamps to minimum", 50, 15},
		{"standard terminal", 80, 35},
		{"wide clamps to maximum", 200, 50},
		{"exact fit", 65, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width}
			assert.Equal(t, tt.want, GetMaxTableNameWidth(cfg))
		})
	}
}

func TestFormatStatusTime(t *testing.T) {
	assert.Equal(t, "-", formatStatusTime(time.Time{}))
	ts := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-23T10:30:00Z", formatStatusTime(ts))
}

func TestWriteJSONIndents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}
