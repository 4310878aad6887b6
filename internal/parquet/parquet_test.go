package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse/schema"
)

func TestConvertHistoryRows(t *testing.T) {
	recorded := time.Date(2026, 8, 23, 6, 0, 0, 0, time.UTC)
	rows := []schema.HistoryRow{
		{WorkspaceID: "acme", Date: "2026-08-22", Stars: 120, PullRequests: 8,
			Contributors: 5, Commits: 40, Issues: 3, RecordedAt: recorded},
		{WorkspaceID: "other", Date: "2026-08-22"},
	}

	records := ConvertHistoryRows(rows)
	require.Len(t, records, 2)
	assert.Equal(t, "acme", records[0].WorkspaceID)
	assert.Equal(t, int32(120), records[0].Stars)
	assert.Equal(t, int32(8), records[0].PullRequests)
	assert.Equal(t, recorded, records[0].RecordedAt)
	assert.Equal(t, int32(0), records[1].Commits)

	assert.Empty(t, ConvertHistoryRows(nil))
}

func TestWriteHistoryParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.parquet")
	records := []HistoryRecord{
		{WorkspaceID: "acme", Date: "2026-08-21", Stars: 100, PullRequests: 5,
			Contributors: 4, Commits: 30, Issues: 2,
			RecordedAt: time.Date(2026, 8, 21, 6, 0, 0, 0, time.UTC)},
		{WorkspaceID: "acme", Date: "2026-08-22", Stars: 101, PullRequests: 7,
			Contributors: 5, Commits: 35, Issues: 1,
			RecordedAt: time.Date(2026, 8, 22, 6, 0, 0, 0, time.UTC)},
	}

	require.NoError(t, WriteHistoryParquet(records, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	got, err := parquet.Read[HistoryRecord](file, mustSize(t, file))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[0].WorkspaceID, got[0].WorkspaceID)
	assert.Equal(t, records[1].PullRequests, got[1].PullRequests)
	assert.True(t, records[0].RecordedAt.Equal(got[0].RecordedAt))
}

func TestWriteHistoryParquetBadPath(t *testing.T) {
	err := WriteHistoryParquet(nil, filepath.Join(t.TempDir(), "missing", "history.parquet"))
	assert.Error(t, err)
}

func mustSize(t *testing.T, f *os.File) int64 {
	t.Helper()
	info, err := f.Stat()
	require.NoError(t, err)
	return info.Size()
}
