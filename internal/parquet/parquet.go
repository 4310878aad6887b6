// Package parquet provides data structures and functions for exporting
// workspace metrics history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/workpulse/workpulse/schema"
)

// HistoryRecord represents one daily metrics rollup for a workspace.
// This struct maps to the workspace_metrics_history database table.
type HistoryRecord struct {
	// WorkspaceID identifies the workspace the rollup belongs to
	WorkspaceID string `parquet:"workspace_id,snappy"`

	// Date is the rollup day in YYYY-MM-DD form
	Date string `parquet:"date,snappy"`

	// Stars is the star total across all workspace repositories on that day
	Stars int32 `parquet:"stars,snappy"`

	// PullRequests is the pull request total for the aggregation period
	PullRequests int32 `parquet:"pull_requests,snappy"`

	// Contributors is the unique contributor count for the aggregation period
	Contributors int32 `parquet:"contributors,snappy"`

	// Commits is the commit total for the aggregation period
	Commits int32 `parquet:"commits,snappy"`

	// Issues is the issue total for the aggregation period
	Issues int32 `parquet:"issues,snappy"`

	// RecordedAt is when the rollup row was written (stored as TIMESTAMP with nanosecond precision)
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
}

// WriteHistoryParquet writes a slice of HistoryRecord structs to a Parquet file.
func WriteHistoryParquet(data []HistoryRecord, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the HistoryRecord struct tags
	writer := parquet.NewGenericWriter[HistoryRecord](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertHistoryRows converts schema.HistoryRow to HistoryRecord for Parquet export.
func ConvertHistoryRows(rows []schema.HistoryRow) []HistoryRecord {
	result := make([]HistoryRecord, len(rows))
	for i, row := range rows {
		result[i] = HistoryRecord{
			WorkspaceID:  row.WorkspaceID,
			Date:         row.Date,
			Stars:        int32(row.Stars),
			PullRequests: int32(row.PullRequests),
			Contributors: int32(row.Contributors),
			Commits:      int32(row.Commits),
			Issues:       int32(row.Issues),
			RecordedAt:   row.RecordedAt,
		}
	}
	return result
}
