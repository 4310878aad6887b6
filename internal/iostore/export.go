package iostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/workpulse/workpulse/internal/parquet"
)

// ExecuteHistoryExport performs the actual export of metrics history to a Parquet file.
func ExecuteHistoryExport(ctx context.Context, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Get the history store
	store := Manager.GetHistoryStore()
	if store == nil {
		return errors.New("history store is not configured")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}

	if status.TotalRows == 0 {
		return errors.New("no history data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total history rows: %d\n", status.TotalRows)
	fmt.Printf("Workspaces: %d\n", status.Workspaces)

	// Retrieve all history rows
	rows, err := store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve history rows: %w", err)
	}

	// Convert and write to Parquet
	records := parquet.ConvertHistoryRows(rows)
	historyFile := outputFile + ".metrics_history.parquet"
	if err := parquet.WriteHistoryParquet(records, historyFile); err != nil {
		return fmt.Errorf("failed to write history rows: %w", err)
	}
	fmt.Printf("Exported %d history rows to: %s\n", len(records), historyFile)

	fmt.Println("\nExport complete! The Parquet file can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
