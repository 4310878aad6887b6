package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

// PrintCacheStatus outputs metrics cache status, dispatching based on the
// output format configured.
func PrintCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"backend", "connected", "total_entries", "stale_entries", "last_calculated", "oldest_expiry", "table_size_bytes"}
			return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
				return csvWriter.Write([]string{
					status.Backend,
					strconv.FormatBool(status.Connected),
					strconv.Itoa(status.TotalEntries),
					strconv.Itoa(status.StaleEntries),
					formatStatusTime(status.LastCalculated),
					formatStatusTime(status.OldestExpiry),
					strconv.FormatInt(status.TableSizeBytes, 10),
				})
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCacheStatusText(w, status)
		}, "Wrote text")
	}
}

// writeCacheStatusText displays cache status in human-readable text format.
func writeCacheStatusText(w io.Writer, status schema.CacheStatus) error {
	if _, err := fmt.Fprintf(w, "Cache backend: %s\n", status.Backend); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Connected: %t\n", status.Connected); err != nil {
		return err
	}
	if !status.Connected {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Total entries: %d (%d stale)\n", status.TotalEntries, status.StaleEntries); err != nil {
		return err
	}
	if status.TotalEntries == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Last calculated: %s\n", formatStatusTime(status.LastCalculated)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Oldest expiry: %s\n", formatStatusTime(status.OldestExpiry)); err != nil {
		return err
	}
	if status.TableSizeBytes > 0 {
		if _, err := fmt.Fprintf(w, "Table size: %.1f KB\n", float64(status.TableSizeBytes)/1024.0); err != nil {
			return err
		}
	}
	return nil
}

// PrintHistoryStatus outputs metrics history status, dispatching based on the
// output format configured.
func PrintHistoryStatus(status schema.HistoryStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"backend", "connected", "total_rows", "workspaces", "first_date", "last_date"}
			return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
				return csvWriter.Write([]string{
					status.Backend,
					strconv.FormatBool(status.Connected),
					strconv.Itoa(status.TotalRows),
					strconv.Itoa(status.Workspaces),
					status.FirstDate,
					status.LastDate,
				})
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryStatusText(w, status)
		}, "Wrote text")
	}
}

// writeHistoryStatusText displays history status in human-readable text format.
func writeHistoryStatusText(w io.Writer, status schema.HistoryStatus) error {
	if _, err := fmt.Fprintf(w, "History backend: %s\n", status.Backend); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Connected: %t\n", status.Connected); err != nil {
		return err
	}
	if !status.Connected {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Total rows: %d across %d workspaces\n", status.TotalRows, status.Workspaces); err != nil {
		return err
	}
	if status.TotalRows > 0 {
		if _, err := fmt.Fprintf(w, "Date range: %s to %s\n", status.FirstDate, status.LastDate); err != nil {
			return err
		}
	}
	return nil
}

// PrintBackfillStats outputs a summary of one backfill run.
func PrintBackfillStats(stats schema.BackfillStats, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, stats)
		}, "Wrote JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if _, err := fmt.Fprintf(w, "Backfill complete in %v\n", duration); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "Repositories processed: %d\n", stats.ReposProcessed); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "Pull requests fetched: %d\n", stats.PullsFetched); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "Issues fetched: %d\n", stats.IssuesFetched); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "Events fetched: %d\n", stats.EventsFetched); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "Rows inserted: %d\n", stats.RowsInserted); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "API calls: %d (%d errors)\n", stats.APICalls, stats.Errors); err != nil {
				return err
			}
			return nil
		}, "Wrote text")
	}
}

// formatStatusTime renders a status timestamp, with a dash for the zero value.
func formatStatusTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
