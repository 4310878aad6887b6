// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteMetrics prints aggregated workspace metrics using the configured output format.
func (ow *OutWriter) WriteMetrics(metrics *schema.WorkspaceMetrics, cfg *contract.Config, duration time.Duration) error {
	return PrintWorkspaceMetrics(metrics, cfg, duration)
}

// WriteCacheStatus prints metrics cache status using the configured output format.
func (ow *OutWriter) WriteCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	return PrintCacheStatus(status, cfg)
}

// WriteHistoryStatus prints metrics history status using the configured output format.
func (ow *OutWriter) WriteHistoryStatus(status schema.HistoryStatus, cfg *contract.Config) error {
	return PrintHistoryStatus(status, cfg)
}

// WriteBackfillStats prints a summary of one backfill run.
func (ow *OutWriter) WriteBackfillStats(stats schema.BackfillStats, cfg *contract.Config, duration time.Duration) error {
	return PrintBackfillStats(stats, cfg, duration)
}

// GetMaxTableNameWidth calculates the maximum width for contributor and
// repository names in table output based on terminal width.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for rank plus four count columns with borders and padding
	baseWidth := 45

	// Calculate available space for the name column
	available := termWidth - baseWidth
	if available < 15 {
		// Minimum reasonable name width
		return 15
	}
	if available > 50 {
		// Maximum name width to prevent overly wide tables
		return 50
	}
	return available
}
