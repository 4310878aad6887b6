package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Trend label constants.
const (
	RisingValue  = "Rising"  // Positive trend
	FallingValue = "Falling" // Negative trend
	FlatValue    = "Flat"    // No movement
)

// Color variables for console output.
var (
	RisingColor  = color.New(color.FgGreen, color.Bold) // risingColor marks growth.
	FallingColor = color.New(color.FgRed, color.Bold)   // fallingColor marks decline.
	FlatColor    = color.New(color.FgCyan)              // flatColor is informational.
)

// GetPlainTrendLabel returns a plain text label for a trend percentage.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainTrendLabel(pct int) string {
	switch {
	case pct > 0:
		return RisingValue
	case pct < 0:
		return FallingValue
	default:
		return FlatValue
	}
}

// GetColorTrendLabel returns a colored text label for console output (table).
// It uses GetPlainTrendLabel to determine the string, and then applies the
// appropriate color.
func GetColorTrendLabel(pct int) string {
	text := GetPlainTrendLabel(pct)

	switch text {
	case RisingValue:
		return RisingColor.Sprint(text)
	case FallingValue:
		return FallingColor.Sprint(text)
	default: // "Flat"
		return FlatColor.Sprint(text)
	}
}

// FormatTrendPercent renders a trend percentage with an explicit sign.
func FormatTrendPercent(pct int) string {
	if pct > 0 {
		return fmt.Sprintf("+%d%%", pct)
	}
	return fmt.Sprintf("%d%%", pct)
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the metrics cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".workpulse_cache.db"
	}
	return filepath.Join(homeDir, ".workpulse_cache.db")
}

// GetSourceDBFilePath returns the path to the SQLite DB file for source data.
func GetSourceDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".workpulse_source.db"
	}
	return filepath.Join(homeDir, ".workpulse_source.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for metrics history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".workpulse_history.db"
	}
	return filepath.Join(homeDir, ".workpulse_history.db")
}

// TruncateName truncates a name to a maximum width with ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one
// character of content.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
