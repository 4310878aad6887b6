// Package main provides a performance benchmarking tool for the Workpulse CLI.
// It measures aggregation times across workspaces and time ranges, running each
// test multiple times, treating the first successful run as cold and averaging
// the rest as warm, generating CSV output for performance analysis.
//
// Prerequisites:
// - workpulse binary installed and available in PATH
// - A source database seeded with the listed workspaces (e.g. via backfill)
//
// Usage: go run benchmark/main.go [workspace-id ...]
//
//	workspace-id: One or more workspace identifiers to benchmark
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Workspace   string
	TimeRange   string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Workspaces  []string
	TimeRanges  []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s [workspace-id ...]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Workspaces:  os.Args[1:],
		TimeRanges:  []string{"7d", "30d", "90d"},
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the cache using workpulse cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("workpulse", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the workpulse binary exists
func checkPrerequisites() error {
	if _, err := exec.LookPath("workpulse"); err != nil {
		return fmt.Errorf("workpulse binary not found in PATH")
	}
	return nil
}

// runBenchmarks executes all benchmark tests across configured workspaces
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d workspaces, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Workspaces), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, workspace := range config.Workspaces {
		fmt.Printf("Benchmarking %s\n", workspace)

		for _, timeRange := range config.TimeRanges {
			result := runBenchmarkSuite(config, workspace, timeRange)
			results = append(results, result)
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one workspace and range
func runBenchmarkSuite(config BenchmarkConfig, workspace, timeRange string) BenchmarkResult {
	fmt.Printf("Running %s aggregation on %s\n", timeRange, workspace)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, workspace, timeRange, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Workspace:   workspace,
		TimeRange:   timeRange,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a workpulse command multiple times with the specified
// cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, workspace, timeRange, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{"metrics", workspace, "--range", timeRange, "--cache-backend", cacheBackend}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("workpulse", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Aggregation completed in") &&
		strings.Contains(outputStr, "Cache backend:")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/workpulse_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"workspace", "range", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Workspace, result.TimeRange, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, result := range results {
		fmt.Printf("  %-20s %-4s: No-cache: %s, Cold: %s, Warm: %s\n",
			result.Workspace, result.TimeRange, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}

	fmt.Printf("Benchmark script completed successfully\n")
}
