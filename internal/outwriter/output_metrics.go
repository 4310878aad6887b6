package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintWorkspaceMetrics outputs the aggregated metrics, dispatching based on
// the output format configured.
func PrintWorkspaceMetrics(metrics *schema.WorkspaceMetrics, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeMetricsJSONResults(metrics, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeMetricsCSVResults(metrics, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable text with tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsText(metrics, cfg, fmtFloat, duration, w)
		}, "Wrote text")
	}
	return nil
}

// writeMetricsJSONResults handles opening the file and calling the JSON writer.
func writeMetricsJSONResults(metrics *schema.WorkspaceMetrics, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, metrics)
	}, "Wrote JSON")
}

// writeMetricsCSVResults handles opening the file and calling the CSV writer.
func writeMetricsCSVResults(metrics *schema.WorkspaceMetrics, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{"metric", "value", "trend"}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			return writeCSVRowsForMetrics(csvWriter, metrics, fmtFloat, intFmt)
		})
	}, "Wrote CSV")
}

// writeCSVRowsForMetrics writes one row per metric with its trend where one exists.
func writeCSVRowsForMetrics(w *csv.Writer, m *schema.WorkspaceMetrics, fmtFloat func(float64) string, intFmt string) error {
	records := [][]string{
		{"total_prs", fmt.Sprintf(intFmt, m.TotalPRs), contract.FormatTrendPercent(m.Trends.PullRequests)},
		{"merged_prs", fmt.Sprintf(intFmt, m.MergedPRs), ""},
		{"open_prs", fmt.Sprintf(intFmt, m.OpenPRs), ""},
		{"draft_prs", fmt.Sprintf(intFmt, m.DraftPRs), ""},
		{"total_issues", fmt.Sprintf(intFmt, m.TotalIssues), contract.FormatTrendPercent(m.Trends.Issues)},
		{"closed_issues", fmt.Sprintf(intFmt, m.ClosedIssues), ""},
		{"open_issues", fmt.Sprintf(intFmt, m.OpenIssues), ""},
		{"total_stars", fmt.Sprintf(intFmt, m.TotalStars), contract.FormatTrendPercent(m.Trends.Stars)},
		{"total_forks", fmt.Sprintf(intFmt, m.TotalForks), ""},
		{"total_commits", fmt.Sprintf(intFmt, m.TotalCommits), contract.FormatTrendPercent(m.Trends.Commits)},
		{"unique_contributors", fmt.Sprintf(intFmt, m.UniqueContributors), contract.FormatTrendPercent(m.Trends.Contributors)},
		{"avg_pr_merge_time_hours", fmtFloat(m.AvgPRMergeTimeHours), ""},
		{"avg_issue_close_time_hours", fmtFloat(m.AvgIssueCloseTimeHours), ""},
		{"pr_velocity", fmtFloat(m.PRVelocity), ""},
		{"issue_closure_rate", fmtFloat(m.IssueClosureRate), ""},
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeMetricsText generates and writes the human-readable report.
func writeMetricsText(m *schema.WorkspaceMetrics, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	trendLabel := contract.GetPlainTrendLabel
	if cfg.UseColors {
		trendLabel = contract.GetColorTrendLabel
	}

	servedFrom := "fresh computation"
	if m.CacheHit {
		servedFrom = "cache"
		if m.Stale {
			servedFrom = "cache (stale)"
		}
	}

	if _, err := fmt.Fprintf(writer, "Workspace %s over %s (%s to %s)\n",
		m.WorkspaceID, m.TimeRange,
		m.PeriodStart.Format(contract.DateOnlyFormat),
		m.PeriodEnd.Format(contract.DateOnlyFormat)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Served from %s, calculated at %s\n\n",
		servedFrom, m.CalculatedAt.Format(time.RFC3339)); err != nil {
		return err
	}

	if err := writeSummaryTable(m, trendLabel, writer); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "\nAvg PR merge time: %s hours | Avg issue close time: %s hours\n",
		fmtFloat(m.AvgPRMergeTimeHours), fmtFloat(m.AvgIssueCloseTimeHours)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "PR velocity: %s per day | Issue closure rate: %s%%\n",
		fmtFloat(m.PRVelocity), fmtFloat(m.IssueClosureRate)); err != nil {
		return err
	}

	if len(m.TopContributors) > 0 {
		if _, err := fmt.Fprintf(writer, "\nTop contributors\n"); err != nil {
			return err
		}
		if err := writeContributorTable(m.TopContributors, cfg, writer); err != nil {
			return err
		}
	}

	if len(m.RepositoryStats) > 0 {
		if _, err := fmt.Fprintf(writer, "\nRepositories\n"); err != nil {
			return err
		}
		if err := writeRepositoryTable(m.RepositoryStats, cfg, writer); err != nil {
			return err
		}
	}

	activeDays := 0
	for _, p := range m.ActivityTimeline {
		if p.PullRequests > 0 || p.Issues > 0 || p.Commits > 0 {
			activeDays++
		}
	}
	if _, err := fmt.Fprintf(writer, "\nActivity on %d of %d days in the period\n",
		activeDays, len(m.ActivityTimeline)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Aggregation completed in %v. Cache backend: %s\n",
		duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeSummaryTable renders the headline totals with their trend labels.
func writeSummaryTable(m *schema.WorkspaceMetrics, trendLabel func(int) string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Metric", "Value", "Trend", "Signal"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := [][]string{
		{"Pull requests", strconv.Itoa(m.TotalPRs), contract.FormatTrendPercent(m.Trends.PullRequests), trendLabel(m.Trends.PullRequests)},
		{"Merged PRs", strconv.Itoa(m.MergedPRs), "", ""},
		{"Open PRs", strconv.Itoa(m.OpenPRs), "", ""},
		{"Draft PRs", strconv.Itoa(m.DraftPRs), "", ""},
		{"Issues", strconv.Itoa(m.TotalIssues), contract.FormatTrendPercent(m.Trends.Issues), trendLabel(m.Trends.Issues)},
		{"Closed issues", strconv.Itoa(m.ClosedIssues), "", ""},
		{"Stars", strconv.Itoa(m.TotalStars), contract.FormatTrendPercent(m.Trends.Stars), trendLabel(m.Trends.Stars)},
		{"Forks", strconv.Itoa(m.TotalForks), "", ""},
		{"Commits", strconv.Itoa(m.TotalCommits), contract.FormatTrendPercent(m.Trends.Commits), trendLabel(m.Trends.Commits)},
		{"Contributors", strconv.Itoa(m.UniqueContributors), contract.FormatTrendPercent(m.Trends.Contributors), trendLabel(m.Trends.Contributors)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeContributorTable renders the ranked top-contributor list.
func writeContributorTable(contributors []schema.ContributorStat, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Rank", "Username", "PRs", "Issues", "Commits", "Reviews", "Total"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for i, c := range contributors {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateName(c.Username, maxWidth),
			strconv.Itoa(c.PullRequests),
			strconv.Itoa(c.Issues),
			strconv.Itoa(c.Commits),
			strconv.Itoa(c.Reviews),
			strconv.Itoa(c.ActivityTotal()),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeRepositoryTable renders per-repository counters.
func writeRepositoryTable(stats []schema.RepositoryStat, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Repository", "Stars", "Forks", "Language", "PRs", "Merged", "Issues"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, rs := range stats {
		data = append(data, []string{
			contract.TruncateName(rs.FullName, maxWidth),
			strconv.Itoa(rs.Stars),
			strconv.Itoa(rs.Forks),
			rs.Language,
			strconv.Itoa(rs.PullRequests),
			strconv.Itoa(rs.MergedPRs),
			strconv.Itoa(rs.Issues),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
