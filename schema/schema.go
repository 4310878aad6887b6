// Package schema has configs, models and global variables for all parts of workpulse.
package schema

import "time"

// Repository represents one tracked repository in a workspace.
type Repository struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name"`
	Stars           int    `json:"stars"`
	Forks           int    `json:"forks"`
	PrimaryLanguage string `json:"primary_language"`
}

// PullRequest is a repository-scoped pull request row. It is consumed
// read-only by the aggregator. MergedAt and ClosedAt are nil when the
// pull request is still open; nil timestamps are excluded from timing
// statistics, not treated as zero.
type PullRequest struct {
	ID           string     `json:"id"`
	RepositoryID string     `json:"repository_id"`
	Number       int        `json:"number"`
	State        string     `json:"state"` // open or closed
	Draft        bool       `json:"draft"`
	Author       string     `json:"author"`
	CreatedAt    time.Time  `json:"created_at"`
	MergedAt     *time.Time `json:"merged_at,omitempty"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
}

// Issue is a repository-scoped issue row, consumed read-only by the aggregator.
type Issue struct {
	ID           string     `json:"id"`
	RepositoryID string     `json:"repository_id"`
	Number       int        `json:"number"`
	State        string     `json:"state"` // open or closed
	Author       string     `json:"author"`
	CreatedAt    time.Time  `json:"created_at"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
}

// ContributorEvent is a single commit or review attributed to a username.
type ContributorEvent struct {
	RepositoryID string    `json:"repository_id"`
	Username     string    `json:"username"`
	Kind         EventKind `json:"kind"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ContributorStat accumulates per-contributor activity counts across all
// repositories in a workspace for one period.
type ContributorStat struct {
	Username     string `json:"username"`
	PullRequests int    `json:"pull_requests"`
	Issues       int    `json:"issues"`
	Commits      int    `json:"commits"`
	Reviews      int    `json:"reviews"`
}

// ActivityTotal is the ranking key for top-contributor ordering.
// Reviews are deliberately excluded from the ranking.
func (c ContributorStat) ActivityTotal() int {
	return c.PullRequests + c.Issues + c.Commits
}

// ActivityPoint is one calendar day of workspace activity. The timeline is
// dense: every day in the period gets a point, zero-valued when nothing
// happened.
type ActivityPoint struct {
	Date         string `json:"date"` // YYYY-MM-DD
	PullRequests int    `json:"pull_requests"`
	Issues       int    `json:"issues"`
	Commits      int    `json:"commits"`
}

// RepositoryStat holds per-repository counters for the period, included in
// the final metrics only when repository stats are requested.
type RepositoryStat struct {
	RepositoryID string `json:"repository_id"`
	FullName     string `json:"full_name"`
	Stars        int    `json:"stars"`
	Forks        int    `json:"forks"`
	Language     string `json:"language,omitempty"`
	PullRequests int    `json:"pull_requests"`
	MergedPRs    int    `json:"merged_prs"`
	Issues       int    `json:"issues"`
}

// TrendData holds rounded percentage deltas against the historical baseline.
type TrendData struct {
	Stars        int `json:"stars"`
	PullRequests int `json:"pull_requests"`
	Contributors int `json:"contributors"`
	Commits      int `json:"commits"`
	Issues       int `json:"issues"`
}

// HistoryBaseline is the summed prior-window totals used for trend
// computation. A nil *HistoryBaseline means no history rows exist for the
// window and every trend collapses to the zero-baseline rule.
type HistoryBaseline struct {
	Stars        int `json:"stars"`
	PullRequests int `json:"pull_requests"`
	Contributors int `json:"contributors"`
	Commits      int `json:"commits"`
	Issues       int `json:"issues"`
}

// HistoryRow is one append-only daily rollup for a workspace. At most one
// row exists per (workspace_id, date); same-day writes upsert.
type HistoryRow struct {
	WorkspaceID  string    `json:"workspace_id"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Stars        int       `json:"stars"`
	PullRequests int       `json:"pull_requests"`
	Contributors int       `json:"contributors"`
	Commits      int       `json:"commits"`
	Issues       int       `json:"issues"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// WorkspaceMetrics is the final aggregated result for one workspace and
// time range. Callers always receive a well-formed value, zero-valued for
// workspaces with no tracked repositories.
type WorkspaceMetrics struct {
	WorkspaceID string    `json:"workspace_id"`
	TimeRange   TimeRange `json:"time_range"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	TotalPRs  int `json:"total_prs"`
	MergedPRs int `json:"merged_prs"`
	OpenPRs   int `json:"open_prs"`
	DraftPRs  int `json:"draft_prs"`

	TotalIssues  int `json:"total_issues"`
	ClosedIssues int `json:"closed_issues"`
	OpenIssues   int `json:"open_issues"`

	TotalStars         int `json:"total_stars"`
	TotalForks         int `json:"total_forks"`
	TotalCommits       int `json:"total_commits"`
	UniqueContributors int `json:"unique_contributors"`

	AvgPRMergeTimeHours    float64 `json:"avg_pr_merge_time_hours"`
	AvgIssueCloseTimeHours float64 `json:"avg_issue_close_time_hours"`
	PRVelocity             float64 `json:"pr_velocity"`
	IssueClosureRate       float64 `json:"issue_closure_rate"`

	Trends           TrendData         `json:"trends"`
	TopContributors  []ContributorStat `json:"top_contributors"`
	ActivityTimeline []ActivityPoint   `json:"activity_timeline"`
	Languages        map[string]int    `json:"languages"`
	RepositoryStats  []RepositoryStat  `json:"repository_stats,omitempty"`

	CalculatedAt time.Time `json:"calculated_at"`

	// CacheHit and Stale describe how this result was served. They are set
	// on the way out and never persisted with the snapshot.
	CacheHit bool `json:"cache_hit"`
	Stale    bool `json:"stale"`
}

// CachedMetrics is one persisted snapshot row. The invariant is at most one
// row per (workspace_id, time_range); concurrent writers overwrite each
// other last-write-wins.
type CachedMetrics struct {
	WorkspaceID  string           `json:"workspace_id"`
	TimeRange    TimeRange        `json:"time_range"`
	PeriodStart  time.Time        `json:"period_start"`
	PeriodEnd    time.Time        `json:"period_end"`
	Metrics      WorkspaceMetrics `json:"metrics"`
	CalculatedAt time.Time        `json:"calculated_at"`
	ExpiresAt    time.Time        `json:"expires_at"`
	IsStale      bool             `json:"is_stale"`
}

// Expired reports whether the snapshot is past its expiry at the given instant.
func (cm *CachedMetrics) Expired(now time.Time) bool {
	return now.After(cm.ExpiresAt)
}
