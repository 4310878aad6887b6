package schema

import "time"

// CacheStatus holds status information about the metrics cache store.
type CacheStatus struct {
	Backend        string    `json:"backend"`
	Connected      bool      `json:"connected"`
	TotalEntries   int       `json:"total_entries"`
	StaleEntries   int       `json:"stale_entries"`
	LastCalculated time.Time `json:"last_calculated,omitempty"`
	OldestExpiry   time.Time `json:"oldest_expiry,omitempty"`
	TableSizeBytes int64     `json:"table_size_bytes"`
}

// HistoryStatus holds status information about the metrics history store.
type HistoryStatus struct {
	Backend    string `json:"backend"`
	Connected  bool   `json:"connected"`
	TotalRows  int    `json:"total_rows"`
	Workspaces int    `json:"workspaces"`
	FirstDate  string `json:"first_date,omitempty"`
	LastDate   string `json:"last_date,omitempty"`
}

// BackfillStats summarizes one backfill run against the GitHub API.
type BackfillStats struct {
	ReposProcessed int `json:"repos_processed"`
	PullsFetched   int `json:"pulls_fetched"`
	IssuesFetched  int `json:"issues_fetched"`
	EventsFetched  int `json:"events_fetched"`
	RowsInserted   int `json:"rows_inserted"`
	APICalls       int `json:"api_calls"`
	Errors         int `json:"errors"`
}
