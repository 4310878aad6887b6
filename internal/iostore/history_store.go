package iostore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

// historyTable holds one daily rollup row per (workspace_id, date).
const historyTable = "workspace_metrics_history"

// HistoryStoreImpl stores append-only daily rollups used as the trend
// baseline. Dates are stored as YYYY-MM-DD strings so that lexicographic
// range scans match chronological order on every backend.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore initializes and returns a new HistoryStore based on the backend type.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	db, err := openDatabase(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	store := &HistoryStoreImpl{db: db, backend: backend, connStr: connStr}
	if db == nil {
		// No-op store for the disabled backend
		return store, nil
	}

	if _, err := db.Exec(historyCreateQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", historyTable, err)
	}
	return store, nil
}

// historyCreateQuery returns the CREATE TABLE query for the given backend.
func historyCreateQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(historyTable, backend)
	key := "TEXT"
	if backend == schema.MySQLBackend {
		key = "VARCHAR(255)"
	}
	dateCol := "TEXT"
	if backend == schema.MySQLBackend {
		dateCol = "VARCHAR(10)"
	}
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			workspace_id %s NOT NULL,
			date %s NOT NULL,
			stars INTEGER NOT NULL,
			pull_requests INTEGER NOT NULL,
			contributors INTEGER NOT NULL,
			commits INTEGER NOT NULL,
			issues INTEGER NOT NULL,
			recorded_at BIGINT NOT NULL,
			PRIMARY KEY (workspace_id, date)
		);
	`, quoted, key, dateCol)
}

// UpsertDaily writes the day's totals for a workspace. Same-day writes
// overwrite the earlier row.
func (hs *HistoryStoreImpl) UpsertDaily(ctx context.Context, row schema.HistoryRow) error {
	if hs.db == nil {
		return nil
	}

	var query string
	quoted := quoteTableName(historyTable, hs.backend)
	switch hs.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (workspace_id, date, stars, pull_requests, contributors, commits, issues, recorded_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE stars = new.stars, pull_requests = new.pull_requests, contributors = new.contributors, commits = new.commits, issues = new.issues, recorded_at = new.recorded_at`, quoted)

	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (workspace_id, date, stars, pull_requests, contributors, commits, issues, recorded_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (workspace_id, date) DO UPDATE SET stars = EXCLUDED.stars, pull_requests = EXCLUDED.pull_requests, contributors = EXCLUDED.contributors, commits = EXCLUDED.commits, issues = EXCLUDED.issues, recorded_at = EXCLUDED.recorded_at`, quoted)

	default: // SQLite
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (workspace_id, date, stars, pull_requests, contributors, commits, issues, recorded_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, quoted)
	}

	_, err := hs.db.ExecContext(ctx, query,
		row.WorkspaceID, row.Date, row.Stars, row.PullRequests, row.Contributors, row.Commits, row.Issues, row.RecordedAt.Unix())
	return err
}

// SumWindow sums daily rows with date in [start, end) for the workspace.
// It returns nil when no rows fall inside the window.
func (hs *HistoryStoreImpl) SumWindow(ctx context.Context, workspaceID string, start, end time.Time) (*schema.HistoryBaseline, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := rebind(hs.backend, fmt.Sprintf(`
		SELECT SUM(stars), SUM(pull_requests), SUM(contributors), SUM(commits), SUM(issues)
		FROM %s
		WHERE workspace_id = ? AND date >= ? AND date < ?`,
		quoteTableName(historyTable, hs.backend)))

	startDate := start.UTC().Format(contract.DateOnlyFormat)
	endDate := end.UTC().Format(contract.DateOnlyFormat)

	var stars, prs, contributors, commits, issues sql.NullInt64
	row := hs.db.QueryRowContext(ctx, query, workspaceID, startDate, endDate)
	if err := row.Scan(&stars, &prs, &contributors, &commits, &issues); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	// SUM over zero rows yields NULL on every backend
	if !stars.Valid {
		return nil, nil
	}

	return &schema.HistoryBaseline{
		Stars:        int(stars.Int64),
		PullRequests: int(prs.Int64),
		Contributors: int(contributors.Int64),
		Commits:      int(commits.Int64),
		Issues:       int(issues.Int64),
	}, nil
}

// GetAll returns every history row, ordered by workspace then date.
func (hs *HistoryStoreImpl) GetAll(ctx context.Context) ([]schema.HistoryRow, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT workspace_id, date, stars, pull_requests, contributors, commits, issues, recorded_at
		FROM %s
		ORDER BY workspace_id, date`,
		quoteTableName(historyTable, hs.backend))

	rows, err := hs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []schema.HistoryRow
	for rows.Next() {
		var row schema.HistoryRow
		var recordedAt int64
		if err := rows.Scan(&row.WorkspaceID, &row.Date, &row.Stars, &row.PullRequests, &row.Contributors, &row.Commits, &row.Issues, &recordedAt); err != nil {
			return nil, err
		}
		row.RecordedAt = time.Unix(recordedAt, 0).UTC()
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:   string(hs.backend),
		Connected: hs.db != nil,
	}
	if hs.db == nil {
		return status, nil
	}

	quoted := quoteTableName(historyTable, hs.backend)

	countQuery := fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT workspace_id) FROM %s", quoted)
	row := hs.db.QueryRow(countQuery)
	if err := row.Scan(&status.TotalRows, &status.Workspaces); err != nil {
		return status, fmt.Errorf("failed to count history rows: %w", err)
	}

	if status.TotalRows == 0 {
		return status, nil
	}

	rangeQuery := fmt.Sprintf("SELECT MIN(date), MAX(date) FROM %s", quoted)
	row = hs.db.QueryRow(rangeQuery)
	if err := row.Scan(&status.FirstDate, &status.LastDate); err != nil {
		return status, fmt.Errorf("failed to get history date range: %w", err)
	}
	return status, nil
}

// Close closes the underlying DB connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}
