package iostore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

// Source table names.
const (
	repositoriesTable      = "repositories"
	workspaceReposTable    = "workspace_repositories"
	pullRequestsTable      = "pull_requests"
	issuesTable            = "issues"
	contributorEventsTable = "contributor_events"
)

// SourceStoreImpl stores workspace source data (repositories, pull requests,
// issues and contributor events) using various database backends. Timestamps
// are stored as Unix seconds; nullable timestamps use NULL, never zero.
type SourceStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.SourceStore = &SourceStoreImpl{} // Compile-time check

// NewSourceStore initializes and returns a new SourceStore based on the backend type.
func NewSourceStore(backend schema.DatabaseBackend, connStr string) (contract.SourceStore, error) {
	db, err := openDatabase(backend, connStr, contract.GetSourceDBFilePath())
	if err != nil {
		return nil, err
	}

	store := &SourceStoreImpl{db: db, backend: backend, connStr: connStr}
	if db == nil {
		// No-op store for the disabled backend
		return store, nil
	}

	for _, query := range sourceCreateQueries(backend) {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create source tables: %w", err)
		}
	}
	return store, nil
}

// sourceCreateQueries returns the CREATE TABLE statements for the backend.
func sourceCreateQueries(backend schema.DatabaseBackend) []string {
	key := "TEXT"
	if backend == schema.MySQLBackend {
		// MySQL cannot index unsized TEXT columns
		key = "VARCHAR(255)"
	}
	boolCol := boolColumnType(backend)

	return []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id %s PRIMARY KEY,
				full_name TEXT NOT NULL,
				stars INTEGER NOT NULL,
				forks INTEGER NOT NULL,
				primary_language TEXT NOT NULL
			);
		`, quoteTableName(repositoriesTable, backend), key),

		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				workspace_id %s NOT NULL,
				repository_id %s NOT NULL,
				PRIMARY KEY (workspace_id, repository_id)
			);
		`, quoteTableName(workspaceReposTable, backend), key, key),

		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id %s PRIMARY KEY,
				repository_id %s NOT NULL,
				number INTEGER NOT NULL,
				state TEXT NOT NULL,
				draft %s NOT NULL,
				author TEXT NOT NULL,
				created_at BIGINT NOT NULL,
				merged_at BIGINT,
				closed_at BIGINT
			);
		`, quoteTableName(pullRequestsTable, backend), key, key, boolCol),

		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id %s PRIMARY KEY,
				repository_id %s NOT NULL,
				number INTEGER NOT NULL,
				state TEXT NOT NULL,
				author TEXT NOT NULL,
				created_at BIGINT NOT NULL,
				closed_at BIGINT
			);
		`, quoteTableName(issuesTable, backend), key, key),

		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				repository_id %s NOT NULL,
				username %s NOT NULL,
				kind %s NOT NULL,
				occurred_at BIGINT NOT NULL
			);
		`, quoteTableName(contributorEventsTable, backend), key, key, key),
	}
}

// ListWorkspaceRepositories resolves the repositories tracked by a workspace
// via the membership table.
func (ss *SourceStoreImpl) ListWorkspaceRepositories(ctx context.Context, workspaceID string) ([]schema.Repository, error) {
	if ss.db == nil {
		return nil, nil
	}

	query := rebind(ss.backend, fmt.Sprintf(`
		SELECT r.id, r.full_name, r.stars, r.forks, r.primary_language
		FROM %s r
		JOIN %s wr ON wr.repository_id = r.id
		WHERE wr.workspace_id = ?
		ORDER BY r.full_name`,
		quoteTableName(repositoriesTable, ss.backend),
		quoteTableName(workspaceReposTable, ss.backend)))

	rows, err := ss.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var repos []schema.Repository
	for rows.Next() {
		var r schema.Repository
		if err := rows.Scan(&r.ID, &r.FullName, &r.Stars, &r.Forks, &r.PrimaryLanguage); err != nil {
			return nil, err
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

// ListPullRequests returns pull requests created within [start, end) for one repository.
func (ss *SourceStoreImpl) ListPullRequests(ctx context.Context, repositoryID string, start, end time.Time) ([]schema.PullRequest, error) {
	if ss.db == nil {
		return nil, nil
	}

	query := rebind(ss.backend, fmt.Sprintf(`
		SELECT id, repository_id, number, state, draft, author, created_at, merged_at, closed_at
		FROM %s
		WHERE repository_id = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at`,
		quoteTableName(pullRequestsTable, ss.backend)))

	rows, err := ss.db.QueryContext(ctx, query, repositoryID, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var prs []schema.PullRequest
	for rows.Next() {
		var pr schema.PullRequest
		var createdAt int64
		var mergedAt, closedAt sql.NullInt64
		if err := rows.Scan(&pr.ID, &pr.RepositoryID, &pr.Number, &pr.State, &pr.Draft, &pr.Author, &createdAt, &mergedAt, &closedAt); err != nil {
			return nil, err
		}
		pr.CreatedAt = time.Unix(createdAt, 0).UTC()
		pr.MergedAt = nullableTime(mergedAt)
		pr.ClosedAt = nullableTime(closedAt)
		prs = append(prs, pr)
	}
	return prs, rows.Err()
}

// ListIssues returns issues created within [start, end) for one repository.
func (ss *SourceStoreImpl) ListIssues(ctx context.Context, repositoryID string, start, end time.Time) ([]schema.Issue, error) {
	if ss.db == nil {
		return nil, nil
	}

	query := rebind(ss.backend, fmt.Sprintf(`
		SELECT id, repository_id, number, state, author, created_at, closed_at
		FROM %s
		WHERE repository_id = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at`,
		quoteTableName(issuesTable, ss.backend)))

	rows, err := ss.db.QueryContext(ctx, query, repositoryID, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var issues []schema.Issue
	for rows.Next() {
		var issue schema.Issue
		var createdAt int64
		var closedAt sql.NullInt64
		if err := rows.Scan(&issue.ID, &issue.RepositoryID, &issue.Number, &issue.State, &issue.Author, &createdAt, &closedAt); err != nil {
			return nil, err
		}
		issue.CreatedAt = time.Unix(createdAt, 0).UTC()
		issue.ClosedAt = nullableTime(closedAt)
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// ListContributorEvents returns commit and review events within [start, end)
// for one repository.
func (ss *SourceStoreImpl) ListContributorEvents(ctx context.Context, repositoryID string, start, end time.Time) ([]schema.ContributorEvent, error) {
	if ss.db == nil {
		return nil, nil
	}

	query := rebind(ss.backend, fmt.Sprintf(`
		SELECT repository_id, username, kind, occurred_at
		FROM %s
		WHERE repository_id = ? AND occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at`,
		quoteTableName(contributorEventsTable, ss.backend)))

	rows, err := ss.db.QueryContext(ctx, query, repositoryID, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []schema.ContributorEvent
	for rows.Next() {
		var ev schema.ContributorEvent
		var kind string
		var occurredAt int64
		if err := rows.Scan(&ev.RepositoryID, &ev.Username, &kind, &occurredAt); err != nil {
			return nil, err
		}
		ev.Kind = schema.EventKind(kind)
		ev.OccurredAt = time.Unix(occurredAt, 0).UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

// UpsertRepository writes one repository row and its workspace membership.
func (ss *SourceStoreImpl) UpsertRepository(ctx context.Context, workspaceID string, repo schema.Repository) error {
	if ss.db == nil {
		return nil
	}

	var repoQuery string
	quotedRepos := quoteTableName(repositoriesTable, ss.backend)
	switch ss.backend {
	case schema.MySQLBackend:
		repoQuery = fmt.Sprintf(`INSERT INTO %s (id, full_name, stars, forks, primary_language) VALUES (?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE full_name = new.full_name, stars = new.stars, forks = new.forks, primary_language = new.primary_language`, quotedRepos)
	case schema.PostgreSQLBackend:
		repoQuery = fmt.Sprintf(`INSERT INTO %s (id, full_name, stars, forks, primary_language) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name, stars = EXCLUDED.stars, forks = EXCLUDED.forks, primary_language = EXCLUDED.primary_language`, quotedRepos)
	default: // SQLite
		repoQuery = fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, full_name, stars, forks, primary_language) VALUES (?, ?, ?, ?, ?)`, quotedRepos)
	}
	if _, err := ss.db.ExecContext(ctx, repoQuery, repo.ID, repo.FullName, repo.Stars, repo.Forks, repo.PrimaryLanguage); err != nil {
		return fmt.Errorf("failed to upsert repository %s: %w", repo.FullName, err)
	}

	var memberQuery string
	quotedMembers := quoteTableName(workspaceReposTable, ss.backend)
	switch ss.backend {
	case schema.MySQLBackend:
		memberQuery = fmt.Sprintf(`INSERT IGNORE INTO %s (workspace_id, repository_id) VALUES (?, ?)`, quotedMembers)
	case schema.PostgreSQLBackend:
		memberQuery = fmt.Sprintf(`INSERT INTO %s (workspace_id, repository_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, quotedMembers)
	default: // SQLite
		memberQuery = fmt.Sprintf(`INSERT OR IGNORE INTO %s (workspace_id, repository_id) VALUES (?, ?)`, quotedMembers)
	}
	if _, err := ss.db.ExecContext(ctx, memberQuery, workspaceID, repo.ID); err != nil {
		return fmt.Errorf("failed to link repository %s to workspace %s: %w", repo.FullName, workspaceID, err)
	}
	return nil
}

// InsertPullRequests writes pull request rows, replacing rows with the same ID.
func (ss *SourceStoreImpl) InsertPullRequests(ctx context.Context, prs []schema.PullRequest) (int, error) {
	if ss.db == nil || len(prs) == 0 {
		return 0, nil
	}

	var query string
	quoted := quoteTableName(pullRequestsTable, ss.backend)
	switch ss.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (id, repository_id, number, state, draft, author, created_at, merged_at, closed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE state = new.state, draft = new.draft, merged_at = new.merged_at, closed_at = new.closed_at`, quoted)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (id, repository_id, number, state, draft, author, created_at, merged_at, closed_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, draft = EXCLUDED.draft, merged_at = EXCLUDED.merged_at, closed_at = EXCLUDED.closed_at`, quoted)
	default: // SQLite
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, repository_id, number, state, draft, author, created_at, merged_at, closed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, quoted)
	}

	count := 0
	for _, pr := range prs {
		_, err := ss.db.ExecContext(ctx, query,
			pr.ID, pr.RepositoryID, pr.Number, pr.State, pr.Draft, pr.Author,
			pr.CreatedAt.Unix(), nullableUnix(pr.MergedAt), nullableUnix(pr.ClosedAt))
		if err != nil {
			return count, fmt.Errorf("failed to insert pull request %s: %w", pr.ID, err)
		}
		count++
	}
	return count, nil
}

// InsertIssues writes issue rows, replacing rows with the same ID.
func (ss *SourceStoreImpl) InsertIssues(ctx context.Context, issues []schema.Issue) (int, error) {
	if ss.db == nil || len(issues) == 0 {
		return 0, nil
	}

	var query string
	quoted := quoteTableName(issuesTable, ss.backend)
	switch ss.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (id, repository_id, number, state, author, created_at, closed_at) VALUES (?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE state = new.state, closed_at = new.closed_at`, quoted)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (id, repository_id, number, state, author, created_at, closed_at) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, closed_at = EXCLUDED.closed_at`, quoted)
	default: // SQLite
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, repository_id, number, state, author, created_at, closed_at) VALUES (?, ?, ?, ?, ?, ?, ?)`, quoted)
	}

	count := 0
	for _, issue := range issues {
		_, err := ss.db.ExecContext(ctx, query,
			issue.ID, issue.RepositoryID, issue.Number, issue.State, issue.Author,
			issue.CreatedAt.Unix(), nullableUnix(issue.ClosedAt))
		if err != nil {
			return count, fmt.Errorf("failed to insert issue %s: %w", issue.ID, err)
		}
		count++
	}
	return count, nil
}

// InsertEvents appends contributor event rows. Events carry no natural key,
// so ingestion is responsible for not replaying the same window twice.
func (ss *SourceStoreImpl) InsertEvents(ctx context.Context, events []schema.ContributorEvent) (int, error) {
	if ss.db == nil || len(events) == 0 {
		return 0, nil
	}

	query := rebind(ss.backend, fmt.Sprintf(`INSERT INTO %s (repository_id, username, kind, occurred_at) VALUES (?, ?, ?, ?)`,
		quoteTableName(contributorEventsTable, ss.backend)))

	count := 0
	for _, ev := range events {
		_, err := ss.db.ExecContext(ctx, query, ev.RepositoryID, ev.Username, string(ev.Kind), ev.OccurredAt.Unix())
		if err != nil {
			return count, fmt.Errorf("failed to insert contributor event: %w", err)
		}
		count++
	}
	return count, nil
}

// GetStatus returns basic connectivity information about the source store.
func (ss *SourceStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(ss.backend),
		Connected: ss.db != nil,
	}
	if ss.db == nil {
		return status, nil
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(repositoriesTable, ss.backend))
	row := ss.db.QueryRow(countQuery)
	if err := row.Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to count repositories: %w", err)
	}
	return status, nil
}

// Close closes the underlying DB connection.
func (ss *SourceStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// nullableTime converts a nullable Unix-seconds column into *time.Time.
func nullableTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

// nullableUnix converts *time.Time into a nullable Unix-seconds value.
func nullableUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
