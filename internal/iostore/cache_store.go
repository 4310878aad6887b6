package iostore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

// metricsCacheTable holds one snapshot row per (workspace_id, time_range).
const metricsCacheTable = "workspace_metrics_cache"

// CacheStoreImpl stores computed metrics snapshots using various database
// backends. The full metrics object rides as a JSON payload; the key and
// staleness columns are authoritative for lookup and expiry handling.
type CacheStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.MetricsCacheStore = &CacheStoreImpl{} // Compile-time check

// NewCacheStore initializes and returns a new MetricsCacheStore based on the backend type.
func NewCacheStore(backend schema.DatabaseBackend, connStr string) (contract.MetricsCacheStore, error) {
	db, err := openDatabase(backend, connStr, contract.GetCacheDBFilePath())
	if err != nil {
		return nil, err
	}

	store := &CacheStoreImpl{db: db, backend: backend, connStr: connStr}
	if db == nil {
		// No-op store for the disabled backend
		return store, nil
	}

	if _, err := db.Exec(cacheCreateQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", metricsCacheTable, err)
	}
	return store, nil
}

// cacheCreateQuery returns the CREATE TABLE query for the given backend.
func cacheCreateQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(metricsCacheTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				workspace_id VARCHAR(255) NOT NULL,
				time_range VARCHAR(16) NOT NULL,
				period_start BIGINT NOT NULL,
				period_end BIGINT NOT NULL,
				payload BLOB NOT NULL,
				calculated_at BIGINT NOT NULL,
				expires_at BIGINT NOT NULL,
				is_stale TINYINT(1) NOT NULL,
				PRIMARY KEY (workspace_id, time_range)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				workspace_id TEXT NOT NULL,
				time_range TEXT NOT NULL,
				period_start BIGINT NOT NULL,
				period_end BIGINT NOT NULL,
				payload BYTEA NOT NULL,
				calculated_at BIGINT NOT NULL,
				expires_at BIGINT NOT NULL,
				is_stale BOOLEAN NOT NULL,
				PRIMARY KEY (workspace_id, time_range)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				workspace_id TEXT NOT NULL,
				time_range TEXT NOT NULL,
				period_start BIGINT NOT NULL,
				period_end BIGINT NOT NULL,
				payload BLOB NOT NULL,
				calculated_at BIGINT NOT NULL,
				expires_at BIGINT NOT NULL,
				is_stale INTEGER NOT NULL,
				PRIMARY KEY (workspace_id, time_range)
			);
		`, quoted)
	}
}

// Get retrieves the snapshot for (workspace, range), or nil when none exists.
// Expired rows are returned as-is; expiry policy lives with the caller.
func (cs *CacheStoreImpl) Get(ctx context.Context, workspaceID string, timeRange schema.TimeRange) (*schema.CachedMetrics, error) {
	if cs.db == nil {
		return nil, nil
	}

	query := rebind(cs.backend, fmt.Sprintf(`
		SELECT payload, period_start, period_end, calculated_at, expires_at, is_stale
		FROM %s
		WHERE workspace_id = ? AND time_range = ?`,
		quoteTableName(metricsCacheTable, cs.backend)))

	var payload []byte
	var periodStart, periodEnd, calculatedAt, expiresAt int64
	var isStale bool
	row := cs.db.QueryRowContext(ctx, query, workspaceID, string(timeRange))
	if err := row.Scan(&payload, &periodStart, &periodEnd, &calculatedAt, &expiresAt, &isStale); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var metrics schema.WorkspaceMetrics
	if err := json.Unmarshal(payload, &metrics); err != nil {
		return nil, fmt.Errorf("failed to decode cached metrics payload: %w", err)
	}

	return &schema.CachedMetrics{
		WorkspaceID:  workspaceID,
		TimeRange:    timeRange,
		PeriodStart:  time.Unix(periodStart, 0).UTC(),
		PeriodEnd:    time.Unix(periodEnd, 0).UTC(),
		Metrics:      metrics,
		CalculatedAt: time.Unix(calculatedAt, 0).UTC(),
		ExpiresAt:    time.Unix(expiresAt, 0).UTC(),
		IsStale:      isStale,
	}, nil
}

// Upsert writes the snapshot, replacing any row with the same key.
// Overlapping writers overwrite each other last-write-wins.
func (cs *CacheStoreImpl) Upsert(ctx context.Context, cached *schema.CachedMetrics) error {
	if cs.db == nil {
		return nil
	}

	payload, err := json.Marshal(cached.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics payload: %w", err)
	}

	var query string
	quoted := quoteTableName(metricsCacheTable, cs.backend)
	switch cs.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (workspace_id, time_range, period_start, period_end, payload, calculated_at, expires_at, is_stale) VALUES (?, ?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE period_start = new.period_start, period_end = new.period_end, payload = new.payload, calculated_at = new.calculated_at, expires_at = new.expires_at, is_stale = new.is_stale`, quoted)

	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (workspace_id, time_range, period_start, period_end, payload, calculated_at, expires_at, is_stale) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (workspace_id, time_range) DO UPDATE SET period_start = EXCLUDED.period_start, period_end = EXCLUDED.period_end, payload = EXCLUDED.payload, calculated_at = EXCLUDED.calculated_at, expires_at = EXCLUDED.expires_at, is_stale = EXCLUDED.is_stale`, quoted)

	default: // SQLite
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (workspace_id, time_range, period_start, period_end, payload, calculated_at, expires_at, is_stale) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, quoted)
	}

	_, err = cs.db.ExecContext(ctx, query,
		cached.WorkspaceID, string(cached.TimeRange),
		cached.PeriodStart.Unix(), cached.PeriodEnd.Unix(),
		payload, cached.CalculatedAt.Unix(), cached.ExpiresAt.Unix(), cached.IsStale)
	return err
}

// MarkStale flags the row for one (workspace, range) key as stale.
func (cs *CacheStoreImpl) MarkStale(ctx context.Context, workspaceID string, timeRange schema.TimeRange) error {
	if cs.db == nil {
		return nil
	}

	query := rebind(cs.backend, fmt.Sprintf(`UPDATE %s SET is_stale = ? WHERE workspace_id = ? AND time_range = ?`,
		quoteTableName(metricsCacheTable, cs.backend)))
	_, err := cs.db.ExecContext(ctx, query, true, workspaceID, string(timeRange))
	return err
}

// MarkAllStale flags every cached row for the workspace as stale.
func (cs *CacheStoreImpl) MarkAllStale(ctx context.Context, workspaceID string) error {
	if cs.db == nil {
		return nil
	}

	query := rebind(cs.backend, fmt.Sprintf(`UPDATE %s SET is_stale = ? WHERE workspace_id = ?`,
		quoteTableName(metricsCacheTable, cs.backend)))
	_, err := cs.db.ExecContext(ctx, query, true, workspaceID)
	return err
}

// Delete removes every cached row for the workspace.
func (cs *CacheStoreImpl) Delete(ctx context.Context, workspaceID string) error {
	if cs.db == nil {
		return nil
	}

	query := rebind(cs.backend, fmt.Sprintf(`DELETE FROM %s WHERE workspace_id = ?`,
		quoteTableName(metricsCacheTable, cs.backend)))
	_, err := cs.db.ExecContext(ctx, query, workspaceID)
	return err
}

// Close closes the underlying DB connection.
func (cs *CacheStoreImpl) Close() error {
	if cs.db != nil {
		return cs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the cache store.
func (cs *CacheStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(cs.backend),
		Connected: cs.db != nil,
	}
	if cs.db == nil {
		return status, nil
	}

	quoted := quoteTableName(metricsCacheTable, cs.backend)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted)
	row := cs.db.QueryRow(countQuery)
	if err := row.Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}

	if status.TotalEntries == 0 {
		return status, nil
	}

	staleQuery := rebind(cs.backend, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE is_stale = ?", quoted))
	row = cs.db.QueryRow(staleQuery, true)
	if err := row.Scan(&status.StaleEntries); err != nil {
		return status, fmt.Errorf("failed to get stale entries: %w", err)
	}

	lastQuery := fmt.Sprintf("SELECT MAX(calculated_at) FROM %s", quoted)
	row = cs.db.QueryRow(lastQuery)
	var lastTs int64
	if err := row.Scan(&lastTs); err != nil {
		return status, fmt.Errorf("failed to get last calculation time: %w", err)
	}
	status.LastCalculated = time.Unix(lastTs, 0)

	oldestQuery := fmt.Sprintf("SELECT MIN(expires_at) FROM %s", quoted)
	row = cs.db.QueryRow(oldestQuery)
	var oldestTs int64
	if err := row.Scan(&oldestTs); err != nil {
		return status, fmt.Errorf("failed to get oldest expiry: %w", err)
	}
	status.OldestExpiry = time.Unix(oldestTs, 0)

	// Estimate table size (approximate)
	// For SQLite, use page_count * page_size
	// For others, estimate based on row count (rough approximation)
	if cs.backend == schema.SQLiteBackend {
		sizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		row = cs.db.QueryRow(sizeQuery)
		if err := row.Scan(&status.TableSizeBytes); err != nil {
			// If pragma fails, skip size
			status.TableSizeBytes = 0
		}
	} else {
		switch cs.backend {
		case schema.MySQLBackend:
			// Fallback rough estimate if information_schema query fails
			status.TableSizeBytes = int64(status.TotalEntries) * 1000

			// Use information_schema for MySQL
			cfg, err := mysql.ParseDSN(cs.connStr)
			if err != nil {
				break
			}
			dbName := cfg.DBName
			if dbName == "" {
				break
			}
			sizeQuery := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
			row := cs.db.QueryRow(sizeQuery, dbName, metricsCacheTable)
			if err := row.Scan(&status.TableSizeBytes); err != nil {
				// Fallback if the query or scanning fails
				status.TableSizeBytes = int64(status.TotalEntries) * 1000
			}
		case schema.PostgreSQLBackend:
			// Use pg_total_relation_size for PostgreSQL
			sizeQuery := "SELECT pg_total_relation_size($1)"
			row = cs.db.QueryRow(sizeQuery, metricsCacheTable)
			if err := row.Scan(&status.TableSizeBytes); err != nil {
				status.TableSizeBytes = int64(status.TotalEntries) * 1000 // Fallback rough estimate
			}
		default:
			status.TableSizeBytes = int64(status.TotalEntries) * 1000 // Rough estimate
		}
	}

	return status, nil
}
