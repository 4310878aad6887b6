package iostore

import (
	"fmt"
	"os"
	"sync"

	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

// StoreManagerImpl manages the source, cache and history store instances.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	source       contract.SourceStore
	cache        contract.MetricsCacheStore
	history      contract.HistoryStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetSourceStore returns the SourceStore.
func (mgr *StoreManagerImpl) GetSourceStore() contract.SourceStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.source
}

// GetCacheStore returns the MetricsCacheStore.
func (mgr *StoreManagerImpl) GetCacheStore() contract.MetricsCacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetHistoryStore returns the HistoryStore.
func (mgr *StoreManagerImpl) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

// Global Manager instance for main logic.
var (
	Manager   = &StoreManagerImpl{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global store manager from the configured
// backends. Each backend can be empty to skip that store.
func InitStores(cfg *contract.Config) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		var err error

		var sourceStore contract.SourceStore
		if cfg.SourceBackend != "" {
			sourceStore, err = NewSourceStore(cfg.SourceBackend, cfg.SourceDBConnect)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize source store: %w", err)
				return
			}
		}

		var cacheStore contract.MetricsCacheStore
		if cfg.CacheBackend != "" {
			cacheStore, err = NewCacheStore(cfg.CacheBackend, cfg.CacheDBConnect)
			if err != nil {
				if sourceStore != nil {
					_ = sourceStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize metrics cache: %w", err)
				return
			}
		}

		var historyStore contract.HistoryStore
		if cfg.HistoryBackend != "" {
			historyStore, err = NewHistoryStore(cfg.HistoryBackend, cfg.HistoryDBConnect)
			if err != nil {
				if sourceStore != nil {
					_ = sourceStore.Close()
				}
				if cacheStore != nil {
					_ = cacheStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize metrics history: %w", err)
				return
			}
		}

		// Assign to global manager
		Manager.source = sourceStore
		Manager.cache = cacheStore
		Manager.history = historyStore
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.source != nil {
			_ = Manager.source.Close()
		}
		if Manager.cache != nil {
			_ = Manager.cache.Close()
		}
		if Manager.history != nil {
			_ = Manager.history.Close()
		}
	})
}

// ClearCache clears the metrics cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeDBFile(dbFilePath)

	case schema.MySQLBackend:
		return clearSQLTable("mysql", connStr, metricsCacheTable)

	case schema.PostgreSQLBackend:
		return clearSQLTable("pgx", connStr, metricsCacheTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearHistory clears the metrics history for the specified backend.
func ClearHistory(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeDBFile(dbFilePath)

	case schema.MySQLBackend:
		return clearSQLTable("mysql", connStr, historyTable)

	case schema.PostgreSQLBackend:
		return clearSQLTable("pgx", connStr, historyTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported history backend for clearing: %s", backend)
	}
}

// removeDBFile removes a SQLite database file; a missing file is not an error.
func removeDBFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}
