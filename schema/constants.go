package schema

import "time"

// Custom string types for type safety.
type (
	// TimeRange represents a symbolic aggregation window.
	TimeRange string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for storage.
	DatabaseBackend string

	// EventKind represents a kind of contributor activity event.
	EventKind string
)

// All time ranges supported.
const (
	Range7d  TimeRange = "7d" // default
	Range30d TimeRange = "30d"
	Range90d TimeRange = "90d"
	Range1y  TimeRange = "1y"
	RangeAll TimeRange = "all"
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All contributor event kinds supported.
const (
	CommitEvent EventKind = "commit"
	ReviewEvent EventKind = "review"
)

// GitHubEpoch is the lower bound for the "all" time range. GitHub has no
// data before 2008, so aggregation never needs to look further back.
var GitHubEpoch = time.Date(2008, time.January, 1, 0, 0, 0, 0, time.UTC)

// AggregationBatchSize bounds the number of repositories whose fetches run
// concurrently during one aggregation pass.
const AggregationBatchSize = 3

// TopContributorLimit caps the ranked contributor list in the final metrics.
const TopContributorLimit = 10

// AllTimeRanges returns a list of all supported time ranges.
var AllTimeRanges = []TimeRange{Range7d, Range30d, Range90d, Range1y, RangeAll}

// ValidTimeRanges lists all valid time ranges.
var ValidTimeRanges = map[TimeRange]struct{}{
	Range7d:  {},
	Range30d: {},
	Range90d: {},
	Range1y:  {},
	RangeAll: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Duration returns the nominal span of the time range. RangeAll has no
// nominal span; callers anchor it at GitHubEpoch instead.
func (tr TimeRange) Duration() time.Duration {
	switch tr {
	case Range30d:
		return 30 * 24 * time.Hour
	case Range90d:
		return 90 * 24 * time.Hour
	case Range1y:
		return 365 * 24 * time.Hour
	case RangeAll:
		return 0
	default: // Range7d
		return 7 * 24 * time.Hour
	}
}

// CacheTTL returns how long a cached snapshot for this range stays fresh.
// Short windows are cheap to recompute and more volatile, so they expire
// sooner than long ones.
func (tr TimeRange) CacheTTL() time.Duration {
	switch tr {
	case Range30d:
		return 10 * time.Minute
	case Range90d:
		return 30 * time.Minute
	case Range1y:
		return time.Hour
	case RangeAll:
		return 2 * time.Hour
	default: // Range7d
		return 5 * time.Minute
	}
}
