package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/workpulse/workpulse/schema"
)

// Default values for configuration.
const (
	DefaultBatchSize    = schema.AggregationBatchSize
	DefaultPrecision    = 1
	DefaultBackfillDays = 30
	MaxBackfillDays     = 365
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DateOnlyFormat is the calendar-day representation used by the activity
// timeline and the history table.
const DateOnlyFormat = "2006-01-02"

// Config holds the runtime configuration for aggregation.
// This struct remains the "final, validated" config.
type Config struct {
	WorkspaceID       string
	TimeRange         schema.TimeRange
	ForceRefresh      bool
	IncludeRepoStats  bool
	BatchSize         int
	Precision         int
	Output            schema.OutputMode
	OutputFile        string
	Width             int // Terminal width override (0 = auto-detect)
	UseColors         bool

	SourceBackend   schema.DatabaseBackend
	SourceDBConnect string // Please use env var as this is plaintext

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	// Backfill settings
	GitHubToken  string
	BackfillDays int
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	WorkspaceIDStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Range            string `mapstructure:"range"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	BatchSize        int    `mapstructure:"batch-size"`
	SourceBackend    string `mapstructure:"source-backend"`
	SourceDBConnect  string `mapstructure:"source-db-connect"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from metricsCmd.Flags() ---
	ForceRefresh bool `mapstructure:"force-refresh"`
	RepoStats    bool `mapstructure:"repo-stats"`

	// --- Fields from backfillCmd.Flags() ---
	GitHubToken  string `mapstructure:"github-token"`
	BackfillDays int    `mapstructure:"backfill-days"`
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateWorkspaceID rejects empty or whitespace-only workspace identifiers.
func ValidateWorkspaceID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("workspace id is required")
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs handles fields that map over with light checking.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.WorkspaceID = strings.TrimSpace(input.WorkspaceIDStr)

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output mode '%s'. must be text, csv, json", input.Output)
	}
	cfg.OutputFile = input.OutputFile

	if input.Precision < 0 || input.Precision > 10 {
		return fmt.Errorf("precision must be between 0 and 10, got %d", input.Precision)
	}
	cfg.Precision = input.Precision

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative, got %d", input.Width)
	}
	cfg.Width = input.Width

	useColors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid color value: %w", err)
	}
	cfg.UseColors = useColors

	if input.BatchSize < 1 {
		return fmt.Errorf("batch-size must be at least 1, got %d", input.BatchSize)
	}
	cfg.BatchSize = input.BatchSize

	cfg.ForceRefresh = input.ForceRefresh
	cfg.IncludeRepoStats = input.RepoStats

	cfg.GitHubToken = input.GitHubToken
	if input.BackfillDays != 0 {
		if input.BackfillDays < 1 || input.BackfillDays > MaxBackfillDays {
			return fmt.Errorf("backfill-days must be between 1 and %d, got %d", MaxBackfillDays, input.BackfillDays)
		}
		cfg.BackfillDays = input.BackfillDays
	} else {
		cfg.BackfillDays = DefaultBackfillDays
	}

	return nil
}

// processTimeRange validates the symbolic time range.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	cfg.TimeRange = schema.TimeRange(strings.ToLower(input.Range))
	if _, ok := schema.ValidTimeRanges[cfg.TimeRange]; !ok {
		return fmt.Errorf("invalid time range '%s'. must be 7d, 30d, 90d, 1y, all", input.Range)
	}
	return nil
}

// validateBackendConfigs validates source, cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Source Backend Validation ---
	cfg.SourceBackend = schema.DatabaseBackend(strings.ToLower(input.SourceBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.SourceBackend]; !ok {
		return fmt.Errorf("invalid source backend '%s'. must be sqlite, mysql, postgresql, none", input.SourceBackend)
	}
	cfg.SourceDBConnect = input.SourceDBConnect
	if err := ValidateDatabaseConnectionString(cfg.SourceBackend, cfg.SourceDBConnect); err != nil {
		return err
	}

	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		// History defaults to wherever the cache lives.
		cfg.HistoryBackend = cfg.CacheBackend
		cfg.HistoryDBConnect = cfg.CacheDBConnect
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}
