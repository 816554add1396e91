package config

import "time"

// Config is the root configuration of an onthisday instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
	Prefetch PrefetchConfig `yaml:"prefetch"`
	Database DBConfig       `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InstanceConfig identifies this instance in logs.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds upstream history API settings.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// CacheConfig bounds the in-memory caches. A size of 0 selects the default
// and a negative size removes the bound. TTL 0 never expires.
type CacheConfig struct {
	DaySize  int           `yaml:"day_size"`
	DayTTL   time.Duration `yaml:"day_ttl"`
	YearSize int           `yaml:"year_size"`
	YearTTL  time.Duration `yaml:"year_ttl"`
}

// Sizes returns the cache capacities with 0 meaning unbounded.
func (c CacheConfig) Sizes() (day, year int) {
	return max(c.DaySize, 0), max(c.YearSize, 0)
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	PageSize        int           `yaml:"page_size"`
	MaxPageSize     int           `yaml:"max_page_size"`
}

// PrefetchConfig holds cache warm-up settings.
type PrefetchConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	LookaheadDays int           `yaml:"lookahead_days"`
	Concurrency   int           `yaml:"concurrency"`
}

// DBConfig holds the optional Postgres archive connection.
type DBConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds log output settings. File output is rotated.
type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text or json
	File       string `yaml:"file"`   // empty logs to stdout
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}
