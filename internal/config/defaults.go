package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID       = "onthisday"
	DefaultBaseURL          = "https://history.muffinlabs.com"
	DefaultAPITimeout       = 30 * time.Second
	DefaultMaxRetries       = 3
	DefaultRetryBackoff     = 1 * time.Second
	DefaultDayCacheSize     = 366
	DefaultYearCacheSize    = 4096
	DefaultServerPort       = 8080
	DefaultReadTimeout      = 10 * time.Second
	DefaultWriteTimeout     = 60 * time.Second
	DefaultShutdownTimeout  = 15 * time.Second
	DefaultPageSize         = 10
	DefaultMaxPageSize      = 100
	DefaultPrefetchInterval = 6 * time.Hour
	DefaultLookaheadDays    = 3
	DefaultPrefetchWorkers  = 2
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultMetricsPath      = "/metrics"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultLogMaxSizeMB     = 100
	DefaultLogMaxBackups    = 5
	DefaultLogMaxAgeDays    = 28
)

// Defaults returns a configuration with every default applied.
func Defaults() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}

	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Cache defaults. TTLs stay 0: upstream days do not change.
	if c.Cache.DaySize == 0 {
		c.Cache.DaySize = DefaultDayCacheSize
	}
	if c.Cache.YearSize == 0 {
		c.Cache.YearSize = DefaultYearCacheSize
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.PageSize == 0 {
		c.Server.PageSize = DefaultPageSize
	}
	if c.Server.MaxPageSize == 0 {
		c.Server.MaxPageSize = DefaultMaxPageSize
	}

	// Prefetch defaults
	if c.Prefetch.Interval == 0 {
		c.Prefetch.Interval = DefaultPrefetchInterval
	}
	if c.Prefetch.LookaheadDays == 0 {
		c.Prefetch.LookaheadDays = DefaultLookaheadDays
	}
	if c.Prefetch.Concurrency == 0 {
		c.Prefetch.Concurrency = DefaultPrefetchWorkers
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Metrics defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}
}
