package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must be >= 0, got %s", c.API.Timeout)
	}
	if c.API.RetryBackoff < 0 {
		return fmt.Errorf("api.retry_backoff must be >= 0, got %s", c.API.RetryBackoff)
	}

	if c.Cache.DayTTL < 0 || c.Cache.YearTTL < 0 {
		return errors.New("cache ttls must be >= 0")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.PageSize < 1 {
		return errors.New("server.page_size must be >= 1")
	}
	if c.Server.MaxPageSize < c.Server.PageSize {
		return fmt.Errorf("server.max_page_size (%d) cannot be below page_size (%d)", c.Server.MaxPageSize, c.Server.PageSize)
	}

	if c.Prefetch.Enabled {
		if c.Prefetch.LookaheadDays < 1 {
			return errors.New("prefetch.lookahead_days must be >= 1")
		}
		if c.Prefetch.Concurrency < 1 {
			return errors.New("prefetch.concurrency must be >= 1")
		}
	}

	if c.Database.Enabled {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
