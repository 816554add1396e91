package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	content := `
instance:
  id: "otd-1"

api:
  base_url: "http://localhost:9000"
  timeout: 5s
  max_retries: 2

cache:
  day_size: 100
  day_ttl: 1h

server:
  port: 9090
  page_size: 20

database:
  enabled: true
  host: "localhost"
  name: "history"
  user: "otd"
  password: "secret"

logging:
  level: "debug"
  format: "json"
`
	path := writeTempFile(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Instance.ID != "otd-1" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "otd-1")
	}
	if cfg.API.BaseURL != "http://localhost:9000" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("API.Timeout = %v, want 5s", cfg.API.Timeout)
	}
	if cfg.Cache.DayTTL != time.Hour {
		t.Errorf("Cache.DayTTL = %v, want 1h", cfg.Cache.DayTTL)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Database.Enabled || cfg.Database.Name != "history" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
	// Load does not apply defaults
	if cfg.Server.MaxPageSize != 0 {
		t.Errorf("Server.MaxPageSize = %d, want 0 before defaults", cfg.Server.MaxPageSize)
	}
}

func TestLoadEnvSubstitution(t *testing.T) {
	t.Setenv("OTD_TEST_DB_PASSWORD", "from-env")
	t.Setenv("OTD_TEST_BASE_URL", "http://upstream.local")

	content := `
api:
  base_url: "${OTD_TEST_BASE_URL}"
database:
  password: "${OTD_TEST_DB_PASSWORD}"
`
	cfg, err := Load(writeTempFile(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Password != "from-env" {
		t.Errorf("Database.Password = %q, want from-env", cfg.Database.Password)
	}
	if cfg.API.BaseURL != "http://upstream.local" {
		t.Errorf("API.BaseURL = %q, want http://upstream.local", cfg.API.BaseURL)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() missing file: expected error")
	}
	if _, err := Load(writeTempFile(t, "server: [unclosed")); err == nil {
		t.Error("Load() bad yaml: expected error")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(writeTempFile(t, "instance:\n  id: x\n"))
	if err != nil {
		t.Fatalf("LoadWithDefaults() error = %v", err)
	}

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.MaxRetries != DefaultMaxRetries {
		t.Errorf("API.MaxRetries = %d, want %d", cfg.API.MaxRetries, DefaultMaxRetries)
	}
	if cfg.Cache.DaySize != DefaultDayCacheSize {
		t.Errorf("Cache.DaySize = %d, want %d", cfg.Cache.DaySize, DefaultDayCacheSize)
	}
	if cfg.Cache.DayTTL != 0 {
		t.Errorf("Cache.DayTTL = %v, want 0", cfg.Cache.DayTTL)
	}
	if cfg.Server.PageSize != DefaultPageSize || cfg.Server.MaxPageSize != DefaultMaxPageSize {
		t.Errorf("Server page sizes = %d/%d", cfg.Server.PageSize, cfg.Server.MaxPageSize)
	}
	if cfg.Prefetch.LookaheadDays != DefaultLookaheadDays {
		t.Errorf("Prefetch.LookaheadDays = %d, want %d", cfg.Prefetch.LookaheadDays, DefaultLookaheadDays)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
	if cfg.Logging.Level != DefaultLogLevel || cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Instance.ID != "x" {
		t.Errorf("Instance.ID = %q, want x", cfg.Instance.ID)
	}
}

func TestCacheSizes(t *testing.T) {
	cfg, err := LoadWithDefaults(writeTempFile(t, "cache:\n  day_size: -1\n  year_size: 0\n"))
	if err != nil {
		t.Fatalf("LoadWithDefaults() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	day, year := cfg.Cache.Sizes()
	if day != 0 {
		t.Errorf("day size = %d, want 0 (unbounded)", day)
	}
	if year != DefaultYearCacheSize {
		t.Errorf("year size = %d, want %d", year, DefaultYearCacheSize)
	}
}

func TestLoadAndValidateEmptyPath(t *testing.T) {
	cfg, err := LoadAndValidate("")
	if err != nil {
		t.Fatalf("LoadAndValidate(\"\") error = %v", err)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultServerPort)
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadEnvFile() missing file error = %v", err)
	}

	t.Setenv("OTD_TEST_PRESET", "kept")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("OTD_TEST_FROM_FILE=loaded\nOTD_TEST_PRESET=overwritten\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("OTD_TEST_FROM_FILE") })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("OTD_TEST_FROM_FILE"); got != "loaded" {
		t.Errorf("OTD_TEST_FROM_FILE = %q, want loaded", got)
	}
	if got := os.Getenv("OTD_TEST_PRESET"); got != "kept" {
		t.Errorf("OTD_TEST_PRESET = %q, want kept", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "defaults are valid",
			modify:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "relative base url",
			modify:  func(c *Config) { c.API.BaseURL = "history.local" },
			wantErr: `api.base_url must be an absolute URL, got "history.local"`,
		},
		{
			name:    "negative retries",
			modify:  func(c *Config) { c.API.MaxRetries = -1 },
			wantErr: "api.max_retries must be >= 0",
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.API.Timeout = -time.Second },
			wantErr: "api.timeout must be >= 0, got -1s",
		},
		{
			name:    "negative retry backoff",
			modify:  func(c *Config) { c.API.RetryBackoff = -time.Second },
			wantErr: "api.retry_backoff must be >= 0, got -1s",
		},
		{
			name:    "negative cache size is unbounded",
			modify:  func(c *Config) { c.Cache.YearSize = -1 },
			wantErr: "",
		},
		{
			name:    "negative cache ttl",
			modify:  func(c *Config) { c.Cache.DayTTL = -time.Second },
			wantErr: "cache ttls must be >= 0",
		},
		{
			name:    "port out of range",
			modify:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port must be between 1 and 65535, got 70000",
		},
		{
			name:    "max page size below page size",
			modify:  func(c *Config) { c.Server.PageSize = 50; c.Server.MaxPageSize = 20 },
			wantErr: "server.max_page_size (20) cannot be below page_size (50)",
		},
		{
			name:    "prefetch without lookahead",
			modify:  func(c *Config) { c.Prefetch.Enabled = true; c.Prefetch.LookaheadDays = -1 },
			wantErr: "prefetch.lookahead_days must be >= 1",
		},
		{
			name:    "database missing host",
			modify:  func(c *Config) { c.Database.Enabled = true; c.Database.Name = "h"; c.Database.User = "u" },
			wantErr: "database.host is required",
		},
		{
			name: "database min exceeds max",
			modify: func(c *Config) {
				c.Database = DBConfig{Enabled: true, Host: "h", Name: "n", User: "u", MaxConns: 2, MinConns: 5}
			},
			wantErr: "database.min_conns (5) cannot exceed max_conns (2)",
		},
		{
			name:    "disabled database is not checked",
			modify:  func(c *Config) { c.Database.Host = "" },
			wantErr: "",
		},
		{
			name:    "metrics path without slash",
			modify:  func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Path = "metrics" },
			wantErr: `metrics.path must start with /, got "metrics"`,
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: `logging.level must be debug, info, warn or error, got "verbose"`,
		},
		{
			name:    "bad log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: `logging.format must be text or json, got "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				return
			}
			if err.Error() != tt.wantErr {
				t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
