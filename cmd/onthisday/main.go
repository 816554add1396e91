// Command onthisday serves and queries "on this day in history" timelines.
//
// Usage:
//
//	onthisday [serve] [-config path]
//	onthisday query [-config path] [-date YYYY-MM-DD] [-mode day|range|year|random]
//	onthisday version
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/onthisday/internal/api"
	"github.com/rickgao/onthisday/internal/archive"
	"github.com/rickgao/onthisday/internal/config"
	"github.com/rickgao/onthisday/internal/database"
	"github.com/rickgao/onthisday/internal/history"
	"github.com/rickgao/onthisday/internal/metrics"
	"github.com/rickgao/onthisday/internal/version"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run dispatches to a subcommand. Without one it serves.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		return serve(ctx, args, stdout)
	case "query":
		return query(ctx, args, stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, version.String())
		return nil
	default:
		return fmt.Errorf("unknown command %q (want serve, query or version)", cmd)
	}
}

// loadConfig reads .env, then the YAML config. An empty path uses defaults.
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	return config.LoadAndValidate(path)
}

// stack is the shared wiring behind both serve and query.
type stack struct {
	aggregator *history.Aggregator
	pool       *pgxpool.Pool
}

func (s *stack) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// buildStack creates the upstream client, optional archive and aggregator.
func buildStack(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*stack, error) {
	client := api.NewClient(
		cfg.API.BaseURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
		api.WithUserAgent(version.UserAgent()),
	)

	opts := []history.Option{
		history.WithLogger(logger),
		history.WithMetrics(m),
	}

	s := &stack{}
	if cfg.Database.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect archive database: %w", err)
		}
		store := archive.New(pool, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		s.pool = pool
		opts = append(opts, history.WithArchive(store))
		logger.Info("archive enabled")
	}

	daySize, yearSize := cfg.Cache.Sizes()
	s.aggregator = history.New(history.Config{
		DayCacheSize:  daySize,
		DayCacheTTL:   cfg.Cache.DayTTL,
		YearCacheSize: yearSize,
		YearCacheTTL:  cfg.Cache.YearTTL,
	}, client, opts...)
	return s, nil
}
