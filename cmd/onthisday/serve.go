package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rickgao/onthisday/internal/logging"
	"github.com/rickgao/onthisday/internal/metrics"
	"github.com/rickgao/onthisday/internal/prefetch"
	"github.com/rickgao/onthisday/internal/server"
	"github.com/rickgao/onthisday/internal/version"
)

func serve(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file (defaults when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	// Set up structured logging
	logger, logCloser, err := logging.New(cfg.Logging, stdout)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	logger = logger.With("instance_id", cfg.Instance.ID)

	logger.Info("starting onthisday",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"api_url", cfg.API.BaseURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	st, err := buildStack(ctx, cfg, logger, m)
	if err != nil {
		return err
	}
	defer st.Close()

	var pf *prefetch.Prefetcher
	if cfg.Prefetch.Enabled {
		pf = prefetch.New(prefetch.Config{
			Interval:      cfg.Prefetch.Interval,
			LookaheadDays: cfg.Prefetch.LookaheadDays,
			Concurrency:   cfg.Prefetch.Concurrency,
			Timeout:       cfg.API.Timeout,
		}, st.aggregator, logger)
		if err := pf.Start(ctx); err != nil {
			return fmt.Errorf("start prefetcher: %w", err)
		}
	}

	srvCfg := server.Config{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		PageSize:     cfg.Server.PageSize,
		MaxPageSize:  cfg.Server.MaxPageSize,
	}
	if cfg.Metrics.Enabled {
		srvCfg.MetricsPath = cfg.Metrics.Path
	}
	srv := server.New(srvCfg, st.aggregator, server.WithLogger(logger), server.WithMetrics(m))
	if err := srv.Start(ctx); err != nil {
		return err
	}

	logger.Info("onthisday running", "addr", srv.Addr())

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", "error", err)
	}
	if pf != nil {
		if err := pf.Stop(shutdownCtx); err != nil {
			logger.Warn("prefetcher shutdown", "error", err)
		}
	}

	logger.Info("onthisday stopped")
	return nil
}
