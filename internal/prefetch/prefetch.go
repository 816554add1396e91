package prefetch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/onthisday/internal/model"
)

// DayLoader loads and caches one month/day.
type DayLoader interface {
	Day(ctx context.Context, month, day int) ([]model.TimelineEvent, error)
}

// Config holds prefetcher configuration.
type Config struct {
	Interval      time.Duration // Cycle interval (default: 6h)
	LookaheadDays int           // Days to warm starting today (default: 3)
	Concurrency   int           // Max concurrent loads (default: 2)
	Timeout       time.Duration // Per-day timeout (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:      6 * time.Hour,
		LookaheadDays: 3,
		Concurrency:   2,
		Timeout:       30 * time.Second,
	}
}

// Stats summarizes one warm-up cycle.
type Stats struct {
	Days     int
	Fetched  int64
	Errors   int64
	Duration time.Duration
}

// Prefetcher periodically warms the day cache.
type Prefetcher struct {
	cfg    Config
	loader DayLoader
	logger *slog.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Prefetcher.
func New(cfg Config, loader DayLoader, logger *slog.Logger) *Prefetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Prefetcher{
		cfg:    cfg,
		loader: loader,
		logger: logger,
		now:    time.Now,
	}
}

// Start begins the warm-up loop.
func (p *Prefetcher) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("prefetcher started",
		"interval", p.cfg.Interval,
		"lookahead_days", p.cfg.LookaheadDays,
		"concurrency", p.cfg.Concurrency,
	)

	return nil
}

// Stop gracefully shuts down the prefetcher.
func (p *Prefetcher) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("prefetcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Prefetcher) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Warm immediately on start.
	p.warm(p.ctx)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.warm(p.ctx)
		}
	}
}

// Days returns the dates one cycle warms, starting at today.
func (p *Prefetcher) Days() []model.Date {
	today := model.DateOf(p.now())
	days := make([]model.Date, 0, p.cfg.LookaheadDays)
	for i := range p.cfg.LookaheadDays {
		days = append(days, today.AddDays(i))
	}
	return days
}

// warm loads every upcoming day concurrently.
func (p *Prefetcher) warm(ctx context.Context) Stats {
	start := time.Now()
	days := p.Days()

	// Semaphore for bounded concurrency.
	sem := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup
	var fetched, errors atomic.Int64

	for _, d := range days {
		wg.Add(1)
		go func(d model.Date) {
			defer wg.Done()

			// Acquire semaphore slot.
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			if err := p.warmDay(ctx, d); err != nil {
				p.logger.Warn("failed to prefetch day",
					"date", d.String(),
					"error", err,
				)
				errors.Add(1)
				return
			}

			fetched.Add(1)
		}(d)
	}

	wg.Wait()

	stats := Stats{
		Days:     len(days),
		Fetched:  fetched.Load(),
		Errors:   errors.Load(),
		Duration: time.Since(start),
	}
	p.logger.Info("prefetch cycle complete",
		"days", stats.Days,
		"fetched", stats.Fetched,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)
	return stats
}

func (p *Prefetcher) warmDay(ctx context.Context, d model.Date) error {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	_, err := p.loader.Day(ctx, int(d.Month), d.Day)
	return err
}
