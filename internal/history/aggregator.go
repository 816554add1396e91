package history

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/rickgao/onthisday/internal/api"
	"github.com/rickgao/onthisday/internal/metrics"
	"github.com/rickgao/onthisday/internal/model"
)

// DaySource fetches the raw entries of one month/day.
type DaySource interface {
	GetDate(ctx context.Context, month, day int) (*api.DateResponse, error)
}

// Archive is an optional persistent second tier behind the day cache.
type Archive interface {
	LoadDay(ctx context.Context, month, day int) ([]model.TimelineEvent, bool, error)
	SaveDay(ctx context.Context, month, day int, events []model.TimelineEvent) error
}

// Config holds cache bounds. A size of 0 means unbounded and a TTL of 0
// means entries never expire.
type Config struct {
	DayCacheSize  int
	DayCacheTTL   time.Duration
	YearCacheSize int
	YearCacheTTL  time.Duration
	LoadTimeout   time.Duration // Bounds a shared day load; 0 selects DefaultLoadTimeout
}

// DefaultLoadTimeout bounds a day load that is detached from its callers.
const DefaultLoadTimeout = 2 * time.Minute

// DefaultConfig keeps every day of the year and never expires entries,
// so each month/day reaches the network at most once per process.
func DefaultConfig() Config {
	return Config{
		DayCacheSize:  366,
		YearCacheSize: 4096,
		LoadTimeout:   DefaultLoadTimeout,
	}
}

// Aggregator fetches, normalizes, merges and caches timeline entries.
type Aggregator struct {
	cfg     Config
	source  DaySource
	archive Archive
	logger  *slog.Logger
	metrics *metrics.Metrics

	days   *expirable.LRU[string, []model.TimelineEvent]
	years  *expirable.LRU[string, []model.TimelineEvent]
	flight singleflight.Group

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithArchive adds a persistent tier consulted before the network.
func WithArchive(ar Archive) Option {
	return func(a *Aggregator) {
		a.archive = ar
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// WithRand sets the random source used by Random.
func WithRand(r *rand.Rand) Option {
	return func(a *Aggregator) {
		a.rng = r
	}
}

// New creates an Aggregator reading from source.
func New(cfg Config, source DaySource, opts ...Option) *Aggregator {
	a := &Aggregator{
		cfg:    cfg,
		source: source,
		logger: slog.Default(),
		days:   expirable.NewLRU[string, []model.TimelineEvent](cfg.DayCacheSize, nil, cfg.DayCacheTTL),
		years:  expirable.NewLRU[string, []model.TimelineEvent](cfg.YearCacheSize, nil, cfg.YearCacheTTL),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cfg.LoadTimeout <= 0 {
		a.cfg.LoadTimeout = DefaultLoadTimeout
	}
	if a.rng == nil {
		seed := uint64(time.Now().UnixNano())
		a.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return a
}

func dayKey(month, day int) string {
	return fmt.Sprintf("all-%d-%d", month, day)
}

func yearKey(d model.Date) string {
	return fmt.Sprintf("%d-%d-%d", d.Year, int(d.Month), d.Day)
}

// CacheLen returns the number of entries in the day and year caches.
func (a *Aggregator) CacheLen() (days, years int) {
	return a.days.Len(), a.years.Len()
}

// Day returns every entry recorded for month/day across all years, sorted by
// year. Concurrent misses on the same key share a single fetch.
func (a *Aggregator) Day(ctx context.Context, month, day int) ([]model.TimelineEvent, error) {
	if !model.ValidMonthDay(month, day) {
		return nil, fmt.Errorf("%w: month %d day %d", ErrInvalidDate, month, day)
	}

	key := dayKey(month, day)
	if events, ok := a.days.Get(key); ok {
		a.metrics.CacheLookup("day", true)
		return events, nil
	}
	a.metrics.CacheLookup("day", false)

	// The shared load outlives any single caller: one caller giving up must
	// not fail the others waiting on the same key.
	ch := a.flight.DoChan(key, func() (any, error) {
		// A previous flight may have filled the key while we waited.
		if events, ok := a.days.Get(key); ok {
			return events, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.LoadTimeout)
		defer cancel()
		events, err := a.load(loadCtx, month, day)
		if err != nil {
			return nil, err
		}
		a.days.Add(key, events)
		return events, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.TimelineEvent), nil
	}
}

// load reads one day from the archive or, failing that, from upstream.
func (a *Aggregator) load(ctx context.Context, month, day int) ([]model.TimelineEvent, error) {
	if a.archive != nil {
		events, ok, err := a.archive.LoadDay(ctx, month, day)
		switch {
		case err != nil:
			a.logger.Warn("archive lookup failed", "month", month, "day", day, "error", err)
		case ok:
			a.logger.Debug("day served from archive", "month", month, "day", day, "events", len(events))
			return events, nil
		}
	}

	start := time.Now()
	resp, err := a.source.GetDate(ctx, month, day)
	a.metrics.ObserveUpstream(err, time.Since(start))
	if err != nil {
		return nil, &FetchError{Month: month, Day: day, Err: err}
	}

	res := resp.ToModel()
	if len(res.Skipped) > 0 {
		for _, s := range res.Skipped {
			a.metrics.SkippedRecord(string(s.Category))
		}
		a.logger.Warn("skipped malformed records",
			"month", month,
			"day", day,
			"skipped", len(res.Skipped),
			"first", res.Skipped[0].Error(),
		)
	}
	events := res.Events
	if events == nil {
		events = []model.TimelineEvent{}
	}

	a.logger.Debug("fetched day", "month", month, "day", day, "events", len(events))

	if a.archive != nil {
		if err := a.archive.SaveDay(ctx, month, day, events); err != nil {
			a.logger.Warn("archive save failed", "month", month, "day", day, "error", err)
		}
	}
	return events, nil
}
