package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/rickgao/onthisday/internal/history"
	"github.com/rickgao/onthisday/internal/logging"
	"github.com/rickgao/onthisday/internal/model"
	"github.com/rickgao/onthisday/internal/timeline"
)

func query(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file (defaults when empty)")
	dateStr := fs.String("date", "", "date as YYYY-MM-DD (default today)")
	mode := fs.String("mode", "day", "day, range, year or random")
	count := fs.Int("count", history.DefaultRandomDays, "days mixed in random mode")
	limit := fs.Int("limit", 0, "max rows (0 for all)")
	pattern := fs.String("pattern", "", "side pattern: default, reverse, all-left, all-right, custom")
	custom := fs.String("custom", "", "custom side cycle, e.g. left,right,right")
	category := fs.String("category", "", "event, birth or death")
	if err := fs.Parse(args); err != nil {
		return err
	}

	date := model.DateOf(time.Now())
	if *dateStr != "" {
		d, err := model.ParseDate(*dateStr)
		if err != nil {
			return err
		}
		date = d
	}

	opts, err := layoutOptions(*pattern, *custom)
	if err != nil {
		return err
	}
	var cat model.Category
	if *category != "" {
		if cat, err = model.ParseCategory(*category); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	// Logs go to stderr so the table stays clean.
	logger, logCloser, err := logging.New(cfg.Logging, stderr)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	st, err := buildStack(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer st.Close()
	agg := st.aggregator

	var (
		events   []model.TimelineEvent
		failures []history.DayFailure
		showDate bool
	)
	switch *mode {
	case "day":
		events, err = agg.Day(ctx, int(date.Month), date.Day)
	case "year":
		events, err = agg.Year(ctx, date)
	case "range":
		res := agg.Range(ctx, date)
		events, failures, showDate = res.Events, res.Failures, true
	case "random":
		res := agg.Random(ctx, *count)
		events, failures = res.Events, res.Failures
	default:
		return fmt.Errorf("unknown mode %q (want day, range, year or random)", *mode)
	}
	if err != nil {
		return err
	}

	entries := timeline.Layout(timeline.FilterCategory(events, cat), opts)
	if *limit > 0 {
		entries, _ = timeline.Page(entries, 0, *limit)
	}
	renderTable(stdout, entries, showDate)

	for _, f := range failures {
		fmt.Fprintf(stderr, "warning: %s left out: %v\n", f.Date, f.Err)
	}
	return nil
}

func layoutOptions(pattern, custom string) (timeline.Options, error) {
	p, err := model.ParsePattern(pattern)
	if err != nil {
		return timeline.Options{}, err
	}
	sides, err := timeline.ParseCustom(custom)
	if err != nil {
		return timeline.Options{}, err
	}
	if len(sides) > 0 && pattern == "" {
		p = model.PatternCustom
	}
	return timeline.Options{Pattern: p, Custom: sides}, nil
}
