package history

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/rickgao/onthisday/internal/model"
)

// RangeDays is the number of consecutive days merged by Range.
const RangeDays = 3

// DefaultRandomDays is the number of days mixed by Random when count <= 0.
const DefaultRandomDays = 5

// randomFanout bounds concurrent day fetches in Random.
const randomFanout = 4

// RangeResult is the merged outcome of a multi-day query.
type RangeResult struct {
	Start    model.Date
	Events   []model.TimelineEvent // Sorted by observed date, then year
	Failures []DayFailure          // Days left out, in date order
}

// RandomResult is the outcome of a random mix.
type RandomResult struct {
	Dates    []model.Date // Reference year 2000
	Events   []model.TimelineEvent
	Failures []DayFailure
}

// Range merges start and the following RangeDays-1 days. A failed day is
// recorded in Failures and skipped; when every day fails Events is empty.
// Days are fetched concurrently since the merge re-sorts anyway.
func (a *Aggregator) Range(ctx context.Context, start model.Date) RangeResult {
	perDay := make([][]model.TimelineEvent, RangeDays)
	errs := make([]error, RangeDays)

	var g errgroup.Group
	for i := 0; i < RangeDays; i++ {
		d := start.AddDays(i)
		g.Go(func() error {
			events, err := a.Day(ctx, int(d.Month), d.Day)
			if err != nil {
				errs[i] = err
				return nil
			}
			tagged := make([]model.TimelineEvent, len(events))
			for j, e := range events {
				tagged[j] = e.ObservedOn(d)
			}
			perDay[i] = tagged
			return nil
		})
	}
	_ = g.Wait()

	res := RangeResult{Start: start, Events: []model.TimelineEvent{}}
	for i := 0; i < RangeDays; i++ {
		if errs[i] != nil {
			d := start.AddDays(i)
			a.metrics.DayFailure()
			a.logger.Warn("day fetch failed in range", "date", d.String(), "error", errs[i])
			res.Failures = append(res.Failures, DayFailure{Date: d, Err: errs[i]})
			continue
		}
		res.Events = append(res.Events, perDay[i]...)
	}

	SortByObservedDate(res.Events)
	return res
}

// SortByObservedDate stably sorts by observed date, then year. Entries
// without an observed date compare equal on the first key.
func SortByObservedDate(events []model.TimelineEvent) {
	slices.SortStableFunc(events, func(a, b model.TimelineEvent) int {
		if a.ObservedDate != nil && b.ObservedDate != nil {
			if c := a.ObservedDate.Compare(*b.ObservedDate); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Year, b.Year)
	})
}

// Year returns the entries of date's month/day whose year equals date.Year,
// in their original order. The filtered slice is cached separately from the
// all-years day.
func (a *Aggregator) Year(ctx context.Context, date model.Date) ([]model.TimelineEvent, error) {
	key := yearKey(date)
	if events, ok := a.years.Get(key); ok {
		a.metrics.CacheLookup("year", true)
		return events, nil
	}
	a.metrics.CacheLookup("year", false)

	all, err := a.Day(ctx, int(date.Month), date.Day)
	if err != nil {
		return nil, err
	}

	filtered := FilterYear(all, date.Year)
	a.years.Add(key, filtered)
	return filtered, nil
}

// FilterYear keeps the entries of a single year, preserving order.
func FilterYear(events []model.TimelineEvent, year int) []model.TimelineEvent {
	return lo.Filter(events, func(e model.TimelineEvent, _ int) bool {
		return e.Year == year
	})
}

// Random mixes count random days of the year into one deduplicated,
// shuffled sequence.
func (a *Aggregator) Random(ctx context.Context, count int) RandomResult {
	if count <= 0 {
		count = DefaultRandomDays
	}

	dates := a.randomDates(count)
	perDay := make([][]model.TimelineEvent, len(dates))
	errs := make([]error, len(dates))

	var g errgroup.Group
	g.SetLimit(randomFanout)
	for i, d := range dates {
		g.Go(func() error {
			perDay[i], errs[i] = a.Day(ctx, int(d.Month), d.Day)
			return nil
		})
	}
	_ = g.Wait()

	res := RandomResult{Dates: dates}
	var merged []model.TimelineEvent
	for i, d := range dates {
		if errs[i] != nil {
			a.logger.Warn("day fetch failed in random mix", "date", d.String(), "error", errs[i])
			res.Failures = append(res.Failures, DayFailure{Date: d, Err: errs[i]})
			continue
		}
		merged = append(merged, perDay[i]...)
	}

	res.Events = Dedup(merged)
	a.rngMu.Lock()
	a.rng.Shuffle(len(res.Events), func(i, j int) {
		res.Events[i], res.Events[j] = res.Events[j], res.Events[i]
	})
	a.rngMu.Unlock()
	return res
}

// randomDates picks count month/day pairs in the leap reference year 2000.
func (a *Aggregator) randomDates(count int) []model.Date {
	a.rngMu.Lock()
	defer a.rngMu.Unlock()

	return lo.Times(count, func(int) model.Date {
		month := time.Month(a.rng.IntN(12) + 1)
		day := a.rng.IntN(model.DaysIn(month, 2000)) + 1
		return model.Date{Year: 2000, Month: month, Day: day}
	})
}

// Dedup returns a new slice keeping the first entry for each year and text.
// Text is compared after NFC normalization and case folding.
func Dedup(events []model.TimelineEvent) []model.TimelineEvent {
	fold := cases.Fold()
	out := lo.UniqBy(events, func(e model.TimelineEvent) string {
		text := fold.String(norm.NFC.String(strings.TrimSpace(e.Text)))
		return strconv.Itoa(e.Year) + "|" + text
	})
	if out == nil {
		out = []model.TimelineEvent{}
	}
	return out
}
