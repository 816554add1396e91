package history

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/onthisday/internal/api"
	"github.com/rickgao/onthisday/internal/model"
)

// fakeSource serves canned responses per month/day and counts calls.
type fakeSource struct {
	mu        sync.Mutex
	calls     map[string]int
	responses map[string]*api.DateResponse
	failing   map[string]error
	delay     time.Duration
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls:     make(map[string]int),
		responses: make(map[string]*api.DateResponse),
		failing:   make(map[string]error),
	}
}

func mdKey(month, day int) string { return fmt.Sprintf("%d/%d", month, day) }

func (f *fakeSource) set(month, day int, resp *api.DateResponse) {
	f.responses[mdKey(month, day)] = resp
}

func (f *fakeSource) fail(month, day int, err error) {
	f.failing[mdKey(month, day)] = err
}

func (f *fakeSource) count(month, day int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[mdKey(month, day)]
}

func (f *fakeSource) GetDate(ctx context.Context, month, day int) (*api.DateResponse, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	k := mdKey(month, day)
	f.mu.Lock()
	f.calls[k]++
	f.mu.Unlock()

	if err := f.failing[k]; err != nil {
		return nil, err
	}
	if resp, ok := f.responses[k]; ok {
		return resp, nil
	}
	return &api.DateResponse{}, nil
}

// gatedSource blocks every fetch until release is closed or ctx ends.
type gatedSource struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (g *gatedSource) GetDate(ctx context.Context, month, day int) (*api.DateResponse, error) {
	g.calls.Add(1)
	select {
	case g.entered <- struct{}{}:
	default:
	}
	select {
	case <-g.release:
		return events(rec(1969, "Moon landing")), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func events(records ...api.APIRecord) *api.DateResponse {
	return &api.DateResponse{Data: api.DateData{Events: records}}
}

func rec(year int, text string) api.APIRecord {
	return api.APIRecord{Year: fmt.Sprint(year), Text: text}
}

// fakeArchive is an in-memory Archive.
type fakeArchive struct {
	mu      sync.Mutex
	days    map[string][]model.TimelineEvent
	saves   int
	loadErr error
}

func (f *fakeArchive) LoadDay(ctx context.Context, month, day int) ([]model.TimelineEvent, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	evs, ok := f.days[mdKey(month, day)]
	return evs, ok, nil
}

func (f *fakeArchive) SaveDay(ctx context.Context, month, day int, events []model.TimelineEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.days == nil {
		f.days = make(map[string][]model.TimelineEvent)
	}
	f.days[mdKey(month, day)] = events
	f.saves++
	return nil
}

func TestDay(t *testing.T) {
	t.Run("second call served from cache", func(t *testing.T) {
		src := newFakeSource()
		src.set(7, 20, &api.DateResponse{Data: api.DateData{
			Events: []api.APIRecord{rec(1969, "Moon landing")},
			Deaths: []api.APIRecord{rec(1900, "X")},
		}})
		agg := New(DefaultConfig(), src)

		first, err := agg.Day(context.Background(), 7, 20)
		if err != nil {
			t.Fatalf("Day failed: %v", err)
		}
		second, err := agg.Day(context.Background(), 7, 20)
		if err != nil {
			t.Fatalf("Day failed: %v", err)
		}

		if got := src.count(7, 20); got != 1 {
			t.Errorf("network calls = %d, want 1", got)
		}
		if len(first) != 2 || len(second) != 2 {
			t.Fatalf("len = %d/%d, want 2", len(first), len(second))
		}
		if &first[0] != &second[0] {
			t.Error("cached slice should be shared")
		}
		if first[0].Year != 1900 || first[1].Year != 1969 {
			t.Errorf("years = %d, %d, want 1900, 1969", first[0].Year, first[1].Year)
		}
	})

	t.Run("failure is not cached", func(t *testing.T) {
		src := newFakeSource()
		cause := &api.APIError{StatusCode: 503, Message: "Service Unavailable"}
		src.fail(1, 2, cause)
		agg := New(DefaultConfig(), src)

		_, err := agg.Day(context.Background(), 1, 2)
		var fe *FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("expected *FetchError, got %T (%v)", err, err)
		}
		if fe.Month != 1 || fe.Day != 2 {
			t.Errorf("FetchError = %d/%d, want 1/2", fe.Month, fe.Day)
		}
		var apiErr *api.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != 503 {
			t.Errorf("cause not preserved: %v", err)
		}

		delete(src.failing, mdKey(1, 2))
		if _, err := agg.Day(context.Background(), 1, 2); err != nil {
			t.Fatalf("retry failed: %v", err)
		}
		if got := src.count(1, 2); got != 2 {
			t.Errorf("network calls = %d, want 2", got)
		}
	})

	t.Run("invalid dates", func(t *testing.T) {
		agg := New(DefaultConfig(), newFakeSource())
		for _, md := range [][2]int{{0, 1}, {13, 1}, {2, 30}, {4, 31}, {5, 0}} {
			if _, err := agg.Day(context.Background(), md[0], md[1]); !errors.Is(err, ErrInvalidDate) {
				t.Errorf("Day(%d, %d) error = %v, want ErrInvalidDate", md[0], md[1], err)
			}
		}
		if _, err := agg.Day(context.Background(), 2, 29); err != nil {
			t.Errorf("Day(2, 29) error = %v, want nil", err)
		}
	})

	t.Run("concurrent misses share one fetch", func(t *testing.T) {
		src := newFakeSource()
		src.delay = 50 * time.Millisecond
		agg := New(DefaultConfig(), src)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := agg.Day(context.Background(), 3, 14); err != nil {
					t.Errorf("Day failed: %v", err)
				}
			}()
		}
		wg.Wait()

		if got := src.count(3, 14); got != 1 {
			t.Errorf("network calls = %d, want 1", got)
		}
	})

	t.Run("cancelled caller does not fail waiting callers", func(t *testing.T) {
		src := newGatedSource()
		agg := New(DefaultConfig(), src)

		firstCtx, cancelFirst := context.WithCancel(context.Background())
		firstErr := make(chan error, 1)
		go func() {
			_, err := agg.Day(firstCtx, 7, 20)
			firstErr <- err
		}()
		<-src.entered

		type result struct {
			events []model.TimelineEvent
			err    error
		}
		second := make(chan result, 1)
		go func() {
			evs, err := agg.Day(context.Background(), 7, 20)
			second <- result{evs, err}
		}()
		// Let the second caller join the running fetch.
		time.Sleep(20 * time.Millisecond)

		cancelFirst()
		select {
		case err := <-firstErr:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("first caller err = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("first caller did not return after cancel")
		}

		close(src.release)
		select {
		case res := <-second:
			if res.err != nil {
				t.Fatalf("second caller err = %v, want nil", res.err)
			}
			if len(res.events) != 1 {
				t.Errorf("second caller events = %d, want 1", len(res.events))
			}
		case <-time.After(2 * time.Second):
			t.Fatal("second caller did not return")
		}

		if got := src.calls.Load(); got != 1 {
			t.Errorf("network calls = %d, want 1", got)
		}
		if days, _ := agg.CacheLen(); days != 1 {
			t.Errorf("cached days = %d, want 1", days)
		}
	})

	t.Run("bounded cache evicts oldest", func(t *testing.T) {
		src := newFakeSource()
		agg := New(Config{DayCacheSize: 1}, src)

		agg.Day(context.Background(), 1, 1)
		agg.Day(context.Background(), 1, 2)
		agg.Day(context.Background(), 1, 1)

		if got := src.count(1, 1); got != 2 {
			t.Errorf("network calls for 1/1 = %d, want 2", got)
		}
		if days, _ := agg.CacheLen(); days != 1 {
			t.Errorf("day cache len = %d, want 1", days)
		}
	})

	t.Run("malformed records skipped", func(t *testing.T) {
		src := newFakeSource()
		src.set(5, 5, events(rec(1800, "ok"), api.APIRecord{Year: "n/a", Text: "bad"}))
		agg := New(DefaultConfig(), src)

		got, err := agg.Day(context.Background(), 5, 5)
		if err != nil {
			t.Fatalf("Day failed: %v", err)
		}
		if len(got) != 1 || got[0].Text != "ok" {
			t.Errorf("events = %+v, want only 'ok'", got)
		}
	})
}

func TestDayArchive(t *testing.T) {
	t.Run("archive hit skips network", func(t *testing.T) {
		src := newFakeSource()
		ar := &fakeArchive{days: map[string][]model.TimelineEvent{
			mdKey(6, 6): {model.NewTimelineEvent(model.CategoryEvent, 1944, "D-Day", "")},
		}}
		agg := New(DefaultConfig(), src, WithArchive(ar))

		got, err := agg.Day(context.Background(), 6, 6)
		if err != nil {
			t.Fatalf("Day failed: %v", err)
		}
		if len(got) != 1 || got[0].Year != 1944 {
			t.Errorf("events = %+v", got)
		}
		if src.count(6, 6) != 0 {
			t.Error("network should not be called on archive hit")
		}
	})

	t.Run("fetched day is saved", func(t *testing.T) {
		src := newFakeSource()
		src.set(6, 7, events(rec(1494, "Treaty")))
		ar := &fakeArchive{}
		agg := New(DefaultConfig(), src, WithArchive(ar))

		if _, err := agg.Day(context.Background(), 6, 7); err != nil {
			t.Fatalf("Day failed: %v", err)
		}
		if ar.saves != 1 || len(ar.days[mdKey(6, 7)]) != 1 {
			t.Errorf("saves = %d, stored = %v", ar.saves, ar.days)
		}
	})

	t.Run("archive error falls back to network", func(t *testing.T) {
		src := newFakeSource()
		src.set(6, 8, events(rec(1949, "Orwell")))
		ar := &fakeArchive{loadErr: errors.New("connection refused")}
		agg := New(DefaultConfig(), src, WithArchive(ar))

		got, err := agg.Day(context.Background(), 6, 8)
		if err != nil {
			t.Fatalf("Day failed: %v", err)
		}
		if len(got) != 1 || src.count(6, 8) != 1 {
			t.Errorf("events = %d, calls = %d, want 1/1", len(got), src.count(6, 8))
		}
	})
}

func TestNewDefaultsRand(t *testing.T) {
	agg := New(DefaultConfig(), newFakeSource(), WithRand(rand.New(rand.NewPCG(1, 2))))
	if agg.rng == nil || agg.logger == nil {
		t.Error("rng and logger should be set")
	}
}
