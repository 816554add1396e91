package timeline

import (
	"slices"
	"testing"

	"github.com/rickgao/onthisday/internal/model"
)

const (
	L = model.SideLeft
	R = model.SideRight
)

func TestSides(t *testing.T) {
	tests := []struct {
		name string
		n    int
		opts Options
		want []model.Side
	}{
		{"default from left", 4, Options{Pattern: model.PatternDefault, Start: L}, []model.Side{L, R, L, R}},
		{"default from right", 3, Options{Pattern: model.PatternDefault, Start: R}, []model.Side{R, L, R}},
		{"zero options", 3, Options{}, []model.Side{L, R, L}},
		{"reverse from left", 4, Options{Pattern: model.PatternReverse, Start: L}, []model.Side{R, L, R, L}},
		{"reverse from right", 3, Options{Pattern: model.PatternReverse, Start: R}, []model.Side{L, R, L}},
		{"all left", 2, Options{Pattern: model.PatternAllLeft, Start: R}, []model.Side{L, L}},
		{"all right", 3, Options{Pattern: model.PatternAllRight}, []model.Side{R, R, R}},
		{"custom wraps", 5, Options{Pattern: model.PatternCustom, Custom: []model.Side{L, R, R}}, []model.Side{L, R, R, L, R}},
		{"custom without cycle falls back", 3, Options{Pattern: model.PatternCustom, Start: R}, []model.Side{R, L, R}},
		{"empty", 0, Options{Pattern: model.PatternAllRight}, []model.Side{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sides(tt.n, tt.opts)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Sides(%d, %+v) = %v, want %v", tt.n, tt.opts, got, tt.want)
			}
		})
	}
}

func TestSidesDeterministic(t *testing.T) {
	opts := Options{Pattern: model.PatternCustom, Custom: []model.Side{R, L, L, R}}
	if !slices.Equal(Sides(9, opts), Sides(9, opts)) {
		t.Error("Sides should be deterministic")
	}
}

func TestParseCustom(t *testing.T) {
	got, err := ParseCustom("left, right,right")
	if err != nil {
		t.Fatalf("ParseCustom failed: %v", err)
	}
	if !slices.Equal(got, []model.Side{L, R, R}) {
		t.Errorf("ParseCustom = %v", got)
	}

	if got, err := ParseCustom(""); err != nil || got != nil {
		t.Errorf("ParseCustom(\"\") = %v, %v, want nil, nil", got, err)
	}
	if _, err := ParseCustom("left,up"); err == nil {
		t.Error("expected error for unknown side")
	}
}

func TestLayout(t *testing.T) {
	evs := []model.TimelineEvent{
		model.NewTimelineEvent(model.CategoryEvent, 1, "a", ""),
		model.NewTimelineEvent(model.CategoryEvent, 2, "b", ""),
		model.NewTimelineEvent(model.CategoryEvent, 3, "c", ""),
	}
	entries := Layout(evs, Options{Start: R})
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, want := range []model.Side{R, L, R} {
		if entries[i].Side != want || entries[i].Year != i+1 {
			t.Errorf("entries[%d] = %d %s, want %d %s", i, entries[i].Year, entries[i].Side, i+1, want)
		}
	}
}
