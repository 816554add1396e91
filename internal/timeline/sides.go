package timeline

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/rickgao/onthisday/internal/model"
)

// Options selects how sides are assigned.
type Options struct {
	Pattern model.Pattern // Defaults to PatternDefault
	Start   model.Side    // Side of index 0 for default/reverse; defaults to left
	Custom  []model.Side  // Cycle used by PatternCustom
}

// Sides returns n side labels for the given options.
//
//   - all-left / all-right: every item on that side
//   - default: alternate by index parity, index 0 on Start
//   - reverse: default with parity inverted
//   - custom: Custom repeated to length n; default when Custom is empty
func Sides(n int, opts Options) []model.Side {
	if n <= 0 {
		return []model.Side{}
	}
	start := opts.Start
	if start == "" {
		start = model.SideLeft
	}

	switch opts.Pattern {
	case model.PatternAllLeft:
		return lo.Times(n, func(int) model.Side { return model.SideLeft })
	case model.PatternAllRight:
		return lo.Times(n, func(int) model.Side { return model.SideRight })
	case model.PatternReverse:
		return alternate(n, start.Opposite())
	case model.PatternCustom:
		if len(opts.Custom) == 0 {
			return alternate(n, start)
		}
		return lo.Times(n, func(i int) model.Side { return opts.Custom[i%len(opts.Custom)] })
	default:
		return alternate(n, start)
	}
}

func alternate(n int, first model.Side) []model.Side {
	return lo.Times(n, func(i int) model.Side {
		if i%2 == 0 {
			return first
		}
		return first.Opposite()
	})
}

// ParseCustom parses a comma separated list of sides, e.g. "left,right,right".
func ParseCustom(s string) ([]model.Side, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]model.Side, 0, len(parts))
	for _, p := range parts {
		side, err := model.ParseSide(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("custom pattern: %w", err)
		}
		out = append(out, side)
	}
	return out, nil
}

// Entry pairs an entry with its side.
type Entry struct {
	model.TimelineEvent
	Side model.Side `json:"side"`
}

// Layout assigns sides to events.
func Layout(events []model.TimelineEvent, opts Options) []Entry {
	sides := Sides(len(events), opts)
	return lo.Map(events, func(e model.TimelineEvent, i int) Entry {
		return Entry{TimelineEvent: e, Side: sides[i]}
	})
}
