package timeline

import (
	"github.com/samber/lo"

	"github.com/rickgao/onthisday/internal/model"
)

// DefaultPageSize matches the batch loaded per scroll step.
const DefaultPageSize = 10

// Page returns items[offset:offset+limit] clamped to bounds and whether more
// items follow. A limit <= 0 selects DefaultPageSize.
func Page[T any](items []T, offset, limit int) ([]T, bool) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	page := lo.Subset(items, offset, uint(limit))
	return page, offset+len(page) < len(items)
}

// Groups splits entries by category.
type Groups struct {
	Events []model.TimelineEvent `json:"events"`
	Births []model.TimelineEvent `json:"births"`
	Deaths []model.TimelineEvent `json:"deaths"`
}

// Group splits events by category, preserving order within each group.
func Group(events []model.TimelineEvent) Groups {
	by := lo.GroupBy(events, func(e model.TimelineEvent) model.Category { return e.Category })
	orEmpty := func(s []model.TimelineEvent) []model.TimelineEvent {
		if s == nil {
			return []model.TimelineEvent{}
		}
		return s
	}
	return Groups{
		Events: orEmpty(by[model.CategoryEvent]),
		Births: orEmpty(by[model.CategoryBirth]),
		Deaths: orEmpty(by[model.CategoryDeath]),
	}
}

// FilterCategory keeps entries of category c. An empty c keeps everything.
func FilterCategory(events []model.TimelineEvent, c model.Category) []model.TimelineEvent {
	if c == "" {
		return events
	}
	return lo.Filter(events, func(e model.TimelineEvent, _ int) bool { return e.Category == c })
}
