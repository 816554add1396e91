package api

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rickgao/onthisday/internal/model"
)

// ErrEmptyText marks a record without a description.
var ErrEmptyText = errors.New("empty text")

// ParseError describes a record that could not be converted.
type ParseError struct {
	Category model.Category
	Year     string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s record (year %q): %v", e.Category, e.Year, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseResult is the outcome of converting a DateResponse.
type ParseResult struct {
	Events  []model.TimelineEvent // Sorted ascending by year
	Skipped []*ParseError         // Records left out
}

// ParseYear converts an upstream year string to a signed integer.
// "44 BC" -> -44, "AD 79" -> 79, "1969" -> 1969.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	sign := 1

	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, " BCE"):
		s, sign = s[:len(s)-4], -1
	case strings.HasSuffix(upper, " BC"):
		s, sign = s[:len(s)-3], -1
	case strings.HasSuffix(upper, " CE"):
		s = s[:len(s)-3]
	case strings.HasSuffix(upper, " AD"):
		s = s[:len(s)-3]
	case strings.HasPrefix(upper, "AD "):
		s = s[3:]
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid year: %w", err)
	}
	return sign * n, nil
}

// WikipediaURL resolves the reference link of a record: the first inline link
// wins, then the first page's desktop URL. Empty when neither is present.
func (r *APIRecord) WikipediaURL() string {
	if len(r.Links) > 0 {
		return r.Links[0].Link
	}
	if len(r.Pages) > 0 {
		p := r.Pages[0]
		if p.ContentURLs != nil && p.ContentURLs.Desktop != nil && p.ContentURLs.Desktop.Page != "" {
			return p.ContentURLs.Desktop.Page
		}
		if p.Content != nil && p.Content.URLs != nil && p.Content.URLs.Desktop != nil {
			return p.Content.URLs.Desktop.Page
		}
	}
	return ""
}

// ToModel converts an APIRecord to model.TimelineEvent.
func (r *APIRecord) ToModel(c model.Category) (model.TimelineEvent, error) {
	year, err := ParseYear(r.Year)
	if err != nil {
		return model.TimelineEvent{}, &ParseError{Category: c, Year: r.Year, Err: err}
	}
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return model.TimelineEvent{}, &ParseError{Category: c, Year: r.Year, Err: ErrEmptyText}
	}
	return model.NewTimelineEvent(c, year, text, r.WikipediaURL()), nil
}

// ToModel converts every collection of the response and sorts the result by year.
func (d *DateResponse) ToModel() ParseResult {
	var res ParseResult

	collections := []struct {
		category model.Category
		records  []APIRecord
	}{
		{model.CategoryEvent, d.Data.Events},
		{model.CategoryBirth, d.Data.Births},
		{model.CategoryDeath, d.Data.Deaths},
	}

	for _, col := range collections {
		for i := range col.records {
			ev, err := col.records[i].ToModel(col.category)
			if err != nil {
				var perr *ParseError
				if errors.As(err, &perr) {
					res.Skipped = append(res.Skipped, perr)
				}
				continue
			}
			res.Events = append(res.Events, ev)
		}
	}

	slices.SortStableFunc(res.Events, func(a, b model.TimelineEvent) int {
		return cmp.Compare(a.Year, b.Year)
	})

	return res
}
