package model

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Category classifies a timeline entry by the upstream collection it came from.
type Category string

const (
	CategoryEvent Category = "event"
	CategoryBirth Category = "birth"
	CategoryDeath Category = "death"
)

// Categories lists every category in upstream collection order.
var Categories = []Category{CategoryEvent, CategoryBirth, CategoryDeath}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryEvent, CategoryBirth, CategoryDeath:
		return c, nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

// eventNamespace scopes event IDs so they never collide with other UUIDv5 users.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://history.muffinlabs.com/timeline-event"))

// EventID returns the stable identifier of an entry.
func EventID(c Category, year int, text string) string {
	name := string(c) + "|" + strconv.Itoa(year) + "|" + text
	return uuid.NewSHA1(eventNamespace, []byte(name)).String()
}

// TimelineEvent is a normalized historical entry.
// Values are treated as immutable once built; tagging an observed date copies.
type TimelineEvent struct {
	ID           string   `json:"id"`
	Year         int      `json:"year"`                    // Negative for BC
	Text         string   `json:"text"`                    // Never empty
	WikipediaURL string   `json:"wikipedia_url,omitempty"` // Empty when unresolved
	Category     Category `json:"category"`
	ObservedDate *Date    `json:"observed_date,omitempty"` // Set by multi-day queries only
}

// NewTimelineEvent builds an entry and derives its ID.
func NewTimelineEvent(c Category, year int, text, wikipediaURL string) TimelineEvent {
	return TimelineEvent{
		ID:           EventID(c, year, text),
		Year:         year,
		Text:         text,
		WikipediaURL: wikipediaURL,
		Category:     c,
	}
}

// ObservedOn returns a copy of e tagged with the day it was retrieved for.
func (e TimelineEvent) ObservedOn(d Date) TimelineEvent {
	e.ObservedDate = &d
	return e
}
