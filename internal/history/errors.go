package history

import (
	"errors"
	"fmt"

	"github.com/rickgao/onthisday/internal/model"
)

// ErrInvalidDate is returned for a month/day pair that does not exist.
var ErrInvalidDate = errors.New("invalid date")

// FetchError reports a failed day fetch: network failure, non-success status
// or an undecodable body. Nothing is cached when it is returned.
type FetchError struct {
	Month int
	Day   int
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch events for %02d-%02d: %v", e.Month, e.Day, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DayFailure records a day that could not be included in a multi-day result.
type DayFailure struct {
	Date model.Date
	Err  error
}

func (f DayFailure) Error() string {
	return f.Date.String() + ": " + f.Err.Error()
}
