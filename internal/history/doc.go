// Package history implements the Event Aggregator.
//
// The Aggregator:
//   - Fetches one day of entries (all years) from the history API
//   - Normalizes, sorts and caches them per month/day
//   - Merges a start date with the following days, tagging each entry with
//     the day it was observed for and reporting per-day failures
//   - Filters a day to a single year with its own cache
//   - Mixes random days into a deduplicated, shuffled sequence
//
// Cached slices are shared between callers and must be treated as read-only.
package history
