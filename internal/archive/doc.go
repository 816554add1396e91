// Package archive persists fetched days in PostgreSQL so a restarted
// process can serve them without calling the upstream API again.
//
// Tables:
//   - archived_days: one row per month/day that has been stored
//   - timeline_events: the day's events in display order
//
// A day with zero events is still archived; LoadDay distinguishes it from
// a day that was never stored.
package archive
