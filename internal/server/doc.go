// Package server exposes the timeline over HTTP.
//
// Routes (all JSON):
//   - GET /health
//   - GET /api/v1/days/{month}/{day}           every year of a month/day
//   - GET /api/v1/days/{month}/{day}/groups    same, split by category
//   - GET /api/v1/days/{month}/{day}/stream    WebSocket page feed
//   - GET /api/v1/dates/{date}                 one year of a month/day
//   - GET /api/v1/dates/{date}/range           three consecutive days
//   - GET /api/v1/since/{year}                 today's month/day in year
//   - GET /api/v1/random                       a mix of random days
//
// List routes accept offset, limit, pattern, start, custom and category.
package server
