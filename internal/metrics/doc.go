// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Upstream request outcomes and latency
//   - Cache hits and misses per cache
//   - Records skipped while parsing
//   - Per-day failures of multi-day queries
//   - HTTP requests by route and status
//
// All methods are safe on a nil *Metrics, so components can run without metrics.
package metrics
