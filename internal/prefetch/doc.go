// Package prefetch keeps upcoming days warm in the aggregator cache.
//
// The Prefetcher:
//   - Runs once on start, then every interval
//   - Warms today through today+lookahead-1
//   - Bounds concurrent upstream fetches with a semaphore
//   - Logs a summary per cycle; failed days are retried next cycle
package prefetch
