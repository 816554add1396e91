// Package timeline arranges entries for an alternating two-sided timeline:
// side assignment, paging and grouping by category. Everything here is pure.
package timeline
