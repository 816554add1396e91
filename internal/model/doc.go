// Package model defines shared data types used across the onthisday service.
//
// Conventions:
//   - Years: signed integers, negative for BC
//   - Dates: civil dates without a time zone (Date), formatted YYYY-MM-DD
//   - IDs: UUIDv5 strings derived from category, year and text
package model
