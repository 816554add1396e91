// Package database provides the PostgreSQL connection pool backing the
// day archive.
package database
