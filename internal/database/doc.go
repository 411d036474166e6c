// Package database provides SQLite-based storage for crawl history.
//
// This package implements the CrawlDB, which stores one row per finished
// crawl: queryable summary columns (domain, timing, counters) plus the
// full report serialized as JSON.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
