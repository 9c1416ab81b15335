// Package database provides SQLite-based crawl history storage.
//
// Each crawl run produces one row in the crawls table plus one row per
// stored page in the pages table, so past snapshots stay queryable after
// the JSON output files have been moved or deleted.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
