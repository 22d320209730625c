// Package database stores crawl results.
//
// HistoryDB keeps one row per crawl run in a local SQLite file (via
// modernc.org/sqlite, so no cgo): the year, row counts, a SHA3-256 digest
// of the dataset and the dataset itself. Comparing digests tells whether
// the published timetable changed between runs.
//
// PostgresSink loads a dataset straight into the warehouse tables defined
// in package schema, replacing their contents in one transaction.
package database
