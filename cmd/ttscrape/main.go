// Package main provides the entry point for the ttscrape CLI.
//
// ttscrape crawls a university class timetable website, extracts every
// course, class and meeting time for a teaching year, and publishes the
// flattened dataset as JSON files, a SQLite run history, a Postgres
// warehouse or a batch insert endpoint.
//
// Usage:
//
//	ttscrape scrape
//	ttscrape scrape --year 2025 --upload
//
// See --help for all available options.
package main

func main() {
	Execute()
}
