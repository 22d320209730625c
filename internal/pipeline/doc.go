// Package pipeline runs the stages of one timetable crawl in order.
//
// A Result starts with just a year. The crawl step fills in the courses,
// the flatten step derives the relational dataset and its summary, and the
// remaining steps hand that dataset to its sinks: JSON files, the run
// history, a Markdown report, PostgreSQL and the batch insert endpoint.
// Each sink is optional; the command line decides which steps to add.
//
// BatchProcessor runs one pipeline per year with bounded concurrency. All
// pipelines share the crawler and therefore its rate limit.
package pipeline
