// Package report writes crawl output.
//
// WriteDataset and ReadDataset store a dataset as courses.json,
// classes.json and times.json in one directory, the layout the uploader
// reads back. The Writer implementations render a Summary of a run as
// plain text for the terminal, JSON, or Markdown with a mermaid chart of
// delivery modes.
package report
