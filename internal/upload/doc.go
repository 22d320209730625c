// Package upload sends a crawled dataset to the Hasuragres batch insert
// endpoint.
//
// One request carries all three tables in load order. Each entry holds the
// table metadata (columns and the up/down migrations from package schema)
// and its rows. Tables are written in overwrite mode, so an upload replaces
// whatever the warehouse held before.
package upload
