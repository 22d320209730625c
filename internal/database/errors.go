package database

import "errors"

var (
	// ErrRunNotFound is returned when no run matches the requested id.
	ErrRunNotFound = errors.New("run not found")

	// ErrMissingDSN is returned when a PostgresSink is opened without a DSN.
	ErrMissingDSN = errors.New("postgres dsn is required")
)
