package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrLayout is returned when a page lacks a landmark the extractor
	// relies on. The page structure changed and must be looked at.
	ErrLayout = errors.New("unexpected page layout")

	// ErrInvalidUOC is returned when a listing row's unit value is not an
	// integer.
	ErrInvalidUOC = errors.New("invalid units of credit")

	// ErrMissingSentinel is returned when a class's "Meeting Information"
	// block is never closed by "Class Notes".
	ErrMissingSentinel = errors.New(`"Meeting Information" without a following "Class Notes"`)

	// ErrTruncatedMeetingBlock is returned when a meeting day is followed
	// by fewer than three fields.
	ErrTruncatedMeetingBlock = errors.New("meeting block ends before time, location and weeks")

	// ErrUnparsableDateField is the sentinel behind UnparsableDateFieldError.
	ErrUnparsableDateField = errors.New("unparsable date field")
)

// UnparsableDateFieldError reports a date-bearing field that lacks the
// separator its value is split on.
type UnparsableDateFieldError struct {
	Field string
	Value string
}

func (e *UnparsableDateFieldError) Error() string {
	return fmt.Sprintf("unparsable %s %q", e.Field, e.Value)
}

// Unwrap lets errors.Is match ErrUnparsableDateField.
func (e *UnparsableDateFieldError) Unwrap() error {
	return ErrUnparsableDateField
}
