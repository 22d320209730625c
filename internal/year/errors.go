package year

import "errors"

var (
	// ErrTemplateMissingYear is returned when a URL template has no
	// "/year/" path segment.
	ErrTemplateMissingYear = errors.New("url template must contain a /year/ path segment")

	// ErrNoYearInURL is returned by YearOf when a URL has no four-digit
	// path segment.
	ErrNoYearInURL = errors.New("url has no /YYYY/ path segment")

	// ErrNoDataFound is returned when no probed year has timetable data.
	ErrNoDataFound = errors.New("no timetable data found for any probed year")
)
