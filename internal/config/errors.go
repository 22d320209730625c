package config

import (
	"errors"

	"github.com/nao1215/ttscrape/internal/year"
)

// Validation errors returned by Config.Validate and Config.ValidateUpload.
var (
	// ErrMissingTimetableURL is returned when no timetable URL template is set.
	ErrMissingTimetableURL = errors.New("missing timetable url: set TIMETABLE_API_URL or --url")

	// ErrTemplateMissingYear is returned when the timetable URL has no
	// "/year/" segment to substitute.
	ErrTemplateMissingYear = year.ErrTemplateMissingYear

	// ErrMissingUploadCredentials is returned when uploading without
	// HASURAGRES_URL and HASURAGRES_API_KEY.
	ErrMissingUploadCredentials = errors.New("missing upload credentials: set HASURAGRES_URL and HASURAGRES_API_KEY")

	// ErrMissingPostgresDSN is returned when --postgres is set without a DSN.
	ErrMissingPostgresDSN = errors.New("missing postgres dsn: set TTSCRAPE_POSTGRES_DSN or postgres.dsn")

	// ErrInvalidRateLimit is returned when the request budget is not positive.
	ErrInvalidRateLimit = errors.New("invalid rate limit: requests per second must be positive")

	// ErrInvalidSpacing is returned when the minimum spacing is not positive.
	ErrInvalidSpacing = errors.New("invalid spacing: minimum spacing must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidHorizon is returned when the year search horizon is not positive.
	ErrInvalidHorizon = errors.New("invalid year horizon: must be positive")

	// ErrInvalidMaxBodySize is returned when the body limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidBatchSize is returned when the year concurrency is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidYear is returned for a year outside 1900..9999.
	ErrInvalidYear = errors.New("invalid year")

	// ErrMultiYearSink is returned when several years would overwrite the
	// same warehouse tables.
	ErrMultiYearSink = errors.New("--postgres and --upload accept a single year")
)
