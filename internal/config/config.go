package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/ttscrape/internal/fetch"
	"github.com/nao1215/ttscrape/internal/pipeline"
	"github.com/nao1215/ttscrape/internal/ratelimit"
	"github.com/nao1215/ttscrape/internal/year"
)

// Default configuration values.
const (
	// AppName is used for XDG directory paths.
	AppName = "ttscrape"

	// DefaultRequestsPerSecond is the request budget for the timetable host.
	DefaultRequestsPerSecond = ratelimit.DefaultRequestsPerSecond

	// DefaultMinSpacing is the minimum gap between two requests.
	DefaultMinSpacing = ratelimit.DefaultMinSpacing

	// DefaultTimeout bounds one request.
	DefaultTimeout = fetch.DefaultTimeout

	// DefaultUserAgent identifies the crawler.
	DefaultUserAgent = fetch.DefaultUserAgent

	// DefaultMaxBodySize caps one response body.
	DefaultMaxBodySize = fetch.DefaultMaxBodySize

	// DefaultYearHorizon is how many years the resolver probes each way.
	DefaultYearHorizon = year.DefaultHorizon

	// DefaultOutputDir receives courses.json, classes.json and times.json.
	DefaultOutputDir = "."

	// DefaultBatchSize is how many years are crawled at once.
	DefaultBatchSize = pipeline.DefaultConcurrency
)

// Config holds every ttscrape setting. It is built once by the command
// line and passed down explicitly.
type Config struct {
	// TimetableURL is the URL template with a "/year/" segment,
	// e.g. https://timetable.example.edu/year/subjectSearch.html.
	TimetableURL string

	// Years to crawl. Empty means resolve the newest published year.
	Years []int

	// YearHorizon bounds year resolution in each direction.
	YearHorizon int

	// RequestsPerSecond and MinSpacing are the shared request budget.
	RequestsPerSecond int
	MinSpacing        time.Duration

	Timeout     time.Duration
	UserAgent   string
	MaxBodySize int64

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// StrictClasses fails a course page on its first malformed class.
	// When false the class is logged and skipped.
	StrictClasses bool

	// ParseWorkers bounds concurrent page parsing. Zero means GOMAXPROCS.
	ParseWorkers int

	// BatchSize is how many years are processed at once.
	BatchSize int

	// OutputDir receives the JSON dataset. "{year}" is replaced per year.
	OutputDir string

	// ReportFile, when set, receives a Markdown summary.
	ReportFile string

	// DBDir holds the SQLite run history. SaveToDB enables it.
	DBDir    string
	SaveToDB bool

	// PostgresDSN and LoadPostgres control the direct warehouse load.
	PostgresDSN  string
	LoadPostgres bool

	// UploadURL and UploadAPIKey address the batch insert endpoint.
	UploadURL    string
	UploadAPIKey string
	Upload       bool
	DryRun       bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit YAML config path.
	ConfigFilePath string
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		YearHorizon:       DefaultYearHorizon,
		RequestsPerSecond: DefaultRequestsPerSecond,
		MinSpacing:        DefaultMinSpacing,
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		StrictClasses:     true,
		BatchSize:         DefaultBatchSize,
		OutputDir:         DefaultOutputDir,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// XDGDataDir returns the data directory, e.g. ~/.local/share/ttscrape.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Template parses TimetableURL.
func (c *Config) Template() (year.Template, error) {
	if c.TimetableURL == "" {
		return year.Template{}, ErrMissingTimetableURL
	}
	return year.NewTemplate(c.TimetableURL)
}

// Validate checks the settings needed to crawl.
func (c *Config) Validate() error {
	if _, err := c.Template(); err != nil {
		return err
	}
	if c.RequestsPerSecond <= 0 {
		return ErrInvalidRateLimit
	}
	if c.MinSpacing <= 0 {
		return ErrInvalidSpacing
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.YearHorizon <= 0 {
		return ErrInvalidHorizon
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	for _, y := range c.Years {
		if y < 1900 || y > 9999 {
			return fmt.Errorf("%w: %d", ErrInvalidYear, y)
		}
	}
	if len(c.Years) > 1 && (c.Upload || c.LoadPostgres) {
		return ErrMultiYearSink
	}
	if c.LoadPostgres && c.PostgresDSN == "" {
		return ErrMissingPostgresDSN
	}
	if c.Upload {
		return c.ValidateUpload()
	}
	return nil
}

// ValidateUpload checks the upload credentials.
func (c *Config) ValidateUpload() error {
	if c.UploadURL == "" || c.UploadAPIKey == "" {
		return ErrMissingUploadCredentials
	}
	return nil
}
