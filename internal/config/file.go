package config

import "time"

// File is the structure of the .ttscrape YAML file. Every field is
// optional; unset fields leave the current value alone.
type File struct {
	TimetableURL string `yaml:"timetable_url,omitempty"`
	YearHorizon  int    `yaml:"year_horizon,omitempty"`
	Years        []int  `yaml:"years,omitempty"`

	RateLimit RateLimitSection `yaml:"rate_limit,omitempty"`
	HTTP      HTTPSection      `yaml:"http,omitempty"`
	Parse     ParseSection     `yaml:"parse,omitempty"`
	Output    OutputSection    `yaml:"output,omitempty"`
	History   HistorySection   `yaml:"history,omitempty"`
	Postgres  PostgresSection  `yaml:"postgres,omitempty"`
	Upload    UploadSection    `yaml:"upload,omitempty"`
}

// RateLimitSection configures the request budget.
type RateLimitSection struct {
	RequestsPerSecond int           `yaml:"requests_per_second,omitempty"`
	MinSpacing        time.Duration `yaml:"min_spacing,omitempty"`
}

// HTTPSection configures the fetch client.
type HTTPSection struct {
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	UserAgent   string        `yaml:"user_agent,omitempty"`
	MaxBodySize int64         `yaml:"max_body_size,omitempty"`
	Proxy       string        `yaml:"proxy,omitempty"`
}

// ParseSection configures extraction.
type ParseSection struct {
	StrictClasses *bool `yaml:"strict_classes,omitempty"`
	Workers       int   `yaml:"workers,omitempty"`
	BatchSize     int   `yaml:"batch_size,omitempty"`
}

// OutputSection configures the JSON dataset and report.
type OutputSection struct {
	Dir    string `yaml:"dir,omitempty"`
	Report string `yaml:"report,omitempty"`
}

// HistorySection configures the SQLite run history.
type HistorySection struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// PostgresSection configures the direct warehouse load. The DSN usually
// comes from TTSCRAPE_POSTGRES_DSN instead.
type PostgresSection struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	DSN     string `yaml:"dsn,omitempty"`
}

// UploadSection configures the batch insert upload. The API key is read
// from HASURAGRES_API_KEY only.
type UploadSection struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	URL     string `yaml:"url,omitempty"`
	DryRun  bool   `yaml:"dry_run,omitempty"`
}

// Apply copies every set field of f onto c.
func (f *File) Apply(c *Config) {
	setString(&c.TimetableURL, f.TimetableURL)
	setInt(&c.YearHorizon, f.YearHorizon)
	if len(f.Years) > 0 {
		c.Years = append([]int(nil), f.Years...)
	}

	setInt(&c.RequestsPerSecond, f.RateLimit.RequestsPerSecond)
	setDuration(&c.MinSpacing, f.RateLimit.MinSpacing)

	setDuration(&c.Timeout, f.HTTP.Timeout)
	setString(&c.UserAgent, f.HTTP.UserAgent)
	if f.HTTP.MaxBodySize != 0 {
		c.MaxBodySize = f.HTTP.MaxBodySize
	}
	setString(&c.ProxyAddress, f.HTTP.Proxy)

	if f.Parse.StrictClasses != nil {
		c.StrictClasses = *f.Parse.StrictClasses
	}
	setInt(&c.ParseWorkers, f.Parse.Workers)
	setInt(&c.BatchSize, f.Parse.BatchSize)

	setString(&c.OutputDir, f.Output.Dir)
	setString(&c.ReportFile, f.Output.Report)

	if f.History.Enabled != nil {
		c.SaveToDB = *f.History.Enabled
	}
	setString(&c.DBDir, f.History.Dir)

	c.LoadPostgres = c.LoadPostgres || f.Postgres.Enabled
	setString(&c.PostgresDSN, f.Postgres.DSN)

	c.Upload = c.Upload || f.Upload.Enabled
	c.DryRun = c.DryRun || f.Upload.DryRun
	setString(&c.UploadURL, f.Upload.URL)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
