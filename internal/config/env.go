package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvTimetableURL = "TIMETABLE_API_URL"
	EnvUploadURL    = "HASURAGRES_URL"
	EnvUploadAPIKey = "HASURAGRES_API_KEY"
	EnvPostgresDSN  = "TTSCRAPE_POSTGRES_DSN"
)

// DefaultEnvFiles are loaded by LoadEnvFiles when no files are given.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads dotenv files into the process environment. Variables
// already set are kept, and missing files are skipped.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv copies the non-empty variables returned by getenv onto c.
// Pass os.Getenv in production.
func (c *Config) ApplyEnv(getenv func(string) string) {
	setString(&c.TimetableURL, getenv(EnvTimetableURL))
	setString(&c.UploadURL, getenv(EnvUploadURL))
	setString(&c.UploadAPIKey, getenv(EnvUploadAPIKey))
	setString(&c.PostgresDSN, getenv(EnvPostgresDSN))
}
