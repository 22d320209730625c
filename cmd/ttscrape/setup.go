package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/ttscrape/internal/config"
	"github.com/nao1215/ttscrape/internal/fetch"
	"github.com/nao1215/ttscrape/internal/log"
	"github.com/nao1215/ttscrape/internal/ratelimit"
	"github.com/nao1215/ttscrape/internal/year"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return path
}

// changed reports whether the flag exists on cmd and was set explicitly.
func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// loadConfig builds the Config from defaults, the YAML file, dotenv files
// and the environment, in that order. Command flags are applied by the
// caller afterwards.
func loadConfig(cmd *cobra.Command, getenv func(string) string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.ConfigFilePath = getConfigFlag(cmd)

	// An explicit --config must exist; the default locations are optional.
	path := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case path != "":
		f, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		f.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := config.LoadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.ApplyEnv(getenv)

	return cfg, nil
}

// applyHTTPFlags copies the request budget and client flags onto cfg.
func applyHTTPFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if changed(cmd, "rate") {
		if cfg.RequestsPerSecond, err = cmd.Flags().GetInt("rate"); err != nil {
			return err
		}
	}
	if changed(cmd, "spacing") {
		if cfg.MinSpacing, err = cmd.Flags().GetDuration("spacing"); err != nil {
			return err
		}
	}
	if changed(cmd, "timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return err
		}
	}
	if changed(cmd, "proxy") {
		if cfg.ProxyAddress, err = cmd.Flags().GetString("proxy"); err != nil {
			return err
		}
	}
	if changed(cmd, "horizon") {
		if cfg.YearHorizon, err = cmd.Flags().GetInt("horizon"); err != nil {
			return err
		}
	}
	if changed(cmd, "url") {
		if cfg.TimetableURL, err = cmd.Flags().GetString("url"); err != nil {
			return err
		}
	}
	return nil
}

func addHTTPFlags(cmd *cobra.Command) {
	cmd.Flags().String("url", "",
		"Timetable URL template with a /year/ segment (overrides "+config.EnvTimetableURL+")")
	cmd.Flags().IntP("rate", "r", config.DefaultRequestsPerSecond,
		"Maximum requests in any one second")
	cmd.Flags().Duration("spacing", config.DefaultMinSpacing,
		"Minimum gap between two requests")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:1080)")
	cmd.Flags().Int("horizon", config.DefaultYearHorizon,
		"How many years to probe in each direction when resolving the year")
}

// newLogger installs and returns the process logger.
func newLogger(cfg *config.Config) *slog.Logger {
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)
	return logger
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newFetchClient creates the rate limited client every request goes
// through.
func newFetchClient(cfg *config.Config, logger *slog.Logger) (*fetch.Client, error) {
	limiter, err := ratelimit.New(cfg.RequestsPerSecond, cfg.MinSpacing)
	if err != nil {
		return nil, err
	}

	opts := []fetch.Option{
		fetch.WithLimiter(limiter),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, fetch.WithProxy(cfg.ProxyAddress))
	}
	return fetch.New(opts...)
}

// newResolver creates the year resolver for cfg's template.
func newResolver(cfg *config.Config, client *fetch.Client, logger *slog.Logger) (year.Template, *year.Resolver, error) {
	tmpl, err := cfg.Template()
	if err != nil {
		return year.Template{}, nil, err
	}
	r := year.NewResolver(tmpl, client,
		year.WithHorizon(cfg.YearHorizon),
		year.WithLogger(logger),
	)
	return tmpl, r, nil
}
