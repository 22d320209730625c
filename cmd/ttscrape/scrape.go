package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/ttscrape/internal/config"
	"github.com/nao1215/ttscrape/internal/crawler"
	"github.com/nao1215/ttscrape/internal/database"
	"github.com/nao1215/ttscrape/internal/model"
	"github.com/nao1215/ttscrape/internal/pipeline"
	"github.com/nao1215/ttscrape/internal/report"
	"github.com/nao1215/ttscrape/internal/upload"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Crawl the timetable and publish the dataset",
		Long: `Scrape crawls every subject area, course and class of one teaching year
and flattens them into courses.json, classes.json and times.json.

Each run is recorded in the history database, so later runs report whether
the timetable changed. The dataset can also be loaded straight into
Postgres (--postgres) or sent to the batch insert endpoint (--upload).

Examples:
  # Scrape the newest published year
  ttscrape scrape

  # Scrape two years into per-year directories
  ttscrape scrape --year 2024 --year 2025 -o "out/{year}"

  # Scrape and upload, printing what would be sent
  ttscrape scrape --upload --dry-run

  # Also write a Markdown summary
  ttscrape scrape --report timetable.md`,
		Args: cobra.NoArgs,
		RunE: runScrapeCmd,
	}

	addHTTPFlags(cmd)

	cmd.Flags().IntSliceP("year", "y", nil,
		"Year to scrape (repeatable; default: newest published year)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of years scraped concurrently")
	cmd.Flags().Int("parse-workers", 0,
		"Concurrent page parsers (default: number of CPUs)")
	cmd.Flags().Bool("lenient", false,
		"Skip malformed classes instead of failing their course")

	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		`Directory for the JSON dataset ("{year}" is replaced)`)
	cmd.Flags().String("report", "",
		"Write a Markdown summary to this path")
	cmd.Flags().BoolP("json", "j", false,
		"Print the run summary as JSON")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")

	cmd.Flags().Bool("postgres", false,
		"Replace the Postgres warehouse tables ("+config.EnvPostgresDSN+")")
	cmd.Flags().BoolP("upload", "u", false,
		"Upload the dataset to the batch insert endpoint ("+config.EnvUploadURL+")")
	cmd.Flags().Bool("dry-run", false,
		"Ask the batch insert endpoint to validate without writing")

	return cmd
}

func runScrapeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}
	if err := applyScrapeFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cfg)
	ctx, stop := signalContext()
	defer stop()

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	var out report.Writer = report.NewTextWriter(cmd.OutOrStdout(), report.WithVerbose(cfg.Verbose))
	if asJSON {
		out = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint())
	}

	return runScrape(ctx, cfg, logger, out)
}

// applyScrapeFlags copies explicitly set flags onto cfg.
func applyScrapeFlags(cmd *cobra.Command, cfg *config.Config) error {
	if err := applyHTTPFlags(cmd, cfg); err != nil {
		return err
	}

	var err error
	if changed(cmd, "year") {
		if cfg.Years, err = cmd.Flags().GetIntSlice("year"); err != nil {
			return err
		}
	}
	if changed(cmd, "batch") {
		if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
			return err
		}
	}
	if changed(cmd, "parse-workers") {
		if cfg.ParseWorkers, err = cmd.Flags().GetInt("parse-workers"); err != nil {
			return err
		}
	}
	if changed(cmd, "lenient") {
		lenient, err := cmd.Flags().GetBool("lenient")
		if err != nil {
			return err
		}
		cfg.StrictClasses = !lenient
	}
	if changed(cmd, "output") {
		if cfg.OutputDir, err = cmd.Flags().GetString("output"); err != nil {
			return err
		}
	}
	if changed(cmd, "report") {
		if cfg.ReportFile, err = cmd.Flags().GetString("report"); err != nil {
			return err
		}
	}
	if changed(cmd, "no-history") {
		noHistory, err := cmd.Flags().GetBool("no-history")
		if err != nil {
			return err
		}
		cfg.SaveToDB = !noHistory
	}
	if changed(cmd, "postgres") {
		if cfg.LoadPostgres, err = cmd.Flags().GetBool("postgres"); err != nil {
			return err
		}
	}
	if changed(cmd, "upload") {
		if cfg.Upload, err = cmd.Flags().GetBool("upload"); err != nil {
			return err
		}
	}
	if changed(cmd, "dry-run") {
		if cfg.DryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
			return err
		}
	}
	return nil
}

// sinks are the optional destinations of a scrape.
type sinks struct {
	history   *database.HistoryDB
	warehouse *database.PostgresSink
	uploader  *upload.Client
}

func (s *sinks) Close() {
	if s.history != nil {
		_ = s.history.Close() //nolint:errcheck // best effort on exit
	}
	if s.warehouse != nil {
		s.warehouse.Close()
	}
}

func openSinks(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sinks, error) {
	s := &sinks{}
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		s.history = db
		logger.Debug("history database opened", "path", db.Path())
	}
	if cfg.LoadPostgres {
		pg, err := database.OpenPostgres(ctx, cfg.PostgresDSN, database.WithSinkLogger(logger))
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		s.warehouse = pg
	}
	if cfg.Upload {
		up, err := upload.New(cfg.UploadURL, cfg.UploadAPIKey,
			upload.WithDryRun(cfg.DryRun),
			upload.WithLogger(logger),
		)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.uploader = up
	}
	return s, nil
}

// newPipelineFactory returns a factory for one year's pipeline. The steps
// after flatten only run when their sink is configured.
func newPipelineFactory(cfg *config.Config, c pipeline.Crawler, s *sinks, logger *slog.Logger) func() *pipeline.Pipeline {
	return func() *pipeline.Pipeline {
		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddSteps(
			pipeline.NewCrawlStep(c),
			pipeline.NewFlattenStep(),
			pipeline.NewWriteDatasetStep(cfg.OutputDir),
		)
		if s.history != nil {
			p.AddStep(pipeline.NewHistoryStep(s.history))
		}
		if cfg.ReportFile != "" {
			p.AddStep(pipeline.NewReportStep(cfg.ReportFile))
		}
		if s.warehouse != nil {
			p.AddStep(pipeline.NewWarehouseStep(s.warehouse))
		}
		if s.uploader != nil {
			p.AddStep(pipeline.NewUploadStep(s.uploader))
		}
		return p
	}
}

func runScrape(ctx context.Context, cfg *config.Config, logger *slog.Logger, out report.Writer) error {
	client, err := newFetchClient(cfg, logger)
	if err != nil {
		return err
	}
	tmpl, resolver, err := newResolver(cfg, client, logger)
	if err != nil {
		return err
	}
	sc := crawler.New(tmpl, client,
		crawler.WithResolver(resolver),
		crawler.WithParseWorkers(cfg.ParseWorkers),
		crawler.WithStrictClasses(cfg.StrictClasses),
		crawler.WithLogger(logger),
	)

	s, err := openSinks(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	// Without --year the newest published year is resolved and crawled in
	// one go; its pipeline then starts from the crawled courses.
	var c pipeline.Crawler = sc
	years := cfg.Years
	if len(years) == 0 {
		y, courses, err := sc.CrawlCurrent(ctx, time.Now())
		if err != nil {
			return err
		}
		c = crawledYear{Crawler: sc, year: y, courses: courses}
		years = []int{y}
	}

	logger.Info("starting scrape",
		"years", years,
		"batchSize", cfg.BatchSize,
		"history", s.history != nil,
		"postgres", s.warehouse != nil,
		"upload", s.uploader != nil,
	)

	bp := pipeline.NewBatchProcessor(
		newPipelineFactory(cfg, c, s, logger),
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)
	results, err := bp.ProcessBatch(ctx, years)
	if err != nil {
		return err
	}
	return printResults(out, results)
}

// crawledYear hands out courses that were crawled before the pipeline
// started, and crawls any other year as usual.
type crawledYear struct {
	pipeline.Crawler
	year    int
	courses []model.Course
}

func (c crawledYear) Crawl(ctx context.Context, y int) ([]model.Course, error) {
	if y == c.year {
		return c.courses, nil
	}
	return c.Crawler.Crawl(ctx, y)
}

// printResults writes the summary of every year that produced one and
// returns the first failure.
func printResults(out report.Writer, results []*pipeline.Result) error {
	var first error
	for _, r := range results {
		if r.Summary != nil {
			if _, err := out.Write(r.Summary); err != nil && first == nil {
				first = err
			}
		}
		if err := r.Err(); err != nil && first == nil {
			first = fmt.Errorf("year %d: %w", r.Year, err)
		}
	}
	return first
}
