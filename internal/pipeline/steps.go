package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/ttscrape/internal/database"
	"github.com/nao1215/ttscrape/internal/model"
	"github.com/nao1215/ttscrape/internal/report"
)

// Crawler crawls one year's timetable. *crawler.ScrapingContext
// implements it.
type Crawler interface {
	Crawl(ctx context.Context, year int) ([]model.Course, error)
}

// RunSaver records a dataset. *database.HistoryDB implements it.
type RunSaver interface {
	SaveRun(ctx context.Context, year int, ds *model.Dataset) (*database.Run, error)
}

// WarehouseLoader replaces the warehouse contents.
// *database.PostgresSink implements it.
type WarehouseLoader interface {
	Migrate(ctx context.Context) error
	Replace(ctx context.Context, ds *model.Dataset) error
}

// Uploader sends a dataset to the batch insert endpoint.
// *upload.Client implements it.
type Uploader interface {
	Upload(ctx context.Context, ds *model.Dataset) error
}

// yearPlaceholder in an output path is replaced by the result's year.
const yearPlaceholder = "{year}"

func expandYear(path string, year int) string {
	return strings.ReplaceAll(path, yearPlaceholder, strconv.Itoa(year))
}

// CrawlStep crawls r.Year into r.Courses.
type CrawlStep struct {
	crawler Crawler
}

// NewCrawlStep creates a CrawlStep.
func NewCrawlStep(c Crawler) *CrawlStep {
	return &CrawlStep{crawler: c}
}

// Name returns the step name.
func (s *CrawlStep) Name() string { return "crawl" }

// Do runs the crawl.
func (s *CrawlStep) Do(ctx context.Context, r *Result) error {
	courses, err := s.crawler.Crawl(ctx, r.Year)
	if err != nil {
		return err
	}
	r.Courses = courses
	return nil
}

// FlattenStep builds r.Dataset and r.Summary from r.Courses.
type FlattenStep struct{}

// NewFlattenStep creates a FlattenStep.
func NewFlattenStep() *FlattenStep {
	return &FlattenStep{}
}

// Name returns the step name.
func (s *FlattenStep) Name() string { return "flatten" }

// Do flattens the courses.
func (s *FlattenStep) Do(_ context.Context, r *Result) error {
	r.Dataset = model.Flatten(r.Courses)
	r.Summary = report.NewSummary(r.Year, r.Dataset, r.StartedAt)
	return nil
}

// WriteDatasetStep writes the dataset as JSON files.
type WriteDatasetStep struct {
	dir string
}

// NewWriteDatasetStep writes into dir. A "{year}" in dir is replaced by
// the result's year.
func NewWriteDatasetStep(dir string) *WriteDatasetStep {
	return &WriteDatasetStep{dir: dir}
}

// Name returns the step name.
func (s *WriteDatasetStep) Name() string { return "write_json" }

// Do writes the files.
func (s *WriteDatasetStep) Do(_ context.Context, r *Result) error {
	if r.Dataset == nil {
		return ErrNoDataset
	}
	return report.WriteDataset(expandYear(s.dir, r.Year), r.Dataset)
}

// HistoryStep saves the dataset as a history run.
type HistoryStep struct {
	saver RunSaver
}

// NewHistoryStep creates a HistoryStep.
func NewHistoryStep(saver RunSaver) *HistoryStep {
	return &HistoryStep{saver: saver}
}

// Name returns the step name.
func (s *HistoryStep) Name() string { return "history" }

// Do saves the run and attaches it to the summary.
func (s *HistoryStep) Do(ctx context.Context, r *Result) error {
	if r.Dataset == nil {
		return ErrNoDataset
	}
	run, err := s.saver.SaveRun(ctx, r.Year, r.Dataset)
	if err != nil {
		return err
	}
	r.Run = run
	if r.Summary != nil {
		r.Summary.WithRun(run.ID, run.Digest, run.Changed)
	}
	return nil
}

// ReportStep writes the Markdown summary to a file.
type ReportStep struct {
	path string
}

// NewReportStep writes to path. A "{year}" in path is replaced by the
// result's year.
func NewReportStep(path string) *ReportStep {
	return &ReportStep{path: path}
}

// Name returns the step name.
func (s *ReportStep) Name() string { return "report" }

// Do writes the report.
func (s *ReportStep) Do(_ context.Context, r *Result) (err error) {
	if r.Summary == nil {
		return ErrNoDataset
	}

	path := expandYear(s.path, r.Year)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = report.NewMarkdownWriter(f).Write(r.Summary)
	return err
}

// WarehouseStep loads the dataset into PostgreSQL.
type WarehouseStep struct {
	loader WarehouseLoader
}

// NewWarehouseStep creates a WarehouseStep.
func NewWarehouseStep(loader WarehouseLoader) *WarehouseStep {
	return &WarehouseStep{loader: loader}
}

// Name returns the step name.
func (s *WarehouseStep) Name() string { return "postgres" }

// Do migrates the schema, then replaces the table contents.
func (s *WarehouseStep) Do(ctx context.Context, r *Result) error {
	if r.Dataset == nil {
		return ErrNoDataset
	}
	if err := s.loader.Migrate(ctx); err != nil {
		return err
	}
	return s.loader.Replace(ctx, r.Dataset)
}

// UploadStep posts the dataset to the batch insert endpoint.
type UploadStep struct {
	uploader Uploader
}

// NewUploadStep creates an UploadStep.
func NewUploadStep(u Uploader) *UploadStep {
	return &UploadStep{uploader: u}
}

// Name returns the step name.
func (s *UploadStep) Name() string { return "upload" }

// Do uploads the dataset.
func (s *UploadStep) Do(ctx context.Context, r *Result) error {
	if r.Dataset == nil {
		return ErrNoDataset
	}
	return s.uploader.Upload(ctx, r.Dataset)
}
