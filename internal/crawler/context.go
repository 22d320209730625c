package crawler

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/nao1215/ttscrape/internal/extract"
	"github.com/nao1215/ttscrape/internal/year"
)

// ErrNoResolver is returned by CrawlCurrent when the context was built
// without a year resolver.
var ErrNoResolver = errors.New("crawler: no year resolver configured")

// Fetcher returns the body of a page that answered 200.
// *fetch.Client implements it.
type Fetcher interface {
	Page(ctx context.Context, url string) ([]byte, error)
}

// ScrapingContext is everything a crawl needs. It is shared read-only by
// every level of one crawl.
type ScrapingContext struct {
	template year.Template
	fetcher  Fetcher
	resolver *year.Resolver
	pool     *semaphore.Weighted
	workers  int
	strict   bool
	logger   *slog.Logger
}

// Option configures a ScrapingContext.
type Option func(*ScrapingContext)

// WithResolver sets the resolver used by CrawlCurrent.
func WithResolver(r *year.Resolver) Option {
	return func(sc *ScrapingContext) {
		sc.resolver = r
	}
}

// WithParseWorkers bounds how many pages are parsed at once.
// The default is GOMAXPROCS.
func WithParseWorkers(n int) Option {
	return func(sc *ScrapingContext) {
		if n > 0 {
			sc.workers = n
		}
	}
}

// WithStrictClasses controls whether one malformed class fails its course
// page (true, the default) or is logged and skipped.
func WithStrictClasses(strict bool) Option {
	return func(sc *ScrapingContext) {
		sc.strict = strict
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(sc *ScrapingContext) {
		sc.logger = l
	}
}

// New creates a ScrapingContext crawling the timetable described by t
// through f.
func New(t year.Template, f Fetcher, opts ...Option) *ScrapingContext {
	sc := &ScrapingContext{
		template: t,
		fetcher:  f,
		workers:  runtime.GOMAXPROCS(0),
		strict:   true,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	sc.pool = semaphore.NewWeighted(int64(sc.workers))
	return sc
}

func (sc *ScrapingContext) extractOptions() extract.Options {
	return extract.Options{Strict: sc.strict, Logger: sc.logger}
}
