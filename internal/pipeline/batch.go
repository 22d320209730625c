package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of years processed at once.
const DefaultConcurrency = 2

// BatchProcessor runs a fresh pipeline for each of several years.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many years run at once. Values below one are
// ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. pipelineFactory is called
// once per year.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs every year and returns their results in the order of
// years. A failed year does not stop the others; its error is recorded in
// its Result. The returned error is only set when ctx ends the batch.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, years []int) ([]*Result, error) {
	bp.logger.Info("starting batch",
		"years", years,
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	results := make([]*Result, len(years))

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, year := range years {
		results[i] = NewResult(year)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Errors = append(results[i].Errors, err)
				return err
			}
			if err := bp.pipelineFactory().Execute(ctx, results[i]); err != nil {
				bp.logger.Warn("year failed", "year", year, "error", err)
				return nil
			}
			bp.logger.Info("year completed", "year", year)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	bp.logger.Info("batch complete",
		"years", len(years),
		"elapsed", time.Since(start),
	)
	return results, err
}
