package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/ttscrape/internal/database"
	"github.com/nao1215/ttscrape/internal/model"
	"github.com/nao1215/ttscrape/internal/report"
)

// Result accumulates the output of one year's pipeline.
type Result struct {
	Year      int
	StartedAt time.Time

	Courses []model.Course
	Dataset *model.Dataset
	Summary *report.Summary

	// Run is set once the history step has saved the dataset.
	Run *database.Run

	// Completed lists the steps that succeeded, in order.
	Completed []string
	// Errors holds step failures, each wrapped with the step name.
	Errors []error
}

// NewResult returns an empty Result for year.
func NewResult(year int) *Result {
	return &Result{Year: year, StartedAt: time.Now()}
}

// Err joins every recorded step failure, or returns nil.
func (r *Result) Err() error {
	return errors.Join(r.Errors...)
}

// Step is one stage of the pipeline.
type Step interface {
	// Do runs the stage against r.
	Do(ctx context.Context, r *Result) error

	// Name identifies the step in logs and errors.
	Name() string
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running later steps after one fails. Failures
// are still recorded in the Result.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against r. Cancellation is checked between
// steps. Without WithContinueOnError the first failure is returned;
// with it, Execute returns r.Err() after the last step.
func (p *Pipeline) Execute(ctx context.Context, r *Result) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"year", r.Year,
				"reason", ctx.Err(),
			)
			r.Errors = append(r.Errors, ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step", "step", step.Name(), "year", r.Year)

		start := time.Now()
		if err := step.Do(ctx, r); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"year", r.Year,
				"error", err,
			)
			err = fmt.Errorf("%s: %w", step.Name(), err)
			r.Errors = append(r.Errors, err)
			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"year", r.Year,
			"elapsed", time.Since(start),
		)
		r.Completed = append(r.Completed, step.Name())
	}
	return r.Err()
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
