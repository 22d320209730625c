package year

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nao1215/ttscrape/internal/fetch"
)

// DefaultHorizon is how many years the resolver probes in each direction.
const DefaultHorizon = 20

// Prober returns the HTTP status of a URL. *fetch.Client implements it.
type Prober interface {
	Status(ctx context.Context, url string) (int, error)
}

var _ Prober = (*fetch.Client)(nil)

// Resolver finds the newest year with published timetable data.
type Resolver struct {
	template Template
	prober   Prober
	horizon  int
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHorizon sets how many years are probed in each direction.
func WithHorizon(n int) Option {
	return func(r *Resolver) {
		r.horizon = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver creates a Resolver probing t through p.
func NewResolver(t Template, p Prober, opts ...Option) *Resolver {
	r := &Resolver{
		template: t,
		prober:   p,
		horizon:  DefaultHorizon,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the newest year with data.
//
// Starting at current it probes forward while years answer 200 and keeps
// the last one that did. A year answering 404 ends the forward walk. Only
// when current itself has no data does it walk backward from current-1 and
// return the first year answering 200. Any status other than 200 or 404
// aborts with fetch.ErrUnexpectedStatus.
func (r *Resolver) Resolve(ctx context.Context, current int) (int, error) {
	found, ok, err := r.forward(ctx, current)
	if err != nil {
		return 0, err
	}
	if ok {
		return found, nil
	}

	found, ok, err = r.backward(ctx, current-1)
	if err != nil {
		return 0, err
	}
	if ok {
		return found, nil
	}
	return 0, fmt.Errorf("%w: probed %d years around %d", ErrNoDataFound, r.horizon, current)
}

func (r *Resolver) forward(ctx context.Context, from int) (int, bool, error) {
	last, ok := 0, false
	for y := from; y < from+r.horizon; y++ {
		live, err := r.probe(ctx, y)
		if err != nil {
			return 0, false, err
		}
		if !live {
			break
		}
		last, ok = y, true
	}
	return last, ok, nil
}

func (r *Resolver) backward(ctx context.Context, from int) (int, bool, error) {
	for y := from; y > from-r.horizon; y-- {
		live, err := r.probe(ctx, y)
		if err != nil {
			return 0, false, err
		}
		if live {
			return y, true, nil
		}
	}
	return 0, false, nil
}

// probe reports whether year y answers 200.
func (r *Resolver) probe(ctx context.Context, y int) (bool, error) {
	url := r.template.URLForYear(y)
	code, err := r.prober.Status(ctx, url)
	if err != nil {
		return false, fmt.Errorf("probing year %d: %w", y, err)
	}
	r.logger.Debug("probed year", "year", y, "url", url, "status", code)

	switch code {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s returned %d", fetch.ErrUnexpectedStatus, url, code)
	}
}
