// Package ratelimit enforces the outbound request budget shared by every
// fetch in a crawl run.
//
// Two token buckets from golang.org/x/time/rate guard the budget, both with
// a burst of one:
//   - one refilling every 1s/N, so no N+1 requests fit in a second
//   - one refilling every M, the minimum spacing between two requests
//
// Callers pass the buckets single file through a one-slot turnstile, and a
// request takes a token from both buckets at the same instant. That instant
// is the recorded issue time, so scheduler lateness on one wake-up never
// shortens the gap before the next request.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerSecond is the default size of the trailing window.
	DefaultRequestsPerSecond = 80

	// DefaultMinSpacing is the default minimum gap between two requests.
	DefaultMinSpacing = 10 * time.Millisecond
)

// ErrInvalidLimits is returned by New when either limit is not positive.
var ErrInvalidLimits = errors.New("rate limiter: requests per second and spacing must be positive")

// Limiter is a two-bucket request throttle. The zero value is not usable;
// create one with New. A Limiter is safe for concurrent use.
type Limiter struct {
	perSecond *rate.Limiter
	spacing   *rate.Limiter

	// turn is a one-slot turnstile. Holding it grants the right to take
	// tokens from both buckets.
	turn chan struct{}

	// onIssue, when set, observes every recorded issue time.
	onIssue func(time.Time)
}

// New creates a Limiter allowing at most perSecond requests in any trailing
// second and no two requests closer than spacing.
func New(perSecond int, spacing time.Duration) (*Limiter, error) {
	if perSecond <= 0 || spacing <= 0 {
		return nil, ErrInvalidLimits
	}
	return &Limiter{
		perSecond: rate.NewLimiter(rate.Every(time.Second/time.Duration(perSecond)), 1),
		spacing:   rate.NewLimiter(rate.Every(spacing), 1),
		turn:      make(chan struct{}, 1),
	}, nil
}

// NewDefault creates a Limiter with DefaultRequestsPerSecond and
// DefaultMinSpacing.
func NewDefault() *Limiter {
	l, _ := New(DefaultRequestsPerSecond, DefaultMinSpacing) //nolint:errcheck // defaults are positive
	return l
}

// Wait blocks until the caller may issue one request, then records it.
// It returns early only when ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	select {
	case l.turn <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.turn }()

	for {
		now := time.Now()
		d := l.reserve(now)
		if d == 0 {
			l.record(now)
			return nil
		}
		if err := sleep(ctx, d); err != nil {
			return err
		}
	}
}

// reserve takes a token from both buckets at now and returns 0, or takes
// none and returns how long to wait before trying again. Must be called
// while holding the turnstile.
func (l *Limiter) reserve(now time.Time) time.Duration {
	window := l.perSecond.ReserveN(now, 1)
	gap := l.spacing.ReserveN(now, 1)

	d := max(window.DelayFrom(now), gap.DelayFrom(now))
	if d == 0 {
		return 0
	}
	gap.CancelAt(now)
	window.CancelAt(now)
	return d
}

func (l *Limiter) record(now time.Time) {
	if l.onIssue != nil {
		l.onIssue(now)
	}
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
