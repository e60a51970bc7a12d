// Package poll provides a bounded, fixed-interval polling combinator and the
// in-flight guards that keep a single task from being polled twice at once.
//
// Until waits, probes, and repeats until the probe reports done, returns an
// error, or the attempt budget runs out. There is no backoff or jitter: the
// interval and the budget are both small and fixed. Time is read through a
// Clock so tests can script the loop without sleeping.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned by Until when MaxAttempts probes ran without the
// probe reporting done.
var ErrExhausted = errors.New("poll: attempt budget exhausted")

// Clock is the time source Until waits on.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

// RealClock waits on wall-clock time.
type RealClock struct{}

// After implements Clock.
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Policy bounds a poll loop.
type Policy struct {
	Interval    time.Duration
	MaxAttempts int
}

// Probe is called once per attempt (1-based). It returns done=true to stop
// with v, or an error to abort the loop.
type Probe[T any] func(ctx context.Context, attempt int) (v T, done bool, err error)

// Until runs probe under p. Each attempt first waits p.Interval, then probes.
// It returns the value of the first done probe together with the number of
// attempts made. A probe error aborts immediately and is returned as-is;
// context cancellation during a wait returns ctx.Err().
func Until[T any](ctx context.Context, clock Clock, p Policy, probe Probe[T]) (T, int, error) {
	var zero T
	if clock == nil {
		clock = RealClock{}
	}
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, attempt - 1, ctx.Err()
		case <-clock.After(p.Interval):
		}

		v, done, err := probe(ctx, attempt)
		if err != nil {
			return zero, attempt, err
		}
		if done {
			return v, attempt, nil
		}
	}
	return zero, p.MaxAttempts, ErrExhausted
}
