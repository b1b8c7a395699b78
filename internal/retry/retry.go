// Package retry wraps fallible remote calls in a classified backoff loop.
//
// The envelope never gives up on its own: recoverable and rate-limited
// failures are retried until the call succeeds, the error is permanent, or
// the context is canceled. A long-running daemon is expected to ride out
// network outages rather than drop scheduled work.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failed remote call. The set is closed: transports must
// tag every error they return with one of these values.
type Kind int

const (
	// Unknown covers failures the transport could not classify. Treated
	// the same as Recoverable.
	Unknown Kind = iota

	// Recoverable covers timeouts, connection resets and other transient
	// network failures. Retried with growing backoff.
	Recoverable

	// RateLimited means the server demanded a minimum wait before the
	// next attempt. Retried after that wait; backoff is left untouched.
	RateLimited

	// Permanent means retrying cannot help (e.g. authorization denied).
	// The envelope stops immediately.
	Permanent
)

func (k Kind) String() string {
	switch k {
	case Recoverable:
		return "recoverable"
	case RateLimited:
		return "rate_limited"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// ClassifiedError is implemented by transport errors that carry a failure
// kind. Errors that don't implement it are treated as Unknown.
type ClassifiedError interface {
	error
	RetryKind() Kind
	// RetryAfter returns the server-demanded minimum wait. Only
	// meaningful when RetryKind() == RateLimited.
	RetryAfter() time.Duration
}

// Classify extracts the failure kind from err.
func Classify(err error) Kind {
	var ce ClassifiedError
	if errors.As(err, &ce) {
		return ce.RetryKind()
	}
	return Unknown
}

const (
	baseBackoff      = 2 * time.Second
	maxBackoff       = 30 * time.Second
	backoffFactor    = 1.5
	rateLimitPadding = 1 * time.Second
)

// Envelope retries an operation until it succeeds or fails permanently.
// Backoff state is carried across Do calls on the same Envelope, so one
// envelope should span exactly one top-level request (which may consist of
// several operation calls); build a fresh one per request to reset it.
//
// The zero value is not usable; use New.
type Envelope struct {
	backoff time.Duration

	// OnRetry, if set, observes every retry decision before the wait.
	OnRetry func(attempt int, kind Kind, wait time.Duration)

	sleep func(ctx context.Context, d time.Duration) error
}

// New returns an Envelope with fresh backoff state.
func New() *Envelope {
	return NewWithSleep(sleepCtx)
}

// NewWithSleep returns an Envelope that waits via the given function
// instead of the real clock. Tests use it to simulate time.
func NewWithSleep(sleep func(ctx context.Context, d time.Duration) error) *Envelope {
	return &Envelope{
		backoff: baseBackoff,
		sleep:   sleep,
	}
}

// Do runs op, retrying per the classification of each failure. It returns
// nil on success, the permanent error when retrying cannot help, or the
// context error when ctx ends a wait early.
func (e *Envelope) Do(ctx context.Context, op func() error) error {
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		kind := Classify(err)
		if kind == Permanent {
			return fmt.Errorf("giving up: %w", err)
		}

		wait := e.backoff
		if kind == RateLimited {
			var ce ClassifiedError
			errors.As(err, &ce)
			wait = ce.RetryAfter() + rateLimitPadding
		} else {
			e.grow()
		}

		if e.OnRetry != nil {
			e.OnRetry(attempt, kind, wait)
		}
		if err := e.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (e *Envelope) grow() {
	next := time.Duration(float64(e.backoff) * backoffFactor)
	if next > maxBackoff {
		next = maxBackoff
	}
	e.backoff = next
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
