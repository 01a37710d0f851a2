// Package retry provides the two resilience primitives the server uses:
// a short exponential backoff for transient socket errors during a
// send, and a circuit breaker that makes appends fail fast while the
// data log's storage keeps failing.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ── Permanent errors ─────────────────────────────────────────────────

// PermanentError wraps an error to signal that retrying will not help.
// Return [Permanent](err) from the operation function to stop retrying
// immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as non-retryable.  The backoff loop will return
// the inner error immediately without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err has been marked as permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ── Backoff ──────────────────────────────────────────────────────────

// Backoff implements bounded exponential backoff with optional jitter.
// The zero value retries up to three times, starting at 1ms.
type Backoff struct {
	// InitialDelay is the delay before the first retry (default 1ms).
	InitialDelay time.Duration
	// MaxDelay caps the backoff duration (default 10ms).
	MaxDelay time.Duration
	// Multiplier increases the delay each attempt (default 2.0).
	Multiplier float64
	// MaxAttempts is the total number of tries including the first
	// (default 3).  Unlimited retries are not supported: every retry
	// in this server must be bounded.
	MaxAttempts int
	// Jitter adds ±25% randomisation so handlers hitting the same
	// transient condition do not retry in lockstep.
	Jitter bool
}

// SendBackoff returns the policy used for partial or interrupted
// socket writes.
func SendBackoff() *Backoff {
	return &Backoff{
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  3,
		Jitter:       true,
	}
}

// Do executes fn repeatedly until it succeeds, returns a permanent
// error, or the retry budget (attempts / context) is exhausted.
//
// The attempt parameter passed to fn is 1-based.  A nil *Backoff runs
// fn exactly once.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	if b == nil {
		err := fn(1)
		if IsPermanent(err) {
			return errors.Unwrap(err)
		}
		return err
	}

	delay := b.InitialDelay
	if delay <= 0 {
		delay = time.Millisecond
	}
	multiplier := b.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	maxDelay := b.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 10 * time.Millisecond
	}
	maxAttempts := b.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}

		if IsPermanent(err) {
			return errors.Unwrap(err)
		}

		if attempt >= maxAttempts {
			return fmt.Errorf("max retries (%d) exceeded: %w", maxAttempts, err)
		}

		wait := delay
		if b.Jitter {
			wait = addJitter(delay)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry cancelled: %w", err)
		case <-t.C:
		}

		delay = time.Duration(float64(delay) * multiplier)
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

// addJitter adds ±25% randomisation to a duration.
func addJitter(d time.Duration) time.Duration {
	quarter := float64(d) * 0.25
	delta := (rand.Float64() * 2 * quarter) - quarter
	result := float64(d) + delta
	return time.Duration(math.Max(result, float64(time.Microsecond)))
}
