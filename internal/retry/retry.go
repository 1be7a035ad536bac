// Package retry provides a bounded retry loop with configurable backoff,
// used by the clone executor for flaky network operations.
package retry

import (
	"context"
	"time"
)

// DelayFunc returns how long to wait after the given attempt fails before
// the next one starts. Attempts are numbered from 1.
type DelayFunc func(attempt int) time.Duration

// Linear returns a DelayFunc that waits attempt*step: with a 2s step the
// first retry waits 2s, the second 4s, and so on.
func Linear(step time.Duration) DelayFunc {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// None disables backoff entirely.
func None() DelayFunc {
	return func(int) time.Duration { return 0 }
}

// sleep is a variable so tests can record the backoff schedule
var sleep = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs op up to attempts times, waiting delay(attempt) between failures.
// It returns nil on the first success, or the last error once attempts are
// exhausted. A cancelled context cuts the backoff short and returns the
// last failure.
func Do(ctx context.Context, attempts int, delay DelayFunc, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = op(); lastErr == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		if delay != nil {
			if err := sleep(ctx, delay(attempt)); err != nil {
				return lastErr
			}
		}
	}

	return lastErr
}
