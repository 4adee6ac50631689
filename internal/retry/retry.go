// Package retry provides the bounded sleep-and-recheck primitive shared by
// the health poller and any probe that needs to outwait a warming service.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Budget bounds a retry loop: at most Attempts tries with a fixed Interval
// between them. Both knobs come from configuration, never hardcoded call
// sites, because different environment classes use different warm-up
// windows.
type Budget struct {
	Attempts int
	Interval time.Duration
}

// Do runs fn until it succeeds, the attempt budget is exhausted, or the
// context is cancelled. The returned error is the last failure observed,
// wrapped with the attempt count; context cancellation surfaces as the
// context error.
func (b Budget) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := b.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Interval):
		}
	}

	return fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}
