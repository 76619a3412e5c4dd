package util

import (
	"context"
	"time"
)

// Retry runs fn up to maxAttempts times, doubling the wait between attempts
// starting from baseDelay. The first nil return wins; otherwise the last
// error is returned. Cancelling ctx aborts the wait between attempts. Used
// to ride out transient provider failures without hammering the upstream.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	delay := baseDelay

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		// No wait after the final attempt.
		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return err
}
