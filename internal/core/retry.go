// AngelaMos | 2026
// retry.go

package core

import (
	"context"
	"fmt"
	"time"
)

const (
	connectAttempts = 5
	retryBaseDelay  = 500 * time.Millisecond
)

// retry calls fn until it succeeds, attempts run out or ctx ends. Delays
// double from retryBaseDelay with jitter. Used only while connecting at
// startup, when Postgres or Redis may still be booting.
func retry(ctx context.Context, attempts int, fn func(context.Context) error) error {
	delay := retryBaseDelay
	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(jitteredDuration(delay)):
		}
		delay *= 2
	}

	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
