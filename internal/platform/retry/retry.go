package retry

import (
	"context"
	"time"
)

// Sleep is injected so callers under test run without real delays.
type Sleep func(ctx context.Context, d time.Duration) error

func SystemSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn up to attempts times with a fixed backoff between
// attempts, returning nil on the first success. The last error is
// returned when the budget is exhausted.
func Do(ctx context.Context, attempts int, backoff time.Duration, sleep Sleep, fn func(ctx context.Context) error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if i < attempts-1 {
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
		}
	}
	return lastErr
}
