package clock

import (
	"context"
	"time"
)

// Clock abstracts wall-clock reads so services stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Alarm sleeps until an absolute instant. The scheduler wakes on
// absolute boundaries rather than relative timers so cycles stay
// phase-locked to the clock regardless of jitter.
type Alarm interface {
	WaitUntil(ctx context.Context, at time.Time) error
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type SystemAlarm struct{}

func (SystemAlarm) WaitUntil(ctx context.Context, at time.Time) error {
	d := time.Until(at)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
