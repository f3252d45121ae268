package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"worklens/internal/platform/retry"
)

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestDoStopsOnFirstSuccess(t *testing.T) {
	t.Parallel()
	calls := 0
	err := retry.Do(context.Background(), 5, time.Millisecond, noSleep, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDoReturnsLastErrorAfterBudget(t *testing.T) {
	t.Parallel()
	want := errors.New("still broken")
	calls := 0
	err := retry.Do(context.Background(), 4, time.Millisecond, noSleep, func(context.Context) error {
		calls++
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected exactly 4 attempts, got %d", calls)
	}
}

func TestDoHonorsCancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := retry.Do(ctx, 3, time.Millisecond, noSleep, func(context.Context) error {
		calls++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no attempts after cancel, got %d", calls)
	}
}

func TestDoSleepsBetweenAttemptsOnly(t *testing.T) {
	t.Parallel()
	sleeps := 0
	countSleep := func(_ context.Context, _ time.Duration) error {
		sleeps++
		return nil
	}
	_ = retry.Do(context.Background(), 3, time.Millisecond, countSleep, func(context.Context) error {
		return errors.New("transient")
	})
	if sleeps != 2 {
		t.Fatalf("expected 2 backoff sleeps for 3 attempts, got %d", sleeps)
	}
}
