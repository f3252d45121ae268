package domain_test

import (
	"testing"
	"time"

	"worklens/internal/modules/tracking/domain"
)

func TestNextBoundaryIsMultipleOfInterval(t *testing.T) {
	t.Parallel()
	interval := 10 * time.Minute
	times := []time.Time{
		time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 9, 0, 0, 1, time.UTC),
		time.Date(2026, 3, 1, 9, 3, 27, 123456789, time.UTC),
		time.Date(2026, 3, 1, 9, 59, 59, 999999999, time.UTC),
	}
	for _, now := range times {
		boundary := domain.NextBoundary(now, interval)
		if !boundary.After(now) {
			t.Fatalf("boundary %v not after %v", boundary, now)
		}
		if boundary.UnixNano()%int64(interval) != 0 {
			t.Fatalf("boundary %v is not a multiple of %v", boundary, interval)
		}
		if boundary.Sub(now) > interval {
			t.Fatalf("boundary %v more than one interval after %v", boundary, now)
		}
	}
}

func TestNextBoundaryAtExactBoundaryMovesForward(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 9, 10, 0, 0, time.UTC)
	boundary := domain.NextBoundary(now, 10*time.Minute)
	want := time.Date(2026, 3, 1, 9, 20, 0, 0, time.UTC)
	if !boundary.Equal(want) {
		t.Fatalf("expected %v, got %v", want, boundary)
	}
}

func TestLookbackCyclesScalesWithInterval(t *testing.T) {
	t.Parallel()
	cases := []struct {
		lookback, interval time.Duration
		want               int
	}{
		{time.Hour, 10 * time.Minute, 6},
		{6 * time.Minute, time.Minute, 6},
		{time.Minute, 10 * time.Minute, 1},
		{0, time.Minute, 1},
	}
	for _, tc := range cases {
		if got := domain.LookbackCycles(tc.lookback, tc.interval); got != tc.want {
			t.Fatalf("lookback %v / interval %v: expected %d, got %d", tc.lookback, tc.interval, tc.want, got)
		}
	}
}
