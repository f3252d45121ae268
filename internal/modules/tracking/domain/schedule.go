package domain

import "time"

// NextBoundary returns the next absolute cycle boundary strictly after
// now: boundaries are multiples of the interval since the epoch, so
// cycles stay phase-locked to the clock and drift never accumulates.
func NextBoundary(now time.Time, interval time.Duration) time.Time {
	boundary := now.Truncate(interval)
	if !boundary.After(now) {
		boundary = boundary.Add(interval)
	}
	return boundary
}

// LookbackCycles converts a fixed wall-clock lookback into a cycle
// count for the active interval, so the focus window always covers the
// same span of real time in either profile.
func LookbackCycles(lookback, interval time.Duration) int {
	if interval <= 0 {
		return 1
	}
	n := int(lookback / interval)
	if n < 1 {
		n = 1
	}
	return n
}
