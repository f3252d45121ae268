package domain

import "time"

// FocusInput is the slice of history the deep-work calculator sees:
// the active application for the current cycle plus the applications
// of the prior cycles in the lookback window, newest first.
type FocusInput struct {
	CurrentApp    string
	RecentApps    []string
	CycleInterval time.Duration
}

type FocusMetrics struct {
	ContextSwitches   int
	FocusScore        int
	AverageSessionMin float64
	LongestSessionMin float64
}

// CalculateFocusMetrics derives context-switch and session-length
// statistics from the lookback window. A session is a run of
// consecutive cycles on the same application; its length is the run
// count times the cycle interval. The interval is passed in explicitly
// rather than inferred from timestamp gaps.
func CalculateFocusMetrics(input FocusInput) FocusMetrics {
	sequence := make([]string, 0, len(input.RecentApps)+1)
	sequence = append(sequence, input.CurrentApp)
	sequence = append(sequence, input.RecentApps...)

	distinct := map[string]struct{}{}
	for _, app := range sequence {
		distinct[app] = struct{}{}
	}
	switches := len(distinct) - 1
	if switches < 0 {
		switches = 0
	}

	intervalMin := input.CycleInterval.Minutes()
	var sessions []float64
	run := 0
	for i, app := range sequence {
		run++
		last := i == len(sequence)-1
		if last || sequence[i+1] != app {
			sessions = append(sessions, float64(run)*intervalMin)
			run = 0
		}
	}

	var longest, total float64
	for _, s := range sessions {
		total += s
		if s > longest {
			longest = s
		}
	}
	average := 0.0
	if len(sessions) > 0 {
		average = total / float64(len(sessions))
	}

	return FocusMetrics{
		ContextSwitches:   switches,
		FocusScore:        focusScore(switches, longest, average),
		AverageSessionMin: average,
		LongestSessionMin: longest,
	}
}

func focusScore(switches int, longestMin, averageMin float64) int {
	score := 100

	penalty := switches * 10
	if penalty > 50 {
		penalty = 50
	}
	score -= penalty

	if longestMin > 20 {
		bonus := int((longestMin-20)/10) * 5
		if bonus > 20 {
			bonus = 20
		}
		score += bonus
	}
	if averageMin > 15 {
		bonus := int(averageMin-15) * 2
		if bonus > 10 {
			bonus = 10
		}
		score += bonus
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
