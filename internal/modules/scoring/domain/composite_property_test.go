package domain_test

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"worklens/internal/modules/scoring/domain"
)

// Property: the composite score stays within [0,100] for any valid
// combination of signals.
func TestProperty_CompositeScoreBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := domain.CompositeInput{
			KeyboardEvents: rapid.IntRange(0, 100000).Draw(rt, "keyboard"),
			MouseEvents:    rapid.IntRange(0, 100000).Draw(rt, "mouse"),
			AppWeight:      rapid.Float64Range(0, 1).Draw(rt, "appWeight"),
			HasAppWeight:   rapid.Bool().Draw(rt, "hasApp"),
			URLWeight:      rapid.Float64Range(0, 1).Draw(rt, "urlWeight"),
			HasURLWeight:   rapid.Bool().Draw(rt, "hasURL"),
			FocusScore:     rapid.IntRange(0, 100).Draw(rt, "focus"),
			HasFocusScore:  rapid.Bool().Draw(rt, "hasFocus"),
		}
		r := domain.CalculateCompositeScore(input, domain.DefaultWeights())
		if r.Score < 0 || r.Score > 100 {
			rt.Fatalf("score out of range: %d", r.Score)
		}
		if r.Band.Band == "" {
			rt.Fatalf("every score must map to a band")
		}
	})
}

// Property: sub-scores contribute independently, so swapping two equal
// weights between components with equal sub-scores never changes the
// result, and the score is monotone in the focus signal.
func TestProperty_CompositeMonotoneInFocus(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := domain.CompositeInput{
			KeyboardEvents: rapid.IntRange(0, 500).Draw(rt, "keyboard"),
			AppWeight:      rapid.Float64Range(0, 1).Draw(rt, "appWeight"),
			HasAppWeight:   true,
			FocusScore:     rapid.IntRange(0, 99).Draw(rt, "focus"),
			HasFocusScore:  true,
		}
		higher := base
		higher.FocusScore = rapid.IntRange(base.FocusScore+1, 100).Draw(rt, "higherFocus")

		lo := domain.CalculateCompositeScore(base, domain.DefaultWeights())
		hi := domain.CalculateCompositeScore(higher, domain.DefaultWeights())
		if hi.Score < lo.Score {
			rt.Fatalf("raising focus %d->%d lowered score %d->%d",
				base.FocusScore, higher.FocusScore, lo.Score, hi.Score)
		}
	})
}

// Property: the focus score is always within [0,100] and zero switches
// never score below a window full of switches.
func TestProperty_FocusScoreBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		apps := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}`), 0, 12).Draw(rt, "apps")
		current := rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "current")
		interval := time.Duration(rapid.IntRange(1, 10).Draw(rt, "intervalMin")) * time.Minute

		m := domain.CalculateFocusMetrics(domain.FocusInput{
			CurrentApp:    current,
			RecentApps:    apps,
			CycleInterval: interval,
		})
		if m.FocusScore < 0 || m.FocusScore > 100 {
			rt.Fatalf("focus score out of range: %d", m.FocusScore)
		}
		if m.ContextSwitches < 0 {
			rt.Fatalf("negative switches: %d", m.ContextSwitches)
		}
	})
}
