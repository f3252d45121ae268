package domain_test

import (
	"testing"
	"time"

	"worklens/internal/modules/scoring/domain"
)

func TestFocusMetricsSingleAppFullWindow(t *testing.T) {
	t.Parallel()
	m := domain.CalculateFocusMetrics(domain.FocusInput{
		CurrentApp:    "Code",
		RecentApps:    []string{"Code", "Code", "Code", "Code", "Code"},
		CycleInterval: 10 * time.Minute,
	})
	if m.ContextSwitches != 0 {
		t.Fatalf("expected 0 switches, got %d", m.ContextSwitches)
	}
	if m.LongestSessionMin != 60 {
		t.Fatalf("expected 60 minute session, got %.1f", m.LongestSessionMin)
	}
	if m.FocusScore != 100 {
		t.Fatalf("expected perfect focus, got %d", m.FocusScore)
	}
}

func TestFocusMetricsCountsDistinctAppsNotTransitions(t *testing.T) {
	t.Parallel()
	m := domain.CalculateFocusMetrics(domain.FocusInput{
		CurrentApp:    "Code",
		RecentApps:    []string{"Slack", "Code", "Slack", "Browser"},
		CycleInterval: 10 * time.Minute,
	})
	if m.ContextSwitches != 2 {
		t.Fatalf("expected 2 switches for 3 distinct apps, got %d", m.ContextSwitches)
	}
}

func TestFocusMetricsCoalescesConsecutiveCyclesIntoSessions(t *testing.T) {
	t.Parallel()
	m := domain.CalculateFocusMetrics(domain.FocusInput{
		CurrentApp:    "Code",
		RecentApps:    []string{"Code", "Slack", "Slack", "Slack", "Code"},
		CycleInterval: 10 * time.Minute,
	})
	// Sessions newest-first: Code x2 (20m), Slack x3 (30m), Code x1 (10m).
	if m.LongestSessionMin != 30 {
		t.Fatalf("expected longest session 30m, got %.1f", m.LongestSessionMin)
	}
	if m.AverageSessionMin != 20 {
		t.Fatalf("expected average session 20m, got %.1f", m.AverageSessionMin)
	}
}

func TestFocusScoreClampsAtHundredWithBonuses(t *testing.T) {
	t.Parallel()
	// contextSwitches=0, longest=25, average=20: the session bonuses
	// cannot push the score past the clamp.
	m := domain.CalculateFocusMetrics(domain.FocusInput{
		CurrentApp:    "Code",
		RecentApps:    []string{"Code", "Code", "Code", "Code"},
		CycleInterval: 5 * time.Minute,
	})
	if m.ContextSwitches != 0 || m.LongestSessionMin != 25 || m.AverageSessionMin != 25 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
	if m.FocusScore != 100 {
		t.Fatalf("expected clamped focus 100, got %d", m.FocusScore)
	}
}

func TestFocusScorePenaltyCapsAtFifty(t *testing.T) {
	t.Parallel()
	m := domain.CalculateFocusMetrics(domain.FocusInput{
		CurrentApp:    "a",
		RecentApps:    []string{"b", "c", "d", "e", "f", "g", "h"},
		CycleInterval: time.Minute,
	})
	if m.ContextSwitches != 7 {
		t.Fatalf("expected 7 switches, got %d", m.ContextSwitches)
	}
	if m.FocusScore != 50 {
		t.Fatalf("expected penalty capped at 50, got score %d", m.FocusScore)
	}
}

func TestFocusMetricsEmptyWindow(t *testing.T) {
	t.Parallel()
	m := domain.CalculateFocusMetrics(domain.FocusInput{
		CurrentApp:    "Code",
		CycleInterval: time.Minute,
	})
	if m.ContextSwitches != 0 {
		t.Fatalf("expected 0 switches, got %d", m.ContextSwitches)
	}
	if m.LongestSessionMin != 1 {
		t.Fatalf("expected single-cycle session, got %.1f", m.LongestSessionMin)
	}
}
