package domain_test

import (
	"testing"

	"worklens/internal/modules/scoring/domain"
)

func TestActivitySubScoreAnchors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		events int
		want   float64
	}{
		{0, 0},
		{5, 15},
		{10, 30},
		{30, 50},
		{50, 70},
		{100, 80},
		{1000, 100},
	}
	for _, tc := range cases {
		r := domain.CalculateCompositeScore(domain.CompositeInput{KeyboardEvents: tc.events}, domain.DefaultWeights())
		if r.Breakdown.Activity != tc.want {
			t.Fatalf("events=%d: expected activity %.1f, got %.1f", tc.events, tc.want, r.Breakdown.Activity)
		}
	}
}

func TestCompositeEndToEndProductiveEditor(t *testing.T) {
	t.Parallel()
	// VS Code cycle: app weight 1.0, no URL (falls back to app), focus
	// 80, 50 input events. 70*0.25 + 100*0.25 + 100*0.20 + 80*0.30 = 86.5.
	r := domain.CalculateCompositeScore(domain.CompositeInput{
		KeyboardEvents: 30,
		MouseEvents:    20,
		AppWeight:      1.0,
		HasAppWeight:   true,
		FocusScore:     80,
		HasFocusScore:  true,
	}, domain.DefaultWeights())
	if r.Breakdown.App != 100 || r.Breakdown.URL != 100 {
		t.Fatalf("expected app and url sub-scores 100, got %+v", r.Breakdown)
	}
	if r.Score != 87 {
		t.Fatalf("expected rounded score 87, got %d", r.Score)
	}
	if r.Band.Band != domain.BandExceptional {
		t.Fatalf("expected exceptional band, got %s", r.Band.Band)
	}
}

func TestCompositeDefaultsWhenSignalsAbsent(t *testing.T) {
	t.Parallel()
	r := domain.CalculateCompositeScore(domain.CompositeInput{KeyboardEvents: 10}, domain.DefaultWeights())
	if r.Breakdown.App != 50 {
		t.Fatalf("unclassified app should default to 50, got %.1f", r.Breakdown.App)
	}
	if r.Breakdown.URL != 50 {
		t.Fatalf("missing url should fall back to app sub-score, got %.1f", r.Breakdown.URL)
	}
	if r.Breakdown.Focus != 50 {
		t.Fatalf("missing focus should default to 50, got %.1f", r.Breakdown.Focus)
	}
}

func TestCompositeURLOverridesAppSubScore(t *testing.T) {
	t.Parallel()
	r := domain.CalculateCompositeScore(domain.CompositeInput{
		AppWeight:    1.0,
		HasAppWeight: true,
		URLWeight:    0.0,
		HasURLWeight: true,
	}, domain.DefaultWeights())
	if r.Breakdown.URL != 0 {
		t.Fatalf("expected url sub-score 0 from unproductive url, got %.1f", r.Breakdown.URL)
	}
}

func TestClassificationBands(t *testing.T) {
	t.Parallel()
	cases := []struct {
		score int
		want  domain.Band
	}{
		{100, domain.BandExceptional},
		{85, domain.BandExceptional},
		{84, domain.BandHigh},
		{70, domain.BandHigh},
		{50, domain.BandModerate},
		{49, domain.BandLow},
		{30, domain.BandLow},
		{29, domain.BandVeryLow},
		{0, domain.BandVeryLow},
	}
	for _, tc := range cases {
		if got := domain.Classify(tc.score).Band; got != tc.want {
			t.Fatalf("score %d: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}
