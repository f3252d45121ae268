package domain

import "math"

type Band string

const (
	BandExceptional Band = "exceptional"
	BandHigh        Band = "high"
	BandModerate    Band = "moderate"
	BandLow         Band = "low"
	BandVeryLow     Band = "very_low"
)

// BandInfo carries the stable presentation metadata for a band. The
// engine never renders it; downstream surfaces do.
type BandInfo struct {
	Band        Band
	Label       string
	Description string
	Color       string
}

var bands = []struct {
	min  int
	info BandInfo
}{
	{85, BandInfo{BandExceptional, "Exceptional", "Sustained deep work on productive tools", "#22c55e"}},
	{70, BandInfo{BandHigh, "High", "Consistently productive with minor distractions", "#84cc16"}},
	{50, BandInfo{BandModerate, "Moderate", "Mixed productive and neutral activity", "#eab308"}},
	{30, BandInfo{BandLow, "Low", "Mostly neutral or fragmented activity", "#f97316"}},
	{0, BandInfo{BandVeryLow, "Very low", "Little productive signal detected", "#ef4444"}},
}

type Weights struct {
	Activity float64
	App      float64
	URL      float64
	Focus    float64
}

func DefaultWeights() Weights {
	return Weights{Activity: 0.25, App: 0.25, URL: 0.20, Focus: 0.30}
}

// CompositeInput holds the per-cycle signals. The Has* flags mark
// signals that are absent rather than zero: an unclassified app and a
// missing focus score both fall back to 50, and a missing URL
// classification falls back to the app sub-score (non-browser cycles).
type CompositeInput struct {
	KeyboardEvents int
	MouseEvents    int
	AppWeight      float64
	HasAppWeight   bool
	URLWeight      float64
	HasURLWeight   bool
	FocusScore     int
	HasFocusScore  bool
}

type Breakdown struct {
	Activity float64
	App      float64
	URL      float64
	Focus    float64
}

type CompositeResult struct {
	Score     int
	Breakdown Breakdown
	Band      BandInfo
}

func CalculateCompositeScore(input CompositeInput, weights Weights) CompositeResult {
	app := 50.0
	if input.HasAppWeight {
		app = input.AppWeight * 100
	}
	url := app
	if input.HasURLWeight {
		url = input.URLWeight * 100
	}
	focus := 50.0
	if input.HasFocusScore {
		focus = float64(input.FocusScore)
	}
	breakdown := Breakdown{
		Activity: activityScore(input.KeyboardEvents + input.MouseEvents),
		App:      app,
		URL:      url,
		Focus:    focus,
	}

	raw := breakdown.Activity*weights.Activity +
		breakdown.App*weights.App +
		breakdown.URL*weights.URL +
		breakdown.Focus*weights.Focus
	score := int(math.Round(raw))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return CompositeResult{Score: score, Breakdown: breakdown, Band: Classify(score)}
}

// Classify maps a composite score to its band.
func Classify(score int) BandInfo {
	for _, b := range bands {
		if score >= b.min {
			return b.info
		}
	}
	return bands[len(bands)-1].info
}

// activityScore maps combined keyboard+mouse events onto 0-100.
// Sparse input ramps quickly, then flattens: 0 events scores 0, 10
// events 30, 50 events exactly 70, and the tail above 50 adds at most
// 30 more.
func activityScore(events int) float64 {
	switch {
	case events <= 0:
		return 0
	case events < 10:
		return float64(events) * 3
	case events < 50:
		return 30 + float64(events-10)
	default:
		extra := float64(events-50) / 5
		if extra > 30 {
			extra = 30
		}
		return 70 + extra
	}
}
