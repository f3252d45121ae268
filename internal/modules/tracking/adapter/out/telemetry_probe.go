package out

import (
	"context"
	"fmt"

	telemetryout "worklens/internal/modules/telemetry/port/out"
	trackingout "worklens/internal/modules/tracking/port/out"
)

// TelemetryProbe assembles a cycle snapshot from a provider session.
// Input counters are read-and-reset on the provider side, so a probe
// failure after the counter read would lose events; counters are read
// last to keep the loss window small.
type TelemetryProbe struct {
	session telemetryout.Session
}

func NewTelemetryProbe(session telemetryout.Session) *TelemetryProbe {
	return &TelemetryProbe{session: session}
}

func (p *TelemetryProbe) Snapshot(ctx context.Context) (trackingout.ActivitySnapshot, error) {
	window, err := p.session.ActiveWindow(ctx)
	if err != nil {
		return trackingout.ActivitySnapshot{}, fmt.Errorf("active window: %w", err)
	}
	sinceInput, err := p.session.ElapsedSinceInput(ctx)
	if err != nil {
		return trackingout.ActivitySnapshot{}, fmt.Errorf("elapsed since input: %w", err)
	}
	counts, err := p.session.InputCounts(ctx)
	if err != nil {
		return trackingout.ActivitySnapshot{}, fmt.Errorf("input counts: %w", err)
	}
	return trackingout.ActivitySnapshot{
		App:        window.App,
		Title:      window.Title,
		URL:        window.URL,
		Keyboard:   counts.Keyboard,
		Mouse:      counts.Mouse,
		SinceInput: sinceInput,
	}, nil
}
