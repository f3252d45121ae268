package out

import (
	"context"
	"time"

	"worklens/internal/modules/tracking/domain"
)

// ActivitySnapshot is what the host telemetry reports at a cycle
// boundary. Counter reads are destructive on the provider side.
type ActivitySnapshot struct {
	App        string
	Title      string
	URL        string
	Keyboard   int
	Mouse      int
	SinceInput time.Duration
}

type ActivityProbe interface {
	Snapshot(ctx context.Context) (ActivitySnapshot, error)
}

// Classifier is the tracker's view of the classification engine.
type Classifier interface {
	ClassifyApp(ctx context.Context, process, title string) (domain.AppSignal, error)
	ClassifyURL(ctx context.Context, url string) (domain.URLSignal, error)
}

// RecordProjector mirrors committed records into downstream storage.
// The in-memory log stays the source of truth; projection failures are
// logged, never fatal.
type RecordProjector interface {
	Project(ctx context.Context, record domain.ObservationRecord) error
}

// RecordHistory reads projected records back for offline inspection,
// newest first.
type RecordHistory interface {
	Recent(ctx context.Context, limit int) ([]domain.ObservationRecord, error)
}

// MediaEvaluator is poked after every log-list change; the capture
// module decides whether a pass is due.
type MediaEvaluator interface {
	Evaluate(ctx context.Context)
}

type EventKind string

const (
	EventRecordCommitted EventKind = "record_committed"
	EventIdlePrompt      EventKind = "idle_prompt"
	EventMediaAttached   EventKind = "media_attached"
	EventSessionStopped  EventKind = "session_stopped"
)

type Event struct {
	Kind         EventKind
	Record       domain.ObservationRecord
	IdleDuration time.Duration
}

type EventSink interface {
	Publish(event Event)
}
