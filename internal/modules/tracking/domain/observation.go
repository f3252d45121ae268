package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrStaleTask          = errors.New("record task no longer matches session selection")
	ErrRecordNotFound     = errors.New("observation record not found")
	ErrBadPhaseTransition = errors.New("invalid session phase transition")
)

// SessionContext identifies what the user is tracking time against.
// It is captured on every record for the stale-task guard.
type SessionContext struct {
	ProjectID string
	TaskID    string
}

func (s SessionContext) Matches(other SessionContext) bool {
	return s.ProjectID == other.ProjectID && s.TaskID == other.TaskID
}

// MediaRef points at a stored screenshot or webcam photo. SHA256 is
// the content key used for dedup.
type MediaRef struct {
	ID         string
	SHA256     string
	Path       string
	CapturedAt time.Time
}

// AppSignal is the classification verdict for the active application.
type AppSignal struct {
	Category   string
	Weight     float64
	MatchType  string
	Confidence float64
}

// URLSignal is the classification verdict for the active URL, present
// only for browser cycles. When present it overrides AppSignal
// downstream.
type URLSignal struct {
	Domain     string
	Path       string
	Category   string
	Weight     float64
	MatchType  string
	Confidence float64
}

// ObservationRecord is one scheduler cycle's worth of telemetry and
// derived scores. Score fields are final at creation; media refs are
// the only fields appended later, and only after commit.
type ObservationRecord struct {
	ID        string
	Timestamp time.Time // cycle boundary, not wall-clock-at-creation
	ProjectID string
	TaskID    string

	KeyboardEvents int
	MouseEvents    int
	App            string
	Title          string
	URL            string

	AppSignal AppSignal
	URLSignal *URLSignal

	ContextSwitches   int
	FocusScore        int
	AverageSessionMin float64
	LongestSessionMin float64

	CompositeScore int
	Classification string

	Idle         bool
	IdleDuration time.Duration

	Screenshots []MediaRef
	Photo       *MediaRef
}

// NeedsScreenshots reports whether a capture pass still owes this
// record screenshots.
func (r ObservationRecord) NeedsScreenshots() bool {
	return len(r.Screenshots) == 0
}

func (r ObservationRecord) NeedsPhoto() bool {
	return r.Photo == nil
}

// MergeMedia applies a capture pass result to a committed record.
// Screenshots append to the existing list, deduplicated by content
// hash; the photo replaces the prior one only when content differs.
// Returns the refs that were actually retained.
func (r *ObservationRecord) MergeMedia(screenshots []MediaRef, photo *MediaRef) (kept []MediaRef) {
	seen := make(map[string]struct{}, len(r.Screenshots))
	for _, ref := range r.Screenshots {
		seen[ref.SHA256] = struct{}{}
	}
	for _, ref := range screenshots {
		if _, dup := seen[ref.SHA256]; dup {
			continue
		}
		seen[ref.SHA256] = struct{}{}
		r.Screenshots = append(r.Screenshots, ref)
		kept = append(kept, ref)
	}
	if photo != nil {
		if r.Photo == nil || r.Photo.SHA256 != photo.SHA256 {
			r.Photo = photo
			kept = append(kept, *photo)
		}
	}
	return kept
}

// Phase is the explicit session state machine replacing ad hoc
// boolean coordination between the scheduler, idle gate, and capture
// pass.
type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseScheduled            Phase = "scheduled"
	PhaseCapturing            Phase = "capturing"
	PhaseAwaitingIdleDecision Phase = "awaiting_idle_decision"
)

type PhaseEvent string

const (
	EventStart        PhaseEvent = "start"
	EventHoldIdle     PhaseEvent = "hold_idle"
	EventResolveIdle  PhaseEvent = "resolve_idle"
	EventCaptureBegin PhaseEvent = "capture_begin"
	EventCaptureEnd   PhaseEvent = "capture_end"
	EventStop         PhaseEvent = "stop"
)

var phaseTransitions = map[Phase]map[PhaseEvent]Phase{
	PhaseIdle: {
		EventStart: PhaseScheduled,
	},
	PhaseScheduled: {
		EventHoldIdle:     PhaseAwaitingIdleDecision,
		EventCaptureBegin: PhaseCapturing,
		EventStop:         PhaseIdle,
	},
	PhaseCapturing: {
		EventCaptureEnd: PhaseScheduled,
		EventHoldIdle:   PhaseAwaitingIdleDecision,
		EventStop:       PhaseIdle,
	},
	PhaseAwaitingIdleDecision: {
		EventResolveIdle: PhaseScheduled,
		// A pass that was already in flight when the hold happened may
		// finish while the decision is still outstanding.
		EventCaptureEnd: PhaseAwaitingIdleDecision,
		EventStop:       PhaseIdle,
	},
}

// Apply validates and performs a phase transition.
func (p Phase) Apply(event PhaseEvent) (Phase, error) {
	next, ok := phaseTransitions[p][event]
	if !ok {
		return p, fmt.Errorf("%w: %s on %s", ErrBadPhaseTransition, event, p)
	}
	return next, nil
}
