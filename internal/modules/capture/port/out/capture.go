package out

import (
	"context"
	"time"

	telemetrydomain "worklens/internal/modules/telemetry/domain"
	trackingdomain "worklens/internal/modules/tracking/domain"
)

// MediaDevice is the capture-relevant slice of a provider session.
// The camera is exclusive: open on demand, close before the pass
// returns.
type MediaDevice interface {
	CameraOpen(ctx context.Context) (string, error)
	CameraFrame(ctx context.Context, handle string) (telemetrydomain.Frame, error)
	CameraClose(ctx context.Context, handle string) error
	Screenshot(ctx context.Context, blur bool) ([]byte, error)
}

// RecordBridge is the orchestrator's view of the tracking log: which
// record is owed media, whether the live selection still matches, and
// the attach operation itself.
type RecordBridge interface {
	NextMediaTarget() (trackingdomain.ObservationRecord, trackingdomain.SessionContext, bool)
	SessionMatches(session trackingdomain.SessionContext) bool
	BeginCapturePass()
	EndCapturePass()
	AttachMedia(ctx context.Context, recordID string, session trackingdomain.SessionContext, screenshots []trackingdomain.MediaRef, photo *trackingdomain.MediaRef) ([]trackingdomain.MediaRef, error)
}

// MediaStore persists raw capture bytes and returns the ref the
// record will carry.
type MediaStore interface {
	SaveScreenshot(ctx context.Context, data []byte, capturedAt time.Time) (trackingdomain.MediaRef, error)
	SavePhoto(ctx context.Context, data []byte, capturedAt time.Time) (trackingdomain.MediaRef, error)
}
