package out

import (
	"context"
	"time"

	"worklens/internal/modules/telemetry/domain"
)

// Session is one live connection to a telemetry provider. Camera
// handles are scoped to the session and must be closed before the
// session is.
type Session interface {
	Info(ctx context.Context) (domain.Info, error)
	ActiveWindow(ctx context.Context) (domain.WindowSnapshot, error)
	InputCounts(ctx context.Context) (domain.InputCounts, error)
	ElapsedSinceInput(ctx context.Context) (time.Duration, error)
	CameraOpen(ctx context.Context) (string, error)
	CameraFrame(ctx context.Context, handle string) (domain.Frame, error)
	CameraClose(ctx context.Context, handle string) error
	Screenshot(ctx context.Context, blur bool) ([]byte, error)
	Close()
}

// Host starts provider processes and hands out sessions.
type Host interface {
	Open(ctx context.Context, manifest domain.Manifest) (Session, error)
}
