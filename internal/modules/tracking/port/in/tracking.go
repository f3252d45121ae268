package in

import (
	"context"

	"worklens/internal/modules/tracking/dto"
)

// Tracking is the session-facing surface of the tracker: start and
// stop sessions, inspect the log, and settle idle decisions.
type Tracking interface {
	StartSession(ctx context.Context, projectID, taskID string) error
	StopSession(ctx context.Context) error
	Status(ctx context.Context) (dto.Status, error)
	Log(ctx context.Context, limit int) ([]dto.Record, error)
	History(ctx context.Context, limit int) ([]dto.Record, error)
	ResolveIdle(ctx context.Context, discard bool) error
}
