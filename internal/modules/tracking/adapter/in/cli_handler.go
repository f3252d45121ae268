package in

import (
	"context"

	"worklens/internal/modules/tracking/dto"
	trackingin "worklens/internal/modules/tracking/port/in"
)

type CLIHandler struct {
	usecase trackingin.Tracking
}

func NewCLIHandler(usecase trackingin.Tracking) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, projectID, taskID string) error {
	return h.usecase.StartSession(ctx, projectID, taskID)
}

func (h CLIHandler) Stop(ctx context.Context) error {
	return h.usecase.StopSession(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.Status, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Log(ctx context.Context, limit int) ([]dto.Record, error) {
	return h.usecase.Log(ctx, limit)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]dto.Record, error) {
	return h.usecase.History(ctx, limit)
}

func (h CLIHandler) ResolveIdle(ctx context.Context, discard bool) error {
	return h.usecase.ResolveIdle(ctx, discard)
}
