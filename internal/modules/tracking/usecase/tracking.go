package usecase

import (
	"context"
	"fmt"
	"strings"

	"worklens/internal/modules/tracking/domain"
	"worklens/internal/modules/tracking/dto"
	trackingout "worklens/internal/modules/tracking/port/out"
	"worklens/internal/modules/tracking/service"
	apperrors "worklens/internal/platform/errors"
)

// Interactor adapts the tracker service to the inbound port,
// validating input and translating domain state to DTOs. History
// reads go to the projection store and also work without a live
// tracker, which is how the standalone log command runs.
type Interactor struct {
	tracker *service.Tracker
	history trackingout.RecordHistory
}

func NewInteractor(tracker *service.Tracker, history trackingout.RecordHistory) *Interactor {
	return &Interactor{tracker: tracker, history: history}
}

func (i *Interactor) StartSession(ctx context.Context, projectID, taskID string) error {
	projectID = strings.TrimSpace(projectID)
	taskID = strings.TrimSpace(taskID)
	if projectID == "" || taskID == "" {
		return fmt.Errorf("%w: project and task are required", apperrors.ErrInvalidInput)
	}
	if i.tracker == nil {
		return apperrors.ErrNoActiveSession
	}
	return i.tracker.Start(ctx, domain.SessionContext{ProjectID: projectID, TaskID: taskID})
}

func (i *Interactor) StopSession(ctx context.Context) error {
	if i.tracker == nil {
		return apperrors.ErrNoActiveSession
	}
	return i.tracker.Stop()
}

func (i *Interactor) Status(ctx context.Context) (dto.Status, error) {
	if i.tracker == nil {
		return dto.Status{}, apperrors.ErrNoActiveSession
	}
	session, active := i.tracker.Session()
	status := dto.Status{
		Active:  active,
		Phase:   string(i.tracker.Phase()),
		Records: len(i.tracker.Records()),
	}
	if active {
		status.ProjectID = session.ProjectID
		status.TaskID = session.TaskID
		status.NextBoundary = i.tracker.NextBoundary()
	}
	if pending, ok := i.tracker.Pending(); ok {
		status.PendingIdle = true
		status.IdleFor = pending.IdleDuration
	}
	return status, nil
}

func (i *Interactor) Log(ctx context.Context, limit int) ([]dto.Record, error) {
	if i.tracker == nil {
		return nil, apperrors.ErrNoActiveSession
	}
	records := i.tracker.Records()
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return dto.FromRecords(records), nil
}

func (i *Interactor) History(ctx context.Context, limit int) ([]dto.Record, error) {
	if i.history == nil {
		return nil, fmt.Errorf("%w: no record history configured", apperrors.ErrInvalidInput)
	}
	records, err := i.history.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return dto.FromRecords(records), nil
}

func (i *Interactor) ResolveIdle(ctx context.Context, discard bool) error {
	if i.tracker == nil {
		return apperrors.ErrNoActiveSession
	}
	return i.tracker.ResolveIdle(ctx, discard)
}
