package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"worklens/internal/modules/tracking/domain"
	"worklens/internal/modules/tracking/usecase"
	apperrors "worklens/internal/platform/errors"
)

type stubHistory struct {
	records []domain.ObservationRecord
}

func (s stubHistory) Recent(ctx context.Context, limit int) ([]domain.ObservationRecord, error) {
	if limit > 0 && limit < len(s.records) {
		return s.records[:limit], nil
	}
	return s.records, nil
}

func TestStartSessionValidatesInput(t *testing.T) {
	t.Parallel()
	interactor := usecase.NewInteractor(nil, nil)
	if err := interactor.StartSession(context.Background(), "  ", "t1"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := interactor.StartSession(context.Background(), "p1", ""); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSessionOperationsWithoutTracker(t *testing.T) {
	t.Parallel()
	interactor := usecase.NewInteractor(nil, stubHistory{})
	if err := interactor.StopSession(context.Background()); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	if _, err := interactor.Status(context.Background()); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	if err := interactor.ResolveIdle(context.Background(), true); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestHistoryMapsProjectedRecords(t *testing.T) {
	t.Parallel()
	photo := domain.MediaRef{ID: "p1", SHA256: "abc"}
	history := stubHistory{records: []domain.ObservationRecord{
		{
			ID:             "r2",
			Timestamp:      time.Date(2026, 3, 1, 9, 20, 0, 0, time.UTC),
			App:            "Code.exe",
			CompositeScore: 87,
			Classification: "exceptional",
			Photo:          &photo,
		},
		{ID: "r1", Timestamp: time.Date(2026, 3, 1, 9, 10, 0, 0, time.UTC), App: "slack.exe"},
	}}
	interactor := usecase.NewInteractor(nil, history)

	out, err := interactor.History(context.Background(), 1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected limit applied, got %d records", len(out))
	}
	if out[0].ID != "r2" || out[0].Score != 87 || out[0].Band != "exceptional" || !out[0].HasPhoto {
		t.Fatalf("unexpected mapping: %+v", out[0])
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	t.Parallel()
	interactor := usecase.NewInteractor(nil, nil)
	if _, err := interactor.History(context.Background(), 10); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
