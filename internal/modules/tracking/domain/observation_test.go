package domain_test

import (
	"errors"
	"testing"

	"worklens/internal/modules/tracking/domain"
)

func ref(id, sha string) domain.MediaRef {
	return domain.MediaRef{ID: id, SHA256: sha}
}

func TestMergeMediaDedupsScreenshotsByContent(t *testing.T) {
	t.Parallel()
	record := domain.ObservationRecord{ID: "r1"}
	kept := record.MergeMedia([]domain.MediaRef{ref("s1", "aaa"), ref("s2", "aaa"), ref("s3", "bbb")}, nil)
	if len(record.Screenshots) != 2 {
		t.Fatalf("expected 2 screenshots after dedup, got %d", len(record.Screenshots))
	}
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept refs, got %d", len(kept))
	}
}

func TestMergeMediaAppendsToExistingScreenshots(t *testing.T) {
	t.Parallel()
	record := domain.ObservationRecord{Screenshots: []domain.MediaRef{ref("s1", "aaa")}}
	record.MergeMedia([]domain.MediaRef{ref("s2", "aaa"), ref("s3", "bbb")}, nil)
	if len(record.Screenshots) != 2 {
		t.Fatalf("expected append without duplicate, got %d entries", len(record.Screenshots))
	}
	if record.Screenshots[0].ID != "s1" {
		t.Fatalf("existing screenshots must be preserved, got %+v", record.Screenshots)
	}
}

func TestMergeMediaReplacesPhotoOnlyWhenContentDiffers(t *testing.T) {
	t.Parallel()
	existing := ref("p1", "aaa")
	record := domain.ObservationRecord{Photo: &existing}

	same := ref("p2", "aaa")
	if kept := record.MergeMedia(nil, &same); len(kept) != 0 {
		t.Fatalf("identical photo must not replace, kept %+v", kept)
	}
	if record.Photo.ID != "p1" {
		t.Fatalf("expected original photo retained, got %s", record.Photo.ID)
	}

	different := ref("p3", "bbb")
	record.MergeMedia(nil, &different)
	if record.Photo.ID != "p3" {
		t.Fatalf("expected replacement photo, got %s", record.Photo.ID)
	}
}

func TestPhaseTransitions(t *testing.T) {
	t.Parallel()
	phase := domain.PhaseIdle
	steps := []struct {
		event domain.PhaseEvent
		want  domain.Phase
	}{
		{domain.EventStart, domain.PhaseScheduled},
		{domain.EventCaptureBegin, domain.PhaseCapturing},
		{domain.EventCaptureEnd, domain.PhaseScheduled},
		{domain.EventHoldIdle, domain.PhaseAwaitingIdleDecision},
		{domain.EventResolveIdle, domain.PhaseScheduled},
		{domain.EventStop, domain.PhaseIdle},
	}
	for _, step := range steps {
		next, err := phase.Apply(step.event)
		if err != nil {
			t.Fatalf("%s on %s: %v", step.event, phase, err)
		}
		if next != step.want {
			t.Fatalf("%s on %s: expected %s, got %s", step.event, phase, step.want, next)
		}
		phase = next
	}
}

func TestPhaseRejectsUndefinedTransitions(t *testing.T) {
	t.Parallel()
	if _, err := domain.PhaseIdle.Apply(domain.EventHoldIdle); !errors.Is(err, domain.ErrBadPhaseTransition) {
		t.Fatalf("expected ErrBadPhaseTransition, got %v", err)
	}
	if _, err := domain.PhaseAwaitingIdleDecision.Apply(domain.EventCaptureBegin); !errors.Is(err, domain.ErrBadPhaseTransition) {
		t.Fatalf("expected ErrBadPhaseTransition, got %v", err)
	}
}
