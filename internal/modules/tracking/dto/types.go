package dto

import (
	"time"

	"worklens/internal/modules/tracking/domain"
)

// Record is the flattened observation view handed to CLI and TUI
// surfaces.
type Record struct {
	ID             string
	Timestamp      time.Time
	ProjectID      string
	TaskID         string
	App            string
	Title          string
	URL            string
	KeyboardEvents int
	MouseEvents    int
	AppCategory    string
	URLCategory    string
	FocusScore     int
	Switches       int
	Score          int
	Band           string
	Idle           bool
	Screenshots    int
	HasPhoto       bool
}

type Status struct {
	Active       bool
	Phase        string
	ProjectID    string
	TaskID       string
	NextBoundary time.Time
	Records      int
	PendingIdle  bool
	IdleFor      time.Duration
}

func FromRecord(r domain.ObservationRecord) Record {
	out := Record{
		ID:             r.ID,
		Timestamp:      r.Timestamp,
		ProjectID:      r.ProjectID,
		TaskID:         r.TaskID,
		App:            r.App,
		Title:          r.Title,
		URL:            r.URL,
		KeyboardEvents: r.KeyboardEvents,
		MouseEvents:    r.MouseEvents,
		AppCategory:    r.AppSignal.Category,
		FocusScore:     r.FocusScore,
		Switches:       r.ContextSwitches,
		Score:          r.CompositeScore,
		Band:           r.Classification,
		Idle:           r.Idle,
		Screenshots:    len(r.Screenshots),
		HasPhoto:       r.Photo != nil,
	}
	if r.URLSignal != nil {
		out.URLCategory = r.URLSignal.Category
	}
	return out
}

func FromRecords(records []domain.ObservationRecord) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, FromRecord(r))
	}
	return out
}
