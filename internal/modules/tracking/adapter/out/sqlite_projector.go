package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"worklens/internal/modules/tracking/domain"

	_ "modernc.org/sqlite"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// SQLiteProjector mirrors committed records into a local sqlite file.
// Media rows are rewritten wholesale on each projection so an upsert
// after a capture pass stays idempotent.
type SQLiteProjector struct {
	db *sql.DB
}

func NewSQLiteProjector(dbPath string) (*SQLiteProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS observations (
  id TEXT PRIMARY KEY,
  timestamp TEXT NOT NULL,
  project_id TEXT NOT NULL,
  task_id TEXT NOT NULL,
  app TEXT,
  title TEXT,
  url TEXT,
  keyboard_events INTEGER NOT NULL,
  mouse_events INTEGER NOT NULL,
  app_category TEXT,
  app_weight REAL,
  url_category TEXT,
  url_weight REAL,
  context_switches INTEGER NOT NULL,
  focus_score INTEGER NOT NULL,
  average_session_min REAL NOT NULL,
  longest_session_min REAL NOT NULL,
  composite_score INTEGER NOT NULL,
  classification TEXT NOT NULL,
  idle INTEGER NOT NULL,
  idle_seconds INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS observation_media (
  id TEXT PRIMARY KEY,
  observation_id TEXT NOT NULL REFERENCES observations(id),
  kind TEXT NOT NULL,
  sha256 TEXT NOT NULL,
  path TEXT NOT NULL,
  captured_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_media_observation ON observation_media(observation_id);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create observation tables: %w", err)
	}
	return nil
}

func (s *SQLiteProjector) Project(ctx context.Context, record domain.ObservationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin projection tx: %w", err)
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO observations (id, timestamp, project_id, task_id, app, title, url,
  keyboard_events, mouse_events, app_category, app_weight, url_category, url_weight,
  context_switches, focus_score, average_session_min, longest_session_min,
  composite_score, classification, idle, idle_seconds)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  app_category=excluded.app_category,
  app_weight=excluded.app_weight,
  url_category=excluded.url_category,
  url_weight=excluded.url_weight,
  composite_score=excluded.composite_score,
  classification=excluded.classification;
`
	var urlCategory string
	var urlWeight float64
	if record.URLSignal != nil {
		urlCategory = record.URLSignal.Category
		urlWeight = record.URLSignal.Weight
	}
	_, err = tx.ExecContext(ctx, stmt,
		record.ID,
		record.Timestamp.Format(timeFormat),
		record.ProjectID,
		record.TaskID,
		record.App,
		record.Title,
		record.URL,
		record.KeyboardEvents,
		record.MouseEvents,
		record.AppSignal.Category,
		record.AppSignal.Weight,
		urlCategory,
		urlWeight,
		record.ContextSwitches,
		record.FocusScore,
		record.AverageSessionMin,
		record.LongestSessionMin,
		record.CompositeScore,
		record.Classification,
		boolToInt(record.Idle),
		int(record.IdleDuration/time.Second),
	)
	if err != nil {
		return fmt.Errorf("upsert observation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM observation_media WHERE observation_id = ?`, record.ID); err != nil {
		return fmt.Errorf("clear media rows: %w", err)
	}
	const mediaStmt = `
INSERT INTO observation_media (id, observation_id, kind, sha256, path, captured_at)
VALUES (?, ?, ?, ?, ?, ?);
`
	for _, ref := range record.Screenshots {
		if _, err := tx.ExecContext(ctx, mediaStmt, ref.ID, record.ID, "screenshot", ref.SHA256, ref.Path, ref.CapturedAt.Format(timeFormat)); err != nil {
			return fmt.Errorf("insert screenshot row: %w", err)
		}
	}
	if record.Photo != nil {
		ref := record.Photo
		if _, err := tx.ExecContext(ctx, mediaStmt, ref.ID, record.ID, "photo", ref.SHA256, ref.Path, ref.CapturedAt.Format(timeFormat)); err != nil {
			return fmt.Errorf("insert photo row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit projection: %w", err)
	}
	return nil
}

// Recent reads back projected records, newest first. Media rows are
// joined in so the counts match what was attached.
func (s *SQLiteProjector) Recent(ctx context.Context, limit int) ([]domain.ObservationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
SELECT id, timestamp, project_id, task_id, app, title, url,
  keyboard_events, mouse_events, app_category, app_weight, url_category, url_weight,
  context_switches, focus_score, average_session_min, longest_session_min,
  composite_score, classification, idle, idle_seconds
FROM observations ORDER BY timestamp DESC LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var records []domain.ObservationRecord
	for rows.Next() {
		var record domain.ObservationRecord
		var ts, urlCategory string
		var urlWeight float64
		var idle, idleSeconds int
		if err := rows.Scan(
			&record.ID, &ts, &record.ProjectID, &record.TaskID,
			&record.App, &record.Title, &record.URL,
			&record.KeyboardEvents, &record.MouseEvents,
			&record.AppSignal.Category, &record.AppSignal.Weight,
			&urlCategory, &urlWeight,
			&record.ContextSwitches, &record.FocusScore,
			&record.AverageSessionMin, &record.LongestSessionMin,
			&record.CompositeScore, &record.Classification,
			&idle, &idleSeconds,
		); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		if parsed, err := time.Parse(timeFormat, ts); err == nil {
			record.Timestamp = parsed
		}
		if urlCategory != "" {
			record.URLSignal = &domain.URLSignal{Category: urlCategory, Weight: urlWeight}
		}
		record.Idle = idle != 0
		record.IdleDuration = time.Duration(idleSeconds) * time.Second
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}
	if err := s.loadMedia(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *SQLiteProjector) loadMedia(ctx context.Context, records []domain.ObservationRecord) error {
	byID := make(map[string]*domain.ObservationRecord, len(records))
	for i := range records {
		byID[records[i].ID] = &records[i]
	}
	if len(byID) == 0 {
		return nil
	}
	const query = `SELECT id, observation_id, kind, sha256, path, captured_at FROM observation_media;`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query media: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ref domain.MediaRef
		var observationID, kind, capturedAt string
		if err := rows.Scan(&ref.ID, &observationID, &kind, &ref.SHA256, &ref.Path, &capturedAt); err != nil {
			return fmt.Errorf("scan media: %w", err)
		}
		record, ok := byID[observationID]
		if !ok {
			continue
		}
		if parsed, err := time.Parse(timeFormat, capturedAt); err == nil {
			ref.CapturedAt = parsed
		}
		if kind == "photo" {
			photo := ref
			record.Photo = &photo
		} else {
			record.Screenshots = append(record.Screenshots, ref)
		}
	}
	return rows.Err()
}

func (s *SQLiteProjector) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
