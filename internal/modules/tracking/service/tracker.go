package service

import (
	"context"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	scoring "worklens/internal/modules/scoring/domain"
	"worklens/internal/modules/tracking/domain"
	trackingout "worklens/internal/modules/tracking/port/out"
	"worklens/internal/platform/clock"
	apperrors "worklens/internal/platform/errors"
	"worklens/internal/platform/id"
)

type Config struct {
	Interval      time.Duration
	Lookback      time.Duration
	IdleThreshold time.Duration
}

// Tracker runs one tracking session: it wakes at absolute cycle
// boundaries, assembles a fully scored ObservationRecord per cycle,
// gates idle cycles behind the single pending-decision slot, and owns
// the newest-first committed log.
type Tracker struct {
	cfg        Config
	clock      clock.Clock
	alarm      clock.Alarm
	idGen      id.Generator
	probe      trackingout.ActivityProbe
	classifier trackingout.Classifier
	projector  trackingout.RecordProjector
	events     trackingout.EventSink
	logger     hclog.Logger

	mu        sync.Mutex
	phase     domain.Phase
	session   domain.SessionContext
	records   []domain.ObservationRecord
	pending   *domain.ObservationRecord
	evaluator trackingout.MediaEvaluator
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewTracker(
	cfg Config,
	clk clock.Clock,
	alarm clock.Alarm,
	idGen id.Generator,
	probe trackingout.ActivityProbe,
	classifier trackingout.Classifier,
	projector trackingout.RecordProjector,
	events trackingout.EventSink,
	logger hclog.Logger,
) *Tracker {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Tracker{
		cfg:        cfg,
		clock:      clk,
		alarm:      alarm,
		idGen:      idGen,
		probe:      probe,
		classifier: classifier,
		projector:  projector,
		events:     events,
		logger:     logger,
		phase:      domain.PhaseIdle,
	}
}

// SetMediaEvaluator wires the capture module in after construction;
// the two modules reference each other through ports.
func (t *Tracker) SetMediaEvaluator(evaluator trackingout.MediaEvaluator) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.evaluator = evaluator
}

// Start begins a session and schedules the first wake at the next
// absolute boundary. An unresolved idle decision from a previous
// session must be resolved first; the slot is never cleared
// implicitly.
func (t *Tracker) Start(ctx context.Context, session domain.SessionContext) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		return apperrors.ErrDecisionPending
	}
	next, err := t.phase.Apply(domain.EventStart)
	if err != nil {
		return apperrors.ErrSessionAlreadyActive
	}
	t.phase = next
	t.session = session
	t.records = nil

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.run(runCtx, t.done)
	return nil
}

// Stop cancels the pending wake immediately. An in-flight capture pass
// is not aborted; it finishes against its own context and releases its
// camera handle.
func (t *Tracker) Stop() error {
	t.mu.Lock()
	if t.phase == domain.PhaseIdle {
		t.mu.Unlock()
		return apperrors.ErrNoActiveSession
	}
	next, err := t.phase.Apply(domain.EventStop)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	t.phase = next
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	t.publish(trackingout.Event{Kind: trackingout.EventSessionStopped})
	return nil
}

func (t *Tracker) Phase() domain.Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

func (t *Tracker) Session() (domain.SessionContext, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session, t.phase != domain.PhaseIdle
}

// Records returns the committed log, newest first.
func (t *Tracker) Records() []domain.ObservationRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.ObservationRecord, len(t.records))
	copy(out, t.records)
	return out
}

func (t *Tracker) Pending() (domain.ObservationRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		return domain.ObservationRecord{}, false
	}
	return *t.pending, true
}

// NextBoundary reports when the next cycle fires.
func (t *Tracker) NextBoundary() time.Time {
	return domain.NextBoundary(t.clock.Now(), t.cfg.Interval)
}

func (t *Tracker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		boundary := domain.NextBoundary(t.clock.Now(), t.cfg.Interval)
		if err := t.alarm.WaitUntil(ctx, boundary); err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		t.fire(ctx, boundary)
	}
}

// fire runs one cycle: telemetry snapshot, classification, focus and
// composite scoring, then the idle gate. Stage failures skip the cycle
// and never stop the scheduler.
func (t *Tracker) fire(ctx context.Context, boundary time.Time) {
	t.mu.Lock()
	if t.pending != nil {
		t.mu.Unlock()
		t.logger.Debug("idle decision outstanding, cycle produced no record", "boundary", boundary)
		return
	}
	session := t.session
	recent := t.recentAppsLocked()
	t.mu.Unlock()

	snap, err := t.probe.Snapshot(ctx)
	if err != nil {
		t.logger.Warn("telemetry snapshot failed, skipping cycle", "error", err)
		return
	}

	record := t.score(ctx, boundary, session, snap, recent)

	if t.cfg.IdleThreshold > 0 && snap.SinceInput >= t.cfg.IdleThreshold {
		record.Idle = true
		record.IdleDuration = snap.SinceInput
		t.holdIdle(record)
		return
	}
	t.commit(ctx, record)
}

func (t *Tracker) score(ctx context.Context, boundary time.Time, session domain.SessionContext, snap trackingout.ActivitySnapshot, recent []string) domain.ObservationRecord {
	appSig, err := t.classifier.ClassifyApp(ctx, snap.App, snap.Title)
	if err != nil {
		t.logger.Warn("app classification failed, defaulting neutral", "error", err)
		appSig = domain.AppSignal{Category: "neutral", Weight: 0.5, MatchType: "none"}
	}
	var urlSig *domain.URLSignal
	if snap.URL != "" {
		sig, err := t.classifier.ClassifyURL(ctx, snap.URL)
		if err != nil {
			t.logger.Warn("url classification failed, ignoring url signal", "error", err)
		} else {
			urlSig = &sig
		}
	}

	focus := scoring.CalculateFocusMetrics(scoring.FocusInput{
		CurrentApp:    snap.App,
		RecentApps:    recent,
		CycleInterval: t.cfg.Interval,
	})

	input := scoring.CompositeInput{
		KeyboardEvents: snap.Keyboard,
		MouseEvents:    snap.Mouse,
		AppWeight:      appSig.Weight,
		HasAppWeight:   true,
		FocusScore:     focus.FocusScore,
		HasFocusScore:  true,
	}
	if urlSig != nil {
		input.URLWeight = urlSig.Weight
		input.HasURLWeight = true
	}
	composite := scoring.CalculateCompositeScore(input, scoring.DefaultWeights())

	return domain.ObservationRecord{
		ID:                t.idGen.New(),
		Timestamp:         boundary,
		ProjectID:         session.ProjectID,
		TaskID:            session.TaskID,
		KeyboardEvents:    snap.Keyboard,
		MouseEvents:       snap.Mouse,
		App:               snap.App,
		Title:             snap.Title,
		URL:               snap.URL,
		AppSignal:         appSig,
		URLSignal:         urlSig,
		ContextSwitches:   focus.ContextSwitches,
		FocusScore:        focus.FocusScore,
		AverageSessionMin: focus.AverageSessionMin,
		LongestSessionMin: focus.LongestSessionMin,
		CompositeScore:    composite.Score,
		Classification:    string(composite.Band.Band),
	}
}

// recentAppsLocked returns the active-app names of the prior cycles in
// the lookback window, newest first.
func (t *Tracker) recentAppsLocked() []string {
	n := domain.LookbackCycles(t.cfg.Lookback, t.cfg.Interval)
	if n > len(t.records) {
		n = len(t.records)
	}
	apps := make([]string, 0, n)
	for _, record := range t.records[:n] {
		apps = append(apps, record.App)
	}
	return apps
}

// holdIdle parks the record in the single pending slot. The slot is
// never overwritten: fire already refuses to produce a record while a
// decision is outstanding.
func (t *Tracker) holdIdle(record domain.ObservationRecord) {
	t.mu.Lock()
	if t.pending != nil {
		t.mu.Unlock()
		t.logger.Error("idle hold raced an existing pending decision, dropping cycle", "record", record.ID)
		return
	}
	t.pending = &record
	if next, err := t.phase.Apply(domain.EventHoldIdle); err == nil {
		t.phase = next
	}
	t.mu.Unlock()
	t.publish(trackingout.Event{Kind: trackingout.EventIdlePrompt, Record: record, IdleDuration: record.IdleDuration})
}

// ResolveIdle settles the pending decision: discard drops the record,
// otherwise it is committed unchanged.
func (t *Tracker) ResolveIdle(ctx context.Context, discard bool) error {
	t.mu.Lock()
	if t.pending == nil {
		t.mu.Unlock()
		return apperrors.ErrNoPendingDecision
	}
	record := *t.pending
	t.pending = nil
	if next, err := t.phase.Apply(domain.EventResolveIdle); err == nil {
		t.phase = next
	}
	t.mu.Unlock()

	if discard {
		t.logger.Info("idle record discarded", "record", record.ID, "idle", record.IdleDuration)
		return nil
	}
	t.commit(ctx, record)
	return nil
}

func (t *Tracker) commit(ctx context.Context, record domain.ObservationRecord) {
	t.mu.Lock()
	t.records = append([]domain.ObservationRecord{record}, t.records...)
	t.mu.Unlock()

	if t.projector != nil {
		if err := t.projector.Project(ctx, record); err != nil {
			t.logger.Warn("record projection failed", "record", record.ID, "error", err)
		}
	}
	t.publish(trackingout.Event{Kind: trackingout.EventRecordCommitted, Record: record})
	t.triggerEvaluate(ctx)
}

// triggerEvaluate pokes the capture module off the scheduler
// goroutine. The evaluator context is detached so stopping the session
// never aborts a pass destructively.
func (t *Tracker) triggerEvaluate(ctx context.Context) {
	t.mu.Lock()
	evaluator := t.evaluator
	t.mu.Unlock()
	if evaluator == nil {
		return
	}
	go evaluator.Evaluate(context.WithoutCancel(ctx))
}

// NextMediaTarget returns the just-committed record still owed media,
// if any, along with the session it belongs to. Capture runs only
// while the session is actively tracking.
func (t *Tracker) NextMediaTarget() (domain.ObservationRecord, domain.SessionContext, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase == domain.PhaseIdle || len(t.records) == 0 {
		return domain.ObservationRecord{}, domain.SessionContext{}, false
	}
	newest := t.records[0]
	if !newest.NeedsScreenshots() && !newest.NeedsPhoto() {
		return domain.ObservationRecord{}, domain.SessionContext{}, false
	}
	return newest, t.session, true
}

// SessionMatches implements the stale-task guard check against the
// live selection.
func (t *Tracker) SessionMatches(session domain.SessionContext) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase != domain.PhaseIdle && t.session.Matches(session)
}

func (t *Tracker) BeginCapturePass() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if next, err := t.phase.Apply(domain.EventCaptureBegin); err == nil {
		t.phase = next
	}
}

func (t *Tracker) EndCapturePass() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if next, err := t.phase.Apply(domain.EventCaptureEnd); err == nil {
		t.phase = next
	}
}

// AttachMedia is the single post-commit mutation a record may receive.
// The stale-task guard re-checks under the lock; returns the refs that
// survived dedup.
func (t *Tracker) AttachMedia(ctx context.Context, recordID string, session domain.SessionContext, screenshots []domain.MediaRef, photo *domain.MediaRef) ([]domain.MediaRef, error) {
	t.mu.Lock()
	if t.phase == domain.PhaseIdle || !t.session.Matches(session) {
		t.mu.Unlock()
		return nil, domain.ErrStaleTask
	}
	idx := -1
	for i := range t.records {
		if t.records[i].ID == recordID {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		return nil, domain.ErrRecordNotFound
	}
	if t.records[idx].TaskID != session.TaskID || t.records[idx].ProjectID != session.ProjectID {
		t.mu.Unlock()
		return nil, domain.ErrStaleTask
	}
	kept := t.records[idx].MergeMedia(screenshots, photo)
	updated := t.records[idx]
	t.mu.Unlock()

	if len(kept) == 0 {
		return nil, nil
	}
	if t.projector != nil {
		if err := t.projector.Project(ctx, updated); err != nil {
			t.logger.Warn("media projection failed", "record", updated.ID, "error", err)
		}
	}
	t.publish(trackingout.Event{Kind: trackingout.EventMediaAttached, Record: updated})
	return kept, nil
}

func (t *Tracker) publish(event trackingout.Event) {
	if t.events != nil {
		t.events.Publish(event)
	}
}
