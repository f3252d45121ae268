package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"worklens/internal/modules/tracking/domain"
	trackingout "worklens/internal/modules/tracking/port/out"
	"worklens/internal/modules/tracking/service"
	apperrors "worklens/internal/platform/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeAlarm fires only when the test grants a permit; firing advances
// the fake clock to the requested boundary.
type fakeAlarm struct {
	clock   *fakeClock
	permits chan struct{}
}

func (a *fakeAlarm) WaitUntil(ctx context.Context, at time.Time) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.permits:
		a.clock.set(at)
		return nil
	}
}

type fakeProbe struct {
	mu    sync.Mutex
	queue []snapshotResult
}

type snapshotResult struct {
	snap trackingout.ActivitySnapshot
	err  error
}

func (p *fakeProbe) push(snap trackingout.ActivitySnapshot, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, snapshotResult{snap: snap, err: err})
}

func (p *fakeProbe) Snapshot(ctx context.Context) (trackingout.ActivitySnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return trackingout.ActivitySnapshot{}, errors.New("no snapshot queued")
	}
	next := p.queue[0]
	p.queue = p.queue[1:]
	return next.snap, next.err
}

type fakeClassifier struct{}

func (fakeClassifier) ClassifyApp(ctx context.Context, process, title string) (domain.AppSignal, error) {
	return domain.AppSignal{Category: "productive", Weight: 1.0, MatchType: "exact", Confidence: 0.9}, nil
}

func (fakeClassifier) ClassifyURL(ctx context.Context, url string) (domain.URLSignal, error) {
	return domain.URLSignal{Domain: "github.com", Category: "productive", Weight: 1.0, MatchType: "exact_domain", Confidence: 0.9}, nil
}

type captureProjector struct {
	mu      sync.Mutex
	records []domain.ObservationRecord
}

func (p *captureProjector) Project(ctx context.Context, record domain.ObservationRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, record)
	return nil
}

func (p *captureProjector) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

type chanSink struct {
	events chan trackingout.Event
}

func newChanSink() *chanSink {
	return &chanSink{events: make(chan trackingout.Event, 64)}
}

func (s *chanSink) Publish(event trackingout.Event) {
	s.events <- event
}

func (s *chanSink) wait(t *testing.T, kind trackingout.EventKind) trackingout.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-s.events:
			if event.Kind == kind {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

type countingEvaluator struct {
	calls chan struct{}
}

func (e *countingEvaluator) Evaluate(ctx context.Context) {
	e.calls <- struct{}{}
}

type fixedIDs struct {
	mu sync.Mutex
	n  int
}

func (g *fixedIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return string(rune('a'+g.n-1)) + "-id"
}

type rig struct {
	tracker   *service.Tracker
	clock     *fakeClock
	alarm     *fakeAlarm
	probe     *fakeProbe
	projector *captureProjector
	sink      *chanSink
}

func newRig(t *testing.T) *rig {
	t.Helper()
	clk := &fakeClock{now: time.Date(2026, 3, 1, 9, 3, 0, 0, time.UTC)}
	alarm := &fakeAlarm{clock: clk, permits: make(chan struct{}, 8)}
	probe := &fakeProbe{}
	projector := &captureProjector{}
	sink := newChanSink()
	tracker := service.NewTracker(
		service.Config{Interval: 10 * time.Minute, Lookback: time.Hour, IdleThreshold: 5 * time.Minute},
		clk, alarm, &fixedIDs{}, probe, fakeClassifier{}, projector, sink, nil,
	)
	return &rig{tracker: tracker, clock: clk, alarm: alarm, probe: probe, projector: projector, sink: sink}
}

func activeSnap() trackingout.ActivitySnapshot {
	return trackingout.ActivitySnapshot{
		App:      "Code.exe",
		Title:    "main.go - project",
		Keyboard: 40,
		Mouse:    20,
	}
}

func (r *rig) start(t *testing.T) {
	t.Helper()
	if err := r.tracker.Start(context.Background(), domain.SessionContext{ProjectID: "p1", TaskID: "t1"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { r.tracker.Stop() })
}

func TestTrackerCommitsScoredRecordAtBoundary(t *testing.T) {
	rig := newRig(t)
	rig.probe.push(activeSnap(), nil)
	rig.start(t)

	rig.alarm.permits <- struct{}{}
	event := rig.sink.wait(t, trackingout.EventRecordCommitted)

	record := event.Record
	if !record.Timestamp.Equal(time.Date(2026, 3, 1, 9, 10, 0, 0, time.UTC)) {
		t.Fatalf("record timestamp must be the cycle boundary, got %v", record.Timestamp)
	}
	if record.ProjectID != "p1" || record.TaskID != "t1" {
		t.Fatalf("session context not captured: %+v", record)
	}
	if record.AppSignal.Category != "productive" {
		t.Fatalf("expected classified app signal, got %+v", record.AppSignal)
	}
	if record.URLSignal != nil {
		t.Fatalf("no url in snapshot, expected nil url signal")
	}
	if record.CompositeScore <= 0 || record.Classification == "" {
		t.Fatalf("expected scored record, got score=%d band=%q", record.CompositeScore, record.Classification)
	}
	if rig.projector.count() != 1 {
		t.Fatalf("expected record projected once, got %d", rig.projector.count())
	}
	if got := rig.tracker.Records(); len(got) != 1 || got[0].ID != record.ID {
		t.Fatalf("log should hold the committed record, got %+v", got)
	}
}

func TestTrackerKeepsNewestRecordFirst(t *testing.T) {
	rig := newRig(t)
	rig.probe.push(activeSnap(), nil)
	rig.probe.push(trackingout.ActivitySnapshot{App: "slack.exe", Keyboard: 5, Mouse: 5}, nil)
	rig.start(t)

	rig.alarm.permits <- struct{}{}
	rig.sink.wait(t, trackingout.EventRecordCommitted)
	rig.alarm.permits <- struct{}{}
	rig.sink.wait(t, trackingout.EventRecordCommitted)

	records := rig.tracker.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].App != "slack.exe" || records[1].App != "Code.exe" {
		t.Fatalf("log must be newest first, got %s then %s", records[0].App, records[1].App)
	}
	if records[0].ContextSwitches != 1 {
		t.Fatalf("app change must register a context switch, got %d", records[0].ContextSwitches)
	}
}

func TestIdleCycleHoldsRecordBehindDecision(t *testing.T) {
	rig := newRig(t)
	idle := activeSnap()
	idle.Keyboard, idle.Mouse = 0, 0
	idle.SinceInput = 7 * time.Minute
	rig.probe.push(idle, nil)
	rig.start(t)

	rig.alarm.permits <- struct{}{}
	event := rig.sink.wait(t, trackingout.EventIdlePrompt)
	if event.IdleDuration != 7*time.Minute {
		t.Fatalf("expected idle duration on prompt, got %v", event.IdleDuration)
	}
	if len(rig.tracker.Records()) != 0 {
		t.Fatal("held record must not be committed")
	}
	pending, ok := rig.tracker.Pending()
	if !ok || !pending.Idle {
		t.Fatalf("expected pending idle record, got %+v ok=%v", pending, ok)
	}
	if rig.tracker.Phase() != domain.PhaseAwaitingIdleDecision {
		t.Fatalf("expected awaiting_idle_decision, got %s", rig.tracker.Phase())
	}
}

func TestCyclesProduceNothingWhileDecisionPending(t *testing.T) {
	rig := newRig(t)
	idle := activeSnap()
	idle.SinceInput = 10 * time.Minute
	rig.probe.push(idle, nil)
	rig.start(t)

	rig.alarm.permits <- struct{}{}
	rig.sink.wait(t, trackingout.EventIdlePrompt)

	// Next cycle fires but must not probe or produce anything.
	rig.alarm.permits <- struct{}{}
	time.Sleep(50 * time.Millisecond)
	if len(rig.tracker.Records()) != 0 {
		t.Fatal("cycle during pending decision must produce no record")
	}
	if pending, ok := rig.tracker.Pending(); !ok || pending.IdleDuration != 10*time.Minute {
		t.Fatalf("pending slot must be untouched, got %+v ok=%v", pending, ok)
	}
}

func TestResolveIdleKeepCommitsHeldRecord(t *testing.T) {
	rig := newRig(t)
	idle := activeSnap()
	idle.SinceInput = 6 * time.Minute
	rig.probe.push(idle, nil)
	rig.start(t)

	rig.alarm.permits <- struct{}{}
	rig.sink.wait(t, trackingout.EventIdlePrompt)

	if err := rig.tracker.ResolveIdle(context.Background(), false); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	event := rig.sink.wait(t, trackingout.EventRecordCommitted)
	if !event.Record.Idle || event.Record.IdleDuration != 6*time.Minute {
		t.Fatalf("record must be committed unchanged, got %+v", event.Record)
	}
	if _, ok := rig.tracker.Pending(); ok {
		t.Fatal("pending slot must clear after resolution")
	}
	if rig.tracker.Phase() != domain.PhaseScheduled {
		t.Fatalf("expected scheduled after resolve, got %s", rig.tracker.Phase())
	}
}

func TestResolveIdleDiscardDropsRecord(t *testing.T) {
	rig := newRig(t)
	idle := activeSnap()
	idle.SinceInput = 6 * time.Minute
	rig.probe.push(idle, nil)
	rig.start(t)

	rig.alarm.permits <- struct{}{}
	rig.sink.wait(t, trackingout.EventIdlePrompt)

	if err := rig.tracker.ResolveIdle(context.Background(), true); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(rig.tracker.Records()) != 0 {
		t.Fatal("discarded record must not reach the log")
	}
	if err := rig.tracker.ResolveIdle(context.Background(), true); !errors.Is(err, apperrors.ErrNoPendingDecision) {
		t.Fatalf("expected ErrNoPendingDecision, got %v", err)
	}
}

func TestStartRejectedWhileDecisionOutstanding(t *testing.T) {
	rig := newRig(t)
	idle := activeSnap()
	idle.SinceInput = 6 * time.Minute
	rig.probe.push(idle, nil)
	rig.start(t)

	rig.alarm.permits <- struct{}{}
	rig.sink.wait(t, trackingout.EventIdlePrompt)

	if err := rig.tracker.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// The decision survives the session.
	if _, ok := rig.tracker.Pending(); !ok {
		t.Fatal("pending decision must survive stop")
	}
	err := rig.tracker.Start(context.Background(), domain.SessionContext{ProjectID: "p2", TaskID: "t2"})
	if !errors.Is(err, apperrors.ErrDecisionPending) {
		t.Fatalf("expected ErrDecisionPending, got %v", err)
	}
	if err := rig.tracker.ResolveIdle(context.Background(), true); err != nil {
		t.Fatalf("resolve after stop: %v", err)
	}
	rig.probe.push(activeSnap(), nil)
	if err := rig.tracker.Start(context.Background(), domain.SessionContext{ProjectID: "p2", TaskID: "t2"}); err != nil {
		t.Fatalf("start after resolution: %v", err)
	}
}

func TestProbeFailureSkipsCycleWithoutStoppingScheduler(t *testing.T) {
	rig := newRig(t)
	rig.probe.push(trackingout.ActivitySnapshot{}, errors.New("provider gone"))
	rig.probe.push(activeSnap(), nil)
	rig.start(t)

	rig.alarm.permits <- struct{}{}
	rig.alarm.permits <- struct{}{}
	rig.sink.wait(t, trackingout.EventRecordCommitted)

	if got := len(rig.tracker.Records()); got != 1 {
		t.Fatalf("failed cycle must be skipped, got %d records", got)
	}
}

func TestStartStopLifecycleErrors(t *testing.T) {
	rig := newRig(t)
	if err := rig.tracker.Stop(); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	rig.start(t)
	err := rig.tracker.Start(context.Background(), domain.SessionContext{ProjectID: "p1", TaskID: "t1"})
	if !errors.Is(err, apperrors.ErrSessionAlreadyActive) {
		t.Fatalf("expected ErrSessionAlreadyActive, got %v", err)
	}
}

func TestCommitPokesMediaEvaluator(t *testing.T) {
	rig := newRig(t)
	evaluator := &countingEvaluator{calls: make(chan struct{}, 4)}
	rig.tracker.SetMediaEvaluator(evaluator)
	rig.probe.push(activeSnap(), nil)
	rig.start(t)

	rig.alarm.permits <- struct{}{}
	rig.sink.wait(t, trackingout.EventRecordCommitted)
	select {
	case <-evaluator.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("commit must trigger a media evaluation")
	}
}

func TestNextMediaTargetIsNewestUnservedRecord(t *testing.T) {
	rig := newRig(t)
	rig.probe.push(activeSnap(), nil)
	rig.start(t)

	if _, _, ok := rig.tracker.NextMediaTarget(); ok {
		t.Fatal("empty log must have no media target")
	}
	rig.alarm.permits <- struct{}{}
	event := rig.sink.wait(t, trackingout.EventRecordCommitted)

	target, session, ok := rig.tracker.NextMediaTarget()
	if !ok || target.ID != event.Record.ID {
		t.Fatalf("expected newest record as target, got %+v ok=%v", target, ok)
	}
	if session.ProjectID != "p1" || session.TaskID != "t1" {
		t.Fatalf("target must carry live session, got %+v", session)
	}
}

func TestAttachMediaDedupsAndGuardsStaleTask(t *testing.T) {
	rig := newRig(t)
	rig.probe.push(activeSnap(), nil)
	rig.start(t)
	rig.alarm.permits <- struct{}{}
	event := rig.sink.wait(t, trackingout.EventRecordCommitted)

	session := domain.SessionContext{ProjectID: "p1", TaskID: "t1"}
	shots := []domain.MediaRef{{ID: "s1", SHA256: "aaa"}, {ID: "s2", SHA256: "aaa"}}
	kept, err := rig.tracker.AttachMedia(context.Background(), event.Record.ID, session, shots, nil)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("duplicate content must be dropped, kept %d", len(kept))
	}
	rig.sink.wait(t, trackingout.EventMediaAttached)
	if rig.projector.count() != 2 {
		t.Fatalf("media attach must re-project, got %d projections", rig.projector.count())
	}

	stale := domain.SessionContext{ProjectID: "p1", TaskID: "other"}
	if _, err := rig.tracker.AttachMedia(context.Background(), event.Record.ID, stale, shots, nil); !errors.Is(err, domain.ErrStaleTask) {
		t.Fatalf("expected ErrStaleTask, got %v", err)
	}
	if _, err := rig.tracker.AttachMedia(context.Background(), "missing", session, shots, nil); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestNextMediaTargetGoneAfterStop(t *testing.T) {
	rig := newRig(t)
	rig.probe.push(activeSnap(), nil)
	rig.start(t)
	rig.alarm.permits <- struct{}{}
	rig.sink.wait(t, trackingout.EventRecordCommitted)

	if err := rig.tracker.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	rig.sink.wait(t, trackingout.EventSessionStopped)
	if _, _, ok := rig.tracker.NextMediaTarget(); ok {
		t.Fatal("capture must not target records after the session ended")
	}
}
