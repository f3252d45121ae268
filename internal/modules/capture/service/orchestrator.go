package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"worklens/internal/modules/capture/domain"
	captureout "worklens/internal/modules/capture/port/out"
	trackingdomain "worklens/internal/modules/tracking/domain"
	"worklens/internal/platform/clock"
	"worklens/internal/platform/retry"
)

var errCameraNotReady = errors.New("camera stream not ready")

type Config struct {
	ScreenshotsEnabled bool
	Blur               bool
	Debug              bool
	ReadinessBackoff   time.Duration
	ShotBackoff        time.Duration
}

// Orchestrator runs capture passes against the newest committed record
// still owed media. At most one pass runs at a time; commits arriving
// mid-pass are picked up when the pass loops, not by spawning another.
type Orchestrator struct {
	cfg    Config
	device captureout.MediaDevice
	store  captureout.MediaStore
	bridge captureout.RecordBridge
	clock  clock.Clock
	sleep  retry.Sleep
	roll   func(n int) int
	logger hclog.Logger

	inFlight atomic.Bool
}

func NewOrchestrator(
	cfg Config,
	device captureout.MediaDevice,
	store captureout.MediaStore,
	bridge captureout.RecordBridge,
	clk clock.Clock,
	sleep retry.Sleep,
	roll func(n int) int,
	logger hclog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if cfg.ReadinessBackoff <= 0 {
		cfg.ReadinessBackoff = 400 * time.Millisecond
	}
	if cfg.ShotBackoff <= 0 {
		cfg.ShotBackoff = 500 * time.Millisecond
	}
	return &Orchestrator{
		cfg:    cfg,
		device: device,
		store:  store,
		bridge: bridge,
		clock:  clk,
		sleep:  sleep,
		roll:   roll,
		logger: logger,
	}
}

// Evaluate is poked on every log-list change. The in-flight guard
// makes overlapping pokes cheap no-ops; the loop re-checks the log
// after each successful pass so records committed mid-pass are served
// without a second goroutine.
func (o *Orchestrator) Evaluate(ctx context.Context) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer o.inFlight.Store(false)

	for {
		target, session, ok := o.bridge.NextMediaTarget()
		if !ok {
			return
		}
		o.bridge.BeginCapturePass()
		attached, err := o.pass(ctx, target, session)
		o.bridge.EndCapturePass()
		if err != nil {
			o.logger.Warn("capture pass failed", "record", target.ID, "error", err)
			return
		}
		if !attached {
			// Nothing was delivered; the next log change re-triggers
			// instead of spinning on the same record.
			return
		}
	}
}

// pass captures the media one record is owed. Pairing rule: when a
// photo is owed, the webcam must become ready before any screenshot
// attempt, and a readiness failure aborts the whole pass with nothing
// attached.
func (o *Orchestrator) pass(ctx context.Context, target trackingdomain.ObservationRecord, session trackingdomain.SessionContext) (bool, error) {
	plan := domain.PlanPass(
		target.NeedsPhoto(),
		target.NeedsScreenshots(),
		o.cfg.ScreenshotsEnabled,
		o.cfg.Blur,
		o.cfg.Debug,
		o.roll,
	)
	if plan.Empty() {
		return false, nil
	}

	var photo *trackingdomain.MediaRef
	if plan.NeedPhoto {
		ref, err := o.capturePhoto(ctx)
		if err != nil {
			o.logger.Info("webcam not ready, aborting pass unpaired", "record", target.ID, "error", err)
			return false, nil
		}
		photo = &ref
	}

	if !o.bridge.SessionMatches(session) {
		o.logger.Debug("task changed mid-pass, dropping captured media", "record", target.ID)
		return false, nil
	}

	screenshots := o.captureScreenshots(ctx, plan)
	if photo == nil && len(screenshots) == 0 {
		return false, nil
	}

	kept, err := o.bridge.AttachMedia(ctx, target.ID, session, screenshots, photo)
	if errors.Is(err, trackingdomain.ErrStaleTask) {
		o.logger.Debug("stale task at attach, media dropped", "record", target.ID)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(kept) > 0, nil
}

// capturePhoto opens the camera for this pass only and releases it on
// every path. Readiness is polled over a bounded budget with fixed
// backoff; a frame counts as ready once the stream reports usable
// dimensions and bytes.
func (o *Orchestrator) capturePhoto(ctx context.Context) (trackingdomain.MediaRef, error) {
	handle, err := o.device.CameraOpen(ctx)
	if err != nil {
		return trackingdomain.MediaRef{}, fmt.Errorf("camera open: %w", err)
	}
	defer func() {
		if err := o.device.CameraClose(context.WithoutCancel(ctx), handle); err != nil {
			o.logger.Warn("camera release failed", "handle", handle, "error", err)
		}
	}()

	var png []byte
	err = retry.Do(ctx, domain.ReadinessAttempts, o.cfg.ReadinessBackoff, o.sleep, func(ctx context.Context) error {
		frame, err := o.device.CameraFrame(ctx, handle)
		if err != nil {
			return err
		}
		if !frame.Usable() {
			return errCameraNotReady
		}
		png = frame.PNG
		return nil
	})
	if err != nil {
		return trackingdomain.MediaRef{}, err
	}
	ref, err := o.store.SavePhoto(ctx, png, o.clock.Now())
	if err != nil {
		return trackingdomain.MediaRef{}, fmt.Errorf("store photo: %w", err)
	}
	return ref, nil
}

// captureScreenshots takes the planned number of shots, each with its
// own retry budget. Identical content within the pass is taken once;
// a shot that exhausts its budget is recorded as missing, never fatal.
func (o *Orchestrator) captureScreenshots(ctx context.Context, plan domain.PassPlan) []trackingdomain.MediaRef {
	var refs []trackingdomain.MediaRef
	seen := make(map[string]struct{}, plan.Shots)
	for i := 0; i < plan.Shots; i++ {
		var data []byte
		err := retry.Do(ctx, domain.ShotAttempts, o.cfg.ShotBackoff, o.sleep, func(ctx context.Context) error {
			bytes, err := o.device.Screenshot(ctx, plan.Blur)
			if err != nil {
				return err
			}
			data = bytes
			return nil
		})
		if err != nil {
			o.logger.Warn("screenshot attempt exhausted retry budget", "shot", i+1, "error", err)
			continue
		}
		digest := sha256.Sum256(data)
		key := hex.EncodeToString(digest[:])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ref, err := o.store.SaveScreenshot(ctx, data, o.clock.Now())
		if err != nil {
			o.logger.Warn("screenshot store failed", "shot", i+1, "error", err)
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}
