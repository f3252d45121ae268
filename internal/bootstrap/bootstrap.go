package bootstrap

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	captureoutadapter "worklens/internal/modules/capture/adapter/out"
	captureservice "worklens/internal/modules/capture/service"
	classifyinadapter "worklens/internal/modules/classify/adapter/in"
	classifyoutadapter "worklens/internal/modules/classify/adapter/out"
	classifyservice "worklens/internal/modules/classify/service"
	classifyusecase "worklens/internal/modules/classify/usecase"
	telemetryoutadapter "worklens/internal/modules/telemetry/adapter/out"
	telemetrydomain "worklens/internal/modules/telemetry/domain"
	telemetryout "worklens/internal/modules/telemetry/port/out"
	trackinginadapter "worklens/internal/modules/tracking/adapter/in"
	trackingoutadapter "worklens/internal/modules/tracking/adapter/out"
	trackingservice "worklens/internal/modules/tracking/service"
	trackingusecase "worklens/internal/modules/tracking/usecase"
	"worklens/internal/platform/clock"
	"worklens/internal/platform/config"
	"worklens/internal/platform/id"
	"worklens/internal/platform/retry"
	"worklens/internal/ui/watch"
)

// App wires the handlers that work without a provider process:
// classification, rule management, and reading projected history.
type App struct {
	ClassifyCLI classifyinadapter.CLIHandler
	TrackingCLI trackinginadapter.CLIHandler

	projector *trackingoutadapter.SQLiteProjector
}

func New(cfg config.Config) (*App, error) {
	classifyUC, err := buildClassify(cfg)
	if err != nil {
		return nil, err
	}
	projector, err := trackingoutadapter.NewSQLiteProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	trackingUC := trackingusecase.NewInteractor(nil, projector)
	return &App{
		ClassifyCLI: classifyinadapter.NewCLIHandler(classifyUC),
		TrackingCLI: trackinginadapter.NewCLIHandler(trackingUC),
		projector:   projector,
	}, nil
}

func (a *App) Close() {
	if a.projector != nil {
		_ = a.projector.Close()
	}
}

// Runtime is the full engine: provider session, tracker, capture
// orchestrator, and the event fan-out, alive for one run invocation.
type Runtime struct {
	ClassifyCLI classifyinadapter.CLIHandler
	TrackingCLI trackinginadapter.CLIHandler
	Events      *trackingoutadapter.EventBroadcaster
	Logger      hclog.Logger

	tracker   *trackingservice.Tracker
	session   telemetryout.Session
	projector *trackingoutadapter.SQLiteProjector
}

func NewRuntime(ctx context.Context, cfg config.Config, logger hclog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = hclog.New(&hclog.LoggerOptions{Name: "worklens", Level: hclog.Info})
	}

	classifyUC, err := buildClassify(cfg)
	if err != nil {
		return nil, err
	}

	host := telemetryoutadapter.NewGRPCHost(logger.Named("provider"))
	session, err := host.Open(ctx, telemetrydomain.Manifest{Name: "provider", Binary: cfg.ProviderBinary})
	if err != nil {
		return nil, err
	}

	projector, err := trackingoutadapter.NewSQLiteProjector(cfg.DBPath)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("open record store: %w", err)
	}

	broadcaster := trackingoutadapter.NewEventBroadcaster()
	tracker := trackingservice.NewTracker(
		trackingservice.Config{
			Interval:      cfg.CycleInterval,
			Lookback:      cfg.FocusLookback,
			IdleThreshold: cfg.IdleThreshold,
		},
		clock.SystemClock{},
		clock.SystemAlarm{},
		id.RandomHex{},
		trackingoutadapter.NewTelemetryProbe(session),
		trackingoutadapter.NewClassifierAdapter(classifyUC),
		projector,
		broadcaster,
		logger.Named("tracker"),
	)

	mediaStore, err := captureoutadapter.NewFileMediaStore(filepath.Join(cfg.DataDir, "media"), id.RandomHex{})
	if err != nil {
		session.Close()
		_ = projector.Close()
		return nil, err
	}
	orchestrator := captureservice.NewOrchestrator(
		captureservice.Config{
			ScreenshotsEnabled: cfg.EnableScreenshots,
			Blur:               cfg.EnableScreenshotBlur,
			Debug:              cfg.Profile == config.ProfileDebug,
		},
		session,
		mediaStore,
		tracker,
		clock.SystemClock{},
		retry.SystemSleep,
		rand.IntN,
		logger.Named("capture"),
	)
	tracker.SetMediaEvaluator(orchestrator)

	trackingUC := trackingusecase.NewInteractor(tracker, projector)
	return &Runtime{
		ClassifyCLI: classifyinadapter.NewCLIHandler(classifyUC),
		TrackingCLI: trackinginadapter.NewCLIHandler(trackingUC),
		Events:      broadcaster,
		Logger:      logger,
		tracker:     tracker,
		session:     session,
		projector:   projector,
	}, nil
}

func (r *Runtime) Close() {
	_ = r.tracker.Stop()
	r.session.Close()
	_ = r.projector.Close()
}

// ProviderCheck opens a provider session just long enough to confirm
// the handshake and read its identity.
func ProviderCheck(ctx context.Context, cfg config.Config, logger hclog.Logger) (telemetrydomain.Info, error) {
	host := telemetryoutadapter.NewGRPCHost(logger)
	session, err := host.Open(ctx, telemetrydomain.Manifest{Name: "provider", Binary: cfg.ProviderBinary})
	if err != nil {
		return telemetrydomain.Info{}, err
	}
	defer session.Close()
	return session.Info(ctx)
}

func RunWatch(runtime *Runtime) error {
	model := watch.New(runtime.TrackingCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func buildClassify(cfg config.Config) (*classifyusecase.Interactor, error) {
	classifier := classifyservice.NewClassifier()
	store := classifyoutadapter.NewYAMLRuleStore(cfg.RulesPath)
	usecase := classifyusecase.NewInteractor(classifier, store)
	if err := usecase.LoadUserRules(context.Background()); err != nil {
		return nil, err
	}
	return usecase, nil
}
