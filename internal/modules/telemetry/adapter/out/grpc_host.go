package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	providerrpc "worklens/internal/modules/telemetry/adapter/out/rpc"
	"worklens/internal/modules/telemetry/domain"
	telemetryout "worklens/internal/modules/telemetry/port/out"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

// GRPCHost launches the provider binary and keeps the process alive
// for the lifetime of the returned session. Camera handles stay valid
// across calls within one session, which the capture pass relies on.
type GRPCHost struct {
	logger hclog.Logger
}

func NewGRPCHost(logger hclog.Logger) telemetryout.Host {
	if logger == nil {
		logger = hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel})
	}
	return &GRPCHost{logger: logger}
}

func (h *GRPCHost) Open(_ context.Context, manifest domain.Manifest) (telemetryout.Session, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  providerrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          providerrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           h.logger,
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("%w: start provider: %v", domain.ErrProviderUnavailable, err)
	}
	raw, err := rpcClient.Dispense(providerrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("%w: dispense provider: %v", domain.ErrProviderUnavailable, err)
	}
	typed, ok := raw.(*providerrpc.TelemetryProviderClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("%w: provider rpc client type mismatch", domain.ErrProviderUnavailable)
	}
	return &grpcSession{client: client, rpc: typed}, nil
}

type grpcSession struct {
	client *plugin.Client
	rpc    *providerrpc.TelemetryProviderClient
}

func (s *grpcSession) Close() {
	s.client.Kill()
}

func callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, defaultCallTimeout)
}

func (s *grpcSession) Info(ctx context.Context) (domain.Info, error) {
	callCtx, cancel := callContext(ctx)
	defer cancel()
	info, err := s.rpc.GetInfo(callCtx)
	if err != nil {
		return domain.Info{}, fmt.Errorf("get info: %w", err)
	}
	return domain.Info{Name: info.Name, Version: info.Version, Capabilities: info.Capabilities}, nil
}

func (s *grpcSession) ActiveWindow(ctx context.Context) (domain.WindowSnapshot, error) {
	callCtx, cancel := callContext(ctx)
	defer cancel()
	snap, err := s.rpc.ActiveWindow(callCtx)
	if err != nil {
		return domain.WindowSnapshot{}, fmt.Errorf("active window: %w", err)
	}
	return domain.WindowSnapshot{App: snap.App, Title: snap.Title, URL: snap.URL}, nil
}

func (s *grpcSession) InputCounts(ctx context.Context) (domain.InputCounts, error) {
	callCtx, cancel := callContext(ctx)
	defer cancel()
	counts, err := s.rpc.InputCounts(callCtx)
	if err != nil {
		return domain.InputCounts{}, fmt.Errorf("input counts: %w", err)
	}
	return domain.InputCounts{Keyboard: int(counts.Keyboard), Mouse: int(counts.Mouse)}, nil
}

func (s *grpcSession) ElapsedSinceInput(ctx context.Context) (time.Duration, error) {
	callCtx, cancel := callContext(ctx)
	defer cancel()
	elapsed, err := s.rpc.ElapsedSinceInput(callCtx)
	if err != nil {
		return 0, fmt.Errorf("elapsed since input: %w", err)
	}
	return time.Duration(elapsed.Millis) * time.Millisecond, nil
}

func (s *grpcSession) CameraOpen(ctx context.Context) (string, error) {
	callCtx, cancel := callContext(ctx)
	defer cancel()
	handle, err := s.rpc.CameraOpen(callCtx)
	if err != nil {
		return "", fmt.Errorf("%w: camera open: %v", domain.ErrDeviceUnavailable, err)
	}
	if handle.Handle == "" {
		return "", domain.ErrDeviceUnavailable
	}
	return handle.Handle, nil
}

func (s *grpcSession) CameraFrame(ctx context.Context, handle string) (domain.Frame, error) {
	callCtx, cancel := callContext(ctx)
	defer cancel()
	frame, err := s.rpc.CameraFrame(callCtx, &providerrpc.CameraFrameRequest{Handle: handle})
	if err != nil {
		return domain.Frame{}, fmt.Errorf("camera frame: %w", err)
	}
	return domain.Frame{Width: int(frame.Width), Height: int(frame.Height), Ready: frame.Ready, PNG: frame.PNG}, nil
}

func (s *grpcSession) CameraClose(ctx context.Context, handle string) error {
	callCtx, cancel := callContext(ctx)
	defer cancel()
	if _, err := s.rpc.CameraClose(callCtx, &providerrpc.CameraHandle{Handle: handle}); err != nil {
		return fmt.Errorf("camera close: %w", err)
	}
	return nil
}

func (s *grpcSession) Screenshot(ctx context.Context, blur bool) ([]byte, error) {
	callCtx, cancel := callContext(ctx)
	defer cancel()
	shot, err := s.rpc.Screenshot(callCtx, &providerrpc.ScreenshotRequest{Blur: blur})
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot: %v", domain.ErrCaptureFailed, err)
	}
	if len(shot.PNG) == 0 {
		return nil, domain.ErrDeviceUnavailable
	}
	return shot.PNG, nil
}
