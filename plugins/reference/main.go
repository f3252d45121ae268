package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hashicorp/go-plugin"

	providerrpc "worklens/internal/modules/telemetry/adapter/out/rpc"
)

// The reference provider synthesizes plausible desktop telemetry so
// the engine can run end to end on machines without native window or
// camera hooks. Camera streams warm up over a few frames to exercise
// the host's readiness polling.

type window struct {
	app   string
	title string
	url   string
}

var windows = []window{
	{app: "Code.exe", title: "tracker.go - worklens"},
	{app: "Code.exe", title: "orchestrator.go - worklens"},
	{app: "chrome.exe", title: "pkg.go.dev - Chrome", url: "https://pkg.go.dev/context"},
	{app: "chrome.exe", title: "r/golang - Chrome", url: "https://reddit.com/r/golang"},
	{app: "slack.exe", title: "#eng-infra - Slack"},
	{app: "chrome.exe", title: "YouTube - Chrome", url: "https://youtube.com/watch"},
}

type cameraStream struct {
	opened time.Time
}

type server struct {
	mu       sync.Mutex
	started  time.Time
	keyboard int32
	mouse    int32
	cameras  map[string]*cameraStream
	nextCam  int
}

func newServer() *server {
	return &server{started: time.Now(), cameras: make(map[string]*cameraStream)}
}

func (s *server) GetInfo(_ context.Context, _ *providerrpc.Empty) (*providerrpc.Info, error) {
	return &providerrpc.Info{
		Name:         "reference",
		Version:      "1.0.0",
		Capabilities: []string{"window", "input", "camera", "screenshot"},
	}, nil
}

func (s *server) ActiveWindow(_ context.Context, _ *providerrpc.Empty) (*providerrpc.WindowSnapshot, error) {
	// Dwell on each synthetic window for half a minute.
	idx := int(time.Since(s.started)/(30*time.Second)) % len(windows)
	w := windows[idx]
	s.accumulateInput()
	return &providerrpc.WindowSnapshot{App: w.app, Title: w.title, URL: w.url}, nil
}

func (s *server) accumulateInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyboard += int32(rand.IntN(12))
	s.mouse += int32(rand.IntN(8))
}

func (s *server) InputCounts(_ context.Context, _ *providerrpc.Empty) (*providerrpc.InputCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := &providerrpc.InputCounts{Keyboard: s.keyboard, Mouse: s.mouse}
	s.keyboard, s.mouse = 0, 0
	return out, nil
}

func (s *server) ElapsedSinceInput(_ context.Context, _ *providerrpc.Empty) (*providerrpc.ElapsedSinceInput, error) {
	// Mostly active, occasionally long enough to trip a 5 minute gate.
	millis := int64(rand.IntN(45_000))
	if rand.IntN(12) == 0 {
		millis = int64(6*time.Minute/time.Millisecond) + int64(rand.IntN(120_000))
	}
	return &providerrpc.ElapsedSinceInput{Millis: millis}, nil
}

func (s *server) CameraOpen(_ context.Context, _ *providerrpc.Empty) (*providerrpc.CameraHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCam++
	handle := fmt.Sprintf("cam-%d", s.nextCam)
	s.cameras[handle] = &cameraStream{opened: time.Now()}
	return &providerrpc.CameraHandle{Handle: handle}, nil
}

func (s *server) CameraFrame(_ context.Context, in *providerrpc.CameraFrameRequest) (*providerrpc.Frame, error) {
	s.mu.Lock()
	stream, ok := s.cameras[in.Handle]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown camera handle %q", in.Handle)
	}
	// Warm-up: the stream reports unready for the first moments after
	// open, like a real device negotiating formats.
	if time.Since(stream.opened) < 300*time.Millisecond {
		return &providerrpc.Frame{Width: 0, Height: 0, Ready: false}, nil
	}
	data, err := syntheticPNG(320, 240, uint8(rand.IntN(256)))
	if err != nil {
		return nil, err
	}
	return &providerrpc.Frame{Width: 320, Height: 240, Ready: true, PNG: data}, nil
}

func (s *server) CameraClose(_ context.Context, in *providerrpc.CameraHandle) (*providerrpc.Empty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cameras, in.Handle)
	return &providerrpc.Empty{}, nil
}

func (s *server) Screenshot(_ context.Context, in *providerrpc.ScreenshotRequest) (*providerrpc.Screenshot, error) {
	shade := uint8(rand.IntN(256))
	if in.Blur {
		shade = 128
	}
	data, err := syntheticPNG(640, 360, shade)
	if err != nil {
		return nil, err
	}
	return &providerrpc.Screenshot{PNG: data}, nil
}

func syntheticPNG(w, h int, shade uint8) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := color.RGBA{R: shade, G: shade / 2, B: 255 - shade, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: providerrpc.HandshakeConfig,
		Plugins:         providerrpc.PluginMap(newServer()),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
