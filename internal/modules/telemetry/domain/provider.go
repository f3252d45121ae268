package domain

import "errors"

var (
	ErrProviderUnavailable = errors.New("telemetry provider unavailable")
	ErrDeviceUnavailable   = errors.New("capture device unavailable")
	ErrCaptureFailed       = errors.New("capture attempt failed")
)

// Manifest locates the provider binary serving OS telemetry.
type Manifest struct {
	Name   string `yaml:"name"`
	Binary string `yaml:"binary"`
}

func (m Manifest) Validate() error {
	if m.Binary == "" {
		return errors.New("provider binary is required")
	}
	return nil
}

type Info struct {
	Name         string
	Version      string
	Capabilities []string
}

// WindowSnapshot is the latest active-window observation. The host
// polls at high frequency; the engine reads one snapshot per cycle.
type WindowSnapshot struct {
	App   string
	Title string
	URL   string
}

// InputCounts are the keyboard/mouse event totals since the previous
// read. Reading resets the provider-side counters.
type InputCounts struct {
	Keyboard int
	Mouse    int
}

// Frame is one webcam sample. Ready reports that the stream delivers
// real frames at a usable size.
type Frame struct {
	Width  int
	Height int
	Ready  bool
	PNG    []byte
}

// MinFrameWidth/MinFrameHeight gate webcam readiness: smaller frames
// mean the stream has not warmed up yet.
const (
	MinFrameWidth  = 100
	MinFrameHeight = 100
)

func (f Frame) Usable() bool {
	return f.Ready && f.Width >= MinFrameWidth && f.Height >= MinFrameHeight && len(f.PNG) > 0
}
