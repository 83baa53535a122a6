// SPDX-License-Identifier: EPL-2.0

// Package device connects a mixing callback to an audio output.
//
// Every device renders interleaved stereo float32 frames. The callback runs
// on the device's own goroutine (or OS thread) and must not block.
//
// The null device is always available. The malgo, portaudio, oto and beep
// backends need cgo or system audio libraries and are left out when
// building with the headless tag.
package device

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Callback fills out with interleaved stereo frames.
type Callback func(out []float32)

// Device is an audio output driven by a Callback.
type Device interface {
	// Start begins invoking cb. A device runs a single callback.
	Start(cb Callback) error
	// Stop pauses the output. Start may be called again.
	Stop() error
	// Close stops the output and releases it.
	Close() error
	// SampleRate is the rate the callback is expected to render at.
	SampleRate() int
}

// Info describes an output device.
type Info struct {
	ID         string
	Name       string
	Default    bool
	Channels   int
	SampleRate int
}

// Enumerator lists output devices.
type Enumerator interface {
	Devices() ([]Info, error)
}

// Backend names an output implementation.
type Backend string

const (
	Null      Backend = "null"
	Malgo     Backend = "malgo"
	PortAudio Backend = "portaudio"
	Oto       Backend = "oto"
	Beep      Backend = "beep"
)

const (
	DefaultSampleRate   = 48000
	DefaultPeriodFrames = 512
)

// Config configures a device.
type Config struct {
	SampleRate   int
	PeriodFrames int
	// DeviceID selects an output by Info.ID or Info.Name. Empty selects
	// the system default.
	DeviceID string
	Logger   *slog.Logger
}

// DefaultConfig returns a 48 kHz configuration with 512 frame periods.
func DefaultConfig() Config {
	return Config{
		SampleRate:   DefaultSampleRate,
		PeriodFrames: DefaultPeriodFrames,
	}
}

func (c Config) normalize() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.PeriodFrames <= 0 {
		c.PeriodFrames = DefaultPeriodFrames
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	return c
}

type openFunc func(Config) (Device, error)

var (
	backendsMu sync.RWMutex
	backends   = map[Backend]openFunc{
		Null: func(cfg Config) (Device, error) { return NewNull(cfg), nil },
	}
)

func register(b Backend, open openFunc) {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	backends[b] = open
}

// Backends returns the backends compiled into this binary, sorted by name.
func Backends() []Backend {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	out := make([]Backend, 0, len(backends))
	for b := range backends {
		out = append(out, b)
	}
	slices.Sort(out)

	return out
}

// Open creates a device on backend b.
func Open(b Backend, cfg Config) (Device, error) {
	backendsMu.RLock()
	open, ok := backends[b]
	backendsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, b)
	}

	return open(cfg.normalize())
}

// List opens backend b just long enough to enumerate its outputs.
func List(b Backend) ([]Info, error) {
	d, err := Open(b, DefaultConfig())
	if err != nil {
		return nil, err
	}
	defer d.Close()

	e, ok := d.(Enumerator)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoEnumeration, b)
	}

	return e.Devices()
}

func matches(info Info, id string) bool {
	return info.ID == id || info.Name == id
}
