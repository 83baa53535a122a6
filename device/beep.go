// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package device

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

func init() { register(Beep, openBeep) }

// beepDevice plays through beep's speaker, which it owns while started.
type beepDevice struct {
	cfg Config

	mu      sync.Mutex
	started bool
	closed  bool
}

func openBeep(cfg Config) (Device, error) {
	return &beepDevice{cfg: cfg}, nil
}

func (d *beepDevice) Start(cb Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.started {
		return ErrStarted
	}

	if err := speaker.Init(beep.SampleRate(d.cfg.SampleRate), d.cfg.PeriodFrames); err != nil {
		return err
	}
	speaker.Play(NewStreamer(cb, d.cfg.PeriodFrames))
	d.started = true
	d.cfg.Logger.Info("device: started", "backend", Beep, "rate", d.cfg.SampleRate)

	return nil
}

func (d *beepDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	d.started = false

	return nil
}

func (d *beepDevice) Close() error {
	err := d.Stop()

	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	return err
}

// Streamer adapts a Callback to beep.Streamer so it can be mixed with
// other beep streamers. It never ends.
type Streamer struct {
	cb  Callback
	buf []float32
}

var _ beep.Streamer = (*Streamer)(nil)

// NewStreamer creates a Streamer with room for frames frames per call.
func NewStreamer(cb Callback, frames int) *Streamer {
	return &Streamer{cb: cb, buf: make([]float32, 2*max(frames, 1))}
}

func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	if need := 2 * len(samples); len(s.buf) < need {
		s.buf = make([]float32, need)
	}
	buf := s.buf[:2*len(samples)]
	s.cb(buf)

	for i := range samples {
		samples[i][0] = float64(buf[2*i])
		samples[i][1] = float64(buf[2*i+1])
	}

	return len(samples), true
}

func (s *Streamer) Err() error { return nil }

func (d *beepDevice) SampleRate() int { return d.cfg.SampleRate }
