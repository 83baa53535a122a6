// SPDX-License-Identifier: EPL-2.0

package device

import "sync"

// NullDevice discards audio. Nothing drives it: Render invokes the callback
// on the caller's goroutine, which makes it suitable for offline rendering
// and tests.
type NullDevice struct {
	cfg Config

	mu     sync.Mutex
	cb     Callback
	closed bool
}

// NewNull creates a null device.
func NewNull(cfg Config) *NullDevice {
	return &NullDevice{cfg: cfg.normalize()}
}

func (n *NullDevice) Start(cb Callback) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}
	if n.cb != nil {
		return ErrStarted
	}
	n.cb = cb

	return nil
}

func (n *NullDevice) SampleRate() int { return n.cfg.SampleRate }

func (n *NullDevice) Stop() error {
	n.mu.Lock()
	n.cb = nil
	n.mu.Unlock()

	return nil
}

func (n *NullDevice) Close() error {
	n.mu.Lock()
	n.cb = nil
	n.closed = true
	n.mu.Unlock()

	return nil
}

// Render runs the callback over frames stereo frames, one period at a time,
// and returns what it produced. A stopped device renders silence.
func (n *NullDevice) Render(frames int) []float32 {
	out := make([]float32, 2*max(frames, 0))
	n.RenderInto(out)

	return out
}

// RenderInto is Render over a caller-provided buffer.
func (n *NullDevice) RenderInto(out []float32) {
	n.mu.Lock()
	cb := n.cb
	n.mu.Unlock()

	if cb == nil {
		clear(out)
		return
	}

	period := 2 * n.cfg.PeriodFrames
	for off := 0; off < len(out); off += period {
		cb(out[off:min(off+period, len(out))])
	}
}

// Devices lists the single null output.
func (n *NullDevice) Devices() ([]Info, error) {
	return []Info{{
		ID:         string(Null),
		Name:       "Null output",
		Default:    true,
		Channels:   2,
		SampleRate: n.cfg.SampleRate,
	}}, nil
}
