// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package device

import (
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

func init() { register(Oto, openOto) }

// oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoRate int
	otoErr  error
)

func otoContext(cfg Config) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   cfg.SampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   time.Duration(cfg.PeriodFrames) * time.Second / time.Duration(cfg.SampleRate),
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx, otoRate = ctx, cfg.SampleRate
	})

	return otoCtx, otoErr
}

// otoDevice is pulled by oto's player through Read.
type otoDevice struct {
	cfg Config
	cb  atomic.Pointer[Callback]

	mu     sync.Mutex
	player *oto.Player
	closed bool
}

func openOto(cfg Config) (Device, error) {
	if _, err := otoContext(cfg); err != nil {
		return nil, err
	}
	if otoRate != cfg.SampleRate {
		cfg.Logger.Warn("device: oto context already running at another rate",
			"want", cfg.SampleRate, "have", otoRate)
		cfg.SampleRate = otoRate
	}

	return &otoDevice{cfg: cfg}, nil
}

// Read fills p with whole float32 stereo frames.
func (d *otoDevice) Read(p []byte) (int, error) {
	n := len(p) / 8 * 8
	if n == 0 {
		return 0, nil
	}

	cb := d.cb.Load()
	if cb == nil {
		clear(p[:n])
		return n, nil
	}
	(*cb)(unsafe.Slice((*float32)(unsafe.Pointer(&p[0])), n/4))

	return n, nil
}

func (d *otoDevice) Start(cb Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.player != nil {
		return ErrStarted
	}

	d.cb.Store(&cb)
	d.player = otoCtx.NewPlayer(d)
	d.player.Play()
	d.cfg.Logger.Info("device: started", "backend", Oto, "rate", d.cfg.SampleRate)

	return nil
}

func (d *otoDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player == nil {
		return nil
	}
	err := d.player.Close()
	d.player = nil
	d.cb.Store(nil)

	return err
}

func (d *otoDevice) Close() error {
	err := d.Stop()

	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	return err
}

func (d *otoDevice) SampleRate() int { return d.cfg.SampleRate }
