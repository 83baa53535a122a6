// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package device

import (
	"sync"
	"unsafe"

	"github.com/gen2brain/malgo"
)

func init() { register(Malgo, openMalgo) }

// malgoDevice plays through miniaudio.
type malgoDevice struct {
	cfg Config
	ctx *malgo.AllocatedContext

	mu  sync.Mutex
	dev *malgo.Device
	id  malgo.DeviceID
	cb  Callback
}

func openMalgo(cfg Config) (Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		cfg.Logger.Debug("device: malgo", "message", message)
	})
	if err != nil {
		return nil, err
	}

	return &malgoDevice{cfg: cfg, ctx: ctx}, nil
}

func (d *malgoDevice) Devices() ([]Info, error) {
	infos, err := d.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, err
	}

	out := make([]Info, 0, len(infos))
	for i := range infos {
		out = append(out, Info{
			ID:         infos[i].ID.String(),
			Name:       infos[i].Name(),
			Default:    infos[i].IsDefault != 0,
			Channels:   2,
			SampleRate: d.cfg.SampleRate,
		})
	}

	return out, nil
}

func (d *malgoDevice) find(id string) (malgo.DeviceID, error) {
	infos, err := d.ctx.Devices(malgo.Playback)
	if err != nil {
		return malgo.DeviceID{}, err
	}
	for i := range infos {
		if matches(Info{ID: infos[i].ID.String(), Name: infos[i].Name()}, id) {
			return infos[i].ID, nil
		}
	}

	return malgo.DeviceID{}, ErrNotFound
}

func (d *malgoDevice) Start(cb Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ctx == nil {
		return ErrClosed
	}
	if d.dev != nil {
		return ErrStarted
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = 2
	cfg.SampleRate = uint32(d.cfg.SampleRate)
	cfg.PeriodSizeInFrames = uint32(d.cfg.PeriodFrames)
	if d.cfg.DeviceID != "" {
		id, err := d.find(d.cfg.DeviceID)
		if err != nil {
			return err
		}
		d.id = id
		cfg.Playback.DeviceID = d.id.Pointer()
	}

	d.cb = cb
	dev, err := malgo.InitDevice(d.ctx.Context, cfg, malgo.DeviceCallbacks{Data: d.data})
	if err != nil {
		return err
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		return err
	}
	d.dev = dev
	d.cfg.Logger.Info("device: started", "backend", Malgo, "rate", d.cfg.SampleRate)

	return nil
}

// data runs on the miniaudio thread.
func (d *malgoDevice) data(out, _ []byte, frames uint32) {
	n := min(int(frames)*2, len(out)/4)
	if n == 0 {
		return
	}
	d.cb(unsafe.Slice((*float32)(unsafe.Pointer(&out[0])), n))
}

func (d *malgoDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dev == nil {
		return nil
	}
	err := d.dev.Stop()
	d.dev.Uninit()
	d.dev = nil

	return err
}

func (d *malgoDevice) Close() error {
	err := d.Stop()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ctx != nil {
		_ = d.ctx.Uninit()
		d.ctx.Free()
		d.ctx = nil
	}

	return err
}

func (d *malgoDevice) SampleRate() int { return d.cfg.SampleRate }
