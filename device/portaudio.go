// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package device

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

func init() { register(PortAudio, openPortAudio) }

type portAudioDevice struct {
	cfg Config

	mu     sync.Mutex
	stream *portaudio.Stream
	open   bool
}

func openPortAudio(cfg Config) (Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	return &portAudioDevice{cfg: cfg, open: true}, nil
}

func (d *portAudioDevice) Devices() ([]Info, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	def, _ := portaudio.DefaultOutputDevice()

	var out []Info
	for _, dev := range devices {
		if dev.MaxOutputChannels < 2 {
			continue
		}
		out = append(out, Info{
			ID:         dev.Name,
			Name:       dev.Name,
			Default:    dev == def,
			Channels:   dev.MaxOutputChannels,
			SampleRate: int(dev.DefaultSampleRate),
		})
	}

	return out, nil
}

func (d *portAudioDevice) output() (*portaudio.DeviceInfo, error) {
	if d.cfg.DeviceID == "" {
		return portaudio.DefaultOutputDevice()
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		if dev.MaxOutputChannels >= 2 && dev.Name == d.cfg.DeviceID {
			return dev, nil
		}
	}

	return nil, ErrNotFound
}

func (d *portAudioDevice) Start(cb Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return ErrClosed
	}
	if d.stream != nil {
		return ErrStarted
	}

	dev, err := d.output()
	if err != nil {
		return err
	}

	params := portaudio.HighLatencyParameters(nil, dev)
	params.Output.Channels = 2
	params.SampleRate = float64(d.cfg.SampleRate)
	params.FramesPerBuffer = d.cfg.PeriodFrames

	stream, err := portaudio.OpenStream(params, func(out []float32) { cb(out) })
	if err != nil {
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return err
	}
	d.stream = stream
	d.cfg.Logger.Info("device: started", "backend", PortAudio, "device", dev.Name, "rate", d.cfg.SampleRate)

	return nil
}

func (d *portAudioDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream == nil {
		return nil
	}
	err := d.stream.Stop()
	if cerr := d.stream.Close(); err == nil {
		err = cerr
	}
	d.stream = nil

	return err
}

func (d *portAudioDevice) Close() error {
	err := d.Stop()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		d.open = false
		if terr := portaudio.Terminate(); err == nil {
			err = terr
		}
	}

	return err
}

func (d *portAudioDevice) SampleRate() int { return d.cfg.SampleRate }
