// SPDX-License-Identifier: EPL-2.0

package gamemix

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ik5/gamemix/device"
	"github.com/ik5/gamemix/formats"
	"github.com/ik5/gamemix/internal/bus"
	"github.com/ik5/gamemix/internal/command"
	"github.com/ik5/gamemix/internal/dsp"
	"github.com/ik5/gamemix/internal/loader"
	"github.com/ik5/gamemix/internal/mixer"
	"github.com/ik5/gamemix/internal/registry"
	"github.com/ik5/gamemix/internal/spatial"
	"github.com/ik5/gamemix/internal/stream"
)

const maxSampleRate = 384000

// statsInterval is how often Update reports what the mixer counted.
const statsInterval = 1.0

type reverbState struct {
	design  dsp.Design
	created bool
	enabled bool
	params  dsp.Params
}

// Engine is the control side of the audio engine. Its methods are safe for
// concurrent use, but commands reach the mixer only when Update runs.
type Engine struct {
	cfg  Config
	log  *slog.Logger
	rate float64

	mu        sync.RWMutex
	closed    bool
	device    device.Device
	registry  *registry.Registry
	instances []instance
	waiting   []Handle
	listener  spatial.Listener
	buses     *bus.Graph
	volumes   *bus.Pool
	busesBusy bool
	reverbs   []reverbState
	outbox    *command.Outbox

	lastStats mixer.Stats
	sinceLog  float64

	toMixer   *command.Queue
	fromMixer *command.Queue
	mixer     *mixer.Mixer
	loader    *loader.Loader
	streams   *stream.Service
}

// New creates an engine and starts its loader and streaming goroutines.
// Attach it to an output with Start, or call Process from your own device.
func New(cfg Config) (*Engine, error) {
	if cfg.SampleRate <= 0 || cfg.SampleRate > maxSampleRate {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, cfg.SampleRate)
	}
	cfg = cfg.normalize()

	opener := cfg.Opener
	if opener == nil {
		opener = formats.NewOpener()
	}

	e := &Engine{
		cfg:       cfg,
		log:       cfg.Logger,
		rate:      float64(cfg.SampleRate),
		registry:  registry.New(cfg.MaxInstances),
		instances: make([]instance, cfg.MaxInstances),
		listener:  spatial.DefaultListener(),
		buses:     bus.NewGraph(cfg.MaxBuses),
		volumes:   bus.NewPool(3),
		reverbs:   make([]reverbState, cfg.MaxReverbs),
		toMixer:   command.NewQueue(cfg.QueueCapacity),
		fromMixer: command.NewQueue(cfg.QueueCapacity),
	}
	for i := range e.reverbs {
		e.reverbs[i].params = dsp.DefaultParams()
	}
	e.outbox = command.NewOutbox(command.Hooks{
		Allow:      e.allow,
		BeforeSend: e.beforeSend,
		AfterSend:  e.afterSend,
	})

	initial := e.volumes.Get()
	e.buses.Resolve(initial)

	e.mixer = mixer.New(mixer.Config{
		SampleRate:     cfg.SampleRate,
		Instances:      cfg.MaxInstances,
		Reverbs:        cfg.MaxReverbs,
		MaxBlockFrames: cfg.MaxBlockFrames,
		SpeedOfSound:   cfg.SpeedOfSound,
		In:             e.toMixer,
		Out:            e.fromMixer,
		Volumes:        initial,
	})
	e.loader = loader.New(opener, cfg.SampleRate, e.log)
	e.streams = stream.New(stream.Config{
		Opener:     opener,
		SampleRate: cfg.SampleRate,
		Slots:      cfg.MaxStreams,
		Tick:       cfg.StreamTick,
		RingFrames: cfg.StreamRingFrames,
		Logger:     e.log,
	})
	e.streams.Start()

	e.log.Info("gamemix: engine created",
		"rate", cfg.SampleRate,
		"instances", cfg.MaxInstances,
		"streams", cfg.MaxStreams,
		"block", cfg.MaxBlockFrames)

	return e, nil
}

// SampleRate returns the engine's output rate.
func (e *Engine) SampleRate() int { return e.cfg.SampleRate }

// Start attaches the mixer to dev. The caller keeps ownership of dev; Close
// stops it but does not close it. The engine does not resample its output, so
// dev must run at SampleRate or Start fails with ErrRateMismatch.
func (e *Engine) Start(dev device.Device) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.device != nil {
		return ErrStarted
	}
	if rate := dev.SampleRate(); rate != e.cfg.SampleRate {
		return fmt.Errorf("%w: device %d Hz, engine %d Hz", ErrRateMismatch, rate, e.cfg.SampleRate)
	}
	if err := dev.Start(e.Process); err != nil {
		return fmt.Errorf("starting device: %w", err)
	}
	e.device = dev

	return nil
}

// Process renders interleaved stereo frames into out. It is the device
// callback: calls must not overlap, and it never blocks or allocates.
func (e *Engine) Process(out []float32) {
	e.mixer.Process(out)
}

// Close stops the device, if any, and the background goroutines. Handles
// stay harmless after Close.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	dev := e.device
	e.device = nil
	e.mu.Unlock()

	var errs []error
	if dev != nil {
		errs = append(errs, dev.Stop())
	}
	errs = append(errs, e.streams.Close(), e.loader.Close())
	e.log.Info("gamemix: engine closed")

	return errors.Join(errs...)
}

// Update must be called regularly from the control goroutine, typically
// once per game frame. It collects what the mixer sent back, starts sounds
// whose assets finished loading and sends pending commands.
func (e *Engine) Update(deltaSeconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.drainReturns()
	e.startWaiting()
	e.reportStats(deltaSeconds)

	if e.outbox.Len() > 0 {
		e.outbox.Flush(e.toMixer)
		if n := e.outbox.Len(); n > 0 {
			e.log.Debug("gamemix: commands deferred", "pending", n)
		}
	}
}

// Stats returns the engine counters.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	m := e.mixer.Stats()

	return Stats{
		Instances:       e.registry.Len(),
		Waiting:         len(e.waiting),
		Playing:         m.Voices,
		Assets:          e.loader.Len(),
		FreeStreams:     e.streams.Free(),
		PendingCommands: e.outbox.Len(),
		Underruns:       m.Underruns,
		ReturnOverflows: m.ReturnOverflows,
		DroppedReturns:  m.Dropped,
	}
}

// drainReturns finishes every handoff the mixer acknowledged. Caller holds
// mu.
func (e *Engine) drainReturns() {
	for {
		c, ok := e.fromMixer.Pop()
		if !ok {
			return
		}

		switch p := c.Payload.(type) {
		case command.Stop:
			if c.NeedsAck {
				// Ack of a client stop: the mixer let go of the ring.
				if p.Stream != nil {
					e.streams.Release(p.Stream)
				}
				continue
			}
			// The mixer reached the end of the sound.
			if e.registry.Valid(c.ID, c.Generation) {
				e.release(c.ID, false)
			}
		case command.SetResolvedBusVolumes:
			e.volumes.Put(p.Volumes)
			e.busesBusy = false
		case command.CreateReverb:
			if p.Reverb != nil {
				e.log.Debug("gamemix: reverb replaced", "id", c.ID)
			}
		case command.DestroyReverb:
			e.log.Debug("gamemix: reverb destroyed", "id", c.ID)
		}
	}
}

// reportStats logs what the mixer counted since the last report. Caller
// holds mu.
func (e *Engine) reportStats(dt float64) {
	if dt > 0 {
		e.sinceLog += dt
	}
	if e.sinceLog < statsInterval {
		return
	}
	e.sinceLog = 0

	s := e.mixer.Stats()
	if n := s.Underruns - e.lastStats.Underruns; n > 0 {
		e.log.Warn("gamemix: stream underruns", "blocks", n)
	}
	if n := s.ReturnOverflows - e.lastStats.ReturnOverflows; n > 0 {
		e.log.Warn("gamemix: return queue full", "messages", n)
	}
	if n := s.Dropped - e.lastStats.Dropped; n > 0 {
		e.log.Error("gamemix: realtime messages dropped", "messages", n)
	}
	e.lastStats = s
}

func (e *Engine) allow(c *command.Command) bool {
	// One resolved volume array in flight at a time.
	if c.Kind() == command.KindSetResolvedBusVolumes {
		return !e.busesBusy
	}

	return true
}

func (e *Engine) beforeSend(c *command.Command) {
	switch c.Payload.(type) {
	case command.SetResolvedBusVolumes:
		v := e.volumes.Get()
		e.buses.Resolve(v)
		c.Payload = command.SetResolvedBusVolumes{Volumes: v}
	case command.CreateReverb:
		r := &e.reverbs[c.ID]
		c.Payload = command.CreateReverb{Reverb: dsp.NewReverb(r.design, e.rate, e.cfg.MaxBlockFrames)}
	}
}

func (e *Engine) afterSend(c command.Command) {
	if c.Kind() == command.KindSetResolvedBusVolumes {
		e.busesBusy = true
	}
}
