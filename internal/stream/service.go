// SPDX-License-Identifier: EPL-2.0

// Package stream keeps per-instance ring buffers filled from live decoders
// on a background goroutine.
package stream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/gamemix/audio"
)

const (
	DefaultTick        = 10 * time.Millisecond
	DefaultRingFrames  = 16384
	DefaultChunkFrames = 2048
)

// Config configures a Service.
type Config struct {
	Opener     audio.Opener
	SampleRate int
	Slots      int
	// Tick is the fill interval.
	Tick time.Duration
	// RingFrames is the per-slot ring capacity in stereo frames.
	RingFrames int
	// ChunkFrames bounds how much is decoded per slot per tick.
	ChunkFrames int
	Logger      *slog.Logger
}

// Service owns a fixed pool of slots and fills them on a ticker. It never
// blocks on a full ring: the slot is skipped until the next tick.
type Service struct {
	opener audio.Opener
	rate   int
	tick   time.Duration
	log    *slog.Logger

	slots []*Slot

	mu   sync.Mutex
	free []*Slot

	stopChan chan struct{}
	stopped  atomic.Bool
	started  atomic.Bool
	wg       sync.WaitGroup
}

// New creates a service with cfg.Slots idle slots. Call Start to run the
// fill loop, or drive it with Tick.
func New(cfg Config) *Service {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.RingFrames <= 0 {
		cfg.RingFrames = DefaultRingFrames
	}
	if cfg.ChunkFrames <= 0 {
		cfg.ChunkFrames = DefaultChunkFrames
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Service{
		opener:   cfg.Opener,
		rate:     cfg.SampleRate,
		tick:     cfg.Tick,
		log:      cfg.Logger,
		slots:    make([]*Slot, cfg.Slots),
		free:     make([]*Slot, 0, cfg.Slots),
		stopChan: make(chan struct{}),
	}

	for i := range s.slots {
		s.slots[i] = newSlot(i, cfg.RingFrames, cfg.ChunkFrames)
	}
	for i := len(s.slots) - 1; i >= 0; i-- {
		s.free = append(s.free, s.slots[i])
	}

	return s
}

// Start runs the fill loop until Close.
func (s *Service) Start() {
	if s.stopped.Load() || !s.started.CompareAndSwap(false, true) {
		return
	}

	s.wg.Add(1)
	go s.loop()
}

func (s *Service) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Close stops the fill loop and closes every open decoder.
func (s *Service) Close() error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	close(s.stopChan)
	s.wg.Wait()

	var errs []error
	for _, slot := range s.slots {
		slot.work.Lock()
		errs = append(errs, slot.closeStream())
		slot.work.Unlock()
	}

	return errors.Join(errs...)
}

// Free returns the number of idle slots.
func (s *Service) Free() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.free)
}

// Acquire reserves an idle slot for path. The decoder is opened by the
// fill loop on its next pass. ok is false when every slot is busy.
func (s *Service) Acquire(path string, loop bool) (*Slot, bool) {
	s.mu.Lock()
	if len(s.free) == 0 {
		s.mu.Unlock()
		return nil, false
	}
	slot := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	s.mu.Unlock()

	slot.work.Lock()
	slot.reset(path, loop)
	slot.inUse.Store(true)
	slot.work.Unlock()

	return slot, true
}

// Release closes the slot's decoder and returns it to the pool. The mixer
// must no longer read from the slot's ring.
func (s *Service) Release(slot *Slot) {
	if slot == nil {
		return
	}

	slot.work.Lock()
	if !slot.inUse.Load() {
		slot.work.Unlock()
		return
	}
	if err := slot.closeStream(); err != nil {
		s.log.Debug("stream: close failed", "path", slot.path, "error", err)
	}
	slot.inUse.Store(false)
	slot.work.Unlock()

	s.mu.Lock()
	s.free = append(s.free, slot)
	s.mu.Unlock()
}

// Tick runs one fill pass over every active slot.
func (s *Service) Tick() {
	for _, slot := range s.slots {
		if slot.inUse.Load() {
			s.fill(slot)
		}
	}
}

func (s *Service) fill(slot *Slot) {
	slot.work.Lock()
	defer slot.work.Unlock()

	if !slot.inUse.Load() || slot.failed.Load() {
		return
	}

	if !slot.opened {
		if err := s.open(slot); err != nil {
			slot.failed.Store(true)
			s.log.Warn("stream: open failed", "path", slot.path, "error", err)
			return
		}
	}

	if req := slot.requested.Load(); req != slot.seeked.Load() {
		if err := s.seek(slot, slot.seekTarget.Load()); err != nil {
			slot.failed.Store(true)
			s.log.Warn("stream: seek failed", "path", slot.path, "error", err)
			return
		}
		slot.ended.Store(false)
		slot.seeked.Store(req)
	}

	// Stale frames are still in the ring.
	if slot.seeked.Load() != slot.flushed.Load() {
		return
	}

	if slot.ended.Load() {
		if !slot.loop.Load() {
			return
		}
		if err := s.seek(slot, 0); err != nil {
			slot.failed.Store(true)
			s.log.Warn("stream: rewind failed", "path", slot.path, "error", err)
			return
		}
		slot.ended.Store(false)
	}

	want := min(slot.ring.Free(), len(slot.frames))
	if want == 0 {
		return
	}

	if err := s.decode(slot, want); err != nil {
		slot.failed.Store(true)
		s.log.Warn("stream: decode failed", "path", slot.path, "error", err)
	}
}

// decode reads up to want frames and writes them to the ring. ended is
// stored after the write so the consumer never sees it before the last
// frames.
func (s *Service) decode(slot *Slot, want int) error {
	got := 0
	empty := 0
	eof := false
	for got < want && !eof {
		n, err := slot.src.ReadSamples(slot.scratch[:(want-got)*2])
		frames := n / 2
		for i := range frames {
			slot.frames[got+i] = Frame{slot.scratch[2*i], slot.scratch[2*i+1]}
		}
		got += frames

		if n == 0 {
			empty++
		} else {
			empty = 0
		}

		switch {
		case errors.Is(err, io.EOF):
			// An empty looping stream would otherwise spin here.
			if !slot.loop.Load() || empty > 1 {
				eof = true
				continue
			}
			if err := s.seek(slot, 0); err != nil {
				slot.ring.Write(slot.frames[:got])
				return err
			}
		case err != nil:
			slot.ring.Write(slot.frames[:got])
			return fmt.Errorf("reading %s: %w", slot.path, err)
		case empty > 8:
			eof = true
		}
	}

	slot.ring.Write(slot.frames[:got])
	if eof {
		slot.ended.Store(true)
	}

	return nil
}

func (s *Service) open(slot *Slot) error {
	st, err := s.opener.Open(slot.path)
	if err != nil {
		return err
	}

	var src audio.Source = audio.NewStereoMixer(st)
	if st.SampleRate() != s.rate {
		src = audio.NewResampler(src, s.rate)
	}

	slot.stream = st
	slot.src = src
	slot.srcRate = st.SampleRate()
	slot.opened = true

	return nil
}

// seek repositions the decoder to an engine-rate frame.
func (s *Service) seek(slot *Slot, frame int64) error {
	srcFrame := frame
	if slot.srcRate != s.rate && s.rate > 0 {
		srcFrame = frame * int64(slot.srcRate) / int64(s.rate)
	}
	if n := slot.stream.LengthInFrames(); n >= 0 && srcFrame > n {
		srcFrame = n
	}

	if err := slot.stream.SeekToFrame(srcFrame); err != nil {
		return fmt.Errorf("seeking %s to %d: %w", slot.path, srcFrame, err)
	}
	if r, ok := slot.src.(*audio.Resampler); ok {
		r.Reset()
	}

	return nil
}
