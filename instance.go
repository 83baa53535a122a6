// SPDX-License-Identifier: EPL-2.0

package gamemix

import (
	"math"

	"github.com/ik5/gamemix/internal/command"
	"github.com/ik5/gamemix/internal/dsp"
	"github.com/ik5/gamemix/internal/loader"
	"github.com/ik5/gamemix/internal/spatial"
	"github.com/ik5/gamemix/internal/stream"
	"github.com/ik5/gamemix/utils"
)

const (
	minPitch = 0.25
	maxPitch = 4.0

	defaultHighpassCutoff = 20.0
	defaultLowpassCutoff  = 20000.0
)

// instance mirrors one sound on the control side. voice holds every
// parameter and is sent whole when the sound starts; later changes travel
// as individual commands.
type instance struct {
	voice   command.Voice
	asset   *loader.Asset
	slot    *stream.Slot
	started bool

	// A SkipTo issued before the asset length was known.
	skipNorm float64
	hasNorm  bool
}

func (e *Engine) newVoice() command.Voice {
	return command.Voice{
		Volume:      1,
		Pitch:       1,
		Doppler:     1,
		Attenuation: spatial.DefaultAttenuation(),
		Lowpass:     command.Filter{Cutoff: dsp.ClampCutoff(defaultLowpassCutoff, e.rate)},
		Highpass:    command.Filter{Cutoff: defaultHighpassCutoff},
		Reverb:      -1,
	}
}

// PlayBuffered starts path from fully decoded PCM shared by every instance
// of the same path. Playback begins on the first Update after loading. It
// returns the zero Handle when every instance slot is in use.
func (e *Engine) PlayBuffered(path string) Handle {
	return e.play(path, false)
}

// PlayStreamed starts path through a dedicated decoder on the streaming
// goroutine. It returns the zero Handle when no instance or stream slot is
// free.
func (e *Engine) PlayStreamed(path string) Handle {
	return e.play(path, true)
}

func (e *Engine) play(path string, streamed bool) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Handle{}
	}

	index, gen, ok := e.registry.Reserve()
	if !ok {
		e.log.Warn("gamemix: cannot play", "path", path, "error", ErrCapacityExceeded,
			"limit", e.cfg.MaxInstances)
		return Handle{}
	}

	inst := &e.instances[index]
	*inst = instance{voice: e.newVoice()}

	if streamed {
		slot, ok := e.streams.Acquire(path, false)
		if !ok {
			e.registry.Release(index)
			e.log.Warn("gamemix: cannot stream", "path", path, "error", ErrCapacityExceeded,
				"limit", e.cfg.MaxStreams)
			return Handle{}
		}
		inst.slot = slot
	}
	inst.asset = e.loader.Acquire(path, !streamed)

	h := Handle{index: index, generation: gen}
	if !e.tryStart(h) {
		e.waiting = append(e.waiting, h)
	}

	return h
}

// needs returns the asset state an instance waits for.
func (inst *instance) needs() loader.State {
	if inst.slot != nil {
		return loader.MetadataReady
	}

	return loader.FullyLoaded
}

// tryStart sends Play once the asset is ready and releases the instance if
// loading failed. It reports whether h no longer waits. Caller holds mu.
func (e *Engine) tryStart(h Handle) bool {
	inst := &e.instances[h.index]

	if inst.asset.State() == loader.Failed {
		e.log.Debug("gamemix: dropping sound of failed asset", "path", inst.asset.Path(), "handle", h)
		e.release(h.index, false)
		return true
	}
	if !inst.asset.Ready(inst.needs()) {
		return false
	}

	v := inst.voice
	start := v.StartFrame
	if inst.hasNorm {
		start += int64(inst.skipNorm * float64(inst.asset.TotalFrames()))
	}
	v.StartFrame = e.wrap(inst, start)
	inst.voice.StartFrame = v.StartFrame

	if inst.slot != nil {
		v.Stream = inst.slot
		if v.StartFrame > 0 {
			v.SeekSerial = inst.slot.RequestSeek(v.StartFrame)
		}
	} else {
		v.PCM = inst.asset.PCM()
	}

	e.outbox.Push(command.Command{
		Target:     command.Instance,
		ID:         h.index,
		Generation: h.generation,
		Payload:    command.Play{Voice: &v},
	})
	inst.started = true
	inst.hasNorm = false

	return true
}

// startWaiting retries every instance whose asset was loading. Caller holds
// mu.
func (e *Engine) startWaiting() {
	kept := e.waiting[:0]
	for _, h := range e.waiting {
		if !e.registry.Valid(h.index, h.generation) {
			continue
		}
		if !e.tryStart(h) {
			kept = append(kept, h)
		}
	}
	clear(e.waiting[len(kept):])
	e.waiting = kept
}

// release frees the instance at index and invalidates its handles. A
// stream slot the mixer may still read is kept until the Stop ack. Caller
// holds mu.
func (e *Engine) release(index int32, keepSlot bool) {
	inst := &e.instances[index]
	e.loader.Release(inst.asset)
	if inst.slot != nil && !keepSlot {
		e.streams.Release(inst.slot)
	}
	*inst = instance{}
	e.registry.Release(index)
}

// lookup returns the instance h refers to, or nil. Caller holds mu.
func (e *Engine) lookup(h Handle) *instance {
	if !e.registry.Valid(h.index, h.generation) {
		return nil
	}

	return &e.instances[h.index]
}

// update runs f on h's instance and sends the payload it returns once the
// sound has started.
func (e *Engine) update(h Handle, f func(*instance) command.Payload) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst := e.lookup(h)
	if inst == nil {
		return
	}
	p := f(inst)
	if p == nil || !inst.started {
		return
	}

	e.outbox.Push(command.Command{
		Target:     command.Instance,
		ID:         h.index,
		Generation: h.generation,
		Payload:    p,
	})
}

// get reads from h's instance, or returns the zero T for invalid handles.
func get[T any](e *Engine, h Handle, f func(*instance) T) T {
	e.mu.RLock()
	defer e.mu.RUnlock()

	inst := e.lookup(h)
	if inst == nil {
		var zero T
		return zero
	}

	return f(inst)
}

// IsValid reports whether h refers to a live sound.
func (e *Engine) IsValid(h Handle) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.registry.Valid(h.index, h.generation)
}

// IsPlaying reports whether h is valid and not paused. A sound whose asset
// is still loading counts as playing.
func (e *Engine) IsPlaying(h Handle) bool {
	return get(e, h, func(inst *instance) bool { return !inst.voice.Paused })
}

// Stop ends h. The handle is invalid as soon as Stop returns; the sound
// goes quiet on the mixer's next callback after Update.
func (e *Engine) Stop(h Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst := e.lookup(h)
	if inst == nil {
		return
	}

	dropped := e.outbox.Purge(command.Instance, h.index, h.generation)
	sent := inst.started
	for _, c := range dropped {
		if c.Kind() == command.KindPlay {
			// The mixer never heard of this sound.
			sent = false
		}
	}

	if !sent {
		e.release(h.index, false)
		return
	}

	streamed := inst.slot != nil
	e.outbox.Push(command.Command{
		Target:     command.Instance,
		ID:         h.index,
		Generation: h.generation,
		NeedsAck:   streamed,
		Payload:    command.Stop{Stream: inst.slot},
	})
	e.release(h.index, streamed)
}

// Pause silences h and keeps its position.
func (e *Engine) Pause(h Handle) { e.setPaused(h, true) }

// Resume continues a paused sound.
func (e *Engine) Resume(h Handle) { e.setPaused(h, false) }

func (e *Engine) setPaused(h Handle, paused bool) {
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Paused = paused
		return command.SetPaused{Paused: paused}
	})
}

// SkipTo moves h to a position between 0 (start) and 1 (end).
func (e *Engine) SkipTo(h Handle, normalized float64) {
	if math.IsNaN(normalized) {
		return
	}
	normalized = utils.Clamp(normalized, 0, 1)

	e.mu.Lock()
	defer e.mu.Unlock()

	inst := e.lookup(h)
	if inst == nil {
		return
	}
	if !inst.started {
		inst.skipNorm, inst.hasNorm = normalized, true
		inst.voice.StartFrame = 0
		return
	}

	total := inst.asset.TotalFrames()
	if total <= 0 {
		return
	}
	e.seek(h, inst, int64(normalized*float64(total)))
}

// SkipBy moves h forward, or backward for negative seconds.
func (e *Engine) SkipBy(h Handle, seconds float64) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return
	}
	delta := int64(math.Round(seconds * e.rate))

	e.mu.Lock()
	defer e.mu.Unlock()

	inst := e.lookup(h)
	if inst == nil {
		return
	}
	if !inst.started {
		inst.voice.StartFrame += delta
		return
	}
	e.seek(h, inst, e.cursor(h, inst)+delta)
}

// Position returns h's playback position in seconds.
func (e *Engine) Position(h Handle) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	inst := e.lookup(h)
	if inst == nil {
		return 0
	}

	return float64(e.cursor(h, inst)) / e.rate
}

// cursor returns the position the mixer will be at once pending commands
// are applied. Caller holds mu.
func (e *Engine) cursor(h Handle, inst *instance) int64 {
	key := command.Key{Kind: command.KindSeek, Target: command.Instance, ID: h.index, Generation: h.generation}
	if c, ok := e.outbox.Pending(key); ok {
		return c.Payload.(command.Seek).Frame
	}
	if !inst.started {
		return max(inst.voice.StartFrame, 0)
	}
	if gen, frame := e.mixer.Position(h.index); gen == h.generation {
		return frame
	}

	return max(inst.voice.StartFrame, 0)
}

// wrap folds frame into the asset: modulo its length when looping,
// clamped to it otherwise.
func (e *Engine) wrap(inst *instance, frame int64) int64 {
	frame = max(frame, 0)
	total := inst.asset.TotalFrames()
	if total <= 0 {
		return frame
	}
	if inst.voice.Looping {
		return frame % total
	}

	return min(frame, total)
}

// seek sends a Seek; streamed sounds also reposition their decoder. Caller
// holds mu.
func (e *Engine) seek(h Handle, inst *instance, frame int64) {
	frame = e.wrap(inst, frame)
	s := command.Seek{Frame: frame}
	if inst.slot != nil {
		s.Serial = inst.slot.RequestSeek(frame)
	}

	e.outbox.Push(command.Command{
		Target:     command.Instance,
		ID:         h.index,
		Generation: h.generation,
		Payload:    s,
	})
}
