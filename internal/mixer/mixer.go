// SPDX-License-Identifier: EPL-2.0

// Package mixer renders every active voice into the device buffer. It runs
// on the device callback: Process never blocks, locks or allocates. The
// only way in is the command queue; the only way out is the return queue
// and a few atomics.
package mixer

import (
	"math"
	"sync/atomic"

	"github.com/ik5/gamemix/internal/bus"
	"github.com/ik5/gamemix/internal/command"
	"github.com/ik5/gamemix/internal/dsp"
	"github.com/ik5/gamemix/internal/spatial"
	"github.com/ik5/gamemix/utils"
)

const DefaultMaxBlockFrames = 512

// Config configures a Mixer.
type Config struct {
	SampleRate     int
	Instances      int
	Reverbs        int
	MaxBlockFrames int
	SpeedOfSound   float64

	// In carries commands from the control side; Out carries acks and
	// realtime stops back.
	In  *command.Queue
	Out *command.Queue

	// Volumes is the initial resolved bus volume array. It is handed back
	// through an ack when replaced.
	Volumes *bus.Volumes
}

// Stats are counters the control side reads between callbacks.
type Stats struct {
	// Underruns counts blocks a streamed voice skipped for lack of frames.
	Underruns uint64
	// ReturnOverflows counts messages parked because Out was full.
	ReturnOverflows uint64
	// Dropped counts messages lost because the overflow area was full too.
	Dropped uint64
	// Voices is the number of active, unpaused voices after the last
	// callback.
	Voices int
}

type reverbSlot struct {
	reverb  *dsp.Reverb
	enabled bool
	params  dsp.Params
}

// Mixer is the realtime half of the engine.
type Mixer struct {
	rate     float64
	maxBlock int
	speed    float64

	in  *command.Queue
	out *command.Queue

	voices   []voice
	reverbs  []reverbSlot
	volumes  *bus.Volumes
	listener spatial.Listener
	overflow []command.Command

	positions []atomic.Uint64
	underruns atomic.Uint64
	overflows atomic.Uint64
	dropped   atomic.Uint64
	playing   atomic.Int32
}

// New allocates every buffer the mixer will ever use.
func New(cfg Config) *Mixer {
	if cfg.MaxBlockFrames <= 0 {
		cfg.MaxBlockFrames = DefaultMaxBlockFrames
	}
	if cfg.Volumes == nil {
		cfg.Volumes = bus.Unity()
	}

	m := &Mixer{
		rate:      float64(cfg.SampleRate),
		maxBlock:  cfg.MaxBlockFrames,
		speed:     cfg.SpeedOfSound,
		in:        cfg.In,
		out:       cfg.Out,
		voices:    make([]voice, cfg.Instances),
		reverbs:   make([]reverbSlot, cfg.Reverbs),
		volumes:   cfg.Volumes,
		listener:  spatial.DefaultListener(),
		overflow:  make([]command.Command, 0, cfg.Instances+cfg.Reverbs+4),
		positions: make([]atomic.Uint64, cfg.Instances),
	}

	// Worst case need: pitch 4 over a full block plus interpolation guard.
	window := 4*cfg.MaxBlockFrames + 4
	for i := range m.voices {
		m.voices[i].window = make([][2]float32, window)
	}
	for i := range m.reverbs {
		m.reverbs[i].params = dsp.DefaultParams()
	}

	return m
}

// Stats returns the counters.
func (m *Mixer) Stats() Stats {
	return Stats{
		Underruns:       m.underruns.Load(),
		ReturnOverflows: m.overflows.Load(),
		Dropped:         m.dropped.Load(),
		Voices:          int(m.playing.Load()),
	}
}

// Position returns the generation and engine frame last published for
// instance index.
func (m *Mixer) Position(index int32) (generation uint32, frame int64) {
	if index < 0 || int(index) >= len(m.positions) {
		return 0, 0
	}

	p := m.positions[index].Load()

	return uint32(p >> 32), int64(uint32(p))
}

func (m *Mixer) publish(index int, v *voice) {
	f := uint64(min(max(v.cursor(), 0), math.MaxUint32))
	m.positions[index].Store(uint64(v.generation)<<32 | f)
}

// Process fills out with interleaved stereo frames.
func (m *Mixer) Process(out []float32) {
	m.retryReturns()
	m.drain()

	frames := len(out) / 2
	for off := 0; off < frames; off += m.maxBlock {
		n := min(m.maxBlock, frames-off)
		m.mixBlock(out[2*off:2*(off+n)], n)
	}
	if len(out)%2 == 1 {
		out[len(out)-1] = 0
	}

	playing := int32(0)
	for i := range m.voices {
		v := &m.voices[i]
		if !v.active {
			continue
		}
		m.publish(i, v)
		if !v.paused {
			playing++
		}
	}
	m.playing.Store(playing)
}

func (m *Mixer) mixBlock(out []float32, n int) {
	clear(out)

	for i := range m.voices {
		v := &m.voices[i]
		if !v.active || v.paused {
			continue
		}
		if v.dirty {
			v.update(&m.listener, m.speed)
		}

		var done bool
		if v.streamed() {
			done = m.renderStream(v, out, n)
		} else {
			done = m.renderBuffered(v, out, n)
		}
		if done {
			m.finish(int32(i), v)
		}
	}

	for i := range m.reverbs {
		r := &m.reverbs[i]
		if r.enabled && r.reverb != nil {
			r.reverb.Process(out, n)
		}
	}
}

// target returns the reverb v sends to, or nil.
func (m *Mixer) target(v *voice) *dsp.Reverb {
	if v.send <= 0 || v.reverb < 0 || int(v.reverb) >= len(m.reverbs) {
		return nil
	}
	r := &m.reverbs[v.reverb]
	if !r.enabled {
		return nil
	}

	return r.reverb
}

// emit filters, scales and accumulates one interpolated frame.
func (m *Mixer) emit(v *voice, out []float32, i int, l, r, gl, gr float32, rv *dsp.Reverb) {
	if v.lowpassOn {
		l, r = v.lowpass.Process(l, r)
	}
	if v.highpassOn {
		l, r = v.highpass.Process(l, r)
	}

	l *= gl
	r *= gr
	out[2*i] += l
	out[2*i+1] += r

	if rv != nil {
		rv.Accumulate(i, 0.5*(l+r)*v.send)
	}
}

// renderBuffered reports whether the voice reached the end.
func (m *Mixer) renderBuffered(v *voice, out []float32, n int) bool {
	if v.frames == 0 {
		return true
	}

	busVol := m.volumes[v.bus]
	gl, gr := v.gainL*busVol, v.gainR*busVol
	rv := m.target(v)
	total := float64(v.frames)
	pcm := v.pcm
	pos := v.pos

	for i := range n {
		if pos >= total {
			if !v.looping {
				v.pos = pos
				return true
			}
			pos = math.Mod(pos, total)
		}

		idx := int64(pos)
		next := idx + 1
		if next >= v.frames {
			if v.looping {
				next = 0
			} else {
				next = idx
			}
		}
		t := float32(pos - float64(idx))

		l := utils.Lerp(pcm[2*idx], pcm[2*next], t)
		r := utils.Lerp(pcm[2*idx+1], pcm[2*next+1], t)
		m.emit(v, out, i, l, r, gl, gr, rv)

		pos += v.step
	}

	if pos >= total && v.looping {
		pos = math.Mod(pos, total)
	}
	v.pos = pos

	return pos >= total
}

// renderStream reports whether the voice reached the end of its stream.
func (m *Mixer) renderStream(v *voice, out []float32, n int) bool {
	slot := v.slot
	if v.skipPending {
		seeked := slot.Seeked()
		if seeked < v.serial {
			return slot.Failed()
		}
		if slot.Flushed() < seeked {
			slot.Flush(seeked)
		}
		v.skipPending = false
		v.winLen = 0
		v.frac = 0
		v.winStart = v.base
	}

	need := min(int(v.frac+float64(n)*v.step)+2, len(v.window))
	rg := slot.Ring()
	if v.winLen < need {
		v.winLen += rg.Read(v.window[v.winLen:need])
	}

	tail := false
	if v.winLen < need {
		if !slot.Ended() && !slot.Failed() {
			m.underruns.Add(1)
			return false
		}
		// ended is stored after the last write.
		v.winLen += rg.Read(v.window[v.winLen:need])
		tail = v.winLen < need
	}

	busVol := m.volumes[v.bus]
	gl, gr := v.gainL*busVol, v.gainR*busVol
	rv := m.target(v)
	frac := v.frac
	done := false

	for i := range n {
		idx := int(frac)
		if idx >= v.winLen {
			done = true
			break
		}
		next := min(idx+1, v.winLen-1)
		t := float32(frac - float64(idx))

		a, b := v.window[idx], v.window[next]
		m.emit(v, out, i, utils.Lerp(a[0], b[0], t), utils.Lerp(a[1], b[1], t), gl, gr, rv)

		frac += v.step
	}

	shift := min(int(frac), v.winLen)
	if shift > 0 {
		copy(v.window, v.window[shift:v.winLen])
		v.winLen -= shift
		v.winStart += int64(shift)
		frac -= float64(shift)
	}
	v.frac = frac

	if tail && v.winLen == 0 {
		done = true
	}

	return done
}

// finish ends a voice that ran out of audio and tells the control side.
func (m *Mixer) finish(index int32, v *voice) {
	m.publish(int(index), v)
	v.stop()
	m.send(command.Command{
		Target:     command.Instance,
		ID:         index,
		Generation: v.generation,
		Payload:    command.Stop{},
	})
}

// send writes c to Out, parking it when Out is full. Parked messages keep
// their order.
func (m *Mixer) send(c command.Command) {
	if len(m.overflow) == 0 && m.out.Push(c) {
		return
	}

	m.overflows.Add(1)
	if len(m.overflow) == cap(m.overflow) {
		m.dropped.Add(1)
		return
	}
	m.overflow = append(m.overflow, c)
}

func (m *Mixer) retryReturns() {
	sent := 0
	for sent < len(m.overflow) && m.out.Push(m.overflow[sent]) {
		sent++
	}
	if sent == 0 {
		return
	}

	rest := copy(m.overflow, m.overflow[sent:])
	clear(m.overflow[rest:])
	m.overflow = m.overflow[:rest]
}

func (m *Mixer) drain() {
	for {
		c, ok := m.in.Pop()
		if !ok {
			return
		}
		m.apply(c)
	}
}
