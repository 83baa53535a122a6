// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"github.com/ik5/gamemix/internal/bus"
	"github.com/ik5/gamemix/internal/command"
	"github.com/ik5/gamemix/internal/dsp"
	"github.com/ik5/gamemix/internal/spatial"
	"github.com/ik5/gamemix/internal/stream"
	"github.com/ik5/gamemix/utils"
)

const (
	minPitch = 0.25
	maxPitch = 4.0
)

// voice is the realtime-private state of one instance.
type voice struct {
	active     bool
	paused     bool
	looping    bool
	generation uint32

	// Buffered source.
	pcm    []float32
	frames int64
	pos    float64

	// Streamed source. window holds frames starting at winStart; frac is
	// the cursor inside it.
	slot        *stream.Slot
	window      []stream.Frame
	winLen      int
	winStart    int64
	frac        float64
	skipPending bool
	serial      uint64
	base        int64

	volume      float64
	pitch       float64
	pan         float64
	spatial     bool
	position    spatial.Vec3
	velocity    spatial.Vec3
	doppler     float64
	attenuation spatial.Attenuation

	lowpassOn  bool
	lowpass    dsp.Lowpass
	highpassOn bool
	highpass   dsp.Highpass

	bus    int32
	reverb int32
	send   float32

	dirty bool
	step  float64
	gainL float32
	gainR float32
}

func (v *voice) streamed() bool { return v.slot != nil }

// cursor returns the playback position in engine frames.
func (v *voice) cursor() int64 {
	if v.streamed() {
		return v.winStart + int64(v.frac)
	}

	return int64(v.pos)
}

func (v *voice) start(gen uint32, p *command.Voice, rate float64) {
	window := v.window
	*v = voice{
		active:      true,
		generation:  gen,
		window:      window,
		paused:      p.Paused,
		looping:     p.Looping,
		slot:        p.Stream,
		volume:      p.Volume,
		pitch:       p.Pitch,
		pan:         p.Pan,
		spatial:     p.Spatial,
		position:    p.Position,
		velocity:    p.Velocity,
		doppler:     p.Doppler,
		attenuation: p.Attenuation,
		reverb:      p.Reverb,
		send:        float32(utils.Clamp(p.ReverbSend, 0, 1)),
		dirty:       true,
	}
	v.setBus(p.Bus)
	v.setLowpass(p.Lowpass, rate)
	v.setHighpass(p.Highpass, rate)

	if v.streamed() {
		v.winStart = max(p.StartFrame, 0)
		if p.SeekSerial != 0 {
			v.skipPending = true
			v.serial = p.SeekSerial
			v.base = v.winStart
		}
		return
	}

	v.pcm = p.PCM
	v.frames = int64(len(p.PCM) / 2)
	v.seek(p.StartFrame)
}

func (v *voice) stop() {
	v.active = false
	v.slot = nil
	v.pcm = nil
	v.skipPending = false
}

// seek moves a buffered cursor.
func (v *voice) seek(frame int64) {
	frame = max(frame, 0)
	if v.looping && v.frames > 0 {
		frame %= v.frames
	}
	v.pos = float64(min(frame, v.frames))
}

func (v *voice) setBus(id int32) {
	if id < 0 || id >= bus.MaxBuses {
		id = 0
	}
	v.bus = id
}

func (v *voice) setLowpass(f command.Filter, rate float64) {
	if f.Enabled && !v.lowpassOn {
		v.lowpass.Reset()
	}
	v.lowpassOn = f.Enabled
	v.lowpass.SetCutoff(f.Cutoff, rate)
}

func (v *voice) setHighpass(f command.Filter, rate float64) {
	if f.Enabled && !v.highpassOn {
		v.highpass.Reset()
	}
	v.highpassOn = f.Enabled
	v.highpass.SetCutoff(f.Cutoff, rate)
}

// update recomputes the cached step and channel gains.
func (v *voice) update(l *spatial.Listener, speedOfSound float64) {
	pitch := v.pitch
	gain := v.volume
	pan := v.pan

	if v.spatial {
		d := spatial.Length(spatial.Sub(v.position, l.Position))
		gain *= v.attenuation.Gain(d)
		pan = l.Pan(v.position)
		pitch *= l.Doppler(v.position, v.velocity, v.doppler, speedOfSound)
	}

	v.step = utils.Clamp(pitch, minPitch, maxPitch)
	v.gainL, v.gainR = spatial.StereoGains(pan, gain)
	v.dirty = false
}
