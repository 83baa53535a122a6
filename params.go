// SPDX-License-Identifier: EPL-2.0

package gamemix

import (
	"math"

	"github.com/ik5/gamemix/internal/command"
	"github.com/ik5/gamemix/internal/dsp"
	"github.com/ik5/gamemix/internal/spatial"
	"github.com/ik5/gamemix/utils"
)

// SetVolume sets h's linear gain. Negative values are clamped to 0.
func (e *Engine) SetVolume(h Handle, volume float64) {
	if math.IsNaN(volume) {
		return
	}
	volume = max(volume, 0)
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Volume = volume
		return command.SetVolume{Volume: volume}
	})
}

// Volume returns h's linear gain.
func (e *Engine) Volume(h Handle) float64 {
	return get(e, h, func(inst *instance) float64 { return inst.voice.Volume })
}

// SetPitch sets h's playback rate, clamped to [0.25, 4].
func (e *Engine) SetPitch(h Handle, pitch float64) {
	if math.IsNaN(pitch) {
		return
	}
	pitch = utils.Clamp(pitch, minPitch, maxPitch)
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Pitch = pitch
		return command.SetPitch{Pitch: pitch}
	})
}

// Pitch returns h's playback rate.
func (e *Engine) Pitch(h Handle) float64 {
	return get(e, h, func(inst *instance) float64 { return inst.voice.Pitch })
}

// SetPan sets the stereo position of a non-spatial sound, from -1 (left)
// to 1 (right).
func (e *Engine) SetPan(h Handle, pan float64) {
	if math.IsNaN(pan) {
		return
	}
	pan = utils.Clamp(pan, -1, 1)
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Pan = pan
		return command.SetPan{Pan: pan}
	})
}

// Pan returns h's stereo position.
func (e *Engine) Pan(h Handle) float64 {
	return get(e, h, func(inst *instance) float64 { return inst.voice.Pan })
}

// SetLooping makes h restart from the beginning when it reaches the end.
func (e *Engine) SetLooping(h Handle, looping bool) {
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Looping = looping
		if inst.slot != nil {
			inst.slot.SetLoop(looping)
		}
		return command.SetLooping{Looping: looping}
	})
}

// Looping reports whether h loops.
func (e *Engine) Looping(h Handle) bool {
	return get(e, h, func(inst *instance) bool { return inst.voice.Looping })
}

// SetSpatialization switches h between explicit pan and 3D positioning
// relative to the listener.
func (e *Engine) SetSpatialization(h Handle, enabled bool) {
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Spatial = enabled
		return command.SetSpatial{Enabled: enabled}
	})
}

// Spatialization reports whether h is positioned in 3D.
func (e *Engine) Spatialization(h Handle) bool {
	return get(e, h, func(inst *instance) bool { return inst.voice.Spatial })
}

// SetPosition3D places h in world space. Non-finite positions are ignored.
func (e *Engine) SetPosition3D(h Handle, pos Vec3) {
	if !spatial.Finite(pos) {
		return
	}
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Position = pos
		return command.SetPosition{Position: pos}
	})
}

// Position3D returns h's world position.
func (e *Engine) Position3D(h Handle) Vec3 {
	return get(e, h, func(inst *instance) Vec3 { return inst.voice.Position })
}

// SetVelocity sets h's velocity for Doppler. Non-finite values are ignored.
func (e *Engine) SetVelocity(h Handle, vel Vec3) {
	if !spatial.Finite(vel) {
		return
	}
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Velocity = vel
		return command.SetVelocity{Velocity: vel}
	})
}

// Velocity returns h's velocity.
func (e *Engine) Velocity(h Handle) Vec3 {
	return get(e, h, func(inst *instance) Vec3 { return inst.voice.Velocity })
}

// SetDoppler scales h's Doppler shift. 0 disables it.
func (e *Engine) SetDoppler(h Handle, factor float64) {
	if math.IsNaN(factor) {
		return
	}
	factor = max(factor, 0)
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Doppler = factor
		return command.SetDoppler{Factor: factor}
	})
}

// Doppler returns h's Doppler factor.
func (e *Engine) Doppler(h Handle) float64 {
	return get(e, h, func(inst *instance) float64 { return inst.voice.Doppler })
}

// SetAttenuation sets h's distance falloff. Invalid distances are clamped.
func (e *Engine) SetAttenuation(h Handle, a Attenuation) {
	a = a.Sanitize()
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Attenuation = a
		return command.SetAttenuation{Attenuation: a}
	})
}

// Attenuation returns h's distance falloff.
func (e *Engine) Attenuation(h Handle) Attenuation {
	return get(e, h, func(inst *instance) Attenuation { return inst.voice.Attenuation })
}

// SetBus routes h to bus. Unknown buses are ignored.
func (e *Engine) SetBus(h Handle, bus int) {
	if bus < 0 || bus >= e.cfg.MaxBuses {
		return
	}
	id := int32(bus)
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Bus = id
		return command.SetBus{Bus: id}
	})
}

// Bus returns the bus h plays through.
func (e *Engine) Bus(h Handle) int {
	return get(e, h, func(inst *instance) int { return int(inst.voice.Bus) })
}

// SetLowpassEnabled turns h's lowpass filter on or off.
func (e *Engine) SetLowpassEnabled(h Handle, enabled bool) {
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Lowpass.Enabled = enabled
		return command.SetLowpass{Filter: inst.voice.Lowpass}
	})
}

// LowpassEnabled reports whether h's lowpass filter is on.
func (e *Engine) LowpassEnabled(h Handle) bool {
	return get(e, h, func(inst *instance) bool { return inst.voice.Lowpass.Enabled })
}

// SetLowpassCutoff sets the lowpass corner in Hz, clamped to [10, rate/2].
func (e *Engine) SetLowpassCutoff(h Handle, hz float64) {
	if math.IsNaN(hz) {
		return
	}
	hz = dsp.ClampCutoff(hz, e.rate)
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Lowpass.Cutoff = hz
		return command.SetLowpass{Filter: inst.voice.Lowpass}
	})
}

// LowpassCutoff returns the lowpass corner in Hz.
func (e *Engine) LowpassCutoff(h Handle) float64 {
	return get(e, h, func(inst *instance) float64 { return inst.voice.Lowpass.Cutoff })
}

// SetHighpassEnabled turns h's highpass filter on or off.
func (e *Engine) SetHighpassEnabled(h Handle, enabled bool) {
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Highpass.Enabled = enabled
		return command.SetHighpass{Filter: inst.voice.Highpass}
	})
}

// HighpassEnabled reports whether h's highpass filter is on.
func (e *Engine) HighpassEnabled(h Handle) bool {
	return get(e, h, func(inst *instance) bool { return inst.voice.Highpass.Enabled })
}

// SetHighpassCutoff sets the highpass corner in Hz, clamped to [10, rate/2].
func (e *Engine) SetHighpassCutoff(h Handle, hz float64) {
	if math.IsNaN(hz) {
		return
	}
	hz = dsp.ClampCutoff(hz, e.rate)
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Highpass.Cutoff = hz
		return command.SetHighpass{Filter: inst.voice.Highpass}
	})
}

// HighpassCutoff returns the highpass corner in Hz.
func (e *Engine) HighpassCutoff(h Handle) float64 {
	return get(e, h, func(inst *instance) float64 { return inst.voice.Highpass.Cutoff })
}

// SetReverbSend sets how much of h feeds its reverb, from 0 to 1.
func (e *Engine) SetReverbSend(h Handle, send float64) {
	if math.IsNaN(send) {
		return
	}
	send = utils.Clamp(send, 0, 1)
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.ReverbSend = send
		return command.SetReverbSend{Send: send}
	})
}

// ReverbSend returns how much of h feeds its reverb.
func (e *Engine) ReverbSend(h Handle) float64 {
	return get(e, h, func(inst *instance) float64 { return inst.voice.ReverbSend })
}

// SetReverb routes h to reverb instance id, or to none with -1.
func (e *Engine) SetReverb(h Handle, id int) {
	if id < -1 || id >= e.cfg.MaxReverbs {
		return
	}
	rid := int32(id)
	e.update(h, func(inst *instance) command.Payload {
		inst.voice.Reverb = rid
		return command.SetReverb{Reverb: rid}
	})
}

// Reverb returns h's reverb instance, or -1 for none or an invalid handle.
func (e *Engine) Reverb(h Handle) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	inst := e.lookup(h)
	if inst == nil {
		return -1
	}

	return int(inst.voice.Reverb)
}
