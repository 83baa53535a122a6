// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"github.com/ik5/gamemix/internal/bus"
	"github.com/ik5/gamemix/internal/command"
	"github.com/ik5/gamemix/internal/dsp"
	"github.com/ik5/gamemix/utils"
)

func (m *Mixer) apply(c command.Command) {
	switch c.Target {
	case command.Instance:
		m.applyInstance(c)
	case command.Reverb:
		m.applyReverb(c)
	default:
		m.applyGlobal(c)
	}
}

func (m *Mixer) applyInstance(c command.Command) {
	if c.ID < 0 || int(c.ID) >= len(m.voices) {
		return
	}
	v := &m.voices[c.ID]

	if p, ok := c.Payload.(command.Play); ok {
		if p.Voice != nil {
			v.start(c.Generation, p.Voice, m.rate)
			m.publish(int(c.ID), v)
		}
		return
	}

	if !v.active || v.generation != c.Generation {
		// The slot must come back even if the voice already ended.
		if c.NeedsAck {
			m.send(c)
		}
		return
	}

	switch p := c.Payload.(type) {
	case command.Stop:
		v.stop()
		if c.NeedsAck {
			m.send(c)
		}
	case command.SetPaused:
		v.paused = p.Paused
	case command.Seek:
		if v.streamed() {
			v.skipPending = true
			v.serial = p.Serial
			v.base = max(p.Frame, 0)
		} else {
			v.seek(p.Frame)
		}
	case command.SetVolume:
		v.volume = p.Volume
		v.dirty = true
	case command.SetPitch:
		v.pitch = p.Pitch
		v.dirty = true
	case command.SetPan:
		v.pan = p.Pan
		v.dirty = true
	case command.SetLooping:
		v.looping = p.Looping
	case command.SetSpatial:
		v.spatial = p.Enabled
		v.dirty = true
	case command.SetPosition:
		v.position = p.Position
		v.dirty = true
	case command.SetVelocity:
		v.velocity = p.Velocity
		v.dirty = true
	case command.SetDoppler:
		v.doppler = p.Factor
		v.dirty = true
	case command.SetAttenuation:
		v.attenuation = p.Attenuation
		v.dirty = true
	case command.SetBus:
		v.setBus(p.Bus)
	case command.SetLowpass:
		v.setLowpass(p.Filter, m.rate)
	case command.SetHighpass:
		v.setHighpass(p.Filter, m.rate)
	case command.SetReverbSend:
		v.send = float32(utils.Clamp(p.Send, 0, 1))
	case command.SetReverb:
		v.reverb = p.Reverb
	case command.Play, command.SetListener, command.SetResolvedBusVolumes,
		command.CreateReverb, command.DestroyReverb, command.SetReverbEnabled,
		command.SetReverbParams:
		// Not instance commands.
	}
}

func (m *Mixer) applyReverb(c command.Command) {
	if c.ID < 0 || int(c.ID) >= len(m.reverbs) {
		return
	}
	r := &m.reverbs[c.ID]

	switch p := c.Payload.(type) {
	case command.CreateReverb:
		old := r.reverb
		r.reverb = p.Reverb
		r.enabled = true
		if r.reverb != nil {
			r.reverb.SetParams(r.params)
		}
		if c.NeedsAck {
			c.Payload = command.CreateReverb{Reverb: old}
			m.send(c)
		}
	case command.DestroyReverb:
		old := r.reverb
		r.reverb = nil
		r.enabled = false
		if c.NeedsAck {
			c.Payload = command.DestroyReverb{Old: old}
			m.send(c)
		}
	case command.SetReverbEnabled:
		r.enabled = p.Enabled
	case command.SetReverbParams:
		r.params = p.Params.Sanitize()
		if r.reverb != nil {
			r.reverb.SetParams(r.params)
		}
	}
}

func (m *Mixer) applyGlobal(c command.Command) {
	switch p := c.Payload.(type) {
	case command.SetListener:
		m.listener = p.Listener
		for i := range m.voices {
			m.voices[i].dirty = true
		}
	case command.SetResolvedBusVolumes:
		if p.Volumes == nil {
			return
		}
		old := m.volumes
		m.volumes = p.Volumes
		if c.NeedsAck {
			c.Payload = command.SetResolvedBusVolumes{Volumes: old}
			m.send(c)
		}
	}
}

// Volumes returns the resolved bus volumes in use. Only safe while Process
// is not running.
func (m *Mixer) Volumes() *bus.Volumes { return m.volumes }

// Reverb returns the reverb installed at id. Only safe while Process is not
// running.
func (m *Mixer) Reverb(id int32) (*dsp.Reverb, bool) {
	if id < 0 || int(id) >= len(m.reverbs) {
		return nil, false
	}
	r := m.reverbs[id]

	return r.reverb, r.enabled
}
