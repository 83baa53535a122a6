// SPDX-License-Identifier: EPL-2.0

package gamemix

import (
	"fmt"

	"github.com/ik5/gamemix/internal/command"
)

func (e *Engine) validReverb(id int) bool { return id >= 0 && id < len(e.reverbs) }

func (e *Engine) pushReverb(id int, ack bool, p command.Payload) {
	e.outbox.Push(command.Command{
		Target:   command.Reverb,
		ID:       int32(id),
		NeedsAck: ack,
		Payload:  p,
	})
}

// CreateReverbInstance builds reverb id from design with its delays scaled
// to roomSizeMeters, and enables it. An existing reverb at id is replaced.
// Delay lines shorter than one sample are dropped and out-of-range
// feedback is clamped.
func (e *Engine) CreateReverbInstance(id int, design ReverbDesign, roomSizeMeters float64) error {
	if !e.validReverb(id) {
		return fmt.Errorf("%w: %d", ErrInvalidReverb, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	r := &e.reverbs[id]
	r.design = design.Scaled(roomSizeMeters, e.rate)
	r.created = true
	r.enabled = true

	// A queued create keeps its place, so an older enable change must not
	// follow it.
	e.outbox.PurgeKind(command.KindSetReverbEnabled, command.Reverb, int32(id))
	// Buffers are allocated when the command is sent.
	e.pushReverb(id, true, command.CreateReverb{})
	e.log.Debug("gamemix: reverb created", "id", id,
		"combs", len(r.design.Combs), "allpasses", len(r.design.Allpasses))

	return nil
}

// DestroyReverbInstance removes reverb id. Sounds routed to it keep
// playing dry.
func (e *Engine) DestroyReverbInstance(id int) {
	if !e.validReverb(id) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	r := &e.reverbs[id]
	if !r.created {
		return
	}
	r.created = false
	r.enabled = false

	e.outbox.PurgeKind(command.KindCreateReverb, command.Reverb, int32(id))
	e.pushReverb(id, true, command.DestroyReverb{})
}

// HasReverbInstance reports whether reverb id exists.
func (e *Engine) HasReverbInstance(id int) bool {
	if !e.validReverb(id) {
		return false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.reverbs[id].created
}

// SetReverbInstanceEnabled bypasses reverb id without freeing it.
func (e *Engine) SetReverbInstanceEnabled(id int, enabled bool) {
	if !e.validReverb(id) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.reverbs[id].enabled = enabled
	e.pushReverb(id, false, command.SetReverbEnabled{Enabled: enabled})
}

// ReverbInstanceEnabled reports whether reverb id exists and is enabled.
func (e *Engine) ReverbInstanceEnabled(id int) bool {
	if !e.validReverb(id) {
		return false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	r := e.reverbs[id]

	return r.created && r.enabled
}

// SetReverbInstanceParams sets wet level, decay time and damping. Wet is
// clamped to [0, 1], decay to at least 10 ms, damping to [0, 0.99].
func (e *Engine) SetReverbInstanceParams(id int, p ReverbParams) {
	if !e.validReverb(id) {
		return
	}
	p = p.Sanitize()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.reverbs[id].params = p
	e.pushReverb(id, false, command.SetReverbParams{Params: p})
}

// ReverbInstanceParams returns the sanitized parameters of reverb id.
func (e *Engine) ReverbInstanceParams(id int) ReverbParams {
	if !e.validReverb(id) {
		return ReverbParams{}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.reverbs[id].params
}
