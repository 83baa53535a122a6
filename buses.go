// SPDX-License-Identifier: EPL-2.0

package gamemix

import (
	"math"

	"github.com/ik5/gamemix/internal/bus"
	"github.com/ik5/gamemix/internal/command"
)

// NoBus is the parent of a root bus.
const NoBus = int(bus.None)

// SetBusVolume sets a bus's own gain. The mixer uses the product of the
// gains along the bus's parent chain.
func (e *Engine) SetBusVolume(id int, volume float64) {
	if math.IsNaN(volume) || id < 0 || id >= e.cfg.MaxBuses {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buses.SetVolume(int32(id), float32(volume)) {
		e.queueBusVolumes()
	}
}

// BusVolume returns a bus's own gain, or 0 for an unknown bus.
func (e *Engine) BusVolume(id int) float64 {
	if id < 0 || id >= e.cfg.MaxBuses {
		return 0
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	return float64(e.buses.Volume(int32(id)))
}

// SetBusParent attaches bus id under parent, or detaches it with NoBus. A
// change that would create a cycle is ignored.
func (e *Engine) SetBusParent(id, parent int) {
	if id < 0 || id >= e.cfg.MaxBuses || parent < NoBus || parent >= e.cfg.MaxBuses {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buses.Parent(int32(id)) == int32(parent) {
		return
	}
	if !e.buses.SetParent(int32(id), int32(parent)) {
		e.log.Debug("gamemix: bus parent rejected", "bus", id, "parent", parent)
		return
	}
	e.queueBusVolumes()
}

// BusParent returns id's parent, or NoBus.
func (e *Engine) BusParent(id int) int {
	if id < 0 || id >= e.cfg.MaxBuses {
		return NoBus
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	return int(e.buses.Parent(int32(id)))
}

// queueBusVolumes asks for a fresh resolved array. It is built right before
// sending. Caller holds mu.
func (e *Engine) queueBusVolumes() {
	e.outbox.Push(command.Command{
		Target:   command.None,
		ID:       command.BusesID,
		NeedsAck: true,
		Payload:  command.SetResolvedBusVolumes{},
	})
}
