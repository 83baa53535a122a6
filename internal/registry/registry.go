// SPDX-License-Identifier: EPL-2.0

// Package registry implements a fixed-capacity slot table addressed by
// (index, generation) pairs.
package registry

// Registry hands out slot indices from a free stack. Every slot carries a
// generation that starts at 1 and is bumped on release, so a pair issued
// before the release no longer validates afterwards.
//
// Registry is not safe for concurrent use.
type Registry struct {
	generation []uint32
	active     []bool
	free       []int32
}

// New creates a registry with n slots.
func New(n int) *Registry {
	r := &Registry{
		generation: make([]uint32, n),
		active:     make([]bool, n),
		free:       make([]int32, n),
	}

	// Lowest index on top of the stack.
	for i := range n {
		r.generation[i] = 1
		r.free[i] = int32(n - 1 - i)
	}

	return r
}

// Cap returns the number of slots.
func (r *Registry) Cap() int { return len(r.active) }

// Len returns the number of active slots.
func (r *Registry) Len() int { return len(r.active) - len(r.free) }

// Reserve pops a free slot. ok is false when every slot is active.
func (r *Registry) Reserve() (index int32, generation uint32, ok bool) {
	if len(r.free) == 0 {
		return -1, 0, false
	}

	index = r.free[len(r.free)-1]
	r.free = r.free[:len(r.free)-1]
	r.active[index] = true

	return index, r.generation[index], true
}

// Release invalidates every pair issued for index and returns the slot to
// the free stack. Releasing an inactive or out-of-range slot does nothing.
func (r *Registry) Release(index int32) {
	if index < 0 || int(index) >= len(r.active) || !r.active[index] {
		return
	}

	r.active[index] = false
	r.generation[index]++
	if r.generation[index] == 0 {
		// Zero marks the zero-value handle.
		r.generation[index] = 1
	}
	r.free = append(r.free, index)
}

// Valid reports whether (index, generation) names a live slot.
func (r *Registry) Valid(index int32, generation uint32) bool {
	if index < 0 || int(index) >= len(r.active) {
		return false
	}

	return r.active[index] && r.generation[index] == generation
}

// Generation returns the current generation of index, or 0 when out of range.
func (r *Registry) Generation(index int32) uint32 {
	if index < 0 || int(index) >= len(r.generation) {
		return 0
	}

	return r.generation[index]
}
