// SPDX-License-Identifier: EPL-2.0

// Package ring implements a lock-free single-producer, single-consumer ring
// of whole elements.
//
// Two monotonically increasing atomic counters track the read and write
// positions over a power-of-two buffer. The producer stores the write
// position after copying elements in, the consumer stores the read position
// after copying them out, so an element is never observed half written.
//
// Thread assignment:
//   - Push, Write, Free: producer only
//   - Pop, Read, Discard, Available: consumer only
//   - Reset: only while neither side is running
package ring

import "sync/atomic"

// Ring is a bounded SPSC queue of T.
type Ring[T any] struct {
	// Separate cache lines to prevent false sharing between producer and consumer.
	writePos atomic.Uint64
	_pad1    [56]byte
	readPos  atomic.Uint64
	_pad2    [56]byte

	buf  []T
	mask uint64
}

// New creates a ring with capacity rounded up to the next power of two.
func New[T any](minSize int) *Ring[T] {
	size := 1
	for size < minSize {
		size <<= 1
	}

	return &Ring[T]{
		buf:  make([]T, size),
		mask: uint64(size - 1),
	}
}

// Cap returns the number of elements the ring can hold.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Push appends v and reports whether there was room.
func (r *Ring[T]) Push(v T) bool {
	w := r.writePos.Load()
	if w-r.readPos.Load() == uint64(len(r.buf)) {
		return false
	}

	r.buf[w&r.mask] = v
	r.writePos.Store(w + 1)

	return true
}

// Pop removes the oldest element.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T

	rd := r.readPos.Load()
	if rd == r.writePos.Load() {
		return zero, false
	}

	idx := rd & r.mask
	v := r.buf[idx]
	// Drop references held by the slot
	r.buf[idx] = zero
	r.readPos.Store(rd + 1)

	return v, true
}

// Write copies as many elements of p as fit and returns how many were
// written. It never blocks.
func (r *Ring[T]) Write(p []T) int {
	w := r.writePos.Load()
	free := uint64(len(r.buf)) - (w - r.readPos.Load())

	n := min(uint64(len(p)), free)
	if n == 0 {
		return 0
	}

	pos := w & r.mask
	first := uint64(len(r.buf)) - pos
	if first >= n {
		copy(r.buf[pos:pos+n], p[:n])
	} else {
		copy(r.buf[pos:], p[:first])
		copy(r.buf[:n-first], p[first:n])
	}

	r.writePos.Store(w + n)

	return int(n)
}

// Read copies up to len(p) elements out of the ring and returns how many
// were read. It never blocks.
func (r *Ring[T]) Read(p []T) int {
	rd := r.readPos.Load()
	available := r.writePos.Load() - rd

	n := min(uint64(len(p)), available)
	if n == 0 {
		return 0
	}

	pos := rd & r.mask
	first := uint64(len(r.buf)) - pos
	if first >= n {
		copy(p[:n], r.buf[pos:pos+n])
	} else {
		copy(p[:first], r.buf[pos:])
		copy(p[first:n], r.buf[:n-first])
	}

	r.readPos.Store(rd + n)

	return int(n)
}

// Discard drops up to n elements without copying them and returns how many
// were dropped. Slots are not cleared, so use it only for value types.
func (r *Ring[T]) Discard(n int) int {
	rd := r.readPos.Load()
	available := r.writePos.Load() - rd

	d := min(uint64(max(n, 0)), available)
	r.readPos.Store(rd + d)

	return int(d)
}

// Available returns the number of elements ready to read.
func (r *Ring[T]) Available() int {
	return int(r.writePos.Load() - r.readPos.Load())
}

// Free returns the number of elements that can be written.
func (r *Ring[T]) Free() int {
	return len(r.buf) - int(r.writePos.Load()-r.readPos.Load())
}

// Reset empties the ring. Neither producer nor consumer may be active.
func (r *Ring[T]) Reset() {
	clear(r.buf)
	r.readPos.Store(0)
	r.writePos.Store(0)
}
