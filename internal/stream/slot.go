// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"sync"
	"sync/atomic"

	"github.com/ik5/gamemix/audio"
	"github.com/ik5/gamemix/internal/ring"
)

// Frame is one interleaved stereo sample pair.
type Frame = [2]float32

// Slot is one streaming decode context: a live decoder owned by the service
// goroutine and a ring of engine-rate stereo frames read by the mixer.
//
// Seeks use three serials. The control side bumps requested, the producer
// stores seeked once the decoder is repositioned, and the consumer stores
// flushed after discarding every frame decoded before the seek. The
// producer writes nothing while seeked != flushed.
type Slot struct {
	index int
	ring  *ring.Ring[Frame]

	// work is held by the producer during a fill and by Acquire/Release
	// while the slot is reset.
	work    sync.Mutex
	path    string
	stream  audio.Stream
	src     audio.Source
	srcRate int
	opened  bool
	scratch []float32
	frames  []Frame

	inUse atomic.Bool

	requested  atomic.Uint64
	seekTarget atomic.Int64
	seeked     atomic.Uint64
	flushed    atomic.Uint64

	ended  atomic.Bool
	failed atomic.Bool
	loop   atomic.Bool
}

func newSlot(index, ringFrames, chunkFrames int) *Slot {
	return &Slot{
		index:   index,
		ring:    ring.New[Frame](ringFrames),
		scratch: make([]float32, chunkFrames*2),
		frames:  make([]Frame, chunkFrames),
	}
}

// Index returns the slot's position in the pool.
func (s *Slot) Index() int { return s.index }

// Path returns the file the slot streams.
func (s *Slot) Path() string {
	s.work.Lock()
	defer s.work.Unlock()

	return s.path
}

// Ring returns the frame ring. Only the mixer may read from it.
func (s *Slot) Ring() *ring.Ring[Frame] { return s.ring }

// SetLoop makes the producer rewind to frame 0 at end of stream.
func (s *Slot) SetLoop(loop bool) { s.loop.Store(loop) }

// Looping reports the loop flag.
func (s *Slot) Looping() bool { return s.loop.Load() }

// Ended reports that the decoder reached the end and nothing more will be
// written until a seek.
func (s *Slot) Ended() bool { return s.ended.Load() }

// Failed reports that the decoder could not be opened or read.
func (s *Slot) Failed() bool { return s.failed.Load() }

// RequestSeek asks the producer to reposition to frame (engine rate) and
// returns the serial the consumer waits for.
func (s *Slot) RequestSeek(frame int64) uint64 {
	s.seekTarget.Store(max(frame, 0))

	return s.requested.Add(1)
}

// Seeked returns the serial of the last seek the producer completed.
func (s *Slot) Seeked() uint64 { return s.seeked.Load() }

// Flushed returns the serial of the last seek the consumer flushed.
func (s *Slot) Flushed() uint64 { return s.flushed.Load() }

// Flush discards every buffered frame and acknowledges serial. Consumer
// only.
func (s *Slot) Flush(serial uint64) {
	s.ring.Discard(s.ring.Available())
	s.flushed.Store(serial)
}

// reset prepares a free slot for path. Caller holds work.
func (s *Slot) reset(path string, loop bool) {
	s.ring.Reset()
	s.path = path
	s.stream = nil
	s.src = nil
	s.opened = false
	s.requested.Store(0)
	s.seekTarget.Store(0)
	s.seeked.Store(0)
	s.flushed.Store(0)
	s.ended.Store(false)
	s.failed.Store(false)
	s.loop.Store(loop)
}

// closeStream closes the slot's decoder. Caller holds work.
func (s *Slot) closeStream() error {
	if s.src == nil {
		return nil
	}

	err := s.src.Close()
	s.src = nil
	s.stream = nil
	s.opened = false

	return err
}
