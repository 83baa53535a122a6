// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ik5/gamemix/audio"
	"github.com/ik5/gamemix/internal/audiotest"
)

const rate = 48000

func openerOf(o *audiotest.Opener) audio.Opener {
	return audio.OpenerFunc(func(path string) (audio.Stream, error) {
		s, err := o.OpenMock(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

func newService(t *testing.T, o *audiotest.Opener, slots, ringFrames, chunk int) *Service {
	t.Helper()

	s := New(Config{
		Opener:      openerOf(o),
		SampleRate:  rate,
		Slots:       slots,
		RingFrames:  ringFrames,
		ChunkFrames: chunk,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(func() { s.Close() })

	return s
}

func ramp(frames int) audiotest.Factory {
	return func() (*audiotest.MockSource, error) {
		return audiotest.NewRampSource(rate, 2, frames, 1), nil
	}
}

func drain(s *Slot) []Frame {
	out := make([]Frame, s.ring.Available())
	s.ring.Read(out)
	return out
}

func TestService_AcquireRelease(t *testing.T) {
	t.Parallel()

	s := newService(t, audiotest.NewOpener(), 2, 64, 64)

	a, ok := s.Acquire("a", false)
	if !ok {
		t.Fatal("Acquire() failed on empty pool")
	}
	b, ok := s.Acquire("b", false)
	if !ok || a == b {
		t.Fatal("second Acquire() failed or returned the same slot")
	}
	if _, ok := s.Acquire("c", false); ok {
		t.Fatal("Acquire() succeeded on exhausted pool")
	}

	s.Release(a)
	s.Release(a)
	s.Release(nil)
	if s.Free() != 1 {
		t.Errorf("Free() = %d, want 1", s.Free())
	}
	if c, ok := s.Acquire("c", false); !ok || c != a || c.Path() != "c" {
		t.Error("Acquire() did not recycle the released slot")
	}
}

func TestService_TickFillsRing(t *testing.T) {
	t.Parallel()

	o := audiotest.NewOpener()
	o.Add("music", ramp(10000))
	s := newService(t, o, 1, 256, 100)

	slot, _ := s.Acquire("music", false)
	s.Tick()
	s.Tick()

	got := drain(slot)
	if len(got) != 200 {
		t.Fatalf("ring holds %d frames after two ticks, want 200", len(got))
	}
	for i, f := range got {
		if f[0] != float32(i) || f[1] != float32(i) {
			t.Fatalf("frame %d = %v, want %d", i, f, i)
		}
	}
	if slot.Ended() || slot.Failed() {
		t.Errorf("Ended() = %v, Failed() = %v; want false", slot.Ended(), slot.Failed())
	}
}

func TestService_FullRingIsSkipped(t *testing.T) {
	t.Parallel()

	o := audiotest.NewOpener()
	o.Add("music", ramp(10000))
	s := newService(t, o, 1, 64, 64)

	slot, _ := s.Acquire("music", false)
	for range 5 {
		s.Tick()
	}

	if got := slot.ring.Available(); got != 64 {
		t.Errorf("Available() = %d, want 64", got)
	}
}

func TestService_EndOfStream(t *testing.T) {
	t.Parallel()

	o := audiotest.NewOpener()
	o.Add("click", ramp(100))
	s := newService(t, o, 1, 256, 256)

	slot, _ := s.Acquire("click", false)
	s.Tick()

	if got := slot.ring.Available(); got != 100 {
		t.Errorf("Available() = %d, want 100", got)
	}
	if !slot.Ended() {
		t.Error("Ended() = false at end of stream")
	}

	s.Tick()
	if got := slot.ring.Available(); got != 100 {
		t.Errorf("ended slot kept writing: %d frames", got)
	}
}

func TestService_Loop(t *testing.T) {
	t.Parallel()

	o := audiotest.NewOpener()
	o.Add("loop", ramp(100))
	s := newService(t, o, 1, 256, 256)

	slot, _ := s.Acquire("loop", true)
	s.Tick()

	got := drain(slot)
	if len(got) != 256 {
		t.Fatalf("ring holds %d frames, want 256", len(got))
	}
	if got[100][0] != 0 || got[199][0] != 99 || got[200][0] != 0 {
		t.Errorf("loop did not wrap: %v %v %v", got[100], got[199], got[200])
	}
	if slot.Ended() {
		t.Error("looping slot ended")
	}
}

func TestService_LoopAfterEnd(t *testing.T) {
	t.Parallel()

	o := audiotest.NewOpener()
	o.Add("click", ramp(10))
	s := newService(t, o, 1, 64, 64)

	slot, _ := s.Acquire("click", false)
	s.Tick()
	drain(slot)

	slot.SetLoop(true)
	s.Tick()

	if slot.Ended() {
		t.Fatal("slot still ended after enabling loop")
	}
	if got := drain(slot); len(got) == 0 || got[0][0] != 0 {
		t.Errorf("rewound data = %v, want to start at frame 0", got)
	}
}

func TestService_SeekProtocol(t *testing.T) {
	t.Parallel()

	o := audiotest.NewOpener()
	o.Add("music", ramp(10000))
	s := newService(t, o, 1, 256, 64)

	slot, _ := s.Acquire("music", false)
	s.Tick()

	serial := slot.RequestSeek(5000)
	s.Tick()

	if slot.Seeked() != serial {
		t.Fatalf("Seeked() = %d, want %d", slot.Seeked(), serial)
	}
	if got := slot.ring.Available(); got != 64 {
		t.Errorf("producer wrote before the flush: %d frames", got)
	}

	slot.Flush(serial)
	if slot.ring.Available() != 0 || slot.Flushed() != serial {
		t.Fatal("Flush did not empty the ring")
	}

	s.Tick()
	got := drain(slot)
	if len(got) != 64 || got[0][0] != 5000 {
		t.Errorf("first frame after seek = %v (of %d), want 5000", got[0], len(got))
	}
}

func TestService_SeekClearsEnded(t *testing.T) {
	t.Parallel()

	o := audiotest.NewOpener()
	o.Add("click", ramp(50))
	s := newService(t, o, 1, 64, 64)

	slot, _ := s.Acquire("click", false)
	s.Tick()
	if !slot.Ended() {
		t.Fatal("Ended() = false")
	}

	serial := slot.RequestSeek(10)
	s.Tick()
	slot.Flush(serial)
	s.Tick()

	got := drain(slot)
	if len(got) != 40 || got[0][0] != 10 {
		t.Errorf("after seek got %d frames starting at %v, want 40 from 10", len(got), got)
	}
}

func TestService_OpenFailure(t *testing.T) {
	t.Parallel()

	o := audiotest.NewOpener()
	o.AddFailing("broken", errors.New("bad header"))
	s := newService(t, o, 1, 64, 64)

	slot, _ := s.Acquire("broken", false)
	s.Tick()

	if !slot.Failed() {
		t.Error("Failed() = false after open error")
	}
	if slot.ring.Available() != 0 {
		t.Error("failed slot wrote frames")
	}
}

func TestService_ReadFailure(t *testing.T) {
	t.Parallel()

	o := audiotest.NewOpener()
	o.Add("music", func() (*audiotest.MockSource, error) {
		m := audiotest.NewRampSource(rate, 2, 1000, 1)
		m.FailReadsWith(errors.New("corrupt frame"))
		return m, nil
	})
	s := newService(t, o, 1, 64, 64)

	slot, _ := s.Acquire("music", false)
	s.Tick()

	if !slot.Failed() {
		t.Error("Failed() = false after read error")
	}
}

func TestService_ResamplesToEngineRate(t *testing.T) {
	t.Parallel()

	o := audiotest.NewOpener()
	o.Add("voice", func() (*audiotest.MockSource, error) {
		return audiotest.NewConstantSource(rate/2, 1, 1000, 0.5), nil
	})
	s := newService(t, o, 1, 4096, 4096)

	slot, _ := s.Acquire("voice", false)
	s.Tick()

	got := drain(slot)
	if len(got) < 1900 || len(got) > 2100 {
		t.Fatalf("got %d frames, want about 2000", len(got))
	}
	mid := got[len(got)/2]
	if mid[0] != mid[1] || mid[0] < 0.49 || mid[0] > 0.51 {
		t.Errorf("mid frame = %v, want mono 0.5 on both channels", mid)
	}
}

func TestService_ReleaseClosesDecoder(t *testing.T) {
	t.Parallel()

	o := audiotest.NewOpener()
	o.Add("music", ramp(1000))
	s := newService(t, o, 1, 64, 64)

	slot, _ := s.Acquire("music", false)
	s.Tick()
	s.Release(slot)

	streams := o.Streams()
	if len(streams) != 1 || !streams[0].Closed() {
		t.Error("Release did not close the decoder")
	}
}

func TestService_StartClose(t *testing.T) {
	t.Parallel()

	o := audiotest.NewOpener()
	o.Add("music", ramp(100000))
	s := New(Config{
		Opener:     openerOf(o),
		SampleRate: rate,
		Slots:      1,
		Tick:       time.Millisecond,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	slot, _ := s.Acquire("music", false)
	s.Start()
	s.Start()

	deadline := time.Now().Add(2 * time.Second)
	for slot.ring.Available() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("fill loop never wrote")
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if !o.Streams()[0].Closed() {
		t.Error("Close did not close the decoder")
	}
}
