// SPDX-License-Identifier: EPL-2.0

package command

import (
	"testing"

	"github.com/ik5/gamemix/internal/bus"
)

func volume(id int32, gen uint32, v float64) Command {
	return Command{Target: Instance, ID: id, Generation: gen, Payload: SetVolume{Volume: v}}
}

func drainQueue(q *Queue) []Command {
	var out []Command
	for {
		c, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, c)
	}
}

func TestOutbox_CoalescesSameKey(t *testing.T) {
	t.Parallel()

	o := NewOutbox(Hooks{})
	o.Push(volume(3, 1, 0.2))
	o.Push(volume(3, 1, 0.8))

	q := NewQueue(8)
	if n := o.Flush(q); n != 1 {
		t.Fatalf("Flush() = %d, want 1", n)
	}

	got := drainQueue(q)
	if len(got) != 1 {
		t.Fatalf("queue holds %d commands, want 1", len(got))
	}
	if v := got[0].Payload.(SetVolume).Volume; v != 0.8 {
		t.Errorf("applied volume = %v, want 0.8", v)
	}
}

func TestOutbox_KeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()

	o := NewOutbox(Hooks{})
	o.Push(volume(1, 1, 0.1))
	o.Push(Command{Target: Instance, ID: 1, Generation: 1, Payload: SetPaused{Paused: true}})
	o.Push(volume(2, 1, 0.5))
	o.Push(volume(1, 1, 0.9))

	q := NewQueue(8)
	o.Flush(q)
	got := drainQueue(q)

	want := []struct {
		kind Kind
		id   int32
	}{{KindSetVolume, 1}, {KindSetPaused, 1}, {KindSetVolume, 2}}
	if len(got) != len(want) {
		t.Fatalf("sent %d commands, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Kind() != w.kind || got[i].ID != w.id {
			t.Errorf("command %d = %v/%d, want %v/%d", i, got[i].Kind(), got[i].ID, w.kind, w.id)
		}
	}
	if got[0].Payload.(SetVolume).Volume != 0.9 {
		t.Error("overwritten command lost its new value")
	}
}

func TestOutbox_GenerationsDoNotCoalesce(t *testing.T) {
	t.Parallel()

	o := NewOutbox(Hooks{})
	o.Push(Command{Target: Instance, ID: 4, Generation: 1, Payload: Stop{}})
	o.Push(Command{Target: Instance, ID: 4, Generation: 2, Payload: Stop{}})

	if o.Len() != 2 {
		t.Errorf("Len() = %d, want 2", o.Len())
	}
}

func TestOutbox_Purge(t *testing.T) {
	t.Parallel()

	o := NewOutbox(Hooks{})
	o.Push(Command{Target: Instance, ID: 1, Generation: 1, Payload: Play{}})
	o.Push(volume(2, 1, 0.5))
	o.Push(volume(1, 1, 0.5))
	o.Push(volume(1, 2, 0.5))

	dropped := o.Purge(Instance, 1, 1)
	if len(dropped) != 2 || dropped[0].Kind() != KindPlay {
		t.Fatalf("Purge() dropped %v, want Play and SetVolume", dropped)
	}
	if o.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", o.Len())
	}
	if _, ok := o.Pending(volume(2, 1, 0).Key()); !ok {
		t.Error("unrelated command purged")
	}
	if _, ok := o.Pending(volume(1, 2, 0).Key()); !ok {
		t.Error("command for the next generation purged")
	}
	if o.Purge(Instance, 9, 1) != nil {
		t.Error("Purge of unknown id dropped something")
	}

	// The index map stays consistent after removal.
	o.Push(volume(2, 1, 0.7))
	if o.Len() != 2 {
		t.Errorf("Len() after coalescing = %d, want 2", o.Len())
	}
}

func TestOutbox_PurgeKind(t *testing.T) {
	t.Parallel()

	o := NewOutbox(Hooks{})
	o.Push(Command{Target: Reverb, ID: 0, Payload: DestroyReverb{}})
	o.Push(Command{Target: Reverb, ID: 0, Payload: SetReverbEnabled{Enabled: true}})

	if !o.PurgeKind(KindDestroyReverb, Reverb, 0) {
		t.Fatal("PurgeKind() = false")
	}
	if o.PurgeKind(KindDestroyReverb, Reverb, 0) {
		t.Error("second PurgeKind() = true")
	}
	if o.Len() != 1 {
		t.Errorf("Len() = %d, want 1", o.Len())
	}
}

func TestOutbox_FullQueueDefers(t *testing.T) {
	t.Parallel()

	o := NewOutbox(Hooks{})
	for i := range 5 {
		o.Push(volume(int32(i), 1, 1))
	}

	q := NewQueue(2)
	if n := o.Flush(q); n != 2 {
		t.Fatalf("first Flush() = %d, want 2", n)
	}
	if o.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 still pending", o.Len())
	}

	var ids []int32
	for o.Len() > 0 {
		for _, c := range drainQueue(q) {
			ids = append(ids, c.ID)
		}
		o.Flush(q)
	}
	for _, c := range drainQueue(q) {
		ids = append(ids, c.ID)
	}

	for i, id := range ids {
		if id != int32(i) {
			t.Fatalf("delivery order = %v, want 0..4", ids)
		}
	}
}

func TestOutbox_AllowHoldsSameTarget(t *testing.T) {
	t.Parallel()

	waiting := true
	o := NewOutbox(Hooks{
		Allow: func(c *Command) bool {
			return c.Kind() != KindSetResolvedBusVolumes || !waiting
		},
	})
	o.Push(Command{Target: None, ID: BusesID, Payload: SetResolvedBusVolumes{}})
	o.Push(Command{Target: None, ID: BusesID, NeedsAck: true, Payload: SetListener{}})
	o.Push(volume(0, 1, 0.5))

	q := NewQueue(8)
	if n := o.Flush(q); n != 1 {
		t.Fatalf("Flush() = %d, want 1", n)
	}
	if got := drainQueue(q); got[0].Kind() != KindSetVolume {
		t.Errorf("sent %v, want SetVolume", got[0].Kind())
	}

	waiting = false
	if n := o.Flush(q); n != 2 {
		t.Fatalf("Flush() after release = %d, want 2", n)
	}
	got := drainQueue(q)
	if got[0].Kind() != KindSetResolvedBusVolumes || got[1].Kind() != KindSetListener {
		t.Errorf("held commands reordered: %v, %v", got[0].Kind(), got[1].Kind())
	}
}

func TestOutbox_Hooks(t *testing.T) {
	t.Parallel()

	filled := new(bus.Volumes)
	var after []Kind
	o := NewOutbox(Hooks{
		BeforeSend: func(c *Command) {
			if _, ok := c.Payload.(SetResolvedBusVolumes); ok {
				c.Payload = SetResolvedBusVolumes{Volumes: filled}
				c.NeedsAck = true
			}
		},
		AfterSend: func(c Command) { after = append(after, c.Kind()) },
	})
	o.Push(Command{Target: None, ID: BusesID, Payload: SetResolvedBusVolumes{}})
	o.Push(volume(0, 1, 1))

	q := NewQueue(8)
	o.Flush(q)

	got := drainQueue(q)
	p := got[0].Payload.(SetResolvedBusVolumes)
	if p.Volumes != filled || !got[0].NeedsAck {
		t.Error("BeforeSend changes did not reach the queue")
	}
	if len(after) != 2 || after[0] != KindSetResolvedBusVolumes || after[1] != KindSetVolume {
		t.Errorf("AfterSend saw %v", after)
	}
}

func TestOutbox_BeforeSendSkippedWhenFull(t *testing.T) {
	t.Parallel()

	calls := 0
	o := NewOutbox(Hooks{BeforeSend: func(*Command) { calls++ }})
	o.Push(volume(0, 1, 1))
	o.Push(volume(1, 1, 1))

	q := NewQueue(1)
	o.Flush(q)

	if calls != 1 {
		t.Errorf("BeforeSend ran %d times, want 1", calls)
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	payloads := []Payload{
		Play{}, Stop{}, SetPaused{}, Seek{}, SetVolume{}, SetPitch{}, SetPan{},
		SetLooping{}, SetSpatial{}, SetPosition{}, SetVelocity{}, SetDoppler{},
		SetAttenuation{}, SetBus{}, SetLowpass{}, SetHighpass{}, SetReverbSend{},
		SetReverb{}, SetListener{}, SetResolvedBusVolumes{}, CreateReverb{},
		DestroyReverb{}, SetReverbEnabled{}, SetReverbParams{},
	}

	seen := make(map[Kind]bool)
	for _, p := range payloads {
		k := p.Kind()
		if seen[k] {
			t.Errorf("kind %v used twice", k)
		}
		seen[k] = true
		if k.String() == "Unknown" || k.String() == "" {
			t.Errorf("kind %d has no name", k)
		}
	}
	if Kind(200).String() != "Unknown" {
		t.Error("out of range kind has a name")
	}
}

func TestQueue_PushPopDoesNotAllocate(t *testing.T) {
	q := NewQueue(4)
	c := Command{Target: Instance, Payload: Stop{}}

	allocs := testing.AllocsPerRun(100, func() {
		q.Push(c)
		q.Pop()
	})
	if allocs != 0 {
		t.Errorf("queue round trip allocated %v times", allocs)
	}
}
