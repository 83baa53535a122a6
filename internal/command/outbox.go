// SPDX-License-Identifier: EPL-2.0

package command

// Ids of the engine-wide commands sent with Target None.
const (
	ListenerID int32 = iota
	BusesID
)

// Hooks customize Flush. Any of them may be nil.
type Hooks struct {
	// Allow reports whether c may be sent now. A held command also holds
	// every later command for the same target and id.
	Allow func(c *Command) bool
	// BeforeSend runs right before c is pushed. It may allocate and fill
	// the payload.
	BeforeSend func(c *Command)
	// AfterSend runs once c is in the queue.
	AfterSend func(c Command)
}

type heldKey struct {
	target Target
	id     int32
}

// Outbox collects commands on the control side and coalesces those with
// equal keys: a later command overwrites the pending one in place, so the
// first-seen order of distinct keys is kept.
//
// Outbox is not safe for concurrent use.
type Outbox struct {
	hooks   Hooks
	order   []Command
	pending map[Key]int
	held    map[heldKey]bool
}

// NewOutbox creates an empty outbox.
func NewOutbox(h Hooks) *Outbox {
	return &Outbox{
		hooks:   h,
		pending: make(map[Key]int),
		held:    make(map[heldKey]bool),
	}
}

// Len returns the number of pending commands.
func (o *Outbox) Len() int { return len(o.order) }

// Push adds c, replacing a pending command with the same key.
func (o *Outbox) Push(c Command) {
	k := c.Key()
	if i, ok := o.pending[k]; ok {
		o.order[i] = c
		return
	}

	o.pending[k] = len(o.order)
	o.order = append(o.order, c)
}

// Pending returns the pending command with key k.
func (o *Outbox) Pending(k Key) (Command, bool) {
	i, ok := o.pending[k]
	if !ok {
		return Command{}, false
	}

	return o.order[i], true
}

// Purge drops every pending command for target, id and generation and
// returns them. Commands for other generations of a recycled id stay.
func (o *Outbox) Purge(target Target, id int32, generation uint32) []Command {
	return o.remove(func(c Command) bool {
		return c.Target == target && c.ID == id && c.Generation == generation
	})
}

// PurgeKind drops pending commands of kind for target and id and reports
// whether any were dropped.
func (o *Outbox) PurgeKind(kind Kind, target Target, id int32) bool {
	return len(o.remove(func(c Command) bool {
		return c.Kind() == kind && c.Target == target && c.ID == id
	})) > 0
}

func (o *Outbox) remove(match func(Command) bool) []Command {
	var dropped []Command

	kept := o.order[:0]
	for _, c := range o.order {
		if match(c) {
			dropped = append(dropped, c)
			continue
		}
		kept = append(kept, c)
	}
	if len(dropped) == 0 {
		return nil
	}

	clear(o.order[len(kept):])
	o.order = kept
	o.reindex()

	return dropped
}

func (o *Outbox) reindex() {
	clear(o.pending)
	for i, c := range o.order {
		o.pending[c.Key()] = i
	}
}

// Flush pushes pending commands into q in order and returns how many were
// sent. Held commands and everything after a full queue stay pending for
// the next Flush.
func (o *Outbox) Flush(q *Queue) int {
	if len(o.order) == 0 {
		return 0
	}
	clear(o.held)

	sent := 0
	full := false
	kept := o.order[:0]
	for _, c := range o.order {
		hk := heldKey{c.Target, c.ID}
		if full || o.held[hk] || (o.hooks.Allow != nil && !o.hooks.Allow(&c)) {
			o.held[hk] = true
			kept = append(kept, c)
			continue
		}
		if q.Free() == 0 {
			full = true
			kept = append(kept, c)
			continue
		}

		if o.hooks.BeforeSend != nil {
			o.hooks.BeforeSend(&c)
		}
		q.Push(c)
		if o.hooks.AfterSend != nil {
			o.hooks.AfterSend(c)
		}
		sent++
	}

	clear(o.order[len(kept):])
	o.order = kept
	o.reindex()

	return sent
}
