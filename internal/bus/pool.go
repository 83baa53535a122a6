// SPDX-License-Identifier: EPL-2.0

package bus

// Pool recycles Volumes arrays handed to the mixer and returned through
// acknowledgments. Not safe for concurrent use.
type Pool struct {
	free []*Volumes
}

// NewPool preallocates n arrays.
func NewPool(n int) *Pool {
	p := &Pool{free: make([]*Volumes, 0, n)}
	for range n {
		p.free = append(p.free, new(Volumes))
	}

	return p
}

// Get returns a recycled array, or a new one when the pool is empty.
func (p *Pool) Get() *Volumes {
	if len(p.free) == 0 {
		return new(Volumes)
	}

	v := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	return v
}

// Put returns v to the pool. nil is ignored.
func (p *Pool) Put(v *Volumes) {
	if v != nil {
		p.free = append(p.free, v)
	}
}

// Len returns the number of pooled arrays.
func (p *Pool) Len() int { return len(p.free) }
