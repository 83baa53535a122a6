// SPDX-License-Identifier: EPL-2.0

// Package bus holds the mixing-bus hierarchy and resolves per-bus volumes.
package bus

// MaxBuses is the largest number of buses a Graph can hold.
const MaxBuses = 32

// None is the parent of a root bus.
const None int32 = -1

// Volumes holds one resolved volume per bus id.
type Volumes [MaxBuses]float32

// Graph is an acyclic forest of buses. Bus 0 exists in every graph and
// every bus starts as a root with volume 1.
//
// Graph is not safe for concurrent use.
type Graph struct {
	n      int32
	parent [MaxBuses]int32
	volume [MaxBuses]float32
}

// NewGraph creates a graph of n buses, clamped to [1, MaxBuses].
func NewGraph(n int) *Graph {
	g := &Graph{n: int32(min(max(n, 1), MaxBuses))}
	for i := range g.parent {
		g.parent[i] = None
		g.volume[i] = 1
	}

	return g
}

// Len returns the number of buses.
func (g *Graph) Len() int { return int(g.n) }

func (g *Graph) valid(id int32) bool { return id >= 0 && id < g.n }

// Volume returns the bus's own volume, or 0 for an unknown id.
func (g *Graph) Volume(id int32) float32 {
	if !g.valid(id) {
		return 0
	}

	return g.volume[id]
}

// SetVolume sets the bus's own volume; negative values clamp to 0. It
// reports whether anything changed.
func (g *Graph) SetVolume(id int32, v float32) bool {
	if !g.valid(id) {
		return false
	}

	v = max(v, 0)
	if g.volume[id] == v {
		return false
	}
	g.volume[id] = v

	return true
}

// Parent returns the parent of id, or None.
func (g *Graph) Parent(id int32) int32 {
	if !g.valid(id) {
		return None
	}

	return g.parent[id]
}

// SetParent attaches id under parent, or detaches it when parent is None.
// An assignment that would create a cycle is rejected and the previous
// parent kept. It reports whether anything changed.
func (g *Graph) SetParent(id, parent int32) bool {
	if !g.valid(id) {
		return false
	}
	if parent != None {
		if !g.valid(parent) || g.reaches(parent, id) {
			return false
		}
	}
	if g.parent[id] == parent {
		return false
	}
	g.parent[id] = parent

	return true
}

// reaches reports whether target is from or one of its ancestors.
func (g *Graph) reaches(from, target int32) bool {
	for steps := int32(0); from != None && steps <= g.n; steps++ {
		if from == target {
			return true
		}
		from = g.parent[from]
	}

	return false
}

// Resolve writes the product of volumes along each bus's ancestor chain
// into dst. Ids past Len resolve to 0.
func (g *Graph) Resolve(dst *Volumes) {
	for i := range dst {
		if int32(i) >= g.n {
			dst[i] = 0
			continue
		}

		v := float32(1)
		for b := int32(i); b != None; b = g.parent[b] {
			v *= g.volume[b]
		}
		dst[i] = v
	}
}

// Unity returns a Volumes with every bus at 1.
func Unity() *Volumes {
	v := new(Volumes)
	for i := range v {
		v[i] = 1
	}

	return v
}
