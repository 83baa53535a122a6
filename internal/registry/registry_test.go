// SPDX-License-Identifier: EPL-2.0

package registry

import "testing"

func TestRegistry_ReserveRelease(t *testing.T) {
	t.Parallel()

	r := New(2)

	i0, g0, ok := r.Reserve()
	if !ok || i0 != 0 || g0 != 1 {
		t.Fatalf("Reserve() = %d, %d, %v; want 0, 1, true", i0, g0, ok)
	}
	i1, _, ok := r.Reserve()
	if !ok || i1 != 1 {
		t.Fatalf("Reserve() = %d, %v; want 1, true", i1, ok)
	}
	if _, _, ok := r.Reserve(); ok {
		t.Fatal("Reserve() on full registry = true")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}

	r.Release(i0)
	if r.Valid(i0, g0) {
		t.Error("released pair is still valid")
	}

	i2, g2, ok := r.Reserve()
	if !ok || i2 != i0 || g2 != g0+1 {
		t.Errorf("Reserve() after Release = %d, %d, %v; want %d, %d, true", i2, g2, ok, i0, g0+1)
	}
}

func TestRegistry_Valid(t *testing.T) {
	t.Parallel()

	r := New(4)
	idx, gen, _ := r.Reserve()

	tests := []struct {
		name  string
		index int32
		gen   uint32
		want  bool
	}{
		{"live", idx, gen, true},
		{"wrong generation", idx, gen + 1, false},
		{"zero generation", idx, 0, false},
		{"inactive slot", 3, 1, false},
		{"negative index", -1, 1, false},
		{"out of range", 4, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Valid(tt.index, tt.gen); got != tt.want {
				t.Errorf("Valid(%d, %d) = %v, want %v", tt.index, tt.gen, got, tt.want)
			}
		})
	}
}

func TestRegistry_ReleaseIgnoresInactive(t *testing.T) {
	t.Parallel()

	r := New(2)
	r.Release(0)
	r.Release(-1)
	r.Release(7)

	if r.Len() != 0 || r.Generation(0) != 1 {
		t.Errorf("Len() = %d, Generation(0) = %d; want 0, 1", r.Len(), r.Generation(0))
	}

	idx, _, _ := r.Reserve()
	r.Release(idx)
	r.Release(idx)
	if got := r.Generation(idx); got != 2 {
		t.Errorf("double Release bumped generation to %d, want 2", got)
	}
}

func TestRegistry_GenerationSkipsZero(t *testing.T) {
	t.Parallel()

	r := New(1)
	r.generation[0] = ^uint32(0)

	idx, gen, _ := r.Reserve()
	r.Release(idx)

	if got := r.Generation(idx); got != 1 {
		t.Errorf("wrapped generation = %d, want 1", got)
	}
	if r.Valid(idx, gen) {
		t.Error("pre-wrap pair still valid")
	}
}

func TestRegistry_FreeAndActiveCoverTable(t *testing.T) {
	t.Parallel()

	const n = 16
	r := New(n)

	var held []int32
	for step := range 200 {
		if step%3 != 2 {
			if idx, _, ok := r.Reserve(); ok {
				held = append(held, idx)
			}
		} else if len(held) > 0 {
			r.Release(held[0])
			held = held[1:]
		}

		seen := make(map[int32]bool, n)
		for _, f := range r.free {
			if r.active[f] {
				t.Fatalf("step %d: index %d is both free and active", step, f)
			}
			seen[f] = true
		}
		for i, a := range r.active {
			if a {
				seen[int32(i)] = true
			}
		}
		if len(seen) != n {
			t.Fatalf("step %d: free+active cover %d slots, want %d", step, len(seen), n)
		}
	}
}
