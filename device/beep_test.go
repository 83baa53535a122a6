// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package device

import "testing"

func TestStreamer(t *testing.T) {
	t.Parallel()

	s := NewStreamer(func(out []float32) {
		for i := range out {
			out[i] = float32(i % 2)
		}
	}, 2)

	// Larger than the initial buffer.
	samples := make([][2]float64, 5)
	n, ok := s.Stream(samples)
	if n != 5 || !ok {
		t.Fatalf("Stream() = %d, %v; want 5, true", n, ok)
	}
	for i, f := range samples {
		if f != [2]float64{0, 1} {
			t.Errorf("samples[%d] = %v, want [0 1]", i, f)
		}
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v", s.Err())
	}
}
