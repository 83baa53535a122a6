// SPDX-License-Identifier: EPL-2.0

package device

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func TestNullDevice_Render(t *testing.T) {
	t.Parallel()

	n := NewNull(Config{PeriodFrames: 4})

	var calls []int
	err := n.Start(func(out []float32) {
		calls = append(calls, len(out))
		for i := range out {
			out[i] = 1
		}
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	out := n.Render(10)
	if len(out) != 20 {
		t.Fatalf("len(Render(10)) = %d, want 20", len(out))
	}
	if want := []int{8, 8, 4}; !slices.Equal(calls, want) {
		t.Errorf("callback sizes = %v, want %v", calls, want)
	}
	for i, v := range out {
		if v != 1 {
			t.Fatalf("out[%d] = %v, want 1", i, v)
		}
	}
}

func TestNullDevice_Lifecycle(t *testing.T) {
	t.Parallel()

	n := NewNull(DefaultConfig())
	cb := func(out []float32) {
		for i := range out {
			out[i] = 0.5
		}
	}

	if err := n.Start(cb); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := n.Start(cb); !errors.Is(err, ErrStarted) {
		t.Errorf("second Start() error = %v, want ErrStarted", err)
	}

	if err := n.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	buf := []float32{9, 9}
	n.RenderInto(buf)
	if buf[0] != 0 || buf[1] != 0 {
		t.Errorf("stopped device rendered %v, want silence", buf)
	}

	if err := n.Start(cb); err != nil {
		t.Errorf("Start() after Stop error = %v", err)
	}
	if err := n.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := n.Start(cb); !errors.Is(err, ErrClosed) {
		t.Errorf("Start() after Close error = %v, want ErrClosed", err)
	}
}

func TestNullDevice_SampleRate(t *testing.T) {
	t.Parallel()

	if got := NewNull(Config{}).SampleRate(); got != DefaultSampleRate {
		t.Errorf("SampleRate() = %d, want %d", got, DefaultSampleRate)
	}
	if got := NewNull(Config{SampleRate: 22050}).SampleRate(); got != 22050 {
		t.Errorf("SampleRate() = %d, want 22050", got)
	}
}

func TestConfig_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Config
		rate int
		per  int
	}{
		{"zero", Config{}, DefaultSampleRate, DefaultPeriodFrames},
		{"negative", Config{SampleRate: -1, PeriodFrames: -5}, DefaultSampleRate, DefaultPeriodFrames},
		{"custom", Config{SampleRate: 44100, PeriodFrames: 256}, 44100, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.in.normalize()
			if got.SampleRate != tt.rate || got.PeriodFrames != tt.per {
				t.Errorf("normalize() = %d/%d, want %d/%d", got.SampleRate, got.PeriodFrames, tt.rate, tt.per)
			}
			if got.Logger == nil {
				t.Error("normalize() left Logger nil")
			}
		})
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	d, err := Open(Null, Config{})
	if err != nil {
		t.Fatalf("Open(Null) error = %v", err)
	}
	if _, ok := d.(*NullDevice); !ok {
		t.Errorf("Open(Null) = %T, want *NullDevice", d)
	}

	if _, err := Open("carrier-pigeon", Config{}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(unknown) error = %v, want ErrUnknownBackend", err)
	}
	if !slices.Contains(Backends(), Null) {
		t.Errorf("Backends() = %v, missing %q", Backends(), Null)
	}
}

func TestList_Null(t *testing.T) {
	t.Parallel()

	infos, err := List(Null)
	if err != nil {
		t.Fatalf("List(Null) error = %v", err)
	}
	if len(infos) != 1 || !infos[0].Default || infos[0].Channels != 2 {
		t.Errorf("List(Null) = %+v, want one default stereo output", infos)
	}
}

func ExampleNullDevice_Render() {
	d := NewNull(Config{SampleRate: 8000, PeriodFrames: 2})
	_ = d.Start(func(out []float32) {
		for i := range out {
			out[i] = 0.25
		}
	})

	fmt.Println(d.Render(3))
	// Output: [0.25 0.25 0.25 0.25 0.25 0.25]
}
