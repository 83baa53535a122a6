// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides generated audio streams for tests.
package audiotest

import (
	"errors"
	"io"
	"math"
	"sync"
)

// MockSource generates audio data for testing.
// It implements the audio.Stream interface (without importing it to avoid cycles).
type MockSource struct {
	mu           sync.Mutex
	sampleRate   int
	channels     int
	totalSamples int // Total samples to generate (per channel)
	generated    int // Samples generated so far (per channel)
	waveform     func(sample int, channel int) float32
	closed       bool
	seeks        []int64
	readErr      error
}

// NewMockSource creates a new mock audio source.
// totalSamples is the total number of samples per channel to generate.
// waveform is a function that generates sample values given sample index and channel.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		return 0.0
	})
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		return value
	})
}

// NewRampSource creates a mock source whose value is the frame index scaled
// by step. Useful for checking positions after seeks.
func NewRampSource(sampleRate, channels, totalSamples int, step float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		return float32(sample) * step
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockSource) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}

// Reset resets the generated sample counter to allow re-reading
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generated = 0
}

// FailReadsWith makes every following ReadSamples return err.
func (m *MockSource) FailReadsWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.readErr = err
}

// SeekToFrame moves the generator to frame.
func (m *MockSource) SeekToFrame(frame int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame < 0 {
		return errors.New("negative frame")
	}
	m.generated = int(min(frame, int64(m.totalSamples)))
	m.seeks = append(m.seeks, frame)

	return nil
}

// Seeks returns every frame passed to SeekToFrame.
func (m *MockSource) Seeks() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]int64(nil), m.seeks...)
}

func (m *MockSource) LengthInFrames() int64 { return int64(m.totalSamples) }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return 0, m.readErr
	}
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	framesToWrite := min(len(dst)/m.channels, m.totalSamples-m.generated)

	for frame := range framesToWrite {
		sampleIndex := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(sampleIndex, ch)
		}
	}

	m.generated += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.generated >= m.totalSamples {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}
