// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/gamemix/audio"
)

// mockOggVorbisReader simulates the oggvorbis.Reader for testing
type mockOggVorbisReader struct {
	sampleRate   int
	channels     int
	samples      []float32
	offset       int
	returnErrors bool
	maxFrames    int // limits frames per Read when > 0
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }
func (m *mockOggVorbisReader) Length() int64   { return int64(len(m.samples) / m.channels) }

func (m *mockOggVorbisReader) SetPosition(pos int64) error {
	if pos > m.Length() {
		return errors.New("position out of range")
	}
	m.offset = int(pos) * m.channels
	return nil
}

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	frames := min(len(buf)/m.channels, (len(m.samples)-m.offset)/m.channels)
	if m.maxFrames > 0 {
		frames = min(frames, m.maxFrames)
	}
	n := copy(buf, m.samples[m.offset:m.offset+frames*m.channels])
	m.offset += n

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not Ogg Vorbis data")))
	if err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader(nil)); err == nil {
		t.Error("Decode() error = nil, want error for empty input")
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggVorbisReader{sampleRate: 48000, channels: 2, samples: make([]float32, 200)})

	if src.SampleRate() != 48000 {
		t.Errorf("SampleRate() = %d, want 48000", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.LengthInFrames() != 100 {
		t.Errorf("LengthInFrames() = %d, want 100", src.LengthInFrames())
	}
}

func TestSource_UnknownLength(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggVorbisReader{sampleRate: 48000, channels: 1})
	if src.LengthInFrames() != -1 {
		t.Errorf("LengthInFrames() = %d, want -1", src.LengthInFrames())
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		samples  []float32
		dstLen   int
		want     int
	}{
		{"mono", 1, []float32{0.1, 0.2, 0.3, 0.4}, 4, 4},
		{"stereo", 2, []float32{0.1, -0.1, 0.2, -0.2}, 4, 4},
		{"stereo odd dst", 2, []float32{0.1, -0.1, 0.2, -0.2}, 3, 2},
		{"5.1", 6, make([]float32, 12), 12, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: tt.channels, samples: tt.samples})
			dst := make([]float32, tt.dstLen)
			n, err := src.ReadSamples(dst)
			if err != nil {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if n != tt.want {
				t.Fatalf("ReadSamples() n = %d, want %d", n, tt.want)
			}
			for i := range n {
				if dst[i] != tt.samples[i] {
					t.Errorf("dst[%d] = %v, want %v", i, dst[i], tt.samples[i])
				}
			}
		})
	}
}

func TestSource_ReadSamples_EOF(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: []float32{1, 1}})
	dst := make([]float32, 8)

	if n, _ := src.ReadSamples(dst); n != 2 {
		t.Fatalf("first ReadSamples() n = %d, want 2", n)
	}
	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() at end = %d, %v; want 0, io.EOF", n, err)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: 1, samples: []float32{1}, returnErrors: true})
	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSource_SmallReads(t *testing.T) {
	t.Parallel()

	samples := make([]float32, 64)
	for i := range samples {
		samples[i] = float32(i)
	}
	src := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: samples, maxFrames: 3})

	var got []float32
	dst := make([]float32, 10)
	for range 100 {
		n, err := src.ReadSamples(dst)
		got = append(got, dst[:n]...)
		if err == io.EOF {
			break
		}
	}
	if len(got) != len(samples) {
		t.Fatalf("read %d samples, want %d", len(got), len(samples))
	}
	for i := range got {
		if got[i] != samples[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], samples[i])
		}
	}
}

func TestSource_SeekToFrame(t *testing.T) {
	t.Parallel()

	samples := make([]float32, 200)
	for i := range samples {
		samples[i] = float32(i / 2)
	}
	src := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: samples})

	if err := src.SeekToFrame(25); err != nil {
		t.Fatalf("SeekToFrame() error = %v", err)
	}
	dst := make([]float32, 2)
	if _, err := src.ReadSamples(dst); err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if dst[0] != 25 || dst[1] != 25 {
		t.Errorf("frame after seek = %v, want [25 25]", dst)
	}

	if err := src.SeekToFrame(-3); !errors.Is(err, audio.ErrNegativeFrame) {
		t.Errorf("SeekToFrame(-3) error = %v, want ErrNegativeFrame", err)
	}
	if err := src.SeekToFrame(1000); err == nil {
		t.Error("SeekToFrame(1000) error = nil, want out of range")
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	reader := &mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: make([]float32, 44100*2)}
	src := newSource(reader)
	dst := make([]float32, 4096)

	b.ResetTimer()
	for range b.N {
		if _, err := src.ReadSamples(dst); err == io.EOF {
			reader.offset = 0
		}
	}
}
