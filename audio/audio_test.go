// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/gamemix/internal/audiotest"
)

// mockDecoder is a test decoder implementation
type mockDecoder struct {
	name string
	got  []byte
}

func (d *mockDecoder) Decode(r io.ReadSeeker) (Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d.got = data

	return audiotest.NewSilentSource(44100, 2, 100), nil
}

// failingDecoder always returns an error
type failingDecoder struct{}

func (d *failingDecoder) Decode(r io.ReadSeeker) (Stream, error) {
	return nil, errors.New("decode failed")
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "wav"}
	registry.Register("wav", decoder)

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed to retrieve registered decoder")
	}
	if got != decoder {
		t.Error("Registry.Get() returned different decoder instance")
	}
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "ogg"}
	registry.Register("OGG", decoder)

	for _, key := range []string{"ogg", "Ogg", "OGG"} {
		got, ok := registry.Get(key)
		if !ok || got != decoder {
			t.Errorf("Registry.Get(%q) = %v, %v; want registered decoder", key, got, ok)
		}
	}
}

func TestRegistry_GetNonExistent(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	if _, ok := registry.Get("flac"); ok {
		t.Error("Registry.Get() returned ok=true for non-existent format")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "test"}

	done := make(chan bool)
	for range 10 {
		go func() {
			registry.Register("format", decoder)
			done <- true
		}()
	}
	for range 10 {
		go func() {
			_, _ = registry.Get("format")
			done <- true
		}()
	}
	for range 20 {
		<-done
	}

	got, ok := registry.Get("format")
	if !ok || got != decoder {
		t.Error("Registry returned wrong decoder after concurrent operations")
	}
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	return path
}

func TestFileOpener_PicksDecoderByExtension(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "wav"}
	registry.Register("wav", decoder)

	path := writeTemp(t, "door.WAV", []byte("payload"))

	s, err := FileOpener{Registry: registry}.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if string(decoder.got) != "payload" {
		t.Errorf("decoder read %q, want %q", decoder.got, "payload")
	}
	if s.LengthInFrames() != 100 {
		t.Errorf("LengthInFrames() = %d, want 100", s.LengthInFrames())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestFileOpener_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, err := FileOpener{Registry: NewRegistry()}.Open("music/theme.flac")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Open() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFileOpener_MissingFile(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("wav", &mockDecoder{})

	_, err := FileOpener{Registry: registry}.Open(filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open() error = %v, want os.ErrNotExist", err)
	}
}

func TestFileOpener_DecodeFailure(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("mp3", &failingDecoder{})
	path := writeTemp(t, "broken.mp3", []byte("garbage"))

	if _, err := (FileOpener{Registry: registry}).Open(path); err == nil {
		t.Error("Open() error = nil, want decode failure")
	}
}

func TestOpenerFunc(t *testing.T) {
	t.Parallel()

	want := audiotest.NewSilentSource(8000, 1, 10)
	var o Opener = OpenerFunc(func(path string) (Stream, error) {
		return want, nil
	})

	got, err := o.Open("anything")
	if err != nil || got != want {
		t.Errorf("OpenerFunc.Open() = %v, %v", got, err)
	}
}

// BenchmarkRegistry_Get benchmarks retrieving decoders
func BenchmarkRegistry_Get(b *testing.B) {
	registry := NewRegistry()
	registry.Register("wav", &mockDecoder{})

	b.ResetTimer()
	for range b.N {
		_, _ = registry.Get("wav")
	}
}
