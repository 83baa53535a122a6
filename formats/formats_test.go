// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/gamemix/audio"
	"github.com/ik5/gamemix/formats/wav"
)

func TestNewRegistry_Extensions(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, ext := range Extensions {
		if _, ok := r.Get(ext); !ok {
			t.Errorf("Get(%q) not registered", ext)
		}
		if _, ok := r.Get("." + ext); ok {
			t.Errorf("Get(%q) registered with a leading dot", "."+ext)
		}
	}
	if _, ok := r.Get("flac"); ok {
		t.Error("Get(\"flac\") unexpectedly registered")
	}
}

func TestNewOpener_WAV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := wav.WriteWAV16(&buf, 22050, 1, make([]int16, 2205)); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "Click.WAV")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := NewOpener().Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if s.SampleRate() != 22050 || s.LengthInFrames() != 2205 {
		t.Errorf("stream = %d Hz, %d frames; want 22050 Hz, 2205 frames", s.SampleRate(), s.LengthInFrames())
	}
}

func TestNewOpener_Unsupported(t *testing.T) {
	t.Parallel()

	if _, err := NewOpener().Open("music/theme.flac"); !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("Open() error = %v, want ErrUnsupportedFormat", err)
	}
}
