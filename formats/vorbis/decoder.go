// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/gamemix/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read returns the number of float32 values written, always a multiple
	// of Channels.
	Read([]float32) (int, error)
	SetPosition(pos int64) error
	Length() int64
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

// LengthInFrames returns the stream length, or -1 when the input was not
// seekable.
func (s *source) LengthInFrames() int64 {
	l := s.dec.Length()
	if l <= 0 {
		return -1
	}

	return l
}

func (s *source) SeekToFrame(frame int64) error {
	if frame < 0 {
		return audio.ErrNegativeFrame
	}
	if err := s.dec.SetPosition(frame); err != nil {
		return fmt.Errorf("seeking vorbis to frame %d: %w", frame, err)
	}

	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	// Whole frames only
	dst = dst[:len(dst)-len(dst)%s.channels]
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	return n, err
}

// Decoder decodes Ogg Vorbis audio. The input must be seekable for
// SeekToFrame and LengthInFrames to work.
type Decoder struct{}

func (Decoder) Decode(r io.ReadSeeker) (audio.Stream, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec), nil
}

func newSource(dec oggReader) *source {
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}
}
