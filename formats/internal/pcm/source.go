// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts go-audio integer PCM decoders (WAV, AIFF) to
// audio.Stream.
package pcm

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/gamemix/audio"
)

// ErrUnsupportedBitDepth is returned for bit depths other than 16, 24 and 32.
var ErrUnsupportedBitDepth = errors.New("unsupported PCM bit depth")

// Reader is the part of the go-audio decoders that Source needs.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// OpenFunc positions a fresh Reader at the first PCM frame.
type OpenFunc func() (Reader, error)

// Info describes the decoded layout.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	// Frames is the total frame count, or -1 when unknown.
	Frames int64
}

// Source streams integer PCM as float32. Seeking backwards reopens the
// input; seeking forwards decodes and discards.
type Source struct {
	open   OpenFunc
	dec    Reader
	info   Info
	scale  float32
	pos    int64
	intBuf *goaudio.IntBuffer
}

func scaleFor(bitDepth int) (float32, error) {
	switch bitDepth {
	case 16:
		return 1.0 / 32768.0, nil
	case 24:
		return 1.0 / 8388608.0, nil
	case 32:
		return 1.0 / 2147483648.0, nil
	}

	return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
}

// New opens the input once and returns a Source reading from its start.
func New(open OpenFunc, info Info) (*Source, error) {
	if info.Channels < 1 {
		return nil, fmt.Errorf("invalid channel count %d", info.Channels)
	}
	scale, err := scaleFor(info.BitDepth)
	if err != nil {
		return nil, err
	}

	dec, err := open()
	if err != nil {
		return nil, err
	}

	return &Source{
		open:  open,
		dec:   dec,
		info:  info,
		scale: scale,
		intBuf: &goaudio.IntBuffer{
			Data: make([]int, 4096),
			Format: &goaudio.Format{
				NumChannels: info.Channels,
				SampleRate:  info.SampleRate,
			},
			SourceBitDepth: info.BitDepth,
		},
	}, nil
}

func (s *Source) SampleRate() int       { return s.info.SampleRate }
func (s *Source) Channels() int         { return s.info.Channels }
func (s *Source) BitDepth() int         { return s.info.BitDepth }
func (s *Source) Close() error          { return nil }
func (s *Source) BufSize() int          { return cap(s.intBuf.Data) }
func (s *Source) LengthInFrames() int64 { return s.info.Frames }

// read fills up to n values of the int buffer.
func (s *Source) read(n int) (int, error) {
	if cap(s.intBuf.Data) < n {
		s.intBuf.Data = make([]int, n)
	}
	s.intBuf.Data = s.intBuf.Data[:n]

	got, err := s.dec.PCMBuffer(s.intBuf)
	got -= got % s.info.Channels
	s.pos += int64(got / s.info.Channels)

	return got, err
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	dst = dst[:len(dst)-len(dst)%s.info.Channels]
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.read(len(dst))
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	for i := range n {
		dst[i] = float32(s.intBuf.Data[i]) * s.scale
	}

	// go-audio fills the whole buffer unless the data chunk ran out
	if n < len(dst) && err == nil {
		return n, io.EOF
	}
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}

	return n, err
}

func (s *Source) SeekToFrame(frame int64) error {
	if frame < 0 {
		return audio.ErrNegativeFrame
	}
	if s.info.Frames >= 0 {
		frame = min(frame, s.info.Frames)
	}

	if frame < s.pos {
		dec, err := s.open()
		if err != nil {
			return fmt.Errorf("reopening for seek: %w", err)
		}
		s.dec = dec
		s.pos = 0
	}

	for s.pos < frame {
		want := int(min(frame-s.pos, int64(cap(s.intBuf.Data)/s.info.Channels)))
		n, err := s.read(want * s.info.Channels)
		if n == 0 {
			if err != nil && err != io.EOF {
				return fmt.Errorf("skipping to frame %d: %w", frame, err)
			}
			// Shorter than the header claimed
			return nil
		}
	}

	return nil
}
