// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/ik5/gamemix/audio"
	"github.com/ik5/gamemix/formats/internal/pcm"
)

// openAIFF rewinds r and returns a decoder whose header has been read.
func openAIFF(r io.ReadSeeker) (*aiff.Decoder, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	return dec, nil
}

// Decoder decodes integer PCM AIFF files (16, 24 and 32 bit).
type Decoder struct{}

func (Decoder) Decode(r io.ReadSeeker) (audio.Stream, error) {
	first, err := openAIFF(r)
	if err != nil {
		return nil, err
	}

	format := first.Format()
	if format == nil || format.NumChannels < 1 {
		return nil, ErrUnsupportedAiffLayout
	}

	open := func() (pcm.Reader, error) {
		if first != nil {
			dec := first
			first = nil
			return dec, nil
		}
		dec, err := openAIFF(r)
		if err != nil {
			return nil, err
		}
		return dec, nil
	}

	src, err := pcm.New(open, pcm.Info{
		SampleRate: format.SampleRate,
		Channels:   format.NumChannels,
		BitDepth:   int(first.BitDepth),
		Frames:     int64(first.NumSampleFrames),
	})
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return src, nil
}
