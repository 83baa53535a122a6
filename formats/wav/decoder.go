// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/ik5/gamemix/audio"
	"github.com/ik5/gamemix/formats/internal/pcm"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag of the fmt chunk.
const wavFormatPCM = 1

// Decoder decodes integer PCM WAV files (16, 24 and 32 bit).
type Decoder struct{}

func (Decoder) Decode(r io.ReadSeeker) (audio.Stream, error) {
	hdr := wav.NewDecoder(r)
	if !hdr.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if hdr.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedWavLayout, hdr.WavAudioFormat)
	}

	channels := int(hdr.NumChans)
	bitDepth := int(hdr.BitDepth)
	sampleRate := int(hdr.SampleRate)

	openPCM := func() (*wav.Decoder, error) {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		dec := wav.NewDecoder(r)
		dec.ReadInfo()
		if err := dec.FwdToPCM(); err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		return dec, nil
	}

	first, err := openPCM()
	if err != nil {
		return nil, err
	}
	frames := int64(-1)
	if blockAlign := int64(channels * bitDepth / 8); blockAlign > 0 {
		frames = first.PCMLen() / blockAlign
	}

	open := func() (pcm.Reader, error) {
		if first != nil {
			dec := first
			first = nil
			return dec, nil
		}
		dec, err := openPCM()
		if err != nil {
			return nil, err
		}
		return dec, nil
	}

	src, err := pcm.New(open, pcm.Info{
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
		Frames:     frames,
	})
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return src, nil
}
