// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// ReadAll decodes src completely into interleaved stereo PCM at targetRate.
//
// The pipeline is: src -> StereoMixer -> Resampler (only when the rates
// differ). sizeHint is the expected number of output frames; pass 0 when
// unknown. The returned slice length is always a multiple of two.
func ReadAll(src Source, targetRate int, sizeHint int64) ([]float32, error) {
	var s Source = NewStereoMixer(src)
	if src.SampleRate() != targetRate {
		s = NewResampler(s, targetRate)
	}

	if sizeHint <= 0 {
		sizeHint = int64(targetRate) // one second
	}
	pcm := make([]float32, 0, sizeHint*2)
	buf := make([]float32, 4096)

	empty := 0
	for empty < maxEmptyReads {
		n, err := s.ReadSamples(buf)
		if n > 0 {
			pcm = append(pcm, buf[:n]...)
			empty = 0
		} else {
			empty++
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}

	return pcm[:len(pcm)&^1], nil
}
