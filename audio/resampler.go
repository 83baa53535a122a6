// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/gamemix/utils"
)

const maxEmptyReads = 8

// Resampler streams from src to target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// A one-pole low-pass at the target Nyquist frequency is applied when downsampling.
type Resampler struct {
	src      Source
	srcRate  float64
	dstRate  float64
	ratio    float64 // srcRate / dstRate - how many source samples per output sample
	channels int

	// Window of 4 frames for cubic interpolation
	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames   [4][]float32
	hasFrame [4]bool
	primed   bool

	// Fractional position between frames[1] and frames[2]
	pos float64

	srcBuf []float32
	eof    bool

	filterState []float32
	useFilter   bool
	filterAlpha float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	useFilter := ratio > 1.0
	var filterAlpha float32
	if useFilter {
		cutoff := float64(dstRate) / 2
		filterAlpha = float32(1 - math.Exp(-2*math.Pi*cutoff/float64(src.SampleRate())))
	}

	r := &Resampler{
		src:         src,
		srcRate:     float64(src.SampleRate()),
		dstRate:     float64(dstRate),
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, channels),
		useFilter:   useFilter,
		filterAlpha: filterAlpha,
		filterState: make([]float32, channels),
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }
func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// Reset drops the interpolation history so that the next ReadSamples starts
// fresh from the current position of the source. Call it after seeking the
// source. It does not allocate.
func (r *Resampler) Reset() {
	r.hasFrame = [4]bool{}
	r.primed = false
	r.pos = 0
	r.eof = false
	clear(r.filterState)
}

// readFrame reads one source frame into dst, applying the anti-alias filter.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	var (
		n   int
		err error
	)
	// Decoders may return (0, nil) between internal chunks
	for range maxEmptyReads {
		n, err = r.src.ReadSamples(r.srcBuf)
		if n > 0 || err != nil {
			break
		}
	}
	got := n >= r.channels
	if got {
		copy(dst, r.srcBuf)
		if r.useFilter {
			for c := range r.channels {
				dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
				r.filterState[c] = dst[c]
			}
		}
	}

	if err == io.EOF {
		r.eof = true
		return got, nil
	}
	if err != nil {
		return got, fmt.Errorf("%w", err)
	}

	return got, nil
}

// prime fills the window so that interpolation starts exactly at the first
// source frame.
func (r *Resampler) prime() error {
	r.primed = true

	got, err := r.readFrame(r.frames[1])
	if err != nil {
		return err
	}
	if !got {
		r.eof = true
		return io.EOF
	}
	if r.useFilter {
		// Seed the filter with the first frame to avoid a warm-up transient
		copy(r.filterState, r.frames[1])
	}
	copy(r.frames[0], r.frames[1])
	r.hasFrame[0], r.hasFrame[1] = true, true

	for i := 2; i < 4; i++ {
		if r.eof {
			break
		}
		got, err := r.readFrame(r.frames[i])
		if err != nil {
			return err
		}
		r.hasFrame[i] = got
	}

	return nil
}

// advance shifts the window by one frame: [0,1,2,3] -> [1,2,3,next]
func (r *Resampler) advance() error {
	first := r.frames[0]
	copy(r.frames[:], r.frames[1:])
	r.frames[3] = first
	copy(r.hasFrame[:], r.hasFrame[1:])
	r.hasFrame[3] = false

	if r.eof {
		return nil
	}

	got, err := r.readFrame(r.frames[3])
	r.hasFrame[3] = got

	return err
}

// ReadSamples produces dst samples at r.dstRate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			if err == io.EOF {
				return 0, io.EOF
			}
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		// The last source frame has been consumed
		if !r.hasFrame[1] || (!r.hasFrame[2] && r.pos > 0) {
			if written == 0 {
				return 0, io.EOF
			}
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		for c := range r.channels {
			y1 := r.frames[1][c]
			y0 := y1
			if r.hasFrame[0] {
				y0 = r.frames[0][c]
			}
			y2 := y1
			if r.hasFrame[2] {
				y2 = r.frames[2][c]
			}
			y3 := y2
			if r.hasFrame[3] {
				y3 = r.frames[3][c]
			}
			dst[written*r.channels+c] = utils.CubicInterpolate(y0, y1, y2, y3, alpha)
		}

		written++
		r.pos += r.ratio

		// Last frame emitted exactly on its position
		if !r.hasFrame[2] {
			r.hasFrame[1] = false
		}
	}

	return written * r.channels, nil
}
