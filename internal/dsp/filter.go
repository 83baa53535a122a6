// SPDX-License-Identifier: EPL-2.0

// Package dsp contains the per-sample processors used by the mixer: one-pole
// stereo filters and a comb/allpass reverb. Nothing here allocates after
// construction.
package dsp

import (
	"math"

	"github.com/ik5/gamemix/utils"
)

// MinCutoff is the lowest accepted filter cutoff in Hz.
const MinCutoff = 10.0

// ClampCutoff limits hz to [MinCutoff, sampleRate/2].
func ClampCutoff(hz, sampleRate float64) float64 {
	return utils.Clamp(hz, MinCutoff, max(sampleRate/2, MinCutoff))
}

// Lowpass is a stereo one-pole lowpass: y += α(x - y).
type Lowpass struct {
	alpha float32
	y     [2]float32
}

// SetCutoff sets α = 1 - e^(-2π·fc/fs). History is kept.
func (f *Lowpass) SetCutoff(hz, sampleRate float64) {
	hz = ClampCutoff(hz, sampleRate)
	f.alpha = float32(1 - math.Exp(-2*math.Pi*hz/sampleRate))
}

// Reset clears the filter history.
func (f *Lowpass) Reset() { f.y = [2]float32{} }

// Process filters one stereo frame.
func (f *Lowpass) Process(l, r float32) (float32, float32) {
	f.y[0] += f.alpha * (l - f.y[0])
	f.y[1] += f.alpha * (r - f.y[1])

	return f.y[0], f.y[1]
}

// Highpass is a stereo one-pole highpass: y = α(y + x - xPrev).
type Highpass struct {
	alpha float32
	y     [2]float32
	x     [2]float32
}

// SetCutoff sets α = e^(-2π·fc/fs). History is kept.
func (f *Highpass) SetCutoff(hz, sampleRate float64) {
	hz = ClampCutoff(hz, sampleRate)
	f.alpha = float32(math.Exp(-2 * math.Pi * hz / sampleRate))
}

// Reset clears the filter history.
func (f *Highpass) Reset() {
	f.y = [2]float32{}
	f.x = [2]float32{}
}

// Process filters one stereo frame.
func (f *Highpass) Process(l, r float32) (float32, float32) {
	f.y[0] = f.alpha * (f.y[0] + l - f.x[0])
	f.y[1] = f.alpha * (f.y[1] + r - f.x[1])
	f.x[0], f.x[1] = l, r

	return f.y[0], f.y[1]
}
