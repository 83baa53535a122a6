// SPDX-License-Identifier: EPL-2.0

package dsp

import "math"

type combLine struct {
	buf      []float32
	pos      int
	delayMs  float64
	feedback float32
	store    float32
}

type allpassLine struct {
	buf      []float32
	pos      int
	feedback float32
}

// Reverb is a mono-in, stereo-out comb/allpass network. All buffers are
// allocated by NewReverb; Accumulate, SetParams and Process only touch
// existing memory.
type Reverb struct {
	combs     []combLine
	allpasses []allpassLine
	input     []float32

	params Params
	damp   float32
	dirty  bool
}

// NewReverb allocates a reverb for an already scaled design. maxBlock is
// the largest number of frames passed to Process.
func NewReverb(d Design, sampleRate float64, maxBlock int) *Reverb {
	r := &Reverb{
		combs:     make([]combLine, 0, len(d.Combs)),
		allpasses: make([]allpassLine, 0, len(d.Allpasses)),
		input:     make([]float32, maxBlock),
	}

	for _, c := range d.Combs {
		r.combs = append(r.combs, combLine{
			buf:     make([]float32, delaySamples(c.DelayMs, sampleRate)),
			delayMs: c.DelayMs,
		})
	}
	for _, a := range d.Allpasses {
		r.allpasses = append(r.allpasses, allpassLine{
			buf:      make([]float32, delaySamples(a.DelayMs, sampleRate)),
			feedback: float32(a.Feedback),
		})
	}
	r.SetParams(DefaultParams())

	return r
}

func delaySamples(ms, sampleRate float64) int {
	return max(int(math.Round(ms*sampleRate/1000)), 1)
}

// Combs returns the number of comb lines.
func (r *Reverb) Combs() int { return len(r.combs) }

// Allpasses returns the number of allpass stages.
func (r *Reverb) Allpasses() int { return len(r.allpasses) }

// Params returns the current parameters.
func (r *Reverb) Params() Params { return r.params }

// SetParams stores sanitized params. Comb feedback is recomputed on the
// next Process.
func (r *Reverb) SetParams(p Params) {
	r.params = p.Sanitize()
	r.damp = float32(r.params.Damping)
	r.dirty = true
}

// CombFeedback returns the feedback of comb i as last computed by Process.
func (r *Reverb) CombFeedback(i int) float32 { return r.combs[i].feedback }

// Accumulate adds x to the input at frame i. Frames past the block size
// are ignored.
func (r *Reverb) Accumulate(i int, x float32) {
	if i < len(r.input) {
		r.input[i] += x
	}
}

func (r *Reverb) updateFeedback() {
	for i := range r.combs {
		r.combs[i].feedback = float32(CombFeedback(r.combs[i].delayMs, r.params.DecaySeconds))
	}
	r.dirty = false
}

// Process runs frames of accumulated input through the network, adds
// wet × output to both channels of the interleaved stereo out and clears
// the input.
func (r *Reverb) Process(out []float32, frames int) {
	if r.dirty {
		r.updateFeedback()
	}

	frames = min(frames, len(r.input), len(out)/2)
	wet := float32(r.params.Wet)
	damp := r.damp

	for i := range frames {
		x := r.input[i]
		r.input[i] = 0

		y := x
		if len(r.combs) > 0 {
			var sum float32
			for c := range r.combs {
				line := &r.combs[c]
				o := line.buf[line.pos]
				line.store = o*(1-damp) + line.store*damp
				line.buf[line.pos] = x + line.store*line.feedback
				if line.pos++; line.pos == len(line.buf) {
					line.pos = 0
				}
				sum += o
			}
			y = sum / float32(len(r.combs))
		}

		for a := range r.allpasses {
			line := &r.allpasses[a]
			b := line.buf[line.pos]
			w := y + b*line.feedback
			line.buf[line.pos] = w
			y = b - w*line.feedback
			if line.pos++; line.pos == len(line.buf) {
				line.pos = 0
			}
		}

		out[2*i] += wet * y
		out[2*i+1] += wet * y
	}

	clear(r.input[frames:])
}

// Clear silences all delay lines and pending input.
func (r *Reverb) Clear() {
	for i := range r.combs {
		clear(r.combs[i].buf)
		r.combs[i].store = 0
	}
	for i := range r.allpasses {
		clear(r.allpasses[i].buf)
	}
	clear(r.input)
}
