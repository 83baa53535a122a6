// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"

	"github.com/ik5/gamemix/utils"
)

const (
	// MaxFeedback bounds every comb and allpass feedback coefficient.
	MaxFeedback = 0.99
	// MinFeedback is the magnitude under which an allpass is dropped.
	MinFeedback = 1e-4

	// MinDecaySeconds is the shortest accepted decay time.
	MinDecaySeconds = 0.01
	// MaxDamping bounds comb damping.
	MaxDamping = 0.99

	minRoomSize = 0.1
	maxRoomSize = 1000.0
)

// Comb is one parallel damped comb filter.
type Comb struct {
	DelayMs float64
}

// Allpass is one serial allpass stage.
type Allpass struct {
	DelayMs  float64
	Feedback float64
}

// Design describes a reverb network for a room of BaseRoomSizeMeters.
type Design struct {
	BaseRoomSizeMeters float64
	Combs              []Comb
	Allpasses          []Allpass
}

// DefaultDesign is a small Schroeder network tuned for a 10 m room.
func DefaultDesign() Design {
	return Design{
		BaseRoomSizeMeters: 10,
		Combs: []Comb{
			{DelayMs: 29.7}, {DelayMs: 37.1}, {DelayMs: 41.1}, {DelayMs: 43.7},
		},
		Allpasses: []Allpass{
			{DelayMs: 5.0, Feedback: 0.7},
			{DelayMs: 1.7, Feedback: 0.7},
		},
	}
}

// Scaled returns a copy of d with every delay multiplied by
// roomSizeMeters / BaseRoomSizeMeters, then sanitized for sampleRate:
// entries shorter than one sample period are dropped, allpass feedback is
// clamped to ±MaxFeedback and near-zero feedback stages are dropped.
//
// Out of range room sizes are clamped. A non-positive base size leaves the
// delays unscaled.
func (d Design) Scaled(roomSizeMeters, sampleRate float64) Design {
	scale := 1.0
	if d.BaseRoomSizeMeters > 0 {
		scale = utils.Clamp(roomSizeMeters, minRoomSize, maxRoomSize) / d.BaseRoomSizeMeters
	}
	period := 1000 / sampleRate

	out := Design{BaseRoomSizeMeters: d.BaseRoomSizeMeters}
	for _, c := range d.Combs {
		ms := c.DelayMs * scale
		if !(ms >= period) {
			continue
		}
		out.Combs = append(out.Combs, Comb{DelayMs: ms})
	}
	for _, a := range d.Allpasses {
		ms := a.DelayMs * scale
		if !(ms >= period) || math.IsNaN(a.Feedback) || math.Abs(a.Feedback) < MinFeedback {
			continue
		}
		out.Allpasses = append(out.Allpasses, Allpass{
			DelayMs:  ms,
			Feedback: utils.Clamp(a.Feedback, -MaxFeedback, MaxFeedback),
		})
	}

	return out
}

// Params are the runtime controls of a reverb.
type Params struct {
	Wet          float64
	DecaySeconds float64
	Damping      float64
}

// DefaultParams returns a moderate one second tail.
func DefaultParams() Params {
	return Params{Wet: 0.3, DecaySeconds: 1, Damping: 0.2}
}

// Sanitize clamps wet to [0, 1], decay to at least MinDecaySeconds and
// damping to [0, MaxDamping].
func (p Params) Sanitize() Params {
	if math.IsNaN(p.Wet) {
		p.Wet = 0
	}
	if math.IsNaN(p.DecaySeconds) {
		p.DecaySeconds = MinDecaySeconds
	}
	if math.IsNaN(p.Damping) {
		p.Damping = 0
	}

	p.Wet = utils.Clamp(p.Wet, 0, 1)
	p.DecaySeconds = max(p.DecaySeconds, MinDecaySeconds)
	p.Damping = utils.Clamp(p.Damping, 0, MaxDamping)

	return p
}

// CombFeedback returns 10^(-delay/decay) for a comb of delayMs, clamped to
// ±MaxFeedback.
func CombFeedback(delayMs, decaySeconds float64) float64 {
	decaySeconds = max(decaySeconds, MinDecaySeconds)
	g := math.Pow(10, -(delayMs/1000)/decaySeconds)

	return utils.Clamp(g, -MaxFeedback, MaxFeedback)
}
