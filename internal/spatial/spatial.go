// SPDX-License-Identifier: EPL-2.0

package spatial

import (
	"math"

	"github.com/ik5/gamemix/utils"
)

// Model selects the distance attenuation curve.
type Model uint8

const (
	None Model = iota
	Linear
	Inverse
	Exponential
)

func (m Model) String() string {
	switch m {
	case None:
		return "none"
	case Linear:
		return "linear"
	case Inverse:
		return "inverse"
	case Exponential:
		return "exponential"
	default:
		return "unknown"
	}
}

// Attenuation maps listener distance to a gain in [0, 1].
type Attenuation struct {
	Model       Model
	MinDistance float64
	MaxDistance float64
	// Rolloff is k in the Inverse and Exponential curves.
	Rolloff float64
	// Invert makes sounds louder with distance.
	Invert bool
}

// DefaultAttenuation is an inverse curve between 1 and 100 units.
func DefaultAttenuation() Attenuation {
	return Attenuation{Model: Inverse, MinDistance: 1, MaxDistance: 100, Rolloff: 1}
}

// Sanitize clamps distances and rolloff to non-negative values and
// unknown models to None.
func (a Attenuation) Sanitize() Attenuation {
	if a.Model > Exponential {
		a.Model = None
	}
	a.MinDistance = nonNegative(a.MinDistance)
	a.MaxDistance = nonNegative(a.MaxDistance)
	a.Rolloff = nonNegative(a.Rolloff)

	return a
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}

	return v
}

// Gain returns the attenuation at distance.
func (a Attenuation) Gain(distance float64) float64 {
	if a.Model == None {
		return 1
	}

	if a.MaxDistance <= a.MinDistance {
		inside := distance <= a.MinDistance
		if inside != a.Invert {
			return 1
		}

		return 0
	}

	t := utils.Clamp((distance-a.MinDistance)/(a.MaxDistance-a.MinDistance), 0, 1)
	if a.Invert {
		t = 1 - t
	}

	k := a.Rolloff
	switch a.Model {
	case Linear:
		return 1 - t
	case Inverse:
		if k <= 0 {
			// Limit of the curve as k approaches 0.
			return 1 - t*t
		}
		lo := 1 / (1 + k)
		return (1/(1+k*t*t) - lo) / (1 - lo)
	case Exponential:
		return math.Pow(1-t, k)
	default:
		return 1
	}
}

// Listener is the ear every sound is placed relative to.
type Listener struct {
	Position Vec3
	Velocity Vec3
	Forward  Vec3
	Up       Vec3
}

// DefaultListener sits at the origin looking down -Z with +Y up.
func DefaultListener() Listener {
	return Listener{
		Forward: Vec3{Z: -1},
		Up:      Vec3{Y: 1},
	}
}

// Pan returns the stereo pan in [-1, 1] of a sound at pos: the sine of its
// azimuth in the listener's horizontal plane. A degenerate listener basis or
// a sound at the listener pans to the center.
func (l Listener) Pan(pos Vec3) float64 {
	right := Normalize(Cross(l.Forward, l.Up))
	forward := Normalize(l.Forward)
	if right == (Vec3{}) || forward == (Vec3{}) {
		return 0
	}

	d := Sub(pos, l.Position)
	x, z := Dot(d, right), Dot(d, forward)
	if x == 0 && z == 0 {
		return 0
	}

	return math.Sin(math.Atan2(x, z))
}

const (
	minDoppler = 0.5
	maxDoppler = 2.0
)

// Doppler returns the pitch ratio for a source at pos moving at vel:
// c / (c - factor·v), where v is the relative speed toward the listener
// limited to ±0.9c. The ratio is clamped to [0.5, 2].
func (l Listener) Doppler(pos, vel Vec3, factor, speedOfSound float64) float64 {
	if factor == 0 || speedOfSound <= 0 {
		return 1
	}

	axis := Normalize(Sub(l.Position, pos))
	if axis == (Vec3{}) {
		return 1
	}

	limit := 0.9 * speedOfSound
	v := utils.Clamp(Dot(Sub(vel, l.Velocity), axis), -limit, limit)

	den := speedOfSound - factor*v
	if den <= 0 || math.IsNaN(den) {
		return maxDoppler
	}

	r := speedOfSound / den
	if math.IsNaN(r) {
		return 1
	}

	return utils.Clamp(r, minDoppler, maxDoppler)
}

// StereoGains applies the constant-power pan law to volume.
func StereoGains(pan, volume float64) (left, right float32) {
	pan = utils.Clamp(pan, -1, 1)

	return float32(math.Sqrt(0.5*(1-pan)) * volume), float32(math.Sqrt(0.5*(1+pan)) * volume)
}
