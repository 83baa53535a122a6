// SPDX-License-Identifier: EPL-2.0

package gamemix

import (
	"github.com/ik5/gamemix/internal/dsp"
	"github.com/ik5/gamemix/internal/spatial"
)

// Vec3 is a point or direction in world space.
type Vec3 = spatial.Vec3

// AttenuationModel selects how volume falls off with distance.
type AttenuationModel = spatial.Model

const (
	AttenuationNone        = spatial.None
	AttenuationLinear      = spatial.Linear
	AttenuationInverse     = spatial.Inverse
	AttenuationExponential = spatial.Exponential
)

// Attenuation configures distance falloff for a spatialized sound.
type Attenuation = spatial.Attenuation

// DefaultAttenuation is inverse falloff between 1 and 100 units.
func DefaultAttenuation() Attenuation { return spatial.DefaultAttenuation() }

type (
	// ReverbDesign lists the delay lines of a reverb, in milliseconds for
	// a room of BaseRoomSizeMeters.
	ReverbDesign = dsp.Design
	Comb         = dsp.Comb
	Allpass      = dsp.Allpass
	// ReverbParams are the live parameters of a reverb instance.
	ReverbParams = dsp.Params
)

// DefaultReverbDesign is a small room of four combs and two allpasses.
func DefaultReverbDesign() ReverbDesign { return dsp.DefaultDesign() }

// DefaultReverbParams returns wet 0.3, decay 1 s, damping 0.2.
func DefaultReverbParams() ReverbParams { return dsp.DefaultParams() }

// Stats are engine counters.
type Stats struct {
	// Instances is the number of valid handles.
	Instances int
	// Waiting counts instances whose asset is still loading.
	Waiting int
	// Playing is the number of voices rendered by the last callback.
	Playing int

	Assets          int
	FreeStreams     int
	PendingCommands int

	Underruns       uint64
	ReturnOverflows uint64
	DroppedReturns  uint64
}
