// SPDX-License-Identifier: EPL-2.0

// Package command defines the messages exchanged between the control side
// and the realtime mixer, and the coalescing outbox that sends them.
package command

import (
	"github.com/ik5/gamemix/internal/bus"
	"github.com/ik5/gamemix/internal/dsp"
	"github.com/ik5/gamemix/internal/ring"
	"github.com/ik5/gamemix/internal/spatial"
	"github.com/ik5/gamemix/internal/stream"
)

// Target is the kind of object a command addresses.
type Target uint8

const (
	None Target = iota
	Instance
	Reverb
)

// Kind identifies a payload type.
type Kind uint8

const (
	KindPlay Kind = iota
	KindStop
	KindSetPaused
	KindSeek
	KindSetVolume
	KindSetPitch
	KindSetPan
	KindSetLooping
	KindSetSpatial
	KindSetPosition
	KindSetVelocity
	KindSetDoppler
	KindSetAttenuation
	KindSetBus
	KindSetLowpass
	KindSetHighpass
	KindSetReverbSend
	KindSetReverb
	KindSetListener
	KindSetResolvedBusVolumes
	KindCreateReverb
	KindDestroyReverb
	KindSetReverbEnabled
	KindSetReverbParams
)

var kindNames = [...]string{
	KindPlay:                  "Play",
	KindStop:                  "Stop",
	KindSetPaused:             "SetPaused",
	KindSeek:                  "Seek",
	KindSetVolume:             "SetVolume",
	KindSetPitch:              "SetPitch",
	KindSetPan:                "SetPan",
	KindSetLooping:            "SetLooping",
	KindSetSpatial:            "SetSpatial",
	KindSetPosition:           "SetPosition",
	KindSetVelocity:           "SetVelocity",
	KindSetDoppler:            "SetDoppler",
	KindSetAttenuation:        "SetAttenuation",
	KindSetBus:                "SetBus",
	KindSetLowpass:            "SetLowpass",
	KindSetHighpass:           "SetHighpass",
	KindSetReverbSend:         "SetReverbSend",
	KindSetReverb:             "SetReverb",
	KindSetListener:           "SetListener",
	KindSetResolvedBusVolumes: "SetResolvedBusVolumes",
	KindCreateReverb:          "CreateReverb",
	KindDestroyReverb:         "DestroyReverb",
	KindSetReverbEnabled:      "SetReverbEnabled",
	KindSetReverbParams:       "SetReverbParams",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Payload is the closed set of command bodies.
type Payload interface {
	Kind() Kind
	payload()
}

// Command is one message. Instance commands carry the generation of the
// handle they were issued for; the mixer ignores them when it does not
// match the voice.
type Command struct {
	Target     Target
	ID         int32
	Generation uint32
	NeedsAck   bool
	Payload    Payload
}

// Kind returns the payload kind.
func (c Command) Kind() Kind { return c.Payload.Kind() }

// Key identifies commands that may overwrite each other while pending.
type Key struct {
	Kind       Kind
	Target     Target
	ID         int32
	Generation uint32
}

// Key returns the coalescing key of c.
func (c Command) Key() Key {
	return Key{Kind: c.Kind(), Target: c.Target, ID: c.ID, Generation: c.Generation}
}

// Queue is the bounded single-producer, single-consumer transport.
type Queue = ring.Ring[Command]

// NewQueue creates a queue holding at least capacity commands.
func NewQueue(capacity int) *Queue { return ring.New[Command](capacity) }

// Filter is a one-pole filter setting.
type Filter struct {
	Enabled bool
	Cutoff  float64
}

// Voice is the full parameter snapshot a Play starts from.
type Voice struct {
	// PCM is interleaved stereo at the engine rate for buffered playback.
	PCM []float32
	// Stream is set for streamed playback.
	Stream *stream.Slot

	StartFrame int64
	// SeekSerial, when non-zero, starts a streamed voice waiting for that
	// seek to be flushed.
	SeekSerial uint64

	Paused  bool
	Looping bool
	Volume  float64
	Pitch   float64
	Pan     float64

	Spatial     bool
	Position    spatial.Vec3
	Velocity    spatial.Vec3
	Doppler     float64
	Attenuation spatial.Attenuation

	Lowpass  Filter
	Highpass Filter

	Bus        int32
	Reverb     int32
	ReverbSend float64
}

type (
	Play           struct{ Voice *Voice }
	// Stop deactivates a voice. A client stop of a streamed voice carries
	// the slot and needs an ack; the slot is recycled when the ack returns.
	Stop           struct{ Stream *stream.Slot }
	SetPaused      struct{ Paused bool }
	SetVolume      struct{ Volume float64 }
	SetPitch       struct{ Pitch float64 }
	SetPan         struct{ Pan float64 }
	SetLooping     struct{ Looping bool }
	SetSpatial     struct{ Enabled bool }
	SetPosition    struct{ Position spatial.Vec3 }
	SetVelocity    struct{ Velocity spatial.Vec3 }
	SetDoppler     struct{ Factor float64 }
	SetAttenuation struct{ Attenuation spatial.Attenuation }
	SetBus         struct{ Bus int32 }
	SetLowpass     struct{ Filter Filter }
	SetHighpass    struct{ Filter Filter }
	SetReverbSend  struct{ Send float64 }
	SetReverb      struct{ Reverb int32 }

	SetListener           struct{ Listener spatial.Listener }
	// SetResolvedBusVolumes hands an array to the mixer; the ack returns
	// the array it replaced.
	SetResolvedBusVolumes struct{ Volumes *bus.Volumes }

	// CreateReverb hands a reverb to the mixer; the ack returns the reverb
	// it replaced, if any. Reverb is filled right before sending.
	CreateReverb     struct{ Reverb *dsp.Reverb }
	// DestroyReverb takes a reverb out of the mixer; the ack carries it.
	DestroyReverb    struct{ Old *dsp.Reverb }
	SetReverbEnabled struct{ Enabled bool }
	SetReverbParams  struct{ Params dsp.Params }
)

// Seek moves a voice to Frame. Streamed voices wait until the stream slot
// has flushed Serial.
type Seek struct {
	Frame  int64
	Serial uint64
}

func (Play) Kind() Kind                  { return KindPlay }
func (Stop) Kind() Kind                  { return KindStop }
func (SetPaused) Kind() Kind             { return KindSetPaused }
func (Seek) Kind() Kind                  { return KindSeek }
func (SetVolume) Kind() Kind             { return KindSetVolume }
func (SetPitch) Kind() Kind              { return KindSetPitch }
func (SetPan) Kind() Kind                { return KindSetPan }
func (SetLooping) Kind() Kind            { return KindSetLooping }
func (SetSpatial) Kind() Kind            { return KindSetSpatial }
func (SetPosition) Kind() Kind           { return KindSetPosition }
func (SetVelocity) Kind() Kind           { return KindSetVelocity }
func (SetDoppler) Kind() Kind            { return KindSetDoppler }
func (SetAttenuation) Kind() Kind        { return KindSetAttenuation }
func (SetBus) Kind() Kind                { return KindSetBus }
func (SetLowpass) Kind() Kind            { return KindSetLowpass }
func (SetHighpass) Kind() Kind           { return KindSetHighpass }
func (SetReverbSend) Kind() Kind         { return KindSetReverbSend }
func (SetReverb) Kind() Kind             { return KindSetReverb }
func (SetListener) Kind() Kind           { return KindSetListener }
func (SetResolvedBusVolumes) Kind() Kind { return KindSetResolvedBusVolumes }
func (CreateReverb) Kind() Kind          { return KindCreateReverb }
func (DestroyReverb) Kind() Kind         { return KindDestroyReverb }
func (SetReverbEnabled) Kind() Kind      { return KindSetReverbEnabled }
func (SetReverbParams) Kind() Kind       { return KindSetReverbParams }

func (Play) payload()                  {}
func (Stop) payload()                  {}
func (SetPaused) payload()             {}
func (Seek) payload()                  {}
func (SetVolume) payload()             {}
func (SetPitch) payload()              {}
func (SetPan) payload()                {}
func (SetLooping) payload()            {}
func (SetSpatial) payload()            {}
func (SetPosition) payload()           {}
func (SetVelocity) payload()           {}
func (SetDoppler) payload()            {}
func (SetAttenuation) payload()        {}
func (SetBus) payload()                {}
func (SetLowpass) payload()            {}
func (SetHighpass) payload()           {}
func (SetReverbSend) payload()         {}
func (SetReverb) payload()             {}
func (SetListener) payload()           {}
func (SetResolvedBusVolumes) payload() {}
func (CreateReverb) payload()          {}
func (DestroyReverb) payload()         {}
func (SetReverbEnabled) payload()      {}
func (SetReverbParams) payload()       {}
