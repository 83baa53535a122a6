// SPDX-License-Identifier: EPL-2.0

// Package formats wires every bundled decoder into an audio.Registry.
package formats

import (
	"github.com/ik5/gamemix/audio"
	"github.com/ik5/gamemix/formats/aiff"
	"github.com/ik5/gamemix/formats/mp3"
	"github.com/ik5/gamemix/formats/vorbis"
	"github.com/ik5/gamemix/formats/wav"
)

// Extensions lists the file extensions NewRegistry registers.
var Extensions = []string{"wav", "wave", "mp3", "ogg", "oga", "aif", "aiff"}

// NewRegistry returns a registry keyed by file extension (without the dot).
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()

	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})

	return r
}

// NewOpener returns an opener that reads files from disk using every bundled
// decoder.
func NewOpener() audio.FileOpener {
	return audio.FileOpener{Registry: NewRegistry()}
}
