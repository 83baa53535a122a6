// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis files
// into seekable audio.Stream values. Vorbis is the usual choice for long
// music tracks that are streamed rather than loaded whole.
//
// # Decoding Vorbis Files
//
//	f, _ := os.Open("music/ambience.ogg")
//	stream, err := vorbis.Decoder{}.Decode(f)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := stream.ReadSamples(buf)
//
// # Output Format
//
//   - Sample format: float32 in range [-1.0, 1.0]
//   - Channels: as stored in the file
//   - Sample rate: as stored in the file
//
// ReadSamples only ever returns whole frames; a dst whose length is not a
// multiple of Channels is shortened to the nearest whole frame.
//
// # Seeking
//
// SeekToFrame maps onto oggvorbis.Reader.SetPosition and needs a seekable
// input.
package vorbis
