// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files into
// seekable audio.Stream values.
//
// # Decoding AIFF Files
//
//	f, _ := os.Open("sfx/jingle.aif")
//	stream, err := aiff.Decoder{}.Decode(f)
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
// Integer PCM at 16, 24 and 32 bit is supported. AIFF-C (compressed) is not.
//
// # Error Handling
//
//   - ErrNotAiffFile: the input is not a valid AIFF file
//   - ErrUnsupportedAiffLayout: the COMM chunk describes no channels
//   - ErrUnsupportedBitDepth: any other bit depth
//
// # Seeking
//
// go-audio/aiff has no random access, so forward seeks decode and discard
// and backward seeks reopen the input from its start.
package aiff
