// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files into
// seekable audio.Stream values.
//
// # Decoding MP3 Files
//
//	f, _ := os.Open("music/theme.mp3")
//	stream, err := mp3.Decoder{}.Decode(f)
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
//   - Channels: 2 (go-mp3 always produces stereo)
//   - Sample rate: the file's own rate (typically 44.1kHz or 48kHz)
//
// # Seeking
//
// SeekToFrame and LengthInFrames use go-mp3's byte-based Seek and Length.
// Both need the reader passed to Decode to support seeking; os.File does.
package mp3
