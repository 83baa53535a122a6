// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Decoding uses github.com/go-audio/wav and supports integer PCM at 16, 24
// and 32 bits with any channel count and sample rate. The returned
// audio.Stream is seekable: forward seeks decode and discard, backward seeks
// reopen the input.
//
// # Decoding WAV Files
//
//	f, _ := os.Open("sfx/door.wav")
//	stream, err := wav.Decoder{}.Decode(f)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := stream.ReadSamples(buf)
//
// # Writing WAV Files
//
// WriteWAV16 writes interleaved 16-bit PCM with a canonical 44-byte header.
// It targets a plain io.Writer, so the output can go to a pipe or a
// bytes.Buffer:
//
//	file, _ := os.Create("render.wav")
//	err := wav.WriteWAV16(file, 48000, 2, samples)
//
// # Error Handling
//
//   - ErrNotWavFile: the input is not a valid WAV file
//   - ErrUnsupportedWavLayout: non-PCM format tag, or sample count not a
//     multiple of channels when writing
//   - ErrInvalidChannels: WriteWAV16 called with channels < 1
//   - ErrUnsupportedBitDepth: anything other than 16, 24 or 32 bit
package wav
