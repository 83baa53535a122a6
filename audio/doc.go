// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM primitives the engine decodes through.
//
// This package contains the building blocks shared by the decoders and the
// engine's background goroutines:
//   - Source and Stream interfaces for decoded audio
//   - Decoder and Registry for format lookup by file extension
//   - Opener / FileOpener for turning a path into a live Stream
//   - Resampler for sample rate conversion
//   - StereoMixer for folding any channel layout into stereo
//   - ReadAll for decoding a whole file into memory
//
// # Stream Interface
//
// A Stream is a Source that can be repositioned:
//
//	type Stream interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	    SeekToFrame(frame int64) error
//	    LengthInFrames() int64
//	}
//
// Frames are counted in the stream's own sample rate.
//
// # Opening Files
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//	opener := audio.FileOpener{Registry: reg}
//	stream, err := opener.Open("sfx/door.wav")
//
// The formats package provides a registry with every bundled decoder.
//
// # Resampling
//
// The Resampler changes the sample rate of audio using cubic interpolation:
//
//	resampler := audio.NewResampler(source, 48000)
//	buf := make([]float32, 4096)
//	n, err := resampler.ReadSamples(buf)
//
// After repositioning the underlying stream call Reset so the interpolation
// window does not mix frames from before and after the seek.
//
// # Sample Format
//
// Audio samples are represented as float32 in the range [-1.0, 1.0].
//
// # Error Handling
//
// Audio processing functions return io.EOF when no more data is available:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    if err == io.EOF {
//	        break // Normal end of stream
//	    }
//	    if err != nil {
//	        return err // Processing error
//	    }
//	    // Process n samples from buf
//	}
package audio
