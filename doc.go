// SPDX-License-Identifier: EPL-2.0

// Package gamemix is a real-time audio engine for games.
//
// Game code calls the Engine from one control goroutine: it starts sounds,
// changes their parameters and calls Update once per frame. The mixer runs
// inside the output device callback and never blocks, locks or allocates.
// The two sides talk only through bounded command queues.
//
// # Quick Start
//
//	eng, err := gamemix.New(gamemix.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer eng.Close()
//
//	dev, err := device.Open(device.Malgo, device.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer dev.Close()
//	if err := eng.Start(dev); err != nil {
//		return err
//	}
//
//	shot := eng.PlayBuffered("sfx/shot.wav")
//	eng.SetVolume(shot, 0.8)
//
//	for running {
//		eng.Update(dt)
//	}
//
// # Handles
//
// Play functions return a Handle. A Handle becomes invalid the moment its
// sound is stopped, and when the sound ends on its own after the next
// Update. Operations on an invalid Handle do nothing and getters return
// zero values, so game code never needs to check before calling.
//
// # Buffered and streamed sounds
//
// PlayBuffered decodes the whole file once on the loader goroutine and
// shares the PCM between every instance of the same path. PlayStreamed
// decodes on the streaming goroutine into a ring buffer per instance,
// which suits long music tracks. Both convert to the engine sample rate
// and to stereo.
//
// # Formats
//
// The default opener decodes WAV, MP3, Ogg Vorbis and AIFF through the
// formats packages. Config.Opener replaces it.
//
// # Buses and reverbs
//
// Every sound plays on a bus. A bus's effective volume is the product of
// its own and its ancestors' volumes. Reverb instances are built from a
// ReverbDesign scaled to a room size and fed by each sound's reverb send.
package gamemix
