// SPDX-License-Identifier: EPL-2.0

package gamemix

import "errors"

var (
	ErrInvalidSampleRate = errors.New("sample rate must be between 1 and 384000")
	ErrCapacityExceeded  = errors.New("no free slot")
	ErrInvalidReverb     = errors.New("reverb id out of range")
	ErrClosed            = errors.New("engine closed")
	ErrStarted           = errors.New("engine already attached to a device")
	ErrRateMismatch      = errors.New("device sample rate differs from the engine's")
)
