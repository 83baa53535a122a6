// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"

	"github.com/ik5/gamemix/formats/internal/pcm"
)

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")
	ErrInvalidChannels      = errors.New("channel count must be positive")
	ErrUnsupportedBitDepth  = pcm.ErrUnsupportedBitDepth
)
