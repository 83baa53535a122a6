// SPDX-License-Identifier: EPL-2.0

package gamemix

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/ik5/gamemix/audio"
	"github.com/ik5/gamemix/internal/bus"
	"github.com/ik5/gamemix/utils"
)

// Defaults used by DefaultConfig.
const (
	DefaultSampleRate       = 48000
	DefaultMaxInstances     = 256
	DefaultMaxStreams       = 8
	DefaultMaxBuses         = bus.MaxBuses
	DefaultMaxReverbs       = 32
	DefaultQueueCapacity    = 512
	DefaultMaxBlockFrames   = 512
	DefaultStreamTick       = 10 * time.Millisecond
	DefaultStreamRingFrames = 16384
	DefaultSpeedOfSound     = 343.0
)

// Config configures an Engine. Out-of-range values are clamped.
type Config struct {
	// SampleRate is the device rate every asset is converted to.
	SampleRate int

	MaxInstances int
	MaxStreams   int
	MaxBuses     int
	MaxReverbs   int

	// QueueCapacity is the size of each command queue.
	QueueCapacity int
	// MaxBlockFrames bounds the frames the mixer renders per pass.
	MaxBlockFrames int

	StreamTick       time.Duration
	StreamRingFrames int

	// SpeedOfSound in world units per second, for Doppler.
	SpeedOfSound float64

	// Opener opens audio files. Nil uses formats.NewOpener.
	Opener audio.Opener
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:       DefaultSampleRate,
		MaxInstances:     DefaultMaxInstances,
		MaxStreams:       DefaultMaxStreams,
		MaxBuses:         DefaultMaxBuses,
		MaxReverbs:       DefaultMaxReverbs,
		QueueCapacity:    DefaultQueueCapacity,
		MaxBlockFrames:   DefaultMaxBlockFrames,
		StreamTick:       DefaultStreamTick,
		StreamRingFrames: DefaultStreamRingFrames,
		SpeedOfSound:     DefaultSpeedOfSound,
	}
}

// LoadConfigFromEnv returns DefaultConfig overridden by GAMEMIX_*
// environment variables. Unparsable values are ignored.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	envInt("GAMEMIX_SAMPLE_RATE", &cfg.SampleRate)
	envInt("GAMEMIX_MAX_INSTANCES", &cfg.MaxInstances)
	envInt("GAMEMIX_MAX_STREAMS", &cfg.MaxStreams)
	envInt("GAMEMIX_MAX_BUSES", &cfg.MaxBuses)
	envInt("GAMEMIX_MAX_REVERBS", &cfg.MaxReverbs)
	envInt("GAMEMIX_QUEUE_CAPACITY", &cfg.QueueCapacity)
	envInt("GAMEMIX_BLOCK_FRAMES", &cfg.MaxBlockFrames)
	envInt("GAMEMIX_STREAM_RING_FRAMES", &cfg.StreamRingFrames)

	if v := os.Getenv("GAMEMIX_STREAM_TICK"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.StreamTick = d
		}
	}
	if v := os.Getenv("GAMEMIX_SPEED_OF_SOUND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SpeedOfSound = f
		}
	}

	return cfg
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// normalize clamps every field into its valid range. SampleRate is the one
// value that cannot be guessed and is checked by New.
func (c Config) normalize() Config {
	c.MaxInstances = utils.Clamp(c.MaxInstances, 1, 1<<16)
	c.MaxStreams = utils.Clamp(c.MaxStreams, 0, c.MaxInstances)
	c.MaxBuses = utils.Clamp(c.MaxBuses, 1, bus.MaxBuses)
	c.MaxReverbs = utils.Clamp(c.MaxReverbs, 0, DefaultMaxReverbs)
	c.QueueCapacity = utils.Clamp(c.QueueCapacity, 16, 1<<16)
	c.MaxBlockFrames = utils.Clamp(c.MaxBlockFrames, 16, 8192)

	if c.StreamTick <= 0 {
		c.StreamTick = DefaultStreamTick
	}
	c.StreamTick = min(max(c.StreamTick, time.Millisecond), time.Second)

	// The mixer reads up to four blocks ahead at maximum pitch.
	c.StreamRingFrames = max(c.StreamRingFrames, 8*c.MaxBlockFrames)

	if !(c.SpeedOfSound > 0) {
		c.SpeedOfSound = DefaultSpeedOfSound
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	return c
}
