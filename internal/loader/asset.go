// SPDX-License-Identifier: EPL-2.0

package loader

import "sync"

// State is the load progress of an Asset.
type State int32

const (
	Unloaded State = iota
	MetadataLoading
	MetadataReady
	FullLoading
	FullyLoaded
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case MetadataLoading:
		return "metadata-loading"
	case MetadataReady:
		return "metadata-ready"
	case FullLoading:
		return "full-loading"
	case FullyLoaded:
		return "fully-loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// loading reports whether the loader goroutine owns the asset.
func (s State) loading() bool { return s == MetadataLoading || s == FullLoading }

// Asset is decoded audio shared by every instance playing the same path.
// State only moves forward; Failed is terminal.
type Asset struct {
	path string

	mu          sync.Mutex
	state       State
	totalFrames int64
	// measured is set once the length is known, or known to be unknown.
	measured bool
	pcm      []float32
	err         error
	// wantFull records a full request that arrived during metadata loading.
	wantFull bool

	// Guarded by Loader.mu.
	refs int
}

// Path returns the file the asset was loaded from.
func (a *Asset) Path() string { return a.path }

// State returns the current load state.
func (a *Asset) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// TotalFrames returns the length in engine-rate frames, or -1 when unknown
// or not yet loaded.
func (a *Asset) TotalFrames() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.totalFrames
}

// PCM returns interleaved stereo engine-rate samples once FullyLoaded.
// The slice is never modified afterwards.
func (a *Asset) PCM() []float32 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.pcm
}

// Err returns the error that failed the asset.
func (a *Asset) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.err
}

// Ready reports whether the asset reached want, or a later non-failed
// state. An asset still decoding in full counts as MetadataReady only once
// its length has been read.
func (a *Asset) Ready(want State) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == Failed || a.state < want {
		return false
	}
	if want <= MetadataReady && a.state == FullLoading {
		return a.measured
	}

	return true
}

// setLength publishes the length read from the stream header, unless the
// metadata pass already did.
func (a *Asset) setLength(frames int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.measured {
		a.totalFrames = frames
		a.measured = true
	}
}
