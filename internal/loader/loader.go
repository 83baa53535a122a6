// SPDX-License-Identifier: EPL-2.0

// Package loader decodes audio files on a background goroutine into shared,
// reference-counted assets.
package loader

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ik5/gamemix/audio"
)

// Loader owns one worker goroutine and the path -> Asset table.
type Loader struct {
	opener audio.Opener
	rate   int
	log    *slog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*Asset
	assets map[string]*Asset
	closed bool

	wg sync.WaitGroup
}

// New starts a loader that decodes to sampleRate.
func New(opener audio.Opener, sampleRate int, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}

	l := &Loader{
		opener: opener,
		rate:   sampleRate,
		log:    log,
		assets: make(map[string]*Asset),
	}
	l.cond = sync.NewCond(&l.mu)

	l.wg.Add(1)
	go l.loop()

	return l
}

// Close stops the worker after the asset it is decoding, if any.
func (l *Loader) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.queue = nil
	l.cond.Broadcast()
	l.mu.Unlock()

	l.wg.Wait()

	return nil
}

// Len returns the number of cached assets.
func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.assets)
}

// Acquire returns the shared asset for path with one more reference. A
// full request asks for decoded PCM; otherwise only metadata is loaded.
func (l *Loader) Acquire(path string, full bool) *Asset {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.assets[path]
	if !ok {
		a = &Asset{path: path, totalFrames: -1}
		l.assets[path] = a
	}
	a.refs++

	a.mu.Lock()
	switch a.state {
	case Unloaded:
		if full {
			a.state = FullLoading
		} else {
			a.state = MetadataLoading
		}
		l.enqueue(a)
	case MetadataLoading:
		if full {
			a.wantFull = true
		}
	case MetadataReady:
		if full {
			a.state = FullLoading
			l.enqueue(a)
		}
	}
	a.mu.Unlock()

	return a
}

// Release drops one reference. An unreferenced asset is evicted once it is
// no longer loading.
func (l *Loader) Release(a *Asset) {
	if a == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if a.refs > 0 {
		a.refs--
	}
	if a.refs == 0 && !a.State().loading() {
		l.evict(a)
	}
}

// evict removes a from the table. Caller holds l.mu.
func (l *Loader) evict(a *Asset) {
	if l.assets[a.path] == a {
		delete(l.assets, a.path)
	}
}

// enqueue hands a to the worker. Caller holds l.mu.
func (l *Loader) enqueue(a *Asset) {
	if l.closed {
		return
	}
	l.queue = append(l.queue, a)
	l.cond.Signal()
}

func (l *Loader) loop() {
	defer l.wg.Done()

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if l.closed {
			l.mu.Unlock()
			return
		}
		a := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.process(a)
	}
}

func (l *Loader) process(a *Asset) {
	state := a.State()

	var (
		frames int64
		pcm    []float32
		err    error
	)
	switch state {
	case MetadataLoading:
		frames, err = l.loadMetadata(a.path)
	case FullLoading:
		pcm, err = l.loadFull(a)
		frames = int64(len(pcm) / 2)
	default:
		return
	}

	a.mu.Lock()
	requeue := false
	switch {
	case err != nil:
		a.state = Failed
		a.err = err
		a.wantFull = false
	case state == MetadataLoading:
		a.totalFrames = frames
		a.measured = true
		a.state = MetadataReady
		if a.wantFull {
			a.wantFull = false
			a.state = FullLoading
			requeue = true
		}
	default:
		a.totalFrames = frames
		a.measured = true
		a.pcm = pcm
		a.state = FullyLoaded
	}
	final := a.state
	a.mu.Unlock()

	if err != nil {
		l.log.Warn("loader: asset failed", "path", a.path, "error", err)
	} else {
		l.log.Debug("loader: asset loaded", "path", a.path, "state", final.String(), "frames", frames)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if a.refs == 0 {
		if requeue {
			// Nobody wants the PCM any more.
			a.mu.Lock()
			a.state = MetadataReady
			a.mu.Unlock()
		}
		l.evict(a)
		return
	}
	if requeue {
		l.enqueue(a)
	}
}

// loadMetadata returns the length of path in engine-rate frames.
func (l *Loader) loadMetadata(path string) (int64, error) {
	s, err := l.opener.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer s.Close()

	return engineFrames(s.LengthInFrames(), s.SampleRate(), l.rate), nil
}

// loadFull decodes a into stereo PCM at the engine rate. The length from
// the header is published first so streamed instances need not wait for the
// decode.
func (l *Loader) loadFull(a *Asset) ([]float32, error) {
	s, err := l.opener.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", a.path, err)
	}
	defer s.Close()

	hint := engineFrames(s.LengthInFrames(), s.SampleRate(), l.rate)
	a.setLength(hint)

	pcm, err := audio.ReadAll(s, l.rate, hint)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", a.path, err)
	}

	return pcm, nil
}

func engineFrames(srcFrames int64, srcRate, rate int) int64 {
	if srcFrames < 0 || srcRate <= 0 {
		return -1
	}
	if srcRate == rate {
		return srcFrames
	}

	return srcFrames * int64(rate) / int64(srcRate)
}
