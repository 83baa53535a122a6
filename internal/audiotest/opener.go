// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Opener for unknown paths.
var ErrNotFound = errors.New("audiotest: no such stream")

// Factory builds a fresh stream each time a path is opened.
type Factory func() (*MockSource, error)

// Opener is an in-memory path -> stream table. Each Open call runs the
// registered factory so that every consumer gets its own decoder, the way
// re-opening a file would.
type Opener struct {
	mu        sync.Mutex
	factories map[string]Factory
	opened    map[string]int
	streams   []*MockSource
}

func NewOpener() *Opener {
	return &Opener{
		factories: make(map[string]Factory),
		opened:    make(map[string]int),
	}
}

// Add registers a factory for path.
func (o *Opener) Add(path string, f Factory) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.factories[path] = f
}

// AddFailing registers a path whose decoder fails to initialize.
func (o *Opener) AddFailing(path string, err error) {
	o.Add(path, func() (*MockSource, error) { return nil, err })
}

// OpenMock runs the factory registered for path. Callers wrap it in an
// audio.OpenerFunc; this package does not import audio so that the audio
// package's own tests can use it.
func (o *Opener) OpenMock(path string) (*MockSource, error) {
	o.mu.Lock()
	f, ok := o.factories[path]
	o.opened[path]++
	o.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	s, err := f()
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.streams = append(o.streams, s)
	o.mu.Unlock()

	return s, nil
}

// Opened returns how many times path was opened.
func (o *Opener) Opened(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.opened[path]
}

// Streams returns every stream handed out so far.
func (o *Opener) Streams() []*MockSource {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]*MockSource(nil), o.streams...)
}
