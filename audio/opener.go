// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Opener turns a path into a live decoded stream.
type Opener interface {
	Open(path string) (Stream, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Stream, error)

func (f OpenerFunc) Open(path string) (Stream, error) { return f(path) }

// FileOpener opens files from disk and picks the decoder by file extension.
type FileOpener struct {
	Registry *Registry
}

func (o FileOpener) Open(path string) (Stream, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	dec, ok := o.Registry.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	s, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return &fileStream{Stream: s, file: f}, nil
}

// fileStream closes the underlying file together with the decoder.
type fileStream struct {
	Stream
	file *os.File
}

func (s *fileStream) Close() error {
	return errors.Join(s.Stream.Close(), s.file.Close())
}
