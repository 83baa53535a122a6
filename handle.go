// SPDX-License-Identifier: EPL-2.0

package gamemix

import "fmt"

// Handle refers to one playing sound. The zero Handle is never valid, and a
// Handle stays invalid once its sound stopped, even if its slot is reused.
type Handle struct {
	index      int32
	generation uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.generation == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.index, h.generation)
}
