// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	ErrUnknownBackend = errors.New("unknown audio backend")
	ErrNoEnumeration  = errors.New("backend cannot enumerate devices")
	ErrNotFound       = errors.New("output device not found")
	ErrStarted        = errors.New("device already started")
	ErrClosed         = errors.New("device closed")
)
