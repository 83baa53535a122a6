// SPDX-License-Identifier: EPL-2.0

package gamemix

import (
	"github.com/ik5/gamemix/internal/command"
	"github.com/ik5/gamemix/internal/spatial"
)

// setListener applies f to the listener and queues the result. Only the
// latest listener state is sent.
func (e *Engine) setListener(v Vec3, f func(l *spatial.Listener)) {
	if !spatial.Finite(v) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	f(&e.listener)
	e.outbox.Push(command.Command{
		Target:  command.None,
		ID:      command.ListenerID,
		Payload: command.SetListener{Listener: e.listener},
	})
}

func (e *Engine) listenerField(f func(l *spatial.Listener) Vec3) Vec3 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return f(&e.listener)
}

// SetListenerPosition moves the listener. Non-finite vectors are ignored.
func (e *Engine) SetListenerPosition(p Vec3) {
	e.setListener(p, func(l *spatial.Listener) { l.Position = p })
}

// ListenerPosition returns the listener position.
func (e *Engine) ListenerPosition() Vec3 {
	return e.listenerField(func(l *spatial.Listener) Vec3 { return l.Position })
}

// SetListenerVelocity sets the listener velocity for Doppler.
func (e *Engine) SetListenerVelocity(v Vec3) {
	e.setListener(v, func(l *spatial.Listener) { l.Velocity = v })
}

// ListenerVelocity returns the listener velocity.
func (e *Engine) ListenerVelocity() Vec3 {
	return e.listenerField(func(l *spatial.Listener) Vec3 { return l.Velocity })
}

// SetListenerForward sets where the listener faces. It defaults to -Z.
func (e *Engine) SetListenerForward(f Vec3) {
	e.setListener(f, func(l *spatial.Listener) { l.Forward = f })
}

// ListenerForward returns where the listener faces.
func (e *Engine) ListenerForward() Vec3 {
	return e.listenerField(func(l *spatial.Listener) Vec3 { return l.Forward })
}

// SetListenerUp sets the listener's up vector. It defaults to +Y.
func (e *Engine) SetListenerUp(u Vec3) {
	e.setListener(u, func(l *spatial.Listener) { l.Up = u })
}

// ListenerUp returns the listener's up vector.
func (e *Engine) ListenerUp() Vec3 {
	return e.listenerField(func(l *spatial.Listener) Vec3 { return l.Up })
}
