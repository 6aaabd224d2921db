//go:build linux

package hotkey

import "github.com/Valeron2206/voice-dictation-pro/log"

// NewBackend returns the privileged evdev backend when the input devices are
// readable, otherwise the registered-hotkey fallback.
func NewBackend(b Binding) (Backend, error) {
	if _, err := Diagnose(); err == nil {
		return NewEvdev(b)
	} else {
		log.Warnf("evdev unavailable, falling back to registered hotkeys: %v", err)
	}
	return NewX(b)
}
