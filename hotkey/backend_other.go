//go:build !linux

package hotkey

// NewBackend returns the registered-hotkey backend, the only one available
// off Linux.
func NewBackend(b Binding) (Backend, error) {
	return NewX(b)
}
