// Package hotkey observes the global keyboard and turns raw key events into
// session intents. The mapping logic lives in Mapper and is shared by every
// backend, so the semantics are identical whether events come from the
// privileged evdev reader or the best-effort registered-hotkey fallback.
package hotkey

// Role classifies a raw key against the configured binding.
type Role int

const (
	RoleOther Role = iota
	RoleConfirm
	RoleCancel
	RoleModifier
)

// Kind is the raw event type.
type Kind int

const (
	KeyDown Kind = iota
	KeyUp
	ModifierChange
)

// Event is one raw keyboard event as seen by a backend. ModifierHeld is the
// modifier state at the time of the event.
type Event struct {
	Kind         Kind
	Role         Role
	ModifierHeld bool
}

// Binding names the three keys of the hotkey scheme. Fixed at startup.
type Binding struct {
	Modifier string // "alt", "ctrl", "shift"
	Confirm  string // "space", "enter"
	Cancel   string // "esc"
}

func DefaultBinding() Binding {
	return Binding{Modifier: "alt", Confirm: "space", Cancel: "esc"}
}

// Backend delivers raw key events into a Mapper. Only one backend is active
// at a time.
type Backend interface {
	// Start begins delivering events to the mapper. It returns an error if
	// the underlying event source cannot be opened.
	Start(m *Mapper) error
	Stop()
	// Name identifies the backend for diagnostics.
	Name() string
}
