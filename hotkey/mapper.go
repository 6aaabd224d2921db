package hotkey

import (
	"sync"

	"github.com/Valeron2206/voice-dictation-pro/session"
)

// Mapper applies the intent mapping rules to raw key events. For each event
// it decides synchronously whether the event is consumed (suppressed from
// the rest of the OS, where the backend supports suppression) and whether an
// intent is emitted.
//
// It tracks whether the current recording was started through rule 3 with
// the modifier actually held, so a stale key-up or unrelated modifier
// flutter never produces a spurious EndIntent.
type Mapper struct {
	stateFn func() session.State
	emit    func(session.Intent)

	mu sync.Mutex
	// confirmActive is set when a recording was begun by the confirm key
	// (rule 3) and cleared on its release.
	confirmActive bool
	// modifierArmed is set when the modifier was held at recording start;
	// its release while recording ends the session (rule 6).
	modifierArmed bool
}

func NewMapper(stateFn func() session.State, emit func(session.Intent)) *Mapper {
	return &Mapper{stateFn: stateFn, emit: emit}
}

// Feed maps one raw event. It returns true when the event should be
// suppressed. Rules are evaluated in order against the state read now; the
// emitted intent is applied by the controller under its own lock, so a
// racing duplicate simply becomes a no-op there.
func (m *Mapper) Feed(ev Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.stateFn()

	switch ev.Kind {
	case KeyDown:
		if ev.Role == RoleCancel && st != session.StateIdle {
			m.confirmActive = false
			m.modifierArmed = false
			m.emit(session.IntentCancel)
			return true
		}
		if ev.Role == RoleConfirm {
			switch {
			case st == session.StateConfirming:
				m.emit(session.IntentConfirm)
				return true
			case st == session.StateIdle && ev.ModifierHeld:
				m.confirmActive = true
				m.modifierArmed = true
				m.emit(session.IntentBegin)
				return true
			case st == session.StateRecording:
				// Swallow key auto-repeat while recording.
				return true
			}
		}

	case KeyUp:
		if ev.Role == RoleConfirm {
			wasActive := m.confirmActive
			m.confirmActive = false
			if wasActive && st == session.StateRecording {
				m.emit(session.IntentEnd)
				return true
			}
		}

	case ModifierChange:
		if !ev.ModifierHeld {
			wasArmed := m.modifierArmed
			m.modifierArmed = false
			if wasArmed && st == session.StateRecording {
				// Modifier released before the key; end the session. The
				// later confirm key-up finds the state already changed and
				// maps to nothing.
				m.emit(session.IntentEnd)
			}
		}
	}

	return false
}
