//go:build linux

package hotkey

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// evdev keycodes from linux/input-event-codes.h
const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0
	keyRepeat  = 2

	keyEsc    = 1
	keyEnter  = 28
	keyLCtrl  = 29
	keyLShift = 42
	keyRShift = 54
	keySpace  = 57
	keyLAlt   = 56
	keyRCtrl  = 97
	keyRAlt   = 100
)

const inputEventSize = 24

var evdevKeys = map[string][]uint16{
	"alt":   {keyLAlt, keyRAlt},
	"ctrl":  {keyLCtrl, keyRCtrl},
	"shift": {keyLShift, keyRShift},
	"space": {keySpace},
	"enter": {keyEnter},
	"esc":   {keyEsc},
}

// EvdevBackend reads raw key events from every keyboard under /dev/input.
// It is the privileged backend: it sees key-up and modifier changes that the
// registered-hotkey fallback cannot observe. Reading evdev cannot suppress
// event propagation, so the mapper's consume decision is advisory here.
type EvdevBackend struct {
	binding  Binding
	modifier []uint16
	confirm  []uint16
	cancel   []uint16

	files []*os.File
	stop  chan struct{}
	once  sync.Once
}

func NewEvdev(b Binding) (*EvdevBackend, error) {
	be := &EvdevBackend{binding: b}
	var ok bool
	if be.modifier, ok = evdevKeys[b.Modifier]; !ok {
		return nil, fmt.Errorf("unknown modifier key %q", b.Modifier)
	}
	if be.confirm, ok = evdevKeys[b.Confirm]; !ok {
		return nil, fmt.Errorf("unknown confirm key %q", b.Confirm)
	}
	if be.cancel, ok = evdevKeys[b.Cancel]; !ok {
		return nil, fmt.Errorf("unknown cancel key %q", b.Cancel)
	}
	return be, nil
}

func (b *EvdevBackend) Name() string { return "evdev" }

func (b *EvdevBackend) Start(m *Mapper) error {
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	b.stop = make(chan struct{})

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		b.files = append(b.files, f)
		go b.readEvents(f, m)
	}

	if len(b.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}

	return nil
}

func (b *EvdevBackend) readEvents(f *os.File, m *Mapper) {
	buf := make([]byte, inputEventSize*16)
	modifierHeld := false

	for {
		select {
		case <-b.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

			if evType != evKey {
				continue
			}

			pressed := evValue == keyPress || evValue == keyRepeat
			released := evValue == keyRelease

			switch {
			case contains(b.modifier, evCode):
				was := modifierHeld
				modifierHeld = pressed || (!released && modifierHeld)
				if was != modifierHeld {
					m.Feed(Event{Kind: ModifierChange, Role: RoleModifier, ModifierHeld: modifierHeld})
				}
			case contains(b.confirm, evCode):
				if released {
					m.Feed(Event{Kind: KeyUp, Role: RoleConfirm, ModifierHeld: modifierHeld})
				} else {
					m.Feed(Event{Kind: KeyDown, Role: RoleConfirm, ModifierHeld: modifierHeld})
				}
			case contains(b.cancel, evCode):
				if evValue == keyPress {
					m.Feed(Event{Kind: KeyDown, Role: RoleCancel, ModifierHeld: modifierHeld})
				}
			}
		}
	}
}

func (b *EvdevBackend) Stop() {
	b.once.Do(func() {
		if b.stop != nil {
			close(b.stop)
		}
		for _, f := range b.files {
			f.Close()
		}
	})
}

func contains(codes []uint16, code uint16) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var keyboards []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		if isKeyboard(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	caps := strings.TrimSpace(string(data))
	return len(caps) > 10
}

// Diagnose reports whether the privileged backend can run.
func Diagnose() (string, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	var opened string
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			opened = path
			break
		}
	}
	if opened == "" {
		return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
	}

	return fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), opened), nil
}
