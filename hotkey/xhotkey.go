package hotkey

import (
	"fmt"
	"sync"

	xhk "golang.design/x/hotkey"
)

var xhkKeys = map[string]xhk.Key{
	"space": xhk.KeySpace,
	"enter": xhk.KeyReturn,
	"esc":   xhk.KeyEscape,
}

// XBackend is the best-effort fallback built on registered global hotkeys.
// The OS only reports press/release of the registered combination, so the
// modifier-released-first path is not observable here; releasing the combo
// still delivers a confirm key-up, which is enough for the mapping rules.
// Registered hotkeys are consumed by the OS unconditionally.
type XBackend struct {
	binding Binding

	combo  *xhk.Hotkey
	cancel *xhk.Hotkey
	stop   chan struct{}
	once   sync.Once
}

func NewX(b Binding) (*XBackend, error) {
	mods, err := xhkModifiers(b.Modifier)
	if err != nil {
		return nil, err
	}
	confirmKey, ok := xhkKeys[b.Confirm]
	if !ok {
		return nil, fmt.Errorf("unknown confirm key %q", b.Confirm)
	}
	cancelKey, ok := xhkKeys[b.Cancel]
	if !ok {
		return nil, fmt.Errorf("unknown cancel key %q", b.Cancel)
	}
	return &XBackend{
		binding: b,
		combo:   xhk.New(mods, confirmKey),
		cancel:  xhk.New(nil, cancelKey),
	}, nil
}

func (b *XBackend) Name() string { return "registered-hotkey" }

func (b *XBackend) Start(m *Mapper) error {
	if err := b.combo.Register(); err != nil {
		return fmt.Errorf("registering hotkey: %w", err)
	}
	// The cancel key is optional: without it the fallback still records,
	// it just cannot cancel mid-session.
	cancelOK := b.cancel.Register() == nil

	b.stop = make(chan struct{})

	go func() {
		for {
			select {
			case <-b.combo.Keydown():
				m.Feed(Event{Kind: KeyDown, Role: RoleConfirm, ModifierHeld: true})
			case <-b.combo.Keyup():
				m.Feed(Event{Kind: KeyUp, Role: RoleConfirm, ModifierHeld: true})
			case <-b.stop:
				return
			}
		}
	}()

	if cancelOK {
		go func() {
			for {
				select {
				case <-b.cancel.Keydown():
					m.Feed(Event{Kind: KeyDown, Role: RoleCancel})
				case <-b.stop:
					return
				}
			}
		}()
	}

	return nil
}

func (b *XBackend) Stop() {
	b.once.Do(func() {
		if b.stop != nil {
			close(b.stop)
		}
		b.combo.Unregister()
		b.cancel.Unregister()
	})
}
