//go:build windows

package hotkey

import (
	"fmt"

	xhk "golang.design/x/hotkey"
)

func xhkModifiers(name string) ([]xhk.Modifier, error) {
	switch name {
	case "alt":
		return []xhk.Modifier{xhk.ModAlt}, nil
	case "ctrl":
		return []xhk.Modifier{xhk.ModCtrl}, nil
	case "shift":
		return []xhk.Modifier{xhk.ModShift}, nil
	}
	return nil, fmt.Errorf("unknown modifier key %q", name)
}

// Diagnose reports whether global key observation is available.
func Diagnose() (string, error) {
	return "registered-hotkey backend available", nil
}
