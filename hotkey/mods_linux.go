//go:build linux

package hotkey

import (
	"fmt"

	xhk "golang.design/x/hotkey"
)

func xhkModifiers(name string) ([]xhk.Modifier, error) {
	switch name {
	case "alt":
		return []xhk.Modifier{xhk.Mod1}, nil
	case "ctrl":
		return []xhk.Modifier{xhk.ModCtrl}, nil
	case "shift":
		return []xhk.Modifier{xhk.ModShift}, nil
	}
	return nil, fmt.Errorf("unknown modifier key %q", name)
}
