// Package config loads the optional TOML configuration file. Missing
// file means defaults; a malformed or invalid file is an error so typos
// never silently fall back.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type HotkeyConfig struct {
	Modifier string `toml:"modifier"`
	Confirm  string `toml:"confirm"`
	Cancel   string `toml:"cancel"`
}

type Config struct {
	Hotkey        HotkeyConfig `toml:"hotkey"`
	Language      string       `toml:"language"`
	MinDurationMS int          `toml:"min_duration_ms"`
	Sounds        bool         `toml:"sounds"`
	Insert        bool         `toml:"insert"`
	Device        string       `toml:"device"`
}

var validModifiers = map[string]bool{"alt": true, "ctrl": true, "shift": true}
var validKeys = map[string]bool{"space": true, "enter": true, "esc": true}

func Default() Config {
	return Config{
		Hotkey: HotkeyConfig{
			Modifier: "alt",
			Confirm:  "space",
			Cancel:   "esc",
		},
		MinDurationMS: 300,
		Sounds:        true,
		Insert:        true,
	}
}

// DefaultPath returns the conventional config location, or "" when the
// home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, "dictate", "config.toml")
}

// Load reads the config at path, applying defaults for absent keys.
// A missing file returns defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !validModifiers[c.Hotkey.Modifier] {
		return fmt.Errorf("unknown hotkey modifier %q (alt, ctrl, shift)", c.Hotkey.Modifier)
	}
	if !validKeys[c.Hotkey.Confirm] {
		return fmt.Errorf("unknown confirm key %q (space, enter, esc)", c.Hotkey.Confirm)
	}
	if !validKeys[c.Hotkey.Cancel] {
		return fmt.Errorf("unknown cancel key %q (space, enter, esc)", c.Hotkey.Cancel)
	}
	if c.Hotkey.Confirm == c.Hotkey.Cancel {
		return fmt.Errorf("confirm and cancel both bound to %q", c.Hotkey.Confirm)
	}
	if c.MinDurationMS < 0 {
		return fmt.Errorf("min_duration_ms must be non-negative, got %d", c.MinDurationMS)
	}
	return nil
}
