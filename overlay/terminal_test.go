package overlay

import (
	"strings"
	"testing"
	"time"
)

// SetInfo must never block, even while nothing is consuming the panel's
// message loop yet.
func TestSetInfoReturnsWithoutPanelRunning(t *testing.T) {
	term := NewTerminal()

	done := make(chan struct{})
	go func() {
		term.SetInfo("mic: default", "provider: groq", "Alt+Space")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("SetInfo blocked with the panel not running")
	}

	got := term.snapshotInfo()
	if got.Device != "mic: default" || got.Provider != "provider: groq" || got.Hotkey != "Alt+Space" {
		t.Errorf("info not stored: %+v", got)
	}
}

func TestInitDeliversStoredInfo(t *testing.T) {
	term := NewTerminal()
	term.SetInfo("mic: default", "provider: groq", "Alt+Space")

	m := terminalModel{fetchInfo: term.snapshotInfo}
	info := term.snapshotInfo()
	next, _ := m.Update(info)
	got := next.(terminalModel)
	if got.deviceLine != "mic: default" || got.providerLine != "provider: groq" || got.hotkeyLine != "Alt+Space" {
		t.Errorf("info msg not applied: %+v", got)
	}
	view := got.View()
	if !strings.Contains(view, "mic: default") || !strings.Contains(view, "Alt+Space") {
		t.Errorf("info lines missing from view:\n%s", view)
	}
}
