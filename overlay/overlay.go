// Package overlay renders session status to the user: a terminal status
// panel by default, or a frameless desktop window when built with -tags gui.
// Updates flow through a Dispatcher so slow rendering never blocks the
// session state machine.
package overlay

import "unicode/utf8"

// Sink receives status updates. Implementations must tolerate updates
// arriving from the dispatcher goroutine.
type Sink interface {
	ShowRecording()
	ShowProcessing()
	ShowResult(text string)
	ShowError(message string)
	Hide()
}

// maxResultChars bounds how much transcribed text the overlay renders.
const maxResultChars = 150

// Truncate shortens text to max runes for display, keeping whole words where
// possible. The cut never lands inside a multi-byte rune.
func Truncate(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)[:max]
	for i := max - 1; i > max/2; i-- {
		if runes[i] == ' ' {
			runes = runes[:i]
			break
		}
	}
	return string(runes) + "…"
}
