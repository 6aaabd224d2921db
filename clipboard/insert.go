package clipboard

import (
	"fmt"
	"time"
)

// restoreDelay is how long the dictated text stays on the clipboard
// before the previous contents come back. Long enough for the focused
// application to service the paste keystroke.
const restoreDelay = 600 * time.Millisecond

// settleDelay lets clipboard managers observe the new contents before
// the paste keystroke fires.
const settleDelay = 50 * time.Millisecond

// Insert places text at the cursor of the focused application by
// copying it to the clipboard and synthesizing a paste keystroke.
// The previous clipboard contents are restored afterwards.
func Insert(text string) error {
	prev, prevErr := Read()

	if err := Copy(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	time.Sleep(settleDelay)

	if err := Paste(); err != nil {
		return fmt.Errorf("paste keystroke: %w", err)
	}

	if prevErr == nil {
		go func(saved string) {
			time.Sleep(restoreDelay)
			Copy(saved)
		}(prev)
	}
	return nil
}
