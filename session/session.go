// Package session owns the single dictation session and its state machine.
//
// All state transitions go through Controller.Handle (or the async
// transcription completion path), which serializes them under one mutex so a
// guard check and its action are atomic. No collaborator mutates session
// state directly.
package session

import "context"

// State is the session's lifecycle phase. It always cycles back to Idle.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
	StateConfirming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateConfirming:
		return "confirming"
	}
	return "unknown"
}

// Intent is an abstract user action derived from raw input events.
type Intent int

const (
	IntentBegin Intent = iota
	IntentEnd
	IntentConfirm
	IntentCancel
)

func (i Intent) String() string {
	switch i {
	case IntentBegin:
		return "begin"
	case IntentEnd:
		return "end"
	case IntentConfirm:
		return "confirm"
	case IntentCancel:
		return "cancel"
	}
	return "unknown"
}

// Cue names a feedback sound.
type Cue int

const (
	CueStart Cue = iota
	CueStop
	CueError
	CueSuccess
)

// Recorder owns the microphone stream. Arm opens the stream and starts
// accumulating PCM; Disarm stops it and hands the buffer to the caller.
// Implementations must tolerate repeated arm/disarm cycles.
type Recorder interface {
	Arm() error
	Disarm() []byte
}

// Transcriber converts captured PCM to text. It may block for seconds and is
// only ever called off the controller's lock.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []byte) (string, error)
}

// StatusSink is the on-screen indicator. Every method is safe to call from
// any goroutine and takes effect asynchronously on the sink's own goroutine.
type StatusSink interface {
	ShowRecording()
	ShowProcessing()
	ShowResult(text string)
	ShowError(message string)
	Hide()
}

// Inserter places confirmed text at the cursor of the focused application.
type Inserter interface {
	Insert(text string) error
}

// CuePlayer plays a feedback sound, fire-and-forget.
type CuePlayer interface {
	Play(c Cue)
}
