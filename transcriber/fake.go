package transcriber

import (
	"context"
	"sync/atomic"
)

// Fake returns canned results for tests. When Release is set, Transcribe
// blocks until the channel fires regardless of the context, so a test can
// deterministically deliver a completion after the session moved on.
type Fake struct {
	baseTranscriber
	Text    string
	Err     error
	Release chan struct{}

	calls atomic.Int32
}

func NewFake(text string, err error) *Fake {
	return &Fake{Text: text, Err: err}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Transcribe(_ context.Context, _ []byte) (string, error) {
	f.calls.Add(1)
	if f.Release != nil {
		<-f.Release
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

// Calls counts completed or in-flight Transcribe invocations.
func (f *Fake) Calls() int {
	return int(f.calls.Load())
}
