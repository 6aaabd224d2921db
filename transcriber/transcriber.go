// Package transcriber converts captured audio to text through one of the
// hosted Whisper providers. One implementation is selected at startup; the
// session controller only ever sees the Transcriber interface.
package transcriber

import (
	"context"
	"fmt"
	"os"
)

type Transcriber interface {
	Name() string
	SetLanguage(lang string)
	GetLanguage() string
	// Transcribe blocks for the duration of the provider round trip. It is
	// only ever called from the session's background task, never from an
	// event callback.
	Transcribe(ctx context.Context, pcm []byte) (string, error)
}

type baseTranscriber struct {
	lang string
}

func (b *baseTranscriber) SetLanguage(lang string) { b.lang = lang }

func (b *baseTranscriber) GetLanguage() string { return b.lang }

// New selects a provider from the environment.
func New() (Transcriber, error) {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		return NewGroq(key), nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAI(key), nil
	}
	return nil, fmt.Errorf("set GROQ_API_KEY or OPENAI_API_KEY environment variable")
}
