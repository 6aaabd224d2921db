package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Valeron2206/voice-dictation-pro/encoder"
	"github.com/Valeron2206/voice-dictation-pro/log"
)

type OpenAI struct {
	baseTranscriber
	client *openai.Client
}

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{client: openai.NewClient(apiKey)}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	wav := encoder.EncodeWAV(pcm)

	start := time.Now()
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(wav),
		Language: o.lang,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}

	log.Request("openai", encoder.Duration(pcm), len(pcm), len(wav), 0, time.Since(start), false)
	return resp.Text, nil
}
