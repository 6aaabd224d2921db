package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/Valeron2206/voice-dictation-pro/encoder"
	"github.com/Valeron2206/voice-dictation-pro/log"
)

var groqAPIURL = "https://api.groq.com/openai/v1/audio/transcriptions"

type Groq struct {
	baseTranscriber
	client *TracedClient
	apiKey string
}

func NewGroq(apiKey string) *Groq {
	g := &Groq{
		client: NewTracedClient(),
		apiKey: apiKey,
	}
	go g.client.Warm(groqAPIURL)
	return g
}

func (g *Groq) Name() string { return "groq" }

type groqResponse struct {
	Text string `json:"text"`
}

func (g *Groq) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	flacData, err := encoder.EncodeFLAC(pcm)
	if err != nil {
		return "", fmt.Errorf("encoding audio: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.flac")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(flacData); err != nil {
		return "", err
	}

	writer.WriteField("model", "whisper-large-v3-turbo")
	writer.WriteField("response_format", "json")
	if g.lang != "" {
		writer.WriteField("language", g.lang)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", groqAPIURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("groq API error %d: %s", resp.StatusCode, string(resp.Body))
	}

	var gResp groqResponse
	if err := json.Unmarshal(resp.Body, &gResp); err != nil {
		return "", fmt.Errorf("groq response parse error: %w", err)
	}

	log.Request("groq", encoder.Duration(pcm), len(pcm), len(flacData), resp.TTFB, resp.Total, resp.ConnReused)
	return gResp.Text, nil
}
