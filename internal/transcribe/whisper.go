package transcribe

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Whisper transcribes audio files through an OpenAI-compatible
// audio-transcriptions endpoint. The default wiring points it at
// Groq-hosted whisper-large-v3.
type Whisper struct {
	client *openai.Client
	model  string
}

type Option func(*options)

type options struct {
	baseURL string
}

// WithBaseURL points the client at a non-OpenAI host.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

func NewWhisper(apiKey, model string, opts ...Option) *Whisper {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	config := openai.DefaultConfig(apiKey)
	if o.baseURL != "" {
		config.BaseURL = o.baseURL
	}
	if strings.TrimSpace(model) == "" {
		model = "whisper-large-v3"
	}

	return &Whisper{client: openai.NewClientWithConfig(config), model: model}
}

// Transcribe converts the audio file at path to plain transcript text.
func (w *Whisper) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: path,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("whisper: empty transcript for %s", path)
	}
	return text, nil
}
