package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"nearby_market/internal/adapters/observability"
	"nearby_market/internal/domain"
)

// Whisper transcribes one recorded utterance with the OpenAI audio API.
type Whisper struct {
	client   *openai.Client
	model    string
	language string
}

type Config struct {
	APIKey   string
	BaseURL  string // optional, for proxies and tests
	Model    string // default: whisper-1
	Language string // ISO-639-1 hint, empty lets the model detect it
}

// New returns nil when no API key is configured; a nil recognizer makes
// voice input report itself unsupported.
func New(cfg Config) *Whisper {
	if cfg.APIKey == "" {
		return nil
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	return &Whisper{client: openai.NewClientWithConfig(oc), model: cfg.Model, language: cfg.Language}
}

// Recognizer keeps a nil *Whisper from turning into a non-nil interface.
func (w *Whisper) Recognizer() domain.VoiceRecognizer {
	if w == nil {
		return nil
	}
	return w
}

var errEmptyTranscript = errors.New("no speech recognized")

func (w *Whisper) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if filename == "" {
		filename = "speech.webm"
	}
	start := time.Now()
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: filename,
		Reader:   audio,
		Language: w.language,
	})
	status := 200
	if err != nil {
		status = 0
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.HTTPStatusCode
		}
	}
	observability.ObserveExternal("openai", "audio/transcriptions", status, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errEmptyTranscript
	}
	return text, nil
}
