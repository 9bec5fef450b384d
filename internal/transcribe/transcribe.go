// Package transcribe drafts synced subtitles from speech using hosted
// speech-to-text models.
package transcribe

import (
	"context"
	"fmt"
)

// Segment is one transcribed phrase. Times are milliseconds.
type Segment struct {
	Start int
	End   int
	Text  string
}

type Result struct {
	Segments []Segment
	Language string
	Duration int
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// APIKeyEnv names the environment variable holding the provider's key.
func (p Provider) APIKeyEnv() string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

type Options struct {
	Language           string // spoken language of the audio
	TranscriptLanguage string // output language; "native" or empty keeps the spoken one
	Model              string
	Prompt             string
}

func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func secondsToMs(s float64) int {
	if s <= 0 {
		return 0
	}
	return int(s*1000 + 0.5)
}
