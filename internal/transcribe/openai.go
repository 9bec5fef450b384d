package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mgpai22/tala/internal/video"
)

// implements Transcriber using the OpenAI audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// verbose_json response from the transcription and translation endpoints
type whisperVerboseResponse struct {
	Text     string              `json:"text"`
	Segments []transcriptSegment `json:"segments"`
	Language string              `json:"language"`
	Duration float64             `json:"duration"`
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*Result, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var durationMs int
	if info, err := video.Probe(ctx, audioPath); err == nil {
		durationMs = info.DurationMs()
	}

	if t.shouldUseTranslation() {
		return t.translate(ctx, file, durationMs)
	}
	return t.transcribe(ctx, file, durationMs)
}

// shouldUseTranslation is true when an English transcript is requested,
// which the translations endpoint produces from any spoken language.
func (t *OpenAITranscriber) shouldUseTranslation() bool {
	lang := strings.ToLower(strings.TrimSpace(t.options.TranscriptLanguage))
	return lang == "english" || lang == "en"
}

func (t *OpenAITranscriber) translate(ctx context.Context, file *os.File, durationMs int) (*Result, error) {
	params := openai.AudioTranslationNewParams{
		File:           file,
		Model:          openai.AudioModel(t.model),
		ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Translations.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	return parseVerboseJSON(resp.RawJSON(), resp.Text, "en", durationMs)
}

func (t *OpenAITranscriber) transcribe(ctx context.Context, file *os.File, durationMs int) (*Result, error) {
	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	return parseVerboseJSON(resp.RawJSON(), resp.Text, t.options.Language, durationMs)
}

// parseVerboseJSON reads timed segments. A reply with text but no
// segments becomes one segment spanning the reported duration, or
// fallbackMs when the reply has none.
func parseVerboseJSON(rawJSON, fallbackText, lang string, fallbackMs int) (*Result, error) {
	var resp whisperVerboseResponse
	if rawJSON != "" {
		if err := json.Unmarshal([]byte(rawJSON), &resp); err != nil {
			return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
		}
	}
	if resp.Text == "" {
		resp.Text = fallbackText
	}
	if resp.Language != "" && lang == "" {
		lang = resp.Language
	}

	result := &Result{Language: lang, Duration: secondsToMs(resp.Duration)}
	for _, s := range toSegments(resp.Segments) {
		if s.Text != "" {
			result.Segments = append(result.Segments, s)
		}
	}

	if len(result.Segments) == 0 {
		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return nil, fmt.Errorf("no segments or text in response")
		}
		if result.Duration == 0 {
			result.Duration = fallbackMs
		}
		if result.Duration == 0 {
			return nil, fmt.Errorf("response has text but no timing")
		}
		result.Segments = []Segment{{Start: 0, End: result.Duration, Text: text}}
	}
	return result, nil
}
