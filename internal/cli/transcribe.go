package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/tala/internal/audio"
	"github.com/mgpai22/tala/internal/format"
	"github.com/mgpai22/tala/internal/transcribe"
	"github.com/spf13/cobra"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [media_file]",
	Short: "Draft synced subtitles from a video or audio file using AI",
	Long: `Transcribe speech into a synced DFXP draft ready for editing.

The audio track is extracted with ffmpeg, split into chunks and sent to the
provider with up to --concurrency requests in flight. Phrases become
subtitles on the media timeline; overlapping phrases are trimmed.

Examples:
  tala transcribe video.mp4 -l en
  tala transcribe talk.mp3 -l ja --transcript-language english --provider openai
  tala transcribe video.mp4 -l en --chunk 300 -o drafts/video.en.dfxp`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().
		String("transcript-language", "native", "Language of the transcript; native keeps the spoken one")
	transcribeCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY env var)")
	transcribeCmd.Flags().String("model", "", "Model to use; defaults to the config or the provider's default")
	transcribeCmd.Flags().String("provider", "", "Transcription provider (gemini, openai); defaults to the config")
	transcribeCmd.Flags().Int("concurrency", 0, "Chunks transcribed at once; defaults to the config")
	transcribeCmd.Flags().Int("chunk", 0, "Chunk length in seconds; defaults to the config")
	transcribeCmd.Flags().String("prompt", "", "Additional context for the transcriber")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := context.Background()

	lang, _ := cmd.Flags().GetString("language")
	transcriptLang, _ := cmd.Flags().GetString("transcript-language")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	chunkSeconds, _ := cmd.Flags().GetInt("chunk")
	prompt, _ := cmd.Flags().GetString("prompt")
	outputPath, _ := cmd.Flags().GetString("output")

	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported media file: %s", mediaPath)
	}
	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("media file not found: %s", mediaPath)
	}
	if lang == "" {
		return fmt.Errorf("language is required: use --language")
	}

	if providerStr == "" {
		providerStr = cfg.Transcription.Provider
	}
	if model == "" {
		model = cfg.Transcription.Model
	}
	if concurrency <= 0 {
		concurrency = cfg.Transcription.Concurrency
	}
	if chunkSeconds <= 0 {
		chunkSeconds = cfg.Transcription.ChunkSeconds
	}

	provider := transcribe.Provider(strings.ToLower(providerStr))
	apiKey, err := resolveAPIKey(provider.APIKeyEnv(), apiKey)
	if err != nil {
		return err
	}

	docLang := lang
	if transcriptLang != "" && transcriptLang != "native" {
		docLang = transcriptLang
	}
	if outputPath == "" {
		outputPath = swapExtension(mediaPath, docLang, format.FormatDFXP)
	}

	transcriber, err := transcribe.Factory(ctx, provider, apiKey, transcribe.Options{
		Language:           lang,
		TranscriptLanguage: transcriptLang,
		Model:              model,
		Prompt:             prompt,
	})
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "tala-transcribe-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()

	opts := audio.DefaultExtractOptions()
	audioPath := filepath.Join(tmpDir, "audio"+opts.Extension())
	logger.Infow("Extracting audio", "media", mediaPath, "output", audioPath)
	if err := audio.Extract(ctx, mediaPath, audioPath, opts); err != nil {
		return err
	}

	chunks, err := audio.Split(ctx, audioPath, chunkSeconds*1000, filepath.Join(tmpDir, "chunks"), 0)
	if err != nil {
		return err
	}
	logger.Infow("Transcribing",
		"provider", provider,
		"chunks", len(chunks),
		"concurrency", concurrency,
		"language", lang,
	)

	result, err := transcribe.TranscribeChunks(ctx, transcriber, chunks, concurrency)
	if err != nil {
		return fmt.Errorf("failed to transcribe: %w", err)
	}

	list := transcribe.ToList(result.Segments, docLang)
	if err := writeList(list, outputPath); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Draft subtitles written: %s\n", absOutput)
	fmt.Printf("  Subtitles: %d\n", list.Len())
	fmt.Printf("  Language: %s\n", docLang)
	return nil
}
