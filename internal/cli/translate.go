package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/tala/internal/format"
	"github.com/mgpai22/tala/internal/subtitle"
	"github.com/mgpai22/tala/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [reference_file]",
	Short: "Translate a reference subtitle list into a working language using AI",
	Long: `Translate a reference subtitle document into another language using AI.

The working document takes its timing and paragraphs from the reference.
When --working names an existing document, only its empty subtitles are
translated, so finished text is never overwritten.

Examples:
  tala translate video.en.dfxp --target-language french --target-code fr
  tala translate video.en.srt --target-language ja --provider anthropic -o video.ja.vtt
  tala translate video.en.dfxp --target-language es --working video.es.dfxp`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		String("target-code", "", "Language code of the working document (defaults to --target-language)")
	translateCmd.Flags().
		String("working", "", "Existing working document to fill in")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY env var)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	translateCmd.Flags().
		String("provider", "", "Translation provider (gemini, openai, anthropic); defaults to the config")
	translateCmd.Flags().
		Int("concurrency", 0, "Number of parallel translation workers; defaults to the config")
	translateCmd.Flags().
		Int("batch-size", 0, "Number of subtitles per API request; defaults to the config")
	translateCmd.Flags().
		String("prompt", "", "Additional instructions for the translator")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	referencePath := args[0]
	ctx := context.Background()

	targetLang, _ := cmd.Flags().GetString("target-language")
	targetCode, _ := cmd.Flags().GetString("target-code")
	workingPath, _ := cmd.Flags().GetString("working")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	providerStr, _ := cmd.Flags().GetString("provider")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	prompt, _ := cmd.Flags().GetString("prompt")
	outputPath, _ := cmd.Flags().GetString("output")
	inputLang, _ := cmd.Flags().GetString("language")

	if providerStr == "" {
		providerStr = cfg.Translation.Provider
	}
	if model == "" {
		model = cfg.Translation.Model
	}
	if concurrency == 0 {
		concurrency = cfg.Translation.Concurrency
	}
	if batchSize == 0 {
		batchSize = cfg.Translation.BatchSize
	}
	if targetCode == "" {
		targetCode = targetLang
	}

	if inputLang != "" &&
		strings.EqualFold(strings.TrimSpace(inputLang), strings.TrimSpace(targetLang)) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	provider := translate.Provider(strings.ToLower(providerStr))
	if err := checkModel(provider, model, modelOverride); err != nil {
		return err
	}
	apiKey, err := resolveAPIKey(provider.APIKeyEnv(), apiKey)
	if err != nil {
		return err
	}

	reference, err := loadList(referencePath, inputLang)
	if err != nil {
		return err
	}
	if reference.Len() == 0 {
		return fmt.Errorf("reference document contains no subtitles")
	}

	working := subtitle.NewList()
	working.LoadEmptySubs(targetCode)
	if workingPath != "" {
		if _, statErr := os.Stat(workingPath); statErr == nil {
			if working, err = loadList(workingPath, targetCode); err != nil {
				return err
			}
		}
		if outputPath == "" {
			outputPath = workingPath
		}
	}
	if outputPath == "" {
		outputPath = swapExtension(referencePath, targetCode, format.FormatDFXP)
	}

	logger.Infow("Starting subtitle translation",
		"reference", referencePath,
		"output", outputPath,
		"provider", provider,
		"target_language", targetLang,
		"input_language", inputLang,
		"model", model,
		"subtitles", reference.Len(),
	)

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		Prompt:         prompt,
		BatchSize:      batchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	applied, err := translate.TranslateList(ctx, translator, reference, working, concurrency)
	if err != nil {
		return err
	}
	logger.Infow("Translation complete", "applied", applied)

	if err := writeList(working, outputPath); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles translated successfully: %s\n", absOutput)
	fmt.Printf("  Translated: %d of %d\n", applied, working.Len())
	fmt.Printf("  Target language: %s\n", targetLang)
	return nil
}
