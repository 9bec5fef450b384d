package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mgpai22/tala/internal/format"
	"github.com/mgpai22/tala/internal/subtitle"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new [dfxp_file]",
	Short: "Create an empty subtitle document",
	Long: `Create an empty DFXP document for a language.

Examples:
  tala new intro.dfxp -l en --title "Intro"`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

var importCmd = &cobra.Command{
	Use:   "import [subtitle_file]",
	Short: "Convert an SRT, VTT or ASS file to DFXP",
	Long: `Convert a timed subtitle file to a DFXP document.

Bold, italic and underline markup is kept. Cues are ordered by start time.

Examples:
  tala import video.srt -l en
  tala import video.ass -o video.en.dfxp`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [subtitle_file]",
	Short: "Convert subtitles to SRT, VTT, ASS or DFXP",
	Long: `Convert a subtitle document to another format.

Subtitles that are not fully synced are left out of timed formats.

Examples:
  tala export video.en.dfxp --format srt
  tala export video.en.dfxp -o captions/video.vtt`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var checkCmd = &cobra.Command{
	Use:   "check [subtitle_file]",
	Short: "Validate a subtitle document and list readability warnings",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(newCmd, importCmd, exportCmd, checkCmd)

	newCmd.Flags().String("title", "", "Document title")
	newCmd.Flags().String("description", "", "Document description")

	exportCmd.Flags().
		StringP("format", "f", "", "Output format (srt, vtt, ass, dfxp); defaults to the output extension")

	checkCmd.Flags().Bool("strict", false, "Fail when any subtitle has a readability warning")
}

func runNew(cmd *cobra.Command, args []string) error {
	path := args[0]
	lang, _ := cmd.Flags().GetString("language")
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")

	if lang == "" {
		return fmt.Errorf("language is required: use --language")
	}

	list := subtitle.NewList()
	list.LoadEmptySubs(lang)
	list.SetTitle(title)
	list.SetDescription(description)

	if err := writeList(list, path); err != nil {
		return err
	}
	logger.Infow("Created document", "path", path, "language", lang)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	lang, _ := cmd.Flags().GetString("language")
	outputPath, _ := cmd.Flags().GetString("output")

	list, err := loadList(inputPath, lang)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = swapExtension(inputPath, "", format.FormatDFXP)
	}
	if err := writeList(list, outputPath); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles imported: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", list.Len())
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	lang, _ := cmd.Flags().GetString("language")
	outputPath, _ := cmd.Flags().GetString("output")
	formatStr, _ := cmd.Flags().GetString("format")

	list, err := loadList(inputPath, lang)
	if err != nil {
		return err
	}

	var f format.Format
	switch {
	case formatStr != "":
		if f, err = format.Parse(formatStr); err != nil {
			return err
		}
	case outputPath != "":
		if f, err = format.FromExtension(outputPath); err != nil {
			return err
		}
	default:
		f = format.FormatSRT
	}
	if outputPath == "" {
		outputPath = swapExtension(inputPath, "", f)
	}

	if skipped := list.Len() - list.SyncedCount(); skipped > 0 && f != format.FormatDFXP {
		logger.Warnw("Skipping unsynced subtitles", "count", skipped)
	}
	if err := format.Export(list, f, outputPath); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles exported: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", list.SyncedCount())
	fmt.Printf("  Format: %s\n", f)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	lang, _ := cmd.Flags().GetString("language")
	strict, _ := cmd.Flags().GetBool("strict")

	list, err := loadList(args[0], lang)
	if err != nil {
		return err
	}
	if err := list.Validate(); err != nil {
		return fmt.Errorf("invalid subtitle list: %w", err)
	}

	warned := 0
	for _, s := range list.Subtitles() {
		warnings := s.Warnings()
		if len(warnings) == 0 {
			continue
		}
		warned++
		fmt.Printf("  #%d %v %q\n", s.ID(), warnings, s.PlainText())
	}

	fmt.Printf("Subtitles: %d (synced %d)\n", list.Len(), list.SyncedCount())
	fmt.Printf("  Needs transcription: %v\n", list.NeedsAnyTranscribed())
	fmt.Printf("  Needs sync: %v\n", list.NeedsAnySynced())
	fmt.Printf("  Complete: %v\n", list.IsComplete())
	fmt.Printf("  With warnings: %d\n", warned)

	if strict && warned > 0 {
		return fmt.Errorf("%d subtitles have readability warnings", warned)
	}
	return nil
}
