package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/tala/internal/format"
	"github.com/mgpai22/tala/internal/video"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [video_file] [subtitle_file]",
	Short: "Burn subtitles into a copy of a video",
	Long: `Render subtitles onto the video frames with ffmpeg.

DFXP documents are converted to ASS first, keeping bold, italic and
underline styling.

Examples:
  tala render video.mp4 video.en.dfxp
  tala render video.mp4 video.en.srt -o video.subbed.mp4 --font-size 28`,
	Args: cobra.ExactArgs(2),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	defaults := video.DefaultEmbedOptions()
	renderCmd.Flags().String("font", defaults.FontName, "Font name")
	renderCmd.Flags().Int("font-size", defaults.FontSize, "Font size")
	renderCmd.Flags().Int("margin", defaults.MarginV, "Bottom margin")
}

func runRender(cmd *cobra.Command, args []string) error {
	videoPath, subtitlePath := args[0], args[1]
	ctx := context.Background()

	outputPath, _ := cmd.Flags().GetString("output")
	fontName, _ := cmd.Flags().GetString("font")
	fontSize, _ := cmd.Flags().GetInt("font-size")
	margin, _ := cmd.Flags().GetInt("margin")

	if outputPath == "" {
		ext := filepath.Ext(videoPath)
		outputPath = strings.TrimSuffix(videoPath, ext) + ".subtitled" + ext
	}

	f, err := format.FromExtension(subtitlePath)
	if err != nil {
		return err
	}
	if f == format.FormatDFXP {
		list, err := loadList(subtitlePath, "")
		if err != nil {
			return err
		}
		tmpDir, err := os.MkdirTemp("", "tala-render-*")
		if err != nil {
			return fmt.Errorf("failed to create temp directory: %w", err)
		}
		defer func() {
			_ = os.RemoveAll(tmpDir)
		}()
		subtitlePath = filepath.Join(tmpDir, "subtitles.ass")
		if err := format.Export(list, format.FormatASS, subtitlePath); err != nil {
			return err
		}
	}

	logger.Infow("Rendering subtitles", "video", videoPath, "subtitles", subtitlePath, "output", outputPath)
	err = video.BurnSubtitles(ctx, videoPath, subtitlePath, outputPath, video.EmbedOptions{
		FontName: fontName,
		FontSize: fontSize,
		MarginV:  margin,
	})
	if err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Video rendered: %s\n", absOutput)
	return nil
}
