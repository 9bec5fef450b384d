package cli

import (
	"github.com/mgpai22/tala/internal/config"
	"github.com/mgpai22/tala/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tala",
	Short: "Subtitle authoring: sync, edit, translate and version subtitles",
	Long: `Tala is a subtitle authoring tool built around DFXP documents.

It syncs subtitles to a video from the keyboard, edits text and timing on
a timeline, converts between DFXP, SRT, VTT and ASS, machine-translates a
reference language, and keeps numbered versions per video and language.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Debugw("Loaded config", "path", cfg.Path(), "store", cfg.StorePath)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code (e.g., en, es, fr)")
}
