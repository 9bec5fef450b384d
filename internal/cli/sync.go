package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mgpai22/tala/internal/player"
	"github.com/mgpai22/tala/internal/session"
	"github.com/mgpai22/tala/internal/store"
	"github.com/mgpai22/tala/internal/subtitle"
	"github.com/mgpai22/tala/internal/tui"
	"github.com/mgpai22/tala/internal/video"
	"github.com/spf13/cobra"
)

// autosaveInterval applies when the config enables autosave.
const autosaveInterval = 30 * time.Second

var syncCmd = &cobra.Command{
	Use:   "sync [subtitle_file]",
	Short: "Sync and edit subtitles in the terminal",
	Long: `Open the terminal editor on a subtitle document.

The playhead runs on a clock as long as the video (probed with ffprobe, or
given with --duration). Press s or down to start the next subtitle at the
playhead and e or up to end it; drag subtitles on the timeline to adjust
them. ctrl+s saves back to the file, or as a new version in the store when
--video-id is given.

Examples:
  tala sync video.en.dfxp --video video.mp4
  tala sync video.fr.dfxp --duration 95000 --reference video.en.dfxp
  tala sync video.en.dfxp --video video.mp4 --video-id intro -l en`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().String("video", "", "Video file used for the playhead duration")
	syncCmd.Flags().Int("duration", 0, "Video duration in ms, instead of probing --video")
	syncCmd.Flags().String("reference", "", "Reference document shown alongside the working one")
	syncCmd.Flags().String("video-id", "", "Save versions to the store under this video id")
}

func runSync(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := context.Background()

	lang, _ := cmd.Flags().GetString("language")
	videoPath, _ := cmd.Flags().GetString("video")
	duration, _ := cmd.Flags().GetInt("duration")
	referencePath, _ := cmd.Flags().GetString("reference")
	videoID, _ := cmd.Flags().GetString("video-id")

	if duration <= 0 && videoPath != "" {
		info, err := video.Probe(ctx, videoPath)
		if err != nil {
			return fmt.Errorf("failed to probe video: %w", err)
		}
		duration = info.DurationMs()
		logger.Infow("Probed video", "path", videoPath, "duration_ms", duration, "width", info.Width, "height", info.Height)
	}

	working := subtitle.NewList()
	if _, err := os.Stat(path); err == nil {
		if working, err = loadList(path, lang); err != nil {
			return err
		}
	} else {
		if lang == "" {
			return fmt.Errorf("language is required for a new document: use --language")
		}
		working.LoadEmptySubs(lang)
	}

	var reference *subtitle.List
	if referencePath != "" {
		var err error
		if reference, err = loadList(referencePath, ""); err != nil {
			return err
		}
	}

	var persister session.Persister = &filePersister{path: path}
	if videoID != "" {
		st, err := store.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer func() {
			_ = st.Close()
		}()
		persister = st
	}

	sess := session.New(videoID, working, reference, session.WithLogger(logger.Named("session")))
	opts := tui.Options{
		SeekStep:        cfg.Editor.SeekStepMs,
		PixelsPerSecond: cfg.Editor.PixelsPerSecond,
		Persister:       persister,
	}
	if cfg.Editor.Autosave {
		opts.Autosave = autosaveInterval
	}

	if err := tui.Run(sess, player.NewClock(duration), opts); err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}

	if sess.Dirty() {
		fmt.Printf("Unsaved changes were discarded: %s\n", path)
	} else if sess.Version() > 0 {
		fmt.Printf("Saved version %d\n", sess.Version())
	}
	return nil
}
