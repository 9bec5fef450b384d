package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/tala/internal/session"
	"github.com/mgpai22/tala/internal/store"
	"github.com/mgpai22/tala/internal/subtitle"
	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Save, fetch and list subtitle versions in the store",
}

var versionsSaveCmd = &cobra.Command{
	Use:   "save [subtitle_file]",
	Short: "Save a document as the next version",
	Long: `Save a subtitle document as the next version for a video and language.

Examples:
  tala versions save video.en.dfxp --video-id intro
  tala versions save video.fr.srt --video-id intro -l fr --complete --meta speaker=host`,
	Args: cobra.ExactArgs(1),
	RunE: runVersionsSave,
}

var versionsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Write a stored version to a file",
	Long: `Fetch a version from the store and write it in the format of the output file.

Examples:
  tala versions fetch --video-id intro -l en -o intro.en.dfxp
  tala versions fetch --video-id intro -l en --version 2 -o intro.en.srt`,
	Args: cobra.NoArgs,
	RunE: runVersionsFetch,
}

var versionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the versions of a video and language",
	Args:  cobra.NoArgs,
	RunE:  runVersionsList,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	versionsCmd.AddCommand(versionsSaveCmd, versionsFetchCmd, versionsListCmd)

	versionsCmd.PersistentFlags().String("video-id", "", "Video id (required)")
	_ = versionsCmd.MarkPersistentFlagRequired("video-id")

	versionsSaveCmd.Flags().Bool("complete", false, "Mark the version complete")
	versionsSaveCmd.Flags().StringSlice("meta", nil, "Metadata as key=value, repeatable")

	versionsFetchCmd.Flags().Int("version", 0, "Version number; latest when omitted")
}

func openStore() (*store.Store, error) {
	return store.Open(cfg.StorePath)
}

func parseMetadata(pairs []string) (map[string]string, error) {
	meta := map[string]string{}
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", pair)
		}
		meta[strings.TrimSpace(k)] = v
	}
	return meta, nil
}

func runVersionsSave(cmd *cobra.Command, args []string) error {
	videoID, _ := cmd.Flags().GetString("video-id")
	lang, _ := cmd.Flags().GetString("language")
	complete, _ := cmd.Flags().GetBool("complete")
	metaPairs, _ := cmd.Flags().GetStringSlice("meta")

	meta, err := parseMetadata(metaPairs)
	if err != nil {
		return err
	}
	list, err := loadList(args[0], lang)
	if err != nil {
		return err
	}
	if list.Language() == "" {
		return fmt.Errorf("document has no language: use --language")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	sess := session.New(videoID, list, nil, session.WithLogger(logger.Named("session")))
	for k, v := range meta {
		sess.Metadata[k] = v
	}
	n, err := sess.Save(context.Background(), st, complete)
	if err != nil {
		return err
	}

	fmt.Printf("Saved version %d of %s/%s\n", n, videoID, list.Language())
	return nil
}

func runVersionsFetch(cmd *cobra.Command, args []string) error {
	videoID, _ := cmd.Flags().GetString("video-id")
	lang, _ := cmd.Flags().GetString("language")
	n, _ := cmd.Flags().GetInt("version")
	outputPath, _ := cmd.Flags().GetString("output")

	if lang == "" {
		return fmt.Errorf("language is required: use --language")
	}
	if outputPath == "" {
		outputPath = fmt.Sprintf("%s.%s.dfxp", videoID, lang)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	sess := session.New(videoID, subtitle.NewList(), nil)
	if err := sess.Load(context.Background(), st, lang, n); err != nil {
		return err
	}
	if err := writeList(sess.Working, outputPath); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Fetched version %d: %s\n", sess.Version(), absOutput)
	return nil
}

func runVersionsList(cmd *cobra.Command, args []string) error {
	videoID, _ := cmd.Flags().GetString("video-id")
	lang, _ := cmd.Flags().GetString("language")
	if lang == "" {
		return fmt.Errorf("language is required: use --language")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	versions, err := st.ListVersions(context.Background(), videoID, lang)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Printf("No versions of %s/%s\n", videoID, lang)
		return nil
	}
	for _, v := range versions {
		complete := ""
		if v.Complete {
			complete = " complete"
		}
		fmt.Printf("%4d  %s  %s%s\n", v.Number, v.CreatedAt.Format("2006-01-02 15:04:05"), v.Title, complete)
	}
	return nil
}
