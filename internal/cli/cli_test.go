package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mgpai22/tala/internal/format"
	"github.com/mgpai22/tala/internal/store"
	"github.com/mgpai22/tala/internal/subtitle"
	"github.com/mgpai22/tala/internal/translate"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:04,000
Hello, <i>world</i>!

2
00:00:05,500 --> 00:00:08,200
This is a test.
`

// execute runs the root command with args, resetting flags left over
// from earlier runs.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "tala.yaml")))
	return rootCmd.Execute()
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestNewRequiresLanguage(t *testing.T) {
	dir := t.TempDir()
	err := execute(t, "new", filepath.Join(dir, "intro.dfxp"))
	if err == nil || !strings.Contains(err.Error(), "language is required") {
		t.Fatalf("expected language error, got %v", err)
	}
}

func TestNewWritesEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intro.dfxp")

	if err := execute(t, "new", path, "-l", "en", "--title", "Intro"); err != nil {
		t.Fatalf("new failed: %v", err)
	}

	list, err := format.Import(path, "")
	if err != nil {
		t.Fatalf("failed to read document: %v", err)
	}
	if list.Language() != "en" {
		t.Errorf("language = %q, want en", list.Language())
	}
	if list.Title() != "Intro" {
		t.Errorf("title = %q, want Intro", list.Title())
	}
	if list.Len() != 0 {
		t.Errorf("expected no subtitles, got %d", list.Len())
	}
}

func TestImportThenExport(t *testing.T) {
	dir := t.TempDir()
	srtPath := writeFile(t, dir, "video.srt", sampleSRT)

	if err := execute(t, "import", srtPath, "-l", "en"); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	dfxpPath := filepath.Join(dir, "video.dfxp")
	list, err := format.Import(dfxpPath, "")
	if err != nil {
		t.Fatalf("failed to read imported document: %v", err)
	}
	if list.Len() != 2 || list.SyncedCount() != 2 {
		t.Fatalf("expected 2 synced subtitles, got %d/%d", list.SyncedCount(), list.Len())
	}
	if got := list.At(0).Markdown(); got != "Hello, *world*!" {
		t.Errorf("first subtitle = %q", got)
	}

	vttPath := filepath.Join(dir, "out", "video.vtt")
	if err := execute(t, "export", dfxpPath, "-o", vttPath); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(vttPath)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "WEBVTT") {
		t.Errorf("expected a WebVTT file, got %q", string(data))
	}
	if !strings.Contains(string(data), "00:00:05.500 --> 00:00:08.200") {
		t.Errorf("missing second cue timing:\n%s", data)
	}
}

func TestExportFormatFlag(t *testing.T) {
	dir := t.TempDir()
	srtPath := writeFile(t, dir, "video.srt", sampleSRT)

	if err := execute(t, "export", srtPath, "-f", "ass", "-l", "en"); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "video.ass")); err != nil {
		t.Errorf("expected video.ass: %v", err)
	}

	if err := execute(t, "export", srtPath, "-f", "sub"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	srtPath := writeFile(t, dir, "video.srt", sampleSRT)

	if err := execute(t, "check", srtPath, "-l", "en"); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if err := execute(t, "check", filepath.Join(dir, "missing.srt")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestCheckStrict(t *testing.T) {
	dir := t.TempDir()
	// 60 characters in 1 second is well over any reading rate.
	srt := "1\n00:00:01,000 --> 00:00:02,000\n" + strings.Repeat("word ", 12) + "\n"
	path := writeFile(t, dir, "fast.srt", srt)

	err := execute(t, "check", path, "-l", "en", "--strict")
	if err == nil || !strings.Contains(err.Error(), "readability warnings") {
		t.Fatalf("expected a strict failure, got %v", err)
	}
}

func TestVersionsSaveFetchList(t *testing.T) {
	dir := t.TempDir()
	srtPath := writeFile(t, dir, "video.srt", sampleSRT)
	dbPath := filepath.Join(dir, "tala.db")
	configFile := filepath.Join(dir, "tala.yaml")
	writeFile(t, dir, "tala.yaml", "store_path: "+dbPath+"\n")

	run := func(args ...string) error {
		resetFlags(rootCmd)
		rootCmd.SetArgs(append(args, "--config", configFile))
		return rootCmd.Execute()
	}

	if err := run("versions", "save", srtPath, "--video-id", "intro", "-l", "en", "--meta", "speaker=host"); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := run("versions", "save", srtPath, "--video-id", "intro", "-l", "en", "--complete"); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	outPath := filepath.Join(dir, "fetched.srt")
	if err := run("versions", "fetch", "--video-id", "intro", "-l", "en", "--version", "1", "-o", outPath); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("expected fetched file: %v", err)
	}

	if err := run("versions", "list", "--video-id", "intro", "-l", "en"); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	versions, err := st.ListVersions(context.Background(), "intro", "en")
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
	if versions[0].Metadata["speaker"] != "host" {
		t.Errorf("version 1 metadata = %v", versions[0].Metadata)
	}
	if !versions[1].Complete {
		t.Error("expected version 2 to be complete")
	}
}

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{"empty", nil, map[string]string{}, false},
		{"pairs", []string{"a=1", " b =x=y"}, map[string]string{"a": "1", "b": "x=y"}, false},
		{"missing equals", []string{"a"}, nil, true},
		{"empty key", []string{"=1"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMetadata(tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMetadata() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestSwapExtension(t *testing.T) {
	tests := []struct {
		path string
		lang string
		f    format.Format
		want string
	}{
		{"video.srt", "", format.FormatDFXP, "video.dfxp"},
		{"video.srt", "fr", format.FormatDFXP, "video.fr.dfxp"},
		{"dir/video.en.dfxp", "", format.FormatVTT, "dir/video.en.vtt"},
		{"noext", "de", format.FormatASS, "noext.de.ass"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := swapExtension(tt.path, tt.lang, tt.f); got != tt.want {
				t.Errorf("swapExtension() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilePersister(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "work.srt")

	list := subtitle.NewList()
	list.LoadEmptySubs("en")
	s := list.InsertSubtitleBefore(nil)
	list.UpdateSubtitleContent(s, "Hi")
	list.UpdateSubtitleTime(s, 1000, 2000)
	xml, err := list.ToXMLString()
	if err != nil {
		t.Fatalf("ToXMLString() error = %v", err)
	}

	p := &filePersister{path: path}
	for want := 1; want <= 2; want++ {
		n, err := p.SaveVersion(context.Background(), store.SaveRequest{Language: "en", Subtitles: xml})
		if err != nil {
			t.Fatalf("SaveVersion() error = %v", err)
		}
		if n != want {
			t.Errorf("save number = %d, want %d", n, want)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	if !strings.Contains(string(data), "00:00:01,000 --> 00:00:02,000") {
		t.Errorf("unexpected file contents:\n%s", data)
	}

	if _, err := p.SaveVersion(context.Background(), store.SaveRequest{Subtitles: "not a document"}); err == nil {
		t.Error("expected an error for an invalid document")
	}
}

func TestCheckModel(t *testing.T) {
	tests := []struct {
		name     string
		provider translate.Provider
		model    string
		override bool
		wantErr  bool
	}{
		{"default model", translate.ProviderGemini, "", false, false},
		{"known gemini", translate.ProviderGemini, "gemini-2.5-flash", false, false},
		{"known openai mixed case", translate.ProviderOpenAI, " GPT-5-mini ", false, false},
		{"known anthropic", translate.ProviderAnthropic, "claude-sonnet-4-5", false, false},
		{"unknown", translate.ProviderOpenAI, "gpt-2", false, true},
		{"wrong provider", translate.ProviderAnthropic, "gemini-2.5-pro", false, true},
		{"override", translate.ProviderOpenAI, "gpt-2", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkModel(tt.provider, tt.model, tt.override)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkModel() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv(translate.ProviderOpenAI.APIKeyEnv(), "from-env")

	if key, _ := resolveAPIKey(translate.ProviderOpenAI.APIKeyEnv(), "from-flag"); key != "from-flag" {
		t.Errorf("flag key = %q", key)
	}
	if key, _ := resolveAPIKey(translate.ProviderOpenAI.APIKeyEnv(), ""); key != "from-env" {
		t.Errorf("env key = %q", key)
	}

	t.Setenv(translate.ProviderAnthropic.APIKeyEnv(), "")
	if _, err := resolveAPIKey(translate.ProviderAnthropic.APIKeyEnv(), ""); err == nil {
		t.Error("expected an error without a key")
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "conf", "tala.yaml")

	run := func(args ...string) error {
		resetFlags(rootCmd)
		rootCmd.SetArgs(append(args, "--config", configFile))
		return rootCmd.Execute()
	}

	if err := run("config", "init"); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := os.Stat(configFile); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if err := run("config", "init"); err == nil {
		t.Error("expected an error for an existing file")
	}
	if err := run("config", "init", "--force"); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}
}

func TestTranscribeRejectsNonMedia(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "hello")

	err := execute(t, "transcribe", path, "-l", "en", "--api-key", "k")
	if err == nil || !strings.Contains(err.Error(), "unsupported media file") {
		t.Fatalf("expected unsupported media error, got %v", err)
	}

	err = execute(t, "transcribe", filepath.Join(dir, "missing.mp4"), "-l", "en", "--api-key", "k")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}
