package audio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPlan(t *testing.T) {
	chunks := Plan(25000, 10000, "out", "talk", ".mp3")
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	want := []struct{ start, end int }{{0, 10000}, {10000, 20000}, {20000, 25000}}
	for i, w := range want {
		c := chunks[i]
		if c.Index != i || c.StartTime != w.start || c.EndTime != w.end {
			t.Errorf("chunk %d = %+v, want [%d, %d)", i, c, w.start, w.end)
		}
	}
	if got := chunks[1].Path; got != filepath.Join("out", "talk_chunk_001.mp3") {
		t.Errorf("chunk path = %q", got)
	}
}

func TestPlanEmpty(t *testing.T) {
	if chunks := Plan(0, 1000, "", "a", ".mp3"); chunks != nil {
		t.Errorf("expected no chunks for zero duration, got %v", chunks)
	}
	if chunks := Plan(1000, 0, "", "a", ".mp3"); chunks != nil {
		t.Errorf("expected no chunks for zero chunk size, got %v", chunks)
	}
}

func TestMediaFileDetection(t *testing.T) {
	tests := []struct {
		path         string
		video, audio bool
	}{
		{"clip.MP4", true, false},
		{"talk.webm", true, false},
		{"talk.mp3", false, true},
		{"talk.FLAC", false, true},
		{"notes.txt", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsVideoFile(tt.path); got != tt.video {
				t.Errorf("IsVideoFile() = %v, want %v", got, tt.video)
			}
			if got := IsAudioFile(tt.path); got != tt.audio {
				t.Errorf("IsAudioFile() = %v, want %v", got, tt.audio)
			}
			if got := IsMediaFile(tt.path); got != (tt.video || tt.audio) {
				t.Errorf("IsMediaFile() = %v", got)
			}
		})
	}
}

func TestExtractOptions(t *testing.T) {
	opts := DefaultExtractOptions()
	kw := opts.kwargs()
	if kw["acodec"] != "libmp3lame" || kw["ar"] != 16000 || kw["b:a"] != "64k" {
		t.Errorf("unexpected kwargs %v", kw)
	}
	if opts.Extension() != ".mp3" {
		t.Errorf("Extension() = %q", opts.Extension())
	}

	opts.Format = "aac"
	if opts.kwargs()["acodec"] != "aac" || opts.Extension() != ".m4a" {
		t.Errorf("aac options not applied")
	}
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mp3")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	chunks := []Chunk{{Path: path}, {Path: filepath.Join(dir, "missing.mp3")}}
	if err := Cleanup(chunks); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected chunk file to be removed")
	}
}
