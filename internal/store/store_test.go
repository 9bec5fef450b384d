package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "tala.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestSaveVersionNumbersPerVideoAndLanguage(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	tests := []struct {
		video, lang string
		want        int
	}{
		{"v1", "en", 1},
		{"v1", "en", 2},
		{"v1", "fr", 1},
		{"v2", "en", 1},
		{"v1", "en", 3},
	}
	for _, tt := range tests {
		n, err := s.SaveVersion(ctx, SaveRequest{VideoID: tt.video, Language: tt.lang, Subtitles: "<tt/>"})
		if err != nil {
			t.Fatalf("SaveVersion(%s, %s) error: %v", tt.video, tt.lang, err)
		}
		if n != tt.want {
			t.Errorf("SaveVersion(%s, %s) = %d, want %d", tt.video, tt.lang, n, tt.want)
		}
	}
}

func TestSaveVersionRequiresKeys(t *testing.T) {
	s := openStore(t)
	if _, err := s.SaveVersion(context.Background(), SaveRequest{Language: "en"}); err == nil {
		t.Error("expected error for missing video id")
	}
}

func TestFetchVersion(t *testing.T) {
	s := openStore(t)
	s.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	ctx := context.Background()

	for i, xml := range []string{"<tt>one</tt>", "<tt>two</tt>"} {
		_, err := s.SaveVersion(ctx, SaveRequest{
			VideoID:     "v1",
			Language:    "en",
			Subtitles:   xml,
			Title:       "Title",
			Description: "Desc",
			Metadata:    map[string]string{"speaker": "A"},
			Complete:    i == 1,
		})
		if err != nil {
			t.Fatalf("SaveVersion error: %v", err)
		}
	}

	tests := []struct {
		name         string
		n            int
		wantNumber   int
		wantXML      string
		wantComplete bool
	}{
		{"first", 1, 1, "<tt>one</tt>", false},
		{"second", 2, 2, "<tt>two</tt>", true},
		{"latest", 0, 2, "<tt>two</tt>", true},
		{"negative is latest", -1, 2, "<tt>two</tt>", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := s.FetchVersion(ctx, "v1", "en", tt.n)
			if err != nil {
				t.Fatalf("FetchVersion error: %v", err)
			}
			if v.Number != tt.wantNumber || v.Subtitles != tt.wantXML || v.Complete != tt.wantComplete {
				t.Errorf("got %+v", v)
			}
			if v.Metadata["speaker"] != "A" || v.Title != "Title" || v.Description != "Desc" {
				t.Errorf("metadata not preserved: %+v", v)
			}
			if !v.CreatedAt.Equal(time.UnixMilli(1_700_000_000_000)) {
				t.Errorf("CreatedAt = %v", v.CreatedAt)
			}
			if v.ID == "" {
				t.Error("expected a row id")
			}
		})
	}
}

func TestFetchVersionNotFound(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if _, err := s.FetchVersion(ctx, "v1", "en", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.SaveVersion(ctx, SaveRequest{VideoID: "v1", Language: "en"}); err != nil {
		t.Fatalf("SaveVersion error: %v", err)
	}
	if _, err := s.FetchVersion(ctx, "v1", "en", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListVersions(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	versions, err := s.ListVersions(ctx, "v1", "en")
	if err != nil {
		t.Fatalf("ListVersions error: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("expected no versions, got %d", len(versions))
	}

	for i := 0; i < 3; i++ {
		if _, err := s.SaveVersion(ctx, SaveRequest{VideoID: "v1", Language: "en", Subtitles: "<tt/>"}); err != nil {
			t.Fatalf("SaveVersion error: %v", err)
		}
	}
	versions, err = s.ListVersions(ctx, "v1", "en")
	if err != nil {
		t.Fatalf("ListVersions error: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(versions))
	}
	for i, v := range versions {
		if v.Number != i+1 {
			t.Errorf("versions[%d].Number = %d", i, v.Number)
		}
		if v.Subtitles != "" {
			t.Errorf("versions[%d] carries subtitles", i)
		}
		if v.Metadata == nil {
			t.Errorf("versions[%d] has nil metadata", i)
		}
	}
}

func TestConcurrentSavesGetDistinctNumbers(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	numbers := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.SaveVersion(ctx, SaveRequest{VideoID: "v1", Language: "en"})
			if err != nil {
				t.Errorf("SaveVersion error: %v", err)
				return
			}
			numbers <- v
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[int]bool{}
	for v := range numbers {
		if seen[v] {
			t.Errorf("duplicate version number %d", v)
		}
		seen[v] = true
	}
	if len(seen) != n {
		t.Errorf("got %d distinct numbers, want %d", len(seen), n)
	}
}

func TestReopenKeepsVersions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tala.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, err := s.SaveVersion(ctx, SaveRequest{VideoID: "v1", Language: "en", Subtitles: "<tt/>"}); err != nil {
		t.Fatalf("SaveVersion error: %v", err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer func() {
		_ = s.Close()
	}()
	n, err := s.SaveVersion(ctx, SaveRequest{VideoID: "v1", Language: "en"})
	if err != nil || n != 2 {
		t.Errorf("SaveVersion after reopen = %d, %v", n, err)
	}
}
