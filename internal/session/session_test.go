package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mgpai22/tala/internal/store"
	"github.com/mgpai22/tala/internal/subtitle"
)

// fakeStore keeps versions in memory, keyed by video and language.
type fakeStore struct {
	saved []store.SaveRequest
	err   error
}

func (f *fakeStore) SaveVersion(ctx context.Context, req store.SaveRequest) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, req)
	return len(f.saved), nil
}

func (f *fakeStore) FetchVersion(ctx context.Context, videoID, lang string, n int) (*store.Version, error) {
	if n <= 0 {
		n = len(f.saved)
	}
	if n == 0 || n > len(f.saved) {
		return nil, store.ErrNotFound
	}
	req := f.saved[n-1]
	return &store.Version{
		VideoID:   req.VideoID,
		Language:  req.Language,
		Number:    n,
		Subtitles: req.Subtitles,
		Metadata:  req.Metadata,
		Complete:  req.Complete,
	}, nil
}

func syncedList(t *testing.T) *subtitle.List {
	t.Helper()
	l := subtitle.NewList()
	l.LoadEmptySubs("en")
	s := l.InsertSubtitleBefore(nil)
	l.UpdateSubtitleContent(s, "hello")
	l.UpdateSubtitleTime(s, 0, 1000)
	return l
}

func TestWorkChangedMarksDirtyAndNotifies(t *testing.T) {
	s := New("vid", nil, nil)
	calls := 0
	s.OnWorkChanged(func() { calls++ })
	s.OnWorkChanged(func() { calls++ })

	if s.Dirty() {
		t.Fatal("new session is dirty")
	}
	s.WorkChanged()
	if !s.Dirty() || calls != 2 {
		t.Errorf("dirty=%v calls=%d", s.Dirty(), calls)
	}
}

func TestSaveClearsDirty(t *testing.T) {
	fs := &fakeStore{}
	s := New("vid", syncedList(t), nil, WithClipboard(func(string) error {
		t.Error("clipboard used on successful save")
		return nil
	}))
	s.Metadata["speaker"] = "host"
	s.WorkChanged()

	n, err := s.Save(context.Background(), fs, true)
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if n != 1 || s.Version() != 1 || s.Dirty() {
		t.Errorf("n=%d version=%d dirty=%v", n, s.Version(), s.Dirty())
	}
	req := fs.saved[0]
	if req.VideoID != "vid" || req.Language != "en" || !req.Complete || req.Metadata["speaker"] != "host" {
		t.Errorf("saved request = %+v", req)
	}
	if !strings.Contains(req.Subtitles, "hello") {
		t.Errorf("saved document missing text: %s", req.Subtitles)
	}
}

func TestSaveRejectsIncompleteWhenMarkingComplete(t *testing.T) {
	l := syncedList(t)
	l.InsertSubtitleBefore(nil)
	s := New("vid", l, nil)

	if _, err := s.Save(context.Background(), &fakeStore{}, true); !errors.Is(err, ErrIncomplete) {
		t.Errorf("expected ErrIncomplete, got %v", err)
	}
	if _, err := s.Save(context.Background(), &fakeStore{}, false); err != nil {
		t.Errorf("draft save failed: %v", err)
	}
}

func TestSaveFailureCopiesToClipboard(t *testing.T) {
	storeErr := errors.New("offline")

	tests := []struct {
		name     string
		clipErr  error
		wantText string
	}{
		{"copied", nil, "copied to clipboard"},
		{"copy failed", errors.New("no display"), "clipboard copy also failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var copied string
			s := New("vid", syncedList(t), nil, WithClipboard(func(text string) error {
				copied = text
				return tt.clipErr
			}))
			s.WorkChanged()

			_, err := s.Save(context.Background(), &fakeStore{err: storeErr}, false)
			if !errors.Is(err, storeErr) {
				t.Fatalf("expected wrapped store error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error %q does not mention %q", err, tt.wantText)
			}
			if !strings.Contains(copied, "hello") {
				t.Errorf("clipboard got %q", copied)
			}
			if !s.Dirty() {
				t.Error("failed save cleared dirty flag")
			}
		})
	}
}

func TestLoadReplacesWorkingList(t *testing.T) {
	fs := &fakeStore{}
	source := New("vid", syncedList(t), nil)
	if _, err := source.Save(context.Background(), fs, false); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	s := New("vid", nil, nil)
	reloads := 0
	s.Working.AddChangeCallback(func(c subtitle.Change) {
		if c.Type == subtitle.ChangeReload {
			reloads++
		}
	})
	s.Edit.Start(s.Working.InsertSubtitleBefore(nil))
	s.WorkChanged()

	if err := s.Load(context.Background(), fs, "en", 0); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if s.Working.Len() != 1 || s.Working.At(0).Markdown() != "hello" {
		t.Errorf("working list not replaced: len %d", s.Working.Len())
	}
	if s.Dirty() || s.Version() != 1 || s.Edit.InProgress() || reloads != 1 {
		t.Errorf("dirty=%v version=%d edit=%v reloads=%d", s.Dirty(), s.Version(), s.Edit.InProgress(), reloads)
	}

	if err := s.LoadReference(context.Background(), fs, "en", 1); err != nil {
		t.Fatalf("LoadReference error: %v", err)
	}
	if s.Reference == nil || s.Reference.Len() != 1 {
		t.Error("reference list not loaded")
	}

	if err := s.Load(context.Background(), fs, "en", 7); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
