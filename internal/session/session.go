// Package session ties the lists being edited for one video to the
// version store: dirty tracking, save with a clipboard fallback, and
// loading fetched versions.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/mgpai22/tala/internal/logging"
	"github.com/mgpai22/tala/internal/store"
	"github.com/mgpai22/tala/internal/subtitle"
)

var ErrIncomplete = errors.New("subtitles are not complete")

type Persister interface {
	SaveVersion(ctx context.Context, req store.SaveRequest) (int, error)
}

type Fetcher interface {
	FetchVersion(ctx context.Context, videoID, lang string, n int) (*store.Version, error)
}

// Session is one editor's view of a video: the working list being
// authored, an optional read-only reference list and the current edit.
type Session struct {
	VideoID   string
	Working   *subtitle.List
	Reference *subtitle.List
	Edit      *subtitle.EditManager
	Metadata  map[string]string

	dirty     bool
	version   int
	listeners []func()
	clip      func(string) error
	logger    *logging.Logger
}

type Option func(*Session)

// WithClipboard replaces the system clipboard used when a save fails.
func WithClipboard(write func(string) error) Option {
	return func(s *Session) {
		s.clip = write
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New starts a session. A nil working list starts empty; reference may be nil.
func New(videoID string, working, reference *subtitle.List, opts ...Option) *Session {
	if working == nil {
		working = subtitle.NewList()
	}
	s := &Session{
		VideoID:   videoID,
		Working:   working,
		Reference: reference,
		Edit:      subtitle.NewEditManager(),
		Metadata:  map[string]string{},
		clip:      clipboard.WriteAll,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WorkChanged marks the session dirty and notifies listeners.
func (s *Session) WorkChanged() {
	s.dirty = true
	for _, fn := range s.listeners {
		fn()
	}
}

// OnWorkChanged registers fn to run on every work-changed signal.
func (s *Session) OnWorkChanged(fn func()) {
	s.listeners = append(s.listeners, fn)
}

func (s *Session) Dirty() bool {
	return s.dirty
}

// Version is the number of the version last saved or loaded, 0 if none.
func (s *Session) Version() int {
	return s.version
}

// Save stores the working list as a new version. When the store fails
// the document is copied to the clipboard so no work is lost, and the
// returned error says whether that copy succeeded.
func (s *Session) Save(ctx context.Context, p Persister, markComplete bool) (int, error) {
	if markComplete && !s.Working.IsComplete() {
		return 0, ErrIncomplete
	}

	xml, err := s.Working.ToXMLString()
	if err != nil {
		return 0, fmt.Errorf("failed to serialize subtitles: %w", err)
	}

	n, err := p.SaveVersion(ctx, store.SaveRequest{
		VideoID:     s.VideoID,
		Language:    s.Working.Language(),
		Subtitles:   xml,
		Title:       s.Working.Title(),
		Description: s.Working.Description(),
		Metadata:    s.Metadata,
		Complete:    markComplete,
	})
	if err != nil {
		s.logger.Warnw("save failed, copying subtitles to clipboard", "video", s.VideoID, "error", err)
		if cerr := s.clip(xml); cerr != nil {
			return 0, fmt.Errorf("failed to save version (clipboard copy also failed: %v): %w", cerr, err)
		}
		return 0, fmt.Errorf("failed to save version, subtitles copied to clipboard: %w", err)
	}

	s.dirty = false
	s.version = n
	s.logger.Infow("saved version",
		"video", s.VideoID,
		"language", s.Working.Language(),
		"version", n,
		"complete", markComplete,
	)
	return n, nil
}

// Load replaces the working list with version n (latest when n <= 0).
// Any in-progress edit is discarded.
func (s *Session) Load(ctx context.Context, f Fetcher, lang string, n int) error {
	v, err := f.FetchVersion(ctx, s.VideoID, lang, n)
	if err != nil {
		return fmt.Errorf("failed to fetch version: %w", err)
	}
	s.Edit.Finish(false, s.Working)
	if err := s.Working.LoadXMLString(v.Subtitles); err != nil {
		return err
	}
	for k, val := range v.Metadata {
		s.Metadata[k] = val
	}
	s.dirty = false
	s.version = v.Number
	return nil
}

// LoadReference fetches version n of lang into the reference list.
func (s *Session) LoadReference(ctx context.Context, f Fetcher, lang string, n int) error {
	v, err := f.FetchVersion(ctx, s.VideoID, lang, n)
	if err != nil {
		return fmt.Errorf("failed to fetch reference version: %w", err)
	}
	if s.Reference == nil {
		s.Reference = subtitle.NewList()
	}
	return s.Reference.LoadXMLString(v.Subtitles)
}
