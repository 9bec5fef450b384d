package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgpai22/tala/internal/player"
	"github.com/mgpai22/tala/internal/session"
	"github.com/mgpai22/tala/internal/store"
	"github.com/mgpai22/tala/internal/subtitle"
)

type fakePersister struct {
	saved []store.SaveRequest
}

func (f *fakePersister) SaveVersion(ctx context.Context, req store.SaveRequest) (int, error) {
	f.saved = append(f.saved, req)
	return len(f.saved), nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(t *testing.T, opts Options, texts ...string) (*Model, *player.Clock) {
	t.Helper()
	list := subtitle.NewList(subtitle.WithStrictOrdering())
	list.LoadEmptySubs("en")
	for _, text := range texts {
		s := list.InsertSubtitleBefore(nil)
		list.UpdateSubtitleContent(s, text)
	}
	clock := player.NewClock(60_000)
	sess := session.New("vid", list, nil, noClipboard())
	if opts.SeekStep == 0 {
		opts.SeekStep = 1000
	}
	if opts.PixelsPerSecond == 0 {
		opts.PixelsPerSecond = 10
	}
	m := NewModel(sess, clock, opts)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, clock
}

// noClipboard keeps tests off the system clipboard.
func noClipboard() session.Option {
	return session.WithClipboard(func(string) error { return nil })
}

func press(m *Model, keys ...tea.KeyMsg) {
	for _, k := range keys {
		m.Update(k)
	}
}

func TestSyncKeysWalkThroughList(t *testing.T) {
	m, clock := newModel(t, Options{}, "one", "two", "three")
	list := m.sess.Working
	right := tea.KeyMsg{Type: tea.KeyRight}

	press(m, right, runes("s"))
	if got := list.At(0).StartTime(); got != 1000 || clock.CurrentTime() != 1000 {
		t.Fatalf("first start = %d at playhead %d", got, clock.CurrentTime())
	}

	press(m, right, right, tea.KeyMsg{Type: tea.KeyDown})
	press(m, right, runes("e"))

	if list.SyncedCount() != 2 {
		t.Fatalf("synced = %d, want 2", list.SyncedCount())
	}
	if s := list.At(0); s.StartTime() != 1000 || s.EndTime() != 3000 {
		t.Errorf("first = [%d,%d)", s.StartTime(), s.EndTime())
	}
	if s := list.At(1); s.StartTime() != 3000 || s.EndTime() != 4000 {
		t.Errorf("second = [%d,%d)", s.StartTime(), s.EndTime())
	}
	if !m.sess.Dirty() {
		t.Error("sync keys did not mark the session dirty")
	}

	press(m, runes("["))
	if clock.CurrentTime() != 3000 {
		t.Errorf("rewind seeked to %d, want 3000", clock.CurrentTime())
	}
	press(m, runes("]"))
	if clock.CurrentTime() != 4000 {
		t.Errorf("] seeked to %d, want 4000", clock.CurrentTime())
	}

	press(m, runes("u"))
	if list.SyncedCount() != 1 || list.At(1).HasEndTime() {
		t.Errorf("unsync left synced=%d", list.SyncedCount())
	}
}

func TestStaleSyncIsIgnored(t *testing.T) {
	m, clock := newModel(t, Options{}, "one", "two")
	list := m.sess.Working
	list.UpdateSubtitleTime(list.At(0), 1000, 5000)

	clock.Seek(2000)
	press(m, runes("s"))
	if list.At(1).HasStartTime() || m.status != "start ignored" {
		t.Errorf("stale start applied, status %q", m.status)
	}
}

func TestEditCommitAndDiscard(t *testing.T) {
	m, _ := newModel(t, Options{}, "one")
	list := m.sess.Working

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.sess.Edit.IsForSubtitle(list.At(0)) {
		t.Fatal("enter did not start editing the current subtitle")
	}
	press(m, runes(`!\nmore`), tea.KeyMsg{Type: tea.KeyEnter})
	if got := list.At(0).Markdown(); got != "one!\nmore" {
		t.Errorf("committed text = %q", got)
	}
	if m.sess.Edit.InProgress() || !m.sess.Dirty() {
		t.Error("edit still open or session clean after commit")
	}

	press(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("zzz"), tea.KeyMsg{Type: tea.KeyEsc})
	if got := list.At(0).Markdown(); got != "one!\nmore" {
		t.Errorf("discarded edit changed text to %q", got)
	}
}

func TestEditKeysDoNotTriggerCommands(t *testing.T) {
	m, _ := newModel(t, Options{}, "one")
	press(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("s"))
	if m.sess.Working.At(0).HasStartTime() {
		t.Error("typing s while editing assigned a start time")
	}
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
}

func TestInsertAndDelete(t *testing.T) {
	m, _ := newModel(t, Options{}, "one", "two")
	list := m.sess.Working

	press(m, runes("i"))
	if list.Len() != 3 || list.At(0).Markdown() != "" {
		t.Fatalf("insert did not place an empty subtitle first: len %d", list.Len())
	}
	if !m.sess.Edit.IsForSubtitle(list.At(0)) {
		t.Error("insert did not open the new subtitle for editing")
	}
	press(m, runes("zero"), tea.KeyMsg{Type: tea.KeyEnter})
	if list.At(0).Markdown() != "zero" {
		t.Errorf("inserted text = %q", list.At(0).Markdown())
	}

	press(m, runes("d"))
	if list.Len() != 2 || list.At(0).Markdown() != "one" {
		t.Errorf("delete removed the wrong subtitle: %q", list.At(0).Markdown())
	}
}

func TestMouseDragMovesSubtitle(t *testing.T) {
	m, _ := newModel(t, Options{}, "one", "two", "three")
	list := m.sess.Working
	list.UpdateSubtitleTime(list.At(0), 1000, 3000)
	list.UpdateSubtitleTime(list.At(1), 3000, 4000)

	// 10 cells per second from offset 0: "one" spans cells 10..30
	mouse := func(action tea.MouseAction, x int) {
		m.Update(tea.MouseMsg{X: x, Y: timelineRow, Action: action, Button: tea.MouseButtonLeft})
	}

	mouse(tea.MouseActionPress, 10)
	if m.drag == nil || m.drag.Subtitle() != list.At(0) {
		t.Fatal("press on the left edge did not start a drag")
	}
	mouse(tea.MouseActionMotion, 15)
	if list.At(0).StartTime() != 1000 {
		t.Error("list changed before release")
	}
	mouse(tea.MouseActionRelease, 15)
	if s := list.At(0); s.StartTime() != 1500 || s.EndTime() != 3000 {
		t.Errorf("after left drag = [%d,%d)", s.StartTime(), s.EndTime())
	}

	// dragging the body of "two" right by one cell
	mouse(tea.MouseActionPress, 35)
	mouse(tea.MouseActionMotion, 36)
	mouse(tea.MouseActionRelease, 36)
	if s := list.At(1); s.StartTime() != 3100 || s.EndTime() != 4100 {
		t.Errorf("after body drag = [%d,%d)", s.StartTime(), s.EndTime())
	}

	// the body cannot be pushed over its neighbour
	mouse(tea.MouseActionPress, 35)
	mouse(tea.MouseActionMotion, 5)
	mouse(tea.MouseActionRelease, 5)
	if s := list.At(1); s.StartTime() != 3000 {
		t.Errorf("body drag crossed the previous subtitle: start %d", s.StartTime())
	}
	if err := list.Validate(); err != nil {
		t.Errorf("invalid list after drags: %v", err)
	}
}

func TestMouseClickOnEmptyTimelineSeeks(t *testing.T) {
	m, clock := newModel(t, Options{}, "one")
	m.Update(tea.MouseMsg{X: 50, Y: timelineRow, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if clock.CurrentTime() != 5000 {
		t.Errorf("click seeked to %d, want 5000", clock.CurrentTime())
	}
}

func TestNudge(t *testing.T) {
	m, clock := newModel(t, Options{}, "one")
	list := m.sess.Working
	list.UpdateSubtitleTime(list.At(0), 1000, 3000)

	clock.Seek(2000)
	press(m, tea.KeyMsg{Type: tea.KeyShiftLeft})
	if s := list.At(0); s.StartTime() != 900 || s.EndTime() != 2900 {
		t.Errorf("after nudge = [%d,%d)", s.StartTime(), s.EndTime())
	}
}

func TestSaveAndQuit(t *testing.T) {
	fp := &fakePersister{}
	m, _ := newModel(t, Options{Persister: fp}, "one")

	press(m, runes("s"))
	m.Update(runes("q"))
	if m.quitting || m.status == "" {
		t.Fatal("dirty session quit without confirmation")
	}

	press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if len(fp.saved) != 1 || m.sess.Dirty() || m.status != "saved version 1" {
		t.Errorf("save: %d saved, dirty %v, status %q", len(fp.saved), m.sess.Dirty(), m.status)
	}

	_, cmd := m.Update(runes("q"))
	if !m.quitting || cmd == nil {
		t.Fatal("clean session did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not return tea.QuitMsg")
	}
}

func TestSaveWithoutStore(t *testing.T) {
	m, _ := newModel(t, Options{}, "one")
	press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.status != "no store configured" {
		t.Errorf("status = %q", m.status)
	}
}

func TestAutosave(t *testing.T) {
	fp := &fakePersister{}
	m, _ := newModel(t, Options{Persister: fp, Autosave: time.Second}, "one")
	start := time.Unix(1_700_000_000, 0)

	m.Update(tickMsg(start))
	m.sess.WorkChanged()
	m.Update(tickMsg(start.Add(100 * time.Millisecond)))
	m.Update(tickMsg(start.Add(500 * time.Millisecond)))
	if len(fp.saved) != 0 {
		t.Fatalf("autosaved too early: %d", len(fp.saved))
	}
	m.Update(tickMsg(start.Add(2 * time.Second)))
	if len(fp.saved) != 1 || m.sess.Dirty() {
		t.Errorf("autosave: %d saved, dirty %v", len(fp.saved), m.sess.Dirty())
	}
}

func TestPlayPause(t *testing.T) {
	m, clock := newModel(t, Options{}, "one")
	press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !clock.Playing() {
		t.Error("space did not start playback")
	}
	press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if clock.Playing() {
		t.Error("space did not pause playback")
	}
}

func TestView(t *testing.T) {
	m, _ := newModel(t, Options{}, "**one**", "two")
	view := m.View()
	for _, want := range []string{"synced 0/2", "next to sync", "two"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		ms   int
		want string
	}{
		{0, "00:00.000"},
		{61_005, "01:01.005"},
		{3_723_004, "1:02:03.004"},
		{-5, "00:00.000"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.ms); got != tt.want {
			t.Errorf("formatClock(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}
