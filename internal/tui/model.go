// Package tui is the terminal sync editor: a player clock, the working
// list around the playhead and a one-row timeline that can be dragged
// with the mouse.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgpai22/tala/internal/player"
	"github.com/mgpai22/tala/internal/session"
	"github.com/mgpai22/tala/internal/subtitle"
	"github.com/mgpai22/tala/internal/timeline"
	"github.com/mgpai22/tala/internal/timing"
)

const (
	// tickInterval is how often the player clock is advanced.
	tickInterval = 100 * time.Millisecond

	defaultSeekStep        = 2000
	defaultPixelsPerSecond = 8.0
	// nudgeStep moves the current subtitle with shift+left/right.
	nudgeStep = 100

	// screen row of the timeline, below the status bar
	timelineRow = 1
)

type tickMsg time.Time

type Options struct {
	// SeekStep is the left/right seek distance in ms.
	SeekStep        int
	PixelsPerSecond float64
	// Autosave saves a dirty session at this interval; zero disables it.
	Autosave  time.Duration
	Persister session.Persister
}

type Model struct {
	sess   *session.Session
	player player.Player
	opts   Options

	scale timeline.Scale
	drag  *timeline.Drag
	input textinput.Model

	status      string
	lastSave    time.Time
	confirmQuit bool
	quitting    bool

	width  int
	height int
}

func NewModel(sess *session.Session, p player.Player, opts Options) *Model {
	if opts.SeekStep <= 0 {
		opts.SeekStep = defaultSeekStep
	}
	if opts.PixelsPerSecond <= 0 {
		opts.PixelsPerSecond = defaultPixelsPerSecond
	}

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = `subtitle text, \n for a line break`

	m := &Model{
		sess:   sess,
		player: p,
		opts:   opts,
		input:  input,
		scale:  timeline.Scale{PixelsPerSecond: opts.PixelsPerSecond, Width: 80},
		width:  80,
	}
	m.follow()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scale.Width = float64(msg.Width)
		m.input.Width = msg.Width - 4
		m.follow()
		return m, nil

	case tickMsg:
		if c, ok := m.player.(interface{ Tick() }); ok {
			c.Tick()
		}
		m.follow()
		m.autosave(time.Time(msg))
		return m, tickCmd()

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		if m.sess.Edit.InProgress() {
			return m, m.handleEditKey(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) playhead() timing.Playhead {
	return timing.Playhead{Time: m.player.CurrentTime(), Duration: m.player.Duration()}
}

// follow keeps the playhead centred unless a drag holds the view.
func (m *Model) follow() {
	if m.drag != nil {
		return
	}
	m.scale = m.scale.CenterOn(m.playhead().Now())
}

// current is the subtitle the editing keys act on: the one showing at
// the playhead, else the next one to sync, else the last.
func (m *Model) current() *subtitle.StoredSubtitle {
	list := m.sess.Working
	if s := list.SubtitleAt(m.playhead().Now()); s != nil {
		return s
	}
	if s := list.FirstUnsyncedSubtitle(); s != nil {
		return s
	}
	return list.LastSubtitle()
}

func (m *Model) seek(ms int) {
	m.player.Seek(ms)
	m.follow()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key != "q" {
		m.confirmQuit = false
	}
	list := m.sess.Working

	switch key {
	case "q", "ctrl+c":
		if m.sess.Dirty() && !m.confirmQuit && key == "q" {
			m.confirmQuit = true
			m.status = "unsaved changes, press q again to quit"
			return nil
		}
		m.quitting = true
		return tea.Quit

	case " ":
		if m.player.Playing() {
			m.player.Pause()
		} else {
			m.player.Play()
		}

	case "left":
		m.seek(m.player.CurrentTime() - m.opts.SeekStep)
	case "right":
		m.seek(m.player.CurrentTime() + m.opts.SeekStep)

	case "s", "down":
		if !timing.AssignStart(list, m.playhead(), m.sess) {
			m.status = "start ignored"
		}
	case "e", "up":
		if !timing.AssignEnd(list, m.playhead(), m.sess) {
			m.status = "end ignored"
		}

	case "[":
		m.seek(timing.Rewind(list, m.playhead()))
	case "]":
		if last := list.LastSyncedSubtitle(); last != nil {
			m.seek(last.EndTime())
		}
	case "u":
		if timing.UnsyncLast(list, m.sess) {
			m.status = "unsynced last subtitle"
		}

	case "shift+left":
		m.nudge(-nudgeStep)
	case "shift+right":
		m.nudge(nudgeStep)

	case "enter":
		if cur := m.current(); cur != nil {
			return m.startEdit(cur)
		}
	case "i":
		s := list.InsertSubtitleBefore(m.current())
		m.sess.WorkChanged()
		return m.startEdit(s)
	case "d":
		if cur := m.current(); cur != nil {
			list.RemoveSubtitle(cur)
			m.sess.WorkChanged()
			m.status = "deleted subtitle"
		}
	case "tab":
		if cur := m.current(); cur != nil && cur != list.FirstSubtitle() {
			list.ToggleSubtitleParagraph(cur)
			m.sess.WorkChanged()
		}

	case "+", "=":
		m.zoom(2)
	case "-":
		m.zoom(0.5)

	case "ctrl+s":
		m.save(false)
	case "ctrl+k":
		m.save(true)
	}
	return nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		draft := m.sess.Edit.Draft()
		draft.SetMarkdown(strings.ReplaceAll(m.input.Value(), `\n`, "\n"))
		if m.sess.Edit.Finish(true, m.sess.Working) {
			m.sess.WorkChanged()
		}
		m.input.Blur()
		return nil
	case "esc":
		m.sess.Edit.Finish(false, m.sess.Working)
		m.input.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) startEdit(s *subtitle.StoredSubtitle) tea.Cmd {
	draft := m.sess.Edit.Start(s)
	m.input.SetValue(strings.ReplaceAll(draft.Markdown(), "\n", `\n`))
	m.input.CursorEnd()
	return m.input.Focus()
}

// nudge moves the current synced subtitle by delta within its neighbours.
func (m *Model) nudge(delta int) {
	cur := m.current()
	if cur == nil {
		return
	}
	d := timeline.BeginDrag(m.sess.Working, cur, timeline.EdgeBody, 0, m.player.Duration())
	if d == nil {
		return
	}
	d.Move(delta)
	d.Commit(m.sess)
}

func (m *Model) zoom(factor float64) {
	pps := m.scale.PixelsPerSecond * factor
	if pps < 0.5 || pps > 200 {
		return
	}
	m.scale.PixelsPerSecond = pps
	m.follow()
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || msg.Y != timelineRow {
			return
		}
		x := float64(msg.X)
		s, edge, ok := m.scale.HitTest(m.sess.Working, x)
		if !ok {
			m.seek(m.scale.PixelToTime(x))
			return
		}
		m.drag = timeline.BeginDrag(m.sess.Working, s, edge, m.scale.PixelToTime(x), m.player.Duration())

	case tea.MouseActionMotion:
		if m.drag != nil {
			m.drag.Move(m.scale.PixelToTime(float64(msg.X)))
		}

	case tea.MouseActionRelease:
		if m.drag == nil {
			return
		}
		if m.drag.Commit(m.sess) {
			m.status = fmt.Sprintf("moved subtitle %s", m.drag.Edge())
		}
		m.drag = nil
		m.follow()
	}
}

func (m *Model) save(markComplete bool) {
	if m.opts.Persister == nil {
		m.status = "no store configured"
		return
	}
	n, err := m.sess.Save(context.Background(), m.opts.Persister, markComplete)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("saved version %d", n)
}

func (m *Model) autosave(now time.Time) {
	if m.opts.Autosave <= 0 || m.opts.Persister == nil || !m.sess.Dirty() {
		return
	}
	if m.lastSave.IsZero() {
		m.lastSave = now
		return
	}
	if now.Sub(m.lastSave) < m.opts.Autosave {
		return
	}
	m.lastSave = now
	m.save(false)
}

// Run starts the editor full screen with mouse support.
func Run(sess *session.Session, p player.Player, opts Options) error {
	model := NewModel(sess, p, opts)
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := prog.Run()
	return err
}
