package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgpai22/tala/internal/markdown"
	"github.com/mgpai22/tala/internal/subtitle"
)

var (
	accentColor  = lipgloss.Color("#7D56F4")
	dimTextColor = lipgloss.Color("#777777")
	warningColor = lipgloss.Color("#F25D94")

	statusStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(accentColor)
	dimStyle     = lipgloss.NewStyle().Foreground(dimTextColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	currentStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentColor).Padding(0, 1)
	selectStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	playedStyle  = lipgloss.NewStyle().Foreground(accentColor)
)

// ansiTags renders emphasis with terminal escapes.
var ansiTags = markdown.Tags{
	Bold:      [2]string{"\x1b[1m", "\x1b[22m"},
	Italic:    [2]string{"\x1b[3m", "\x1b[23m"},
	Underline: [2]string{"\x1b[4m", "\x1b[24m"},
}

// listWindow is how many subtitles are shown on each side of the current one.
const listWindow = 3

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.statusBar())
	b.WriteString("\n")
	b.WriteString(m.timelineRow())
	b.WriteString("\n\n")
	b.WriteString(m.currentPanel())
	b.WriteString("\n")
	b.WriteString(m.listView())
	b.WriteString("\n")
	if m.sess.Edit.InProgress() {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(warningStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(helpText))
	return b.String()
}

const helpText = "space play/pause · s/↓ start · e/↑ end · ←/→ seek · [ ] last synced · u unsync · " +
	"enter edit · i insert · d delete · tab paragraph · +/- zoom · ctrl+s save · q quit"

func (m *Model) statusBar() string {
	list := m.sess.Working
	state := "paused"
	if m.player.Playing() {
		state = "playing"
	}
	dirty := ""
	if m.sess.Dirty() {
		dirty = " *"
	}
	text := fmt.Sprintf(" %s %s / %s  synced %d/%d  %s%s ",
		state,
		formatClock(m.player.CurrentTime()),
		formatClock(m.player.Duration()),
		list.SyncedCount(),
		list.Len(),
		list.Language(),
		dirty,
	)
	return statusStyle.Width(m.width).Render(text)
}

// timelineRow draws one cell per column: '█' for subtitle spans, '▌' at
// their starts, '│' at the playhead.
func (m *Model) timelineRow() string {
	width := int(m.scale.Width)
	if width <= 0 {
		return ""
	}
	cells := make([]rune, width)
	for i := range cells {
		cells[i] = '·'
	}

	paint := func(start, end int) {
		left, right := int(m.scale.TimeToPixel(start)), int(m.scale.TimeToPixel(end))
		for x := left; x < right || x == left; x++ {
			if x >= 0 && x < width {
				cells[x] = '█'
			}
		}
		if left >= 0 && left < width {
			cells[left] = '▌'
		}
	}
	for _, s := range m.scale.VisibleSubtitles(m.sess.Working) {
		if m.drag != nil && m.drag.Subtitle() == s {
			continue
		}
		paint(s.StartTime(), s.EndTime())
	}
	if m.drag != nil {
		paint(m.drag.Start, m.drag.End)
	}

	if x := int(m.scale.TimeToPixel(m.playhead().Now())); x >= 0 && x < width {
		cells[x] = '│'
	}
	return playedStyle.Render(string(cells))
}

func (m *Model) currentPanel() string {
	cur := m.current()
	if cur == nil {
		return currentStyle.Render(dimStyle.Render("no subtitles, press i to insert one"))
	}

	var lines []string
	if cur.IsSynced() {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("#%d  %s → %s", cur.ID(), formatClock(cur.StartTime()), formatClock(cur.EndTime()))))
	} else {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("#%d  next to sync", cur.ID())))
	}
	text := cur.Markdown()
	if text == "" {
		text = dimStyle.Render("(empty)")
	} else {
		text = markdown.Render(text, ansiTags)
	}
	lines = append(lines, text)

	if ref := m.sess.Reference; ref != nil {
		if r := ref.SubtitleAt(m.playhead().Now()); r != nil {
			lines = append(lines, dimStyle.Render(r.PlainText()))
		}
	}
	if warnings := cur.Warnings(); len(warnings) > 0 {
		names := make([]string, len(warnings))
		for i, w := range warnings {
			names[i] = string(w)
		}
		lines = append(lines, warningStyle.Render("warnings: "+strings.Join(names, ", ")))
	}
	return currentStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) listView() string {
	list := m.sess.Working
	cur := m.current()
	if cur == nil {
		return ""
	}
	at := list.Index(cur)
	from, to := at-listWindow, at+listWindow
	if from < 0 {
		from = 0
	}
	if to > list.Len()-1 {
		to = list.Len() - 1
	}

	var b strings.Builder
	for i := from; i <= to; i++ {
		s := list.At(i)
		b.WriteString(m.listLine(s, s == cur))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) listLine(s *subtitle.StoredSubtitle, selected bool) string {
	timing := "  --:--.---    --:--.---"
	if s.HasStartTime() || s.HasEndTime() {
		timing = fmt.Sprintf("%12s %12s", optionalClock(s.StartTime()), optionalClock(s.EndTime()))
	}
	marker := "  "
	if s.StartOfParagraph() {
		marker = "¶ "
	}
	text := strings.ReplaceAll(s.PlainText(), "\n", " / ")
	line := fmt.Sprintf("%s%4d %s  %s", marker, s.ID(), timing, text)
	switch {
	case selected:
		return selectStyle.Render(line)
	case s.HasWarning(subtitle.WarningAny):
		return warningStyle.Render(line)
	case !s.IsSynced():
		return dimStyle.Render(line)
	}
	return line
}

func optionalClock(ms int) string {
	if ms < 0 {
		return "--:--.---"
	}
	return formatClock(ms)
}

// formatClock renders ms as [h:]mm:ss.mmm.
func formatClock(ms int) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	mnt := ms / 60_000 % 60
	sec := ms / 1000 % 60
	milli := ms % 1000
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, mnt, sec, milli)
	}
	return fmt.Sprintf("%02d:%02d.%03d", mnt, sec, milli)
}
